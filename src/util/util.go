/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package util holds small, dependency-free helpers shared by multiple
// subsystems, mirroring the teacher's jacobin/util package.
package util

import (
	"path/filepath"
	"strings"
)

// ConvertToPlatformPathSeparators turns a JVM internal class name
// (slash-separated, e.g. "java/lang/String") into a path using the host's
// separator, so it can be joined with a classpath directory.
func ConvertToPlatformPathSeparators(name string) string {
	return filepath.FromSlash(name)
}

// ConvertInternalClassNameToUserFormat replaces '/' with '.', the format
// users and exception messages expect ("java.lang.String").
func ConvertInternalClassNameToUserFormat(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// ConvertUserFormatToInternalClassName is the inverse of the above.
func ConvertUserFormatToInternalClassName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
