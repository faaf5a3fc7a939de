/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package shutdown centralizes the core's process exit codes, mirroring the
// teacher's jacobin/shutdown package.
package shutdown

import "os"

const (
	OK           = 0
	JVM_EXCEPTION = 1
	APP_EXCEPTION = 2
	UNKNOWN_EXCEPTION = 3
)

// Exit terminates the process with the given code. Only ever called from
// the outermost collaborator (the interpreter/JIT driver) — library code in
// this module returns errors instead.
func Exit(code int) {
	os.Exit(code)
}
