/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import "jacobin-core/corevm/src/excnames"

// ClassError is the classloader package's error type: a JVM exception kind
// (one of the excnames constants) plus a diagnostic message, per spec.md
// §7's error-kind table for the loader/resolve/link/init phases.
type ClassError struct {
	Kind string
	Msg  string
}

func (e *ClassError) Error() string { return e.Kind + ": " + e.Msg }

func classNotFound(msg string) error { return &ClassError{Kind: excnames.ClassNotFoundException, Msg: msg} }
func noClassDefFound(msg string) error { return &ClassError{Kind: excnames.NoClassDefFoundError, Msg: msg} }
func classCircularity(msg string) error { return &ClassError{Kind: excnames.ClassCircularityError, Msg: msg} }
func classFormatError(msg string) error { return &ClassError{Kind: excnames.ClassFormatError, Msg: msg} }
func noClassInitializerError(msg string) error {
	return &ClassError{Kind: excnames.NoClassInitializerError, Msg: msg}
}
func exceptionInInitializer(msg string) error {
	return &ClassError{Kind: excnames.ExceptionInInitializerError, Msg: msg}
}
