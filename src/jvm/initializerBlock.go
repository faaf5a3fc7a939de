/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"jacobin-core/corevm/src/classloader"
)

// ClassInitialize implements the `class_initialize(class)` call-in.
// The state machine, recursive-entry guard, and single-entry guarantee all
// live in classloader.Loader.Initialize (circularity is detected earlier,
// in Loader.Resolve); the actual <clinit> method body runs
// through whatever func the interpreter installed at Loader.RunClinit — the
// bytecode interpreter/JIT itself stays out of this core. caller identifies
// which execution context is driving initialization, so a class's own
// <clinit> can recursively reference itself without deadlocking.
func ClassInitialize(class *classloader.Class, caller classloader.InitToken) error {
	return class.Loader.Initialize(class, caller)
}
