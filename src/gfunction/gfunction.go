/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package gfunction is the native-method call-in registry the
// interpreter/JIT dispatches a handful of java.lang methods through instead
// of executing their bytecode. Every g-function shares the same Go
// signature regardless of its Java method's signature: it accepts a slice
// of already-unmarshaled arguments and returns either a normal result or an
// error block built by getGErrBlk, which the interpreter recognizes and
// turns into a thrown Java exception.
package gfunction

import (
	"jacobin-core/corevm/src/thread"
)

// CurrentThread is set by the interpreter/JIT before it starts dispatching
// g-functions, the same way classloader.Loader.RunClinit is a hook the
// interpreter installs rather than a dependency this core takes on the
// interpreter directly. Natives that need to observe or act on the calling
// thread (Thread.sleep's interrupt check, among others) call this instead
// of taking a thread parameter, since every GFunction shares the uniform
// func([]interface{}) interface{} signature.
var CurrentThread func() *thread.JavaThread

// GMeth is the registration record for one g-function: how many operand
// stack slots the interpreter pops into params, and the function itself.
type GMeth struct {
	ParamSlots int
	GFunction  func([]interface{}) interface{}
}

// MethodSignatures maps a fully-qualified "class.method(descriptor)" key to
// its GMeth. The various Load_* functions in this package populate it;
// LoadAll calls them all.
var MethodSignatures = make(map[string]GMeth)

// loaders is appended to by each file's init(), so LoadAll doesn't need to
// name every Load_* function by hand when a new one is added.
var loaders []func()

func register(load func()) { loaders = append(loaders, load) }

// LoadAll populates MethodSignatures with every g-function this package
// knows about. The interpreter calls this once at startup.
func LoadAll() {
	for _, load := range loaders {
		load()
	}
}

// GErrBlk is the sentinel return value a g-function uses to signal that the
// interpreter should throw a Java exception instead of using the return
// value normally.
type GErrBlk struct {
	ExceptionType string
	ErrMsg        string
}

func getGErrBlk(exceptionType, msg string) interface{} {
	return GErrBlk{ExceptionType: exceptionType, ErrMsg: msg}
}

// justReturn is the GFunction for natives whose entire job is to be a
// non-throwing no-op, such as registerNatives().
func justReturn([]interface{}) interface{} { return nil }
