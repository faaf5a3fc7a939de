/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"jacobin-core/corevm/src/classloader"
	"jacobin-core/corevm/src/excnames"
	"jacobin-core/corevm/src/intern"
	"jacobin-core/corevm/src/object"
	"jacobin-core/corevm/src/thread"
)

func newExc(kind, msg string) error { return &classError{Kind: kind, Msg: msg} }

// --- monitorenter/monitorexit bytecodes ---

// MonitorEnter implements the `monitor_enter(obj)` call-in.
func MonitorEnter(t *thread.JavaThread, obj *object.Object) {
	obj.MonitorEnter(t.ID)
}

// MonitorExit implements the `monitor_exit(obj)` call-in. A mismatched
// owner is reported as IllegalMonitorStateException rather than the raw
// panic object.MonitorExit raises, so interpreter code only ever sees a
// normal JVM exception from this call-in.
func MonitorExit(t *thread.JavaThread, obj *object.Object) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newExc(excnames.IllegalMonitorStateException, "monitor_exit: not owner")
		}
	}()
	obj.MonitorExit(t.ID)
	return nil
}

// --- checkcast/instanceof/array-store bytecodes ---

// classOf resolves obj's runtime class through loader's class table,
// naming the defining loader explicitly rather than threading a separate
// class-table parameter through every call-in.
func classOf(loader *classloader.Loader, obj *object.Object) *classloader.Class {
	if obj == nil || obj.Klass == nil {
		return nil
	}
	return loader.Classes.Lookup(*obj.Klass)
}

// CheckCast implements `check_cast(obj, class)`: a nil reference always
// passes (JVMS checkcast semantics), a non-nil reference must subtype-test
// true against class's VT or a ClassCastException is raised.
func CheckCast(obj *object.Object, class *classloader.Class) error {
	if obj == nil {
		return nil
	}
	if !InstanceOf(obj, class) {
		return newExc(excnames.ClassCastException, "object is not an instance of "+class.Name.String())
	}
	return nil
}

// InstanceOf implements `instance_of(obj, class)`. A nil reference is never
// an instance of anything (JVMS instanceof semantics: pushes 0 for null).
func InstanceOf(obj *object.Object, class *classloader.Class) bool {
	if obj == nil || class == nil {
		return false
	}
	oc := classOf(class.Loader, obj)
	if oc == nil {
		return false
	}
	return classloader.VTSubtype(oc.VT, class.VT)
}

// ArrayStoreCheck implements `array_store_check(array, elem)`: elem must be
// assignable to array's component type or an ArrayStoreException is
// raised, per JVMS aastore semantics. Storing null always succeeds.
func ArrayStoreCheck(array *classloader.ClassArray, elem *object.Object) error {
	if elem == nil || array.Component == nil {
		return nil
	}
	elemClass := classOf(array.Component.Loader, elem)
	if elemClass == nil {
		return newExc(excnames.ArrayStoreException, "element class not loaded")
	}
	if !classloader.VTSubtype(elemClass.VT, array.Component.VT) {
		return newExc(excnames.ArrayStoreException, elemClass.Name.String()+" is not assignable to "+array.Component.Name.String())
	}
	return nil
}

// --- the throw-family call-ins ---

// Throw implements `throw(exc)`: install exc as the thread's pending
// exception, matching pending-exception GC root.
func Throw(t *thread.JavaThread, exc interface{}) {
	t.Throw(exc)
}

func NullPointerException(t *thread.JavaThread) {
	t.Throw(newExc(excnames.NullPointerException, "null pointer"))
}

func NegativeArraySizeException(t *thread.JavaThread) {
	t.Throw(newExc(excnames.NegativeArraySizeException, "negative array size"))
}

func ArrayIndexOutOfBounds(t *thread.JavaThread, index, length int) {
	t.Throw(newExc(excnames.ArrayIndexOutOfBoundsException, "index out of bounds"))
}

func StackOverflow(t *thread.JavaThread) {
	t.Throw(newExc(excnames.StackOverflowError, "stack overflow"))
}

func OutOfMemory(t *thread.JavaThread) {
	t.Throw(newExc(excnames.OutOfMemoryError, "out of memory"))
}

// --- invokeinterface bytecode ---

// InvokeInterface implements `invoke_interface(obj, cache_slot)`: resolves
// the interface method through the receiver's IMT, with a single-entry
// inline cache keyed by the defining interface method — cacheSlot is the
// call site's own inline-cache storage, updated in place once the lookup
// succeeds so a monomorphic call site skips the hash lookup on every
// subsequent invocation "cache slot" VT field.
func InvokeInterface(loader *classloader.Loader, obj *object.Object, ifaceMethod *classloader.Method, cacheSlot **classloader.Method) (*classloader.Method, error) {
	if cached := *cacheSlot; cached != nil && cached.Name == ifaceMethod.Name && cached.Descriptor == ifaceMethod.Descriptor {
		return cached, nil
	}
	if obj == nil {
		return nil, newExc(excnames.NullPointerException, "invoke_interface on null receiver")
	}
	oc := classOf(loader, obj)
	if oc == nil || oc.VT == nil || oc.VT.IMT == nil {
		return nil, newExc(excnames.IncompatibleClassChangeError, "no IMT for receiver")
	}
	m := oc.VT.IMT.Lookup(ifaceMethod.Name, ifaceMethod.Descriptor)
	if m == nil {
		return nil, newExc(excnames.AbstractMethodError, ifaceMethod.Name+ifaceMethod.Descriptor)
	}
	*cacheSlot = m
	return m, nil
}

// --- resolve_<x> call-ins, thin wrappers over CPool ---

func ResolveClass(cp *classloader.CPool, loader *classloader.Loader, idx int) (*classloader.Class, error) {
	return cp.ResolveClass(loader, idx)
}

func ResolveString(cp *classloader.CPool, names *intern.Table, idx int) (string, error) {
	return cp.ResolveString(names, idx)
}

func ResolveField(cp *classloader.CPool, loader *classloader.Loader, idx int) (*classloader.FieldRef, error) {
	return cp.ResolveField(loader, idx)
}

func ResolveMethod(cp *classloader.CPool, loader *classloader.Loader, idx int, kind classloader.ResolveKind, caller *classloader.Class) (*classloader.MethodRef, error) {
	return cp.ResolveMethod(loader, idx, kind, caller)
}
