/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"sync/atomic"

	"jacobin-core/corevm/src/excnames"
	"jacobin-core/corevm/src/intern"
)

// CPTag identifies the kind of a constant-pool entry, per JVMS 4.4 and
// spec.md §3. Numeric values follow the teacher's classes.go.go fork
// snapshot so that a raw class-file's tag bytes need no translation table.
type CPTag uint8

const (
	CPDummy CPTag = iota
	CPUtf8
	_
	CPInteger
	CPFloat
	CPLong
	CPDouble
	CPClassRef
	CPString
	CPFieldRef
	CPMethodRef
	CPInterfaceMethodRef
	CPNameAndType
	_
	_
	CPMethodHandle
	CPMethodType
	CPDynamic
	CPInvokeDynamic
	CPModule
	CPPackage
)

// ResolveKind distinguishes the four lookup rules resolve_method honors,
// per spec.md §4.B.
type ResolveKind int

const (
	ResolveStatic ResolveKind = iota
	ResolveVirtual
	ResolveSpecial
	ResolveInterface
)

// resolvedSlot holds whatever a CP entry resolves to, plus a cached error
// if resolution failed (spec.md §4.B: "resolution failures cache the error
// in the slot so retries produce the same error"). It is only ever
// installed via atomic.Pointer.CompareAndSwap from nil, so readers
// see either "unresolved" (nil) or "fully resolved" (non-nil), never a
// partial write.
type resolvedSlot struct {
	class  *Class
	method *MethodRef
	field  *FieldRef
	str    string
	err    *ResolutionError
}

// ResolutionError is the cached failure of a constant-pool resolution,
// carrying the JVM exception kind so repeated attempts raise the identical
// error (JVMS §5.4.3, spec.md §4.B).
type ResolutionError struct {
	Kind string // one of excnames.ClassNotFoundException, NoSuchMethodError, ...
	Msg  string
}

func (e *ResolutionError) Error() string { return e.Kind + ": " + e.Msg }

// CpEntry is one raw (tag, slot) pair in a class's constant pool, before
// resolution. Slot indexes into the per-tag slice that actually holds the
// payload (ClassRefs, Utf8Refs, ...), mirroring the teacher's CpEntry.
type CpEntry struct {
	Tag  CPTag
	Slot uint16
}

// MethodRef and FieldRef are what a resolved method/field constant-pool
// entry points to: the defining class plus the looked-up member.
type MethodRef struct {
	Class  *Class
	Method *Method
}

type FieldRef struct {
	Class *Class
	Field *FieldSlot
}

// CPool is the per-class constant pool, per spec.md §3: raw tagged entries
// plus, for class/method/field/string entries, an atomically-resolved slot.
type CPool struct {
	Entries []CpEntry

	Utf8       []string
	ClassRefs  []uint16 // index into Utf8, the raw class name
	NameAndTypes []NameAndTypeRaw
	FieldRefsRaw  []MemberRefRaw
	MethodRefsRaw []MemberRefRaw
	IfaceRefsRaw  []MemberRefRaw
	StringRefs []uint16 // index into Utf8
	IntConsts  []int32
	LongConsts []int64
	FloatConsts  []float32
	DoubleConsts []float64

	// resolved[i] is the atomic.Pointer[resolvedSlot] for CpEntry i,
	// allocated with the pool; it points to nil until the first resolution
	// attempt. Guarded by a CAS on the slice entry itself rather than one
	// lock per class, so
	// concurrent reads on already-resolved entries never block.
	resolved []atomic.Pointer[resolvedSlot]
}

// NameAndTypeRaw is a CONSTANT_NameAndType_info: indices (into Utf8) for the
// member's name and its descriptor.
type NameAndTypeRaw struct {
	NameUtf8 uint16
	DescUtf8 uint16
}

// MemberRefRaw is a CONSTANT_Fieldref/Methodref/InterfaceMethodref_info:
// the CP index of the class reference and the CP index of the
// NameAndType entry.
type MemberRefRaw struct {
	ClassIndex      uint16 // CP index of the owning CONSTANT_Class_info
	NameAndTypeIndex uint16
}

// NewCPool allocates a CPool with room for n raw entries and a resolved-slot
// array of the same size.
func NewCPool(n int) *CPool {
	return &CPool{
		Entries:  make([]CpEntry, n),
		resolved: make([]atomic.Pointer[resolvedSlot], n),
	}
}

func (cp *CPool) classNameAt(classRefCPIndex uint16) string {
	entry := cp.Entries[classRefCPIndex]
	if entry.Tag != CPClassRef {
		return ""
	}
	utf8Idx := cp.ClassRefs[entry.Slot]
	return cp.Utf8[utf8Idx]
}

func (cp *CPool) nameAndTypeAt(natCPIndex uint16) (name, desc string) {
	entry := cp.Entries[natCPIndex]
	if entry.Tag != CPNameAndType {
		return "", ""
	}
	nat := cp.NameAndTypes[entry.Slot]
	return cp.Utf8[nat.NameUtf8], cp.Utf8[nat.DescUtf8]
}

// ResolveClass resolves CP entry idx (which must be a CONSTANT_Class_info)
// to the *Class it names, loading it via loader if necessary. Per spec.md
// §4.B, a cached failure from a previous attempt is returned unchanged.
func (cp *CPool) ResolveClass(loader *Loader, idx int) (*Class, error) {
	if cached, done := cp.loadCached(idx); done {
		if cached.err != nil {
			return nil, cached.err
		}
		return cached.class, nil
	}

	entry := cp.Entries[idx]
	if entry.Tag != CPClassRef {
		return nil, &ResolutionError{Kind: excnames.NoClassDefFoundError, Msg: "CP entry is not a class reference"}
	}
	className := cp.Utf8[cp.ClassRefs[entry.Slot]]

	cls, err := loader.LoadClass(className)
	if err != nil {
		re := &ResolutionError{Kind: excnames.ClassNotFoundException, Msg: err.Error()}
		cp.storeResolved(idx, &resolvedSlot{err: re})
		return nil, re
	}

	cp.storeResolved(idx, &resolvedSlot{class: cls})
	return cls, nil
}

// ResolveString resolves a CONSTANT_String_info into the interned Java
// string it refers to.
func (cp *CPool) ResolveString(names *intern.Table, idx int) (string, error) {
	if cached, done := cp.loadCached(idx); done {
		if cached.err != nil {
			return "", cached.err
		}
		return cached.str, nil
	}
	entry := cp.Entries[idx]
	if entry.Tag != CPString {
		return "", &ResolutionError{Kind: excnames.InternalError, Msg: "CP entry is not a string constant"}
	}
	utf8Idx := cp.StringRefs[entry.Slot]
	s := cp.Utf8[utf8Idx]
	names.LookupOrCreate(s) // intern, matching spec.md's "string constants go through the interner"
	cp.storeResolved(idx, &resolvedSlot{str: s})
	return s, nil
}

// ResolveField resolves a CONSTANT_Fieldref_info to its defining class and
// FieldSlot, per spec.md §4.B ("resolve_field(idx, kind) analogous [to
// resolve_method]"). Unlike ResolveMethod it takes no kind: fields have no
// virtual/static distinction at the CP-resolution level — the
// static/instance distinction is read off the resolved FieldSlot.
func (cp *CPool) ResolveField(loader *Loader, idx int) (*FieldRef, error) {
	if cached, done := cp.loadCached(idx); done {
		if cached.err != nil {
			return nil, cached.err
		}
		return cached.field, nil
	}

	entry := cp.Entries[idx]
	if entry.Tag != CPFieldRef {
		return nil, &ResolutionError{Kind: excnames.NoSuchFieldError, Msg: "CP entry is not a field reference"}
	}
	raw := cp.FieldRefsRaw[entry.Slot]
	className := cp.classNameAt(raw.ClassIndex)
	fieldName, fieldDesc := cp.nameAndTypeAt(raw.NameAndTypeIndex)

	owner, err := loader.LoadClass(className)
	if err != nil {
		re := &ResolutionError{Kind: excnames.NoClassDefFoundError, Msg: err.Error()}
		cp.storeResolved(idx, &resolvedSlot{err: re})
		return nil, re
	}

	fld, defining := owner.LookupField(fieldName, fieldDesc, true)
	if fld == nil {
		re := &ResolutionError{Kind: excnames.NoSuchFieldError, Msg: className + "." + fieldName}
		cp.storeResolved(idx, &resolvedSlot{err: re})
		return nil, re
	}
	ref := &FieldRef{Class: defining, Field: fld}
	cp.storeResolved(idx, &resolvedSlot{field: ref})
	return ref, nil
}

// ResolveMethod resolves a CONSTANT_Methodref_info/InterfaceMethodref_info
// per spec.md §4.B, dispatching through the lookup rules of §4.D according
// to kind.
func (cp *CPool) ResolveMethod(loader *Loader, idx int, kind ResolveKind, caller *Class) (*MethodRef, error) {
	if cached, done := cp.loadCached(idx); done {
		if cached.err != nil {
			return nil, cached.err
		}
		return cached.method, nil
	}

	entry := cp.Entries[idx]
	var raw MemberRefRaw
	switch entry.Tag {
	case CPMethodRef:
		raw = cp.MethodRefsRaw[entry.Slot]
	case CPInterfaceMethodRef:
		raw = cp.IfaceRefsRaw[entry.Slot]
	default:
		return nil, &ResolutionError{Kind: excnames.NoSuchMethodError, Msg: "CP entry is not a method reference"}
	}
	className := cp.classNameAt(raw.ClassIndex)
	methodName, methodDesc := cp.nameAndTypeAt(raw.NameAndTypeIndex)

	owner, err := loader.LoadClass(className)
	if err != nil {
		re := &ResolutionError{Kind: excnames.NoClassDefFoundError, Msg: err.Error()}
		cp.storeResolved(idx, &resolvedSlot{err: re})
		return nil, re
	}

	isStatic := kind == ResolveStatic
	recurseIface := kind == ResolveStatic || kind == ResolveInterface
	meth, defining := owner.LookupMethod(methodName, methodDesc, isStatic, true, recurseIface)
	if meth == nil {
		re := &ResolutionError{Kind: excnames.NoSuchMethodError, Msg: className + "." + methodName + methodDesc}
		cp.storeResolved(idx, &resolvedSlot{err: re})
		return nil, re
	}

	if kind == ResolveSpecial && caller != nil {
		defining, meth = lookupSpecialCorrection(caller, defining, meth)
	}

	ref := &MethodRef{Class: defining, Method: meth}
	cp.storeResolved(idx, &resolvedSlot{method: ref})
	return ref, nil
}

func (cp *CPool) loadCached(idx int) (*resolvedSlot, bool) {
	if idx < 0 || idx >= len(cp.resolved) {
		return nil, false
	}
	p := cp.resolved[idx].Load()
	if p == nil {
		return nil, false
	}
	return p, true
}

func (cp *CPool) storeResolved(idx int, slot *resolvedSlot) {
	// CAS from nil only: the first resolver to finish wins, later
	// resolvers (who raced past the loadCached miss) just discard their
	// own (equivalent) result, per spec.md §3 "resolution is idempotent".
	cp.resolved[idx].CompareAndSwap(nil, slot)
}
