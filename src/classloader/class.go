/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"sync"
	"sync/atomic"

	"jacobin-core/corevm/src/intern"
)

// Status is a class's position in the loaded→resolving→resolved→inClinit→
// ready state machine of spec.md §4.E, with a terminal Erroneous state
// reachable from any pre-Ready state.
type Status int32

const (
	StatusLoaded Status = iota
	StatusResolving
	StatusResolved
	StatusInClinit
	StatusReady
	StatusErroneous
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusResolving:
		return "resolving"
	case StatusResolved:
		return "resolved"
	case StatusInClinit:
		return "inClinit"
	case StatusReady:
		return "ready"
	case StatusErroneous:
		return "erroneous"
	default:
		return "unknown"
	}
}

// AccessFlags holds the subset of JVM access/modifier bits the core cares
// about for dispatch and linking decisions.
type AccessFlags struct {
	Public    bool
	Final     bool
	Super     bool // ACC_SUPER: governs invokespecial redirection, spec.md §4.D
	Interface bool
	Abstract  bool
	Synthetic bool
	Annotation bool
	Enum      bool
	Module    bool
}

// CommonClass is the prefix shared by every class-like entity: regular
// classes, arrays, and primitives (spec.md §3).
type CommonClass struct {
	Name       intern.Name
	Access     AccessFlags
	Loader     *Loader
	Super      *Class // nil only for java/lang/Object and primitives
	Interfaces []*Class

	VT *VTable

	status atomic.Int32 // Status, CAS-guarded

	// mu is the class's own monitor before the java.lang.Class delegatee
	// exists, per spec.md §4.E ("a dedicated internal lock" pre-delegatee).
	mu   sync.Mutex
	cond *sync.Cond

	// Delegatee is the java.lang.Class mirror object. Installed once, via a
	// non-heap write barrier in a real GC plan; here, a plain
	// compare-and-swap on the pointer since this core does not itself own
	// heap layout (spec.md §3 invariant: "never changes thereafter").
	delegatee atomic.Pointer[any]

	// clinitOwner records which goroutine (identified by an opaque token,
	// not a raw goroutine id, which Go does not expose) is running this
	// class's <clinit>, so a recursive initialize() from within <clinit>
	// itself is recognized and short-circuited (spec.md §4.E).
	clinitOwner atomic.Value // holds InitToken

	initErr error // cached cause if status is Erroneous, for ExceptionInInitializerError wrapping
}

func newCommonClass() CommonClass {
	c := CommonClass{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Status returns the current lifecycle state.
func (c *CommonClass) Status() Status { return Status(c.status.Load()) }

func (c *CommonClass) setStatus(s Status) {
	c.status.Store(int32(s))
	c.cond.Broadcast()
}

// casStatus attempts old->new, returning whether it succeeded.
func (c *CommonClass) casStatus(old, new Status) bool {
	ok := c.status.CompareAndSwap(int32(old), int32(new))
	if ok {
		c.cond.Broadcast()
	}
	return ok
}

// Lock/Unlock/Wait expose the class's own monitor to the state machine in
// loader.go, matching spec.md §4.E's "transitions are guarded by the
// class's own monitor".
func (c *CommonClass) Lock()   { c.mu.Lock() }
func (c *CommonClass) Unlock() { c.mu.Unlock() }
func (c *CommonClass) Wait()   { c.cond.Wait() }

// Depth is this class's position in the super chain (java/lang/Object is
// depth 0), used by the VT display per spec.md §3.
func (c *CommonClass) Depth() int {
	if c.Super == nil {
		return 0
	}
	return c.Super.Depth() + 1
}

// FieldSlot is one field of a class: its descriptor, offset/static-area
// slot, and whether it is static, per spec.md §3.
type FieldSlot struct {
	Name       string
	Descriptor string
	Type       *intern.Typedef
	IsStatic   bool
	Offset     int // instance offset, or static-area slot if IsStatic
	ConstValue interface{}
}

// Method is one method of a class: its signature, code, and enough access
// info to drive lookup/dispatch (spec.md §3/§4.D). Code itself is the
// JIT/interpreter collaborator's concern (out of scope per spec.md §1); the
// core only needs the shape below to resolve and dispatch calls.
type Method struct {
	Name       string
	Descriptor string
	Sig        *intern.Signdef
	Access     AccessFlags
	IsStatic   bool
	IsAbstract bool
	IsFinal    bool
	Exceptions []string // internal names of declared checked exceptions

	// VTOffset is this method's slot in its defining class's VTable once
	// computed (spec.md §4.D step 1); -1 for static/private methods, which
	// never go through the VTable.
	VTOffset int

	// Entry is the JIT-produced entry pointer for this method (spec.md
	// §6's compiled-method contract, part (a)); nil until first compile.
	Entry uintptr
}

// Class is a regular (non-array, non-primitive) class, extending
// CommonClass with everything spec.md §3 lists for it.
type Class struct {
	CommonClass

	CP *CPool

	Fields  []*FieldSlot
	StaticFields []*FieldSlot

	// VMethods/SMethods mirror the teacher's split of virtual vs. static
	// method tables (ClData.MethodTable in classes.go.go generalizes both
	// into one map; this module keeps them separate because §4.D's lookup
	// rule explicitly scans "own static or virtual method array first"
	// depending on is_static).
	VMethods map[string]*Method // key: name+descriptor
	SMethods map[string]*Method

	InstanceSize int
	StaticArea   []interface{} // allocated only when static fields exist or <clinit> has side effects, per spec.md §3

	ClInit byte // types.NoClinit / ClInitNotRun / ClInitInProgress / ClInitRun

	SourceFile   string
	JDKVersion   [2]int // {major, minor}, per spec.md §6

	// pendingSuperName/pendingInterfaceNames hold the raw names read from
	// the class file until Loader.Resolve turns them into Super/Interfaces
	// pointers; unused once the class reaches StatusResolved.
	pendingSuperName      string
	pendingInterfaceNames []string
}

// NewClass allocates a Class in the loaded state, ready for the loader to
// drive through resolution.
func NewClass(name intern.Name, loader *Loader) *Class {
	c := &Class{
		CommonClass: newCommonClass(),
		VMethods:    make(map[string]*Method),
		SMethods:    make(map[string]*Method),
	}
	c.Name = name
	c.Loader = loader
	c.status.Store(int32(StatusLoaded))
	return c
}

// ClassArray is an array class, per spec.md §3: super is always
// java/lang/Object, interfaces are Cloneable/Serializable, and the instance
// size formula is header+length-word+length*component-size.
type ClassArray struct {
	CommonClass
	Component     *CommonClass // may itself be primitive, array, or regular
	ComponentSize int          // bytes per element, for instance-size computation
}

// InstanceSize computes header + length-word + length*component-size for
// an array of the given length, per spec.md §3.
func (a *ClassArray) InstanceSize(length int, headerSize, lengthWordSize int) int {
	return headerSize + lengthWordSize + length*a.ComponentSize
}

// ClassPrimitive carries only a log-size, per spec.md §3 (used for the
// boxed "Class objects" of int.class, void.class, etc.).
type ClassPrimitive struct {
	CommonClass
	LogSize int
}

// LookupField implements spec.md §4.D's field counterpart to lookup_method:
// scan own fields, then (if recurseSuper) the super chain.
func (c *Class) LookupField(name, descriptor string, recurseSuper bool) (*FieldSlot, *Class) {
	for _, f := range c.Fields {
		if f.Name == name && f.Descriptor == descriptor {
			return f, c
		}
	}
	for _, f := range c.StaticFields {
		if f.Name == name && f.Descriptor == descriptor {
			return f, c
		}
	}
	if recurseSuper && c.Super != nil {
		return c.Super.LookupField(name, descriptor, true)
	}
	return nil, nil
}

// LookupMethod implements spec.md §4.D's lookup_method: scans own static or
// virtual array first; if not found and recurseSuper, asks super; if still
// not found and recurseInterfaces, scans each interface recursively.
func (c *Class) LookupMethod(name, descriptor string, isStatic, recurseSuper, recurseInterfaces bool) (*Method, *Class) {
	key := name + descriptor
	table := c.VMethods
	if isStatic {
		table = c.SMethods
	}
	if m, ok := table[key]; ok {
		return m, c
	}

	if recurseSuper && c.Super != nil {
		if m, defining := c.Super.LookupMethod(name, descriptor, isStatic, true, false); m != nil {
			return m, defining
		}
	}

	if recurseInterfaces {
		for _, iface := range c.Interfaces {
			if m, defining := iface.LookupMethod(name, descriptor, isStatic, false, true); m != nil {
				return m, defining
			}
		}
		if recurseSuper && c.Super != nil {
			if m, defining := c.Super.LookupMethod(name, descriptor, isStatic, false, true); m != nil {
				return m, defining
			}
		}
	}
	return nil, nil
}

// lookupSpecialCorrection implements spec.md §4.D's invokespecial
// redirection: if caller has ACC_SUPER, the defining class differs from
// caller, and defining is a superclass of caller, redirect the call to
// caller's super.
func lookupSpecialCorrection(caller, defining *Class, found *Method) (*Class, *Method) {
	if defining == caller || caller.Super == nil {
		return defining, found
	}
	if !caller.Access.Super {
		return defining, found
	}
	if !isSuperclassOf(defining, caller) {
		return defining, found
	}
	m, d := caller.Super.LookupMethod(found.Name, found.Descriptor, false, true, false)
	if m == nil {
		return defining, found
	}
	return d, m
}

func isSuperclassOf(ancestor, of *Class) bool {
	for c := of.Super; c != nil; c = c.Super {
		if c == ancestor {
			return true
		}
	}
	return false
}
