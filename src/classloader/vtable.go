/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"sort"
	"sync/atomic"
)

// DisplaySize is the number of primary-display super-chain slots every
// VTable carries before a class must fall back to the secondary-types list,
// per spec.md §3's VirtualTable layout table.
const DisplaySize = 8

// CacheIndex is the VT-layout offset of the "cache slot" field (see the
// offset table in spec.md §3: 0 tracer, 1 delete, 2 finalizer, 3 owning
// class, 4 depth, 5 offset, 6 cache slot, 7 IMT, 8.. display). It doubles
// as the sentinel value Offset takes when a type is "secondary" (outside
// the primary display), per spec.md §4.D step 2/4.
const CacheIndex = 6

// NumJavaMethods is the number of root-class (java.lang.Object) method
// slots every VTable reserves, per spec.md §3's layout table
// (init/equals/hashCode/toString/clone/getClass/notify/notifyAll/wait x3).
const NumJavaMethods = 11

// FirstJavaMethodIndex is where a class with no super starts assigning its
// own virtual method slots, per spec.md §4.D step 1.
const FirstJavaMethodIndex = NumJavaMethods

var vtSeq atomic.Uint64

// VTable is the fast-dispatch/fast-subtype object layout of spec.md §3.
// Go models the offset table as named fields rather than a raw word array:
// the teacher's source (and VMKit's JavaClass.h, which this spec is
// modeled on) lays these out as a hand-shaped C++ vtable; spec.md §9
// explicitly directs a systems-language rendering to use "a plain struct
// with function pointers" instead of reproducing the C++ layout bit for
// bit.
type VTable struct {
	seq uint64 // stable creation-order id, used in place of raw pointer value for "sort by pointer value"

	Tracer         uintptr // GC-plan callable; opaque to the core
	OperatorDelete uintptr
	Finalizer      uintptr

	Owner *CommonClass
	Depth int

	// Offset encodes where a subtype test finds this class: either
	// CacheIndex+Depth+1 (found directly in a display slot) or CacheIndex
	// (must be found via the secondary-types scan), per spec.md §4.D.
	Offset int

	// cacheSlot is the last class that successfully matched this VT's
	// secondary-types scan, so a repeated test against the same type is
	// O(1). Accessed via atomic.Pointer since subtype tests run
	// concurrently from every mutator thread.
	cacheSlot atomic.Pointer[CommonClass]

	IMT *IMT

	Display        []*CommonClass // primary display, indexed by depth
	SecondaryTypes []*CommonClass // sorted ascending by seq, deduplicated

	BaseClassVT *VTable // for arrays: the component class's VT

	// Methods holds this class's resolved virtual-dispatch slots, indexed
	// by Method.VTOffset. Slots 0..NumJavaMethods-1 are reserved for the
	// root-class layout (finalize sits at slot 2); other methods of a class
	// with no super are placed from FirstJavaMethodIndex up.
	Methods []*Method
}

func newVTable(owner *CommonClass, depth int) *VTable {
	return &VTable{
		seq:   vtSeq.Add(1),
		Owner: owner,
		Depth: depth,
	}
}

func (vt *VTable) isSecondary() bool {
	return vt.Offset == CacheIndex
}

// VTSubtype implements spec.md §3's subtype-test invariant:
// A <: B iff A.display[B.depth] == B, or B is secondary and B is in
// A.secondaryTypes (using the single-entry test cache to skip the scan
// when the previous test against the same B already succeeded).
func VTSubtype(a, b *VTable) bool {
	if a == nil || b == nil {
		return false
	}
	if b.Depth < len(a.Display) && a.Display[b.Depth] == b.Owner {
		return true
	}
	if !b.isSecondary() {
		return false
	}
	if cached := a.cacheSlot.Load(); cached != nil && cached == b.Owner {
		return true
	}
	if containsSecondary(a.SecondaryTypes, b.Owner) {
		a.cacheSlot.Store(b.Owner)
		return true
	}
	return false
}

func containsSecondary(types []*CommonClass, target *CommonClass) bool {
	// SecondaryTypes is sorted by seq, but seq isn't known to the caller,
	// so this is a linear scan, per spec.md §4.D ("avoids the linear scan"
	// refers to the *cache hit* path above, not to a binary search — the
	// source's sort is for dedup, not binary lookup, since there is no
	// total order on the search key available to callers).
	for _, t := range types {
		if t == target {
			return true
		}
	}
	return false
}

// BuildVirtualTable performs spec.md §4.D's VT construction for a newly
// resolved regular class. It must be called only after c.Super and every
// entry of c.Interfaces already has a built VT.
func BuildVirtualTable(c *Class) {
	depth := c.Depth()
	vt := newVTable(&c.CommonClass, depth)

	// Step 1: virtualTableSize / method-slot assignment.
	var superMethods []*Method
	slotCount := FirstJavaMethodIndex
	if c.Super != nil && c.Super.VT != nil {
		superMethods = c.Super.VT.Methods
		slotCount = len(superMethods)
		vt.Methods = append(vt.Methods, superMethods...)
	} else {
		vt.Methods = make([]*Method, FirstJavaMethodIndex)
	}

	for _, key := range sortedKeys(c.VMethods) {
		m := c.VMethods[key]
		if m.IsStatic {
			continue
		}
		if overridden, idx := findOverride(vt.Methods, m); overridden {
			vt.Methods[idx] = m
			m.VTOffset = idx
			continue
		}
		if m.Name == "finalize" && m.Descriptor == "()V" {
			m.VTOffset = 2 // fixed slot, per spec.md §3 VT layout offset 2
			vt.Methods[2] = m
			continue
		}
		m.VTOffset = slotCount
		vt.Methods = append(vt.Methods, m)
		slotCount++
	}

	if c.Access.Abstract {
		synthesizeMirandaMethods(c, vt)
	}

	// Step 2: primary display.
	if c.Super != nil && c.Super.VT != nil {
		copyLen := c.Super.VT.Depth + 1
		if copyLen > DisplaySize {
			copyLen = DisplaySize
		}
		vt.Display = append(vt.Display, c.Super.VT.Display[:copyLen]...)
	}
	for len(vt.Display) < depth {
		vt.Display = append(vt.Display, nil)
	}
	secondary := false
	if depth < DisplaySize {
		vt.Display = append(vt.Display, &c.CommonClass)
		vt.Offset = CacheIndex + depth + 1
	} else {
		vt.Offset = CacheIndex
		secondary = true
	}

	// Step 3: secondaryTypes = union(super's, each interface's VT, each
	// interface's secondaryTypes, self if flagged secondary); sorted,
	// deduplicated.
	var union []*CommonClass
	if c.Super != nil && c.Super.VT != nil {
		union = append(union, c.Super.VT.SecondaryTypes...)
	}
	for _, iface := range c.Interfaces {
		if iface.VT == nil {
			continue
		}
		union = append(union, &iface.CommonClass)
		union = append(union, iface.VT.SecondaryTypes...)
	}
	if secondary {
		union = append(union, &c.CommonClass)
	}
	vt.SecondaryTypes = sortDedupClasses(union)

	// Step 4: interfaces always test via secondary lookup.
	if c.Access.Interface {
		vt.Offset = CacheIndex
	}

	c.VT = vt

	// Step 6: IMT, non-abstract classes only.
	if !c.Access.Abstract {
		BuildIMT(c)
	}
}

// BuildArrayVirtualTable implements spec.md §4.D step 5: the array-class
// display/secondaryTypes derivation rules.
func BuildArrayVirtualTable(a *ClassArray, objectClass, cloneable, serializable *Class) {
	depth := objectClass.Depth() + 1
	vt := newVTable(&a.CommonClass, depth)
	vt.Display = append(append([]*CommonClass{}, objectClass.VT.Display...), &a.CommonClass)
	vt.Offset = CacheIndex + depth + 1
	if depth >= DisplaySize {
		vt.Offset = CacheIndex
	}

	switch comp := a.Component; {
	case comp == nil:
		// primitive array: one dimension lower than Object[]'s own types.
		vt.SecondaryTypes = sortDedupClasses([]*CommonClass{&cloneable.CommonClass, &serializable.CommonClass})
	case comp == &objectClass.CommonClass:
		vt.SecondaryTypes = sortDedupClasses([]*CommonClass{&cloneable.CommonClass, &serializable.CommonClass})
	default:
		var union []*CommonClass
		if comp.VT != nil {
			union = append(union, comp.VT.SecondaryTypes...)
		}
		union = append(union, &cloneable.CommonClass, &serializable.CommonClass)
		vt.SecondaryTypes = sortDedupClasses(union)
	}

	if a.Component != nil && a.Component.VT != nil {
		vt.BaseClassVT = a.Component.VT
	}
	a.VT = vt
}

func sortedKeys(m map[string]*Method) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func findOverride(existing []*Method, candidate *Method) (bool, int) {
	for i, m := range existing {
		if m != nil && m.Name == candidate.Name && m.Descriptor == candidate.Descriptor {
			return true, i
		}
	}
	return false, -1
}

// synthesizeMirandaMethods adds abstract placeholder slots for interface
// methods the super chain has not yet defined, per spec.md §4.D step 1.
func synthesizeMirandaMethods(c *Class, vt *VTable) {
	for _, iface := range c.Interfaces {
		for key, im := range iface.VMethods {
			if im.IsStatic {
				continue
			}
			if _, found := findOverride(vt.Methods, im); found {
				continue
			}
			if _, ok := c.VMethods[key]; ok {
				continue
			}
			miranda := &Method{Name: im.Name, Descriptor: im.Descriptor, IsAbstract: true, VTOffset: len(vt.Methods)}
			vt.Methods = append(vt.Methods, miranda)
			c.VMethods[key] = miranda
		}
	}
}

// sortDedupClasses sorts by creation-order seq (a stand-in for "pointer
// value" that doesn't require unsafe pointer arithmetic, per spec.md §4.D
// "sort by pointer value and deduplicate") and removes duplicates.
func sortDedupClasses(in []*CommonClass) []*CommonClass {
	if len(in) == 0 {
		return nil
	}
	seqOf := func(c *CommonClass) uint64 {
		if c.VT != nil {
			return c.VT.seq
		}
		return 0
	}
	out := append([]*CommonClass{}, in...)
	sort.Slice(out, func(i, j int) bool { return seqOf(out[i]) < seqOf(out[j]) })
	deduped := out[:0]
	for i, c := range out {
		if i == 0 || c != out[i-1] {
			deduped = append(deduped, c)
		}
	}
	return deduped
}
