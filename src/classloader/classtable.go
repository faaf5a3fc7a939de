/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"sync"

	"jacobin-core/corevm/src/intern"
)

// ClassTable is the per-classloader map from an interned name to its class
// entity, per spec.md §4.C. Insertion is CAS-guarded (via a map-with-lock,
// since Go maps have no lock-free CAS primitive) so the same class can
// never be installed twice.
type ClassTable struct {
	mu      sync.RWMutex
	classes map[string]*Class
	arrays  map[string]*ClassArray
	prims   map[string]*ClassPrimitive
}

// NewClassTable creates an empty table.
func NewClassTable() *ClassTable {
	return &ClassTable{
		classes: make(map[string]*Class),
		arrays:  make(map[string]*ClassArray),
		prims:   make(map[string]*ClassPrimitive),
	}
}

// Lookup returns the already-installed class for name, or nil.
func (t *ClassTable) Lookup(name string) *Class {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.classes[name]
}

// LookupArray / LookupPrimitive are the array/primitive counterparts.
func (t *ClassTable) LookupArray(name string) *ClassArray {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.arrays[name]
}

func (t *ClassTable) LookupPrimitive(name string) *ClassPrimitive {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.prims[name]
}

// Insert installs cls under name if and only if no class is installed
// there yet, returning the class that ends up installed (either cls, or
// whatever another goroutine beat it with) and whether this call actually
// won the race.
func (t *ClassTable) Insert(name string, cls *Class) (*Class, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.classes[name]; ok {
		return existing, false
	}
	t.classes[name] = cls
	return cls, true
}

func (t *ClassTable) InsertArray(name string, cls *ClassArray) (*ClassArray, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.arrays[name]; ok {
		return existing, false
	}
	t.arrays[name] = cls
	return cls, true
}

func (t *ClassTable) InsertPrimitive(name string, cls *ClassPrimitive) (*ClassPrimitive, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.prims[name]; ok {
		return existing, false
	}
	t.prims[name] = cls
	return cls, true
}

// Count returns the number of regular classes installed, mirroring the
// teacher's Classloader.GetCountOfLoadedClasses.
func (t *ClassTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.classes)
}

// preallocatePrimitives installs boolean/byte/char/short/int/float/long/
// double/void as ClassPrimitive entries. It installs no array classes; the
// root array classes are not preallocated here.
func preallocatePrimitives(names *intern.Table, table *ClassTable) {
	prims := []struct {
		name    string
		logSize int
	}{
		{"boolean", 0}, {"byte", 0}, {"char", 1}, {"short", 1},
		{"int", 2}, {"float", 2}, {"long", 3}, {"double", 3}, {"void", 0},
	}
	for _, p := range prims {
		n := names.LookupOrCreate(p.name)
		pc := &ClassPrimitive{CommonClass: newCommonClass(), LogSize: p.logSize}
		pc.Name = n
		pc.status.Store(int32(StatusReady))
		table.InsertPrimitive(p.name, pc)
	}
}
