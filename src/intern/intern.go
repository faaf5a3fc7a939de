/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package intern implements spec.md §4.A: a per-loader name interner with
// pointer-equality handles, plus the Typedef/Signdef descriptor model built
// on top of interned names. The teacher's jacobin/stringPool is a single
// process-wide table of Go strings indexed by uint32; this module
// generalizes that idea to the per-loader table spec.md actually asks for,
// while keeping the teacher's "index is the handle" calling convention so
// a Name can be copied, compared, and hashed as cheaply as an integer.
package intern

import (
	"sync"
)

// Name is an interned, immutable identifier. Two Names from the same Table
// compare equal (by value) iff they refer to the same string — comparison
// never touches the underlying bytes.
type Name struct {
	table *Table
	index uint32
}

// String returns the underlying text. O(1): the table never moves or frees
// entries once interned.
func (n Name) String() string {
	if n.table == nil {
		return ""
	}
	return n.table.stringAt(n.index)
}

// IsZero reports whether n was never assigned (the zero Name value).
func (n Name) IsZero() bool {
	return n.table == nil
}

// Equal does pointer-equality via the interned index — no string compare.
func (n Name) Equal(other Name) bool {
	return n.table == other.table && n.index == other.index
}

// Table is a per-classloader name interner. The fast path (a name already
// present) takes only a read lock; only a miss takes the write lock, per
// spec.md §4.A.
type Table struct {
	mu      sync.RWMutex
	byIndex []string
	byText  map[string]uint32
}

// NewTable creates an empty interner for one classloader.
func NewTable() *Table {
	return &Table{byText: make(map[string]uint32, 1024)}
}

func (t *Table) stringAt(idx uint32) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(idx) >= len(t.byIndex) {
		return ""
	}
	return t.byIndex[idx]
}

// StringAt exposes stringAt for callers outside the package that need raw
// index access (e.g. object.JavaByteArrayFromInternTableIndex).
func (t *Table) StringAt(idx uint32) string { return t.stringAt(idx) }

// LookupOrCreate returns the interned Name for text, creating a new entry
// only if it's not already present. This is spec.md's lookup_or_create.
func (t *Table) LookupOrCreate(text string) Name {
	t.mu.RLock()
	if idx, ok := t.byText[text]; ok {
		t.mu.RUnlock()
		return Name{table: t, index: idx}
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	// re-check: another writer may have interned it while we waited for the lock.
	if idx, ok := t.byText[text]; ok {
		return Name{table: t, index: idx}
	}
	idx := uint32(len(t.byIndex))
	t.byIndex = append(t.byIndex, text)
	t.byText[text] = idx
	return Name{table: t, index: idx}
}

// Lookup returns the interned Name for text and true, or the zero Name and
// false if text was never interned. Unlike LookupOrCreate it never takes
// the write lock.
func (t *Table) Lookup(text string) (Name, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.byText[text]
	if !ok {
		return Name{}, false
	}
	return Name{table: t, index: idx}, true
}

// Substring interns the [start:end) slice of n's text without the caller
// needing to materialize it first (spec.md §3's "substring" operation).
func (t *Table) Substring(n Name, start, end int) Name {
	s := n.String()
	if start < 0 || end > len(s) || start > end {
		return Name{}
	}
	return t.LookupOrCreate(s[start:end])
}

// InternalToJava converts a slash-separated internal class name ("java/lang/Object")
// into its dotted Java-source form ("java.lang.Object"), interning the result.
func (t *Table) InternalToJava(n Name) Name {
	return t.LookupOrCreate(replaceAll(n.String(), '/', '.'))
}

// JavaToInternal is the inverse of InternalToJava.
func (t *Table) JavaToInternal(n Name) Name {
	return t.LookupOrCreate(replaceAll(n.String(), '.', '/'))
}

func replaceAll(s string, from, to byte) string {
	b := []byte(s)
	for i := range b {
		if b[i] == from {
			b[i] = to
		}
	}
	return string(b)
}

// Size returns the number of interned names, mirroring the teacher's
// stringPool.GetStringPoolSize().
func (t *Table) Size() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return uint32(len(t.byIndex))
}
