/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"jacobin-core/corevm/src/excnames"
	"jacobin-core/corevm/src/types"
)

// Field is one instance field's runtime value, tagged with its JVM
// descriptor, per the teacher's object.Field shape.
type Field struct {
	Ftype  string
	Fvalue interface{}
}

// Object is a heap object's core-visible shape: the header word (§4.F),
// its defining class, and instance field storage. The teacher's own
// Object carries both a Fields slice (ordinal access, used by the
// bytecode interpreter for fast field access) and a FieldTable map (named
// access, used by reflection/native code); both are kept for the same
// reason here.
type Object struct {
	Header Header

	// Klass names the defining class. The core does not import
	// classloader.Class directly to avoid a dependency cycle (classloader
	// will eventually hold *Object instances for boxed Class mirrors);
	// holding the interned name string is sufficient for every operation
	// this package performs.
	Klass *string

	Fields    []Field
	FieldTable map[string]*Field

	table *FatLockTable // shared table this object's fat lock (if any) lives in
}

// MakeEmptyObject allocates an Object with no class set, matching the
// teacher's MakeEmptyObject used as a placeholder before the class is
// known.
func MakeEmptyObject() *Object {
	return &Object{
		FieldTable: make(map[string]*Field),
	}
}

// NewObject allocates an Object of the named class backed by table for
// monitor inflation, per spec.md §6's allocate(class) call-in contract
// (the size/layout/zero-init itself is the GC plan's job; this is the
// header/field-storage shape the plan fills in).
func NewObject(klassName string, table *FatLockTable) *Object {
	o := &Object{
		Klass:      &klassName,
		FieldTable: make(map[string]*Field),
		table:      table,
	}
	return o
}

// NewStringObject creates an empty java/lang/String-shaped object, for
// CreateCompactStringFromGoString and the string-interning call-ins.
func NewStringObject() *Object {
	o := NewObject(types.StringClassName, nil)
	return o
}

// CreateCompactStringFromGoString builds a java/lang/String object backed
// by a compact byte-array "value" field, mirroring the teacher's
// CreateCompactStringFromGoString.
func CreateCompactStringFromGoString(s *string) *Object {
	o := NewStringObject()
	bytes := JavaByteArrayFromGoString(*s)
	o.FieldTable["value"] = &Field{Ftype: types.ByteArray, Fvalue: bytes}
	return o
}

// ToString renders the object for diagnostics/logging, matching the
// teacher's ToString used throughout trace output. Not a Java-semantics
// toString() (that goes through java/lang/Object.toString, §6) — purely a
// debug aid.
func (o *Object) ToString() string {
	var sb strings.Builder
	klassName := "<unknown>"
	if o.Klass != nil {
		klassName = *o.Klass
	}
	sb.WriteString(klassName)
	sb.WriteString(": {")

	first := true
	writeField := func(name string, f Field) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(name)
		sb.WriteString("(")
		sb.WriteString(f.Ftype)
		sb.WriteString(")=")
		sb.WriteString(renderFieldValue(f))
	}
	for i, f := range o.Fields {
		writeField(fmt.Sprintf("#%d", i), f)
	}
	for name, f := range o.FieldTable {
		writeField(name, *f)
	}
	sb.WriteString("}")
	return sb.String()
}

func renderFieldValue(f Field) string {
	if bytes, ok := f.Fvalue.([]types.JavaByte); ok {
		return GoStringFromJavaByteArray(bytes)
	}
	return fmt.Sprintf("%v", f.Fvalue)
}

// --- Monitor operations, spec.md §4.F ---

// MonitorEnter acquires obj's monitor for tid, inflating to a fat lock on
// thin-path recursion overflow or on first contention.
func (o *Object) MonitorEnter(tid uint64) {
	for {
		w := o.Header.load()
		if !isFat(w) {
			if nonLockBits(w) == w { // unlocked
				if o.Header.cas(w, withThin(w, tid, 0)) {
					return
				}
				continue
			}
			if lockOwner(w) == tid {
				r := recursionOf(w)
				if r < MaxRecursion {
					if o.Header.cas(w, withThin(w, tid, r+1)) {
						return
					}
					continue
				}
				o.inflate()
				continue
			}
			// contended by another thread: inflate and block on the fat lock.
			o.inflate()
			continue
		}
		fl := o.fatLockOf(w)
		if fl == nil {
			continue // lock was deallocated mid-race; retry from scratch
		}
		if o.acquireFat(fl, tid) {
			return
		}
		// association changed underneath us; loop and re-read the header.
	}
}

// acquireFat implements spec.md §4.F's fat-path acquire including the
// re-check-after-acquire rule.
func (o *Object) acquireFat(fl *FatLock, tid uint64) bool {
	fl.mu.Lock()
	fl.waitingCount++
	for fl.owner != 0 && fl.owner != tid {
		fl.cond.Wait()
	}
	if fl.dead || fl.associated != o { // fl.mu is held: IsAssociationLive would re-lock it
		fl.waitingCount--
		fl.mu.Unlock()
		return false
	}
	reentrant := fl.owner == tid
	fl.owner = tid
	if reentrant {
		fl.recursion++
	}
	fl.waitingCount--
	fl.mu.Unlock()
	return true
}

// inflate allocates a fat lock for o and installs it, carrying over
// whatever thin-lock state the header currently holds (owner/recursion, or
// unlocked) — derived fresh from the header each retry, never from a
// caller-supplied thread id, so a race where the thin lock was released
// between the caller's read and this call can't wrongly hand ownership to
// a thread that no longer holds it.
func (o *Object) inflate() {
	table := o.table
	if table == nil {
		return
	}
	fl := table.Allocate(o)
	for {
		w := o.Header.load()
		if isFat(w) {
			table.Deallocate(fl) // another thread already inflated; don't leak the id
			return
		}
		owner, recursion := uint64(0), uint64(0)
		if nonLockBits(w) != w { // currently thin-locked
			owner = lockOwner(w)
			recursion = recursionOf(w)
		}
		fl.mu.Lock()
		fl.owner = owner
		fl.recursion = int(recursion)
		fl.mu.Unlock()
		if o.Header.cas(w, withFat(w, fl.CompactID())) {
			return
		}
	}
}

func (o *Object) fatLockOf(w uint64) *FatLock {
	if o.table == nil {
		return nil
	}
	return o.table.GetFromID(int(lockOwner(w)))
}

// MonitorExit releases obj's monitor, panicking (the core's assertion; a
// higher level surfaces IllegalMonitorStateException) if tid is not the
// owner.
func (o *Object) MonitorExit(tid uint64) {
	w := o.Header.load()
	if !isFat(w) {
		if lockOwner(w) != tid {
			panic(excnames.IllegalMonitorStateException)
		}
		r := recursionOf(w)
		if r == 0 {
			o.Header.cas(w, withoutLock(w))
			return
		}
		o.Header.cas(w, withThin(w, tid, r-1))
		return
	}
	fl := o.fatLockOf(w)
	if fl == nil {
		panic(excnames.IllegalMonitorStateException)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.owner != tid {
		panic(excnames.IllegalMonitorStateException)
	}
	if fl.recursion > 0 {
		fl.recursion--
		return
	}
	fl.owner = 0
	fl.cond.Signal()
}

// Wait implements spec.md §4.F's wait algorithm. timeoutNs == 0 means wait
// indefinitely. Returns true if woken by notify, false if timed out.
// interrupted reports whether the caller's interrupt flag fired during the
// wait (checked via isInterrupted, supplied by the thread package through
// this narrow callback to avoid an import cycle).
func (o *Object) Wait(tid uint64, timeoutNs int64, isInterrupted func() bool) (notified bool, interrupted bool) {
	w := o.Header.load()
	if !isFat(w) {
		o.inflate()
		w = o.Header.load()
	}
	fl := o.fatLockOf(w)
	if fl == nil || fl.owner != tid {
		panic(excnames.IllegalMonitorStateException)
	}

	fl.mu.Lock()
	savedRecursion := fl.recursion
	fl.recursion = 0
	fl.owner = 0
	node := &waitNode{tid: tid, cond: sync.NewCond(&fl.mu)}
	fl.linkWait(node)
	fl.cond.Signal() // wake any thin-style acquirer blocked on fl.owner==0

	timedOut := false
	if timeoutNs > 0 {
		timer := time.AfterFunc(time.Duration(timeoutNs), func() {
			fl.mu.Lock()
			if !node.woken {
				node.woken = true
				timedOut = true
				fl.unlinkWait(node)
			}
			node.cond.Signal()
			fl.mu.Unlock()
		})
		for !node.woken && !(isInterrupted != nil && isInterrupted()) {
			node.cond.Wait()
		}
		timer.Stop()
	} else {
		for !node.woken && !(isInterrupted != nil && isInterrupted()) {
			node.cond.Wait()
		}
	}

	wasInterrupted := isInterrupted != nil && isInterrupted() && !node.woken
	if wasInterrupted {
		fl.unlinkWait(node)
	}
	for fl.owner != 0 {
		fl.cond.Wait()
	}
	fl.owner = tid
	fl.recursion = savedRecursion
	notified = node.woken && !timedOut
	fl.mu.Unlock()

	return notified, wasInterrupted
}

// Notify picks the first non-interrupted thread in the ring, per spec.md
// §4.F.
func (o *Object) Notify() {
	w := o.Header.load()
	fl := o.fatLockOf(w)
	if fl == nil {
		return
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	for n := fl.ring; n != nil; n = n.next {
		if !n.interrupted {
			fl.unlinkWait(n)
			n.woken = true
			n.cond.Signal()
			return
		}
		if n.next == fl.ring {
			return // walked the whole ring
		}
	}
}

// SignalInterrupted wakes the waiter identified by tid, if any, so a
// thread package's Interrupt() can unpark a Wait() call per spec.md §5's
// "the parked thread's condition variable is signaled by the interrupter"
// rule — setting the interrupt flag alone is not enough to wake the cond.
func (o *Object) SignalInterrupted(tid uint64) {
	w := o.Header.load()
	fl := o.fatLockOf(w)
	if fl == nil {
		return
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	for n := fl.ring; n != nil; n = n.next {
		if n.tid == tid {
			n.interrupted = true
			n.cond.Signal()
			return
		}
		if n.next == fl.ring {
			return // walked the whole ring
		}
	}
}

// NotifyAll wakes every waiter in the ring.
func (o *Object) NotifyAll() {
	w := o.Header.load()
	fl := o.fatLockOf(w)
	if fl == nil {
		return
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	for fl.ring != nil {
		n := fl.ring
		fl.unlinkWait(n)
		n.woken = true
		n.cond.Signal()
	}
}

func (fl *FatLock) linkWait(n *waitNode) {
	if fl.ring == nil {
		n.next, n.prev = n, n
		fl.ring = n
		return
	}
	first := fl.ring
	last := first.prev
	n.prev, n.next = last, first
	last.next = n
	first.prev = n
	fl.ring = n // "insert before firstThread" per spec.md §4.F step 2
}

func (fl *FatLock) unlinkWait(n *waitNode) {
	if n.next == n {
		fl.ring = nil
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	if fl.ring == n {
		fl.ring = n.next
	}
	n.next, n.prev = nil, nil
}
