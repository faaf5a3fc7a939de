/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package finalizer implements spec.md §4.J: the Soft/Weak/Phantom
// reference queues, the enqueue queue, and the finalization candidate/ready
// lists, plus the two service threads that drain them. Grounded on VMKit's
// lib/J3/VMCore/ReferenceQueue.cpp/.h (ReferenceThread, ReferenceQueue,
// INITIAL_QUEUE_SIZE/GROW_FACTOR, the ToEnqueue growable array); the paired
// worker lifecycle uses golang.org/x/sync/errgroup (see workers.go).
package finalizer

import "sync"

const (
	initialQueueSize = 256
	growFactor       = 2
)

// Semantics distinguishes the three reference-queue scan rules of spec.md
// §4.J step 1, matching VMKit's ReferenceQueue::WEAK/SOFT/PHANTOM enum.
type Semantics int

const (
	Weak Semantics = iota
	Soft
	Phantom
)

// Ref is the core's view of a reference object: enough to run the scan
// rules without needing the full heap object shape. Referent and the
// object itself are opaque references (interface{}) because this package
// must not import object/classloader to avoid a cycle — the GC plan is the
// one place that knows how to dereference them.
type Ref struct {
	Semantics Semantics
	Object    interface{} // the Reference instance itself
	Referent  interface{} // nil once cleared
}

// growableArray is the core's Go rendering of VMKit's ToEnqueue: a plain
// slice with 2x growth, initial capacity 256, kept as an explicit type
// (rather than a bare append-only slice) so Queues' fields read the same
// way VMKit's four parallel arrays do.
type growableArray struct {
	items []interface{}
}

func newGrowableArray() *growableArray {
	return &growableArray{items: make([]interface{}, 0, initialQueueSize)}
}

func (g *growableArray) push(v interface{}) {
	if len(g.items) == cap(g.items) && cap(g.items) > 0 {
		grown := make([]interface{}, len(g.items), cap(g.items)*growFactor)
		copy(grown, g.items)
		g.items = grown
	}
	g.items = append(g.items, v)
}

func (g *growableArray) drainAll() []interface{} {
	out := g.items
	g.items = make([]interface{}, 0, initialQueueSize)
	return out
}

// refQueue holds live Refs of one semantics, scanned in place each cycle
// per ReferenceQueue::scan's compacting loop.
type refQueue struct {
	mu   sync.Mutex
	refs []*Ref
}

func newRefQueue() *refQueue {
	return &refQueue{refs: make([]*Ref, 0, initialQueueSize)}
}

func (q *refQueue) add(r *Ref) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.refs = append(q.refs, r)
}

// Queues is the full set of GC-visible reference/finalization state one VM
// instance owns, per spec.md §4.J's "three queues + enqueue queue +
// finalization candidate list + finalization-ready list".
type Queues struct {
	weak    *refQueue
	soft    *refQueue
	phantom *refQueue

	enqueueMu    sync.Mutex
	enqueueCond  *sync.Cond
	toEnqueue    *growableArray

	finalizeMu      sync.Mutex
	finalizeCond    *sync.Cond
	candidates      []interface{} // objects with a finalize()/operator_delete, awaiting death
	readyToFinalize *growableArray
}

// NewQueues allocates empty queues with their condition variables wired.
func NewQueues() *Queues {
	q := &Queues{
		weak:            newRefQueue(),
		soft:            newRefQueue(),
		phantom:         newRefQueue(),
		toEnqueue:       newGrowableArray(),
		readyToFinalize: newGrowableArray(),
	}
	q.enqueueCond = sync.NewCond(&q.enqueueMu)
	q.finalizeCond = sync.NewCond(&q.finalizeMu)
	return q
}

// AddReference registers r in the queue matching its semantics, called by
// the allocator/interpreter when a Soft/Weak/PhantomReference is
// constructed.
func (q *Queues) AddReference(r *Ref) {
	switch r.Semantics {
	case Soft:
		q.soft.add(r)
	case Phantom:
		q.phantom.add(r)
	default:
		q.weak.add(r)
	}
}

// WeakLen, SoftLen, and PhantomLen report the current size of each
// reference queue, for callers (tests, metrics) outside the package that
// need visibility without reaching into the unexported refQueue.
func (q *Queues) WeakLen() int    { q.weak.mu.Lock(); defer q.weak.mu.Unlock(); return len(q.weak.refs) }
func (q *Queues) SoftLen() int    { q.soft.mu.Lock(); defer q.soft.mu.Unlock(); return len(q.soft.refs) }
func (q *Queues) PhantomLen() int { q.phantom.mu.Lock(); defer q.phantom.mu.Unlock(); return len(q.phantom.refs) }

// RegisterFinalizationCandidate records obj as needing a finalize() call
// (or native destructor) once unreachable, called at allocation time for
// classes whose VT carries an operator_delete slot or a finalize() method
// that isn't Object's no-op.
func (q *Queues) RegisterFinalizationCandidate(obj interface{}) {
	q.finalizeMu.Lock()
	defer q.finalizeMu.Unlock()
	q.candidates = append(q.candidates, obj)
}
