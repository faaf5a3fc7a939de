/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gcplan

import (
	"context"
	"sync"

	"jacobin-core/corevm/src/finalizer"
	"jacobin-core/corevm/src/rendezvous"
	"jacobin-core/corevm/src/thread"
)

// TestPlan is a minimal in-memory Plan: allocation is a plain Go byte
// slice, liveness is "not explicitly killed", forwarding is the identity
// function unless a Forward call recorded a new location for the ref. It
// exists only so the rest of the module's test suite has a
// concrete Plan to exercise — no real collector ships with the core
// (spec.md §1's scope line).
type TestPlan struct {
	registry    *thread.Registry
	rendezvous  *rendezvous.Coordinator
	underPressure bool

	mu      sync.Mutex
	dead    map[interface{}]bool
	forward map[interface{}]interface{}
	next    uintptr
	heap    map[Ptr][]byte
}

// NewTestPlan wires a TestPlan to registry, sharing the same rendezvous
// coordinator the real VM's safe-point checks would use.
func NewTestPlan(registry *thread.Registry) *TestPlan {
	return &TestPlan{
		registry:   registry,
		rendezvous: rendezvous.NewCoordinator(registry),
		dead:       make(map[interface{}]bool),
		forward:    make(map[interface{}]interface{}),
		heap:       make(map[Ptr][]byte),
		next:       1,
	}
}

func (p *TestPlan) Allocate(size uintptr, vtable interface{}, align uintptr) (Ptr, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if align > 1 {
		rem := p.next % align
		if rem != 0 {
			p.next += align - rem
		}
	}
	addr := p.next
	p.heap[addr] = make([]byte, size)
	p.next += size
	return addr, nil
}

func (p *TestPlan) ObjectReferenceWriteBarrier(container Ptr, slot *Ptr, newValue Ptr) {
	*slot = newValue
}

func (p *TestPlan) ObjectReferenceNonHeapWriteBarrier(slot *Ptr, newValue Ptr) {
	*slot = newValue
}

func (p *TestPlan) IsLive(ref interface{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.dead[ref]
}

func (p *TestPlan) GetForwarded(ref interface{}) interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fwd, ok := p.forward[ref]; ok {
		return fwd
	}
	return ref
}

func (p *TestPlan) RetainReferent(ref interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.dead, ref)
}

func (p *TestPlan) UnderMemoryPressure() bool { return p.underPressure }

// SetUnderMemoryPressure lets a test simulate the soft-reference retention
// condition of spec.md §4.J.
func (p *TestPlan) SetUnderMemoryPressure(v bool) { p.underPressure = v }

// Kill marks ref as dead for the next Scan call, the test harness's stand-in
// for "this object was not reached by the transitive root closure".
func (p *TestPlan) Kill(ref interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dead[ref] = true
}

// Forward records that ref moved to newRef, the test harness's stand-in for
// a copying collector's relocation.
func (p *TestPlan) Forward(ref, newRef interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forward[ref] = newRef
}

func (p *TestPlan) BeginCollection(ctx context.Context, initiator *thread.JavaThread, traceRoots func()) error {
	return p.rendezvous.BeginCollection(ctx, initiator, traceRoots)
}

func (p *TestPlan) EndCollection() { p.rendezvous.EndCollection() }

// ScanStack walks t's frame list, reporting every frame's metadata as a
// "live pointer slot" — the TestPlan does not distinguish individual
// fields within a frame, unlike a real plan's GC map.
func (p *TestPlan) ScanStack(t *thread.JavaThread, report func(slot interface{})) {
	t.WalkStack(func(fi thread.FrameInfo) {
		report(fi.Metadata)
	})
}

func (p *TestPlan) ScanWeakQueue(q *finalizer.Queues)         { q.ScanWeak(p) }
func (p *TestPlan) ScanSoftQueue(q *finalizer.Queues)         { q.ScanSoft(p) }
func (p *TestPlan) ScanPhantomQueue(q *finalizer.Queues)      { q.ScanPhantom(p) }
func (p *TestPlan) ScanFinalizationQueue(q *finalizer.Queues) { q.ScanFinalizationCandidates(p) }
