/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package rendezvous implements spec.md §4.I: the cooperative stop-the-
// world barrier the GC plan drives via begin_collection/end_collection.
// The "rendezvous" vocabulary itself, and the safe-point/uncooperative
// split it coordinates, come from VMKit's include/mvm/Threads/CollectionRV.h.
package rendezvous

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"jacobin-core/corevm/src/thread"
	"jacobin-core/corevm/src/trace"
)

// Coordinator is the global rendezvous lock plus the per-cycle accounting
// spec.md §4.I describes.
type Coordinator struct {
	registry *thread.Registry

	// lock guards the fields below against concurrent BeginCollection
	// calls; spec.md §5 calls this the "rendezvous lock for
	// collector/mutator synchronization".
	lock    sync.Mutex
	inCycle bool
	resume  chan struct{} // closed by EndCollection to release parked mutators

	// sem is the fan-in barrier: BeginCollection acquires a weight equal
	// to the number of cooperative mutators, and each of their
	// SafePointCheck calls releases one unit back, so Acquire unblocks
	// exactly when every mutator has checked in. Grounded on
	// golang.org/x/sync/semaphore's weighted-acquire pattern in place of a
	// hand-rolled counter+cond, since the corpus already pulls in
	// golang.org/x/sync for this kind of fan-in/fan-out coordination.
	sem *semaphore.Weighted
}

// NewCoordinator creates a rendezvous coordinator over registry.
func NewCoordinator(registry *thread.Registry) *Coordinator {
	return &Coordinator{registry: registry}
}

// SafePointCheck is what the JIT collaborator emits at method entry/exit,
// loop back-edges, after returns, and at allocation slow paths (spec.md
// §4.I). It must be called at every safe point; it blocks only while a
// collection cycle is in progress, and only the first call during a given
// cycle releases the barrier unit (a thread may pass several safe points
// before the cycle ends).
func (c *Coordinator) SafePointCheck(t *thread.JavaThread) {
	c.lock.Lock()
	if !c.inCycle || t.WaitState() == thread.StateWaiting {
		c.lock.Unlock()
		return
	}
	sem := c.sem
	resume := c.resume
	t.SetWaitState(thread.StateWaiting)
	c.lock.Unlock()

	sem.Release(1)
	<-resume
	t.SetWaitState(thread.StateRunning)
}

// BeginCollection implements spec.md §4.I steps 1-4: acquire the
// rendezvous lock, flag every other thread, wait for each to either reach
// a safe point or already be uncooperative, then invoke traceRoots.
func (c *Coordinator) BeginCollection(ctx context.Context, initiator *thread.JavaThread, traceRoots func()) error {
	c.lock.Lock()

	total := 0
	c.registry.Each(func(t *thread.JavaThread) {
		if t == initiator || !t.IsCooperative() {
			return // uncooperative threads are counted live, not waited on
		}
		total++
	})

	sem := semaphore.NewWeighted(int64(total) + 1)
	// Hold every unit up front, so the Acquire below succeeds only after
	// each cooperative mutator's SafePointCheck has released one back.
	sem.TryAcquire(int64(total) + 1)
	c.sem = sem
	c.resume = make(chan struct{})
	c.inCycle = true
	c.lock.Unlock()

	if total > 0 {
		if err := sem.Acquire(ctx, int64(total)); err != nil {
			c.lock.Lock()
			c.inCycle = false
			close(c.resume)
			c.resume = nil
			c.lock.Unlock()
			return err
		}
		sem.Release(int64(total))
	}

	trace.Trace("rendezvous: all mutators accounted for, tracing roots")
	if traceRoots != nil {
		traceRoots()
	}
	return ctx.Err()
}

// EndCollection implements spec.md §4.I step 5: clear the cycle flag so
// every thread blocked in SafePointCheck resumes.
func (c *Coordinator) EndCollection() {
	c.lock.Lock()
	c.inCycle = false
	if c.resume != nil {
		close(c.resume)
		c.resume = nil
	}
	c.sem = nil
	c.lock.Unlock()
	trace.Trace("rendezvous: collection ended, mutators resumed")
}
