/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package finalizer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"jacobin-core/corevm/src/trace"
)

// Interpreter is the narrow call-in surface the workers need back into the
// interpreter (spec.md §6): invoking Reference.enqueue() and
// Object.finalize(), or a native destructor when the VT supplies one.
type Interpreter interface {
	InvokeEnqueue(ref interface{}) error
	InvokeFinalize(obj interface{}) error
	NativeDestructor(obj interface{}) (func() error, bool) // ok=false if the VT has no operator_delete slot
}

// Workers owns the two service threads of spec.md §4.J/§5: the enqueue
// worker and the finalizer worker, each an ordinary goroutine blocking on a
// condition variable. Grounded on VMKit's ReferenceThread::enqueueStart
// loop shape, with the two lifecycles paired via golang.org/x/sync/errgroup.
type Workers struct {
	queues *Queues
	interp Interpreter
	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewWorkers wires the two workers to queues and interp but does not start
// them; call Start.
func NewWorkers(queues *Queues, interp Interpreter) *Workers {
	return &Workers{queues: queues, interp: interp}
}

// Start launches the enqueue worker and the finalizer worker. Stop cancels
// both and waits for them to exit.
func (w *Workers) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)
	w.cancel = cancel
	w.group = group

	group.Go(func() error {
		w.runEnqueueWorker(gctx)
		return nil
	})
	group.Go(func() error {
		w.runFinalizerWorker(gctx)
		return nil
	})
}

// Stop cancels both workers and blocks until they have returned. Cancelling
// the context alone would not wake a worker parked in cond.Wait() with an
// empty queue, so both conditions are broadcast as well.
func (w *Workers) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	q := w.queues
	q.enqueueMu.Lock()
	q.enqueueCond.Broadcast()
	q.enqueueMu.Unlock()
	q.finalizeMu.Lock()
	q.finalizeCond.Broadcast()
	q.finalizeMu.Unlock()

	if w.group == nil {
		return nil
	}
	return w.group.Wait()
}

// runEnqueueWorker implements spec.md §4.J's "wakes on a condition and pops
// from the enqueue queue, invoking Reference.enqueue(); exceptions are
// swallowed."
func (w *Workers) runEnqueueWorker(ctx context.Context) {
	q := w.queues
	for {
		q.enqueueMu.Lock()
		for len(q.toEnqueue.items) == 0 {
			if ctx.Err() != nil {
				q.enqueueMu.Unlock()
				return
			}
			q.enqueueCond.Wait()
		}
		batch := q.toEnqueue.drainAll()
		q.enqueueMu.Unlock()

		for _, item := range batch {
			r, ok := item.(*Ref)
			if !ok {
				continue
			}
			if err := w.interp.InvokeEnqueue(r.Object); err != nil {
				trace.Warning("finalizer: Reference.enqueue() raised, swallowed")
			}
		}
	}
}

// runFinalizerWorker implements the matching finalizer-ready drain: invoke
// Object.finalize() via the interpreter, or the class's native destructor
// if the VT supplies one. Both paths catch and log, never propagate.
func (w *Workers) runFinalizerWorker(ctx context.Context) {
	q := w.queues
	for {
		q.finalizeMu.Lock()
		for len(q.readyToFinalize.items) == 0 {
			if ctx.Err() != nil {
				q.finalizeMu.Unlock()
				return
			}
			q.finalizeCond.Wait()
		}
		batch := q.readyToFinalize.drainAll()
		q.finalizeMu.Unlock()

		for _, obj := range batch {
			w.finalizeOne(obj)
		}
	}
}

func (w *Workers) finalizeOne(obj interface{}) {
	if destructor, ok := w.interp.NativeDestructor(obj); ok {
		if err := destructor(); err != nil {
			trace.Warning("finalizer: native destructor raised, swallowed")
		}
		return
	}
	if err := w.interp.InvokeFinalize(obj); err != nil {
		trace.Warning("finalizer: Object.finalize() raised, swallowed")
	}
}
