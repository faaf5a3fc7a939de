/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package finalizer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeInterpreter struct {
	mu         sync.Mutex
	enqueued   []interface{}
	finalized  []interface{}
	nativeObjs map[interface{}]bool
	natived    []interface{}
}

func newFakeInterpreter() *fakeInterpreter {
	return &fakeInterpreter{nativeObjs: map[interface{}]bool{}}
}

func (f *fakeInterpreter) InvokeEnqueue(ref interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, ref)
	return nil
}

func (f *fakeInterpreter) InvokeFinalize(obj interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalized = append(f.finalized, obj)
	return nil
}

func (f *fakeInterpreter) NativeDestructor(obj interface{}) (func() error, bool) {
	f.mu.Lock()
	hasNative := f.nativeObjs[obj]
	f.mu.Unlock()
	if !hasNative {
		return nil, false
	}
	return func() error {
		f.mu.Lock()
		f.natived = append(f.natived, obj)
		f.mu.Unlock()
		return nil
	}, true
}

func waitFor(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached within timeout")
}

func TestEnqueueWorkerDrainsAndInvokes(t *testing.T) {
	q := NewQueues()
	interp := newFakeInterpreter()
	w := NewWorkers(q, interp)
	w.Start(context.Background())
	defer w.Stop()

	q.pushEnqueue(&Ref{Object: "ref1"})
	q.pushEnqueue(&Ref{Object: "ref2"})

	waitFor(t, time.Second, func() bool {
		interp.mu.Lock()
		defer interp.mu.Unlock()
		return len(interp.enqueued) == 2
	})
}

func TestFinalizerWorkerPrefersNativeDestructor(t *testing.T) {
	q := NewQueues()
	interp := newFakeInterpreter()
	interp.nativeObjs["obj1"] = true
	w := NewWorkers(q, interp)
	w.Start(context.Background())
	defer w.Stop()

	q.finalizeMu.Lock()
	q.readyToFinalize.push("obj1")
	q.finalizeCond.Signal()
	q.finalizeMu.Unlock()

	waitFor(t, time.Second, func() bool {
		interp.mu.Lock()
		defer interp.mu.Unlock()
		return len(interp.natived) == 1
	})
	require.Empty(t, interp.finalized)
}

func TestFinalizerWorkerFallsBackToInvokeFinalize(t *testing.T) {
	q := NewQueues()
	interp := newFakeInterpreter()
	w := NewWorkers(q, interp)
	w.Start(context.Background())
	defer w.Stop()

	q.finalizeMu.Lock()
	q.readyToFinalize.push("obj2")
	q.finalizeCond.Signal()
	q.finalizeMu.Unlock()

	waitFor(t, time.Second, func() bool {
		interp.mu.Lock()
		defer interp.mu.Unlock()
		return len(interp.finalized) == 1
	})
}

func TestWorkersStopReturnsPromptly(t *testing.T) {
	q := NewQueues()
	interp := newFakeInterpreter()
	w := NewWorkers(q, interp)
	w.Start(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Stop() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Stop() should return once both workers observe cancellation")
	}
}
