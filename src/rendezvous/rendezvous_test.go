/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package rendezvous

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jacobin-core/corevm/src/thread"
)

func TestBeginCollectionWaitsForEveryCooperativeMutator(t *testing.T) {
	registry := thread.NewRegistry()
	initiator := thread.NewJavaThread(0, 0, 0)
	mutators := []*thread.JavaThread{
		thread.NewJavaThread(1, 0, 0),
		thread.NewJavaThread(2, 0, 0),
		thread.NewJavaThread(3, 0, 0),
	}
	registry.Add(initiator)
	for _, m := range mutators {
		registry.Add(m)
	}

	coord := NewCoordinator(registry)

	// Each mutator keeps passing safe points, as running code does, so it
	// checks in whether or not the cycle had begun at its first poll.
	var stop atomic.Bool
	var wg sync.WaitGroup
	for _, m := range mutators {
		wg.Add(1)
		go func(m *thread.JavaThread) {
			defer wg.Done()
			for !stop.Load() {
				coord.SafePointCheck(m)
				runtime.Gosched()
			}
		}(m)
	}

	tracedRoots := false
	err := coord.BeginCollection(context.Background(), initiator, func() { tracedRoots = true })
	require.NoError(t, err)
	require.True(t, tracedRoots)

	stop.Store(true)
	coord.EndCollection()
	wg.Wait()

	for _, m := range mutators {
		require.Equal(t, thread.StateRunning, m.WaitState())
	}
}

func TestUncooperativeMutatorIsNotWaitedOn(t *testing.T) {
	registry := thread.NewRegistry()
	initiator := thread.NewJavaThread(0, 0, 0)
	blocking := thread.NewJavaThread(1, 0, 0)
	blocking.EnterUncooperative()
	registry.Add(initiator)
	registry.Add(blocking)

	coord := NewCoordinator(registry)

	done := make(chan error, 1)
	go func() {
		done <- coord.BeginCollection(context.Background(), initiator, nil)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("BeginCollection should not wait on an uncooperative thread")
	}
	coord.EndCollection()
}

func TestBeginCollectionWithNoOtherThreadsReturnsImmediately(t *testing.T) {
	registry := thread.NewRegistry()
	initiator := thread.NewJavaThread(0, 0, 0)
	registry.Add(initiator)

	coord := NewCoordinator(registry)
	ran := false
	err := coord.BeginCollection(context.Background(), initiator, func() { ran = true })
	require.NoError(t, err)
	require.True(t, ran)
	coord.EndCollection()
}

func TestBeginCollectionContextCancelledTimesOut(t *testing.T) {
	registry := thread.NewRegistry()
	initiator := thread.NewJavaThread(0, 0, 0)
	stuck := thread.NewJavaThread(1, 0, 0) // cooperative but never calls SafePointCheck
	registry.Add(initiator)
	registry.Add(stuck)

	coord := NewCoordinator(registry)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := coord.BeginCollection(ctx, initiator, nil)
	require.Error(t, err)
}
