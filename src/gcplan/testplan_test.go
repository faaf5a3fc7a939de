/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gcplan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"jacobin-core/corevm/src/finalizer"
	"jacobin-core/corevm/src/thread"
)

func TestAllocateZeroesAndAligns(t *testing.T) {
	p := NewTestPlan(thread.NewRegistry())

	addr1, err := p.Allocate(16, nil, 8)
	require.NoError(t, err)
	require.Zero(t, addr1%8)

	addr2, err := p.Allocate(1, nil, 8)
	require.NoError(t, err)
	require.Zero(t, addr2%8)
	require.NotEqual(t, addr1, addr2)

	block := p.heap[addr1]
	require.Len(t, block, 16)
	for _, b := range block {
		require.Zero(t, b)
	}
}

func TestIsLiveAndForwardAndRetain(t *testing.T) {
	p := NewTestPlan(thread.NewRegistry())
	require.True(t, p.IsLive("a"))

	p.Kill("a")
	require.False(t, p.IsLive("a"))

	p.RetainReferent("a")
	require.True(t, p.IsLive("a"), "RetainReferent resurrects the referent")

	p.Forward("b", "b'")
	require.Equal(t, "b'", p.GetForwarded("b"))
	require.Equal(t, "c", p.GetForwarded("c"), "unforwarded refs are returned unchanged")
}

func TestBeginCollectionWaitsOnRendezvous(t *testing.T) {
	registry := thread.NewRegistry()
	initiator := thread.NewJavaThread(0, 0, 0)
	registry.Add(initiator)
	p := NewTestPlan(registry)

	ran := false
	err := p.BeginCollection(context.Background(), initiator, func() { ran = true })
	require.NoError(t, err)
	require.True(t, ran)
	p.EndCollection()
}

func TestScanStackReportsOnlyJavaFrames(t *testing.T) {
	jt := thread.NewJavaThread(1, 0, 0)
	jt.PushFrameInfo(thread.FrameInfo{IP: 1, Metadata: nil})
	jt.PushFrameInfo(thread.FrameInfo{IP: 2, Metadata: "slot"})

	p := NewTestPlan(thread.NewRegistry())
	var seen []interface{}
	p.ScanStack(jt, func(slot interface{}) { seen = append(seen, slot) })
	require.Equal(t, []interface{}{"slot"}, seen)
}

func TestScanQueuesDelegatesToFinalizerQueues(t *testing.T) {
	p := NewTestPlan(thread.NewRegistry())
	q := finalizer.NewQueues()
	q.AddReference(&finalizer.Ref{Semantics: finalizer.Weak, Object: "ref1", Referent: "referent1"})
	p.Kill("referent1")

	p.ScanWeakQueue(q)

	require.Empty(t, q.WeakLen())
}
