/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package finalizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrowableArrayGrowsByFactorTwo(t *testing.T) {
	g := newGrowableArray()
	require.Equal(t, initialQueueSize, cap(g.items))

	for i := 0; i < initialQueueSize+1; i++ {
		g.push(i)
	}
	require.Equal(t, initialQueueSize*growFactor, cap(g.items))
	require.Len(t, g.items, initialQueueSize+1)
}

func TestGrowableArrayDrainAllResetsToInitialCapacity(t *testing.T) {
	g := newGrowableArray()
	g.push("a")
	g.push("b")

	drained := g.drainAll()
	require.Equal(t, []interface{}{"a", "b"}, drained)
	require.Empty(t, g.items)
	require.Equal(t, initialQueueSize, cap(g.items))
}

func TestAddReferenceRoutesBySemantics(t *testing.T) {
	q := NewQueues()
	weakRef := &Ref{Semantics: Weak, Object: "w"}
	softRef := &Ref{Semantics: Soft, Object: "s"}
	phantomRef := &Ref{Semantics: Phantom, Object: "p"}

	q.AddReference(weakRef)
	q.AddReference(softRef)
	q.AddReference(phantomRef)

	require.Len(t, q.weak.refs, 1)
	require.Len(t, q.soft.refs, 1)
	require.Len(t, q.phantom.refs, 1)
}

func TestRegisterFinalizationCandidate(t *testing.T) {
	q := NewQueues()
	q.RegisterFinalizationCandidate("obj1")
	q.RegisterFinalizationCandidate("obj2")
	require.Equal(t, []interface{}{"obj1", "obj2"}, q.candidates)
}
