/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package finalizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeHooks is a minimal CollectorHooks stub: dead marks which objects
// (by identity, compared via interface equality of the string payload
// used in these tests) do not survive the cycle; forward renames survivors.
type fakeHooks struct {
	dead             map[interface{}]bool
	memoryPressure   bool
	retained         []interface{}
	forwardedSuffix  string
}

func (f *fakeHooks) IsLive(ref interface{}) bool { return !f.dead[ref] }
func (f *fakeHooks) GetForwarded(ref interface{}) interface{} {
	return ref.(string) + f.forwardedSuffix
}
func (f *fakeHooks) RetainReferent(ref interface{}) { f.retained = append(f.retained, ref) }
func (f *fakeHooks) UnderMemoryPressure() bool      { return f.memoryPressure }

func TestScanDropsReferenceWhoseReferentDied(t *testing.T) {
	q := NewQueues()
	q.AddReference(&Ref{Semantics: Weak, Object: "ref1", Referent: "referent1"})
	hooks := &fakeHooks{dead: map[interface{}]bool{"referent1": true}, forwardedSuffix: "'"}

	q.Scan(hooks)

	require.Empty(t, q.weak.refs)
	require.Len(t, q.toEnqueue.items, 1)
	pushed := q.toEnqueue.items[0].(*Ref)
	require.Nil(t, pushed.Referent)
}

func TestScanDropsReferenceItselfWhenNotLive(t *testing.T) {
	q := NewQueues()
	q.AddReference(&Ref{Semantics: Weak, Object: "deadRef", Referent: "referent1"})
	hooks := &fakeHooks{dead: map[interface{}]bool{"deadRef": true}}

	q.Scan(hooks)

	require.Empty(t, q.weak.refs)
	require.Empty(t, q.toEnqueue.items, "a reference whose own object died is dropped, not enqueued")
}

func TestScanForwardsSurvivingReference(t *testing.T) {
	q := NewQueues()
	q.AddReference(&Ref{Semantics: Weak, Object: "ref1", Referent: "referent1"})
	hooks := &fakeHooks{dead: map[interface{}]bool{}, forwardedSuffix: "'"}

	q.Scan(hooks)

	require.Len(t, q.weak.refs, 1)
	require.Equal(t, "ref1'", q.weak.refs[0].Object)
	require.Equal(t, "referent1'", q.weak.refs[0].Referent)
}

func TestScanSoftRetainsUnderMemoryPressure(t *testing.T) {
	q := NewQueues()
	q.AddReference(&Ref{Semantics: Soft, Object: "ref1", Referent: "referent1"})
	hooks := &fakeHooks{dead: map[interface{}]bool{}, memoryPressure: true, forwardedSuffix: "'"}

	q.Scan(hooks)

	require.Equal(t, []interface{}{"referent1"}, hooks.retained)
}

func TestScanPhantomNeverRetainsViaReference(t *testing.T) {
	q := NewQueues()
	q.AddReference(&Ref{Semantics: Phantom, Object: "ref1", Referent: "referent1"})
	hooks := &fakeHooks{dead: map[interface{}]bool{}, memoryPressure: true, forwardedSuffix: "'"}

	q.Scan(hooks)

	require.Empty(t, hooks.retained)
}

func TestScanFinalizationCandidateResurrectsOnDeath(t *testing.T) {
	q := NewQueues()
	q.RegisterFinalizationCandidate("candidate1")
	hooks := &fakeHooks{dead: map[interface{}]bool{"candidate1": true}, forwardedSuffix: "'"}

	q.Scan(hooks)

	require.Empty(t, q.candidates)
	require.Equal(t, []interface{}{"candidate1"}, q.readyToFinalize.items)
	require.Equal(t, []interface{}{"candidate1"}, hooks.retained)
}

func TestScanFinalizationCandidateForwardedWhenLive(t *testing.T) {
	q := NewQueues()
	q.RegisterFinalizationCandidate("candidate1")
	hooks := &fakeHooks{dead: map[interface{}]bool{}, forwardedSuffix: "'"}

	q.Scan(hooks)

	require.Equal(t, []interface{}{"candidate1'"}, q.candidates)
	require.Empty(t, q.readyToFinalize.items)
}
