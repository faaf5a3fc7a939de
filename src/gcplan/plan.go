/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package gcplan defines the narrow interface the core consumes from a GC
// plan (spec.md §4.K's table verbatim) and a TestPlan in-memory
// implementation used by the rest of the module's test suite. No real GC
// plan ships with the core — that boundary is spec.md §1's explicit
// scope line — so this package's job is purely the call-in/call-out shape.
package gcplan

import (
	"context"

	"jacobin-core/corevm/src/finalizer"
	"jacobin-core/corevm/src/thread"
)

// SingleIsolate is the NR_ISOLATES constant of spec.md §9's Open Question:
// kept fixed at a single isolate rather than varied, per DESIGN.md's
// decision.
const SingleIsolate = 0

// Ptr is an opaque heap reference as the plan hands it back; callers treat
// it as an address, never dereferencing it directly (only the plan knows
// the object layout it chose).
type Ptr = uintptr

// Plan is the full core-to-plan and plan-to-core surface of spec.md §4.K.
type Plan interface {
	// Allocate returns a zero-initialized block of size bytes aligned to
	// align, with vtable installed, performing no safe point until it
	// returns (core → plan). vtable is opaque here (typically a
	// *classloader.VTable) — gcplan does not import classloader.
	Allocate(size uintptr, vtable interface{}, align uintptr) (Ptr, error)

	// ObjectReferenceWriteBarrier is called for every store to a
	// reference field inside a heap-allocated container (core → plan).
	ObjectReferenceWriteBarrier(container Ptr, slot *Ptr, newValue Ptr)

	// ObjectReferenceNonHeapWriteBarrier is the same, for roots outside
	// the heap (core → plan).
	ObjectReferenceNonHeapWriteBarrier(slot *Ptr, newValue Ptr)

	// IsLive reports whether ref survived the current collection. Only
	// valid during a collection (core → plan).
	IsLive(ref interface{}) bool

	// GetForwarded returns ref's new location. Valid during tracing
	// (core → plan).
	GetForwarded(ref interface{}) interface{}

	// RetainReferent is soft-reference retention (core → plan).
	RetainReferent(ref interface{})

	// UnderMemoryPressure reports whether Soft references should retain
	// their referent this cycle; consulted by finalizer.Queues.Scan.
	UnderMemoryPressure() bool

	// BeginCollection / EndCollection are the plan's hooks into the
	// rendezvous coordinator (plan → core).
	BeginCollection(ctx context.Context, initiator *thread.JavaThread, traceRoots func()) error
	EndCollection()

	// ScanStack iterates t's frames, reporting each live pointer slot
	// (plan → core).
	ScanStack(t *thread.JavaThread, report func(slot interface{}))

	// ScanWeakQueue / ScanSoftQueue / ScanPhantomQueue drive
	// finalizer.Queues.ScanWeak / ScanSoft / ScanPhantom respectively
	// (plan → core, spec.md §4.J).
	ScanWeakQueue(q *finalizer.Queues)
	ScanSoftQueue(q *finalizer.Queues)
	ScanPhantomQueue(q *finalizer.Queues)

	// ScanFinalizationQueue drives the finalization candidate scan
	// (plan → core, spec.md §4.J step 2).
	ScanFinalizationQueue(q *finalizer.Queues)
}

// ScanPolicy is a pluggable hook a Plan may consult while walking roots —
// e.g. to skip references the embedder considers stale (spec.md §9's OSGi
// Open Question). Left unused by TestPlan; a real plan wires it in if it
// needs that extension point.
type ScanPolicy interface {
	ShouldScan(ref interface{}) bool
}
