/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package finalizer

// CollectorHooks is the narrow slice of gcplan.Plan this package needs
// during a collection cycle (spec.md §4.K's is_live/get_forwarded/
// retain_referent), kept as its own interface so finalizer never imports
// gcplan — gcplan.TestPlan satisfies it structurally.
type CollectorHooks interface {
	IsLive(ref interface{}) bool
	GetForwarded(ref interface{}) interface{}
	RetainReferent(ref interface{})
	UnderMemoryPressure() bool
}

// ScanWeak, ScanSoft, and ScanPhantom each implement spec.md §4.J step 1
// for one reference semantics — separate plan→core call-ins
// (scan_weak/soft/phantom_queue in spec.md §4.K's table), so a plan that
// interleaves them with other per-semantics bookkeeping can call each on
// its own without re-processing the other two queues.
func (q *Queues) ScanWeak(hooks CollectorHooks)    { q.scanOne(q.weak, hooks) }
func (q *Queues) ScanSoft(hooks CollectorHooks)    { q.scanOne(q.soft, hooks) }
func (q *Queues) ScanPhantom(hooks CollectorHooks) { q.scanOne(q.phantom, hooks) }

// Scan runs all three reference-queue scans plus the finalization
// candidate scan in one call — a convenience for callers (and tests) that
// don't need the plan-visible granularity scan_weak/soft/phantom_queue
// expose separately.
func (q *Queues) Scan(hooks CollectorHooks) {
	q.ScanWeak(hooks)
	q.ScanSoft(hooks)
	q.ScanPhantom(hooks)
	q.ScanFinalizationCandidates(hooks)
}

func (q *Queues) scanOne(rq *refQueue, hooks CollectorHooks) {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	survivors := rq.refs[:0]
	for _, r := range rq.refs {
		if !hooks.IsLive(r.Object) {
			r.Referent = nil
			continue // reference itself died; drop it entirely
		}

		if r.Referent == nil {
			continue // already cleared in a prior cycle
		}

		if r.Semantics == Soft && hooks.UnderMemoryPressure() {
			hooks.RetainReferent(r.Referent)
		}
		// Phantom referents are never retained via r, per spec.md §4.J.

		if hooks.IsLive(r.Referent) {
			r.Object = hooks.GetForwarded(r.Object)
			r.Referent = hooks.GetForwarded(r.Referent)
			survivors = append(survivors, r)
			continue
		}

		r.Referent = nil
		q.pushEnqueue(r)
	}
	rq.refs = survivors
}

// ScanFinalizationCandidates implements spec.md §4.J step 2 (the
// scan_finalization_queue call-in): candidates that died are resurrected
// onto the finalization-ready list; survivors just get their pointer
// forwarded in place.
func (q *Queues) ScanFinalizationCandidates(hooks CollectorHooks) {
	q.finalizeMu.Lock()
	defer q.finalizeMu.Unlock()

	survivors := q.candidates[:0]
	for _, obj := range q.candidates {
		if hooks.IsLive(obj) {
			survivors = append(survivors, hooks.GetForwarded(obj))
			continue
		}
		hooks.RetainReferent(obj) // resurrect: the object must survive until finalize() runs
		q.readyToFinalize.push(obj)
	}
	q.candidates = survivors
	if len(q.readyToFinalize.items) > 0 {
		q.finalizeCond.Signal()
	}
}

// pushEnqueue appends r onto the enqueue queue and wakes the enqueue
// worker. Called with rq.mu held, so enqueueMu nests inside a refQueue's
// lock; the order is always rq.mu, then enqueueMu.
func (q *Queues) pushEnqueue(r *Ref) {
	q.enqueueMu.Lock()
	q.toEnqueue.push(r)
	q.enqueueCond.Signal()
	q.enqueueMu.Unlock()
}
