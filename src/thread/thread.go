/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package thread implements spec.md §4.H: the per-thread state the core
// owns — JNI local-reference frames, the pending-exception GC root, the
// native-stack walker, and the cooperative/uncooperative flag the
// rendezvous coordinator reads. Grounded on the teacher's
// jacobin/thread.ExecThread naming convention, generalized with VMKit's
// JavaThread.cpp/.h stack-walking and uncooperative-boundary behavior.
package thread

import (
	"sync/atomic"

	"jacobin-core/corevm/src/excnames"
	"jacobin-core/corevm/src/trace"
)

// localRefPage is one page of JNI local references, per spec.md §3/§4.H
// ("singly-linked pages of 64 slots").
const localRefPageSize = 64

type localRefPage struct {
	slots [localRefPageSize]interface{}
	next  *localRefPage
}

// FrameInfo is a JIT-registered stack-walking record: an instruction
// pointer plus whatever frame metadata lets the walker recognize a Java
// frame (nil metadata means a non-Java native frame, skipped by the
// walker), per spec.md §4.H/§6.
type FrameInfo struct {
	IP       uintptr
	FP       uintptr
	Metadata interface{}
}

// JavaThread is the per-OS-thread state the core tracks, per spec.md §3's
// Thread type and §4.H's operations.
type JavaThread struct {
	ID uint64

	StackBase, StackTop uintptr

	pendingException atomic.Value // holds interface{} (the thrown object), nil if none

	localRefHead *localRefPage // most-recently-pushed page
	localRefHigh int           // high-water mark within localRefHead

	frames []FrameInfo // pushed by the JIT collaborator at each safe point

	waitPark  int32 // 0=running, 1=waiting, 2=parked — spec.md §3 "wait/park state"
	interrupt atomic.Bool

	// cooperative is true while the thread polls safe points normally;
	// false while it has entered uncooperative (e.g. blocking JNI) code,
	// per spec.md §4.H. Read by the rendezvous coordinator without
	// locking.
	cooperative atomic.Bool

	// currentCollector marks the thread driving a GC cycle, per spec.md
	// §3's Thread type ("current-collector flag").
	currentCollector atomic.Bool

	// waitingOn, if non-nil, is the object this thread is currently
	// parked in Object.Wait() on — set/cleared by the caller around the
	// Wait() call so Interrupt() can signal it (spec.md §5's
	// flag-plus-signal interrupt-delivery rule).
	waitingOn interface{ SignalInterrupted(tid uint64) }
}

// NewJavaThread allocates a thread descriptor with an empty local-ref
// frame list and cooperative state.
func NewJavaThread(id uint64, stackBase, stackTop uintptr) *JavaThread {
	t := &JavaThread{ID: id, StackBase: stackBase, StackTop: stackTop}
	t.cooperative.Store(true)
	t.localRefHead = &localRefPage{}
	return t
}

// --- JNI local references, spec.md §4.H ---

// localRefFrame is the high-water mark pushed by PushLocalFrame and
// restored by PopLocalFrame.
type localRefFrame struct {
	page *localRefPage
	high int
}

// PushLocalFrame records the current page/high-water mark so a later
// PopLocalFrame can discard everything allocated since.
func (t *JavaThread) PushLocalFrame() localRefFrame {
	return localRefFrame{page: t.localRefHead, high: t.localRefHigh}
}

// PopLocalFrame restores frame, discarding any pages allocated after it was
// taken. Local-reference slots are stable addresses (spec.md §3: "values
// move under the GC, but the slot does not"), so the discarded pages
// themselves are simply unlinked and left for the Go garbage collector.
func (t *JavaThread) PopLocalFrame(frame localRefFrame) {
	t.localRefHead = frame.page
	t.localRefHigh = frame.high
}

// NewLocalRef installs ref into the current page, allocating a new page if
// the current one is full, and returns a stable *interface{} slot.
func (t *JavaThread) NewLocalRef(ref interface{}) *interface{} {
	if t.localRefHigh >= localRefPageSize {
		t.localRefHead = &localRefPage{next: t.localRefHead}
		t.localRefHigh = 0
	}
	slot := &t.localRefHead.slots[t.localRefHigh]
	*slot = ref
	t.localRefHigh++
	return slot
}

// DeleteLocalRef clears a single slot without discarding the rest of the
// frame (matches the JNI DeleteLocalRef contract of §6).
func (t *JavaThread) DeleteLocalRef(slot *interface{}) {
	if slot != nil {
		*slot = nil
	}
}

// --- Pending exception, spec.md §4.H ---

// Throw installs obj as the pending exception and performs the unwind the
// caller (interpreter/JIT) drives; the core's contribution is just the GC
// root slot itself.
func (t *JavaThread) Throw(obj interface{}) {
	t.pendingException.Store(pendingBox{obj})
	trace.Trace("thread: pending exception set")
}

// pendingBox wraps the stored value because atomic.Value rejects storing
// untyped nil directly, so ClearPending and Throw(nil) need a box to
// store. A boxed nil reads the same as "no exception pending": HasPending
// reports false for it.
type pendingBox struct{ v interface{} }

func (t *JavaThread) GetPending() interface{} {
	b, _ := t.pendingException.Load().(pendingBox)
	return b.v
}

func (t *JavaThread) ClearPending() {
	t.pendingException.Store(pendingBox{})
}

func (t *JavaThread) HasPending() bool {
	b, ok := t.pendingException.Load().(pendingBox)
	return ok && b.v != nil
}

// --- Stack walker, spec.md §4.H ---

// PushFrameInfo records one safe-point's frame info, called by the
// JIT/interpreter collaborator per spec.md §6's compiled-method contract.
func (t *JavaThread) PushFrameInfo(fi FrameInfo) {
	t.frames = append(t.frames, fi)
}

func (t *JavaThread) PopFrameInfo() {
	if len(t.frames) > 0 {
		t.frames = t.frames[:len(t.frames)-1]
	}
}

// WalkStack iterates frame info records from the most recent, calling fn
// for each one that carries non-nil metadata (a Java frame); non-Java
// native frames are skipped, per spec.md §4.H.
func (t *JavaThread) WalkStack(fn func(FrameInfo)) {
	for i := len(t.frames) - 1; i >= 0; i-- {
		fi := t.frames[i]
		if fi.Metadata == nil {
			continue
		}
		fn(fi)
	}
}

// --- Cooperative code flag, spec.md §4.H ---

// EnterUncooperative flips the thread out of cooperative (safe-point
// polling) mode, e.g. around a blocking JNI call. The rendezvous
// coordinator counts such threads immediately rather than waiting for them
// to reach a safe point.
func (t *JavaThread) EnterUncooperative() { t.cooperative.Store(false) }

// LeaveUncooperative flips back, performing the safe-point check the
// thread skipped while uncooperative (spec.md §4.I: "the boundary performs
// the check").
func (t *JavaThread) LeaveUncooperative(safepointCheck func()) {
	t.cooperative.Store(true)
	if safepointCheck != nil {
		safepointCheck()
	}
}

func (t *JavaThread) IsCooperative() bool { return t.cooperative.Load() }

// --- Interrupt / wait-park state, spec.md §5 ---

const (
	StateRunning = iota
	StateWaiting
	StateParked
)

func (t *JavaThread) SetWaitState(s int32) { atomic.StoreInt32(&t.waitPark, s) }
func (t *JavaThread) WaitState() int32     { return atomic.LoadInt32(&t.waitPark) }

// Interrupt sets the interrupt flag and, if the thread is currently parked
// in an Object.Wait(), signals it — setting the flag alone does not unpark
// it, per spec.md §5.
func (t *JavaThread) Interrupt() {
	t.interrupt.Store(true)
	if t.waitingOn != nil {
		t.waitingOn.SignalInterrupted(t.ID)
	}
}

func (t *JavaThread) IsInterrupted() bool { return t.interrupt.Load() }

// ClearInterrupt clears the flag, as Object.Wait()'s contract requires on
// successfully raising InterruptedException (spec.md §5).
func (t *JavaThread) ClearInterrupt() { t.interrupt.Store(false) }

// SetWaitingOn records the monitor object this thread is about to Wait()
// on, so a concurrent Interrupt() has something to signal; clear it (nil)
// once Wait() returns.
func (t *JavaThread) SetWaitingOn(obj interface{ SignalInterrupted(tid uint64) }) {
	t.waitingOn = obj
}

// RaiseInterruptedIfSet is the call-in the Object.Wait() caller uses to
// convert a set interrupt flag into InterruptedException (clearing the
// flag), per spec.md
// §5's wait(timeout) contract.
func (t *JavaThread) RaiseInterruptedIfSet() error {
	if !t.IsInterrupted() {
		return nil
	}
	t.ClearInterrupt()
	return &InterruptedError{}
}

// InterruptedError is raised by RaiseInterruptedIfSet.
type InterruptedError struct{}

func (e *InterruptedError) Error() string { return excnames.InterruptedException }
