/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package thread

import "sync"

// Registry is the global thread ring of spec.md §5 ("Thread ring, owner
// VM, mutators thread lifecycle, discipline threadLock"): every live
// JavaThread, guarded by one mutex for add/remove and iteration.
type Registry struct {
	mu      sync.Mutex
	threads map[uint64]*JavaThread
}

// NewRegistry creates an empty thread ring.
func NewRegistry() *Registry {
	return &Registry{threads: make(map[uint64]*JavaThread)}
}

// Add installs t in the ring.
func (r *Registry) Add(t *JavaThread) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threads[t.ID] = t
}

// Remove removes t from the ring (thread exit).
func (r *Registry) Remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.threads, id)
}

// Each calls fn for every thread currently in the ring, holding the ring
// lock for the duration — used by the rendezvous coordinator to count the
// cooperative threads a collection must wait for (spec.md §4.I step 2).
func (r *Registry) Each(fn func(*JavaThread)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.threads {
		fn(t)
	}
}

// Count returns the number of live threads.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.threads)
}
