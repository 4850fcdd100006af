package kschedule

import "container/list"

// registry is the all-threads list: every live non-idle thread appears
// exactly once. Threads here are explicitly owned (Exit removes them
// synchronously), so there is no GC-scavenging pass, just a map of id to
// list element plus the list itself for ordered iteration (thread_foreach).
type registry struct {
	byID map[int]*list.Element
	all  *list.List
}

func newRegistry() *registry {
	return &registry{
		byID: make(map[int]*list.Element),
		all:  list.New(),
	}
}

// add links t into the all-threads list. Must be called with interrupts
// disabled.
func (r *registry) add(t *Thread) {
	e := r.all.PushBack(t)
	t.allElem = e
	r.byID[t.id] = e
}

// remove unlinks t from the all-threads list (called from Exit, before the
// thread transitions to DYING). Must be called with interrupts disabled.
func (r *registry) remove(t *Thread) {
	if t.allElem != nil {
		r.all.Remove(t.allElem)
		t.allElem = nil
	}
	delete(r.byID, t.id)
}

// get resolves a thread id to its record, or nil if unknown or since exited.
func (r *registry) get(id int) *Thread {
	e, ok := r.byID[id]
	if !ok {
		return nil
	}
	return e.Value.(*Thread)
}

// len reports the number of live threads tracked (excludes the idle thread,
// which is never registered).
func (r *registry) len() int { return r.all.Len() }

// forEach visits every live thread in insertion order. visit must not
// mutate the registry.
func (r *registry) forEach(visit func(*Thread)) {
	for e := r.all.Front(); e != nil; e = e.Next() {
		visit(e.Value.(*Thread))
	}
}
