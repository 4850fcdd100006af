// Package kernlock implements a priority-donating mutual-exclusion lock on
// top of the exported kschedule primitives — the one concrete "lock layer"
// collaborator the scheduler core describes via DonationSink but does not
// itself implement. It builds on the num_lock_donors/priorityOrig
// bookkeeping kschedule exposes and a one-hop donation rule (deep donation
// chains are out of scope); the actual wait/wake queueing (waiters held
// FIFO, direct handoff on Release) is this package's own design.
package kernlock

import (
	"sync"

	"github.com/eduos-kernel/kschedule"
)

// Lock is a mutual-exclusion primitive. A thread that calls Acquire while
// another thread holds the lock donates its priority to the holder (one hop
// only; deep donation chains are not supported) and blocks until Release
// hands the lock directly to it.
type Lock struct {
	sched *kschedule.Scheduler

	mu      sync.Mutex
	holder  *kschedule.Thread
	waiters []*kschedule.Thread
}

// New creates a Lock bound to sched, initially unheld.
func New(sched *kschedule.Scheduler) *Lock {
	return &Lock{sched: sched}
}

// HolderWaiters implements kschedule.DonatedLock: the number of threads
// currently blocked trying to acquire this lock.
func (l *Lock) HolderWaiters() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waiters)
}

// Held reports whether the lock is currently held by any thread.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holder != nil
}

// Acquire blocks until the calling thread holds the lock. Acquiring a lock
// already held by the calling thread deadlocks the simulated thread, like
// any non-reentrant mutex.
func (l *Lock) Acquire() {
	cur := l.sched.ThreadCurrent()

	l.mu.Lock()
	if l.holder == nil {
		l.holder = cur
		l.mu.Unlock()
		return
	}
	holder := l.holder
	l.waiters = append(l.waiters, cur)
	l.mu.Unlock()

	// Donate first: the holder's effective priority must already reflect
	// the waiter's before the waiter deschedules, so a scheduling decision
	// made between here and Block never sees a stale, too-low priority for
	// the holder.
	l.sched.Donate(l, holder, cur.Priority())
	l.sched.Block()
}

// Release hands the lock directly to the longest-waiting blocked thread, if
// any, or marks it free. Revoking the caller's donor record happens here;
// per kschedule.DonationSink's contract the caller's own effective priority
// is not rolled back until it is next scheduled in, not at this call.
func (l *Lock) Release() {
	l.mu.Lock()
	holder := l.holder
	if len(l.waiters) == 0 {
		l.holder = nil
		l.mu.Unlock()
		l.sched.Revoke(l, holder)
		return
	}

	next := l.waiters[0]
	l.waiters = l.waiters[1:]
	l.holder = next
	l.mu.Unlock()

	l.sched.Revoke(l, holder)
	l.sched.Unblock(next)
}
