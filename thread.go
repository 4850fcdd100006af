package kschedule

import (
	"container/list"
	"time"
)

// Tunable scheduler-wide constants.
const (
	// PriMin is the lowest legal (and lowest effective) thread priority.
	PriMin = 0
	// PriMax is the highest legal thread priority.
	PriMax = 63
	// PriDefault is the priority new threads receive unless told otherwise.
	PriDefault = 31

	// NiceMin and NiceMax bound the MLFQ nice value.
	NiceMin = -20
	NiceMax = 20

	// TimeSlice is the maximum number of consecutive ticks a thread may run
	// before the tick handler requests a reschedule.
	TimeSlice = 4
	// TimerFreq is the number of ticks in one conceptual second.
	TimerFreq = 100

	// ThreadNameMax bounds the stored thread name, including the
	// terminating NUL: a short human-readable identifier, fixed bound
	// (<=16 bytes).
	ThreadNameMax = 16

	// threadMagic is the stack-overflow canary value.
	threadMagic = 0xcd6abf4b
)

// DonatedLock is the opaque handle a lock implementation (concretely
// package kernlock in this repository) uses to record
// that it currently donates priority to a thread. The scheduler core never
// dereferences the lock itself; it only needs the count and membership for
// bookkeeping and for the one invariant it enforces (priority >= priority
// Orig).
type DonatedLock interface {
	// HolderWaiters reports how many threads are blocked waiting to acquire
	// this lock, used only for diagnostics.
	HolderWaiters() int
}

// Thread is the kernel thread record. One exists per live
// thread; in a bare-metal Pintos it is stored at the base of the owning
// kernel stack page. Hosted on Go, it is an ordinary heap object and the
// "current thread" is whichever goroutine is holding the scheduling baton
// (see ContextSwitcher), not a pointer derived from the stack pointer.
type Thread struct {
	id     int
	name   string
	status atomicStatus

	// priority is the effective (possibly donated) priority.
	priority int
	// priorityOrig is the priority the thread would hold absent donation.
	priorityOrig int

	// nice and recentCPU are meaningful only when the scheduler is running
	// in MLFQ mode; RR mode never reads or writes them beyond inheriting
	// nice at creation.
	nice      int
	recentCPU fixed

	// ticksWait is the remaining tick countdown while on the sleep queue;
	// zero whenever the thread is not sleeping.
	ticksWait int
	// wakeTick is the absolute tick at which a sleeping thread should wake;
	// it is the heap key for the sleep queue.
	wakeTick uint64
	// agingTicks counts ticks accumulated toward RR mode's starvation-
	// prevention priority boost (tickRR); unused in MLFQ mode.
	agingTicks int
	// sleepIndex is maintained by container/heap for O(log n) removal; -1
	// when the thread is not a member of the sleep queue.
	sleepIndex int

	// numLockDonors and donLockList are meaningful only in RR mode (MLFQ
	// donation is out of scope, mirroring Pintos where the MLFQ scheduler
	// does not honor thread_set_priority at all).
	numLockDonors int
	donLockList   []DonatedLock
	// waitLock is the lock this thread is currently blocked acquiring, if
	// any; purely informational. Nothing in this repository sets it (the
	// field is unexported, so kernlock cannot).
	waitLock DonatedLock

	stack *Page
	magic uint32

	parent *Thread

	// readyElem links this thread into whichever list (RR ready list or one
	// MLFQ band) currently owns it; nil when the thread is RUNNING,
	// BLOCKED, or DYING.
	readyElem *list.Element
	// band caches which MLFQ band readyElem lives in, so relocation on a
	// priority change does not need to search every band.
	band int

	// allElem links this thread into the scheduler's all-threads registry.
	allElem *list.Element

	// resumeCh is this thread's half of the context-switch baton: the
	// scheduler hands control to a thread by sending on its resumeCh and
	// regains control when the thread later sends back on someone else's.
	resumeCh chan *Thread

	// ticksRun is an ambient (non-spec) counter of ticks this thread has
	// spent RUNNING, incremented by HandleTick; no scheduling decision or
	// test reads it.
	ticksRun uint64
	created  time.Time
}

// Priority returns the thread's current effective priority.
func (t *Thread) Priority() int { return t.priority }

// PriorityOrig returns the priority the thread would hold absent donation.
func (t *Thread) PriorityOrig() int { return t.priorityOrig }

// Nice returns the thread's nice value (MLFQ only).
func (t *Thread) Nice() int { return t.nice }

// RecentCPU returns 100x the thread's recent_cpu fixed-point value, rounded
// to nearest, matching thread_get_recent_cpu's contract.
func (t *Thread) RecentCPU() int { return t.recentCPU.mulInt(100).round() }

// ID returns the thread's unique id.
func (t *Thread) ID() int { return t.id }

// Name returns the thread's bounded name.
func (t *Thread) Name() string { return t.name }

// Status returns the thread's current lifecycle status. Advisory only; see
// atomicStatus.
func (t *Thread) Status() ThreadStatus { return t.status.load() }

// Parent returns the thread that created this one. The initial thread
// parents itself (the self-parent sentinel for the one thread with no creator).
func (t *Thread) Parent() *Thread { return t.parent }

// checkMagic panics with a stack-overflow KernelPanic if the canary has
// been overwritten.
func (t *Thread) checkMagic() {
	if t.magic != threadMagic {
		panicInvariant("magic", t.id)
	}
}

// initThread fills in a freshly allocated Thread record.
// current is the thread initializing this one (nil only for the very first,
// self-parenting initial thread); nice and recentCPU are always inherited
// from it when present. In MLFQ mode every thread but idle gets its priority
// computed from that inherited nice/recentCPU via recalcPriority rather than
// the literal priority argument, exactly as the non-idle names get their
// priority recalculated on creation while idle keeps the caller-supplied
// value untouched.
func initThread(page *Page, name string, priority int, current *Thread, mlfqs bool) *Thread {
	if len(name) >= ThreadNameMax {
		name = name[:ThreadNameMax-1]
	}
	t := &Thread{
		name:       name,
		stack:      page,
		magic:      threadMagic,
		sleepIndex: -1,
		resumeCh:   make(chan *Thread),
		created:    time.Now(),
	}
	t.status.init(StatusNascent)

	if current != nil {
		t.nice = current.nice
		t.recentCPU = current.recentCPU
		t.parent = current
	} else {
		t.parent = t // self-parenting initial/main thread
	}

	if mlfqs && name != idleThreadName {
		priority = recalcPriority(t)
	}
	t.priority = priority
	t.priorityOrig = priority
	return t
}
