package kschedule

import (
	"math"
	"sync"
)

// IntrOff is a zero-size proof token: holding one is the Go-idiomatic
// stand-in for "interrupts are currently disabled". It carries no data and
// enforces nothing by itself — the only way to obtain one is disableIntr,
// and every internal entry point that requires interrupts off takes one as
// its first parameter so the call site reads as a proof obligation, the
// same role interfaces like DonatedLock play for the lock layer.
type IntrOff struct{}

const idleThreadName = "idle"

// Scheduler is the single-CPU kernel thread scheduler core. One Scheduler
// simulates one CPU: exactly one Thread is ever "running" at a time, the
// invariant the whole design hangs off.
type Scheduler struct {
	intrMu sync.Mutex // the critical-region lock; holding it == interrupts off
	inIRQ  bool        // true while HandleTick's body is executing

	mlfqs bool
	ready readyStruct
	sleep *sleepQueue
	all   *registry

	current *Thread
	idle    *Thread
	initial *Thread

	loadAvg fixed

	idleTicks   uint64
	kernelTicks uint64
	userTicks   uint64
	totalTicks  uint64
	threadTicks int // ticks the current thread has held the CPU this quantum
	yieldReq    bool

	idMu   sync.Mutex
	nextID int

	pageAlloc      PageAllocator
	console        ConsoleWriter
	logger         Logger
	switcher       ContextSwitcher
	idleHaltPeriod int

	bootWaiter *Thread // set by Start, cleared and unblocked by idleLoop's first pass
	started    bool
}

// New constructs a Scheduler and promotes the calling goroutine into the
// initial kernel thread, named "main", exactly as thread_init promotes
// whatever context called it. No other Scheduler method may be called
// concurrently with New, and New itself performs no locking: this is
// one-shot construction before any thread exists to race with it.
func New(opts ...Option) (*Scheduler, error) {
	cfg := resolveOptions(opts)

	s := &Scheduler{
		mlfqs:          cfg.mlfqs,
		sleep:          newSleepQueue(),
		all:            newRegistry(),
		pageAlloc:      cfg.pageAllocator,
		console:        cfg.console,
		logger:         cfg.logger,
		switcher:       cfg.switcher,
		idleHaltPeriod: cfg.idleHaltPeriod,
		nextID:         2, // 0 is never valid, 1 is reserved for main
	}
	if s.mlfqs {
		s.ready = newMLFQReady()
	} else {
		s.ready = newRRReady()
	}
	if s.logger == nil {
		s.logger = NoOpLogger{}
	}

	page, err := s.pageAlloc.AllocPage(true)
	if err != nil {
		return nil, ErrNoMemory
	}
	main := initThread(page, "main", PriDefault, nil, s.mlfqs)
	main.id = 1
	main.status.store(StatusRunning)
	s.all.add(main)
	s.current = main
	s.initial = main

	s.logf(LevelInfo, "thread", main.id, "scheduler initialized, mlfqs=%v", s.mlfqs)
	return s, nil
}

// disableIntr acquires the critical-region lock and returns the proof token.
func (s *Scheduler) disableIntr() IntrOff {
	s.intrMu.Lock()
	return IntrOff{}
}

// enableIntr releases the critical-region lock. The token parameter exists
// only so call sites read as "give back what disableIntr handed you"; it
// carries no information the compiler checks.
func (s *Scheduler) enableIntr(IntrOff) {
	s.intrMu.Unlock()
}

// requestYield records that a higher-priority thread became ready while
// interrupts were disabled (e.g. from within HandleTick). The actual yield
// happens when the caller that set up the condition releases the lock and,
// if not itself in interrupt context, calls Yield.
func (s *Scheduler) requestYield(IntrOff) {
	s.yieldReq = true
}

// currentThread returns the thread presently occupying the CPU. Callers must
// hold intrMu, or accept the same informal "best effort" reading other
// kernels tolerate for diagnostics.
func (s *Scheduler) currentThread() *Thread { return s.current }

// ThreadCurrent returns the Thread presently running. It is safe to call
// from any context; the returned pointer is stable for the caller's own
// thread (a thread can only ask about itself without racing its own exit).
func (s *Scheduler) ThreadCurrent() *Thread {
	io := s.disableIntr()
	defer s.enableIntr(io)
	return s.current
}

func (s *Scheduler) allocateID() int {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id := s.nextID
	s.nextID++
	if s.nextID > math.MaxInt32 {
		s.nextID = 2
	}
	return id
}

// nextThreadToRun implements next_thread_to_run: pop the ready structure's
// choice, or fall back to idle if nothing is ready. Requires interrupts off.
func (s *Scheduler) nextThreadToRun() *Thread {
	if s.ready.len() == 0 {
		return s.idle
	}
	return s.ready.popNext()
}

// schedule implements schedule(): picks the next thread to run and, if it
// differs from the current one, performs the context-switch handoff. It is
// called with interrupts disabled (io proves it) and returns with interrupts
// disabled again — possibly much later, on whichever goroutine called
// schedule in the first place, once some other thread switches back into it.
//
// The critical-region lock is deliberately released across the handoff
// itself (see context.go): the baton channel already serializes the two
// sides of a switch, and holding a real mutex across a goroutine park would
// deadlock any concurrent external caller (the tick driver, a cross-thread
// Unblock) that only needs the lock to touch data structures, not to take
// part in the switch.
func (s *Scheduler) schedule(io IntrOff) {
	cur := s.current
	next := s.nextThreadToRun()

	if next == cur {
		s.scheduleTail(io, cur)
		return
	}

	s.current = next
	s.intrMu.Unlock()
	prev := s.switcher.Switch(cur, next)
	s.intrMu.Lock()
	s.scheduleTail(IntrOff{}, prev)
}

// scheduleTail implements thread_schedule_tail: mark the now-current thread
// RUNNING, reset its per-quantum tick counter, apply the RR-mode donation
// rollback (priority reverts to priorityOrig once no donor remains), and
// lazily destroy prev if it was DYING. Requires interrupts off; called with
// the lock freshly (re)acquired by schedule.
func (s *Scheduler) scheduleTail(_ IntrOff, prev *Thread) {
	cur := s.current
	cur.status.store(StatusRunning)
	cur.checkMagic()
	s.threadTicks = 0

	if !s.mlfqs && cur.numLockDonors == 0 && cur.priority != cur.priorityOrig {
		cur.priority = cur.priorityOrig
	}

	if prev != nil && prev != cur && prev.status.load() == StatusDying && prev != s.initial {
		s.pageAlloc.FreePage(prev.stack)
	}
}

// Create implements thread_create: allocates a stack page,
// initializes thread state, assigns an id, registers the thread, spawns its
// trampoline goroutine, and unblocks it. thread_create may return before or
// after the new thread first runs — Unblock only switches to the new thread
// immediately when it outranks the caller and the call is not made from
// interrupt context.
//
// Create requires Start to have already run, with one exception: Start's own
// call to create the idle thread, made after it sets the started flag.
func (s *Scheduler) Create(name string, priority int, fn func(aux any), aux any) (*Thread, error) {
	if !s.started {
		return nil, ErrSchedulerNotRunning
	}
	if priority < PriMin || priority > PriMax {
		return nil, &RangeError{Field: "priority", Value: priority, Min: PriMin, Max: PriMax}
	}

	page, err := s.pageAlloc.AllocPage(true)
	if err != nil {
		return nil, ErrNoMemory
	}

	io := s.disableIntr()
	cur := s.current
	t := initThread(page, name, priority, cur, s.mlfqs)
	t.id = s.allocateID()
	s.all.add(t)
	s.enableIntr(io)

	go s.trampoline(t, fn, aux)

	s.logf(LevelInfo, "thread", t.id, "created %q priority=%d", t.name, t.priority)
	s.Unblock(t)
	return t, nil
}

// trampoline is the goroutine body standing in for the three descending
// stack frames a freshly forged kernel stack would normally have
// (register-restore primitive, an "enable interrupts and call fn"
// trampoline, the kernel_thread frame). A freshly created thread's very
// first resumption does not arrive via its own
// call to schedule/Switch — nothing has blocked yet on this goroutine's
// behalf — so the trampoline performs the post-switch protocol itself,
// mirroring how a freshly forged stack frame calls thread_schedule_tail
// directly rather than returning out of a recursive schedule() call.
func (s *Scheduler) trampoline(t *Thread, fn func(any), aux any) {
	prev := <-t.resumeCh

	s.intrMu.Lock()
	s.scheduleTail(IntrOff{}, prev)
	s.intrMu.Unlock()

	fn(aux)
	s.Exit()
}

// Unblock implements thread_unblock: safe from any context, including a
// thread other than the one being unblocked, and from a thread other than
// the one it preempts. Accepts a thread in NASCENT or BLOCKED status
// (NASCENT covers thread_create's call on a never-run thread). Unblock does
// not call Yield: when the newly-ready thread outranks whoever is currently
// running and this isn't interrupt context, it inlines the same
// push-current-to-ready-and-reschedule sequence Yield uses, within the same
// critical section. As in Yield, a preempted idle thread is not put on the
// ready structure; it is reached again only through nextThreadToRun's
// empty-ready fallback.
func (s *Scheduler) Unblock(t *Thread) {
	io := s.disableIntr()
	defer s.enableIntr(io)

	status := t.status.load()
	if status != StatusBlocked && status != StatusNascent {
		panicInvariant("unblock of thread not blocked or nascent", t.id)
	}

	t.status.store(StatusReady)
	s.ready.insert(t)
	s.logf(LevelDebug, "thread", t.id, "unblocked")

	cur := s.current
	if cur != nil && t.priority > cur.priority && !s.inIRQ {
		cur.status.store(StatusReady)
		if cur != s.idle {
			s.ready.insert(cur)
		}
		s.schedule(io)
	}
}

// Yield implements thread_yield: the current thread gives up the CPU but
// remains READY, immediately eligible to run again. Idle is exempt from
// re-insertion here — idle's own run loop deschedules itself with Block, not
// Yield.
func (s *Scheduler) Yield() {
	io := s.disableIntr()
	defer s.enableIntr(io)

	cur := s.current
	cur.status.store(StatusReady)
	if cur != s.idle {
		s.ready.insert(cur)
	}
	s.yieldReq = false
	s.schedule(io)
}

// BlockLocked implements thread_block for a caller that already holds the
// critical-region lock (a layered primitive like kernlock, which needs to
// check its own invariants atomically with the block). Requires
// non-interrupt context.
func (s *Scheduler) BlockLocked(io IntrOff) {
	cur := s.current
	cur.status.store(StatusBlocked)
	s.schedule(io)
}

// Block is the disable/enable-wrapped convenience form of BlockLocked, for
// callers that have no surrounding critical section of their own.
func (s *Scheduler) Block() {
	io := s.disableIntr()
	s.BlockLocked(io)
	s.enableIntr(io)
}

// Wait implements thread_wait(ticks): blocks the current thread on the sleep
// queue until at least ticks timer ticks have elapsed. ticks <= 0 is a
// no-op.
func (s *Scheduler) Wait(ticks int) {
	if ticks <= 0 {
		return
	}
	io := s.disableIntr()
	cur := s.current
	cur.status.store(StatusBlocked)
	cur.ticksWait = ticks
	wake := s.totalTicks + uint64(ticks)
	s.sleep.add(cur, wake)
	s.schedule(io)
	s.enableIntr(io)
}

// Exit implements thread_exit: removes the thread from the all-threads
// registry, marks it DYING, and schedules away. Never returns — the
// trampoline goroutine that called Exit blocks forever inside the context
// switch, which is exactly the simulated analogue of a thread whose stack
// will never be resumed; its page is freed lazily by whichever thread next
// becomes current (scheduleTail).
func (s *Scheduler) Exit() {
	io := s.disableIntr()
	cur := s.current
	s.all.remove(cur)
	cur.status.store(StatusDying)
	s.logf(LevelInfo, "thread", cur.id, "exiting")
	s.schedule(io)
	panic("unreachable: Exit returned")
}

// Start implements thread_start: creates the idle thread and blocks the
// calling thread until idle has run at least once and recorded its own
// handle. The rendezvous is built directly from Block/Unblock, since the
// semaphore layer itself lives above this core.
func (s *Scheduler) Start() error {
	if s.started {
		return nil
	}
	s.started = true

	idle, err := s.Create(idleThreadName, PriMin, func(any) { s.idleLoop() }, nil)
	if err != nil {
		return err
	}

	// idle is special from here on: it is pulled out of both the ready
	// structure and the all-threads registry, the same list surgery the
	// reference thread_start performs right after thread_create returns
	// (nothing else can be running concurrently yet to race with it). From
	// this point idle is reached only via nextThreadToRun's empty-ready
	// fallback, never iterated by ForEachThread or the MLFQ recalculation
	// passes, and never re-entered through Unblock.
	io := s.disableIntr()
	s.ready.remove(idle)
	s.all.remove(idle)
	s.idle = idle
	s.bootWaiter = s.current
	s.enableIntr(io)

	// Parks main: the ready structure is now empty, so this Block hands
	// the CPU to idle via the fallback pick, and idle's first pass through
	// idleLoop unblocks bootWaiter before it deschedules itself to wait for
	// real work.
	s.Block()
	return nil
}

// ForEachThread implements thread_foreach: invokes visit for every thread in
// the all-threads registry. Must run with interrupts off; that discipline is
// enforced internally so external callers don't need their own IntrOff.
func (s *Scheduler) ForEachThread(visit func(*Thread)) {
	io := s.disableIntr()
	defer s.enableIntr(io)
	s.all.forEach(visit)
}

// ThreadCount returns the number of live (non-exited) threads.
func (s *Scheduler) ThreadCount() int {
	io := s.disableIntr()
	defer s.enableIntr(io)
	return s.all.len()
}
