package kschedule

import "testing"

func newTickTestScheduler(mlfqs bool) *Scheduler {
	s := &Scheduler{
		mlfqs:   mlfqs,
		sleep:   newSleepQueue(),
		all:     newRegistry(),
		started: true,
	}
	if mlfqs {
		s.ready = newMLFQReady()
	} else {
		s.ready = newRRReady()
	}
	return s
}

func TestHandleTickCountsIdleAndKernelTicks(t *testing.T) {
	s := newTickTestScheduler(false)
	idle := mkThread(1, PriMin)
	s.idle = idle
	s.current = idle

	s.HandleTick()
	if s.idleTicks != 1 || s.kernelTicks != 0 {
		t.Fatalf("idleTicks=%d kernelTicks=%d, want 1/0", s.idleTicks, s.kernelTicks)
	}

	normal := mkThread(2, PriDefault)
	s.current = normal
	s.HandleTick()
	if s.kernelTicks != 1 {
		t.Fatalf("kernelTicks=%d, want 1", s.kernelTicks)
	}
	if s.totalTicks != 2 {
		t.Fatalf("totalTicks=%d, want 2", s.totalTicks)
	}
}

func TestHandleTickRequestsYieldAfterTimeSlice(t *testing.T) {
	s := newTickTestScheduler(false)
	s.idle = mkThread(1, PriMin)
	s.current = mkThread(2, PriDefault)

	for i := 0; i < TimeSlice-1; i++ {
		s.HandleTick()
		if s.yieldReq {
			t.Fatalf("yieldReq set after only %d ticks, want after %d", i+1, TimeSlice)
		}
	}
	s.HandleTick()
	if !s.yieldReq {
		t.Fatalf("yieldReq not set after %d ticks", TimeSlice)
	}
}

func TestHandleTickWakesExpiredSleepers(t *testing.T) {
	s := newTickTestScheduler(false)
	s.idle = mkThread(1, PriMin)
	s.current = mkThread(2, PriDefault)

	sleeper := mkThread(3, PriDefault)
	sleeper.status.init(StatusBlocked)
	s.sleep.add(sleeper, 3)

	for i := 0; i < 3; i++ {
		s.HandleTick()
	}

	if sleeper.Status() != StatusReady {
		t.Fatalf("sleeper status = %v, want READY", sleeper.Status())
	}
	if s.ready.len() != 1 {
		t.Fatalf("ready.len() = %d, want 1", s.ready.len())
	}
}

func TestTickRRAgingBoostsAndRequestsYield(t *testing.T) {
	s := newTickTestScheduler(false)
	s.idle = mkThread(1, PriMin)
	cur := mkThread(2, 5)
	s.current = cur

	waiting := mkThread(3, 5)
	s.ready.insert(waiting)

	for i := 0; i < 16; i++ {
		s.HandleTick()
	}

	if waiting.priority != 6 {
		t.Fatalf("waiting.priority = %d, want 6 after 16 ticks of aging", waiting.priority)
	}
	if !s.yieldReq {
		t.Fatal("expected a yield request once the aged thread outranks current")
	}
}

func TestTickMLFQSIncrementsRecentCPUAndUpdatesLoadAvg(t *testing.T) {
	s := newTickTestScheduler(true)
	s.idle = mkThread(1, PriMin)
	cur := mkThread(2, PriDefault)
	s.current = cur
	s.all.add(cur)

	// recent_cpu grows by one per tick until the TimerFreq-th tick, which
	// decays it by the load-average coefficient.
	for i := 0; i < TimerFreq-1; i++ {
		s.HandleTick()
	}

	if cur.recentCPU.toInt() < TimerFreq-1 {
		t.Fatalf("recent_cpu after %d ticks = %v, want %d", TimerFreq-1, cur.recentCPU, TimerFreq-1)
	}
	s.HandleTick() // TimerFreq-th tick: load_avg update
	if s.GetLoadAvg() == 0 {
		t.Fatal("expected a non-zero load average once a non-idle thread has been ready/running")
	}
}

func TestTickMLFQSSkipsNascentThreadsInRecalculationPasses(t *testing.T) {
	s := newTickTestScheduler(true)
	s.idle = mkThread(1, PriMin)
	s.current = mkThread(2, PriDefault)

	nascent := mkThread(3, PriDefault)
	nascent.status.init(StatusNascent)
	s.all.add(nascent)

	for i := 0; i < 4; i++ {
		s.HandleTick()
	}

	if nascent.priority != PriDefault {
		t.Fatalf("nascent.priority = %d, want untouched %d", nascent.priority, PriDefault)
	}
}

func TestCheckPreemptYieldsWhenPending(t *testing.T) {
	sched := newTestScheduler(t)
	sched.yieldReq = true
	sched.CheckPreempt()
	if sched.yieldReq {
		t.Fatal("CheckPreempt should have cleared the pending yield flag via Yield")
	}
}

func TestCheckPreemptNoOpWhenNotPending(t *testing.T) {
	sched := newTestScheduler(t)
	before := sched.current
	sched.CheckPreempt()
	if sched.current != before {
		t.Fatal("CheckPreempt should not switch threads when nothing is pending")
	}
}
