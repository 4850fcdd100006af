package kschedule

import "testing"

func TestRecalcPriorityFormula(t *testing.T) {
	th := mkThread(1, PriDefault)
	th.nice = 0
	th.recentCPU = intToFixed(0)
	if got := recalcPriority(th); got != PriMax {
		t.Errorf("recalcPriority with recent_cpu=0, nice=0 = %d, want %d", got, PriMax)
	}

	th.recentCPU = intToFixed(4) // recent_cpu/4 == 1
	if got := recalcPriority(th); got != PriMax-1 {
		t.Errorf("recalcPriority with recent_cpu=4 = %d, want %d", got, PriMax-1)
	}

	th.recentCPU = intToFixed(0)
	th.nice = 5
	if got := recalcPriority(th); got != PriMax-10 {
		t.Errorf("recalcPriority with nice=5 = %d, want %d", got, PriMax-10)
	}
}

func TestRecalcPriorityClamps(t *testing.T) {
	th := mkThread(1, PriDefault)
	th.nice = NiceMax
	th.recentCPU = intToFixed(1000)
	if got := recalcPriority(th); got != PriMin {
		t.Errorf("recalcPriority with extreme inputs = %d, want clamped to %d", got, PriMin)
	}
}

func TestRecalculatePriorityNoOpOutsideMLFQS(t *testing.T) {
	sched := &Scheduler{mlfqs: false, ready: newRRReady()}
	th := mkThread(1, PriDefault)
	th.recentCPU = intToFixed(100)

	io := sched.disableIntr()
	changed := sched.RecalculatePriority(io, th)
	sched.enableIntr(io)

	if changed {
		t.Error("RecalculatePriority should be a no-op in RR mode")
	}
	if th.priority != PriDefault {
		t.Errorf("priority = %d, want unchanged %d", th.priority, PriDefault)
	}
}

func TestRecalculatePriorityRelocatesReadyThread(t *testing.T) {
	sched := &Scheduler{mlfqs: true, ready: newMLFQReady()}
	th := mkThread(1, PriDefault)
	th.status.init(StatusReady)
	sched.ready.insert(th)
	th.recentCPU = intToFixed(40) // recent_cpu/4 == 10, so priority becomes PriMax-10

	io := sched.disableIntr()
	changed := sched.RecalculatePriority(io, th)
	sched.enableIntr(io)

	if !changed {
		t.Fatal("expected RecalculatePriority to report a change")
	}
	if th.priority != PriMax-10 {
		t.Fatalf("priority = %d, want %d", th.priority, PriMax-10)
	}
	m := sched.ready.(*mlfqReady)
	if got := m.popNext(); got != th {
		t.Fatal("relocated thread was not found in its new band")
	}
}

func TestAssignPriorityRRModeUpdatesOrigAndRequestsYield(t *testing.T) {
	sched := &Scheduler{mlfqs: false, ready: newRRReady()}
	waiting := mkThread(2, 40)
	sched.ready.insert(waiting)
	th := mkThread(1, 20)
	th.priorityOrig = 20

	io := sched.disableIntr()
	sched.AssignPriority(io, th, 10)
	sched.enableIntr(io)

	if th.priority != 10 || th.priorityOrig != 10 {
		t.Errorf("priority/priorityOrig = %d/%d, want 10/10", th.priority, th.priorityOrig)
	}
	if !sched.yieldReq {
		t.Error("expected a yield request: a higher-priority thread is ready")
	}
}

func TestAssignPriorityMLFQModeLeavesOrigAlone(t *testing.T) {
	sched := &Scheduler{mlfqs: true, ready: newMLFQReady()}
	th := mkThread(1, 20)
	th.priorityOrig = 99 // MLFQ never touches priorityOrig

	io := sched.disableIntr()
	sched.AssignPriority(io, th, 10)
	sched.enableIntr(io)

	if th.priority != 10 {
		t.Errorf("priority = %d, want 10", th.priority)
	}
	if th.priorityOrig != 99 {
		t.Errorf("priorityOrig = %d, want unchanged 99 in MLFQ mode", th.priorityOrig)
	}
}

func TestSetPriorityDonationInterlock(t *testing.T) {
	sched := &Scheduler{mlfqs: false, ready: newRRReady()}
	cur := mkThread(1, 30)
	cur.priorityOrig = 20
	cur.numLockDonors = 1
	sched.current = cur

	if err := sched.SetPriority(25); err != nil {
		t.Fatalf("SetPriority() error = %v", err)
	}
	if cur.priority != 30 {
		t.Errorf("priority = %d, want unchanged 30 (still donated)", cur.priority)
	}
	if cur.priorityOrig != 25 {
		t.Errorf("priorityOrig = %d, want 25", cur.priorityOrig)
	}

	// A request above the donated priority is not interlocked.
	if err := sched.SetPriority(35); err != nil {
		t.Fatalf("SetPriority() error = %v", err)
	}
	if cur.priority != 35 || cur.priorityOrig != 35 {
		t.Errorf("priority/priorityOrig = %d/%d, want 35/35", cur.priority, cur.priorityOrig)
	}
}

func TestSetPriorityOutOfRange(t *testing.T) {
	sched := &Scheduler{mlfqs: false, ready: newRRReady(), current: mkThread(1, PriDefault)}
	if err := sched.SetPriority(-1); err == nil {
		t.Fatal("expected a RangeError for a negative priority")
	}
}
