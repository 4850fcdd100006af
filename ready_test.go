package kschedule

import "testing"

func mkThread(id, priority int) *Thread {
	t := &Thread{id: id, priority: priority, priorityOrig: priority, sleepIndex: -1}
	t.status.init(StatusReady)
	return t
}

func TestRRReadyMaxPrioritySelection(t *testing.T) {
	r := newRRReady()
	low := mkThread(1, 10)
	high := mkThread(2, 20)
	mid := mkThread(3, 15)
	r.insert(low)
	r.insert(high)
	r.insert(mid)

	if got := r.popNext(); got != high {
		t.Fatalf("popNext() = thread %d, want thread %d", got.id, high.id)
	}
	if got := r.popNext(); got != mid {
		t.Fatalf("popNext() = thread %d, want thread %d", got.id, mid.id)
	}
	if got := r.popNext(); got != low {
		t.Fatalf("popNext() = thread %d, want thread %d", got.id, low.id)
	}
	if r.len() != 0 {
		t.Fatalf("len() = %d, want 0", r.len())
	}
}

func TestRRReadyTieBreakIsInsertionOrder(t *testing.T) {
	r := newRRReady()
	a := mkThread(1, 10)
	b := mkThread(2, 10)
	r.insert(a)
	r.insert(b)
	if got := r.popNext(); got != a {
		t.Fatalf("popNext() = thread %d, want first-inserted thread %d", got.id, a.id)
	}
}

func TestRRReadyHigherPriorityThanExists(t *testing.T) {
	r := newRRReady()
	r.insert(mkThread(1, 20))
	if !r.higherPriorityThanExists(10) {
		t.Error("expected a higher-priority ready thread to be reported")
	}
	if r.higherPriorityThanExists(20) {
		t.Error("strictly-greater check should not match equal priority")
	}
}

func TestMLFQReadyBandSelection(t *testing.T) {
	m := newMLFQReady()
	low := mkThread(1, 5)
	high := mkThread(2, 60)
	m.insert(low)
	m.insert(high)

	if got := m.popNext(); got != high {
		t.Fatalf("popNext() = thread %d, want high-band thread %d", got.id, high.id)
	}
	if m.len() != 1 {
		t.Fatalf("len() = %d, want 1", m.len())
	}
	if got := m.popNext(); got != low {
		t.Fatalf("popNext() = thread %d, want low-band thread %d", got.id, low.id)
	}
}

func TestMLFQReadyRelocate(t *testing.T) {
	m := newMLFQReady()
	th := mkThread(1, 5)
	m.insert(th)

	th.priority = 50
	m.relocate(th)

	if m.bands[5].Len() != 0 {
		t.Error("old band should be empty after relocate")
	}
	if m.bands[50].Len() != 1 {
		t.Error("new band should contain the relocated thread")
	}
	if got := m.popNext(); got != th {
		t.Fatalf("popNext() = thread %d, want %d", got.id, th.id)
	}
}

func TestClampPriority(t *testing.T) {
	if got := clampPriority(-5); got != PriMin {
		t.Errorf("clampPriority(-5) = %d, want %d", got, PriMin)
	}
	if got := clampPriority(999); got != PriMax {
		t.Errorf("clampPriority(999) = %d, want %d", got, PriMax)
	}
	if got := clampPriority(30); got != 30 {
		t.Errorf("clampPriority(30) = %d, want 30", got)
	}
}
