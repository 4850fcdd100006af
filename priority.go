package kschedule

// recalcPriority computes the MLFQ priority formula:
//
//	priority := round_to_nearest(PRI_MAX - recent_cpu/4 - 2*nice)
//
// clamped to [PriMin, PriMax]. All arithmetic happens in fixed point; only
// the final conversion rounds to nearest.
func recalcPriority(t *Thread) int {
	v := intToFixed(PriMax).sub(t.recentCPU.divInt(4)).subInt(2 * t.nice)
	return clampPriority(v.round())
}

// RecalculatePriority applies recalcPriority to t and, if t is READY in
// MLFQ mode and its band changed, relocates it. It requires interrupts
// disabled and is a no-op (returns false) outside MLFQ mode.
//
// Returns true if the thread's priority changed.
func (s *Scheduler) RecalculatePriority(_ IntrOff, t *Thread) bool {
	if !s.mlfqs {
		return false
	}
	old := t.priority
	t.priority = recalcPriority(t)
	if t.priority == old {
		return false
	}
	if t.status.load() == StatusReady {
		s.ready.(*mlfqReady).relocate(t)
	}
	return true
}

// AssignPriority implements thread_assign_priority: sets t.priority
// unconditionally (bypassing the donation interlock SetPriority applies)
// and, if the new value is lower than the old one, requests a yield (sets
// the pending-yield flag) when a strictly higher-priority thread is now
// ready. It runs with interrupts off and so does not call Yield itself.
//
// In RR mode priorityOrig is also updated, since a direct priority
// assignment there is not subject to donation, and the yield is requested
// whenever a ready thread outranks the new value.
func (s *Scheduler) AssignPriority(io IntrOff, t *Thread, newPriority int) {
	newPriority = clampPriority(newPriority)
	old := t.priority
	t.priority = newPriority

	if s.mlfqs {
		if newPriority < old && s.ready.higherPriorityThanExists(newPriority) {
			s.requestYield(io)
		}
		return
	}

	t.priorityOrig = newPriority
	if s.ready.higherPriorityThanExists(newPriority) {
		s.requestYield(io)
	}
}

// SetPriority implements thread_set_priority for the current thread. It is
// ignored entirely in MLFQ mode. In RR mode: if the
// current thread currently holds a donated priority (numLockDonors > 0) and
// the requested value is not higher than the current effective priority,
// only priorityOrig is updated — the donated effective priority is left
// alone. Otherwise the priority is assigned normally, and the caller yields
// if that assignment requested a yield.
func (s *Scheduler) SetPriority(newPriority int) error {
	if newPriority < PriMin || newPriority > PriMax {
		return &RangeError{Field: "priority", Value: newPriority, Min: PriMin, Max: PriMax}
	}
	if s.mlfqs {
		return nil
	}

	io := s.disableIntr()
	t := s.current
	if t.numLockDonors > 0 && newPriority <= t.priority {
		t.priorityOrig = newPriority
		s.enableIntr(io)
		return nil
	}
	s.AssignPriority(io, t, newPriority)
	yield := s.yieldReq
	s.enableIntr(io)

	if yield {
		s.Yield()
	}
	return nil
}

// SetNice implements thread_set_nice (MLFQ only; a no-op in RR mode per the
// reference behavior of nice having no meaning there). After updating nice,
// the current thread's priority is immediately recalculated and, if it
// drops below a ready thread's priority, the caller yields.
func (s *Scheduler) SetNice(nice int) error {
	if nice < NiceMin || nice > NiceMax {
		return &RangeError{Field: "nice", Value: nice, Min: NiceMin, Max: NiceMax}
	}
	if !s.mlfqs {
		return nil
	}

	io := s.disableIntr()
	t := s.current
	t.nice = nice
	changed := s.RecalculatePriority(io, t)
	yield := changed && s.ready.higherPriorityThanExists(t.priority)
	s.enableIntr(io)

	if yield {
		s.Yield()
	}
	return nil
}
