package kschedule

// loadAvgCoeffNum and loadAvgCoeffRdy are the fixed-point constants of the
// MLFQ load-average recurrence:
//
//	load_avg := (59/60) * load_avg + (1/60) * ready_threads
//
// computed as fixed-point products rather than per-term rationals.
var (
	loadAvgCoeffNum = intToFixed(59).div(intToFixed(60))
	loadAvgCoeffRdy = intToFixed(1).div(intToFixed(60))
)

// HandleTick implements the timer interrupt handler. It is driven by
// whatever stands in for the timer device (cmd/ksim's simulation driver, or
// a test's synthetic clock) calling it once per simulated tick; it runs with
// interrupts disabled for its whole body and never itself yields — it only
// ever sets the pending-yield flag, which the next thread to re-enable
// interrupts (CheckPreempt, or any wrapper that calls Yield) acts on. This
// mirrors a hardware timer interrupt handler, which runs in interrupt
// context and defers any actual rescheduling to the return path.
//
// HandleTick returns ErrSchedulerNotRunning if Start has not yet run — before
// then there is no idle thread for the ready-empty fallback to hand control
// to.
func (s *Scheduler) HandleTick() error {
	if !s.started {
		return ErrSchedulerNotRunning
	}
	io := s.disableIntr()
	s.inIRQ = true
	defer func() {
		s.inIRQ = false
		s.enableIntr(io)
	}()

	s.totalTicks++
	cur := s.current
	switch {
	case cur == s.idle:
		s.idleTicks++
	default:
		s.kernelTicks++
	}
	s.threadTicks++

	if cur != s.idle {
		cur.ticksRun++
	}

	s.sleep.wakeExpired(s.totalTicks, func(t *Thread) {
		s.unblockFromTick(io, t)
	})

	if s.mlfqs {
		s.tickMLFQS(io)
	} else {
		s.tickRR(io)
	}

	if s.threadTicks >= TimeSlice {
		s.requestYield(io)
	}
	return nil
}

// unblockFromTick is the interrupt-context flavor of Unblock: the lock is
// already held (io proves it) and a synchronous Yield is never appropriate
// from inside a tick, so it only records the pending-yield flag when the
// newly-ready thread outranks whoever is currently running.
func (s *Scheduler) unblockFromTick(io IntrOff, t *Thread) {
	t.status.store(StatusReady)
	s.ready.insert(t)
	if s.current != nil && t.priority > s.current.priority {
		s.requestYield(io)
	}
}

// tickMLFQS applies the three MLFQ-mode per-tick updates: recent_cpu += 1
// for the running thread (unless idle), a load_avg update
// once per second (TimerFreq ticks) followed by a recent_cpu recalculation
// for every thread, and a priority recalculation pass every fourth tick.
func (s *Scheduler) tickMLFQS(io IntrOff) {
	cur := s.current
	if cur != s.idle {
		cur.recentCPU = cur.recentCPU.addInt(1)
	}

	if s.totalTicks%TimerFreq == 0 {
		s.updateLoadAvg()
		s.all.forEach(func(t *Thread) {
			if t.Status() == StatusNascent {
				return
			}
			t.recentCPU = s.recalcRecentCPU(t)
		})
	}

	if s.totalTicks%4 == 0 {
		s.all.forEach(func(t *Thread) {
			if t.Status() == StatusNascent {
				return
			}
			if s.RecalculatePriority(io, t) && t.priority > cur.priority {
				s.requestYield(io)
			}
		})
	}
}

// updateLoadAvg recomputes system load_avg from the number of ready-or-
// running non-idle threads, per the recurrence documented on the coefficient
// variables above.
func (s *Scheduler) updateLoadAvg() {
	ready := s.ready.len()
	if s.current != nil && s.current != s.idle {
		ready++
	}
	s.loadAvg = s.loadAvg.mul(loadAvgCoeffNum).add(loadAvgCoeffRdy.mulInt(ready))
}

// recalcRecentCPU applies recent_cpu := (2*load_avg)/(2*load_avg+1) *
// recent_cpu + nice to a single thread.
func (s *Scheduler) recalcRecentCPU(t *Thread) fixed {
	twoLoad := s.loadAvg.mulInt(2)
	coeff := twoLoad.div(twoLoad.addInt(1))
	return coeff.mul(t.recentCPU).addInt(t.nice)
}

// tickRR applies round-robin mode's priority-aging rule: every 16 ticks,
// every thread in the ready list at that tick has its priority raised by
// one (clamped at PriMax), however long it has been there, preventing
// starvation under strict priority
// scheduling that a naive round-robin-by-priority discipline would
// otherwise allow.
func (s *Scheduler) tickRR(io IntrOff) {
	cur := s.current
	if cur != nil && cur != s.idle {
		cur.agingTicks = 0
	}

	if s.totalTicks%16 != 0 {
		return
	}
	r, ok := s.ready.(*rrReady)
	if !ok {
		return
	}
	for e := r.l.Front(); e != nil; e = e.Next() {
		t := e.Value.(*Thread)
		t.agingTicks += 16
		if t.priority < PriMax {
			t.priority++
			if t.priority > cur.priority {
				s.requestYield(io)
			}
		}
	}
}

// GetLoadAvg returns load_avg scaled by 100 and rounded, matching the
// get_load_avg system-call return convention.
func (s *Scheduler) GetLoadAvg() int {
	io := s.disableIntr()
	defer s.enableIntr(io)
	return s.loadAvg.mulInt(100).round()
}

// CheckPreempt is the cooperative checkpoint a thread body calls to honor a
// pending-yield request raised from tick handling. True hardware preemption
// has no meaning on top of the Go scheduler — nothing can force another
// goroutine to stop running user code — so "on return from interrupt, if
// yield was requested, yield" becomes an explicit call threads make
// periodically, the one place this design cannot reproduce genuine
// preemption and instead asks for cooperation.
func (s *Scheduler) CheckPreempt() {
	io := s.disableIntr()
	pending := s.yieldReq
	s.enableIntr(io)
	if pending {
		s.Yield()
	}
}
