package kschedule

// DonationSink is the donation bookkeeping interface called by a lock
// layer; *Scheduler implements it, while the lock itself lives outside the
// core. The lock layer decides when to Donate and Revoke; the core performs
// the bookkeeping and the RR-mode rollback in scheduleTail. Package kernlock
// is the one concrete consumer shipped in this repository.
type DonationSink interface {
	// Donate raises to's effective priority to at least priority (never
	// lowers it) and records lock as one of to's donors. Safe to call from
	// any thread context; internally disables interrupts.
	Donate(lock DonatedLock, to *Thread, priority int)
	// Revoke removes lock from from's donor set. If that was the last
	// donor, from.priority is NOT reset here — the reset happens in
	// scheduleTail, at the moment from next becomes RUNNING, not at
	// revocation time (a thread may keep running at its donated level until
	// it is rescheduled).
	Revoke(lock DonatedLock, from *Thread)
}

var _ DonationSink = (*Scheduler)(nil)

// Donate implements DonationSink.
func (s *Scheduler) Donate(lock DonatedLock, to *Thread, priority int) {
	io := s.disableIntr()
	defer s.enableIntr(io)

	donorAlready := false
	for _, l := range to.donLockList {
		if l == lock {
			donorAlready = true
			break
		}
	}
	if !donorAlready {
		to.donLockList = append(to.donLockList, lock)
		to.numLockDonors++
	}
	if priority > to.priority {
		old := to.priority
		to.priority = priority
		if to.status.load() == StatusReady && s.mlfqs {
			s.ready.(*mlfqReady).relocate(to)
		}
		_ = old
	}
}

// Revoke implements DonationSink.
func (s *Scheduler) Revoke(lock DonatedLock, from *Thread) {
	io := s.disableIntr()
	defer s.enableIntr(io)

	for i, l := range from.donLockList {
		if l == lock {
			from.donLockList = append(from.donLockList[:i], from.donLockList[i+1:]...)
			from.numLockDonors--
			break
		}
	}
	if from.numLockDonors < 0 {
		from.numLockDonors = 0
	}
}
