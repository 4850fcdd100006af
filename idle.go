package kschedule

import "time"

// idleLoop is the idle thread's body, created by Start via Create. Its first
// action is to unblock whatever thread is waiting in Start; thereafter it
// repeats forever: sleep for a short wall-clock period to approximate the
// hardware "hlt" instruction without busy-spinning a real OS thread, then
// Block to give the scheduler back to whatever else is ready.
//
// The idle thread is never destroyed and its Create priority (PriMin) is
// never touched by the priority engine: RecalculatePriority only runs in
// MLFQ mode over threads reachable via the registry, and nothing ever calls
// SetPriority/AssignPriority against idle.
func (s *Scheduler) idleLoop() {
	io := s.disableIntr()
	waiter := s.bootWaiter
	s.bootWaiter = nil
	s.enableIntr(io)

	if waiter != nil {
		s.Unblock(waiter)
	}

	s.logf(LevelInfo, "thread", s.idle.id, "idle thread running")

	for {
		time.Sleep(time.Duration(s.idleHaltPeriod))
		s.Block()
	}
}
