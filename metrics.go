package kschedule

import "fmt"

// Stats is a snapshot of scheduler-wide tick accounting, returned by Stats
// and printed by ThreadDump.
type Stats struct {
	IdleTicks   uint64
	KernelTicks uint64
	UserTicks   uint64
	TotalTicks  uint64
	ThreadCount int
	LoadAvg     int // GetLoadAvg's scaled-by-100 convention; 0 outside MLFQ
}

// Stats returns a point-in-time snapshot of tick accounting.
func (s *Scheduler) Stats() Stats {
	io := s.disableIntr()
	defer s.enableIntr(io)
	st := Stats{
		IdleTicks:   s.idleTicks,
		KernelTicks: s.kernelTicks,
		UserTicks:   s.userTicks,
		TotalTicks:  s.totalTicks,
		ThreadCount: s.all.len(),
	}
	if s.mlfqs {
		st.LoadAvg = s.loadAvg.mulInt(100).round()
	}
	return st
}

// ThreadDump writes a human-readable snapshot of every live thread plus tick
// accounting to the configured ConsoleWriter — useful wired into a panic
// handler so a crash dump always shows what the scheduler was doing.
func (s *Scheduler) ThreadDump() {
	if s.console == nil {
		return
	}
	st := s.Stats()
	fmt.Fprintf(s.console, "Thread: %d idle ticks, %d kernel ticks, %d user ticks\n",
		st.IdleTicks, st.KernelTicks, st.UserTicks)
	if s.mlfqs {
		fmt.Fprintf(s.console, "Thread: load_avg=%s\n", s.loadAvg)
	}

	s.ForEachThread(func(t *Thread) {
		fmt.Fprintf(s.console, "  [%3d] %-16s status=%-8s priority=%-2d nice=%-3d recent_cpu=%s\n",
			t.ID(), t.Name(), t.Status(), t.Priority(), t.Nice(), t.recentCPU)
	})
}
