// Package kschedule implements the thread-scheduler core of a small
// educational kernel: thread lifecycle management, a pluggable ready
// structure (round-robin or 64-band MLFQ), a tick-driven sleep queue, and
// the priority engine (recalculation plus one-hop donation bookkeeping).
//
// The core is single-CPU by design: callers holding the "interrupts
// disabled" critical region (see IntrOff) are the only ones permitted to
// mutate scheduler-owned structures. Hosted on top of the Go runtime rather
// than bare metal, each kernel thread is realized as one goroutine plus an
// owned Thread record, and the external context-switch primitive hands a
// baton between two such goroutines over channels — see ContextSwitcher.
package kschedule
