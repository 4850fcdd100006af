// Command ksim boots a kschedule.Scheduler, drives it with a synthetic
// timer loop instead of real hardware, and runs a handful of worker threads
// to demonstrate the round-robin and MLFQ disciplines plus kernlock's
// priority donation end to end.
//
// Run with: go run ./cmd/ksim/ -mlfqs -ticks=500
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	kschedule "github.com/eduos-kernel/kschedule"
	"github.com/eduos-kernel/kschedule/pkg/kernlock"
)

func main() {
	mlfqs := flag.Bool("mlfqs", false, "use the MLFQ scheduling discipline instead of round-robin")
	ticks := flag.Int("ticks", 200, "number of synthetic timer ticks to drive")
	flag.Parse()

	if err := run(*mlfqs, *ticks); err != nil {
		fmt.Fprintln(os.Stderr, "ksim:", err)
		os.Exit(1)
	}
}

// run's own goroutine becomes the simulated "main" kernel thread the
// instant kschedule.New returns — every call it makes into sched from here
// on (Create, Wait, ...) is itself subject to scheduling, including being
// preempted mid-call by a higher-priority thread it just created. The timer
// driver below is deliberately a separate, ordinary goroutine: HandleTick
// must be driven independent of whichever simulated thread happens to be
// current, the same way a real timer interrupt does not care what the CPU
// was doing when it fired.
func run(mlfqs bool, ticks int) error {
	sched, err := kschedule.New(
		kschedule.WithMLFQS(mlfqs),
		kschedule.WithConsole(os.Stdout),
		kschedule.WithLogger(kschedule.NewConsoleLogger(kschedule.LevelInfo, os.Stdout)),
	)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < ticks; i++ {
			if err := sched.HandleTick(); err != nil {
				fmt.Fprintln(os.Stderr, "ksim: tick driver:", err)
				break
			}
			time.Sleep(time.Millisecond)
		}
		close(done)
	}()

	lock := kernlock.New(sched)
	finished := make(chan struct{})

	// A low-priority thread grabs the lock and holds it, forcing the
	// high-priority thread below to donate its priority for the duration.
	if _, err := sched.Create("low", kschedule.PriMin+1, func(any) {
		lock.Acquire()
		sched.Wait(5)
		lock.Release()
		close(finished)
	}, nil); err != nil {
		return err
	}

	if _, err := sched.Create("high", kschedule.PriMax-1, func(any) {
		sched.Wait(1) // let "low" grab the lock first
		lock.Acquire()
		lock.Release()
	}, nil); err != nil {
		return err
	}

	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("worker-%d", i)
		if _, err := sched.Create(name, kschedule.PriDefault, func(any) {
			for j := 0; j < 3; j++ {
				sched.Wait(2)
				sched.CheckPreempt()
			}
		}, nil); err != nil {
			return err
		}
	}

	select {
	case <-finished:
	case <-done:
	}
	sched.ThreadDump()
	return nil
}
