package kschedule

import (
	"errors"
	"fmt"
)

// Standard errors returned by the public API. These surface to callers that
// could plausibly originate from user-space (thread creation, priority and
// nice adjustment); they are never panics.
var (
	// ErrNoMemory is returned by Create when the page allocator is exhausted.
	ErrNoMemory = errors.New("kschedule: out of memory for thread stack")

	// ErrSchedulerNotRunning is returned when an operation requires the
	// scheduler to have completed Start.
	ErrSchedulerNotRunning = errors.New("kschedule: scheduler not running")

	// ErrUnknownThread is returned when a thread id does not resolve.
	ErrUnknownThread = errors.New("kschedule: unknown thread id")
)

// RangeError reports an out-of-range argument (nice or priority outside its
// legal bounds), surfaced as a normal Go error rather than a panic so
// callers can use errors.Is/errors.As instead of recovering — from
// user-space this is an ordinary invalid-argument case, not a kernel
// invariant violation.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("kschedule: %s=%d out of range [%d,%d]", e.Field, e.Value, e.Min, e.Max)
}

// KernelPanic is the value recovered kernel-invariant violations panic with.
// These indicate corruption (bad magic, wrong status for the calling
// operation, interrupts enabled when they must be disabled) and are never
// meant to be recovered from inside the scheduler itself — only a top-level
// simulation driver should ever see one, typically to print it via a
// ConsoleWriter before exiting.
type KernelPanic struct {
	Assertion string
	ThreadID  int
}

func (e *KernelPanic) Error() string {
	return fmt.Sprintf("kernel panic: assertion %q violated (thread %d)", e.Assertion, e.ThreadID)
}

// panicInvariant panics with a *KernelPanic for the named assertion.
func panicInvariant(assertion string, threadID int) {
	panic(&KernelPanic{Assertion: assertion, ThreadID: threadID})
}
