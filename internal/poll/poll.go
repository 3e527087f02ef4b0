// Package poll implements the bounded retry loop shared by every wait in
// snapwait, together with the mutable timeout it runs under.
package poll

import (
	"fmt"
	"image"
	"reflect"
	"runtime"
	"runtime/debug"
	"time"
)

const (
	// DefaultInterval is the pause between two query attempts.
	DefaultInterval = 50 * time.Millisecond

	// MinInterval is the smallest interval a Poller will sleep for.
	MinInterval = time.Millisecond

	// maxDescription bounds how much of the last value a TimeoutError prints.
	maxDescription = 256
)

// Clock is the time source used by a Poller. Tests substitute a virtual
// clock to count attempts without waiting on the wall clock.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Sleep yields first so a UI goroutine sharing the processor gets a turn
// even when d is tiny.
func (realClock) Sleep(d time.Duration) {
	runtime.Gosched()
	time.Sleep(d)
}

// RealClock returns the wall clock.
func RealClock() Clock {
	return realClock{}
}

// Poller holds the pacing used between query attempts.
type Poller struct {
	Interval time.Duration
	Clock    Clock
}

// New returns a Poller with the given interval on the wall clock.
// Intervals below MinInterval are clamped.
func New(interval time.Duration) *Poller {
	return &Poller{Interval: interval, Clock: realClock{}}
}

func (p *Poller) clock() Clock {
	if p == nil || p.Clock == nil {
		return realClock{}
	}
	return p.Clock
}

func (p *Poller) interval() time.Duration {
	if p == nil || p.Interval == 0 {
		return DefaultInterval
	}
	if p.Interval < MinInterval {
		return MinInterval
	}
	return p.Interval
}

// TimeoutError reports that no query result matched before the deadline.
type TimeoutError struct {
	// Timeout is the budget the poll ran under.
	Timeout time.Duration
	// Elapsed is the time actually spent, never less than Timeout.
	Elapsed time.Duration
	// Attempts counts query invocations.
	Attempts int
	// Last is the final unmatched query result.
	Last any
	// Stack is the caller's goroutine stack at the moment of failure.
	Stack []byte
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v (%d attempts); last value: %s",
		e.Timeout, e.Attempts, describe(e.Last))
}

func describe(v any) string {
	switch v := v.(type) {
	case image.Image:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "(no image captured)"
		}
		b := v.Bounds()
		return fmt.Sprintf("%dx%d image", b.Dx(), b.Dy())
	case fmt.Stringer:
		return truncate(v.String())
	case interface{ Describe() string }:
		return truncate(v.Describe())
	}
	return truncate(fmt.Sprintf("%#v", v))
}

func truncate(s string) string {
	if len(s) <= maxDescription {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes total)", s[:maxDescription], len(s))
}

// Until calls query until isMatch accepts its result or timeout elapses.
// query always runs at least once, even with a zero timeout. A query error
// stops the poll immediately and is returned as is, wrapped with the
// attempt number.
//
// On expiry Until returns the last result together with a *TimeoutError.
func Until[T any](p *Poller, query func() (T, error), isMatch func(T) bool, timeout time.Duration) (T, error) {
	clk := p.clock()
	interval := p.interval()

	start := clk.Now()
	deadline := start.Add(timeout)

	var last T
	for attempt := 1; ; attempt++ {
		v, err := query()
		if err != nil {
			return v, fmt.Errorf("attempt %d: %w", attempt, err)
		}
		last = v
		if isMatch(v) {
			return v, nil
		}

		now := clk.Now()
		remaining := deadline.Sub(now)
		if remaining <= 0 {
			return last, &TimeoutError{
				Timeout:  timeout,
				Elapsed:  now.Sub(start),
				Attempts: attempt,
				Last:     last,
				Stack:    debug.Stack(),
			}
		}

		clk.Sleep(min(interval, remaining))
	}
}

// UntilNoFail is Until without the timeout failure: when nothing matches it
// returns the last query result and a nil error. Query errors are still
// returned.
func UntilNoFail[T any](p *Poller, query func() (T, error), isMatch func(T) bool, timeout time.Duration) (T, error) {
	v, err := Until(p, query, isMatch, timeout)
	if _, ok := err.(*TimeoutError); ok {
		return v, nil
	}
	return v, err
}

// Infallible adapts a query that cannot fail.
func Infallible[T any](query func() T) func() (T, error) {
	return func() (T, error) {
		return query(), nil
	}
}
