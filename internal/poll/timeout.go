package poll

import (
	"fmt"
	"time"
)

// Timeout is the duration budget applied to every bounded wait of a
// session. Current starts at Initial and is restored to it by Reset.
//
// A Timeout is not safe for concurrent use.
type Timeout struct {
	initial time.Duration
	current time.Duration
}

// NewTimeout returns a Timeout whose initial and current values are d.
func NewTimeout(d time.Duration) (*Timeout, error) {
	if d < 0 {
		return nil, fmt.Errorf("negative timeout: %v", d)
	}
	return &Timeout{initial: d, current: d}, nil
}

// Current returns the duration used by waits right now.
func (t *Timeout) Current() time.Duration {
	return t.current
}

// Initial returns the duration Reset restores.
func (t *Timeout) Initial() time.Duration {
	return t.initial
}

// Set replaces the current duration.
func (t *Timeout) Set(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("negative timeout: %v", d)
	}
	t.current = d
	return nil
}

// Reset restores the current duration to the initial one.
func (t *Timeout) Reset() {
	t.current = t.initial
}

// Run installs d as the current duration for the length of fn. The
// previous value is restored however fn exits, including by panic or
// runtime.Goexit (which is how t.FailNow leaves a test).
func (t *Timeout) Run(d time.Duration, fn func() error) error {
	prev := t.current
	if err := t.Set(d); err != nil {
		return err
	}
	defer func() { t.current = prev }()
	return fn()
}
