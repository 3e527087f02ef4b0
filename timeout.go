package snapwait

import "time"

// Timeout returns the duration bounded waits currently use.
func (s *Session) Timeout() time.Duration {
	return s.timeout.Current()
}

// InitialTimeout returns the duration ResetTimeout restores.
func (s *Session) InitialTimeout() time.Duration {
	return s.timeout.Initial()
}

// SetTimeout changes the duration of subsequent waits.
func (s *Session) SetTimeout(d time.Duration) {
	s.t.Helper()
	if err := s.timeout.Set(d); err != nil {
		s.t.Fatalf("snapwait: set-timeout: %v", err)
	}
}

// ResetTimeout restores the initial timeout.
func (s *Session) ResetTimeout() {
	s.timeout.Reset()
}

// RunWithTimeout runs fn with the timeout set to d and restores the
// previous timeout afterwards, even if fn fails the test.
func (s *Session) RunWithTimeout(d time.Duration, fn func()) {
	s.t.Helper()
	err := s.timeout.Run(d, func() error {
		fn()
		return nil
	})
	if err != nil {
		s.t.Fatalf("snapwait: run-with-timeout: %v", err)
	}
}
