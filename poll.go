package snapwait

import (
	"time"

	"github.com/cboone/snapwait/internal/poll"
)

// Poll calls query until isMatch accepts its result and returns that
// result. query runs at least once. If nothing matches within timeout, Poll
// returns the last result and a *TimeoutError.
func Poll[T any](query func() T, isMatch func(T) bool, timeout time.Duration) (T, error) {
	return poll.Until(poll.New(defaultPollInterval), poll.Infallible(query), isMatch, timeout)
}

// PollNoFail is Poll without the failure: when nothing matches within
// timeout it returns the last query result.
func PollNoFail[T any](query func() T, isMatch func(T) bool, timeout time.Duration) T {
	v, _ := poll.UntilNoFail(poll.New(defaultPollInterval), poll.Infallible(query), isMatch, timeout)
	return v
}

// WaitForValue polls query under s's timeout and pacing until isMatch
// accepts a result, which it returns. On timeout it fails the test with
// the last observed value.
func WaitForValue[T any](s *Session, query func() T, isMatch func(T) bool, wopts ...WaitOption) T {
	s.t.Helper()

	timeout, p := s.pacing("wait-for-value", wopts)
	v, err := poll.Until(p, poll.Infallible(query), isMatch, timeout)
	if err != nil {
		s.t.Fatalf("snapwait: wait-for-value: %v", err)
	}
	return v
}

// PollSession is Poll under s's timeout and pacing, for callers that want
// the *TimeoutError instead of a failed test.
func PollSession[T any](s *Session, query func() T, isMatch func(T) bool) (T, error) {
	timeout, p := s.pacing("poll", nil)
	return poll.Until(p, poll.Infallible(query), isMatch, timeout)
}
