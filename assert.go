package snapwait

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboone/snapwait/internal/poll"
)

// TimeoutPrefix marks assertion failures caused by a retry timeout.
const TimeoutPrefix = "[Timeout] "

// AssertEqualsRetrying polls actual under the session timeout until it
// equals expected. If it never does, actual is read one last time and
// compared with assert.Equal, so the failure shows the freshest value with
// message prefixed by TimeoutPrefix. It reports whether the assertion held.
//
// Like assert.Equal, a failure marks the test failed and lets it continue.
// Use RequireEqualsRetrying to stop the test instead.
func AssertEqualsRetrying[T any](s *Session, expected T, actual func() T, message string) bool {
	s.t.Helper()
	if settled(s, expected, actual) {
		return true
	}
	return assert.Equal(s.t, expected, actual(), TimeoutPrefix+message)
}

// RequireEqualsRetrying is AssertEqualsRetrying ending in require.Equal:
// a failure stops the test with t.FailNow.
func RequireEqualsRetrying[T any](s *Session, expected T, actual func() T, message string) {
	s.t.Helper()
	if settled(s, expected, actual) {
		return
	}
	require.Equal(s.t, expected, actual(), TimeoutPrefix+message)
}

// settled reports whether actual came to equal expected within the timeout.
func settled[T any](s *Session, expected T, actual func() T) bool {
	s.t.Helper()

	timeout, p := s.pacing("assert-equals", nil)
	_, err := poll.Until(p, poll.Infallible(actual), func(v T) bool {
		return assert.ObjectsAreEqual(expected, v)
	}, timeout)
	return err == nil
}
