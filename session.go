package snapwait

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"testing"
	"time"

	"github.com/cboone/snapwait/internal/imagediff"
	"github.com/cboone/snapwait/internal/poll"
	"github.com/cboone/snapwait/internal/report"
	"github.com/cboone/snapwait/internal/snapstore"
)

// Session binds the waits, assertions and snapshot matches of one test to
// its testing.TB. It is created with New and is not safe for concurrent use.
type Session struct {
	t         testing.TB
	opts      options
	timeout   *poll.Timeout
	tolerance imagediff.Tolerance
	store     *snapstore.Store
	reporter  *report.Reporter
}

// Clock is the time source used for polling and settling delays.
type Clock = poll.Clock

// New creates a Session for t. Invalid options fail the test immediately.
func New(t testing.TB, userOpts ...Option) *Session {
	t.Helper()

	opts := defaultOptions()
	for _, o := range userOpts {
		o(&opts)
	}

	timeout, err := poll.NewTimeout(opts.timeout)
	if err != nil {
		t.Fatalf("snapwait: new: %v", err)
	}
	if opts.pollInterval < 0 {
		t.Fatalf("snapwait: new: negative poll interval: %v", opts.pollInterval)
	}
	if opts.generateDelay < 0 {
		t.Fatalf("snapwait: new: negative generate delay: %v", opts.generateDelay)
	}
	tolerance, err := imagediff.NewTolerance(opts.tolerance)
	if err != nil {
		t.Fatalf("snapwait: new: %v", err)
	}
	if opts.clock == nil {
		opts.clock = poll.RealClock()
	}
	if opts.logger == nil {
		opts.logger = slog.New(slog.DiscardHandler)
	}

	reporter := report.New(opts.reportDir, opts.logger)
	reporter.Now = opts.clock.Now

	return &Session{
		t:         t,
		opts:      opts,
		timeout:   timeout,
		tolerance: tolerance,
		store:     snapstore.New(opts.snapshotDir),
		reporter:  reporter,
	}
}

// Tolerance returns the per-pixel tolerance percentage of snapshot matches.
func (s *Session) Tolerance() int {
	return int(s.tolerance)
}

// SnapshotDir returns the root directory of stored snapshots.
func (s *Session) SnapshotDir() string {
	return s.store.Root
}

// ReportDir returns the directory failure reports are written to.
func (s *Session) ReportDir() string {
	return s.reporter.Dir
}

// pacing resolves the timeout and poller of one wait call.
func (s *Session) pacing(op string, wopts []WaitOption) (time.Duration, *poll.Poller) {
	s.t.Helper()

	wo := waitOptions{}
	for _, o := range wopts {
		o(&wo)
	}

	timeout := s.timeout.Current()
	if wo.timeout > 0 {
		timeout = wo.timeout
	} else if wo.timeout < 0 {
		s.t.Fatalf("snapwait: %s: negative timeout: %v", op, wo.timeout)
	}

	interval := s.opts.pollInterval
	if wo.pollInterval > 0 {
		interval = wo.pollInterval
	} else if wo.pollInterval < 0 {
		s.t.Fatalf("snapwait: %s: negative poll interval: %v", op, wo.pollInterval)
	}

	return timeout, &poll.Poller{Interval: interval, Clock: s.opts.clock}
}

// WaitUntil polls cond until it returns true or the timeout expires, then
// fails the test with msg.
func (s *Session) WaitUntil(cond func() bool, msg string, wopts ...WaitOption) {
	s.t.Helper()

	timeout, p := s.pacing("wait-until", wopts)
	_, err := poll.Until(p, poll.Infallible(cond), func(ok bool) bool { return ok }, timeout)
	if err != nil {
		s.t.Fatalf("snapwait: wait-until: %s: timed out after %v", msg, timeout)
	}
}

// WaitFor polls capture until the matcher succeeds or the timeout expires.
// On success it returns the matching capture; on timeout or capture error
// it calls t.Fatal with what was expected and what was last seen.
func (s *Session) WaitFor(capture CaptureFunc, m Matcher, wopts ...WaitOption) image.Image {
	s.t.Helper()

	timeout, p := s.pacing("wait-for", wopts)
	lastDesc := "matcher condition"
	img, err := poll.Until(p, s.checked(capture), func(img image.Image) bool {
		ok, desc := m(img)
		lastDesc = desc
		return ok
	}, timeout)

	var te *TimeoutError
	switch {
	case errors.As(err, &te):
		s.t.Fatalf("snapwait: wait-for: timed out after %v (%d attempts)\n    waiting for: %s\n    last capture: %s",
			timeout, te.Attempts, lastDesc, describeImage(img))
	case err != nil:
		s.t.Fatalf("snapwait: wait-for: %v", err)
	}
	return img
}

// qualifiedMethod names the calling test the way snapshot identifiers do.
func (s *Session) qualifiedMethod() string {
	return snapstore.NewID(s.opts.pkg, s.t.Name(), "").QualifiedMethod()
}

func describeImage(img image.Image) string {
	if img == nil {
		return "(no image captured)"
	}
	b := img.Bounds()
	return fmt.Sprintf("%dx%d image", b.Dx(), b.Dy())
}
