package snapwait

import (
	"log/slog"
	"os"
	"time"

	"github.com/cboone/snapwait/internal/poll"
	"github.com/cboone/snapwait/internal/report"
	"github.com/cboone/snapwait/internal/snapstore"
)

type options struct {
	timeout       time.Duration
	pollInterval  time.Duration
	tolerance     int
	generate      bool
	generateDelay time.Duration
	snapshotDir   string
	reportDir     string
	pkg           string
	screen        CaptureFunc
	clock         Clock
	logger        *slog.Logger
}

// Option configures a Session created by New.
type Option func(*options)

// WithTimeout sets the initial timeout of every bounded wait. ResetTimeout
// returns to this value.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithPollInterval sets the default pause between two attempts of a wait.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithTolerance sets the per-pixel tolerance percentage (0..100) used when
// matching captures against snapshots and candidate images.
func WithTolerance(pct int) Option {
	return func(o *options) {
		o.tolerance = pct
	}
}

// WithGenerateMissing controls what happens when a snapshot has no stored
// variant. When enabled (the default) the first capture is stored as
// variant 0; when disabled the match fails with a *MissingSnapshotError.
// The SNAPWAIT_GENERATE environment variable sets the default.
func WithGenerateMissing(enabled bool) Option {
	return func(o *options) {
		o.generate = enabled
	}
}

// WithGenerateDelay sets how long to let the UI settle before capturing a
// missing snapshot.
func WithGenerateDelay(d time.Duration) Option {
	return func(o *options) {
		o.generateDelay = d
	}
}

// WithSnapshotDir sets the root directory of stored snapshots. Defaults to
// SNAPWAIT_SNAPSHOT_DIR, then testdata/snapshots.
func WithSnapshotDir(dir string) Option {
	return func(o *options) {
		o.snapshotDir = dir
	}
}

// WithReportDir sets the directory failure reports are written to.
// Defaults to SNAPWAIT_REPORT_DIR, then .snapwait/reports.
func WithReportDir(dir string) Option {
	return func(o *options) {
		o.reportDir = dir
	}
}

// WithPackage sets the package qualifier of snapshot identifiers, usually
// the import path of the test package. It becomes part of the snapshot
// directory and of report names.
func WithPackage(pkg string) Option {
	return func(o *options) {
		o.pkg = pkg
	}
}

// WithScreenCapture gives the session a way to capture the whole screen.
// Sessions without it run headless: CaptureScreen and
// WaitUntilScreenMatchesSnapshot fail with ErrNoScreenCapture.
func WithScreenCapture(fn CaptureFunc) Option {
	return func(o *options) {
		o.screen = fn
	}
}

// WithClock replaces the wall clock used for polling and settling delays.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the logger for snapshot generation and report events.
// By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WaitOption configures a single wait call.
type WaitOption func(*waitOptions)

type waitOptions struct {
	timeout      time.Duration
	pollInterval time.Duration
}

// WithinTimeout overrides the session timeout for a single wait call.
// A value of 0 means "use the session timeout". Negative values cause t.Fatal.
func WithinTimeout(d time.Duration) WaitOption {
	return func(o *waitOptions) {
		o.timeout = d
	}
}

// WithWaitPollInterval overrides the polling interval for a single wait call.
// A value of 0 means "use defaults". Negative values cause t.Fatal.
func WithWaitPollInterval(d time.Duration) WaitOption {
	return func(o *waitOptions) {
		o.pollInterval = d
	}
}

const (
	defaultTimeout       = 5 * time.Second
	defaultPollInterval  = poll.DefaultInterval
	defaultGenerateDelay = 200 * time.Millisecond
)

func defaultOptions() options {
	return options{
		timeout:       defaultTimeout,
		pollInterval:  defaultPollInterval,
		generate:      generateFromEnv(),
		generateDelay: defaultGenerateDelay,
		snapshotDir:   envOr("SNAPWAIT_SNAPSHOT_DIR", snapstore.DefaultRoot),
		reportDir:     envOr("SNAPWAIT_REPORT_DIR", report.DefaultDir),
		clock:         poll.RealClock(),
		logger:        slog.New(slog.DiscardHandler),
	}
}

// generateFromEnv returns false only if SNAPWAIT_GENERATE is set to a falsy
// value.
func generateFromEnv() bool {
	switch os.Getenv("SNAPWAIT_GENERATE") {
	case "0", "false", "no":
		return false
	}
	return true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
