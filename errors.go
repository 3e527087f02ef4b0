package snapwait

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/cboone/snapwait/internal/poll"
	"github.com/cboone/snapwait/internal/report"
)

// TimeoutError reports that a poll ran out of time. It carries the last
// unmatched value and the stack of the waiting goroutine.
type TimeoutError = poll.TimeoutError

// WriteError reports a diagnostic artifact that could not be written.
// It never replaces the failure that triggered the report.
type WriteError = report.WriteError

// MissingSnapshotError is returned when a snapshot has no stored variant
// and generation is disabled. It is a setup mistake, so no capture is
// attempted.
type MissingSnapshotError struct {
	Snapshot string
	Method   string
	Path     string
}

func (e *MissingSnapshotError) Error() string {
	return fmt.Sprintf("snapwait: snapshot: %q of %s is missing (expected %s)\n"+
		"    generation is disabled; unset SNAPWAIT_GENERATE or use WithGenerateMissing(true) to create it",
		e.Snapshot, e.Method, e.Path)
}

// MismatchError is returned when no capture matched any candidate before
// the timeout. It unwraps to the underlying *TimeoutError.
type MismatchError struct {
	// Snapshot is the snapshot identifier, empty for explicit candidates.
	Snapshot string
	// Method is the qualified name of the failing test.
	Method     string
	Candidates int
	Tolerance  int
	Last       image.Image
	// Report locates the written report. It is set even when ReportErr
	// reports that some artifacts are missing.
	Report    report.Location
	ReportErr error
	Timeout   *TimeoutError
}

func (e *MismatchError) Error() string {
	var b strings.Builder

	subject := "capture"
	if e.Snapshot != "" {
		subject = fmt.Sprintf("snapshot %q", e.Snapshot)
	}
	var timeout time.Duration
	attempts := 0
	if e.Timeout != nil {
		timeout, attempts = e.Timeout.Timeout, e.Timeout.Attempts
	}

	fmt.Fprintf(&b, "snapwait: snapshot: %s did not match any of %d candidates within %v (%d attempts)",
		subject, e.Candidates, timeout, attempts)
	fmt.Fprintf(&b, "\n    test: %s", e.Method)
	fmt.Fprintf(&b, "\n    expected: similar at tolerance %d%%", e.Tolerance)
	fmt.Fprintf(&b, "\n    last capture: %s", describeImage(e.Last))
	if e.Report.Document != "" {
		fmt.Fprintf(&b, "\n    report: %s", e.Report.Document)
	}
	if e.ReportErr != nil {
		fmt.Fprintf(&b, "\n    report incomplete: %v", e.ReportErr)
	}
	return b.String()
}

func (e *MismatchError) Unwrap() error {
	if e.Timeout == nil {
		return nil
	}
	return e.Timeout
}
