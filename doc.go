// Package snapwait provides bounded waiting, retrying assertions and visual
// snapshot matching for UI tests.
//
// A [Session] binds all operations to a [testing.TB]. Waits poll instead of
// sleeping, so a test proceeds as soon as the UI reaches the expected state
// and fails with diagnostics when it never does.
//
// # Quick Start
//
//	func TestToolbar(t *testing.T) {
//		s := snapwait.New(t, snapwait.WithPackage("example.com/app"))
//		capture := func() (image.Image, error) { return app.Screenshot() }
//		s.WaitUntilScreenshotMatchesSnapshot(capture, "toolbar")
//	}
//
// # Waiting
//
// [Session.WaitUntil] polls a condition, [Session.WaitFor] polls a capture
// against a [Matcher], and [WaitForValue] polls any query. All of them share
// the session timeout:
//
//   - Defaults: 5s timeout, 50ms poll interval
//   - Per-session overrides: [WithTimeout], [WithPollInterval]
//   - Per-call overrides: [WithinTimeout], [WithWaitPollInterval]
//   - Scoped overrides: [Session.RunWithTimeout] restores the previous value
//     even when the body fails the test
//   - The query always runs at least once, even with a zero timeout
//
// [Poll] and [PollNoFail] expose the same loop without a session.
//
// # Retrying Assertions
//
// [AssertEqualsRetrying] compares an expected value to a live reading until
// they agree. On timeout it reports through testify with the message
// prefixed by [TimeoutPrefix].
//
// # Snapshots
//
// Snapshots are PNG files under testdata/snapshots by default:
//
//	<root>/<package path>/<TestName>/<subtest>.<name>.<index>.png
//
// A snapshot may have several variants (index 0, 1, ...). A capture matches
// when it is similar to any variant at the session tolerance. A missing
// snapshot is created from one capture after a short settling delay; set
// SNAPWAIT_GENERATE=false or use [WithGenerateMissing] to fail instead with a
// [*MissingSnapshotError].
//
// # Reports
//
// When a snapshot never matches, a report is written to .snapwait/reports
// (or SNAPWAIT_REPORT_DIR): a YAML document, an HTML page and the actual,
// expected and difference images. The snapwait command lists reports and
// accepts the actual image as an overwrite or as a new variant. Report
// failures are attached to the [*MismatchError] and never hide the timeout.
package snapwait
