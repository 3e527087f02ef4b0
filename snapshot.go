package snapwait

import (
	"errors"
	"fmt"
	"image"

	"github.com/cboone/snapwait/internal/poll"
	"github.com/cboone/snapwait/internal/report"
	"github.com/cboone/snapwait/internal/snapstore"
)

// SnapshotID names a stored snapshot.
type SnapshotID = snapstore.ID

// DefaultSnapshotName is the local name of a snapshot taken without one.
const DefaultSnapshotName = snapstore.DefaultName

// SnapshotID returns the identifier of the snapshot called name in the
// current test. An empty name means DefaultSnapshotName.
func (s *Session) SnapshotID(name string) SnapshotID {
	return snapstore.NewID(s.opts.pkg, s.t.Name(), name)
}

// SnapshotPath returns the file of variant index of the named snapshot.
func (s *Session) SnapshotPath(name string, index int) string {
	return s.store.Path(s.SnapshotID(name), index)
}

// WaitUntilScreenshotMatchesSnapshot waits until a capture matches one of
// the stored variants of the named snapshot and returns it. A missing
// snapshot is generated from one capture unless generation is disabled.
// Failures call t.Fatal; a mismatch message names the written report.
func (s *Session) WaitUntilScreenshotMatchesSnapshot(capture CaptureFunc, name string) image.Image {
	s.t.Helper()
	img, err := s.MatchSnapshot(capture, name)
	if err != nil {
		s.t.Fatalf("%v", err)
	}
	return img
}

// WaitUntilScreenMatchesSnapshot is WaitUntilScreenshotMatchesSnapshot on
// the session's screen capture.
func (s *Session) WaitUntilScreenMatchesSnapshot(name string) image.Image {
	s.t.Helper()
	capture, err := s.screen()
	if err != nil {
		s.t.Fatalf("snapwait: snapshot: %v", err)
	}
	return s.WaitUntilScreenshotMatchesSnapshot(capture, name)
}

// WaitUntilScreenshotMatchesImage waits until a capture matches one of the
// given candidates and returns it. Nothing is read from or written to the
// snapshot store, but a report is still written on timeout.
func (s *Session) WaitUntilScreenshotMatchesImage(capture CaptureFunc, candidates ...image.Image) image.Image {
	s.t.Helper()
	img, err := s.MatchImage(capture, candidates...)
	if err != nil {
		s.t.Fatalf("%v", err)
	}
	return img
}

// MatchSnapshot is WaitUntilScreenshotMatchesSnapshot returning its failure.
// The error is a *MissingSnapshotError, a *MismatchError, or a capture or
// storage error.
func (s *Session) MatchSnapshot(capture CaptureFunc, name string) (image.Image, error) {
	id := s.SnapshotID(name)

	variants, err := s.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("snapwait: snapshot: load %s: %w", id, err)
	}
	if len(variants) == 0 {
		return s.generate(id, capture)
	}

	candidates := make([]report.Expected, len(variants))
	for i, v := range variants {
		candidates[i] = report.Expected{Image: v.Image, Source: v.Path}
	}

	alternative := s.store.Path(id, len(variants))
	return s.match(id.String(), id.Name, capture, candidates, alternative)
}

// MatchImage is WaitUntilScreenshotMatchesImage returning its failure.
func (s *Session) MatchImage(capture CaptureFunc, candidates ...image.Image) (image.Image, error) {
	if len(candidates) == 0 {
		return nil, errors.New("snapwait: match-image: no candidate images")
	}
	expected := make([]report.Expected, len(candidates))
	for i, c := range candidates {
		if c == nil {
			return nil, fmt.Errorf("snapwait: match-image: candidate %d is nil", i)
		}
		expected[i] = report.Expected{Image: c}
	}
	return s.match("", "", capture, expected, "")
}

// generate stores a first variant for id after the settling delay.
func (s *Session) generate(id snapstore.ID, capture CaptureFunc) (image.Image, error) {
	if !s.opts.generate {
		return nil, &MissingSnapshotError{
			Snapshot: id.Name,
			Method:   id.QualifiedMethod(),
			Path:     s.store.Path(id, 0),
		}
	}

	s.opts.clock.Sleep(s.opts.generateDelay)
	img, err := s.checked(capture)()
	if err != nil {
		return nil, fmt.Errorf("snapwait: snapshot: capture %s: %w", id, err)
	}
	path, err := s.store.Save(id, 0, img)
	if err != nil {
		return nil, fmt.Errorf("snapwait: snapshot: store %s: %w", id, err)
	}
	s.opts.logger.Info("snapwait: generated missing snapshot", "snapshot", id.String(), "path", path)
	return img, nil
}

// match polls capture until it matches a candidate, reporting on timeout.
func (s *Session) match(snapshot, name string, capture CaptureFunc, candidates []report.Expected, alternative string) (image.Image, error) {
	imgs := make([]image.Image, len(candidates))
	for i, c := range candidates {
		imgs[i] = c.Image
	}

	timeout, p := s.pacing("snapshot", nil)
	var cmpErr error
	img, err := poll.Until(p, s.checked(capture), func(img image.Image) bool {
		ok, err := matchesAny(img, imgs, s.tolerance)
		if err != nil {
			cmpErr = err
		}
		return ok
	}, timeout)
	if err == nil {
		return img, nil
	}

	var te *TimeoutError
	if !errors.As(err, &te) {
		return nil, fmt.Errorf("snapwait: snapshot: capture: %w", err)
	}
	if cmpErr != nil {
		return nil, fmt.Errorf("snapwait: snapshot: compare: %w", cmpErr)
	}

	method := s.qualifiedMethod()
	loc, reportErr := s.reporter.Write(report.Failure{
		Method:      method,
		Snapshot:    name,
		Actual:      img,
		Candidates:  candidates,
		Tolerance:   s.tolerance,
		Alternative: alternative,
		Timeout:     te,
	})
	if reportErr != nil {
		s.opts.logger.Warn("snapwait: report incomplete", "method", method, "error", reportErr)
	}

	return img, &MismatchError{
		Snapshot:   snapshot,
		Method:     method,
		Candidates: len(candidates),
		Tolerance:  int(s.tolerance),
		Last:       img,
		Report:     loc,
		ReportErr:  reportErr,
		Timeout:    te,
	}
}
