// Package report writes diagnostic artifacts for snapshot mismatches that
// did not resolve before their timeout.
//
// A report directory looks like:
//
//	<dir>/
//	  <base>.yaml
//	  <base>.html
//	  images/
//	    <base>-actual.png
//	    <base>-expected-0.png
//	    <base>-difference-0.png
//
// where <base> is the sanitized qualified test name, followed by the
// snapshot name for named snapshots.
package report

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cboone/snapwait/internal/imagediff"
	"github.com/cboone/snapwait/internal/poll"
	"github.com/cboone/snapwait/internal/snapstore"
)

// DefaultDir is the report directory used when none is configured.
const DefaultDir = ".snapwait/reports"

const (
	imagesDir = "images"
	docExt    = ".yaml"
	htmlExt   = ".html"
)

// Failure describes an unresolved mismatch.
type Failure struct {
	// Method is the qualified name of the failing test.
	Method string
	// Snapshot is the local snapshot name, empty for explicit candidates.
	Snapshot string

	Actual     image.Image
	Candidates []Expected
	Tolerance  imagediff.Tolerance

	// Alternative is where the actual image would be stored as a new
	// candidate. Empty when the candidates do not come from a store.
	Alternative string

	Timeout *poll.TimeoutError
}

// Expected is one candidate the actual image was compared against.
type Expected struct {
	Image image.Image
	// Source is the stored file of the candidate, empty when it was passed
	// in directly.
	Source string
}

// Location points at the written report.
type Location struct {
	Document string
	HTML     string
}

func (l Location) String() string {
	return l.Document
}

// WriteError records one artifact that could not be written.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("report: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Reporter writes failure reports into Dir.
type Reporter struct {
	Dir    string
	Logger *slog.Logger
	Now    func() time.Time
}

// New returns a Reporter writing into dir, or DefaultDir when dir is empty.
func New(dir string, logger *slog.Logger) *Reporter {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{Dir: dir, Logger: logger, Now: time.Now}
}

// BaseName returns the file name stem used for a failure's artifacts.
func BaseName(method, snapshot string) string {
	base := snapstore.Sanitize(method)
	if snapshot != "" {
		base += "." + snapstore.Sanitize(snapshot)
	}
	return base
}

// Write persists f and returns where the report document lives.
//
// Writing is best effort: every artifact is attempted even after an
// earlier one failed. The returned error, if any, joins one *WriteError per
// failed artifact. The Location is meaningful whenever the document itself
// was written.
func (r *Reporter) Write(f Failure) (Location, error) {
	base := BaseName(f.Method, f.Snapshot)
	loc := Location{
		Document: filepath.Join(r.Dir, base+docExt),
		HTML:     filepath.Join(r.Dir, base+htmlExt),
	}

	var errs []error
	record := func(op, path string, err error) {
		if err == nil {
			return
		}
		r.logger().Warn("snapwait: report artifact not written", "op", op, "path", path, "error", err)
		errs = append(errs, &WriteError{Op: op, Path: path, Err: err})
	}

	doc := &Document{
		ID:        uuid.NewString(),
		Method:    f.Method,
		Snapshot:  f.Snapshot,
		Timestamp: r.now().UTC(),
		Tolerance: int(f.Tolerance),
		path:      loc.Document,
	}
	if f.Timeout != nil {
		doc.Timeout = f.Timeout.Timeout.String()
		doc.Attempts = f.Timeout.Attempts
		doc.Stack = string(f.Timeout.Stack)
	}

	doc.Actual = filepath.Join(imagesDir, base+"-actual.png")
	record("write actual image", doc.Actual, r.writeImage(doc.Actual, f.Actual))

	alternative := ""
	if f.Alternative != "" {
		abs, err := filepath.Abs(f.Alternative)
		record("resolve alternative path", f.Alternative, err)
		alternative = abs
	}

	for i, exp := range f.Candidates {
		n := strconv.Itoa(i)
		cand := Candidate{
			Index:      i,
			Expected:   filepath.Join(imagesDir, base+"-expected-"+n+".png"),
			Difference: filepath.Join(imagesDir, base+"-difference-"+n+".png"),
		}
		record("write expected image", cand.Expected, r.writeImage(cand.Expected, exp.Image))

		// Diagnostics use exact comparison whatever tolerance the match used.
		diff, err := imagediff.Compare(f.Actual, exp.Image, imagediff.Exact)
		if err != nil {
			record("compute difference", cand.Difference, err)
		} else {
			cand.DifferentPixels = diff.Changed
			record("write difference image", cand.Difference, r.writeImage(cand.Difference, diff.Mask))
		}

		if exp.Source != "" {
			source, err := filepath.Abs(exp.Source)
			record("resolve source path", exp.Source, err)
			cand.Source = source
			cand.Resolutions = append(cand.Resolutions, Resolution{Action: Overwrite, From: doc.Actual, To: source})
			if alternative != "" {
				cand.Resolutions = append(cand.Resolutions, Resolution{Action: AddAlternative, From: doc.Actual, To: alternative})
			}
		}
		doc.Candidates = append(doc.Candidates, cand)
	}

	record("write document", loc.Document, r.writeDocument(doc))
	record("write html", loc.HTML, r.writeHTML(loc.HTML, doc))

	if len(errs) == 0 {
		r.logger().Info("snapwait: report written", "method", f.Method, "path", loc.Document)
	}
	return loc, errors.Join(errs...)
}

func (r *Reporter) writeImage(rel string, img image.Image) error {
	return snapstore.WriteFile(filepath.Join(r.Dir, rel), img)
}

func (r *Reporter) writeDocument(doc *Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return snapstore.WriteBytes(doc.path, data)
}

func (r *Reporter) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Reporter) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
