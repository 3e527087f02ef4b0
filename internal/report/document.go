package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cboone/snapwait/internal/snapstore"
)

// ErrReportNotFound is returned by Load when no report exists at a path.
var ErrReportNotFound = errors.New("report not found")

// Action names a way to resolve a snapshot mismatch.
type Action string

const (
	// Overwrite replaces a stored candidate with the actual image.
	Overwrite Action = "overwrite"
	// AddAlternative stores the actual image as a new candidate.
	AddAlternative Action = "add_alternative"
)

// Document is the structured record of one unresolved mismatch.
// Image paths are relative to the directory holding the document;
// resolution targets are absolute.
type Document struct {
	ID         string      `yaml:"id"`
	Method     string      `yaml:"method"`
	Snapshot   string      `yaml:"snapshot,omitempty"`
	Timestamp  time.Time   `yaml:"timestamp"`
	Timeout    string      `yaml:"timeout"`
	Attempts   int         `yaml:"attempts"`
	Tolerance  int         `yaml:"tolerance"`
	Actual     string      `yaml:"actual"`
	Candidates []Candidate `yaml:"candidates"`
	Stack      string      `yaml:"stack,omitempty"`

	path string
}

// Candidate pairs one expected image with its difference mask.
type Candidate struct {
	Index           int          `yaml:"index"`
	Expected        string       `yaml:"expected"`
	Difference      string       `yaml:"difference"`
	DifferentPixels int          `yaml:"different_pixels"`
	Source          string       `yaml:"source,omitempty"`
	Resolutions     []Resolution `yaml:"resolutions,omitempty"`
}

// Resolution is a proposed copy of the actual image into the snapshot store.
type Resolution struct {
	Action Action `yaml:"action"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

// Path returns the file the document was loaded from or written to.
func (d *Document) Path() string {
	return d.path
}

// Dir returns the directory image paths are relative to.
func (d *Document) Dir() string {
	return filepath.Dir(d.path)
}

// Resolvable reports whether any candidate carries a resolution.
func (d *Document) Resolvable() bool {
	for _, c := range d.Candidates {
		if len(c.Resolutions) > 0 {
			return true
		}
	}
	return false
}

// Load reads the report document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, path)
		}
		return nil, fmt.Errorf("report: read %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("report: parse %s: %w", path, err)
	}
	doc.path = path
	return &doc, nil
}

// List loads every report document in dir, oldest first. A missing
// directory holds no reports.
func List(dir string) ([]*Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+docExt))
	if err != nil {
		return nil, fmt.Errorf("report: list %s: %w", dir, err)
	}

	docs := make([]*Document, 0, len(paths))
	for _, p := range paths {
		doc, err := Load(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Timestamp.Before(docs[j].Timestamp)
	})
	return docs, nil
}

// Target returns the file that resolving candidate index with action
// would write.
func (d *Document) Target(index int, action Action) (string, error) {
	res, err := d.resolution(index, action)
	if err != nil {
		return "", err
	}
	return res.To, nil
}

func (d *Document) resolution(index int, action Action) (*Resolution, error) {
	var cand *Candidate
	for i := range d.Candidates {
		if d.Candidates[i].Index == index {
			cand = &d.Candidates[i]
			break
		}
	}
	if cand == nil {
		return nil, fmt.Errorf("report: %s has no candidate %d", d.Method, index)
	}

	for i := range cand.Resolutions {
		if cand.Resolutions[i].Action == action {
			return &cand.Resolutions[i], nil
		}
	}
	return nil, fmt.Errorf("report: candidate %d of %s cannot be resolved with %q", index, d.Method, action)
}

// Resolve applies action to candidate index and returns the written path.
// Adding an alternative never replaces an existing file.
func (d *Document) Resolve(index int, action Action) (string, error) {
	res, err := d.resolution(index, action)
	if err != nil {
		return "", err
	}

	src := res.From
	if !filepath.IsAbs(src) {
		src = filepath.Join(d.Dir(), src)
	}

	err = snapstore.WithLock(filepath.Dir(res.To), func() error {
		if action == AddAlternative {
			if _, err := os.Stat(res.To); err == nil {
				return fmt.Errorf("report: alternative %s already exists", res.To)
			}
		}
		return snapstore.CopyFile(src, res.To)
	})
	if err != nil {
		return "", err
	}
	return res.To, nil
}
