// Package snapstore persists snapshot variant sets as numbered PNG files.
//
// The variants of one snapshot live side by side in a directory derived
// from the test's package and suite:
//
//	<root>/<package path>/<suite>/<method>.<name>.<index>.png
//
// Indices start at 0 and must be contiguous: Load stops at the first
// missing index.
package snapstore

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultRoot is the store root used when none is configured.
const DefaultRoot = "testdata/snapshots"

// lockName is the lock file guarding writes inside a snapshot directory.
const lockName = ".snapwait.lock"

// Variant is one stored candidate image.
type Variant struct {
	Index int
	Path  string
	Image image.Image
}

// Store reads and writes snapshot variants below Root.
type Store struct {
	Root string
}

// New returns a Store rooted at root, or DefaultRoot when root is empty.
func New(root string) *Store {
	if root == "" {
		root = DefaultRoot
	}
	return &Store{Root: root}
}

// Dir returns the directory holding id's variants.
func (s *Store) Dir(id ID) string {
	return filepath.Join(s.Root, id.dir())
}

// Path returns the file path of variant index of id.
func (s *Store) Path(id ID, index int) string {
	return filepath.Join(s.Dir(id), id.file(index))
}

// Load returns id's variants in index order. A snapshot with no stored
// variants yields an empty slice and no error.
func (s *Store) Load(id ID) ([]Variant, error) {
	var variants []Variant
	for i := 0; ; i++ {
		path := s.Path(id, i)
		img, err := ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return variants, nil
		}
		if err != nil {
			return variants, err
		}
		variants = append(variants, Variant{Index: i, Path: path, Image: img})
	}
}

// NextIndex returns the first unused index of id.
func (s *Store) NextIndex(id ID) (int, error) {
	for i := 0; ; i++ {
		_, err := os.Stat(s.Path(id, i))
		if errors.Is(err, fs.ErrNotExist) {
			return i, nil
		}
		if err != nil {
			return 0, fmt.Errorf("snapstore: stat variant %d of %s: %w", i, id, err)
		}
	}
}

// Save writes img as variant index of id and returns its path.
func (s *Store) Save(id ID, index int, img image.Image) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("snapstore: negative variant index %d", index)
	}
	path := s.Path(id, index)
	err := WithLock(filepath.Dir(path), func() error {
		return WriteFile(path, img)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// ReadFile decodes the PNG at path.
func ReadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("snapstore: decode %s: %w", path, err)
	}
	return img, nil
}

// WriteFile encodes img as PNG at path. The file is written under a
// temporary name and renamed into place so readers never see a partial
// image. Parent directories are created as needed.
func WriteFile(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("snapstore: write %s: nil image", path)
	}
	return writeAtomic(path, func(w io.Writer) error {
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("snapstore: encode %s: %w", path, err)
		}
		return nil
	})
}

// WriteBytes writes data to path with the same temp-file-and-rename
// guarantee as WriteFile.
func WriteBytes(path string, data []byte) error {
	return writeAtomic(path, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("snapstore: write %s: %w", path, err)
		}
		return nil
	})
}

func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapstore: create directory %s: %w", dir, err)
	}

	// The temp name keeps neither the final name nor its extension, so
	// directory watchers matching on extension never see a partial file.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("snapstore: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("snapstore: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapstore: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("snapstore: rename into %s: %w", path, err)
	}
	return nil
}

// CopyFile copies the PNG at src to dst using WriteFile semantics.
func CopyFile(src, dst string) error {
	img, err := ReadFile(src)
	if err != nil {
		return err
	}
	return WriteFile(dst, img)
}
