package snapstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// WithLock runs fn while holding the exclusive lock of snapshot directory
// dir, creating dir if needed. Parallel test binaries that share a snapshot
// directory serialise their writes through it.
func WithLock(dir string, fn func() error) (err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapstore: create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, lockName)
	lock := flock.New(path)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("snapstore: acquire lock on %s: %w", path, err)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			err = errors.Join(err, fmt.Errorf("snapstore: release lock on %s: %w", path, uerr))
		}
	}()

	return fn()
}
