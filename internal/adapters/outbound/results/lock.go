package results

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/promisetracker/linkwatch/internal/domain"
)

// DefaultLockStaleAfter is how old a lock file must be before it is
// treated as left behind by a crashed process.
const DefaultLockStaleAfter = 2 * time.Hour

// FileLock implements domain.RunLock as an exclusively created file next
// to the results artifact.
type FileLock struct {
	path       string
	staleAfter time.Duration
}

var _ domain.RunLock = (*FileLock)(nil)

// NewFileLock creates a lock at path. A non-positive staleAfter uses
// DefaultLockStaleAfter.
func NewFileLock(path string, staleAfter time.Duration) *FileLock {
	if staleAfter <= 0 {
		staleAfter = DefaultLockStaleAfter
	}
	return &FileLock{path: path, staleAfter: staleAfter}
}

// Lock returns the run lock guarding this store's artifact.
func (s *Store) Lock() *FileLock {
	return NewFileLock(s.path+".lock", DefaultLockStaleAfter)
}

// Path returns the lock file location.
func (l *FileLock) Path() string { return l.path }

// TryAcquire creates the lock file or fails with ErrRunInProgress. A lock
// older than the stale threshold is removed and taken over once.
func (l *FileLock) TryAcquire() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "pid %d since %s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				_ = os.Remove(l.path)
				return nil, werr
			}
			return func() { _ = os.Remove(l.path) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}

		info, statErr := os.Stat(l.path)
		if statErr != nil || time.Since(info.ModTime()) < l.staleAfter || attempt > 0 {
			return nil, fmt.Errorf("%w (%s)", domain.ErrRunInProgress, l.holder())
		}
		if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return nil, domain.ErrRunInProgress
}

func (l *FileLock) holder() string {
	data, err := os.ReadFile(l.path)
	if err != nil || len(data) == 0 {
		return "held by " + filepath.Base(l.path)
	}
	return "held by " + strings.TrimSpace(string(data))
}
