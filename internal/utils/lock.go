package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "ingest.lock"
)

// RunLock manages a file-based lock over the state directory so that two
// ingestion runs never write durable state concurrently.
type RunLock struct {
	lock *flock.Flock
	path string
}

// NewRunLock creates a new lock scoped to the given state directory.
func NewRunLock(stateDir string) (*RunLock, error) {
	absDir, err := filepath.Abs(stateDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve state dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create state dir: %w", err)
	}
	lockPath := filepath.Join(absDir, lockFileName)
	return &RunLock{
		lock: flock.New(lockPath),
		path: lockPath,
	}, nil
}

// Lock acquires the run lock, waiting if necessary.
// It will print a message if it has to wait.
func (l *RunLock) Lock() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}

	if !locked {
		fmt.Fprintf(os.Stderr, "Another cmdrlog run is writing state, waiting for it to finish...\n")
		if err := l.lock.Lock(); err != nil {
			return fmt.Errorf("failed to acquire lock on %s after waiting: %w", l.path, err)
		}
	}
	return nil
}

// Unlock releases the run lock.
func (l *RunLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
