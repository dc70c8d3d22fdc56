// Package runlock keeps two engine processes from sharing one data dir.
package runlock

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const FileName = "leadhunt.lock"

var ErrHeld = errors.New("another engine holds the data dir lock")

type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock without blocking.
func Acquire(dataDir string) (*Lock, error) {
	fl := flock.New(filepath.Join(dataDir, FileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Path() string { return l.fl.Path() }

func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	return l.fl.Unlock()
}
