// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrLockBusy is returned when another engine instance holds the upload lock.
var ErrLockBusy = errors.New("upload: another upload is in progress")

// Lock is an exclusive advisory lock serializing engine runs across
// processes. The kernel drops it if the holder dies.
type Lock struct {
	f *os.File
}

// AcquireLock takes the exclusive non-blocking lock at path. ErrLockBusy
// means a concurrent engine owns it.
func AcquireLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "upload: cannot open lock file %s", path)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close() //nolint:errcheck
		if err == unix.EWOULDBLOCK {
			return nil, ErrLockBusy
		}
		return nil, errors.Wrapf(err, "upload: cannot lock %s", path)
	}
	return &Lock{f: f}, nil
}

// Release drops the lock. The file itself is left in place for the next run.
func (l *Lock) Release() {
	if l == nil || l.f == nil {
		return
	}
	unix.Flock(int(l.f.Fd()), unix.LOCK_UN) //nolint:errcheck
	l.f.Close()                             //nolint:errcheck
	l.f = nil
}
