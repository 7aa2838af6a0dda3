// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// Block markers are shared across processes: their mtime is the instant of
// the last relevant failure. stat, interpret and delete form one logical
// observation, so the file is opened once (symlinks refused) and its age is
// taken from the opened handle.

// Blocked reports whether the marker at path is younger than ttl. A marker
// older than ttl is removed as a side effect of the observation; removal of
// an already-gone marker is not an error.
func Blocked(path string, ttl time.Duration) bool {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return false
	}

	var st unix.Stat_t
	statErr := unix.Fstat(fd, &st)
	unix.Close(fd) //nolint:errcheck
	if statErr != nil {
		return false
	}

	mtime := time.Unix(st.Mtim.Sec, st.Mtim.Nsec)
	if time.Since(mtime) <= ttl {
		return true
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warnf("upload: cannot remove stale marker %s: %v", path, err)
	} else {
		log.Debugf("upload: removed stale marker %s", path)
	}
	return false
}

// SetMarker creates the marker at path or refreshes its mtime to now
func SetMarker(path string) error {
	now := time.Now()
	if err := os.Chtimes(path, now, now); err == nil {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

// ClearMarker removes the marker at path, tolerating its absence
func ClearMarker(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warnf("upload: cannot remove marker %s: %v", path, err)
	}
}
