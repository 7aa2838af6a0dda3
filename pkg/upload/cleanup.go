// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// backupNameRE matches the timestamped collection directories this engine
// creates, with or without the -logbackup suffix.
var backupNameRE = regexp.MustCompile(`^\d{2}-\d{2}-\d{2}-\d{2}-\d{2}(AM|PM)(-logbackup)?$`)

// archiveMaxAge is how long an unsent archive may sit in the log directory.
const archiveMaxAge = 24 * time.Hour

// partialSuffix marks archives still being written; anything carrying it
// after a session is a leftover from an interrupted run.
const partialSuffix = ".tmp"

// RemovePartialArchives deletes the known temporary files of the engine:
// half-built .tgz.tmp scratch files in the log directory.
func RemovePartialArchives(logPath string) {
	entries, err := os.ReadDir(logPath)
	if err != nil {
		log.Warnf("upload: temp sweep cannot read %s: %v", logPath, err)
		return
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ".tgz"+partialSuffix) {
			continue
		}
		path := filepath.Join(logPath, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Warnf("upload: cannot remove partial archive %s: %v", path, err)
		} else {
			log.Infof("upload: removed partial archive %s", path)
		}
	}
}

// SweepRetention removes expired backup directories and day-old archives
// from the log directory. Every failure here is survivable and only warns.
func SweepRetention(logPath string, retentionDays int) {
	entries, err := os.ReadDir(logPath)
	if err != nil {
		log.Warnf("upload: retention sweep cannot read %s: %v", logPath, err)
		return
	}

	now := time.Now()
	dirCutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)

	for _, entry := range entries {
		path := filepath.Join(logPath, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		switch {
		case entry.IsDir() && backupNameRE.MatchString(entry.Name()):
			if info.ModTime().Before(dirCutoff) {
				if err := os.RemoveAll(path); err != nil {
					log.Warnf("upload: cannot remove backup %s: %v", path, err)
				} else {
					log.Infof("upload: removed expired backup %s", path)
				}
			}
		case entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".tgz"):
			if now.Sub(info.ModTime()) > archiveMaxAge {
				if err := os.Remove(path); err != nil {
					log.Warnf("upload: cannot remove stale archive %s: %v", path, err)
				} else {
					log.Infof("upload: removed stale archive %s", path)
				}
			}
		}
	}
}

// TruncateLogs empties every regular file directly under the log directory.
// Subdirectories are untouched and symlinks are never followed.
func TruncateLogs(logPath string) error {
	entries, err := os.ReadDir(logPath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(logPath, entry.Name())
		if err := os.Truncate(path, 0); err != nil {
			log.Warnf("upload: cannot truncate %s: %v", path, err)
		}
	}
	log.Infof("upload: privacy enforcement truncated logs under %s", logPath)
	return nil
}
