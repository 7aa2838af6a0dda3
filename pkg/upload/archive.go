// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// ErrNoLogs means the log directory had nothing to collect.
var ErrNoLogs = errors.New("upload: no logs to collect")

// Sub-bundles moved along with the flat logs, but only on device types that
// may carry captures off the box.
var bundleDirs = []string{"PCAP", "DRI"}

// prepareArchive collects the in-scope logs into a timestamped backup
// directory and packs that tree into the session archive. RRD sessions skip
// collection and use the caller-provided file verbatim.
func prepareArchive(ctx *Context, sess *Session) error {
	if sess.Strategy == StrategyRRD {
		if _, err := os.Stat(sess.ArchiveFile); err != nil {
			return errors.Wrapf(err, "upload: RRD archive %s", sess.ArchiveFile)
		}
		return nil
	}

	if _, err := os.Stat(ctx.LogPath); err != nil {
		return errors.Wrapf(err, "upload: log directory %s", ctx.LogPath)
	}

	backupDir := filepath.Join(ctx.LogPath, ctx.TimestampString()+"-logbackup")
	moved, hasDRI, err := collectLogs(ctx, backupDir)
	if err != nil {
		return err
	}
	if moved == 0 {
		os.Remove(backupDir) //nolint:errcheck
		return ErrNoLogs
	}
	log.Infof("upload: collected %d entries into %s", moved, backupDir)

	// a collected DRI bundle switches the session to the DRI archive name so
	// the receiving side routes it to crash tooling
	name := ctx.ArchiveName
	if hasDRI {
		name = ctx.DRIArchiveName
	}
	archive := filepath.Join(ctx.LogPath, name)
	if err := writeTarGz(backupDir, archive); err != nil {
		os.Remove(archive) //nolint:errcheck
		return err
	}
	sess.ArchiveFile = archive
	return nil
}

// collectLogs moves every regular file in the log directory into dir, plus
// the capture sub-bundles when the device type allows them. Symlinks and
// other directories stay behind. Returns the number of entries moved and
// whether a DRI bundle was among them.
func collectLogs(ctx *Context, dir string) (int, bool, error) {
	entries, err := os.ReadDir(ctx.LogPath)
	if err != nil {
		return 0, false, errors.Wrapf(err, "upload: cannot read %s", ctx.LogPath)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, false, errors.Wrapf(err, "upload: cannot create %s", dir)
	}

	moved, hasDRI := 0, false
	for _, entry := range entries {
		src := filepath.Join(ctx.LogPath, entry.Name())
		if entry.IsDir() {
			if bundleAllowed(ctx, entry.Name()) {
				if err := os.Rename(src, filepath.Join(dir, entry.Name())); err != nil {
					log.Warnf("upload: cannot move bundle %s: %v", src, err)
					continue
				}
				moved++
				if entry.Name() == "DRI" {
					hasDRI = true
				}
			}
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		// earlier archives awaiting the retention sweep and scratch files
		// from interrupted runs are not collected
		if strings.HasSuffix(entry.Name(), ".tgz") || strings.HasSuffix(entry.Name(), ".tgz"+partialSuffix) {
			continue
		}
		if err := os.Rename(src, filepath.Join(dir, entry.Name())); err != nil {
			log.Warnf("upload: cannot move %s: %v", src, err)
			continue
		}
		moved++
	}
	return moved, hasDRI, nil
}

// Media clients must not carry packet captures off the box.
func bundleAllowed(ctx *Context, name string) bool {
	for _, b := range bundleDirs {
		if name == b {
			return ctx.DeviceType != "mediaclient"
		}
	}
	return false
}

// writeTarGz packs the directory tree rooted at src into a gzipped tar at
// dest. Entry names are relative to the tree root. The archive is built in a
// scratch file and renamed into place, so a crash never leaves a half-written
// .tgz where the uploader might pick it up.
func writeTarGz(src, dest string) error {
	scratch := dest + partialSuffix
	out, err := os.Create(scratch)
	if err != nil {
		return errors.Wrapf(err, "upload: cannot create archive %s", scratch)
	}

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	walkErr := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil || rel == "." {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, f)
		f.Close() //nolint:errcheck
		return err
	})

	if err := tw.Close(); walkErr == nil {
		walkErr = err
	}
	if err := gz.Close(); walkErr == nil {
		walkErr = err
	}
	if err := out.Close(); walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		os.Remove(scratch) //nolint:errcheck
		return errors.Wrapf(walkErr, "upload: cannot write archive %s", dest)
	}
	if err := os.Rename(scratch, dest); err != nil {
		os.Remove(scratch) //nolint:errcheck
		return errors.Wrapf(err, "upload: cannot finalize archive %s", dest)
	}
	return nil
}
