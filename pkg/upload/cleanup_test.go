// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func age(t *testing.T, path string, d time.Duration) {
	t.Helper()
	old := time.Now().Add(-d)
	require.NoError(t, os.Chtimes(path, old, old))
}

func TestSweepRetention(t *testing.T) {
	dir := t.TempDir()

	expired := filepath.Join(dir, "01-02-24-10-30AM-logbackup")
	require.NoError(t, os.Mkdir(expired, 0755))
	age(t, expired, 4*24*time.Hour)

	fresh := filepath.Join(dir, "08-20-26-09-15PM-logbackup")
	require.NoError(t, os.Mkdir(fresh, 0755))

	plain := filepath.Join(dir, "08-20-26-09-15AM")
	require.NoError(t, os.Mkdir(plain, 0755))
	age(t, plain, 4*24*time.Hour)

	unrelated := filepath.Join(dir, "PCAP")
	require.NoError(t, os.Mkdir(unrelated, 0755))
	age(t, unrelated, 30*24*time.Hour)

	oldArchive := filepath.Join(dir, "AABB_Logs_01-02-24-10-30AM.tgz")
	require.NoError(t, os.WriteFile(oldArchive, []byte("x"), 0644))
	age(t, oldArchive, 48*time.Hour)

	newArchive := filepath.Join(dir, "AABB_Logs_08-20-26-09-15PM.tgz")
	require.NoError(t, os.WriteFile(newArchive, []byte("x"), 0644))

	SweepRetention(dir, 3)

	assert.NoFileExists(t, filepath.Join(expired, "."))
	assert.NoDirExists(t, expired)
	assert.NoDirExists(t, plain, "suffix-less backup names are swept too")
	assert.DirExists(t, fresh)
	assert.DirExists(t, unrelated, "non-timestamp directories are never touched")
	assert.NoFileExists(t, oldArchive)
	assert.FileExists(t, newArchive)
}

func TestRemovePartialArchives(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "AABB_Logs_01-02-24-10-30AM.tgz"+partialSuffix)
	require.NoError(t, os.WriteFile(stale, []byte("half-written"), 0644))

	finished := filepath.Join(dir, "AABB_Logs_01-02-24-10-30AM.tgz")
	require.NoError(t, os.WriteFile(finished, []byte("x"), 0644))

	unrelated := filepath.Join(dir, "notes.tmp")
	require.NoError(t, os.WriteFile(unrelated, []byte("x"), 0644))

	RemovePartialArchives(dir)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, finished)
	assert.FileExists(t, unrelated, "only .tgz scratch files are swept")
}

func TestRemovePartialArchivesMissingDir(t *testing.T) {
	RemovePartialArchives(filepath.Join(t.TempDir(), "nope")) // only warns
}

func TestSweepRetentionMissingDir(t *testing.T) {
	SweepRetention(filepath.Join(t.TempDir(), "nope"), 3) // only warns
}

func TestTruncateLogs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), []byte("0123456789"), 0644))

	sub := filepath.Join(dir, "PCAP")
	require.NoError(t, os.Mkdir(sub, 0755))
	nested := filepath.Join(sub, "c.pcap")
	require.NoError(t, os.WriteFile(nested, []byte("capture"), 0644))

	require.NoError(t, TruncateLogs(dir))

	for _, name := range []string{"a.log", "b.log"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Zero(t, info.Size(), name)
	}

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Size(), "truncation is non-recursive")
}

func TestTruncateLogsSkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "outside")
	require.NoError(t, os.WriteFile(target, []byte("keep me"), 0644))

	logs := filepath.Join(dir, "logs")
	require.NoError(t, os.Mkdir(logs, 0755))
	require.NoError(t, os.Symlink(target, filepath.Join(logs, "link.log")))

	require.NoError(t, TruncateLogs(logs))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Size())
}
