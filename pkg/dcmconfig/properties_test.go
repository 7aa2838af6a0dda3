// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package dcmconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProperties(t *testing.T) {
	dir := t.TempDir()
	include := writeFile(t, dir, "include.properties", `RDK_PATH=/lib/rdk
LOG_PATH="/opt/logs"
ENABLE_MAINTENANCE=true
`)
	device := writeFile(t, dir, "device.properties", `DEVICE_TYPE=mediaclient
BUILD_TYPE=prod,
DIRECT_BLOCK_TIME=3600
CB_BLOCK_TIME=900
`)

	p, err := LoadProperties(include, device)
	require.NoError(t, err)

	assert.Equal(t, "/lib/rdk", p.RDKPath())
	assert.Equal(t, "/opt/logs", p.LogPath(), "quotes are trimmed")
	assert.Equal(t, "prod", p.BuildType(), "trailing comma is trimmed")
	assert.Equal(t, "mediaclient", p.DeviceType())
	assert.True(t, p.MaintenanceEnabled())
	assert.Equal(t, time.Hour, p.DirectBlockTime())
	assert.Equal(t, 15*time.Minute, p.CodeBigBlockTime())
}

func TestLoadPropertiesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "include.properties", "RDK_PATH=/lib/rdk\n")

	p, err := LoadProperties(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultLogPath, p.LogPath())
	assert.Equal(t, DefaultDirectBlockTime, p.DirectBlockTime())
	assert.Equal(t, DefaultCodeBigBlock, p.CodeBigBlockTime())
	assert.False(t, p.MaintenanceEnabled())
	assert.Equal(t, "", p.DeviceType())
}

func TestLoadPropertiesLaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.properties", "LOG_PATH=/opt/logs\n")
	second := writeFile(t, dir, "b.properties", "LOG_PATH=/var/logs\n")

	p, err := LoadProperties(first, second)
	require.NoError(t, err)
	assert.Equal(t, "/var/logs", p.LogPath())
}

func TestLoadPropertiesMissingFileSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "include.properties", "RDK_PATH=/lib/rdk\n")

	p, err := LoadProperties(filepath.Join(dir, "nope.properties"), path)
	require.NoError(t, err)
	assert.Equal(t, "/lib/rdk", p.RDKPath())
}

func TestLoadPropertiesAllMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadProperties(filepath.Join(dir, "nope.properties"))
	assert.Error(t, err)
}

func TestBadBlockTimeFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "device.properties", "DIRECT_BLOCK_TIME=soon\nCB_BLOCK_TIME=-5\n")

	p, err := LoadProperties(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultDirectBlockTime, p.DirectBlockTime())
	assert.Equal(t, DefaultCodeBigBlock, p.CodeBigBlockTime())
}
