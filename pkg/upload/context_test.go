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

	"github.com/rdkcentral/dcm-agent/pkg/bus"
	"github.com/rdkcentral/dcm-agent/pkg/config"
)

type fakeParams map[string]string

func (f fakeParams) GetParameter(name string) string { return f[name] }

func TestStampNames(t *testing.T) {
	c := &Context{MACCompact: "AABBCCDDEEFF"}
	c.stampNames(time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC))

	assert.Equal(t, "AABBCCDDEEFF_Logs_05-17-24-10-30AM.tgz", c.ArchiveName)
	assert.Equal(t, "AABBCCDDEEFF_DRI_Logs_05-17-24-10-30AM.tgz", c.DRIArchiveName)
	assert.Equal(t, "05-17-24-10-30AM", c.TimestampString())

	c.stampNames(time.Date(2024, 12, 1, 21, 5, 0, 0, time.UTC))
	assert.Equal(t, "AABBCCDDEEFF_Logs_12-01-24-09-05PM.tgz", c.ArchiveName)
}

func TestLoadParameters(t *testing.T) {
	c := &Context{}
	c.loadParameters(fakeParams{
		bus.ParamUploadEndpoint: "https://logs.example.com/cgi-bin/upload.cgi",
		bus.ParamEncryptUpload:  "true",
		bus.ParamPrivacyMode:    "DO_NOT_SHARE",
	})

	assert.Equal(t, "https://logs.example.com/cgi-bin/upload.cgi", c.UploadURL)
	assert.True(t, c.EncryptUpload)
	assert.True(t, c.PrivacyDoNotShare)
}

func TestLoadParametersDefaults(t *testing.T) {
	c := &Context{}
	c.loadParameters(fakeParams{})

	assert.Equal(t, "", c.UploadURL)
	assert.False(t, c.EncryptUpload, "encryption defaults off")
	assert.False(t, c.PrivacyDoNotShare, "privacy defaults to SHARE")

	c.loadParameters(nil) // no bus at all
	assert.False(t, c.PrivacyDoNotShare)
}

func TestProbeFeatures(t *testing.T) {
	dir := t.TempDir()

	osRelease := filepath.Join(dir, "os-release")
	require.NoError(t, os.WriteFile(osRelease, []byte("ID=rdkos\nVERSION_ID=1.0\n"), 0644))
	stapling := filepath.Join(dir, ".EnableOCSPStapling")
	require.NoError(t, os.WriteFile(stapling, nil, 0644))

	config.Dcm.Set("os_release_file", osRelease)
	config.Dcm.Set("ocsp_marker_file", filepath.Join(dir, ".EnableOCSPCA"))
	config.Dcm.Set("ocsp_stapling_marker_file", stapling)

	c := &Context{}
	c.probeFeatures()

	assert.True(t, c.TLSEnabled)
	assert.False(t, c.OCSPEnabled)
	assert.True(t, c.OCSPStapling)

	config.Dcm.Set("os_release_file", filepath.Join(dir, "nope"))
	c = &Context{}
	c.probeFeatures()
	assert.False(t, c.TLSEnabled, "no OS-release marker, no forced TLS")
}

func TestFirmwareVersion(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "version.txt")
	require.NoError(t, os.WriteFile(path, []byte("BRANCH=stable2\nimagename:HYB_20240517\nVERSION=4.5\n"), 0644))
	assert.Equal(t, "HYB_20240517", firmwareVersion(path))

	bare := filepath.Join(dir, "bare.txt")
	require.NoError(t, os.WriteFile(bare, []byte("\nHYB_20240517\n"), 0644))
	assert.Equal(t, "HYB_20240517", firmwareVersion(bare), "first non-empty line stands in")

	assert.Equal(t, "", firmwareVersion(filepath.Join(dir, "missing")))
}
