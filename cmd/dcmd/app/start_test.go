// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdkcentral/dcm-agent/pkg/config"
)

func TestOpenBusSessionRecovers(t *testing.T) {
	dir := t.TempDir()
	config.Dcm.Set("bus_peer_socket", filepath.Join(dir, "peer.sock"))

	// the socket directory does not exist yet, as when the bus broker has
	// not started
	config.Dcm.Set("bus_socket", filepath.Join(dir, "missing", "dcm.sock"))
	assert.Nil(t, openBusSession())

	// a later attempt with the directory in place succeeds
	config.Dcm.Set("bus_socket", filepath.Join(dir, "dcm.sock"))
	session := openBusSession()
	require.NotNil(t, session)
	session.Close()
}
