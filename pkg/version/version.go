// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

// Package version holds the build-time version information of the agent.
package version

// Default version strings, overridden at build time with
// -ldflags "-X github.com/rdkcentral/dcm-agent/pkg/version.AgentVersion=..."
var (
	// AgentVersion is the version of the DCM agent
	AgentVersion = "1.0.0-dev"
	// Commit is the git commit the binaries were built from
	Commit = ""
)
