// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package app

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rdkcentral/dcm-agent/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  ``,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Fprintf(color.Output, "uploadstb %s\n", color.BlueString(version.AgentVersion))
	},
}

func init() {
	UploadstbCmd.AddCommand(versionCmd)
}
