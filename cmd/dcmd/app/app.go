// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package app

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rdkcentral/dcm-agent/pkg/config"
	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

var (
	// DcmdCmd is the root command
	DcmdCmd = &cobra.Command{
		Use:   "dcmd [command]",
		Short: "RDK device configuration management daemon.",
		Long: `
dcmd keeps the device configuration in sync with the backend: it receives
configuration documents over the device bus, derives the settings files other
components consume, and schedules log uploads and firmware checks from the
crons those documents carry.`,
		PersistentPreRunE: preRun,
	}

	// confFilePath holds the path to the folder containing the configuration
	// file, to allow overrides from the command line
	confFilePath string
	flagNoColor  bool
)

// preRun takes care of common setup: configuration parsing and the no-color
// flag.
func preRun(_ *cobra.Command, _ []string) error {
	if flagNoColor {
		color.NoColor = true
	}

	configFound := false
	if len(confFilePath) != 0 {
		config.Dcm.AddConfigPath(confFilePath)
		if confErr := config.Load(); confErr != nil {
			log.Error(confErr)
		} else {
			configFound = true
		}
	}

	if !configFound {
		log.Infof("Config will be read from env variables")
	}
	return nil
}

func init() {
	DcmdCmd.PersistentFlags().StringVarP(&confFilePath, "cfgpath", "c", "", "path to directory containing dcmd.yaml")
	DcmdCmd.PersistentFlags().BoolVarP(&flagNoColor, "no-color", "n", false, "disable color output")
}
