// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rdkcentral/dcm-agent/pkg/config"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stops a running DCM daemon",
	Long:  ``,
	RunE:  stop,
}

func init() {
	DcmdCmd.AddCommand(stopCmd)
}

func stop(_ *cobra.Command, _ []string) error {
	pidfilePath := config.Dcm.GetString("pid_file")

	data, err := os.ReadFile(pidfilePath)
	if err != nil {
		return errors.Wrap(err, "no running daemon found")
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return errors.Wrapf(err, "malformed pid file %s", pidfilePath)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return errors.Wrapf(err, "no process with pid %d", pid)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return errors.Wrapf(err, "cannot signal pid %d", pid)
	}

	fmt.Println("DCM daemon signalled to stop")
	return nil
}
