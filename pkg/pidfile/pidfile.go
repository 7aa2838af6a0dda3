// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

// Package pidfile implements the daemon PID file guarding against multiple
// running instances.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// WritePID writes the current PID to pidfilePath. It refuses to overwrite the
// file when it names a process that is still alive.
func WritePID(pidfilePath string) error {
	if err := os.MkdirAll(filepath.Dir(pidfilePath), os.FileMode(0755)); err != nil {
		return err
	}

	if byteContent, err := os.ReadFile(pidfilePath); err == nil {
		pidStr := strings.TrimSpace(string(byteContent))
		pid, err := strconv.Atoi(pidStr)
		if err == nil && isProcess(pid) {
			return fmt.Errorf("pidfile already exists, please check %s isn't running or remove %s", pidStr, pidfilePath)
		}
	}

	return os.WriteFile(pidfilePath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

// Remove deletes the pidfile, missing files are not an error
func Remove(pidfilePath string) {
	_ = os.Remove(pidfilePath)
}

func isProcess(pid int) bool {
	exists, _ := process.PidExists(int32(pid))
	return exists
}
