// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Dcm is the global configuration object
var Dcm = viper.New()

// LoggerName specifies the name of the logger instance, it shows up as the
// module tag of every log line (e.g. LOG.RDK.DCM).
type LoggerName string

func init() {
	initConfig()
}

// initConfig initializes the config defaults on the global config object.
// Paths follow the RDK filesystem layout; every one of them can be overridden
// from dcmd.yaml or from a DCM_-prefixed environment variable.
func initConfig() {
	Dcm.SetConfigName("dcmd")
	Dcm.SetEnvPrefix("DCM")
	Dcm.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Dcm.AutomaticEnv()

	// platform property files
	Dcm.SetDefault("include_properties_file", defaultIncludeProperties)
	Dcm.SetDefault("device_properties_file", defaultDeviceProperties)
	Dcm.SetDefault("version_file", defaultVersionFile)

	// derived configuration artifacts
	Dcm.SetDefault("settings_conf_tmp", "/tmp/DCMSettings.conf")
	Dcm.SetDefault("settings_conf_persistent", "/opt/.DCMSettings.conf")
	Dcm.SetDefault("maintenance_conf", "/opt/rdk_maintenance.conf")

	// daemon plumbing
	Dcm.SetDefault("pid_file", "/tmp/.dcm-daemon.pid")
	Dcm.SetDefault("bus_socket", "/tmp/dcm-bus.sock")
	Dcm.SetDefault("bus_peer_socket", "/tmp/dcm-peer.sock")
	Dcm.SetDefault("poll_interval", time.Second)

	// log-upload engine
	Dcm.SetDefault("upload_lock_file", "/tmp/.log-upload.lock")
	Dcm.SetDefault("direct_marker_file", "/tmp/.lastdirectfail_upl")
	Dcm.SetDefault("codebig_marker_file", "/tmp/.lastcodebigfail_upl")
	Dcm.SetDefault("direct_max_attempts", 3)
	Dcm.SetDefault("codebig_max_attempts", 1)
	Dcm.SetDefault("attempt_interval", 10*time.Second)
	Dcm.SetDefault("connect_timeout", 10*time.Second)
	Dcm.SetDefault("total_timeout", 30*time.Second)
	Dcm.SetDefault("backup_retention_days", 3)
	Dcm.SetDefault("uploadstb_path", "/usr/bin/uploadstb")
	Dcm.SetDefault("firmware_check_script", "/lib/rdk/deviceInitiatedFWDnld.sh")
	Dcm.SetDefault("codebig_helper", "GetServiceUrl")

	// feature marker probes
	Dcm.SetDefault("os_release_file", "/etc/os-release")
	Dcm.SetDefault("ocsp_marker_file", "/tmp/.EnableOCSPCA")
	Dcm.SetDefault("ocsp_stapling_marker_file", "/tmp/.EnableOCSPStapling")

	// logging
	Dcm.SetDefault("log_level", "info")
	Dcm.SetDefault("log_file", defaultLogFile)
	Dcm.SetDefault("upload_log_file", defaultUploadLogFile)
	Dcm.SetDefault("log_to_console", true)
	Dcm.SetDefault("disable_file_logging", false)
}

// Load reads the config file pointed at by the current config search paths
func Load() error {
	return Dcm.ReadInConfig()
}
