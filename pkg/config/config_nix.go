//go:build linux || freebsd || netbsd || openbsd || solaris || dragonfly

package config

const (
	defaultIncludeProperties = "/etc/include.properties"
	defaultDeviceProperties  = "/etc/device.properties"
	defaultVersionFile       = "/version.txt"
	defaultLogFile           = "/opt/logs/dcmd.log"
	defaultUploadLogFile     = "/opt/logs/uploadstb.log"
)
