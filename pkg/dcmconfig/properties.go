// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

// Package dcmconfig loads the platform properties and the device
// configuration document, and writes the derived artifacts the rest of the
// device consumes.
package dcmconfig

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// Property defaults
const (
	DefaultLogPath         = "/opt/logs"
	DefaultDirectBlockTime = 86400 * time.Second
	DefaultCodeBigBlock    = 1800 * time.Second
)

// Properties is the merged view of the platform property files
// (/etc/include.properties and /etc/device.properties). Files are flat
// KEY=VALUE; `#` is not a comment character in these files.
type Properties struct {
	values map[string]string
}

// LoadProperties reads the given property files in order; later files win on
// duplicate keys. A missing file is skipped with a warning so that partial
// images still come up.
func LoadProperties(paths ...string) (*Properties, error) {
	p := &Properties{values: make(map[string]string)}

	loadOpts := ini.LoadOptions{
		// RDK property files are not real INI: flat KEY=VALUE, no
		// sections, and the odd free-form line in between
		IgnoreInlineComment:     true,
		KeyValueDelimiters:      "=",
		SkipUnrecognizableLines: true,
	}

	loaded := 0
	for _, path := range paths {
		f, err := ini.LoadSources(loadOpts, path)
		if err != nil {
			log.Warnf("properties: cannot read %s: %v", path, err)
			continue
		}
		for _, key := range f.Section("").Keys() {
			p.values[key.Name()] = cleanValue(key.Value())
		}
		loaded++
	}

	if loaded == 0 {
		return nil, errors.Errorf("properties: none of %v readable", paths)
	}
	return p, nil
}

// cleanValue trims surrounding quotes and the trailing comma some generated
// property files carry.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, ",")
	v = strings.Trim(v, `"'`)
	return v
}

// Get returns the raw value for key, empty when absent
func (p *Properties) Get(key string) string {
	return p.values[key]
}

// GetDefault returns the value for key or def when absent or empty
func (p *Properties) GetDefault(key, def string) string {
	if v, ok := p.values[key]; ok && v != "" {
		return v
	}
	return def
}

// LogPath is the root of the log directories
func (p *Properties) LogPath() string {
	return p.GetDefault("LOG_PATH", DefaultLogPath)
}

// RDKPath is the default search root for scripts and binaries
func (p *Properties) RDKPath() string {
	return p.GetDefault("RDK_PATH", "/lib/rdk")
}

// DirectBlockTime is how long a CodeBig success suppresses the Direct path
func (p *Properties) DirectBlockTime() time.Duration {
	return p.seconds("DIRECT_BLOCK_TIME", DefaultDirectBlockTime)
}

// CodeBigBlockTime is how long a CodeBig failure suppresses CodeBig
func (p *Properties) CodeBigBlockTime() time.Duration {
	return p.seconds("CB_BLOCK_TIME", DefaultCodeBigBlock)
}

// DeviceType returns the DEVICE_TYPE steering flag
func (p *Properties) DeviceType() string {
	return p.Get("DEVICE_TYPE")
}

// BuildType returns the BUILD_TYPE steering flag
func (p *Properties) BuildType() string {
	return p.Get("BUILD_TYPE")
}

// MaintenanceEnabled reports whether the maintenance manager drives events
func (p *Properties) MaintenanceEnabled() bool {
	return p.Get("ENABLE_MAINTENANCE") == "true"
}

// DCMLogPath is the optional dedicated DCM log directory
func (p *Properties) DCMLogPath() string {
	return p.Get("DCM_LOG_PATH")
}

func (p *Properties) seconds(key string, def time.Duration) time.Duration {
	v := p.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warnf("properties: bad %s value %q, using default", key, v)
		return def
	}
	return time.Duration(n) * time.Second
}
