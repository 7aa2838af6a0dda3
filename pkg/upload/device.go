// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"bufio"
	"net"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/config"
	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// loadIdentity fills the MAC and firmware version fields. The STB interface
// named in device.properties wins; otherwise the first non-loopback interface
// with a hardware address is used. Archives are named after the MAC, so an
// unresolvable MAC fails the whole init.
func (c *Context) loadIdentity() error {
	mac, err := deviceMAC(c.Props.Get("ESTB_INTERFACE"))
	if err != nil {
		return err
	}
	c.MAC = mac
	c.MACCompact = strings.ToUpper(strings.NewReplacer(":", "", "-", "").Replace(mac))

	c.FirmwareVersion = firmwareVersion(config.Dcm.GetString("version_file"))
	return nil
}

func deviceMAC(preferred string) (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", errors.Wrap(err, "upload: cannot list network interfaces")
	}

	if preferred != "" {
		for _, iface := range ifaces {
			if iface.Name == preferred && len(iface.HardwareAddr) > 0 {
				return iface.HardwareAddr.String(), nil
			}
		}
		log.Warnf("upload: interface %s not usable, falling back to first hardware interface", preferred)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		return iface.HardwareAddr.String(), nil
	}
	return "", errors.New("upload: no interface with a hardware address")
}

// firmwareVersion extracts the image name from the version file. The file
// carries one `imagename:NAME` line among others; when absent the first
// non-empty line stands in. Missing file means an empty version.
func firmwareVersion(path string) string {
	f, err := os.Open(path)
	if err != nil {
		log.Warnf("upload: cannot read version file %s: %v", path, err)
		return ""
	}
	defer f.Close()

	first := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if v, ok := strings.CutPrefix(line, "imagename:"); ok {
			return strings.TrimSpace(v)
		}
		if first == "" {
			first = line
		}
	}
	return first
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
