// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package dcmconfig

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// The maintenance file is sourced by shell scripts: no spaces around `=`.
// go-ini only exposes this as a package-level switch, so it is set once at
// load time rather than from inside a writer.
func init() {
	ini.PrettyFormat = false
}

// WriteMaintenance derives the maintenance window file from the
// firmware-check cron: its first two fields become start_min and start_hr.
// The fields must be pure integers; `*`, lists and steps make the cycle
// fail (the schedule has no single start instant to publish).
func (d *Document) WriteMaintenance(path string) error {
	fields := strings.Fields(d.FirmwareCheckCron)
	if len(fields) < 2 {
		return errors.Errorf("dcmconfig: firmware-check cron %q too short for maintenance window", d.FirmwareCheckCron)
	}

	min, err := strconv.Atoi(fields[0])
	if err != nil || min < 0 || min > 59 {
		return errors.Errorf("dcmconfig: firmware-check cron minute %q is not a plain integer", fields[0])
	}
	hr, err := strconv.Atoi(fields[1])
	if err != nil || hr < 0 || hr > 23 {
		return errors.Errorf("dcmconfig: firmware-check cron hour %q is not a plain integer", fields[1])
	}

	f := ini.Empty()
	section := f.Section("")
	section.Key("start_hr").SetValue(strconv.Quote(strconv.Itoa(hr)))
	section.Key("start_min").SetValue(strconv.Quote(strconv.Itoa(min)))
	section.Key("tz_mode").SetValue(strconv.Quote(d.TimeZoneMode))

	if err := f.SaveTo(path); err != nil {
		// half-written windows are worse than none
		os.Remove(path) //nolint:errcheck
		return errors.Wrapf(err, "dcmconfig: cannot write %s", path)
	}

	log.Infof("dcmconfig: maintenance window %02d:%02d (%s) written to %s", hr, min, d.TimeZoneMode, path)
	return nil
}
