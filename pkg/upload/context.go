// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"fmt"
	"time"

	"github.com/acobaugh/osrelease"
	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/bus"
	"github.com/rdkcentral/dcm-agent/pkg/config"
	"github.com/rdkcentral/dcm-agent/pkg/dcmconfig"
	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// ParamReader reads TR-181 style parameters from the device bus.
// *bus.Handle satisfies it; tests substitute a map.
type ParamReader interface {
	GetParameter(name string) string
}

// Context is the per-run snapshot of everything the engine needs. It is
// populated once by InitContext and owned by a single Execute call.
type Context struct {
	Props *dcmconfig.Properties

	LogPath string
	RDKPath string

	DeviceType      string
	BuildType       string
	MAC             string
	MACCompact      string
	FirmwareVersion string

	UploadURL         string
	EncryptUpload     bool
	PrivacyDoNotShare bool

	TLSEnabled   bool
	OCSPEnabled  bool
	OCSPStapling bool

	DirectMarker    string
	CodeBigMarker   string
	DirectBlockTTL  time.Duration
	CodeBigBlockTTL time.Duration
	DirectBlocked   bool
	CodeBigBlocked  bool

	DirectMaxAttempts  int
	CodeBigMaxAttempts int
	AttemptInterval    time.Duration
	ConnectTimeout     time.Duration
	TotalTimeout       time.Duration

	RetentionDays int

	Timestamp      time.Time
	ArchiveName    string
	DRIArchiveName string

	LockFile      string
	CodeBigHelper string
}

// InitContext builds the upload context in a fixed order: properties, device
// identity, bus parameters, feature probes, block-marker observation, names.
// Any failing sub-step short-circuits; the only side effect an aborted init
// can leave behind is a removed stale marker.
func InitContext(params ParamReader) (*Context, error) {
	props, err := dcmconfig.LoadProperties(
		config.Dcm.GetString("include_properties_file"),
		config.Dcm.GetString("device_properties_file"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "upload: cannot load platform properties")
	}

	ctx := &Context{
		Props:   props,
		LogPath: props.LogPath(),
		RDKPath: props.RDKPath(),

		DeviceType: props.DeviceType(),
		BuildType:  props.BuildType(),

		DirectMarker:    config.Dcm.GetString("direct_marker_file"),
		CodeBigMarker:   config.Dcm.GetString("codebig_marker_file"),
		DirectBlockTTL:  props.DirectBlockTime(),
		CodeBigBlockTTL: props.CodeBigBlockTime(),

		DirectMaxAttempts:  config.Dcm.GetInt("direct_max_attempts"),
		CodeBigMaxAttempts: config.Dcm.GetInt("codebig_max_attempts"),
		AttemptInterval:    config.Dcm.GetDuration("attempt_interval"),
		ConnectTimeout:     config.Dcm.GetDuration("connect_timeout"),
		TotalTimeout:       config.Dcm.GetDuration("total_timeout"),
		RetentionDays:      config.Dcm.GetInt("backup_retention_days"),

		LockFile:      config.Dcm.GetString("upload_lock_file"),
		CodeBigHelper: config.Dcm.GetString("codebig_helper"),
	}

	if err := ctx.loadIdentity(); err != nil {
		return nil, err
	}
	ctx.loadParameters(params)
	ctx.probeFeatures()

	ctx.DirectBlocked = Blocked(ctx.DirectMarker, ctx.DirectBlockTTL)
	ctx.CodeBigBlocked = Blocked(ctx.CodeBigMarker, ctx.CodeBigBlockTTL)

	ctx.stampNames(time.Now())

	log.Infof("upload: context ready: device=%s build=%s mac=%s direct_blocked=%v codebig_blocked=%v",
		ctx.DeviceType, ctx.BuildType, ctx.MACCompact, ctx.DirectBlocked, ctx.CodeBigBlocked)
	return ctx, nil
}

// loadParameters pulls the TR-181 values from the peer. Missing values keep
// the safe defaults: no encryption, privacy SHARE.
func (c *Context) loadParameters(params ParamReader) {
	if params == nil {
		return
	}
	c.UploadURL = params.GetParameter(bus.ParamUploadEndpoint)
	c.EncryptUpload = params.GetParameter(bus.ParamEncryptUpload) == "true"
	c.PrivacyDoNotShare = params.GetParameter(bus.ParamPrivacyMode) == "DO_NOT_SHARE"
}

// probeFeatures evaluates the filesystem feature markers. TLS is forced only
// when the OS-release file parses.
func (c *Context) probeFeatures() {
	if _, err := osrelease.ReadFile(config.Dcm.GetString("os_release_file")); err == nil {
		c.TLSEnabled = true
	}
	c.OCSPEnabled = fileExists(config.Dcm.GetString("ocsp_marker_file"))
	c.OCSPStapling = fileExists(config.Dcm.GetString("ocsp_stapling_marker_file"))
}

// stampNames fixes the run timestamp and derives both archive names from it.
func (c *Context) stampNames(now time.Time) {
	c.Timestamp = now
	ts := now.Format(archiveTimeLayout)
	c.ArchiveName = fmt.Sprintf("%s_Logs_%s.tgz", c.MACCompact, ts)
	c.DRIArchiveName = fmt.Sprintf("%s_DRI_Logs_%s.tgz", c.MACCompact, ts)
}

// TimestampString returns the run timestamp in the archive naming format.
func (c *Context) TimestampString() string {
	return c.Timestamp.Format(archiveTimeLayout)
}

// archiveTimeLayout renders e.g. 05-17-24-10-30AM.
const archiveTimeLayout = "01-02-06-03-04PM"
