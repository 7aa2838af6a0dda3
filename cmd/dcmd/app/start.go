// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package app

import (
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rdkcentral/dcm-agent/pkg/bus"
	"github.com/rdkcentral/dcm-agent/pkg/config"
	"github.com/rdkcentral/dcm-agent/pkg/dcmconfig"
	"github.com/rdkcentral/dcm-agent/pkg/pidfile"
	"github.com/rdkcentral/dcm-agent/pkg/scheduler"
	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

const (
	jobLogUpload     = "log-upload"
	jobFirmwareCheck = "firmware-check"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the DCM daemon",
	Long:  `Runs the daemon in the foreground`,
	RunE:  start,
}

// currentDoc holds the last successfully processed configuration document;
// the job callbacks read it without touching the main loop.
var currentDoc atomic.Value // *dcmconfig.Document

func init() {
	DcmdCmd.AddCommand(startCmd)
}

func start(_ *cobra.Command, _ []string) error {
	err := config.SetupLogger(
		config.LoggerName("DCM"),
		config.Dcm.GetString("log_level"),
		config.Dcm.GetString("log_file"),
		config.Dcm.GetBool("log_to_console"),
	)
	if err != nil {
		log.Criticalf("Unable to setup logger: %s", err)
		return err
	}
	defer log.Flush()

	pidfilePath := config.Dcm.GetString("pid_file")
	if err := pidfile.WritePID(pidfilePath); err != nil {
		return log.Errorf("Error while writing PID file, exiting: %v", err)
	}
	defer pidfile.Remove(pidfilePath)
	log.Infof("pid '%d' written to pid file '%s'", os.Getpid(), pidfilePath)

	props, err := dcmconfig.LoadProperties(
		config.Dcm.GetString("include_properties_file"),
		config.Dcm.GetString("device_properties_file"),
	)
	if err != nil {
		return log.Errorf("Cannot load platform properties: %v", err)
	}

	store := dcmconfig.NewStore(props,
		config.Dcm.GetString("settings_conf_tmp"),
		config.Dcm.GetString("settings_conf_persistent"),
		config.Dcm.GetString("maintenance_conf"),
	)

	sched := scheduler.New()
	defer sched.Stop()

	if err := sched.Add(jobLogUpload, runLogUpload, nil); err != nil {
		return log.Errorf("Cannot register %s job: %v", jobLogUpload, err)
	}
	if err := sched.Add(jobFirmwareCheck, runFirmwareCheck, nil); err != nil {
		return log.Errorf("Cannot register %s job: %v", jobFirmwareCheck, err)
	}

	// a bus failure leaves the daemon polling; each tick retries the open
	session := openBusSession()
	defer func() {
		if session != nil {
			session.Close()
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(config.Dcm.GetDuration("poll_interval"))
	defer ticker.Stop()

	log.Infof("DCM daemon started")

	reloadSent := false
	for {
		select {
		case sig := <-signalCh:
			log.Infof("Received signal '%s', shutting down...", sig)
			return nil
		case <-ticker.C:
			if session == nil {
				if session = openBusSession(); session == nil {
					continue
				}
			}
			if !reloadSent && session.Ready() {
				if err := session.PublishReload(); err != nil {
					log.Warnf("Reload request failed, will retry: %v", err)
				} else {
					reloadSent = true
				}
			}
			if session.TakeProcessRequest() {
				processOnce(session, store, sched)
			}
		}
	}
}

// openBusSession opens the configured bus sockets, returning nil when the
// bus is not up yet.
func openBusSession() *bus.Session {
	session, err := bus.OpenSession(
		config.Dcm.GetString("bus_socket"),
		config.Dcm.GetString("bus_peer_socket"),
	)
	if err != nil {
		log.Errorf("Bus unavailable, waiting for configuration events: %v", err)
		return nil
	}
	return session
}

// processOnce runs one configuration cycle and re-arms the jobs from the
// document's crons. An empty cron disarms its job.
func processOnce(session *bus.Session, store *dcmconfig.Store, sched *scheduler.Scheduler) {
	path := session.ConfigPath()
	if path == "" {
		log.Warn("Processing requested before any configuration document arrived")
		return
	}

	doc, err := store.ProcessDocument(path)
	if err != nil {
		log.Errorf("Configuration cycle failed: %v", err)
		return
	}
	currentDoc.Store(doc)

	applySchedule(sched, jobLogUpload, doc.LogUploadCron)
	applySchedule(sched, jobFirmwareCheck, doc.FirmwareCheckCron)
}

func applySchedule(sched *scheduler.Scheduler, name, cronText string) {
	if cronText == "" {
		if err := sched.Disarm(name); err != nil {
			log.Warnf("Cannot disarm %s: %v", name, err)
			return
		}
		log.Infof("Job %s disarmed", name)
		return
	}

	if err := sched.Arm(name, cronText); err != nil {
		log.Errorf("Cannot arm %s with %q: %v", name, cronText, err)
		return
	}
	log.Infof("Job %s armed with %q", name, cronText)
}

func runLogUpload(name string, _ interface{}) {
	doc, _ := currentDoc.Load().(*dcmconfig.Document)
	if doc == nil {
		log.Warnf("Job %s fired without a processed configuration", name)
		return
	}

	args := []string{
		"0", // TFTP server, legacy
		"0", // not a reboot-path invocation
		"1", // DCM-managed
		strconv.Itoa(doc.UploadOnReboot),
		doc.UploadProtocol,
		doc.UploadURL,
		"1", // cron trigger
		"0", // no RRD archive
	}
	runJobCommand(name, config.Dcm.GetString("uploadstb_path"), args...)
}

func runFirmwareCheck(name string, _ interface{}) {
	runJobCommand(name, config.Dcm.GetString("firmware_check_script"))
}

func runJobCommand(name, path string, args ...string) {
	log.Infof("Job %s: running %s", name, path)
	out, err := exec.Command(path, args...).CombinedOutput()
	if len(out) > 0 {
		log.Debugf("Job %s output: %s", name, out)
	}
	if err != nil {
		log.Errorf("Job %s failed: %v", name, err)
		return
	}
	log.Infof("Job %s complete", name)
}
