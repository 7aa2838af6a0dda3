// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package app

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rdkcentral/dcm-agent/pkg/bus"
	"github.com/rdkcentral/dcm-agent/pkg/config"
	"github.com/rdkcentral/dcm-agent/pkg/upload"
	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

var (
	// UploadstbCmd is the root command
	UploadstbCmd = &cobra.Command{
		Use:   "uploadstb <TFTP-server> <FLAG> <DCM_FLAG> <UploadOnReboot> <UploadProtocol> <UploadHttpLink> <TriggerType> <RRD_FLAG> [<RRD_UPLOADLOG_FILE>]",
		Short: "Collect and upload STB logs.",
		Long: `
uploadstb packages the device logs into a single archive and uploads it to
the configured endpoint, falling back from the direct path to CodeBig when
needed. The single argument form 'uploadstb uploadlogsnow' runs an immediate
on-demand upload.`,
		Args:          cobra.RangeArgs(1, 9),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	confFilePath string
	exitCode     int
)

// Run executes the command line and returns the process exit code.
func Run(argv []string) int {
	UploadstbCmd.SetArgs(argv)
	if err := UploadstbCmd.Execute(); err != nil {
		return upload.ExitUsage
	}
	return exitCode
}

func run(_ *cobra.Command, argv []string) error {
	if len(confFilePath) != 0 {
		config.Dcm.AddConfigPath(confFilePath)
		if confErr := config.Load(); confErr != nil {
			log.Error(confErr)
		}
	}

	args, err := parseArgs(argv)
	if err != nil {
		exitCode = upload.ExitUsage
		return err
	}
	exitCode = execute(args)
	return nil
}

// parseArgs maps the positional arguments onto the engine inputs. The first
// argument is the legacy TFTP server and is ignored.
func parseArgs(argv []string) (upload.Args, error) {
	if len(argv) == 1 {
		if argv[0] == "uploadlogsnow" {
			return upload.Args{
				Flag:           1,
				DCMFlag:        1,
				UploadOnReboot: 1,
				Protocol:       "HTTP",
				Trigger:        upload.TriggerOnDemand,
			}, nil
		}
		return upload.Args{}, errors.Errorf("unknown argument %q", argv[0])
	}
	if len(argv) < 8 {
		return upload.Args{}, errors.New("expected 8 or 9 positional arguments")
	}

	flag, err := strconv.Atoi(argv[1])
	if err != nil {
		return upload.Args{}, errors.Errorf("FLAG %q is not a number", argv[1])
	}
	dcmFlag, err := strconv.Atoi(argv[2])
	if err != nil {
		return upload.Args{}, errors.Errorf("DCM_FLAG %q is not a number", argv[2])
	}
	onReboot, err := strconv.Atoi(argv[3])
	if err != nil {
		return upload.Args{}, errors.Errorf("UploadOnReboot %q is not a number", argv[3])
	}

	protocol := argv[4]
	if protocol != "HTTP" && protocol != "HTTPS" {
		return upload.Args{}, errors.Errorf("unsupported upload protocol %q", protocol)
	}

	triggerCode, err := strconv.Atoi(argv[6])
	if err != nil {
		return upload.Args{}, errors.Errorf("TriggerType %q is not a number", argv[6])
	}
	trigger, known := upload.ParseTrigger(triggerCode)
	if !known {
		log.Warnf("Unknown trigger type %d, treating as cron", triggerCode)
	}

	args := upload.Args{
		Flag:           flag,
		DCMFlag:        dcmFlag,
		UploadOnReboot: onReboot,
		Protocol:       protocol,
		HTTPLink:       argv[5],
		Trigger:        trigger,
		RRDFlag:        argv[7] == "1",
	}
	if args.RRDFlag {
		if len(argv) < 9 {
			return upload.Args{}, errors.New("RRD_FLAG set but no RRD_UPLOADLOG_FILE given")
		}
		args.RRDArchive = argv[8]
	}
	return args, nil
}

func execute(args upload.Args) int {
	err := config.SetupLogger(
		config.LoggerName("UPLOADSTB"),
		config.Dcm.GetString("log_level"),
		config.Dcm.GetString("upload_log_file"),
		config.Dcm.GetBool("log_to_console"),
	)
	if err != nil {
		log.Criticalf("Unable to setup logger: %s", err)
		return upload.ExitFailure
	}
	defer log.Flush()

	// client-only endpoint: parameters and events go to the peer socket
	handle := bus.NewHandle(
		config.Dcm.GetString("bus_socket")+".upload",
		config.Dcm.GetString("bus_peer_socket"),
	)
	emitter := bus.NewEmitter(handle)

	lock, err := upload.AcquireLock(config.Dcm.GetString("upload_lock_file"))
	if err != nil {
		if errors.Is(err, upload.ErrLockBusy) {
			log.Warn("Another upload is in progress")
			emitter.Maintenance(bus.MaintInProgress)
			return upload.ExitFailure
		}
		log.Errorf("Cannot take the upload lock: %v", err)
		return upload.ExitFailure
	}
	defer lock.Release()

	ctx, err := upload.InitContext(handle)
	if err != nil {
		log.Errorf("Cannot build the upload context: %v", err)
		emitter.Maintenance(bus.MaintError)
		return upload.ExitFailure
	}

	sess := &upload.Session{}
	return upload.NewEngine(ctx, emitter).Execute(sess, args)
}

func init() {
	UploadstbCmd.PersistentFlags().StringVarP(&confFilePath, "cfgpath", "c", "", "path to directory containing dcmd.yaml")
}
