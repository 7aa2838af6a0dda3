// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import "fmt"

// Trigger identifies what started the engine.
type Trigger int

const (
	TriggerCron Trigger = iota + 1
	TriggerOnDemand
	TriggerManual
	TriggerReboot
)

func (t Trigger) String() string {
	switch t {
	case TriggerCron:
		return "cron"
	case TriggerOnDemand:
		return "ondemand"
	case TriggerManual:
		return "manual"
	case TriggerReboot:
		return "reboot"
	}
	return fmt.Sprintf("trigger(%d)", int(t))
}

// ParseTrigger maps the numeric CLI trigger code to a Trigger. Unknown codes
// degrade to cron with a warning at the call site.
func ParseTrigger(code int) (Trigger, bool) {
	switch code {
	case 1:
		return TriggerCron, true
	case 2:
		return TriggerOnDemand, true
	case 3:
		return TriggerManual, true
	case 4:
		return TriggerReboot, true
	}
	return TriggerCron, false
}

// Strategy is the outcome of the selection tree run at the start of a session.
type Strategy int

const (
	StrategyDCM Strategy = iota
	StrategyRRD
	StrategyPrivacyAbort
	StrategyOnDemand
	StrategyNonDCM
	StrategyReboot
)

func (s Strategy) String() string {
	switch s {
	case StrategyRRD:
		return "RRD"
	case StrategyPrivacyAbort:
		return "PRIVACY_ABORT"
	case StrategyOnDemand:
		return "ONDEMAND"
	case StrategyNonDCM:
		return "NON_DCM"
	case StrategyReboot:
		return "REBOOT"
	}
	return "DCM"
}

// Path is one of the two upload transports.
type Path int

const (
	PathNone Path = iota
	PathDirect
	PathCodeBig
)

func (p Path) String() string {
	switch p {
	case PathDirect:
		return "DIRECT"
	case PathCodeBig:
		return "CODEBIG"
	}
	return "NONE"
}

// Args are the engine inputs taken from the command line.
type Args struct {
	Flag           int
	DCMFlag        int
	UploadOnReboot int
	Protocol       string
	HTTPLink       string
	Trigger        Trigger
	RRDFlag        bool
	RRDArchive     string
}

// Session is the per-upload record. It lives for exactly one Execute call.
type Session struct {
	Strategy    Strategy
	Trigger     Trigger
	ArchiveFile string

	Primary  Path
	Fallback Path

	DirectAttempts  int
	CodeBigAttempts int
	UsedFallback    bool
	Success         bool
}

// SelectStrategy runs the decision tree over the args and device state.
// First match wins.
func SelectStrategy(ctx *Context, args Args) Strategy {
	switch {
	case args.RRDFlag:
		return StrategyRRD
	case ctx.DeviceType == "mediaclient" && ctx.PrivacyDoNotShare:
		return StrategyPrivacyAbort
	case args.Trigger == TriggerOnDemand:
		return StrategyOnDemand
	case args.DCMFlag == 0:
		return StrategyNonDCM
	case args.UploadOnReboot == 1 && args.Flag == 1:
		return StrategyReboot
	}
	return StrategyDCM
}

type pathPlan struct {
	primary  Path
	fallback Path
}

// decidePaths is a total function of the two block bits.
func decidePaths(directBlocked, codebigBlocked bool) pathPlan {
	switch {
	case !directBlocked && !codebigBlocked:
		return pathPlan{PathDirect, PathCodeBig}
	case directBlocked && !codebigBlocked:
		return pathPlan{PathCodeBig, PathNone}
	case !directBlocked && codebigBlocked:
		return pathPlan{PathDirect, PathNone}
	}
	return pathPlan{PathNone, PathNone}
}
