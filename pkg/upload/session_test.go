// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		args Args
		want Strategy
	}{
		{
			name: "rrd wins over everything",
			ctx:  Context{DeviceType: "mediaclient", PrivacyDoNotShare: true},
			args: Args{RRDFlag: true, Trigger: TriggerOnDemand},
			want: StrategyRRD,
		},
		{
			name: "privacy abort on mediaclient",
			ctx:  Context{DeviceType: "mediaclient", PrivacyDoNotShare: true},
			args: Args{Trigger: TriggerOnDemand},
			want: StrategyPrivacyAbort,
		},
		{
			name: "privacy mode alone is not enough on other devices",
			ctx:  Context{DeviceType: "hybrid", PrivacyDoNotShare: true},
			args: Args{Trigger: TriggerOnDemand},
			want: StrategyOnDemand,
		},
		{
			name: "ondemand trigger",
			ctx:  Context{DeviceType: "hybrid"},
			args: Args{Trigger: TriggerOnDemand, DCMFlag: 1},
			want: StrategyOnDemand,
		},
		{
			name: "dcm flag cleared",
			ctx:  Context{DeviceType: "hybrid"},
			args: Args{Trigger: TriggerCron, DCMFlag: 0},
			want: StrategyNonDCM,
		},
		{
			name: "reboot",
			ctx:  Context{DeviceType: "hybrid"},
			args: Args{Trigger: TriggerCron, DCMFlag: 1, UploadOnReboot: 1, Flag: 1},
			want: StrategyReboot,
		},
		{
			name: "reboot needs both flags",
			ctx:  Context{DeviceType: "hybrid"},
			args: Args{Trigger: TriggerCron, DCMFlag: 1, UploadOnReboot: 1, Flag: 0},
			want: StrategyDCM,
		},
		{
			name: "default",
			ctx:  Context{DeviceType: "hybrid"},
			args: Args{Trigger: TriggerCron, DCMFlag: 1},
			want: StrategyDCM,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStrategy(&tt.ctx, tt.args))
		})
	}
}

func TestDecidePaths(t *testing.T) {
	tests := []struct {
		directBlocked  bool
		codebigBlocked bool
		primary        Path
		fallback       Path
	}{
		{false, false, PathDirect, PathCodeBig},
		{true, false, PathCodeBig, PathNone},
		{false, true, PathDirect, PathNone},
		{true, true, PathNone, PathNone},
	}

	for _, tt := range tests {
		plan := decidePaths(tt.directBlocked, tt.codebigBlocked)
		assert.Equal(t, tt.primary, plan.primary, "direct=%v codebig=%v", tt.directBlocked, tt.codebigBlocked)
		assert.Equal(t, tt.fallback, plan.fallback, "direct=%v codebig=%v", tt.directBlocked, tt.codebigBlocked)
	}
}

func TestParseTrigger(t *testing.T) {
	for code, want := range map[int]Trigger{
		1: TriggerCron,
		2: TriggerOnDemand,
		3: TriggerManual,
		4: TriggerReboot,
	} {
		got, ok := ParseTrigger(code)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	got, ok := ParseTrigger(99)
	assert.False(t, ok)
	assert.Equal(t, TriggerCron, got, "unknown codes degrade to cron")
}
