// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package config

import (
	"fmt"
	"strings"

	"github.com/cihub/seelog"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

const logFileMaxSize = 10 * 1024 * 1024         // 10MB
const logDateFormat = "2006-01-02 15:04:05 MST" // see time.Format for format syntax

// buildCommonFormat returns the log format with the LOG.RDK.<NAME> module tag
// every RDK component carries.
func buildCommonFormat(loggerName LoggerName) string {
	return fmt.Sprintf("%%Date(%s) | LOG.RDK.%s | %%LEVEL | (%%RelFile:%%Line) | %%Msg%%n", logDateFormat, loggerName)
}

// SetupLogger sets up a logger with the named module tag, the given level and
// outputs. An empty logFile disables file logging.
func SetupLogger(loggerName LoggerName, logLevel, logFile string, logToConsole bool) error {
	seelogLogLevel := strings.ToLower(logLevel)
	if seelogLogLevel == "warning" { // Common gotcha when used to other logging frameworks
		seelogLogLevel = "warn"
	}

	configTemplate := fmt.Sprintf(`<seelog minlevel="%s">`, seelogLogLevel)

	configTemplate += `<outputs formatid="common">`
	if logToConsole {
		configTemplate += `<console />`
	}
	if logFile != "" {
		configTemplate += fmt.Sprintf(`<rollingfile type="size" filename="%s" maxsize="%d" maxrolls="1" />`, logFile, logFileMaxSize)
	}
	configTemplate += fmt.Sprintf(`</outputs>
	<formats>
		<format id="common" format="%s"/>
	</formats>
</seelog>`, buildCommonFormat(loggerName))

	l, err := seelog.LoggerFromConfigAsString(configTemplate)
	if err != nil {
		return err
	}

	seelog.ReplaceLogger(l) //nolint:errcheck
	log.SetupLogger(l, seelogLogLevel)
	return nil
}
