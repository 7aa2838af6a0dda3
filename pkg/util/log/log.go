// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package log

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cihub/seelog"
)

var (
	logger *DcmLogger

	// This buffer holds log lines sent to the logger before its
	// initialization. Even if setting up the logger is one of the first
	// things the daemon does, we still load the configuration and the
	// platform properties before that.
	//
	// This buffer should be very short lived.
	logsBuffer           = []func(){}
	bufferLogsBeforeInit = true
	bufferMutex          sync.Mutex
	defaultStackDepth    = 2
)

// DcmLogger is a wrapper structure for seelog
type DcmLogger struct {
	inner seelog.LoggerInterface
	level seelog.LogLevel
	l     sync.RWMutex
}

// SetupLogger configures the logger singleton with a seelog interface
func SetupLogger(l seelog.LoggerInterface, level string) {
	logger = &DcmLogger{
		inner: l,
	}

	lvl, ok := seelog.LogLevelFromString(strings.ToLower(level))
	if !ok {
		lvl = seelog.InfoLvl
	}
	logger.level = lvl

	// The exported functions below add one frame between the caller and
	// seelog, which the stack depth accounts for.
	logger.inner.SetAdditionalStackDepth(defaultStackDepth) //nolint:errcheck

	// Flushing logs since the logger is now initialized
	bufferMutex.Lock()
	bufferLogsBeforeInit = false
	defer bufferMutex.Unlock()
	for _, logLine := range logsBuffer {
		logLine()
	}
	logsBuffer = []func(){}
}

func addLogToBuffer(logHandle func()) {
	bufferMutex.Lock()
	defer bufferMutex.Unlock()

	logsBuffer = append(logsBuffer, logHandle)
}

func (sw *DcmLogger) shouldLog(level seelog.LogLevel) bool {
	sw.l.RLock()
	shouldLog := level >= sw.level
	sw.l.RUnlock()

	return shouldLog
}

// ChangeLogLevel changes the current log level, valid levels are trace, debug,
// info, warn, error and critical.
func ChangeLogLevel(level string) error {
	if logger == nil || logger.inner == nil {
		return errors.New("cannot change loglevel: logger not initialized")
	}

	lvl, ok := seelog.LogLevelFromString(strings.ToLower(level))
	if !ok {
		return errors.New("bad log level")
	}

	logger.l.Lock()
	defer logger.l.Unlock()
	logger.level = lvl
	return nil
}

// GetLogLevel returns the current log level
func GetLogLevel() (seelog.LogLevel, error) {
	if logger == nil || logger.inner == nil {
		return seelog.InfoLvl, errors.New("logger not initialized")
	}

	logger.l.RLock()
	defer logger.l.RUnlock()
	return logger.level, nil
}

func (sw *DcmLogger) trace(s string) {
	sw.l.RLock()
	defer sw.l.RUnlock()
	sw.inner.Trace(s)
}

func (sw *DcmLogger) debug(s string) {
	sw.l.RLock()
	defer sw.l.RUnlock()
	sw.inner.Debug(s)
}

func (sw *DcmLogger) info(s string) {
	sw.l.RLock()
	defer sw.l.RUnlock()
	sw.inner.Info(s)
}

func (sw *DcmLogger) warn(s string) error {
	sw.l.RLock()
	defer sw.l.RUnlock()
	return sw.inner.Warn(s)
}

func (sw *DcmLogger) error(s string) error {
	sw.l.RLock()
	defer sw.l.RUnlock()
	return sw.inner.Error(s)
}

func (sw *DcmLogger) critical(s string) error {
	sw.l.RLock()
	defer sw.l.RUnlock()
	return sw.inner.Critical(s)
}

// Trace logs at the trace level
func Trace(v ...interface{}) {
	if logger != nil && logger.inner != nil && logger.shouldLog(seelog.TraceLvl) {
		logger.trace(fmt.Sprint(v...))
	} else if bufferLogsBeforeInit && (logger == nil || logger.inner == nil) {
		addLogToBuffer(func() { Trace(v...) })
	}
}

// Tracef logs with format at the trace level
func Tracef(format string, params ...interface{}) {
	Trace(fmt.Sprintf(format, params...))
}

// Debug logs at the debug level
func Debug(v ...interface{}) {
	if logger != nil && logger.inner != nil && logger.shouldLog(seelog.DebugLvl) {
		logger.debug(fmt.Sprint(v...))
	} else if bufferLogsBeforeInit && (logger == nil || logger.inner == nil) {
		addLogToBuffer(func() { Debug(v...) })
	}
}

// Debugf logs with format at the debug level
func Debugf(format string, params ...interface{}) {
	Debug(fmt.Sprintf(format, params...))
}

// Info logs at the info level
func Info(v ...interface{}) {
	if logger != nil && logger.inner != nil && logger.shouldLog(seelog.InfoLvl) {
		logger.info(fmt.Sprint(v...))
	} else if bufferLogsBeforeInit && (logger == nil || logger.inner == nil) {
		addLogToBuffer(func() { Info(v...) })
	}
}

// Infof logs with format at the info level
func Infof(format string, params ...interface{}) {
	Info(fmt.Sprintf(format, params...))
}

// Warn logs at the warn level and returns an error containing the formated log message
func Warn(v ...interface{}) error {
	msg := fmt.Sprint(v...)
	if logger != nil && logger.inner != nil && logger.shouldLog(seelog.WarnLvl) {
		return logger.warn(msg)
	} else if bufferLogsBeforeInit && (logger == nil || logger.inner == nil) {
		addLogToBuffer(func() { Warn(v...) }) //nolint:errcheck
	}
	return errors.New(msg)
}

// Warnf logs with format at the warn level and returns an error containing the formated log message
func Warnf(format string, params ...interface{}) error {
	return Warn(fmt.Sprintf(format, params...))
}

// Error logs at the error level and returns an error containing the formated log message
func Error(v ...interface{}) error {
	msg := fmt.Sprint(v...)
	if logger != nil && logger.inner != nil && logger.shouldLog(seelog.ErrorLvl) {
		return logger.error(msg)
	} else if bufferLogsBeforeInit && (logger == nil || logger.inner == nil) {
		addLogToBuffer(func() { Error(v...) }) //nolint:errcheck
	}
	return errors.New(msg)
}

// Errorf logs with format at the error level and returns an error containing the formated log message
func Errorf(format string, params ...interface{}) error {
	return Error(fmt.Sprintf(format, params...))
}

// Critical logs at the critical level and returns an error containing the formated log message
func Critical(v ...interface{}) error {
	msg := fmt.Sprint(v...)
	if logger != nil && logger.inner != nil && logger.shouldLog(seelog.CriticalLvl) {
		return logger.critical(msg)
	} else if bufferLogsBeforeInit && (logger == nil || logger.inner == nil) {
		addLogToBuffer(func() { Critical(v...) }) //nolint:errcheck
	}
	return errors.New(msg)
}

// Criticalf logs with format at the critical level and returns an error containing the formated log message
func Criticalf(format string, params ...interface{}) error {
	return Critical(fmt.Sprintf(format, params...))
}

// Flush flushes the underlying inner log
func Flush() {
	if logger != nil && logger.inner != nil {
		logger.inner.Flush()
	}
}

// ReplaceLogger allows replacing the internal logger, returns the old logger
func ReplaceLogger(l seelog.LoggerInterface) seelog.LoggerInterface {
	if logger == nil || logger.inner == nil {
		return nil
	}

	logger.l.Lock()
	defer logger.l.Unlock()

	old := logger.inner
	logger.inner = l
	return old
}
