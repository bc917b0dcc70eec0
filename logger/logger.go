// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logger configures the process-wide zap logger for CI runs.
// Output is human-readable console text by default and JSON when
// UNSTRUCTURED_LOGS=false; debug level follows the runner's debug logging flag.
package logger

import (
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stacklok/registry-oidc-auth/env"
)

// Environment variables consulted when building the logger.
const (
	UnstructuredLogsEnv = "UNSTRUCTURED_LOGS"
	RunnerDebugEnv      = "RUNNER_DEBUG"
	StepDebugEnv        = "ACTIONS_STEP_DEBUG"
)

// Debug logs a message at debug level using the singleton logger.
func Debug(msg string) {
	zap.S().Debug(msg)
}

// Debugf logs a message at debug level using the singleton logger.
func Debugf(msg string, args ...any) {
	zap.S().Debugf(msg, args...)
}

// Info logs a message at info level using the singleton logger.
func Info(msg string) {
	zap.S().Info(msg)
}

// Infof logs a message at info level using the singleton logger.
func Infof(msg string, args ...any) {
	zap.S().Infof(msg, args...)
}

// Warnf logs a message at warning level using the singleton logger.
func Warnf(msg string, args ...any) {
	zap.S().Warnf(msg, args...)
}

// Errorf logs a message at error level using the singleton logger.
func Errorf(msg string, args ...any) {
	zap.S().Errorf(msg, args...)
}

// DebugProvider reports whether debug logging is enabled.
type DebugProvider interface {
	IsDebug() bool
}

// RunnerDebugProvider enables debug logging when the job was re-run with
// debug logging, which sets RUNNER_DEBUG=1, or when ACTIONS_STEP_DEBUG is true.
type RunnerDebugProvider struct {
	env env.Reader
}

// NewRunnerDebugProvider returns a RunnerDebugProvider reading from envReader.
func NewRunnerDebugProvider(envReader env.Reader) *RunnerDebugProvider {
	return &RunnerDebugProvider{env: envReader}
}

// IsDebug implements DebugProvider.
func (p *RunnerDebugProvider) IsDebug() bool {
	if p.env.Getenv(RunnerDebugEnv) == "1" {
		return true
	}
	debug, err := strconv.ParseBool(p.env.Getenv(StepDebugEnv))
	return err == nil && debug
}

// Initialize builds the logger from the process environment, installs it as
// the zap global and returns it.
func Initialize() *zap.Logger {
	reader := &env.OSReader{}
	return InitializeWithOptions(reader, NewRunnerDebugProvider(reader))
}

// InitializeWithOptions builds the logger with a custom environment reader and
// debug provider, installs it as the zap global and returns it.
func InitializeWithOptions(envReader env.Reader, debugProvider DebugProvider) *zap.Logger {
	var config zap.Config
	if unstructuredLogsWithEnv(envReader) {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.Kitchen)
		// Workflow commands go to stdout; keep log lines off it.
		config.OutputPaths = []string{"stderr"}
		config.DisableCaller = true
		// Failed attempts attach their own stack field.
		config.DisableStacktrace = true
	} else {
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{"stderr"}
		config.DisableStacktrace = true
	}

	if debugProvider.IsDebug() {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger := zap.Must(config.Build())
	zap.ReplaceGlobals(logger)
	return logger
}

func unstructuredLogsWithEnv(envReader env.Reader) bool {
	unstructuredLogs, err := strconv.ParseBool(envReader.Getenv(UnstructuredLogsEnv))
	if err != nil {
		// unset or unparsable
		return true
	}
	return unstructuredLogs
}
