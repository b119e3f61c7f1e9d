// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log is the context-aware logging facade used throughout the
// optimizer. Messages carry the logging tags attached to the context (see
// github.com/cockroachdb/logtags) and are emitted through a zap logger.
package log

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Severity identifies the sort of log: info, warning etc.
type Severity int8

// Severity levels.
const (
	Severity_INFO Severity = iota
	Severity_WARNING
	Severity_ERROR
)

func (s Severity) String() string {
	switch s {
	case Severity_INFO:
		return "INFO"
	case Severity_WARNING:
		return "WARNING"
	case Severity_ERROR:
		return "ERROR"
	}
	return "UNKNOWN"
}

// SafeValue implements the redact.SafeValue interface.
func (s Severity) SafeValue() {}

func (s Severity) zapLevel() zapcore.Level {
	switch s {
	case Severity_WARNING:
		return zapcore.WarnLevel
	case Severity_ERROR:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

var logging struct {
	mu struct {
		sync.Mutex
		logger *zap.Logger
		// redactable indicates whether redaction markers are kept in the
		// emitted messages.
		redactable bool
	}
	verbosity atomic.Int32
}

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		logger = zap.NewNop()
	}
	logging.mu.logger = logger
}

// SetLogger installs the zap logger that receives all log entries and returns
// a function that restores the previous one.
func SetLogger(l *zap.Logger) (restore func()) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	prev := logging.mu.logger
	logging.mu.logger = l.WithOptions(zap.AddCallerSkip(2))
	return func() {
		logging.mu.Lock()
		defer logging.mu.Unlock()
		logging.mu.logger = prev
	}
}

// SetRedactable controls whether redaction markers are kept in log messages.
func SetRedactable(redactable bool) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	logging.mu.redactable = redactable
}

// SetVerbosity sets the global verbosity level used by V and VEventf, and
// returns a function that restores the previous level.
func SetVerbosity(level int32) (restore func()) {
	prev := logging.verbosity.Swap(level)
	return func() { logging.verbosity.Store(prev) }
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level int32) bool {
	return logging.verbosity.Load() >= level
}

// Sync flushes any buffered log entries.
func Sync() {
	logging.mu.Lock()
	l := logging.mu.logger
	logging.mu.Unlock()
	_ = l.Sync()
}

// Infof logs to the INFO log.
// It extracts log tags from the context and logs them along with the given
// message. Arguments are handled in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, Severity_INFO, format, args)
}

// Warningf logs to the WARNING and INFO logs.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, Severity_WARNING, format, args)
}

// Errorf logs to the ERROR, WARNING, and INFO logs.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, Severity_ERROR, format, args)
}

// VEventf logs to the INFO log at the given verbosity level. Nothing is
// emitted when the verbosity is lower than level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if !V(level) {
		return
	}
	addStructured(ctx, Severity_INFO, format, args)
}
