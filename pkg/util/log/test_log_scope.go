// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

// TestLogScope represents the lifetime of a logging output redirection for a
// test. Use Scope() to create one, and Close() to restore the previous
// logger.
type TestLogScope struct {
	restoreLogger    func()
	restoreVerbosity func()
}

// Scope routes all log output to the test's own log (t.Log) for the duration
// of the test, at the highest verbosity. The returned scope must be closed:
//
//	defer log.Scope(t).Close(t)
func Scope(t testing.TB) *TestLogScope {
	return &TestLogScope{
		restoreLogger:    SetLogger(zaptest.NewLogger(t)),
		restoreVerbosity: SetVerbosity(3),
	}
}

// Close restores the logger and verbosity that were active when the scope was
// created.
func (l *TestLogScope) Close(t testing.TB) {
	t.Helper()
	l.restoreVerbosity()
	l.restoreLogger()
}
