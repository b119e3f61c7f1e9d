// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"strings"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"go.uber.org/zap"
)

// FormatWithContextTags formats the string and prepends the context
// tags.
//
// Redaction markers are *not* inserted. The resulting
// string is generally unsafe for reporting.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	var buf strings.Builder
	formatTags(ctx, true /* brackets */, &buf)
	buf.WriteString(redact.Sprintf(format, args...).StripMarkers())
	return buf.String()
}

// formatTags appends the logging tags in ctx to buf. It returns false if the
// context carries no tags.
func formatTags(ctx context.Context, brackets bool, buf *strings.Builder) bool {
	tags := logtags.FromContext(ctx)
	if tags == nil || len(tags.Get()) == 0 {
		return false
	}
	if brackets {
		buf.WriteByte('[')
	}
	buf.WriteString(tags.String())
	if brackets {
		buf.WriteString("] ")
	}
	return true
}

// addStructured creates a structured log entry and hands it to the zap
// logger.
func addStructured(ctx context.Context, sev Severity, format string, args []interface{}) {
	logging.mu.Lock()
	logger := logging.mu.logger
	redactable := logging.mu.redactable
	logging.mu.Unlock()

	if ce := logger.Check(sev.zapLevel(), ""); ce != nil {
		msg := redact.Sprintf(format, args...)
		var text string
		if redactable {
			text = string(msg)
		} else {
			text = msg.StripMarkers()
		}
		var fields []zap.Field
		var tagBuf strings.Builder
		if formatTags(ctx, false /* brackets */, &tagBuf) {
			fields = append(fields, zap.String("tags", tagBuf.String()))
		}
		ce.Message = text
		ce.Write(fields...)
	}
}
