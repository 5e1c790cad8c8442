// Package log provides the structured logger used across the inspectors.
//
// It mirrors the call shape syft's own internal/log exposes at the call
// sites visible in syft/file/cataloger/executable/cataloger.go:
// WithFields(k, v, ...).Warnf(...), Debugf(...), Tracef(...).
package log

import (
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// SetLevel adjusts the minimum severity emitted by the package logger.
func SetLevel(level logrus.Level) {
	logger.SetLevel(level)
}

// Fields is a chainable logger carrying structured key/value context.
type Fields struct {
	entry *logrus.Entry
}

// WithFields attaches alternating key/value pairs to subsequent log calls,
// e.g. WithFields("error", err, "path", p).Warnf("unable to parse %q", p).
func WithFields(kv ...interface{}) Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return Fields{entry: logger.WithFields(fields)}
}

func (f Fields) Warnf(format string, args ...interface{})  { f.entry.Warnf(format, args...) }
func (f Fields) Debugf(format string, args ...interface{}) { f.entry.Debugf(format, args...) }
func (f Fields) Tracef(format string, args ...interface{}) { f.entry.Tracef(format, args...) }

func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Tracef(format string, args ...interface{}) { logger.Tracef(format, args...) }
