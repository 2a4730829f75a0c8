// Package log is the process-wide leveled logger. It wraps logrus so every
// package logs through the same formatter and level, writing to stderr to
// keep stdout clean for JSON output and the MCP stdio transport.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured key/value pairs attached to a log line.
type Fields = logrus.Fields

var logger = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		TimestampFormat:  "15:04:05.000",
		QuoteEmptyFields: true,
	})
	return l
}

// SetOutput redirects log output. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logger.SetOutput(w)
}

// SetLevel sets the global level from a name (debug, info, warn, error).
// Unknown names leave the level unchanged and return false.
func SetLevel(name string) bool {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return false
	}
	logger.SetLevel(lvl)
	return true
}

// Level returns the current level name.
func Level() string {
	return logger.GetLevel().String()
}

// With returns an entry carrying the given fields.
func With(fields Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// Debug logs a debug message.
func Debug(format string, args ...any) {
	logger.Debugf(format, args...)
}

// Info logs an info message.
func Info(format string, args ...any) {
	logger.Infof(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	logger.Warnf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...any) {
	logger.Errorf(format, args...)
}
