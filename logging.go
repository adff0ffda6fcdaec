package xbrl

import (
	"io"

	"github.com/sirupsen/logrus"
)

// logger is the package logger. It stays quiet by default; callers who want
// resolution and period-selection diagnostics install their own logger via
// SetLogger, or set an output and level on the one returned by Logger.
var logger = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetLogger replaces the package logger. Useful for routing diagnostics into
// an application's existing logrus instance.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger = l
	}
}

// Logger returns the current package logger.
func Logger() *logrus.Logger { return logger }
