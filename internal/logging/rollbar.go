package logging

import (
	"errors"

	"github.com/rollbar/rollbar-go"
)

// RollbarOptions configures the Rollbar notifier.
type RollbarOptions struct {
	Token       string
	Environment string
	ServerHost  string
	CodeVersion string
}

// RollbarLogger forwards warnings and errors to Rollbar and mirrors every line to std.
type RollbarLogger struct {
	std *StdLogger
}

var _ Logger = (*RollbarLogger)(nil)

func NewRollbar(std *StdLogger, opts RollbarOptions) *RollbarLogger {
	rollbar.SetToken(opts.Token)
	rollbar.SetEnvironment(opts.Environment)
	rollbar.SetServerHost(opts.ServerHost)
	rollbar.SetCodeVersion(opts.CodeVersion)
	rollbar.SetEnabled(opts.Token != "")
	return &RollbarLogger{std: std}
}

func (l *RollbarLogger) Info(format string, args ...interface{}) {
	l.std.Info(format, args...)
}

func (l *RollbarLogger) Warn(format string, args ...interface{}) {
	rollbar.Warning(sprintf(format, args))
	l.std.Warn(format, args...)
}

func (l *RollbarLogger) Error(format string, args ...interface{}) {
	msg := sprintf(format, args)
	rollbar.Error(errors.New(msg))
	l.std.Error(format, args...)
}

// Close flushes queued Rollbar items.
func (l *RollbarLogger) Close() {
	rollbar.Close()
}
