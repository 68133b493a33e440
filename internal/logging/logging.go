// Package logging provides the Logger used by the services. The default implementation
// writes prefixed lines through the standard library logger; NewRollbar additionally
// reports to Rollbar.
package logging

import (
	"fmt"
	"io"
	"log"
)

// Logger is injected into every long-lived service.
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// StdLogger writes "INFO:", "WARN:" and "ERROR:" prefixed lines.
type StdLogger struct {
	std *log.Logger
}

var _ Logger = (*StdLogger)(nil)

func NewStd(std *log.Logger) *StdLogger {
	if std == nil {
		std = log.Default()
	}
	return &StdLogger{std: std}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *StdLogger {
	return &StdLogger{std: log.New(io.Discard, "", 0)}
}

func (l *StdLogger) Info(format string, args ...interface{}) {
	l.std.Printf("INFO: "+format, args...)
}

func (l *StdLogger) Warn(format string, args ...interface{}) {
	l.std.Printf("WARN: "+format, args...)
}

func (l *StdLogger) Error(format string, args ...interface{}) {
	l.std.Printf("ERROR: "+format, args...)
}

func sprintf(format string, args []interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
