// Package obs holds the ambient logging and tracing setup shared by every
// component: a stdlib logger with a per-call prefix, and an OpenTelemetry
// tracer wired to a stdout exporter.
package obs

import (
	"fmt"
	"log"
	"os"
)

// Logger wraps the stdlib logger with a component/call prefix, matching the
// "[Component] message" convention used throughout the bridge.
type Logger struct {
	*log.Logger
}

// NewLogger returns a process-wide logger writing to stderr with a fixed
// component tag, e.g. "[mediator]".
func NewLogger(component string) *Logger {
	return &Logger{Logger: log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)}
}

// WithCall returns a derived logger tagging every line with the call id.
func (l *Logger) WithCall(callID string) *Logger {
	prefix := l.Logger.Prefix() + fmt.Sprintf("call=%s ", callID)
	return &Logger{Logger: log.New(l.Logger.Writer(), prefix, log.LstdFlags)}
}
