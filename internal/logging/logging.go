// Package logging is a thin wrapper over the stdlib log package, grounded
// on the teacher's direct log.Printf calls with a "[component]" prefix
// convention (client/transport.go, client/testuser.go). It exists only so
// internal/reactor can be unit-tested without stdout noise — per spec.md
// §1, the logging sink itself is out of scope and this is its whole
// interface.
package logging

import (
	"io"
	"log"
)

// Logger is the minimal interface the core depends on.
type Logger interface {
	Printf(format string, args ...any)
}

// New returns a Logger that writes to out with the given "[component]"-style
// prefix, matching the teacher's tag convention.
func New(out io.Writer, prefix string) Logger {
	return &stdLogger{l: log.New(out, prefix+" ", log.LstdFlags)}
}

type stdLogger struct{ l *log.Logger }

func (s *stdLogger) Printf(format string, args ...any) { s.l.Printf(format, args...) }

// Discard is a Logger that drops everything, used by tests that don't care
// about log output.
var Discard Logger = discardLogger{}

type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}
