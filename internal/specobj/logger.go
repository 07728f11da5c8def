package specobj

import (
	"io"
	"log"
)

// LogWriters holds the io.Writers for each logging stream.
type LogWriters struct {
	Ops  io.Writer
	Diag io.Writer
}

// Logger is the diagnostics sink handed to enumeration and configuration
// encoding. A nil *Logger, or a nil stream, discards output.
type Logger struct {
	ops  *log.Logger
	diag *log.Logger
}

// NewLogger builds a Logger. Pass nil for any writer to disable that stream.
func NewLogger(w LogWriters) *Logger {
	return &Logger{
		ops:  newStream("[specobj] ", w.Ops),
		diag: newStream("[specobj] ", w.Diag),
	}
}

// newStream creates a *log.Logger for a given writer, or returns nil if w is nil.
func newStream(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs to the ops stream (warnings the user should act on).
func (l *Logger) Opsf(format string, args ...interface{}) {
	if l == nil || l.ops == nil {
		return
	}
	l.ops.Printf(format, args...)
}

// Diagf logs to the diag stream (per-slit and per-object detail).
func (l *Logger) Diagf(format string, args ...interface{}) {
	if l == nil || l.diag == nil {
		return
	}
	l.diag.Printf(format, args...)
}
