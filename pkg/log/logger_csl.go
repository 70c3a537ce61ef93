package log

import (
	"context"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// CslLogger writes leveled lines to the console. Debug lines are only
// written while verbose is on.
type CslLogger struct {
	out     *log.Logger
	verbose atomic.Bool
}

func NewCslLogger() (*CslLogger, error) {
	return NewCslLoggerTo(os.Stderr, false)
}

func NewCslLoggerTo(w io.Writer, verbose bool) (*CslLogger, error) {
	l := &CslLogger{out: log.New(w, "", log.LstdFlags)}
	l.verbose.Store(verbose)
	return l, nil
}

func (l *CslLogger) SetVerbose(verbose bool) {
	l.verbose.Store(verbose)
}

func (l *CslLogger) Verbose() bool {
	return l.verbose.Load()
}

func (l *CslLogger) printf(level, format string, args ...interface{}) {
	l.out.Printf("["+level+"] "+format, args...)
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.printf("INFO", format, args...)
}

func (l *CslLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	l.printf("ALERT", format, args...)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.printf("ERROR", format, args...)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.printf("WARN", format, args...)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	if !l.Verbose() {
		return
	}
	l.printf("DEBUG", format, args...)
}

func (l *CslLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.printf("CRITICAL", format, args...)
}

func (l *CslLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	l.printf("EMERGENCY", format, args...)
}

func (l *CslLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.printf("NOTICE", format, args...)
}
