package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// With returns a logger writing to the same sinks under a nested prefix.
	With(component string) Logger
}

type debugFlag struct {
	mu      sync.Mutex
	enabled bool
}

func (f *debugFlag) get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *debugFlag) set(enabled bool) {
	f.mu.Lock()
	f.enabled = enabled
	f.mu.Unlock()
}

type DefaultLogger struct {
	debug  *debugFlag
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewWriterLogger(prefix, debug, os.Stdout, os.Stderr)
}

// NewWriterLogger is NewDefaultLogger with explicit sinks.
func NewWriterLogger(prefix string, debug bool, stdout, stderr io.Writer) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  &debugFlag{enabled: debug},
		prefix: prefix,
		out:    log.New(stdout, "", flags),
		err:    log.New(stderr, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	return l.debug.get()
}

// SetDebug toggles debug output for this logger and every logger derived with With.
func (l *DefaultLogger) SetDebug(enabled bool) {
	l.debug.set(enabled)
}

func (l *DefaultLogger) With(component string) Logger {
	prefix := component
	if l.prefix != "" {
		prefix = l.prefix + "/" + component
	}
	return &DefaultLogger{
		debug:  l.debug,
		prefix: prefix,
		out:    l.out,
		err:    l.err,
	}
}

func (l *DefaultLogger) prefixf(level string, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.debug.get() {
		return
	}
	l.out.Print(l.prefixf("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.prefixf("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.prefixf("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.prefixf("ERROR", format, args...))
}

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
func (n *nopLogger) With(component string) Logger      { return n }

// OrNop never returns nil, including a nil *DefaultLogger.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	if d, ok := l.(*DefaultLogger); ok && d == nil {
		return NewNopLogger()
	}
	return l
}
