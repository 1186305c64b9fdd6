package core

import (
	"io"
	"log"
	"os"
)

// Logger interface for toolkit logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// DefaultLogger implements Logger on top of the standard library logger
type DefaultLogger struct {
	out *log.Logger
}

// NewDefaultLogger creates a logger writing to stderr with the given prefix, e.g. "[PrefabBrush] "
func NewDefaultLogger(prefix string) Logger {
	return &DefaultLogger{out: log.New(os.Stderr, prefix, log.LstdFlags)}
}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	dl.out.Printf(format, args...)
}

// NewDiscardLogger returns a logger that drops all output
func NewDiscardLogger() Logger {
	return &DefaultLogger{out: log.New(io.Discard, "", 0)}
}
