package logger

import (
	"io"
)

// Logger is the sink for captured command output
type Logger interface {
	io.WriteCloser
}

// NewLogger creates a logger for the given log file. The special names
// /dev/stdout, /dev/stderr and /dev/null select the corresponding
// non-file logger on every platform.
func NewLogger(logFile string, maxBytes int64, backups int) Logger {
	switch logFile {
	case "/dev/stdout":
		return NewStdoutLogger()
	case "/dev/stderr":
		return NewStderrLogger()
	case "/dev/null", "":
		return NewNullLogger()
	}
	return NewFileLogger(logFile, maxBytes, backups)
}
