package logger

import (
	"os"
)

// StdLogger writes captured output to the supervising terminal
type StdLogger struct {
	file *os.File
}

// NewStdoutLogger creates a logger backed by stdout
func NewStdoutLogger() *StdLogger {
	return &StdLogger{file: os.Stdout}
}

// NewStderrLogger creates a logger backed by stderr
func NewStderrLogger() *StdLogger {
	return &StdLogger{file: os.Stderr}
}

// Write writes the output to the terminal
func (l *StdLogger) Write(p []byte) (int, error) {
	return l.file.Write(p)
}

// Close is a no-op, stdout/stderr are not ours to close
func (l *StdLogger) Close() error {
	return nil
}
