package logger

// NullLogger discards everything written to it
type NullLogger struct {
}

// NewNullLogger creates a NullLogger object
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

// Write discards the output
func (l *NullLogger) Write(p []byte) (int, error) {
	return len(p), nil
}

// Close closes the logger
func (l *NullLogger) Close() error {
	return nil
}
