package logger

import (
	"sync"
)

// CompositeLogger fans writes out to a set of loggers
type CompositeLogger struct {
	lock    sync.Mutex
	loggers []Logger
}

// NewCompositeLogger creates a CompositeLogger object
func NewCompositeLogger(loggers []Logger) *CompositeLogger {
	return &CompositeLogger{loggers: loggers}
}

// AddLogger adds one more logger to the composite
func (l *CompositeLogger) AddLogger(logger Logger) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.loggers = append(l.loggers, logger)
}

// Write writes the output to all loggers. The first error is returned
// but every logger still gets the write.
func (l *CompositeLogger) Write(p []byte) (n int, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for i, logger := range l.loggers {
		if i == 0 {
			n, err = logger.Write(p)
		} else {
			logger.Write(p)
		}
	}
	return
}

// Close closes all loggers
func (l *CompositeLogger) Close() (err error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for i, logger := range l.loggers {
		if i == 0 {
			err = logger.Close()
		} else {
			logger.Close()
		}
	}
	return
}
