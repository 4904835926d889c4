package logger

import (
	"fmt"
	"os"
	"sync"
)

// FileLogger writes captured command output to a file, rotating it when
// it grows past maxBytes
type FileLogger struct {
	name     string
	maxBytes int64
	backups  int
	fileSize int64
	file     *os.File
	lock     sync.Mutex
}

// NewFileLogger creates a FileLogger object
func NewFileLogger(name string, maxBytes int64, backups int) *FileLogger {
	logger := &FileLogger{
		name:     name,
		maxBytes: maxBytes,
		backups:  backups,
	}
	logger.openFile(false)
	return logger
}

// open the file and truncate it if trunc is true
func (l *FileLogger) openFile(trunc bool) error {
	if l.file != nil {
		l.file.Close()
	}
	var err error
	fileInfo, err := os.Stat(l.name)

	if trunc || err != nil {
		l.file, err = os.Create(l.name)
		l.fileSize = 0
	} else {
		l.fileSize = fileInfo.Size()
		l.file, err = os.OpenFile(l.name, os.O_RDWR|os.O_APPEND, 0666)
	}
	return err
}

// move the backup files up and make room for a fresh one
func (l *FileLogger) backupFiles() {
	for i := l.backups - 1; i > 0; i-- {
		src := fmt.Sprintf("%s.%d", l.name, i)
		dest := fmt.Sprintf("%s.%d", l.name, i+1)
		if _, err := os.Stat(src); err == nil {
			os.Rename(src, dest)
		}
	}
	dest := fmt.Sprintf("%s.1", l.name)
	os.Rename(l.name, dest)
}

// Write writes the output to the log file, rotating if needed
func (l *FileLogger) Write(p []byte) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	n, err := l.file.Write(p)
	if err != nil {
		return n, err
	}
	l.fileSize += int64(n)
	if l.maxBytes > 0 && l.fileSize >= l.maxBytes {
		fileInfo, errStat := os.Stat(l.name)
		if errStat == nil {
			l.fileSize = fileInfo.Size()
		}
		if l.fileSize >= l.maxBytes {
			l.Close()
			if l.backups > 0 {
				l.backupFiles()
			}
			l.openFile(true)
		}
	}
	return n, err
}

// Close closes the log file
func (l *FileLogger) Close() error {
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
