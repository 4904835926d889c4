package logger

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestFileLoggerWrite(t *testing.T) {
	dir, err := ioutil.TempDir("", "logger")
	if err != nil {
		t.Fatal("fail to create temp dir")
	}
	defer os.RemoveAll(dir)

	logFile := filepath.Join(dir, "test.log")
	logger := NewFileLogger(logFile, 1024, 1)
	logger.Write([]byte("hello"))
	logger.Close()

	b, err := ioutil.ReadFile(logFile)
	if err != nil || string(b) != "hello" {
		t.Error("fail to write log to file")
	}
}

func TestFileLoggerRotate(t *testing.T) {
	dir, err := ioutil.TempDir("", "logger")
	if err != nil {
		t.Fatal("fail to create temp dir")
	}
	defer os.RemoveAll(dir)

	logFile := filepath.Join(dir, "test.log")
	logger := NewFileLogger(logFile, 10, 2)
	for i := 0; i < 10; i++ {
		logger.Write([]byte("0123456789"))
	}
	logger.Close()

	if _, err := os.Stat(fmt.Sprintf("%s.1", logFile)); err != nil {
		t.Error("fail to rotate the log file")
	}
}

func TestCompositeLogger(t *testing.T) {
	dir, err := ioutil.TempDir("", "logger")
	if err != nil {
		t.Fatal("fail to create temp dir")
	}
	defer os.RemoveAll(dir)

	f1 := filepath.Join(dir, "a.log")
	f2 := filepath.Join(dir, "b.log")
	logger := NewCompositeLogger([]Logger{NewFileLogger(f1, 1024, 1), NewFileLogger(f2, 1024, 1)})
	logger.Write([]byte("data"))
	logger.Close()

	for _, f := range []string{f1, f2} {
		b, err := ioutil.ReadFile(f)
		if err != nil || string(b) != "data" {
			t.Error("fail to write log to all composite targets")
		}
	}
}

func TestNewLoggerSpecialNames(t *testing.T) {
	if _, ok := NewLogger("/dev/null", 0, 0).(*NullLogger); !ok {
		t.Error("fail to create null logger")
	}
	if _, ok := NewLogger("/dev/stdout", 0, 0).(*StdLogger); !ok {
		t.Error("fail to create stdout logger")
	}
}
