package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ochinchina/gotox/config"
	"github.com/ochinchina/gotox/runner"
)

func TestStatusServerStartStop(t *testing.T) {
	dir, err := ioutil.TempDir("", "gotox")
	if err != nil {
		t.Fatal("fail to create temp dir")
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	file := filepath.Join(dir, "gotox.ini")
	if err := ioutil.WriteFile(file, []byte("[testenv:unit]\ncommands=true"), 0644); err != nil {
		t.Fatal("fail to write configuration file")
	}
	cfg := config.NewConfig(file)
	if _, err := cfg.Load(); err != nil {
		t.Fatalf("fail to load configuration: %v", err)
	}

	s := NewStatusServer(runner.NewRunner(cfg, nil, false), func(string) {})
	go s.Start("127.0.0.1:0")
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	// stopping again after the listener is gone is a no-op
	s.Stop()
}
