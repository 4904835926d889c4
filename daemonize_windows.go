// +build windows

package main

import (
	log "github.com/sirupsen/logrus"
)

// Deamonize is not supported on windows, the process keeps running in
// the foreground
func Deamonize(proc func()) {
	log.Warn("daemon mode is not supported on windows")
	proc()
}
