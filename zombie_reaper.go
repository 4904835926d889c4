// +build !windows

package main

import (
	reaper "github.com/ochinchina/go-reaper"
)

// ReapZombie reap the zombie child processes left behind by the
// commands in watch mode
func ReapZombie() {
	go reaper.Reap()
}
