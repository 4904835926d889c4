package main

import (
	"os"
	"strings"

	"github.com/ochinchina/gotox/runner"
	log "github.com/sirupsen/logrus"
)

// RunWatch runs the environments once, then keeps rerunning them on
// file changes, on the cron schedule and on run triggers from the
// status server. It only returns on a fatal setup error.
func RunWatch(r *runner.Runner, names []string, parallel int) int {
	ReapZombie()

	report := r.RunAll(names, parallel)
	runner.PrintSummary(report, os.Stdout)

	// a pending trigger is enough, further ones are folded into it
	triggers := make(chan string, 1)
	trigger := func(reason string) {
		select {
		case triggers <- reason:
		default:
		}
	}

	watcher := runner.NewWatcher(trigger)
	pattern := "*"
	cronSpec := ""
	listenAddr := ""
	if global, ok := r.Config().GetGlobal(); ok {
		pattern = global.GetString("watch_files", pattern)
		cronSpec = global.GetString("cron", "")
		listenAddr = global.GetString("http_server", "")
	}
	watcher.AddPath(r.Config().GetConfigFileDir(), pattern)
	if len(cronSpec) > 0 {
		if err := watcher.AddSchedule(cronSpec); err != nil {
			log.WithFields(log.Fields{"cron": cronSpec, log.ErrorKey: err}).Error("fail to add the cron schedule")
			return 2
		}
	}
	watcher.Start()
	defer watcher.Stop()

	if len(listenAddr) > 0 {
		server := NewStatusServer(r, func(env string) {
			trigger("env:" + env)
		})
		go server.Start(listenAddr)
		defer server.Stop()
	}

	for reason := range triggers {
		log.WithFields(log.Fields{"reason": reason}).Info("rerun the environments")
		if err := r.Reload(); err != nil {
			log.WithFields(log.Fields{log.ErrorKey: err}).Error("fail to reload the configuration, keep the old one")
		}
		if strings.HasPrefix(reason, "env:") {
			name := reason[len("env:"):]
			if _, err := r.RunEnv(name); err != nil {
				log.WithFields(log.Fields{"env": name, log.ErrorKey: err}).Error("fail to run the environment")
			}
			continue
		}
		names, err := r.SelectEnvs(envFilter())
		if err != nil {
			log.WithFields(log.Fields{log.ErrorKey: err}).Error("fail to select the environments")
			continue
		}
		report := r.RunAll(names, parallel)
		runner.PrintSummary(report, os.Stdout)
	}
	return 0
}
