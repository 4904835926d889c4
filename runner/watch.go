package runner

import (
	"github.com/ochinchina/filechangemonitor"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Watcher triggers reruns on file changes and on a cron schedule
type Watcher struct {
	monitor   *filechangemonitor.FileChangeMonitor
	scheduler *cron.Cron
	trigger   func(reason string)
}

// NewWatcher creates a Watcher calling trigger whenever a rerun is due
func NewWatcher(trigger func(reason string)) *Watcher {
	return &Watcher{
		monitor:   filechangemonitor.NewFileChangeMonitor(10),
		scheduler: cron.New(cron.WithSeconds()),
		trigger:   trigger,
	}
}

// AddPath monitors the files matching pattern under dir
func (w *Watcher) AddPath(dir string, pattern string) {
	log.WithFields(log.Fields{"dir": dir, "pattern": pattern}).Info("watch files for changes")
	w.monitor.AddMonitorFile(dir,
		true,
		filechangemonitor.NewPatternFileMatcher(pattern),
		filechangemonitor.NewFileChangeCallbackWrapper(func(path string, mode filechangemonitor.FileChangeMode) {
			log.WithFields(log.Fields{"file": path}).Info("file changed")
			w.trigger("change:" + path)
		}),
		filechangemonitor.NewFileMD5CompareInfo())
}

// AddSchedule triggers a full rerun on the cron expression (with a
// seconds field)
func (w *Watcher) AddSchedule(spec string) error {
	_, err := w.scheduler.AddFunc(spec, func() {
		w.trigger("schedule:" + spec)
	})
	return err
}

// Start starts the cron scheduler. The file monitor polls on its own.
func (w *Watcher) Start() {
	w.scheduler.Start()
}

// Stop stops the cron scheduler
func (w *Watcher) Stop() {
	w.scheduler.Stop()
}
