package runner

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ochinchina/gotox/config"
	"github.com/ochinchina/gotox/types"
	"github.com/ochinchina/gotox/util"
	log "github.com/sirupsen/logrus"
)

// Runner executes the environments of one matrix configuration
type Runner struct {
	cfg      *config.Config
	posArgs  []string
	recreate bool

	lock      sync.RWMutex
	order     []string
	results   map[string]*types.EnvResult
	runsTotal map[string]int64
	startTime time.Time
	duration  time.Duration
}

// NewRunner creates a Runner for the loaded configuration
func NewRunner(cfg *config.Config, posArgs []string, recreate bool) *Runner {
	return &Runner{
		cfg:       cfg,
		posArgs:   posArgs,
		recreate:  recreate,
		results:   make(map[string]*types.EnvResult),
		runsTotal: make(map[string]int64),
	}
}

// Reload re-parses the configuration file. The recorded results are
// kept, the next runs use the fresh configuration.
func (r *Runner) Reload() error {
	cfg := config.NewConfig(r.getConfig().GetConfigFile())
	if _, err := cfg.Load(); err != nil {
		return err
	}
	r.lock.Lock()
	r.cfg = cfg
	r.lock.Unlock()
	return nil
}

func (r *Runner) getConfig() *config.Config {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.cfg
}

// Config returns the currently loaded configuration
func (r *Runner) Config() *config.Config {
	return r.getConfig()
}

// SelectEnvs returns the environments to run. Without a filter this is
// the configured envlist; a filter may select any declared environment,
// and an unknown name is an error.
func (r *Runner) SelectEnvs(filter []string) ([]string, error) {
	cfg := r.getConfig()
	if len(filter) == 0 {
		names := cfg.GetTestEnvNames()
		if len(names) == 0 {
			return nil, fmt.Errorf("no environment declared in %s", cfg.GetConfigFile())
		}
		return names, nil
	}
	names := make([]string, 0, len(filter))
	unknown := make([]string, 0)
	for _, name := range filter {
		if cfg.GetTestEnv(name) == nil {
			unknown = append(unknown, name)
		} else {
			names = append(names, name)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown environment: %s", strings.Join(unknown, ", "))
	}
	return names, nil
}

// RunAll runs the named environments and returns the report. With
// parallel > 1 up to that many environments run concurrently, each one
// still executing its own commands strictly in order.
func (r *Runner) RunAll(names []string, parallel int) *types.RunReport {
	r.lock.Lock()
	r.order = append([]string(nil), names...)
	r.startTime = time.Now()
	r.duration = 0
	for _, name := range names {
		r.results[name] = &types.EnvResult{Name: name, State: types.EnvPending}
	}
	r.lock.Unlock()

	if parallel <= 1 {
		for _, name := range names {
			r.runOne(name, false)
		}
	} else {
		ch := make(chan string)
		var wg sync.WaitGroup
		for i := 0; i < parallel; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// console passthrough is off, concurrent output
				// would interleave; the log files keep everything
				for name := range ch {
					r.runOne(name, true)
				}
			}()
		}
		for _, name := range names {
			ch <- name
		}
		close(ch)
		wg.Wait()
	}

	r.lock.Lock()
	r.duration = time.Since(r.startTime)
	r.lock.Unlock()
	return r.Report()
}

// RunEnv runs one environment now and returns its result. Used by the
// run trigger of the status server.
func (r *Runner) RunEnv(name string) (*types.EnvResult, error) {
	if r.getConfig().GetTestEnv(name) == nil {
		return nil, fmt.Errorf("no environment %s in configuration", name)
	}
	return r.runOne(name, false), nil
}

func (r *Runner) runOne(name string, quiet bool) *types.EnvResult {
	var result *types.EnvResult
	er, err := newEnvRun(r.getConfig(), name, r.posArgs, r.recreate, quiet)
	if err != nil {
		log.WithFields(log.Fields{"env": name, log.ErrorKey: err}).Error("fail to set up the environment")
		result = &types.EnvResult{Name: name, State: types.EnvError, Error: err.Error(), StartTime: time.Now()}
	} else {
		result = er.run()
	}

	r.lock.Lock()
	r.results[name] = result
	r.runsTotal[name]++
	if !util.InArray(name, r.order) {
		r.order = append(r.order, name)
	}
	r.lock.Unlock()

	log.WithFields(log.Fields{"env": name, "state": result.State, "duration": result.Duration}).Info("environment finished")
	return result
}

// Report returns a snapshot of the current run results
func (r *Runner) Report() *types.RunReport {
	r.lock.RLock()
	defer r.lock.RUnlock()

	report := &types.RunReport{
		StartTime: r.startTime,
		Duration:  r.duration,
		Results:   make([]*types.EnvResult, 0, len(r.order)),
	}
	for _, name := range r.order {
		if result, ok := r.results[name]; ok {
			copied := *result
			report.Results = append(report.Results, &copied)
		}
	}
	return report
}

// Result returns the last result of one environment or nil
func (r *Runner) Result(name string) *types.EnvResult {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if result, ok := r.results[name]; ok {
		copied := *result
		return &copied
	}
	return nil
}

// ForEachResult calls cb with every known environment result
func (r *Runner) ForEachResult(cb func(result *types.EnvResult, runsTotal int64)) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	for _, name := range r.order {
		if result, ok := r.results[name]; ok {
			cb(result, r.runsTotal[name])
		}
	}
}
