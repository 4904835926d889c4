package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/ochinchina/gotox/config"
	"github.com/ochinchina/gotox/runner"
	log "github.com/sirupsen/logrus"
)

// Options the command line options of gotox
type Options struct {
	Configuration string `short:"c" long:"configuration" description:"the matrix configuration file" default:"gotox.ini"`
	Envs          string `short:"e" long:"env" description:"comma separated environments to run instead of the envlist"`
	ListEnvs      bool   `short:"l" long:"listenvs" description:"list the environments and exit"`
	ShowConfig    bool   `long:"showconfig" description:"dump the parsed configuration and exit"`
	Recreate      bool   `short:"r" long:"recreate" description:"force recreation of the environment directories"`
	Parallel      int    `short:"p" long:"parallel" description:"run up to N environments in parallel"`
	Watch         bool   `short:"w" long:"watch" description:"keep running and rerun the environments on file changes"`
	Daemon        bool   `short:"d" long:"daemon" description:"run the watch mode as daemon"`
	LogLevel      string `long:"log-level" description:"the log level (trace, debug, info, warning, error)" default:"info"`
}

var options Options
var parser = flags.NewParser(&options, flags.Default & ^flags.PrintErrors)

func init() {
	log.SetOutput(os.Stdout)
	if runtime.GOOS == "windows" {
		log.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})
	} else {
		log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true})
	}
	log.SetLevel(log.InfoLevel)
}

func setLogLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.WithFields(log.Fields{"level": level}).Warn("unknown log level, keep info")
		return
	}
	log.SetLevel(parsed)
}

func initSignals() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.WithFields(log.Fields{"signal": sig}).Info("receive a signal to stop the running commands & exit")
		runner.KillActiveCommands()
		os.Exit(1)
	}()
}

func envFilter() []string {
	if len(options.Envs) == 0 {
		return nil
	}
	filter := make([]string, 0)
	for _, name := range strings.Split(options.Envs, ",") {
		name = strings.TrimSpace(name)
		if len(name) > 0 {
			filter = append(filter, name)
		}
	}
	return filter
}

// Run loads the configuration and executes the selected environments.
// Returns the process exit status: 0 on success, 1 when an environment
// failed, 2 on a configuration or usage error.
func Run(posArgs []string) int {
	cfg := config.NewConfig(options.Configuration)
	if _, err := cfg.Load(); err != nil {
		log.WithFields(log.Fields{"file": options.Configuration, log.ErrorKey: err}).Error("fail to load the configuration")
		return 2
	}
	if options.ListEnvs {
		for _, name := range cfg.GetTestEnvNames() {
			if desc := cfg.GetTestEnv(name).GetString("description", ""); len(desc) > 0 {
				fmt.Printf("%-20s %s\n", name, desc)
			} else {
				fmt.Println(name)
			}
		}
		return 0
	}
	if options.ShowConfig {
		fmt.Print(cfg.String())
		return 0
	}

	r := runner.NewRunner(cfg, posArgs, options.Recreate)
	names, err := r.SelectEnvs(envFilter())
	if err != nil {
		log.WithFields(log.Fields{log.ErrorKey: err}).Error("fail to select the environments")
		return 2
	}

	parallel := options.Parallel
	if parallel == 0 {
		if global, ok := cfg.GetGlobal(); ok {
			parallel = global.GetInt("parallel", 0)
		}
	}

	initSignals()
	if options.Watch {
		return RunWatch(r, names, parallel)
	}

	report := r.RunAll(names, parallel)
	runner.PrintSummary(report, os.Stdout)
	if report.Succeeded() {
		return 0
	}
	return 1
}

func main() {
	parser.SubcommandsOptional = true
	posArgs, err := parser.Parse()
	if err != nil {
		flagsErr, ok := err.(*flags.Error)
		if ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if parser.Active != nil {
		// a subcommand already ran
		return
	}
	setLogLevel(options.LogLevel)

	if options.Watch && options.Daemon {
		Deamonize(func() {
			os.Exit(Run(posArgs))
		})
		return
	}
	os.Exit(Run(posArgs))
}
