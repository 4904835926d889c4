package runner

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ochinchina/gotox/logger"
	log "github.com/sirupsen/logrus"
)

// processes of the commands currently running, used to stop everything
// on a termination signal
var activeCommands sync.Map

// KillActiveCommands kills every currently running command together
// with its process tree
func KillActiveCommands() {
	activeCommands.Range(func(key, value interface{}) bool {
		killProcessTree(value.(*os.Process), syscall.SIGKILL)
		return true
	})
}

// keep one rotated backup of every command log, capped at 50MB
const (
	commandLogMaxBytes = 50 * 1024 * 1024
	commandLogBackups  = 1
)

// commandSpec is everything needed to run a single command line
type commandSpec struct {
	argv       []string
	path       string
	dir        string
	env        []string
	timeout    time.Duration
	killSignal os.Signal
	logFile    string
	quiet      bool
}

// runCommand executes the command and returns its exit status. The
// command output is written to the console and to the command log file.
// A command that exceeds its timeout is killed together with its whole
// process tree and reported with exit status -1.
func runCommand(spec *commandSpec) (int, error) {
	sinks := make([]logger.Logger, 0)
	if !spec.quiet {
		sinks = append(sinks, logger.NewStdoutLogger())
	}
	if len(spec.logFile) > 0 {
		sinks = append(sinks, logger.NewFileLogger(spec.logFile, commandLogMaxBytes, commandLogBackups))
	}
	output := logger.NewCompositeLogger(sinks)
	defer output.Close()

	cmd := &exec.Cmd{
		Path:   spec.path,
		Args:   spec.argv,
		Dir:    spec.dir,
		Env:    spec.env,
		Stdout: output,
		Stderr: output,
	}
	sysProcAttr := &syscall.SysProcAttr{}
	setSysProcAttr(sysProcAttr)
	cmd.SysProcAttr = sysProcAttr

	if err := cmd.Start(); err != nil {
		return -1, err
	}
	activeCommands.Store(cmd.Process.Pid, cmd.Process)
	defer activeCommands.Delete(cmd.Process.Pid)

	var timedOut int32
	if spec.timeout > 0 {
		process := cmd.Process
		sig := spec.killSignal
		if sig == nil {
			sig = syscall.SIGKILL
		}
		timer := time.AfterFunc(spec.timeout, func() {
			atomic.StoreInt32(&timedOut, 1)
			log.WithFields(log.Fields{"pid": process.Pid, "timeout": spec.timeout, "signal": sig}).Warn("command timed out, kill its process tree")
			killProcessTree(process, sig)
		})
		defer timer.Stop()
	}

	err := cmd.Wait()
	if atomic.LoadInt32(&timedOut) == 1 {
		return -1, fmt.Errorf("command timed out after %s", spec.timeout)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	return 0, nil
}
