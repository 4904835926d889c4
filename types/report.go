package types

import (
	"time"
)

// EnvState is the lifecycle state of one environment run
type EnvState string

const (
	// EnvPending the environment is selected but not started yet
	EnvPending EnvState = "pending"

	// EnvRunning the environment commands are being executed
	EnvRunning EnvState = "running"

	// EnvPassed all commands exited with status zero
	EnvPassed EnvState = "passed"

	// EnvFailed a command exited with a non-zero status
	EnvFailed EnvState = "failed"

	// EnvIgnoredFailure the environment failed but ignore_outcome is set
	EnvIgnoredFailure EnvState = "ignored failure"

	// EnvError the environment could not be set up at all
	EnvError EnvState = "error"
)

// CommandResult the outcome of a single command invocation
type CommandResult struct {
	Argv     []string      `json:"argv"`
	ExitCode int           `json:"exitCode"`
	Ignored  bool          `json:"ignored"`
	Duration time.Duration `json:"duration"`
	LogFile  string        `json:"logFile,omitempty"`
}

// EnvResult the outcome of one environment run
type EnvResult struct {
	Name      string          `json:"name"`
	State     EnvState        `json:"state"`
	ExitCode  int             `json:"exitCode"`
	Error     string          `json:"error,omitempty"`
	StartTime time.Time       `json:"startTime"`
	Duration  time.Duration   `json:"duration"`
	Commands  []CommandResult `json:"commands"`
}

// Succeeded returns true if the environment run should not fail the whole run
func (r *EnvResult) Succeeded() bool {
	return r.State == EnvPassed || r.State == EnvIgnoredFailure
}

// RunReport the outcome of a full run over the selected environments
type RunReport struct {
	StartTime time.Time    `json:"startTime"`
	Duration  time.Duration `json:"duration"`
	Results   []*EnvResult `json:"results"`
}

// Succeeded returns true if every environment in the report succeeded
func (r *RunReport) Succeeded() bool {
	for _, result := range r.Results {
		if !result.Succeeded() {
			return false
		}
	}
	return true
}

// FailedEnvs returns the names of the environments that failed the run
func (r *RunReport) FailedEnvs() []string {
	result := make([]string, 0)
	for _, env := range r.Results {
		if !env.Succeeded() {
			result = append(result, env.Name)
		}
	}
	return result
}
