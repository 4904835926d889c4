package runner

import (
	"testing"

	"github.com/ochinchina/gotox/types"
)

func TestRunEnvSuccess(t *testing.T) {
	cfg, _ := writeConfig(t, "[testenv:ok]\nwhitelist_externals=true\ncommands=true")
	r := NewRunner(cfg, nil, false)
	report := r.RunAll([]string{"ok"}, 0)
	if len(report.Results) != 1 || report.Results[0].State != types.EnvPassed {
		t.Error("fail to run a trivial environment")
	}
	if !report.Succeeded() {
		t.Error("passing environment should make the run succeed")
	}
}

func TestRunEnvFailurePropagatesExitCode(t *testing.T) {
	cfg, _ := writeConfig(t, "[testenv:bad]\nwhitelist_externals=false, true\ncommands=false\n\ttrue")
	r := NewRunner(cfg, nil, false)
	report := r.RunAll([]string{"bad"}, 0)
	result := report.Results[0]
	if result.State != types.EnvFailed || result.ExitCode != 1 {
		t.Error("failing command should fail the environment with its exit status")
	}
	if len(result.Commands) != 1 {
		t.Error("remaining commands should be skipped after a failure")
	}
	if report.Succeeded() {
		t.Error("failed environment should fail the run")
	}
}

func TestRunEnvIgnoredCommandFailure(t *testing.T) {
	cfg, _ := writeConfig(t, "[testenv:soft]\nwhitelist_externals=false, true\ncommands=-false\n\ttrue")
	r := NewRunner(cfg, nil, false)
	report := r.RunAll([]string{"soft"}, 0)
	result := report.Results[0]
	if result.State != types.EnvPassed {
		t.Error("ignored command failure should not fail the environment")
	}
	if len(result.Commands) != 2 || !result.Commands[0].Ignored || result.Commands[0].ExitCode == 0 {
		t.Error("ignored command should still be recorded with its exit status")
	}
}

func TestRunEnvIgnoreOutcome(t *testing.T) {
	cfg, _ := writeConfig(t, "[testenv:flaky]\nwhitelist_externals=false\nignore_outcome=true\ncommands=false")
	r := NewRunner(cfg, nil, false)
	report := r.RunAll([]string{"flaky"}, 0)
	if report.Results[0].State != types.EnvIgnoredFailure {
		t.Error("ignore_outcome should mark the failed environment as ignored")
	}
	if !report.Succeeded() {
		t.Error("ignored failure should not fail the run")
	}
}

func TestRunAllSequentialOrder(t *testing.T) {
	cfg, _ := writeConfig(t, "[gotox]\nenvlist=a,b\n[testenv]\nwhitelist_externals=true\ncommands=true\n[testenv:a]\n[testenv:b]\n")
	r := NewRunner(cfg, nil, false)
	names, err := r.SelectEnvs(nil)
	if err != nil || len(names) != 2 {
		t.Fatalf("fail to select environments: %v", err)
	}
	report := r.RunAll(names, 0)
	if len(report.Results) != 2 || report.Results[0].Name != "a" || report.Results[1].Name != "b" {
		t.Error("environments should run and report in envlist order")
	}
}

func TestRunAllParallel(t *testing.T) {
	cfg, _ := writeConfig(t, "[gotox]\nenvlist=a,b,c\n[testenv]\nwhitelist_externals=true\ncommands=true\n")
	r := NewRunner(cfg, nil, false)
	report := r.RunAll([]string{"a", "b", "c"}, 2)
	if len(report.Results) != 3 {
		t.Error("parallel run should report every environment")
	}
	for _, result := range report.Results {
		if result.State != types.EnvPassed {
			t.Error("parallel run should pass every trivial environment")
		}
	}
}

func TestSelectEnvsUnknown(t *testing.T) {
	cfg, _ := writeConfig(t, "[testenv:unit]\ncommands=true")
	r := NewRunner(cfg, nil, false)
	if _, err := r.SelectEnvs([]string{"unit", "nope"}); err == nil {
		t.Error("unknown environment name should be an error")
	}
}

func TestRunEnvFailedInstallRetried(t *testing.T) {
	cfg, _ := writeConfig(t, "[testenv:unit]\ndeps=toolA\ninstall_command=false {packages}\nwhitelist_externals=false, true\ncommands=true")
	r := NewRunner(cfg, nil, false)

	report := r.RunAll([]string{"unit"}, 0)
	if report.Results[0].State != types.EnvError {
		t.Fatal("failed install should report the environment as errored")
	}

	// the failed install left no fingerprint behind, the next run must
	// install again instead of running the commands in an unprovisioned
	// environment
	report = r.RunAll([]string{"unit"}, 0)
	result := report.Results[0]
	if result.State == types.EnvPassed {
		t.Error("environment with a failed install should never pass")
	}
	if result.State != types.EnvError || len(result.Commands) == 0 || result.Commands[0].ExitCode == 0 {
		t.Error("install should run again after a failed install")
	}
}

func TestRunEnvCommandTimeout(t *testing.T) {
	cfg, _ := writeConfig(t, "[testenv:slow]\ntimeout=1\nwhitelist_externals=sleep\ncommands=sleep 5")
	r := NewRunner(cfg, nil, false)
	report := r.RunAll([]string{"slow"}, 0)
	result := report.Results[0]
	if result.State != types.EnvFailed {
		t.Error("timed out command should fail the environment")
	}
	if len(result.Commands) != 1 || result.Commands[0].ExitCode != -1 {
		t.Error("timed out command should be recorded with exit status -1")
	}
}

func TestRunEnvMissingCommand(t *testing.T) {
	cfg, _ := writeConfig(t, "[testenv:broken]\ncommands=gotox-no-such-command-xyz")
	r := NewRunner(cfg, nil, false)
	report := r.RunAll([]string{"broken"}, 0)
	if report.Results[0].State != types.EnvFailed {
		t.Error("unresolvable command should fail the environment")
	}
}
