package runner

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-envparse"
	"github.com/ochinchina/gotox/config"
	"github.com/ochinchina/gotox/signals"
	"github.com/ochinchina/gotox/types"
	"github.com/ochinchina/gotox/util"
	log "github.com/sirupsen/logrus"
)

// variables every environment gets regardless of passenv
var alwaysPassedEnv = []string{"PATH", "HOME", "USER", "LOGNAME", "LANG", "LC_ALL", "TMPDIR", "TEMP", "TMP", "SYSTEMROOT", "USERPROFILE"}

// envRun executes the commands of one environment
type envRun struct {
	name     string
	cfg      *config.Config
	entry    *config.Entry
	posArgs  []string
	recreate bool
	quiet    bool

	iniDir    string
	workDir   string
	envDir    string
	envTmpDir string
	logDir    string
	changeDir string
}

func newEnvRun(cfg *config.Config, name string, posArgs []string, recreate bool, quiet bool) (*envRun, error) {
	entry := cfg.GetTestEnv(name)
	if entry == nil {
		return nil, fmt.Errorf("no environment %s in configuration", name)
	}
	r := &envRun{
		name:     name,
		cfg:      cfg,
		entry:    entry,
		posArgs:  posArgs,
		recreate: recreate,
		quiet:    quiet,
		iniDir:   cfg.GetConfigFileDir(),
	}
	if err := r.computeDirs(); err != nil {
		return nil, err
	}
	return r, nil
}

// resolve the directory layout of the environment. Later directories
// may refer to earlier ones, so they are evaluated in dependency order.
func (r *envRun) computeDirs() error {
	workDir := "{inidir}/.gotox"
	if global, ok := r.cfg.GetGlobal(); ok {
		workDir = global.GetString("workdir", workDir)
	}
	se := config.NewStringExpression("inidir", r.iniDir).WithConfig(r.cfg)
	workDir, err := se.Eval(workDir)
	if err != nil {
		return fmt.Errorf("bad workdir: %v", err)
	}
	if r.workDir, err = PathExpand(workDir); err != nil {
		return fmt.Errorf("bad workdir: %v", err)
	}
	if !filepath.IsAbs(r.workDir) {
		r.workDir = filepath.Join(r.iniDir, r.workDir)
	}

	se.Add("workdir", r.workDir).Add("envname", r.name)
	envDir, err := se.Eval(r.entry.GetString("envdir", "{workdir}/{envname}"))
	if err != nil {
		return fmt.Errorf("bad envdir: %v", err)
	}
	if r.envDir, err = PathExpand(envDir); err != nil {
		return fmt.Errorf("bad envdir: %v", err)
	}
	if !filepath.IsAbs(r.envDir) {
		r.envDir = filepath.Join(r.workDir, r.envDir)
	}
	r.envTmpDir = filepath.Join(r.envDir, "tmp")
	r.logDir = filepath.Join(r.envDir, "log")

	se.Add("envdir", r.envDir).Add("envtmpdir", r.envTmpDir)
	changeDir, err := se.Eval(r.entry.GetString("changedir", "{inidir}"))
	if err != nil {
		return fmt.Errorf("bad changedir: %v", err)
	}
	if r.changeDir, err = PathExpand(changeDir); err != nil {
		return fmt.Errorf("bad changedir: %v", err)
	}
	if !filepath.IsAbs(r.changeDir) {
		r.changeDir = filepath.Join(r.iniDir, r.changeDir)
	}
	return nil
}

// expression returns the substitution context of this environment
func (r *envRun) expression() *config.StringExpression {
	return config.NewStringExpression(
		"inidir", r.iniDir,
		"workdir", r.workDir,
		"envname", r.name,
		"envdir", r.envDir,
		"envtmpdir", r.envTmpDir,
		"changedir", r.changeDir,
	).WithConfig(r.cfg).SetPosArgs(r.posArgs)
}

// run executes the environment: materialize the env dir, install the
// declared deps and run the command list in order
func (r *envRun) run() *types.EnvResult {
	result := &types.EnvResult{
		Name:      r.name,
		State:     types.EnvRunning,
		StartTime: time.Now(),
		Commands:  make([]types.CommandResult, 0),
	}
	defer func() {
		result.Duration = time.Since(result.StartTime)
	}()

	log.WithFields(log.Fields{"env": r.name, "envdir": r.envDir}).Info("start environment")

	fresh, err := r.prepareEnvDir()
	if err != nil {
		log.WithFields(log.Fields{"env": r.name, log.ErrorKey: err}).Error("fail to create the environment directory")
		result.State = types.EnvError
		result.Error = err.Error()
		return result
	}
	if fresh {
		if err := r.installDeps(result); err != nil {
			log.WithFields(log.Fields{"env": r.name, log.ErrorKey: err}).Error("fail to install the environment deps")
			result.State = types.EnvError
			result.Error = err.Error()
			return result
		}
		if err := r.storeFingerprint(); err != nil {
			log.WithFields(log.Fields{"env": r.name, log.ErrorKey: err}).Error("fail to store the deps fingerprint")
			result.State = types.EnvError
			result.Error = err.Error()
			return result
		}
	}

	r.runCommands(result)

	if result.State == types.EnvFailed && r.entry.GetBool("ignore_outcome", false) {
		log.WithFields(log.Fields{"env": r.name}).Warn("environment failed but its outcome is ignored")
		result.State = types.EnvIgnoredFailure
	}
	return result
}

// prepareEnvDir creates the environment directory, wiping it first when
// the stored deps fingerprint no longer matches or a recreate was
// requested. It returns true if the directory was (re)created.
func (r *envRun) prepareEnvDir() (bool, error) {
	fingerprint := r.fingerprint()
	fpFile := filepath.Join(r.envDir, ".fingerprint")
	recreate := r.recreate || r.entry.GetBool("recreate", false)

	fresh := true
	if old, err := ioutil.ReadFile(fpFile); err == nil {
		if string(old) == fingerprint && !recreate {
			fresh = false
		} else {
			log.WithFields(log.Fields{"env": r.name}).Info("recreate the environment directory")
			if err := os.RemoveAll(r.envDir); err != nil {
				return false, err
			}
		}
	}

	for _, dir := range []string{r.envDir, r.logDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, err
		}
	}
	// the tmp dir starts empty on every run
	if err := os.RemoveAll(r.envTmpDir); err != nil {
		return false, err
	}
	if err := os.MkdirAll(r.envTmpDir, 0755); err != nil {
		return false, err
	}
	return fresh, nil
}

// storeFingerprint records the installed dependency set. It is written
// only after the install command succeeded, so a failed install is
// retried on the next run.
func (r *envRun) storeFingerprint() error {
	return ioutil.WriteFile(filepath.Join(r.envDir, ".fingerprint"), []byte(r.fingerprint()), 0644)
}

// fingerprint identifies the dependency set of the environment
func (r *envRun) fingerprint() string {
	h := sha1.New()
	fmt.Fprintln(h, r.entry.GetString("install_command", ""))
	for _, dep := range r.entry.GetLines("deps") {
		fmt.Fprintln(h, dep)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// installDeps runs the install command once with {packages} bound to
// the declared dependency list
func (r *envRun) installDeps(result *types.EnvResult) error {
	installCommand := r.entry.GetString("install_command", "")
	deps := make([]string, 0)
	for _, dep := range r.entry.GetLines("deps") {
		expanded, err := r.expression().Eval(dep)
		if err != nil {
			return fmt.Errorf("bad dep %q: %v", dep, err)
		}
		deps = append(deps, expanded)
	}
	if len(installCommand) == 0 || len(deps) == 0 {
		return nil
	}

	line, err := r.expression().Add("packages", strings.Join(deps, " ")).Eval(installCommand)
	if err != nil {
		return fmt.Errorf("bad install_command: %v", err)
	}
	argv, err := parseCommand(line)
	if err != nil {
		return fmt.Errorf("bad install_command: %v", err)
	}
	environ := r.buildEnviron()
	path, err := resolveExecutable(argv[0], r.iniDir, pathDirsOf(environ))
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"env": r.name, "command": line}).Info("install environment deps")
	start := time.Now()
	exitCode, err := runCommand(&commandSpec{
		argv:       argv,
		path:       path,
		dir:        r.iniDir,
		env:        environ,
		timeout:    r.commandTimeout(),
		killSignal: r.timeoutSignal(),
		logFile:    filepath.Join(r.logDir, "install.log"),
		quiet:      r.quiet,
	})
	result.Commands = append(result.Commands, types.CommandResult{
		Argv:     argv,
		ExitCode: exitCode,
		Duration: time.Since(start),
		LogFile:  filepath.Join(r.logDir, "install.log"),
	})
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return fmt.Errorf("install command exited with status %d", exitCode)
	}
	return nil
}

func (r *envRun) commandTimeout() time.Duration {
	return time.Duration(r.entry.GetInt("timeout", 0)) * time.Second
}

// timeoutSignal is the signal sent to the process tree of a timed out
// command, named by the timeout_signal key (KILL, TERM, INT, ...)
func (r *envRun) timeoutSignal() os.Signal {
	name := r.entry.GetString("timeout_signal", "KILL")
	sig, err := signals.ToSignal(name)
	if err != nil {
		log.WithFields(log.Fields{"env": r.name, "signal": name}).Warn("unknown timeout_signal, use KILL")
		return syscall.SIGKILL
	}
	return sig
}

// runCommands executes the command list of the environment. The first
// failing command fails the environment and skips the remaining
// commands, unless its line carries the "-" prefix or ignore_errors is
// set for the whole environment.
func (r *envRun) runCommands(result *types.EnvResult) {
	lines := r.entry.GetLines("commands")
	ignoreErrors := r.entry.GetBool("ignore_errors", false)
	timeout := r.commandTimeout()
	killSignal := r.timeoutSignal()
	environ := r.buildEnviron()
	pathDirs := pathDirsOf(environ)

	result.State = types.EnvPassed
	for i, line := range lines {
		ignored := ignoreErrors
		if strings.HasPrefix(line, "-") {
			ignored = true
			line = strings.TrimSpace(line[1:])
		}
		expanded, err := r.expression().Eval(line)
		if err != nil {
			log.WithFields(log.Fields{"env": r.name, "command": line, log.ErrorKey: err}).Error("fail to expand the command")
			result.State = types.EnvFailed
			result.Error = err.Error()
			result.ExitCode = 1
			return
		}
		argv, err := parseCommand(expanded)
		if err != nil {
			log.WithFields(log.Fields{"env": r.name, "command": expanded, log.ErrorKey: err}).Error("fail to parse the command")
			result.State = types.EnvFailed
			result.Error = err.Error()
			result.ExitCode = 1
			return
		}
		path, err := resolveExecutable(argv[0], r.changeDir, pathDirs)
		if err == nil {
			err = r.checkExternal(argv[0], path)
		}
		if err != nil {
			log.WithFields(log.Fields{"env": r.name, "command": argv[0], log.ErrorKey: err}).Error("fail to resolve the command")
			result.State = types.EnvFailed
			result.Error = err.Error()
			result.ExitCode = 1
			return
		}

		logFile := filepath.Join(r.logDir, fmt.Sprintf("%s-%d.log", r.name, i+1))
		log.WithFields(log.Fields{"env": r.name, "command": expanded}).Info("run command")
		start := time.Now()
		exitCode, err := runCommand(&commandSpec{
			argv:       argv,
			path:       path,
			dir:        r.changeDir,
			env:        environ,
			timeout:    timeout,
			killSignal: killSignal,
			logFile:    logFile,
			quiet:      r.quiet,
		})
		result.Commands = append(result.Commands, types.CommandResult{
			Argv:     argv,
			ExitCode: exitCode,
			Ignored:  ignored,
			Duration: time.Since(start),
			LogFile:  logFile,
		})
		if err != nil {
			log.WithFields(log.Fields{"env": r.name, "command": expanded, log.ErrorKey: err}).Error("command failed")
			result.Error = err.Error()
		}
		if exitCode != 0 {
			if ignored {
				log.WithFields(log.Fields{"env": r.name, "exitStatus": exitCode}).Info("ignore the failed command")
				continue
			}
			result.State = types.EnvFailed
			result.ExitCode = exitCode
			return
		}
	}
}

// checkExternal warns about commands resolved outside the environment
// directory that are not whitelisted. With strict_externals set in the
// [gotox] section the warning becomes an error.
func (r *envRun) checkExternal(name string, path string) error {
	if !isExternal(path, r.envDir) {
		return nil
	}
	whitelist := r.externalWhitelist()
	if util.InArray(filepath.Base(name), whitelist) || util.InArray(name, whitelist) {
		return nil
	}
	strict := false
	if global, ok := r.cfg.GetGlobal(); ok {
		strict = global.GetBool("strict_externals", false)
	}
	if strict {
		return fmt.Errorf("external command %s is not whitelisted", name)
	}
	log.WithFields(log.Fields{"env": r.name, "command": name, "path": path}).Warn("run external command not listed in whitelist_externals")
	return nil
}

// externalWhitelist collects the whitelisted external program names,
// accepting both the whitelist_externals and the allowlist_externals
// spelling, separated by newlines, commas or spaces
func (r *envRun) externalWhitelist() []string {
	result := make([]string, 0)
	for _, key := range []string{"whitelist_externals", "allowlist_externals"} {
		for _, line := range r.entry.GetLines(key) {
			result = append(result, strings.Fields(strings.Replace(line, ",", " ", -1))...)
		}
	}
	return result
}

// buildEnviron computes the environment of the commands: the passenv
// filter over the process environment, then env_file entries, then
// setenv entries, with the env bin dir prepended to PATH.
func (r *envRun) buildEnviron() []string {
	env := make(map[string]string)

	passAll := false
	passNames := append([]string(nil), alwaysPassedEnv...)
	passPrefixes := make([]string, 0)
	for _, name := range r.entry.GetStringArray("passenv", ",") {
		for _, n := range strings.Fields(name) {
			if n == "*" {
				passAll = true
			} else if strings.HasSuffix(n, "*") {
				passPrefixes = append(passPrefixes, strings.TrimSuffix(n, "*"))
			} else {
				passNames = append(passNames, n)
			}
		}
	}
	for _, kv := range os.Environ() {
		t := strings.SplitN(kv, "=", 2)
		if passAll || util.InArray(t[0], passNames) || hasAnyPrefix(t[0], passPrefixes) {
			env[t[0]] = t[1]
		}
	}

	for _, file := range r.entry.GetLines("env_file") {
		expanded, err := r.expression().Eval(file)
		if err != nil {
			log.WithFields(log.Fields{"env": r.name, "file": file, log.ErrorKey: err}).Error("bad env_file path")
			continue
		}
		f, err := os.Open(expanded)
		if err != nil {
			log.WithFields(log.Fields{"env": r.name, "file": expanded, log.ErrorKey: err}).Error("fail to open env file")
			continue
		}
		kvs, err := envparse.Parse(f)
		f.Close()
		if err != nil {
			log.WithFields(log.Fields{"env": r.name, "file": expanded, log.ErrorKey: err}).Error("fail to parse env file")
			continue
		}
		for k, v := range kvs {
			env[k] = v
		}
	}

	for k, v := range r.entry.GetKeyValues("setenv") {
		expanded, err := r.expression().Eval(v)
		if err != nil {
			log.WithFields(log.Fields{"env": r.name, "key": k, log.ErrorKey: err}).Error("bad setenv value")
			continue
		}
		env[k] = expanded
	}

	binDir := filepath.Join(r.envDir, "bin")
	if path, ok := env["PATH"]; ok && len(path) > 0 {
		env["PATH"] = binDir + string(os.PathListSeparator) + path
	} else {
		env["PATH"] = binDir
	}
	env["GOTOX_ENV_NAME"] = r.name
	env["GOTOX_ENV_DIR"] = r.envDir
	env["GOTOX_WORK_DIR"] = r.workDir

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]string, 0, len(env))
	for _, k := range keys {
		result = append(result, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return result
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// pathDirsOf extracts the PATH entries from an environ slice
func pathDirsOf(environ []string) []string {
	for _, kv := range environ {
		if strings.HasPrefix(kv, "PATH=") {
			return filepath.SplitList(kv[len("PATH="):])
		}
	}
	return nil
}
