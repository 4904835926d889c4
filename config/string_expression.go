package config

import (
	"fmt"
	"os"
	"strings"
)

// substitution is re-run on the result, this caps runaway recursion
const maxSubstitutions = 32

// StringExpression replaces tox-style "{var}" placeholders in a string.
// Supported forms: {name}, {env:VAR}, {env:VAR:default}, {posargs},
// {posargs:default} and {[section]key}. "{{" and "}}" escape literal
// braces.
type StringExpression struct {
	cfg        *Config
	env        map[string]string
	osEnv      map[string]string
	posArgs    []string
	hasPosArgs bool
}

// NewStringExpression creates a new StringExpression with the given
// key/value bindings
func NewStringExpression(envs ...string) *StringExpression {
	se := &StringExpression{env: make(map[string]string), osEnv: make(map[string]string)}

	for _, env := range os.Environ() {
		t := strings.SplitN(env, "=", 2)
		se.osEnv[t[0]] = t[1]
	}
	n := len(envs)
	for i := 0; i+1 < n; i += 2 {
		se.env[envs[i]] = envs[i+1]
	}
	return se
}

// WithConfig enables the {[section]key} substitution
func (se *StringExpression) WithConfig(cfg *Config) *StringExpression {
	se.cfg = cfg
	return se
}

// SetPosArgs binds the positional arguments used by {posargs}
func (se *StringExpression) SetPosArgs(args []string) *StringExpression {
	se.posArgs = args
	se.hasPosArgs = true
	return se
}

// Add adds a binding (key,value)
func (se *StringExpression) Add(key string, value string) *StringExpression {
	se.env[key] = value
	return se
}

// Eval substitutes all the placeholders in the given string. Substituted
// values are themselves subject to substitution.
func (se *StringExpression) Eval(s string) (string, error) {
	for i := 0; i < maxSubstitutions; i++ {
		start := findPlaceholder(s)
		if start == -1 {
			return unescape(s), nil
		}
		end := findClosingBrace(s, start)
		if end == -1 {
			return "", fmt.Errorf("unbalanced brace in expression %q", s)
		}
		value, err := se.resolve(s[start+1 : end])
		if err != nil {
			return "", err
		}
		s = s[0:start] + value + s[end+1:]
	}
	return "", fmt.Errorf("substitution depth exceeded in expression %q", s)
}

// find the first '{' that is not part of a '{{' escape
func findPlaceholder(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '{' {
			i++
			continue
		}
		return i
	}
	return -1
}

// findClosingBrace returns the index of the brace matching the opening
// brace at start. Placeholders may nest, e.g. in a posargs default:
// {posargs:{envtmpdir}/x}
func findClosingBrace(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func unescape(s string) string {
	s = strings.Replace(s, "{{", "{", -1)
	return strings.Replace(s, "}}", "}", -1)
}

func (se *StringExpression) resolve(name string) (string, error) {
	if strings.HasPrefix(name, "[") {
		return se.resolveSectionKey(name)
	}
	if strings.HasPrefix(name, "env:") {
		return se.resolveEnv(name[len("env:"):])
	}
	if name == "posargs" || strings.HasPrefix(name, "posargs:") {
		return se.resolvePosArgs(name)
	}
	value, ok := se.env[name]
	if !ok {
		return "", fmt.Errorf("unknown substitution key %q", name)
	}
	return value, nil
}

func (se *StringExpression) resolveSectionKey(name string) (string, error) {
	if se.cfg == nil {
		return "", fmt.Errorf("no configuration for section reference %q", name)
	}
	pos := strings.Index(name, "]")
	if pos == -1 {
		return "", fmt.Errorf("malformed section reference %q", name)
	}
	return se.cfg.GetSectionValue(name[1:pos], name[pos+1:])
}

func (se *StringExpression) resolveEnv(name string) (string, error) {
	varName := name
	defValue := ""
	hasDefault := false
	if pos := strings.Index(name, ":"); pos != -1 {
		varName = name[0:pos]
		defValue = name[pos+1:]
		hasDefault = true
	}
	if value, ok := se.osEnv[varName]; ok {
		return value, nil
	}
	if hasDefault {
		return defValue, nil
	}
	return "", fmt.Errorf("environment variable %s is not set and has no default", varName)
}

func (se *StringExpression) resolvePosArgs(name string) (string, error) {
	if se.hasPosArgs && len(se.posArgs) > 0 {
		return strings.Join(se.posArgs, " "), nil
	}
	if strings.HasPrefix(name, "posargs:") {
		return name[len("posargs:"):], nil
	}
	return "", nil
}
