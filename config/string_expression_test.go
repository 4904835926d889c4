package config

import (
	"os"
	"testing"
)

func TestEvalPlainKeys(t *testing.T) {
	se := NewStringExpression("envname", "unit", "envdir", "/work/.gotox/unit")
	r, err := se.Eval("run {envname} in {envdir}")
	if err != nil || r != "run unit in /work/.gotox/unit" {
		t.Error("fail to substitute plain keys")
	}
}

func TestEvalUnknownKey(t *testing.T) {
	se := NewStringExpression("envname", "unit")
	if _, err := se.Eval("{nosuchkey}"); err == nil {
		t.Error("unknown substitution key should be an error")
	}
}

func TestEvalNestedSubstitution(t *testing.T) {
	se := NewStringExpression("workdir", "{inidir}/.gotox", "inidir", "/src")
	r, err := se.Eval("{workdir}/unit")
	if err != nil || r != "/src/.gotox/unit" {
		t.Error("fail to substitute nested keys")
	}
}

func TestEvalSubstitutionCycle(t *testing.T) {
	se := NewStringExpression("a", "{b}", "b", "{a}")
	if _, err := se.Eval("{a}"); err == nil {
		t.Error("substitution cycle should be an error")
	}
}

func TestEvalEnvVar(t *testing.T) {
	os.Setenv("GOTOX_TEST_VAR", "value")
	defer os.Unsetenv("GOTOX_TEST_VAR")

	se := NewStringExpression()
	r, err := se.Eval("{env:GOTOX_TEST_VAR}")
	if err != nil || r != "value" {
		t.Error("fail to substitute environment variable")
	}
}

func TestEvalEnvVarDefault(t *testing.T) {
	se := NewStringExpression()
	r, err := se.Eval("{env:GOTOX_NO_SUCH_VAR:fallback}")
	if err != nil || r != "fallback" {
		t.Error("fail to substitute environment variable default")
	}
	if _, err = se.Eval("{env:GOTOX_NO_SUCH_VAR}"); err == nil {
		t.Error("unset environment variable without default should be an error")
	}
}

func TestEvalPosArgs(t *testing.T) {
	se := NewStringExpression().SetPosArgs([]string{"-k", "fast"})
	r, err := se.Eval("run {posargs}")
	if err != nil || r != "run -k fast" {
		t.Error("fail to substitute posargs")
	}
}

func TestEvalPosArgsDefault(t *testing.T) {
	se := NewStringExpression().SetPosArgs([]string{})
	r, err := se.Eval("run {posargs:tests/}")
	if err != nil || r != "run tests/" {
		t.Error("fail to substitute posargs default")
	}
	r, err = se.Eval("run {posargs}")
	if err != nil || r != "run " {
		t.Error("empty posargs without default should substitute nothing")
	}
}

func TestEvalPosArgsNestedDefault(t *testing.T) {
	se := NewStringExpression("envtmpdir", "/work/.gotox/unit/tmp").SetPosArgs([]string{})
	r, err := se.Eval("run {posargs:{envtmpdir}/x}")
	if err != nil || r != "run /work/.gotox/unit/tmp/x" {
		t.Error("fail to substitute a placeholder nested in a posargs default")
	}

	se2 := NewStringExpression("envtmpdir", "/work/.gotox/unit/tmp").SetPosArgs([]string{"-k", "fast"})
	r, err = se2.Eval("run {posargs:{envtmpdir}/x}")
	if err != nil || r != "run -k fast" {
		t.Error("given posargs should win over the nested default")
	}
}

func TestEvalSectionReference(t *testing.T) {
	cfg, _ := parseConfig([]byte("[docs]\nbuilddir=_build\n[testenv:docs]\nx=1"))
	se := NewStringExpression().WithConfig(cfg)
	r, err := se.Eval("out={[docs]builddir}")
	if err != nil || r != "out=_build" {
		t.Error("fail to substitute section reference")
	}
	if _, err = se.Eval("{[nope]key}"); err == nil {
		t.Error("missing section reference should be an error")
	}
}

func TestEvalEscapedBraces(t *testing.T) {
	se := NewStringExpression("envname", "unit")
	r, err := se.Eval("literal {{braces}} and {envname}")
	if err != nil || r != "literal {braces} and unit" {
		t.Error("fail to unescape literal braces")
	}
}

func TestEvalUnbalancedBrace(t *testing.T) {
	se := NewStringExpression()
	if _, err := se.Eval("oops {unclosed"); err == nil {
		t.Error("unbalanced brace should be an error")
	}
}
