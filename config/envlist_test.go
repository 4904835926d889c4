package config

import (
	"github.com/ochinchina/gotox/util"
	"testing"
)

func TestParseEnvListSimple(t *testing.T) {
	names := ParseEnvList("unit, report,docs")
	if !util.ElementsMatchString(names, []string{"unit", "report", "docs"}) {
		t.Error("fail to parse comma separated envlist")
	}
}

func TestParseEnvListMultiLine(t *testing.T) {
	names := ParseEnvList("unit\nreport # coverage\n\ndocs")
	if len(names) != 3 || names[0] != "unit" || names[1] != "report" || names[2] != "docs" {
		t.Error("fail to parse multi-line envlist with comments")
	}
}

func TestParseEnvListBraces(t *testing.T) {
	names := ParseEnvList("py{38,39}-{unit,integration}")
	expected := []string{"py38-unit", "py38-integration", "py39-unit", "py39-integration"}
	if !util.ElementsMatchString(names, expected) {
		t.Errorf("fail to expand brace generation, got %v", names)
	}
}

func TestParseEnvListDuplicates(t *testing.T) {
	names := ParseEnvList("a,b,a")
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Error("fail to drop duplicated environment names")
	}
}
