package runner

import (
	"testing"
)

func TestEmptyCommandLine(t *testing.T) {
	args, err := parseCommand(" ")
	if err == nil || len(args) > 0 {
		t.Error("fail to parse the empty command line")
	}
}

func TestNormalCommandLine(t *testing.T) {
	args, err := parseCommand("pytest -x tests")
	if err != nil {
		t.Error("fail to parse normal command line")
	}
	if args[0] != "pytest" || args[1] != "-x" || args[2] != "tests" {
		t.Error("fail to parse normal command line")
	}
}

func TestCommandLineWithQuotationMarks(t *testing.T) {
	args, err := parseCommand("prog 'this is arg1' args=\"this is arg2\"")
	if err != nil || len(args) != 3 {
		t.Error("fail to parse command line with quotation marks")
	}
	if args[0] != "prog" || args[1] != "this is arg1" || args[2] != "args=\"this is arg2\"" {
		t.Error("fail to parse command line with quotation marks")
	}
}

func TestCommandLineQuotedArgument(t *testing.T) {
	args, err := parseCommand("sphinx-build -b html -d \"_build/doctrees -W\" docs docs/_build/html")
	if err != nil || len(args) != 7 {
		t.Error("fail to parse the command line")
	}
	if args[4] != "_build/doctrees -W" {
		t.Error("fail to parse quoted argument")
	}
}
