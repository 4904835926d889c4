package main

import (
	"fmt"
)

// Version is the version of gotox
const Version = "v0.3"

// VersionCommand implements the "version" subcommand
type VersionCommand struct {
}

var versionCommand VersionCommand

// Execute executes the version command
func (v VersionCommand) Execute(args []string) error {
	fmt.Println(Version)
	return nil
}

func init() {
	parser.AddCommand("version",
		"show the version of gotox",
		"display the gotox version",
		&versionCommand)
}
