// Package main is the entry point for the logscope application.
package main

import (
	"github.com/kdelon/logscope/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
