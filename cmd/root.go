// Package cmd implements the command-line interface for logscope.
// It uses the Cobra library to handle commands, flags, and execution.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set by main from build-time ldflags.
var (
	version string
	commit  string
	date    string
)

var (
	mergeFlag       bool   // --merge, -m: combine all inputs into one timestamp-ordered view
	outputMergeFlag string // --output-merge, -o: also save the merged stream to this path
)

var rootCmd = &cobra.Command{
	Use:   "logscope [files...]",
	Short: "View, tail and search log files",
	Long: `logscope is a terminal viewer for one or more log files.

It memory-maps each file to find line boundaries without reading the
whole thing into memory, classifies each line's timestamp and format for
display, and — with --merge — presents multiple files as a single
timestamp-ordered stream. This command prints each input once and exits;
it does not follow files as they grow.`,
	Args: cobra.ArbitraryArgs,
	RunE: runLogscope,
}

// Execute runs the root command. Called by main.go.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVarP(&mergeFlag, "merge", "m", false, "Merge all files into a single timestamp-ordered view")
	rootCmd.Flags().StringVarP(&outputMergeFlag, "output-merge", "o", "", "Save the merged stream to PATH (requires --merge)")
}
