package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kdelon/logscope/internal/bus"
	"github.com/kdelon/logscope/internal/engine"
	"github.com/kdelon/logscope/internal/export"
)

// runLogscope is Cobra's RunE for the root command. With no TUI in this
// build (the rendering front end is out of scope here — the engine is
// the deliverable), it opens and scans every input, optionally saves the
// merged stream, and otherwise dumps every line's styled rendering to
// stdout via e.GetTextBlocking: the same render path a front end would
// drive off of e.Bus() and e.GetText, minus the interactive loop.
func runLogscope(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return cmd.Help()
		}
		return reexecWithStdin(cmd, args)
	}

	if outputMergeFlag != "" && !mergeFlag {
		return fmt.Errorf("--output-merge requires --merge")
	}

	files := collectFiles(args)
	if len(files) == 0 {
		return fmt.Errorf("no log files found in %v", args)
	}
	if len(files) > 1 && !mergeFlag {
		return fmt.Errorf("%d files given; pass --merge to view them as one timestamp-ordered stream", len(files))
	}

	eng := engine.New()
	defer eng.Close()
	go eng.DrainLineReads()
	go logBusErrors(eng.Bus())

	if err := eng.OpenFiles(files); err != nil {
		return fmt.Errorf("opening inputs: %w", err)
	}
	if err := eng.ScanAll(context.Background()); err != nil {
		return fmt.Errorf("scanning inputs: %w", err)
	}

	if outputMergeFlag != "" {
		if err := export.SaveMerged(eng, outputMergeFlag); err != nil {
			return fmt.Errorf("saving merged output: %w", err)
		}
		fmt.Printf("Merged %d lines into %s\n", eng.TotalLineCount(), outputMergeFlag)
		return nil
	}

	return dumpAll(eng)
}

// dumpAll synchronously renders every line the scan discovered, in the
// engine's addressing order (merged across files when applicable), through
// GetTextBlocking — the same styled-rendering entry point an interactive
// front end would call — and writes the rendered (ANSI-styled) text to
// stdout.
func dumpAll(eng *engine.Engine) error {
	w := bufio.NewWriterSize(os.Stdout, 256*1024)
	defer w.Flush()

	total := eng.TotalLineCount()
	for i := int64(0); i < total; i++ {
		_, styled, _, _, ok := eng.GetTextBlocking(int(i), false)
		if !ok {
			return fmt.Errorf("reading line %d: line text unavailable", i)
		}
		if _, err := w.WriteString(styled.Render()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// logBusErrors drains the engine's bus for FileError notifications while
// no front end is around to render them, so a mid-scan decompression or
// permission failure is at least visible on stderr instead of silently
// dropped.
func logBusErrors(q *bus.Queue) {
	for {
		msg := q.Receive()
		if fe, ok := msg.(bus.FileError); ok {
			log.Printf("[WARN] %s: %v", fe.Path, fe.Err)
		}
	}
}

// reexecWithStdin implements spec.md §6.2's stdin-pipe case: stdin is a
// pipe and no file arguments were given, so the piped content is drained
// to a temp file and the process re-execs itself against that path, with
// the child's stdin rebound to the controlling terminal so the viewer
// stays interactive.
func reexecWithStdin(cmd *cobra.Command, _ []string) error {
	tmp, err := os.CreateTemp("", "logscope-stdin-*.log")
	if err != nil {
		return fmt.Errorf("buffering stdin: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, os.Stdin); err != nil {
		return fmt.Errorf("buffering stdin: %w", err)
	}

	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		// No controlling terminal to rebind to (e.g. under a test
		// harness); fall back to viewing the buffered file directly
		// rather than re-executing at all.
		return runLogscope(cmd, []string{tmp.Name()})
	}
	defer tty.Close()

	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}
	child := exec.Command(self, tmp.Name())
	child.Stdin = tty
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr
	return child.Run()
}
