package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/v6sh/core/interp"
)

// LineReader reads command lines, *readline.Instance implements it.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

var _ LineReader = (*readline.Instance)(nil)

// RunInteractive runs a read-eval loop on a line editor built from cfg.
func (s *Shell) RunInteractive(ctx context.Context, cfg *readline.Config) (int, error) {
	if err := cfg.Init(); err != nil {
		return 1, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return 1, err
	}
	defer rl.Close()

	s.clearHistory = rl.Operation.ResetHistory
	defer func() { s.clearHistory = nil }()

	return s.Interact(ctx, rl), nil
}

// Interact prompts for and runs lines until the input ends or exit is called.
// Finished background jobs are reported before each prompt.
func (s *Shell) Interact(ctx context.Context, lr LineReader) int {
	s.Interp.Interactive = true
	defer func() { s.Interp.Interactive = false }()

	for {
		s.reportJobs()

		lr.SetPrompt(s.Prompt())
		line, err := lr.Readline()

		switch {
		case err == io.EOF:
			return s.Interp.LastStatus() // Input closed, quit.

		case err == readline.ErrInterrupt:
			continue

		case err != nil:
			log.Printf("Error readline: %v", err)
			return 1

		case strings.TrimSpace(line) == "":
			continue // empty line
		}

		s.history = append(s.history, line)
		s.RunCommand(ctx, line)
		if exited, status := s.Interp.Exited(); exited {
			return status
		}
	}
}

func (s *Shell) reportJobs() {
	for _, job := range s.Interp.Jobs.Collect() {
		fmt.Fprintln(s.Interp.Stderr, job)
	}
}

// History is the history shell builtin.
func (s *Shell) History(it *interp.Interpreter, stdio interp.Stdio, args []string) int {
	cmd := &interp.BuiltinCommand{
		Use:   "history [-c]",
		Short: "Display the history list with line numbers.",
	}
	clearAll := cmd.Flags().Bool('c', "clear the history by deleting all entries")

	return cmd.Run(stdio, args, func(args []string) int {
		if *clearAll {
			s.history = nil
			if s.clearHistory != nil {
				s.clearHistory()
			}
			return 0
		}

		for i, line := range s.history {
			fmt.Fprintf(stdio.Out, "% 5d  %s\n", i+1, line)
		}
		return 0
	})
}
