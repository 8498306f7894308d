package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/josephlewis42/v6sh/core/interp"
	"github.com/josephlewis42/v6sh/core/logger"
	"github.com/josephlewis42/v6sh/core/plan"
	"github.com/josephlewis42/v6sh/core/shell"
)

const (
	EnvPrompt   = "PS1"
	EnvHostname = "HOSTNAME"

	DefaultPrompt = `\u@\h:\w\$ `
)

// Shell reads command lines and runs them through the lexer, parser,
// translator and interpreter.
type Shell struct {
	Interp *interp.Interpreter
	// Stage stops processing early and prints the intermediate result.
	Stage Stage
	// PromptTemplate is used when PS1 isn't set.
	PromptTemplate string
	Events         *logger.SessionLogger

	hostname string
	uid      int
	history  []string
	// clearHistory resets the line editor's history, if there is one.
	clearHistory func()
}

// NewShell creates a shell around the interpreter and registers the built-ins
// that need access to it.
func NewShell(it *interp.Interpreter, events *logger.SessionLogger) *Shell {
	host, _ := os.Hostname()
	s := &Shell{
		Interp:         it,
		PromptTemplate: DefaultPrompt,
		Events:         events,
		hostname:       host,
		uid:            os.Geteuid(),
	}

	it.Events = events
	it.Builtins["history"] = interp.BuiltinFunc(s.History)
	if _, ok := it.Env.LookupEnv(EnvHostname); !ok {
		it.Env.Setenv(EnvHostname, host)
	}
	return s
}

// RunCommand runs a single line and returns its exit status. Lines that don't
// scan, parse or translate are reported and return interp.StatusUsage.
func (s *Shell) RunCommand(ctx context.Context, line string) int {
	out := s.Interp.Stdout

	tokens, err := shell.Scan(line)
	if err != nil {
		return s.reject(line, StageScan, err)
	}
	if s.Stage == StageScan {
		for _, tok := range tokens {
			fmt.Fprintln(out, tok)
		}
		return 0
	}

	tree, err := shell.Parse(tokens)
	if err != nil {
		return s.reject(line, StageParse, err)
	}
	if s.Stage == StageParse {
		if tree != nil {
			fmt.Fprintln(out, tree)
		}
		return 0
	}

	node, err := plan.Translate(tree)
	if err != nil {
		return s.reject(line, StagePlan, err)
	}
	if s.Stage == StagePlan {
		if node != nil {
			fmt.Fprintln(out, node)
		}
		return 0
	}

	return s.Interp.Execute(ctx, node)
}

func (s *Shell) reject(line string, stage Stage, err error) int {
	s.Interp.Report(err)
	s.Events.Record(&logger.InvalidInput{
		Input: line,
		Stage: stage.String(),
		Error: err.Error(),
	})
	s.Interp.SetLastStatus(interp.StatusUsage)
	return interp.StatusUsage
}

// RunScript runs every line read from r until the input ends or exit is
// called. It returns the status of the last command.
func (s *Shell) RunScript(ctx context.Context, r io.Reader) int {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.RunCommand(ctx, scanner.Text())
		if exited, status := s.Interp.Exited(); exited {
			return status
		}
		s.Interp.Jobs.Collect()
	}

	if err := scanner.Err(); err != nil {
		s.Interp.Report(err)
		return 1
	}
	return s.Interp.LastStatus()
}

// Prompt expands the prompt template.
func (s *Shell) Prompt() string {
	env := s.Interp.Env
	prompt := env.Getenv(EnvPrompt)
	if prompt == "" {
		prompt = s.PromptTemplate
	}

	pwd := s.Interp.Dir
	if home := env.Getenv(interp.EnvHome); home != "" && pathHasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}

	r := strings.NewReplacer(
		`\u`, env.Getenv(interp.EnvUser),
		`\h`, env.Getenv(EnvHostname),
		`\w`, pwd,
		`\$`, promptChar(s.uid),
	)
	return r.Replace(prompt)
}

func promptChar(uid int) string {
	if uid == 0 {
		return "#"
	}
	return "$"
}

func pathHasPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}
