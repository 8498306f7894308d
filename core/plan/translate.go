package plan

import (
	"fmt"

	"github.com/josephlewis42/v6sh/core/shell"
)

// TranslationError is returned for trees that are grammatical but can't be
// executed.
type TranslationError struct {
	Reason string
	// Command is the offending part of the tree as command text.
	Command string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("invalid command %q: %s", e.Command, e.Reason)
}

func invalid(cmd shell.Command, reason string) error {
	return &TranslationError{Reason: reason, Command: shell.Serialize(cmd)}
}

// pipeFlags record which ends of a stage are connected to pipes.
type pipeFlags int

const (
	pipeIn pipeFlags = 1 << iota
	pipeOut
)

// Translate validates a parse tree and lowers it into a plan. A nil tree
// translates to a nil plan.
func Translate(tree shell.Command) (Node, error) {
	if tree == nil {
		return nil, nil
	}
	return translate(tree, 0)
}

func translate(cmd shell.Command, flags pipeFlags) (Node, error) {
	switch c := cmd.(type) {
	case *shell.Simple:
		if flags != 0 && len(c.Argv) == 0 {
			return nil, invalid(c, "pipeline stage has no command")
		}
		stdin, stdout, err := resolveRedirs(c, c.Redirs, flags)
		if err != nil {
			return nil, err
		}
		return &Exec{Argv: c.Argv, Stdin: stdin, Stdout: stdout}, nil

	case *shell.Pipe:
		left, err := translate(c.Left, (flags&pipeIn)|pipeOut)
		if err != nil {
			return nil, err
		}
		right, err := translate(c.Right, (flags&pipeOut)|pipeIn)
		if err != nil {
			return nil, err
		}
		return &Pipe{Left: left, Right: right}, nil

	case *shell.List:
		if flags != 0 {
			return nil, invalid(c, "command list in a pipeline")
		}
		first, err := translate(c.First, 0)
		if err != nil {
			return nil, err
		}
		if c.Second == nil {
			return first, nil
		}
		second, err := translate(c.Second, 0)
		if err != nil {
			return nil, err
		}
		return &Seq{First: first, Second: second}, nil

	case *shell.Background:
		if flags != 0 {
			return nil, invalid(c, "background command in a pipeline")
		}
		inner, err := translate(c.Inner, 0)
		if err != nil {
			return nil, err
		}
		switch in := inner.(type) {
		case *Background:
			return in, nil
		case *Seq:
			return nil, invalid(c, "background command list")
		}
		return &Background{Inner: inner}, nil

	case *shell.Subshell:
		inner, err := translate(c.Inner, 0)
		if err != nil {
			return nil, err
		}
		stdin, stdout, err := resolveRedirs(c, c.Redirs, flags)
		if err != nil {
			return nil, err
		}
		return &Subshell{Source: c.Inner, Inner: inner, Stdin: stdin, Stdout: stdout}, nil

	case nil:
		return nil, &TranslationError{Reason: "missing command"}

	default:
		panic(fmt.Sprintf("plan: unknown command type %T", cmd))
	}
}

// resolveRedirs checks redirections against the stage's pipe connections and
// keeps the last one given for each stream.
func resolveRedirs(cmd shell.Command, redirs []shell.Redirection, flags pipeFlags) (stdin, stdout *Redirect, err error) {
	for _, r := range redirs {
		if r.Target == "" {
			return nil, nil, invalid(cmd, "empty redirection target")
		}

		switch r.Op.Direction() {
		case shell.In:
			if flags&pipeIn != 0 {
				return nil, nil, invalid(cmd, "input redirection on a stage reading from a pipe")
			}
			stdin = &Redirect{Path: r.Target}
		case shell.Out:
			if flags&pipeOut != 0 {
				return nil, nil, invalid(cmd, "output redirection on a stage writing to a pipe")
			}
			stdout = &Redirect{Path: r.Target, Append: r.Op == shell.RedirectAppend}
		}
	}
	return stdin, stdout, nil
}
