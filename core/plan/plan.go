// Package plan lowers parse trees into validated, normalized execution plans.
package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/josephlewis42/v6sh/core/shell"
)

// Node is a step of an execution plan. It is always one of *Exec, *Pipe,
// *Seq, *Background or *Subshell.
type Node interface {
	fmt.Stringer
	node()
}

// Redirect is a resolved redirection for one standard stream.
type Redirect struct {
	Path string
	// Append opens the file for appending rather than truncating it. Only
	// meaningful for output.
	Append bool
}

// Exec runs a built-in or external program.
type Exec struct {
	// Argv is empty for redirection-only commands which create or open their
	// files and do nothing else.
	Argv   []string
	Stdin  *Redirect
	Stdout *Redirect
}

// Pipe runs Left and Right concurrently with Left's output feeding Right.
type Pipe struct {
	Left  Node
	Right Node
}

// Seq runs First to completion, then Second.
type Seq struct {
	First  Node
	Second Node
}

// Background starts Inner and doesn't wait for it.
type Background struct {
	Inner Node
}

// Subshell runs Source in a child shell process.
type Subshell struct {
	// Source is the untranslated tree that gets serialized for the child.
	Source shell.Command
	// Inner is the translated form of Source, kept so errors are found before
	// the child is started.
	Inner  Node
	Stdin  *Redirect
	Stdout *Redirect
}

func (*Exec) node()       {}
func (*Pipe) node()       {}
func (*Seq) node()        {}
func (*Background) node() {}
func (*Subshell) node()   {}

func (n *Exec) String() string {
	return format("Exec", append([]string{shell.FormatArgv(n.Argv)}, redirects(n.Stdin, n.Stdout)...)...)
}

func (n *Pipe) String() string {
	return format("Pipe", n.Left.String(), n.Right.String())
}

func (n *Seq) String() string {
	return format("Seq", n.First.String(), n.Second.String())
}

func (n *Background) String() string {
	return format("Background", n.Inner.String())
}

func (n *Subshell) String() string {
	return format("Subshell", append([]string{n.Inner.String()}, redirects(n.Stdin, n.Stdout)...)...)
}

func format(name string, fields ...string) string {
	return name + "(" + strings.Join(fields, ", ") + ")"
}

func redirects(stdin, stdout *Redirect) []string {
	var out []string
	if stdin != nil {
		out = append(out, "<"+strconv.Quote(stdin.Path))
	}
	if stdout != nil {
		op := ">"
		if stdout.Append {
			op = ">>"
		}
		out = append(out, op+strconv.Quote(stdout.Path))
	}
	return out
}
