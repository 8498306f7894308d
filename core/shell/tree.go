package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a node in the parse tree. It is always one of *Simple, *Pipe,
// *List, *Background or *Subshell.
type Command interface {
	fmt.Stringer
	command()
}

// RedirOp is a redirection operator.
type RedirOp int

const (
	RedirectIn     RedirOp = iota // <
	RedirectOut                   // >
	RedirectAppend                // >>
)

func (op RedirOp) String() string {
	switch op {
	case RedirectIn:
		return "<"
	case RedirectOut:
		return ">"
	case RedirectAppend:
		return ">>"
	default:
		return fmt.Sprintf("RedirOp(%d)", int(op))
	}
}

// Direction is the standard stream a redirection replaces.
type Direction int

const (
	In Direction = iota
	Out
)

// Direction returns the stream the operator applies to, appends write to
// standard output like plain output redirections.
func (op RedirOp) Direction() Direction {
	if op == RedirectIn {
		return In
	}
	return Out
}

// Redirection binds a standard stream to a file.
type Redirection struct {
	Op     RedirOp
	Target string
}

func (r Redirection) String() string {
	return r.Op.String() + strconv.Quote(r.Target)
}

// Simple is a command name with its arguments and redirections. Argv may be
// empty if the command only has redirections.
type Simple struct {
	Argv   []string
	Redirs []Redirection
}

// Pipe connects the standard output of Left to the standard input of Right.
type Pipe struct {
	Left  Command
	Right Command
}

// List runs First then Second. Second is nil for a trailing ';'.
type List struct {
	First  Command
	Second Command
}

// Background runs Inner without waiting for it.
type Background struct {
	Inner Command
}

// Subshell runs Inner in a new shell process.
type Subshell struct {
	Inner  Command
	Redirs []Redirection
}

func (*Simple) command()     {}
func (*Pipe) command()       {}
func (*List) command()       {}
func (*Background) command() {}
func (*Subshell) command()   {}

func (c *Simple) String() string {
	return node("Simple", append([]string{quoteList(c.Argv)}, redirStrings(c.Redirs)...)...)
}

func (c *Pipe) String() string {
	return node("Pipe", str(c.Left), str(c.Right))
}

func (c *List) String() string {
	if c.Second == nil {
		return node("List", str(c.First))
	}
	return node("List", str(c.First), str(c.Second))
}

func (c *Background) String() string {
	return node("Background", str(c.Inner))
}

func (c *Subshell) String() string {
	return node("Subshell", append([]string{str(c.Inner)}, redirStrings(c.Redirs)...)...)
}

func str(c Command) string {
	if c == nil {
		return "nil"
	}
	return c.String()
}

func node(name string, fields ...string) string {
	return name + "(" + strings.Join(fields, ", ") + ")"
}

func quoteList(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = strconv.Quote(w)
	}
	return "[" + strings.Join(quoted, ",") + "]"
}

func redirStrings(redirs []Redirection) []string {
	var out []string
	for _, r := range redirs {
		out = append(out, r.String())
	}
	return out
}

// FormatArgv renders an argument vector with the same quoting as the
// Simple node's String method.
func FormatArgv(argv []string) string {
	return quoteList(argv)
}
