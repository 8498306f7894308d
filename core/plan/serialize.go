package plan

import (
	"strings"

	"github.com/josephlewis42/v6sh/core/shell"
)

// Serialize writes a plan out as command text in the same syntax the shell
// reads.
func Serialize(node Node) string {
	var sb strings.Builder
	writeNode(&sb, node)
	return sb.String()
}

func writeNode(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		// Nothing to write.

	case *Exec:
		sb.WriteString(shell.QuoteArgv(n.Argv))
		writeRedirects(sb, n.Stdin, n.Stdout, len(n.Argv) > 0)

	case *Pipe:
		writeNode(sb, n.Left)
		sb.WriteString(" | ")
		writeNode(sb, n.Right)

	case *Seq:
		if bg, ok := n.First.(*Background); ok {
			writeNode(sb, bg.Inner)
			sb.WriteString(" & ")
		} else {
			writeNode(sb, n.First)
			sb.WriteString("; ")
		}
		writeNode(sb, n.Second)

	case *Background:
		writeNode(sb, n.Inner)
		sb.WriteString(" &")

	case *Subshell:
		sb.WriteByte('(')
		sb.WriteString(shell.Serialize(n.Source))
		sb.WriteByte(')')
		writeRedirects(sb, n.Stdin, n.Stdout, true)

	default:
		panic("plan: unknown node type")
	}
}

func writeRedirects(sb *strings.Builder, stdin, stdout *Redirect, leadingSpace bool) {
	if stdin != nil {
		if leadingSpace {
			sb.WriteByte(' ')
		}
		sb.WriteByte('<')
		sb.WriteString(shell.Quote(stdin.Path))
		leadingSpace = true
	}
	if stdout != nil {
		if leadingSpace {
			sb.WriteByte(' ')
		}
		if stdout.Append {
			sb.WriteString(">>")
		} else {
			sb.WriteByte('>')
		}
		sb.WriteString(shell.Quote(stdout.Path))
	}
}
