package shell

import (
	"strings"
)

// Serialize writes a command tree back out as command text. For any tree
// produced by Parse, parsing the output yields an identical tree.
func Serialize(cmd Command) string {
	var sb strings.Builder
	writeCommand(&sb, cmd)
	return sb.String()
}

func writeCommand(sb *strings.Builder, cmd Command) {
	switch c := cmd.(type) {
	case nil:
		// Nothing to write.

	case *Simple:
		for i, arg := range c.Argv {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(Quote(arg))
		}
		writeRedirs(sb, c.Redirs, len(c.Argv) > 0)

	case *Pipe:
		writeCommand(sb, c.Left)
		sb.WriteString(" | ")
		writeCommand(sb, c.Right)

	case *List:
		if bg, ok := c.First.(*Background); ok && c.Second != nil {
			// '&' terminates an item on its own, no ';' needed.
			writeCommand(sb, bg.Inner)
			sb.WriteString(" & ")
			writeCommand(sb, c.Second)
			return
		}
		writeCommand(sb, c.First)
		sb.WriteByte(';')
		if c.Second != nil {
			sb.WriteByte(' ')
			writeCommand(sb, c.Second)
		}

	case *Background:
		writeCommand(sb, c.Inner)
		sb.WriteString(" &")

	case *Subshell:
		sb.WriteByte('(')
		writeCommand(sb, c.Inner)
		sb.WriteByte(')')
		writeRedirs(sb, c.Redirs, true)

	default:
		panic("shell: unknown command type")
	}
}

func writeRedirs(sb *strings.Builder, redirs []Redirection, leadingSpace bool) {
	for i, r := range redirs {
		if i > 0 || leadingSpace {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.Op.String())
		sb.WriteString(Quote(r.Target))
	}
}

func isSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c >= 0x80:
		return true
	}
	return strings.IndexByte("_-./:=,+@%", c) >= 0
}

// Quote returns word in a form that scans back to exactly one WORD token with
// the same text. Words that need it are wrapped in single quotes, and single
// quotes inside them are written as "'". The output is also a valid POSIX
// shell word.
func Quote(word string) string {
	if word == "" {
		return "''"
	}

	needsQuotes := false
	for i := 0; i < len(word); i++ {
		if !isSafe(word[i]) {
			needsQuotes = true
			break
		}
	}
	if !needsQuotes {
		return word
	}

	var sb strings.Builder
	for i, segment := range strings.Split(word, "'") {
		if i > 0 {
			sb.WriteString(`"'"`)
		}
		if segment != "" {
			sb.WriteByte('\'')
			sb.WriteString(segment)
			sb.WriteByte('\'')
		}
	}
	return sb.String()
}

// QuoteArgv quotes and joins an argument vector with spaces.
func QuoteArgv(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = Quote(arg)
	}
	return strings.Join(quoted, " ")
}
