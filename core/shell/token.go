package shell

import "fmt"

// Kind is the type of a scanned token.
type Kind int

const (
	KindEOF Kind = iota
	KindWord
	KindPipe
	KindSemi
	KindAmp
	KindRedirIn
	KindRedirOut
	KindRedirAppend
	KindLParen
	KindRParen
)

var kindNames = map[Kind]string{
	KindEOF:         "EOF",
	KindWord:        "WORD",
	KindPipe:        "PIPE",
	KindSemi:        "SEMI",
	KindAmp:         "AMP",
	KindRedirIn:     "REDIR_IN",
	KindRedirOut:    "REDIR_OUT",
	KindRedirAppend: "REDIR_APPEND",
	KindLParen:      "LPAREN",
	KindRParen:      "RPAREN",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit of a command line.
type Token struct {
	Kind Kind
	// Text holds the word after quote removal, or the operator as written.
	Text string
	// Pos is the byte offset of the token in the input.
	Pos int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%d", t.Kind, t.Text, t.Pos)
}
