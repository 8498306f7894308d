package shell

import (
	"fmt"
	"strings"
)

// LexError is returned when the input can't be split into tokens.
type LexError struct {
	Pos    int
	Reason string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d: %s", e.Pos, e.Reason)
}

const (
	operatorChars = "|;&<>()"
	spaceChars    = " \t\n\r\v\f"
)

func isOperator(c byte) bool {
	return strings.IndexByte(operatorChars, c) >= 0
}

func isSpace(c byte) bool {
	return strings.IndexByte(spaceChars, c) >= 0
}

// Scan splits a command line into tokens. The result always ends with exactly
// one EOF token positioned at the end of the input.
//
// Single and double quotes are literal: everything up to the matching quote is
// part of the word and no escapes are recognized inside them.
func Scan(input string) ([]Token, error) {
	l := &lexer{input: input}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

type lexer struct {
	input  string
	pos    int
	tokens []Token
}

func (l *lexer) run() error {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '|':
			l.emit(KindPipe, 1)
		case c == ';':
			l.emit(KindSemi, 1)
		case c == '&':
			l.emit(KindAmp, 1)
		case c == '<':
			l.emit(KindRedirIn, 1)
		case c == '>':
			if strings.HasPrefix(l.input[l.pos:], ">>") {
				l.emit(KindRedirAppend, 2)
			} else {
				l.emit(KindRedirOut, 1)
			}
		case c == '(':
			l.emit(KindLParen, 1)
		case c == ')':
			l.emit(KindRParen, 1)
		default:
			if err := l.word(); err != nil {
				return err
			}
		}
	}

	l.tokens = append(l.tokens, Token{Kind: KindEOF, Pos: len(l.input)})
	return nil
}

func (l *lexer) emit(kind Kind, width int) {
	l.tokens = append(l.tokens, Token{
		Kind: kind,
		Text: l.input[l.pos : l.pos+width],
		Pos:  l.pos,
	})
	l.pos += width
}

// word consumes the longest run of word characters and quoted segments.
func (l *lexer) word() error {
	start := l.pos
	var sb strings.Builder

	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if isSpace(c) || isOperator(c) {
			break
		}

		if c == '\'' || c == '"' {
			end := strings.IndexByte(l.input[l.pos+1:], c)
			if end < 0 {
				return &LexError{Pos: l.pos, Reason: fmt.Sprintf("unterminated %s quote", quoteName(c))}
			}
			sb.WriteString(l.input[l.pos+1 : l.pos+1+end])
			l.pos += end + 2
			continue
		}

		sb.WriteByte(c)
		l.pos++
	}

	l.tokens = append(l.tokens, Token{Kind: KindWord, Text: sb.String(), Pos: start})
	return nil
}

func quoteName(c byte) string {
	if c == '"' {
		return "double"
	}
	return "single"
}
