// Package shell turns command lines into parse trees and back.
//
// The grammar is the small v6 style one, loosest binding first:
//
//	list        := pipeline ( (';' | '&') list? )?
//	pipeline    := simple ( '|' pipeline )?
//	simple      := ( word | redirection )+ | '(' list ')' redirection*
//	redirection := ('<' | '>' | '>>') word
//
// There is no variable expansion, globbing or escaping; quotes only group
// characters into a single word.
package shell

import "fmt"

// SyntaxError is returned when the tokens don't match the grammar.
type SyntaxError struct {
	// Pos is the byte offset of the offending token.
	Pos      int
	Expected string
	Found    Token
}

func (e *SyntaxError) Error() string {
	if e.Found.Kind == KindEOF {
		return fmt.Sprintf("syntax error at %d: expected %s, found end of input", e.Pos, e.Expected)
	}
	return fmt.Sprintf("syntax error at %d: expected %s, found %q", e.Pos, e.Expected, e.Found.Text)
}

// Parse builds a command tree from tokens produced by Scan. A token sequence
// with no commands in it parses to a nil Command and no error.
func Parse(tokens []Token) (Command, error) {
	p := &parser{tokens: tokens}
	if p.peek().Kind == KindEOF {
		return nil, nil
	}

	cmd, err := p.list()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Kind != KindEOF {
		return nil, p.unexpected("end of input")
	}
	return cmd, nil
}

// ParseString scans and parses a command line.
func ParseString(input string) (Command, error) {
	tokens, err := Scan(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

type parser struct {
	tokens []Token
	pos    int
}

// peek returns the lookahead token. Running off the end of the slice acts as
// if the sequence were terminated by EOF.
func (p *parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}

	end := 0
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		end = last.Pos + len(last.Text)
	}
	return Token{Kind: KindEOF, Pos: end}
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) unexpected(expected string) error {
	tok := p.peek()
	return &SyntaxError{Pos: tok.Pos, Expected: expected, Found: tok}
}

// startsCommand reports whether the lookahead can begin a simple command.
func (p *parser) startsCommand() bool {
	switch p.peek().Kind {
	case KindWord, KindLParen, KindRedirIn, KindRedirOut, KindRedirAppend:
		return true
	}
	return false
}

func isRedirection(kind Kind) bool {
	return kind == KindRedirIn || kind == KindRedirOut || kind == KindRedirAppend
}

func (p *parser) list() (Command, error) {
	first, err := p.pipeline()
	if err != nil {
		return nil, err
	}

	switch p.peek().Kind {
	case KindSemi:
		p.next()
		if !p.startsCommand() {
			return &List{First: first}, nil
		}
		second, err := p.list()
		if err != nil {
			return nil, err
		}
		return &List{First: first, Second: second}, nil

	case KindAmp:
		p.next()
		bg := &Background{Inner: first}
		if !p.startsCommand() {
			return bg, nil
		}
		second, err := p.list()
		if err != nil {
			return nil, err
		}
		return &List{First: bg, Second: second}, nil
	}

	return first, nil
}

func (p *parser) pipeline() (Command, error) {
	left, err := p.simple()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != KindPipe {
		return left, nil
	}

	p.next()
	right, err := p.pipeline()
	if err != nil {
		return nil, err
	}
	return &Pipe{Left: left, Right: right}, nil
}

func (p *parser) simple() (Command, error) {
	if p.peek().Kind == KindLParen {
		return p.subshell()
	}

	cmd := &Simple{}
	for {
		tok := p.peek()
		switch {
		case tok.Kind == KindWord:
			p.next()
			cmd.Argv = append(cmd.Argv, tok.Text)
		case isRedirection(tok.Kind):
			redir, err := p.redirection()
			if err != nil {
				return nil, err
			}
			cmd.Redirs = append(cmd.Redirs, redir)
		default:
			if len(cmd.Argv) == 0 && len(cmd.Redirs) == 0 {
				return nil, p.unexpected("command")
			}
			return cmd, nil
		}
	}
}

func (p *parser) subshell() (Command, error) {
	open := p.next()

	inner, err := p.list()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != KindRParen {
		return nil, p.unexpected(fmt.Sprintf("')' to close '(' at %d", open.Pos))
	}
	p.next()

	sub := &Subshell{Inner: inner}
	for isRedirection(p.peek().Kind) {
		redir, err := p.redirection()
		if err != nil {
			return nil, err
		}
		sub.Redirs = append(sub.Redirs, redir)
	}
	return sub, nil
}

var redirOps = map[Kind]RedirOp{
	KindRedirIn:     RedirectIn,
	KindRedirOut:    RedirectOut,
	KindRedirAppend: RedirectAppend,
}

func (p *parser) redirection() (Redirection, error) {
	op := p.next()
	if p.peek().Kind != KindWord {
		return Redirection{}, p.unexpected(fmt.Sprintf("file name after %q", op.Text))
	}
	target := p.next()
	return Redirection{Op: redirOps[op.Kind], Target: target.Text}, nil
}
