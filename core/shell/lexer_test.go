package shell

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleScan() {
	tokens, _ := Scan("echo hi | cat")
	for _, tok := range tokens {
		fmt.Println(tok)
	}

	// Output: WORD "echo" @0
	// WORD "hi" @5
	// PIPE "|" @8
	// WORD "cat" @10
	// EOF "" @13
}

func TestScan(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected []Token
	}{
		"empty": {
			input:    "",
			expected: []Token{{Kind: KindEOF, Pos: 0}},
		},
		"whitespace only": {
			input:    " \t\n",
			expected: []Token{{Kind: KindEOF, Pos: 3}},
		},
		"operators without spaces": {
			input: "a|b;c&(d)<e>f",
			expected: []Token{
				{KindWord, "a", 0},
				{KindPipe, "|", 1},
				{KindWord, "b", 2},
				{KindSemi, ";", 3},
				{KindWord, "c", 4},
				{KindAmp, "&", 5},
				{KindLParen, "(", 6},
				{KindWord, "d", 7},
				{KindRParen, ")", 8},
				{KindRedirIn, "<", 9},
				{KindWord, "e", 10},
				{KindRedirOut, ">", 11},
				{KindWord, "f", 12},
				{KindEOF, "", 13},
			},
		},
		"append": {
			input: "a>>b",
			expected: []Token{
				{KindWord, "a", 0},
				{KindRedirAppend, ">>", 1},
				{KindWord, "b", 3},
				{KindEOF, "", 4},
			},
		},
		"two output redirections": {
			input: "> >",
			expected: []Token{
				{KindRedirOut, ">", 0},
				{KindRedirOut, ">", 2},
				{KindEOF, "", 3},
			},
		},
		"single quotes are literal": {
			input: `echo 'a | b;$c\'`,
			expected: []Token{
				{KindWord, "echo", 0},
				{KindWord, `a | b;$c\`, 5},
				{KindEOF, "", 16},
			},
		},
		"quotes join adjacent text": {
			input: `pre"mid dle"'post'`,
			expected: []Token{
				{KindWord, "premid dlepost", 0},
				{KindEOF, "", 18},
			},
		},
		"empty quoted word": {
			input: `''`,
			expected: []Token{
				{KindWord, "", 0},
				{KindEOF, "", 2},
			},
		},
		"double quote inside single": {
			input: `'"'`,
			expected: []Token{
				{KindWord, `"`, 0},
				{KindEOF, "", 3},
			},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			actual, err := Scan(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestScanErrors(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected LexError
	}{
		"unterminated single": {
			input:    "echo 'hi",
			expected: LexError{Pos: 5, Reason: "unterminated single quote"},
		},
		"unterminated double": {
			input:    `a"b`,
			expected: LexError{Pos: 1, Reason: "unterminated double quote"},
		},
		"mismatched": {
			input:    `"it's`,
			expected: LexError{Pos: 0, Reason: "unterminated double quote"},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			_, err := Scan(tc.input)

			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tc.expected, *lexErr)
		})
	}
}

func TestScanTotal(t *testing.T) {
	inputs := []string{
		"",
		"echo hi | cat ; echo done &",
		"((a)) >x <y >>z",
		"\x00\xff|&&;;",
		"a'b'c\"d\"e",
	}

	for _, input := range inputs {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			tokens, err := Scan(input)
			require.NoError(t, err)
			require.NotEmpty(t, tokens)

			for _, tok := range tokens[:len(tokens)-1] {
				assert.NotEqual(t, KindEOF, tok.Kind)
			}
			last := tokens[len(tokens)-1]
			assert.Equal(t, KindEOF, last.Kind)
			assert.Equal(t, len(input), last.Pos)

			again, err := Scan(input)
			require.NoError(t, err)
			assert.Equal(t, tokens, again)
		})
	}
}
