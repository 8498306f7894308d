package plan

import (
	"fmt"
	"testing"

	"github.com/josephlewis42/v6sh/core/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleTranslate() {
	tree, _ := shell.ParseString("sort <a <b >c >>d; ls &")
	node, _ := Translate(tree)
	fmt.Println(node)

	// Output: Seq(Exec(["sort"], <"b", >>"d"), Background(Exec(["ls"])))
}

func TestTranslate(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected string
	}{
		"simple":           {"ls -l", `Exec(["ls","-l"])`},
		"trailing semi":    {"ls;", `Exec(["ls"])`},
		"sequence":         {"a; b", `Seq(Exec(["a"]), Exec(["b"]))`},
		"pipeline":         {"a | b | c", `Pipe(Exec(["a"]), Pipe(Exec(["b"]), Exec(["c"])))`},
		"pipeline ends":    {"a <in | b | c >out", `Pipe(Exec(["a"], <"in"), Pipe(Exec(["b"]), Exec(["c"], >"out")))`},
		"append":           {"echo x >>log", `Exec(["echo","x"], >>"log")`},
		"last out wins":    {"echo x >>a >b", `Exec(["echo","x"], >"b")`},
		"redirect only":    {">out", `Exec([], >"out")`},
		"background":       {"a & b", `Seq(Background(Exec(["a"])), Exec(["b"]))`},
		"background pipe":  {"a | b &", `Background(Pipe(Exec(["a"]), Exec(["b"])))`},
		"subshell":         {"(a; b) >out", `Subshell(Seq(Exec(["a"]), Exec(["b"])), >"out")`},
		"subshell in pipe": {"(a; b) | c", `Pipe(Subshell(Seq(Exec(["a"]), Exec(["b"]))), Exec(["c"]))`},
		"nested trailing":  {"(a;);", `Subshell(Exec(["a"]))`},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			tree, err := shell.ParseString(tc.input)
			require.NoError(t, err)

			node, err := Translate(tree)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, node.String())
		})
	}
}

func TestTranslateNil(t *testing.T) {
	node, err := Translate(nil)
	assert.NoError(t, err)
	assert.Nil(t, node)
}

func TestTranslateSubshellKeepsSource(t *testing.T) {
	tree, err := shell.ParseString("(echo a; echo b)")
	require.NoError(t, err)

	node, err := Translate(tree)
	require.NoError(t, err)

	sub, ok := node.(*Subshell)
	require.True(t, ok)
	assert.Equal(t, "echo a; echo b", shell.Serialize(sub.Source))
}

func TestTranslateErrors(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected string
	}{
		"input into pipe reader": {
			input:    "a | b <in",
			expected: `invalid command "b <in": input redirection on a stage reading from a pipe`,
		},
		"output from pipe writer": {
			input:    "a >out | b",
			expected: `invalid command "a >out": output redirection on a stage writing to a pipe`,
		},
		"middle stage": {
			input:    "a | b >>x | c",
			expected: `invalid command "b >>x": output redirection on a stage writing to a pipe`,
		},
		"redirect only stage": {
			input:    "a | >out",
			expected: `invalid command ">out": pipeline stage has no command`,
		},
		"empty target": {
			input:    "cat <''",
			expected: `invalid command "cat <''": empty redirection target`,
		},
		"subshell into pipe": {
			input:    "a | (b) <in",
			expected: `invalid command "(b) <in": input redirection on a stage reading from a pipe`,
		},
		"error inside subshell": {
			input:    "(a | b <in)",
			expected: `invalid command "b <in": input redirection on a stage reading from a pipe`,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			tree, err := shell.ParseString(tc.input)
			require.NoError(t, err)

			node, err := Translate(tree)
			assert.Nil(t, node)

			var transErr *TranslationError
			require.ErrorAs(t, err, &transErr)
			assert.EqualError(t, err, tc.expected)
		})
	}
}

func TestTranslateHandBuiltTrees(t *testing.T) {
	a := &shell.Simple{Argv: []string{"a"}}
	b := &shell.Simple{Argv: []string{"b"}}

	cases := map[string]struct {
		tree     shell.Command
		expected string
		err      string
	}{
		"double background flattens": {
			tree:     &shell.Background{Inner: &shell.Background{Inner: a}},
			expected: `Background(Exec(["a"]))`,
		},
		"list in pipe": {
			tree: &shell.Pipe{Left: &shell.List{First: a, Second: b}, Right: b},
			err:  `invalid command "a; b": command list in a pipeline`,
		},
		"background in pipe": {
			tree: &shell.Pipe{Left: a, Right: &shell.Background{Inner: b}},
			err:  `invalid command "b &": background command in a pipeline`,
		},
		"background list": {
			tree: &shell.Background{Inner: &shell.List{First: a, Second: b}},
			err:  `invalid command "a; b &": background command list`,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			node, err := Translate(tc.tree)
			if tc.err != "" {
				assert.EqualError(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, node.String())
		})
	}
}
