package codegen

import (
	"bytes"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/dekarrin/peacock/internal/automaton"
	"github.com/dekarrin/peacock/internal/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAutomaton(t *testing.T, build func(g *grammar.Grammar)) automaton.Automaton {
	t.Helper()
	var g grammar.Grammar
	build(&g)

	n, err := grammar.Normalize(g)
	require.NoError(t, err)

	aut, err := automaton.Build(n)
	require.NoError(t, err)
	return aut
}

func recursiveAGrammar(g *grammar.Grammar) {
	g.AddRule("S", grammar.Production{"'a'", "<S>"})
	g.AddRule("S", grammar.Production{"'a'"})
}

func mustParse(t *testing.T, src []byte) {
	t.Helper()
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "emitted.go", src, parser.AllErrors)
	require.NoError(t, err, "emitted source failed to parse:\n%s", src)
}

func TestEmit_DefaultOptions(t *testing.T) {
	assert := assert.New(t)
	aut := buildAutomaton(t, recursiveAGrammar)

	var buf bytes.Buffer
	err := Emit(&buf, aut, Options{}, "deadbeef")
	require.NoError(t, err)

	out := buf.String()
	mustParse(t, buf.Bytes())
	assert.Contains(out, "package fuzztarget")
	assert.Contains(out, "deadbeef")
	assert.Contains(out, "func mutateSequence(")
	assert.Contains(out, "func serializeSequence(")
	assert.Contains(out, "func unparseSequence(")
	assert.Contains(out, "func seedGenerator(")
	assert.NotContains(out, "sync.Mutex")
}

func TestEmit_Exported(t *testing.T) {
	assert := assert.New(t)
	aut := buildAutomaton(t, recursiveAGrammar)

	var buf bytes.Buffer
	err := Emit(&buf, aut, Options{Exported: true, Package: "genfuzz"}, "cafef00d")
	require.NoError(t, err)

	out := buf.String()
	mustParse(t, buf.Bytes())
	assert.Contains(out, "package genfuzz")
	assert.Contains(out, "func MutateSequence(")
	assert.Contains(out, "func SerializeSequence(")
	assert.Contains(out, "func UnparseSequence(")
	assert.Contains(out, "func SeedGenerator(")
}

func TestEmit_Multithreaded(t *testing.T) {
	assert := assert.New(t)
	aut := buildAutomaton(t, recursiveAGrammar)

	var buf bytes.Buffer
	err := Emit(&buf, aut, Options{Multithreaded: true}, "")
	require.NoError(t, err)

	mustParse(t, buf.Bytes())
	assert.Contains(buf.String(), "sync.Mutex")
}

func TestEmit_DisableRand(t *testing.T) {
	assert := assert.New(t)
	aut := buildAutomaton(t, recursiveAGrammar)

	var buf bytes.Buffer
	err := Emit(&buf, aut, Options{DisableRand: true}, "")
	require.NoError(t, err)

	out := buf.String()
	mustParse(t, buf.Bytes())
	assert.Contains(out, "RandSource")
	assert.NotContains(out, "func seedGenerator(")
}

func TestEmit_DisableSeed(t *testing.T) {
	assert := assert.New(t)
	aut := buildAutomaton(t, recursiveAGrammar)

	var buf bytes.Buffer
	err := Emit(&buf, aut, Options{DisableSeed: true}, "")
	require.NoError(t, err)

	out := buf.String()
	mustParse(t, buf.Bytes())
	assert.NotContains(out, "func seedGenerator(")
	assert.Contains(out, "func rngNext(")
}

func TestEmit_Seed(t *testing.T) {
	assert := assert.New(t)
	aut := buildAutomaton(t, recursiveAGrammar)

	seed := uint64(42)
	var buf bytes.Buffer
	err := Emit(&buf, aut, Options{Seed: &seed}, "")
	require.NoError(t, err)

	mustParse(t, buf.Bytes())
	assert.Contains(buf.String(), "rngState uint64 = 42")
}

func TestEmit_Trace(t *testing.T) {
	assert := assert.New(t)
	aut := buildAutomaton(t, recursiveAGrammar)

	var buf bytes.Buffer
	err := Emit(&buf, aut, Options{Trace: true}, "")
	require.NoError(t, err)

	out := buf.String()
	mustParse(t, buf.Bytes())
	assert.Contains(out, `"log"`)
	assert.Contains(out, "log.Printf(")
}

func TestSanitizeIdent(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "Sentence", expected: "Sentence"},
		{name: "namespaced", input: "other::Clause", expected: "other__Clause"},
		{name: "leading digit", input: "123", expected: "n123"},
		{name: "empty", input: "", expected: "anon"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sanitizeIdent(tc.input))
		})
	}
}

func TestBuildFileView_DedupesCollidingIdentifiers(t *testing.T) {
	aut := buildAutomaton(t, func(g *grammar.Grammar) {
		g.AddRule("weird name", grammar.Production{"'a'", "<weird!name>"})
		g.AddRule("weird!name", grammar.Production{"'b'"})
	})

	view, err := buildFileView(aut, Options{}, "")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, nt := range view.NonTerminals {
		require.False(t, seen[nt.FuncName], "duplicate generated identifier %q", nt.FuncName)
		seen[nt.FuncName] = true
	}
}

func TestEmit_LiteralStepsQuoted(t *testing.T) {
	aut := buildAutomaton(t, func(g *grammar.Grammar) {
		g.AddRule("S", grammar.Production{"'it''s \"quoted\"'"})
	})

	var buf bytes.Buffer
	err := Emit(&buf, aut, Options{}, "")
	require.NoError(t, err)
	mustParse(t, buf.Bytes())
	assert.True(t, strings.Contains(buf.String(), "copy(out"))
}
