package runtime

import (
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

// recursiveAGrammar is the literal scenario grammar from §8:
// { "<S>": [["'a'","<S>"], ["'a'"]] }
func recursiveAGrammar(g *grammar.Grammar) {
	g.AddRule("S", grammar.Production{"'a'", "<S>"})
	g.AddRule("S", grammar.Production{"'a'"})
}

func Test_Scenario_RecursiveA_MutateThenSerialize(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	aut := buildAutomaton(t, recursiveAGrammar)
	it := NewInterpreter(aut)
	it.SeedGenerator(1)

	buf := make([]uint64, 16)
	length := it.MutateSequence(buf, 0, 16)

	require.Greater(length, 0)
	require.LessOrEqual(length, 16)

	// last index is 1 (the terminating "'a'" alternative), every index
	// before that is 0 (the recursive "'a'<S>" alternative).
	assert.Equal(uint64(1), buf[length-1])
	for i := 0; i < length-1; i++ {
		assert.Equal(uint64(0), buf[i])
	}

	out := make([]byte, 32)
	written := it.SerializeSequence(buf, length, out)
	require.Equal(length, written)

	expected := make([]byte, length)
	for i := range expected {
		expected[i] = 'a'
	}
	assert.Equal(expected, out[:written])
}

func Test_Scenario_RecursiveA_UnparseBacktrack(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	aut := buildAutomaton(t, recursiveAGrammar)
	it := NewInterpreter(aut)

	buf := make([]uint64, 16)
	n := it.UnparseSequence(buf, 16, []byte("aaa"))
	require.Equal(3, n)
	assert.Equal([]uint64{0, 0, 1}, buf[:n])
}

func disjointTerminalsGrammar(g *grammar.Grammar) {
	g.AddRule("S", grammar.Production{"'foo'"})
	g.AddRule("S", grammar.Production{"'bar'"})
}

func Test_Scenario_DisjointTerminals(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	aut := buildAutomaton(t, disjointTerminalsGrammar)
	it := NewInterpreter(aut)

	buf := make([]uint64, 3)
	n := it.UnparseSequence(buf, 3, []byte("foo"))
	require.Equal(1, n)
	assert.Equal(uint64(0), buf[0])

	n = it.UnparseSequence(buf, 3, []byte("baz"))
	assert.Equal(0, n)
}

func sharedPrefixGrammar(g *grammar.Grammar) {
	g.AddRule("S", grammar.Production{"'x'", "'y'"})
	g.AddRule("S", grammar.Production{"'x'", "'z'"})
}

func Test_Scenario_SharedPrefix(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	aut := buildAutomaton(t, sharedPrefixGrammar)
	it := NewInterpreter(aut)

	out := make([]byte, 4)
	written := it.SerializeSequence([]uint64{0}, 1, out)
	assert.Equal("xy", string(out[:written]))

	written = it.SerializeSequence([]uint64{1}, 1, out)
	assert.Equal("xz", string(out[:written]))

	buf := make([]uint64, 2)
	n := it.UnparseSequence(buf, 2, []byte("xz"))
	require.Equal(1, n)
	assert.Equal(uint64(1), buf[0])
}

func epsilonGrammar(g *grammar.Grammar) {
	g.AddRule("S", grammar.Production{"'a'", "<S>"})
	g.AddRule("S", grammar.Production{"''"})
}

func Test_Scenario_Epsilon(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	aut := buildAutomaton(t, epsilonGrammar)
	it := NewInterpreter(aut)

	buf := make([]uint64, 4)
	n := it.UnparseSequence(buf, 4, []byte(""))
	require.Equal(1, n)
	assert.Equal(uint64(1), buf[0])

	out := make([]byte, 4)
	written := it.SerializeSequence(buf, n, out)
	assert.Equal(0, written)
}

func nonProductiveGrammar(g *grammar.Grammar) {
	g.AddRule("S", grammar.Production{"'a'", "<S>"})
}

func Test_Scenario_CapacityTruncation(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	aut := buildAutomaton(t, nonProductiveGrammar)
	it := NewInterpreter(aut)
	it.SeedGenerator(1)

	buf := make([]uint64, 4)
	n := it.MutateSequence(buf, 0, 4)
	require.Equal(4, n)

	out := make([]byte, 8)
	written := it.SerializeSequence(buf, n, out)
	assert.Equal("aaaa", string(out[:written]))
}

func Test_Invariant_ReplayDeterminism(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	aut := buildAutomaton(t, recursiveAGrammar)

	it1 := NewInterpreter(aut)
	it1.SeedGenerator(42)
	buf1 := make([]uint64, 16)
	len1 := it1.MutateSequence(buf1, 0, 16)

	it2 := NewInterpreter(aut)
	it2.SeedGenerator(42)
	buf2 := make([]uint64, 16)
	len2 := it2.MutateSequence(buf2, 0, 16)

	require.Equal(len1, len2)
	assert.Equal(buf1[:len1], buf2[:len2])
}

func Test_Invariant_PrefixPreservedOnMutate(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	aut := buildAutomaton(t, recursiveAGrammar)

	it := NewInterpreter(aut)
	it.SeedGenerator(7)
	buf := make([]uint64, 16)
	length := it.MutateSequence(buf, 0, 16)
	require.Greater(length, 0)

	prefixLen := length
	if prefixLen > 1 {
		prefixLen--
	}
	prefix := append([]uint64(nil), buf[:prefixLen]...)

	mutated := make([]uint64, 16)
	copy(mutated, buf[:prefixLen])
	it.SeedGenerator(999) // different seed, only the suffix may change
	newLen := it.MutateSequence(mutated, prefixLen, 16)

	require.GreaterOrEqual(newLen, prefixLen)
	assert.Equal(prefix, mutated[:prefixLen])
}

func Test_Invariant_ZeroOutLenWritesZeroBytes(t *testing.T) {
	assert := assert.New(t)

	aut := buildAutomaton(t, recursiveAGrammar)
	it := NewInterpreter(aut)

	written := it.SerializeSequence([]uint64{1}, 1, nil)
	assert.Equal(0, written)
}

func Test_Invariant_NilInputReturnsZero(t *testing.T) {
	assert := assert.New(t)

	aut := buildAutomaton(t, recursiveAGrammar)
	it := NewInterpreter(aut)

	buf := make([]uint64, 4)
	n := it.UnparseSequence(buf, 4, nil)
	assert.Equal(0, n)
}

func Test_Invariant_TerminatesForSomeCapacity(t *testing.T) {
	require := require.New(t)

	aut := buildAutomaton(t, recursiveAGrammar)
	it := NewInterpreter(aut)
	it.SeedGenerator(123)

	buf := make([]uint64, 1000)
	length := it.MutateSequence(buf, 0, 1000)
	require.LessOrEqual(length, 1000)
}
