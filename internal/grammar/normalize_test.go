package grammar

import (
	"testing"

	"github.com/dekarrin/peacock/internal/pkerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Normalize_coalescesAdjacentTerminals(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var g Grammar
	g.AddRule("S", Production{"'x'", "'y'", "<T>"})
	g.AddRule("T", Production{"'z'"})

	n, err := Normalize(g)
	require.NoError(err)
	require.Len(n.Rules[n.Entry].Productions, 1)

	prod := n.Rules[n.Entry].Productions[0]
	require.Len(prod, 2)
	assert.Equal(SymTerminal, prod[0].Kind)
	assert.Equal("xy", string(prod[0].Bytes))
	assert.Equal(SymNonTerminal, prod[1].Kind)
}

func Test_Normalize_epsilonRetainedAsMarker(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var g Grammar
	g.AddRule("S", Production{"'a'", "<S>"})
	g.AddRule("S", Production{"''"})

	n, err := Normalize(g)
	require.NoError(err)

	prods := n.Rules[n.Entry].Productions
	require.Len(prods, 2)
	assert.Equal(SymTerminal, prods[1][0].Kind)
	assert.Equal("", string(prods[1][0].Bytes))
}

func Test_Normalize_danglingReferenceIsFatal(t *testing.T) {
	require := require.New(t)

	var g Grammar
	g.AddRule("S", Production{"<Missing>"})

	_, err := Normalize(g)
	require.Error(err)

	kind, ok := pkerrors.KindOf(err)
	require.True(ok)
	require.Equal(pkerrors.Reference, kind)
}

func Test_Normalize_prunesUnreachableNonTerminals(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var g Grammar
	g.AddRule("S", Production{"'a'"})
	g.AddRule("Unused", Production{"'z'"})

	n, err := Normalize(g)
	require.NoError(err)
	assert.Len(n.Rules, 1)
}

func Test_Normalize_unproductiveIsWarningNotFatal(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var g Grammar
	g.AddRule("S", Production{"'a'", "<S>"})

	n, err := Normalize(g)
	require.NoError(err)
	require.NotEmpty(n.Warnings)

	kind, ok := pkerrors.KindOf(n.Warnings[0])
	require.True(ok)
	assert.Equal(pkerrors.Unproductive, kind)
}

func Test_Normalize_productiveGrammarHasNoWarning(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var g Grammar
	g.AddRule("S", Production{"'a'", "<S>"})
	g.AddRule("S", Production{"'a'"})

	n, err := Normalize(g)
	require.NoError(err)
	assert.Empty(n.Warnings)
}
