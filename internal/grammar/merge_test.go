package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Merge_namespacesSecondary(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var primary Grammar
	primary.AddRule("S", Production{"'a'"})

	var secondary Grammar
	secondary.AddRule("S", Production{"'b'"})

	merged, err := Merge(primary, []Grammar{secondary}, []string{"other.json"})
	require.NoError(err)

	assert.Equal("S", merged.Entry)
	_, ok := merged.Rule("other::S")
	assert.True(ok)
}

func Test_Merge_rewritesInternalReferences(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var primary Grammar
	primary.AddRule("S", Production{"'a'"})

	var secondary Grammar
	secondary.AddRule("S", Production{"<T>"})
	secondary.AddRule("T", Production{"'b'"})

	merged, err := Merge(primary, []Grammar{secondary}, []string{"lib"})
	require.NoError(err)

	r, ok := merged.Rule("lib::S")
	require.True(ok)
	assert.Equal(Production{"<lib::T>"}, r.Productions[0])
}

func Test_ConvertDialect_roundTripsThroughNormalize(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var g Grammar
	g.AddRule("S", Production{"'x'", "'y'"})
	g.AddRule("S", Production{"'x'", "'z'"})

	n, err := Normalize(g)
	require.NoError(err)

	converted := ConvertDialect(n)
	assert.Equal("S", converted.Entry)

	r, ok := converted.Rule("S")
	require.True(ok)
	require.Len(r.Productions, 2)
}
