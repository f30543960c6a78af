package grammar

import (
	"strings"
	"testing"

	"github.com/dekarrin/peacock/internal/pkerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Peacock_basic(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `{
		// recursive "a"s, terminated by a lone "a"
		"<S>": [["'a'", "<S>"], ["'a'"]]
	}`

	g, err := Load(strings.NewReader(src), DialectAuto)
	require.NoError(err)
	assert.Equal("S", g.Entry)

	r, ok := g.Rule("S")
	require.True(ok)
	require.Len(r.Productions, 2)
	assert.Equal(Production{"'a'", "<S>"}, r.Productions[0])
	assert.Equal(Production{"'a'"}, r.Productions[1])
}

func Test_Load_Peacock_blockComment(t *testing.T) {
	require := require.New(t)

	src := `{
		/* block
		   comment */
		"<S>": [["'x'"]]
	}`

	g, err := Load(strings.NewReader(src), DialectPeacock)
	require.NoError(err)
	require.Equal("S", g.Entry)
}

func Test_Load_Peacock_unterminatedBlockComment(t *testing.T) {
	require := require.New(t)

	src := `{ /* never closed
		"<S>": [["'x'"]]
	}`

	_, err := Load(strings.NewReader(src), DialectPeacock)
	require.Error(err)

	kind, ok := pkerrors.KindOf(err)
	require.True(ok)
	require.Equal(pkerrors.Syntax, kind)
}

func Test_Load_Peacock_badSymbolShape(t *testing.T) {
	require := require.New(t)

	src := `{ "<S>": [["bare"]] }`

	_, err := Load(strings.NewReader(src), DialectPeacock)
	require.Error(err)

	kind, ok := pkerrors.KindOf(err)
	require.True(ok)
	require.Equal(pkerrors.Shape, kind)
}

func Test_Load_Peacock_empty(t *testing.T) {
	require := require.New(t)

	_, err := Load(strings.NewReader(`{}`), DialectPeacock)
	require.Error(err)

	kind, ok := pkerrors.KindOf(err)
	require.True(ok)
	require.Equal(pkerrors.Empty, kind)
}

func Test_Load_Gramatron_basic(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := `{
		"Start": "S",
		"NonTerminals": ["S"],
		"Terminals": ["a"],
		"Rules": {
			"S": [["'a'", "<S>"], ["'a'"]]
		}
	}`

	g, err := Load(strings.NewReader(src), DialectAuto)
	require.NoError(err)
	assert.Equal("S", g.Entry)
}

func Test_Sniff(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(DialectGramatron, Sniff([]byte(`{"Start":"S","Rules":{}}`)))
	assert.Equal(DialectPeacock, Sniff([]byte(`{"<S>":[["'a'"]]}`)))
}

func Test_Load_RoundTrip_WritePeacock(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var g Grammar
	g.AddRule("S", Production{"'foo'"})
	g.AddRule("S", Production{"'bar'"})

	var buf strings.Builder
	require.NoError(WritePeacock(&buf, g))

	reloaded, err := Load(strings.NewReader(buf.String()), DialectPeacock)
	require.NoError(err)
	assert.Equal(g.Entry, reloaded.Entry)

	r1, _ := g.Rule("S")
	r2, _ := reloaded.Rule("S")
	assert.Equal(r1.Productions, r2.Productions)
}
