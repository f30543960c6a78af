package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Grammar_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		build     func(g *Grammar)
		expectErr bool
	}{
		{
			name:      "empty grammar",
			expectErr: true,
		},
		{
			name: "non-terminal with zero productions cannot be built via AddRule alone",
			build: func(g *Grammar) {
				g.AddRule("S", Production{"'a'"})
			},
			expectErr: false,
		},
		{
			name: "single rule grammar",
			build: func(g *Grammar) {
				g.AddRule("S", Production{"'a'"})
			},
			expectErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			var g Grammar
			if tc.build != nil {
				tc.build(&g)
			}

			err := g.Validate()
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_IsTerminal(t *testing.T) {
	assert := assert.New(t)

	term, ok := IsTerminal("'abc'")
	assert.True(ok)
	assert.Equal("abc", term)

	term, ok = IsTerminal("''")
	assert.True(ok)
	assert.Equal("", term)

	_, ok = IsTerminal("<S>")
	assert.False(ok)
}

func Test_IsNonTerminal(t *testing.T) {
	assert := assert.New(t)

	name, ok := IsNonTerminal("<S>")
	assert.True(ok)
	assert.Equal("S", name)

	_, ok = IsNonTerminal("'a'")
	assert.False(ok)
}

func Test_Grammar_AddRule_entryIsFirstKey(t *testing.T) {
	assert := assert.New(t)

	var g Grammar
	g.AddRule("S", Production{"<A>"})
	g.AddRule("A", Production{"'a'"})

	assert.Equal("S", g.Entry)
	assert.Equal([]string{"S", "A"}, g.NonTerminals())
}

func Test_Production_String(t *testing.T) {
	assert := assert.New(t)
	p := Production{"'x'", "<S>"}
	assert.True(strings.Contains(p.String(), "x"))
}
