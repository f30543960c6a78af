package grammar

import (
	"path/filepath"
	"strings"

	"github.com/dekarrin/peacock/internal/pkerrors"
)

// Merge combines a primary grammar with zero or more secondary grammars.
// Non-terminals from a secondary grammar are namespaced with its source
// label (typically the grammar file's base name) joined by "::" to avoid
// colliding with the primary grammar's names, and every reference within that
// secondary grammar's own productions is rewired to the namespaced name. The
// primary grammar's entry non-terminal remains the merged grammar's entry.
//
// labels must have the same length as secondaries and gives the namespace
// prefix for each.
func Merge(primary Grammar, secondaries []Grammar, labels []string) (Grammar, error) {
	if len(secondaries) != len(labels) {
		return Grammar{}, pkerrors.Shapef("merge: %d secondary grammars but %d labels", len(secondaries), len(labels))
	}

	merged := Grammar{}
	for _, name := range primary.NonTerminals() {
		r, _ := primary.Rule(name)
		for _, p := range r.Productions {
			merged.AddRule(name, p)
		}
	}
	merged.Entry = primary.Entry

	for i, sec := range secondaries {
		prefix := namespacePrefix(labels[i])
		for _, name := range sec.NonTerminals() {
			r, _ := sec.Rule(name)
			qualified := prefix + "::" + name
			for _, p := range r.Productions {
				merged.AddRule(qualified, qualifyProduction(p, prefix))
			}
		}
	}

	return merged, merged.Validate()
}

func namespacePrefix(label string) string {
	base := filepath.Base(label)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base
}

func qualifyProduction(p Production, prefix string) Production {
	out := make(Production, len(p))
	for i, sym := range p {
		if name, ok := IsNonTerminal(sym); ok {
			out[i] = "<" + prefix + "::" + name + ">"
			continue
		}
		out[i] = sym
	}
	return out
}

// ConvertDialect re-expresses a normalized grammar as a raw Grammar whose
// production order matches the normalized (post-coalescing) form, suitable
// for writing out in either dialect's encoder. Because its input is already
// normalized, the result needs no second coalescing pass. peacock-merge does
// not call it; it writes the raw merged grammar.
func ConvertDialect(n Normalized) Grammar {
	var g Grammar
	for id, rule := range n.Rules {
		name := rule.Name
		for _, prod := range rule.Productions {
			raw := make(Production, len(prod))
			for i, sym := range prod {
				if sym.Kind == SymTerminal {
					raw[i] = "'" + string(sym.Bytes) + "'"
				} else {
					raw[i] = "<" + n.NameOf(sym.Ref) + ">"
				}
			}
			g.AddRule(name, raw)
		}
		if id == n.Entry {
			g.Entry = name
		}
	}
	return g
}
