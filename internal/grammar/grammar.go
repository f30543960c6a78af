// Package grammar holds the raw and normalized representation of a
// context-free grammar, along with the loader and normalizer that turn
// grammar source text into the form the automaton builder consumes.
package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/peacock/internal/pkerrors"
)

// Production is an ordered sequence of symbol strings as they appear on a
// rule's right-hand side, prior to interning. A quoted string (including the
// empty string `''`) is a terminal; an angle-bracketed string is a
// non-terminal reference.
type Production []string

// Equal reports whether p and o hold the same symbols in the same order.
func (p Production) Equal(o Production) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

func (p Production) String() string {
	return strings.Join([]string(p), " ")
}

// Rule is a non-terminal name paired with its ordered alternatives.
// Production order is source order and defines the rule's alternative-index
// space: Productions[k] is alternative k.
type Rule struct {
	NonTerminal string
	Productions []Production
}

// Grammar is a raw, uninterned context-free grammar as loaded from source:
// an insertion-ordered mapping of non-terminal name to Rule, plus the name of
// the entry non-terminal.
type Grammar struct {
	Entry string

	order []string
	rules map[string]Rule
}

// AddRule appends a production to the named non-terminal's rule, creating the
// rule (and recording it as the entry non-terminal if it is the first rule
// added) if this is the first production seen for that name.
func (g *Grammar) AddRule(nonTerminal string, prod Production) {
	if g.rules == nil {
		g.rules = map[string]Rule{}
	}
	r, ok := g.rules[nonTerminal]
	if !ok {
		g.order = append(g.order, nonTerminal)
		r = Rule{NonTerminal: nonTerminal}
		if g.Entry == "" {
			g.Entry = nonTerminal
		}
	}
	r.Productions = append(r.Productions, prod)
	g.rules[nonTerminal] = r
}

// Rule returns the rule for the given non-terminal and whether it exists.
func (g Grammar) Rule(nonTerminal string) (Rule, bool) {
	r, ok := g.rules[nonTerminal]
	return r, ok
}

// NonTerminals returns the non-terminal names in the order they were first
// added.
func (g Grammar) NonTerminals() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of distinct non-terminals in the grammar.
func (g Grammar) Len() int {
	return len(g.order)
}

// Validate checks the structural invariants from the data model: at least
// one rule, every rule has at least one production, the entry non-terminal is
// present, and every production is non-empty. It does not check reachability
// of referenced non-terminals; that is the Normalizer's job, since pruning
// unreached rules happens first.
func (g Grammar) Validate() error {
	if g.Len() == 0 {
		return pkerrors.Emptyf("grammar has no rules")
	}
	if g.Entry == "" {
		return pkerrors.Shapef("grammar has no entry non-terminal")
	}
	if _, ok := g.rules[g.Entry]; !ok {
		return pkerrors.Shapef("entry non-terminal %q has no rule", g.Entry)
	}
	for _, name := range g.order {
		r := g.rules[name]
		if len(r.Productions) == 0 {
			return pkerrors.Shapef("non-terminal %q has zero productions", name)
		}
		for i, p := range r.Productions {
			if len(p) == 0 {
				return pkerrors.Shapef("non-terminal %q production %d is empty", name, i)
			}
		}
	}
	return nil
}

func (g Grammar) String() string {
	var sb strings.Builder
	for _, name := range g.order {
		r := g.rules[name]
		fmt.Fprintf(&sb, "<%s> ::=\n", name)
		for i, p := range r.Productions {
			fmt.Fprintf(&sb, "  %d: %s\n", i, p)
		}
	}
	return sb.String()
}

// IsTerminal reports whether a raw symbol string denotes a terminal (a
// single-quoted byte string, possibly empty) and returns its decoded bytes.
func IsTerminal(sym string) (term string, ok bool) {
	if len(sym) >= 2 && strings.HasPrefix(sym, "'") && strings.HasSuffix(sym, "'") {
		return sym[1 : len(sym)-1], true
	}
	return "", false
}

// IsNonTerminal reports whether a raw symbol string denotes a non-terminal
// reference (`<name>`) and returns the bare name.
func IsNonTerminal(sym string) (name string, ok bool) {
	if len(sym) >= 2 && strings.HasPrefix(sym, "<") && strings.HasSuffix(sym, ">") {
		return sym[1 : len(sym)-1], true
	}
	return "", false
}
