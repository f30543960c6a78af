// Package automaton builds the flat, pointer-free automaton description that
// the code emitter and runtime interpreter both walk: for each non-terminal,
// an ordered list of alternatives; for each alternative, an ordered list of
// steps, each either a literal byte run or a reference to another
// non-terminal by integer identifier.
package automaton

import (
	"fmt"

	"github.com/dekarrin/peacock/internal/grammar"
)

// StepKind tags a Step as a literal byte run or a non-terminal reference.
type StepKind int

const (
	StepLiteral StepKind = iota
	StepNonTerminal
)

// Step is one element of an Alternative.
type Step struct {
	Kind    StepKind
	Literal []byte
	NonTerm int // procedure identity, valid when Kind == StepNonTerminal
}

// Alternative is one production of a non-terminal, already assigned its
// stable zero-based alternative index (its position in NonTerminal.Alts).
type Alternative struct {
	Steps []Step
}

// NonTerminal is one procedure identity: a name, its dense id, and its
// ordered alternatives. Alts[k] is the alternative chosen when a walk slot
// holds index k.
type NonTerminal struct {
	Name string
	ID   int
	Alts []Alternative
}

// Automaton is the complete build-time description consumed by the code
// emitter and the runtime interpreter. NonTerminals is indexed by procedure
// identity, so NonTerminals[id].ID == id always.
type Automaton struct {
	Entry       int
	NonTerminals []NonTerminal
}

// NumAlternatives returns the number of alternatives non-terminal id has,
// i.e. the exclusive upper bound on a valid walk slot value at that id's
// decision points.
func (a Automaton) NumAlternatives(id int) int {
	return len(a.NonTerminals[id].Alts)
}

// Build converts a Normalized grammar into an Automaton description. Every
// production becomes one Alternative at the index it already holds in the
// Normalized form (Normalize preserves source order, which is this
// component's alternative-index space), and every Symbol becomes one Step.
func Build(n grammar.Normalized) (Automaton, error) {
	aut := Automaton{
		Entry:       n.Entry,
		NonTerminals: make([]NonTerminal, len(n.Rules)),
	}

	for id, rule := range n.Rules {
		nt := NonTerminal{Name: rule.Name, ID: id}

		for _, prod := range rule.Productions {
			alt := Alternative{}
			for _, sym := range prod {
				switch sym.Kind {
				case grammar.SymTerminal:
					alt.Steps = append(alt.Steps, Step{Kind: StepLiteral, Literal: sym.Bytes})
				case grammar.SymNonTerminal:
					if sym.Ref < 0 || sym.Ref >= len(n.Rules) {
						return Automaton{}, fmt.Errorf("automaton: non-terminal %q references out-of-range id %d", rule.Name, sym.Ref)
					}
					alt.Steps = append(alt.Steps, Step{Kind: StepNonTerminal, NonTerm: sym.Ref})
				}
			}
			nt.Alts = append(nt.Alts, alt)
		}

		if len(nt.Alts) == 0 {
			return Automaton{}, fmt.Errorf("automaton: non-terminal %q has no alternatives", rule.Name)
		}

		aut.NonTerminals[id] = nt
	}

	return aut, nil
}
