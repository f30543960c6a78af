package grammar

import (
	"strconv"

	"github.com/dekarrin/peacock/internal/pkerrors"
)

// SymbolKind tags a Symbol as either a terminal byte run or a reference to
// another non-terminal.
type SymbolKind int

const (
	SymTerminal SymbolKind = iota
	SymNonTerminal
)

// Symbol is an interned, post-coalescing element of a production: either an
// opaque terminal byte string (Bytes, possibly empty for ε) or the integer
// identifier of another non-terminal (Ref).
type Symbol struct {
	Kind  SymbolKind
	Bytes []byte
	Ref   int
}

func (s Symbol) String() string {
	if s.Kind == SymTerminal {
		return "'" + string(s.Bytes) + "'"
	}
	return "<#" + strconv.Itoa(s.Ref) + ">"
}

// NormalizedRule is one non-terminal's interned, coalesced production list.
// Production order is preserved from the source grammar; it is the trial
// order the unparse emitter commits to.
type NormalizedRule struct {
	Name        string
	Productions [][]Symbol
}

// Normalized is the output of Normalize: an interned, reachability-pruned,
// terminal-coalesced grammar ready for the automaton builder. Non-terminal
// identifiers are dense zero-based indices into Rules, assigned in the order
// non-terminals are first discovered from the entry non-terminal outward.
type Normalized struct {
	Entry int
	Rules []NormalizedRule

	// Warnings holds non-fatal GrammarUnproductive diagnostics. A Normalize
	// call that returns a nil error may still have Warnings.
	Warnings []error
}

// NameOf returns the source non-terminal name for an interned id.
func (n Normalized) NameOf(id int) string {
	return n.Rules[id].Name
}

// Normalize runs the five normalization phases over a raw Grammar: interning,
// reachability pruning (fatal GrammarReference on a dangling reference),
// terminal coalescing, prefix-disambiguation bookkeeping (a no-op beyond
// preserving source order, since that order IS the trial order), and a
// non-fatal productivity check.
func Normalize(g Grammar) (Normalized, error) {
	if err := g.Validate(); err != nil {
		return Normalized{}, err
	}

	ids := map[string]int{}
	var order []string

	// Phase 1+2: intern via forward reachability closure from the entry
	// non-terminal, discovering ids in BFS visitation order. A reference to
	// an undefined non-terminal is a fatal GrammarReference.
	queue := []string{g.Entry}
	ids[g.Entry] = 0
	order = append(order, g.Entry)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		r, ok := g.Rule(name)
		if !ok {
			return Normalized{}, pkerrors.Referencef("non-terminal %q has no rule", name)
		}

		for _, prod := range r.Productions {
			for _, sym := range prod {
				if ref, ok := IsNonTerminal(sym); ok {
					if _, seen := ids[ref]; !seen {
						ids[ref] = len(order)
						order = append(order, ref)
						queue = append(queue, ref)
					}
				}
			}
		}
	}

	rules := make([]NormalizedRule, len(order))
	for id, name := range order {
		r, ok := g.Rule(name)
		if !ok {
			return Normalized{}, pkerrors.Referencef("non-terminal %q has no rule", name)
		}

		nr := NormalizedRule{Name: name}
		for _, prod := range r.Productions {
			sym, err := coalesce(prod, ids, name)
			if err != nil {
				return Normalized{}, err
			}
			nr.Productions = append(nr.Productions, sym)
		}
		rules[id] = nr
	}

	out := Normalized{Entry: 0, Rules: rules}

	if !hasBoundedDerivation(out, out.Entry, 64) {
		out.Warnings = append(out.Warnings, pkerrors.Unproductivef(
			"entry non-terminal %q has no finite derivation within bounded-depth expansion", g.Entry))
	}

	return out, nil
}

// coalesce converts a raw production's symbol strings into interned Symbols,
// merging adjacent terminals (Phase 3) and referencing a dangling
// non-terminal is rejected with GrammarReference. An empty terminal vanishes
// during merging unless it's the only symbol, in which case it is kept as
// the ε marker.
func coalesce(prod Production, ids map[string]int, owner string) ([]Symbol, error) {
	var out []Symbol
	var pending []byte
	havePending := false

	flush := func() {
		if havePending && len(pending) > 0 {
			out = append(out, Symbol{Kind: SymTerminal, Bytes: pending})
			pending = nil
			havePending = false
		}
	}

	for _, raw := range prod {
		if term, ok := IsTerminal(raw); ok {
			pending = append(pending, []byte(term)...)
			havePending = true
			continue
		}
		if ref, ok := IsNonTerminal(raw); ok {
			flush()
			id, known := ids[ref]
			if !known {
				return nil, pkerrors.Referencef("non-terminal %q (referenced from %q) has no rule", ref, owner)
			}
			out = append(out, Symbol{Kind: SymNonTerminal, Ref: id})
			continue
		}
		return nil, pkerrors.Shapef("symbol %q in %q is neither a quoted terminal nor a bracketed non-terminal", raw, owner)
	}
	flush()

	if len(out) == 0 {
		// the whole production coalesced away to nothing but was non-empty
		// in source (all-epsilon); retain a single empty terminal as the ε
		// marker.
		out = append(out, Symbol{Kind: SymTerminal, Bytes: nil})
	}

	return out, nil
}

// hasBoundedDerivation reports whether non-terminal id has at least one
// production reachable without unbounded recursion, checked by attempting a
// depth-first expansion capped at maxDepth. It is a heuristic productivity
// check (Phase 5), not a full fixpoint computation: a grammar that is
// productive only past maxDepth will be reported as unproductive. That is
// intentional — the spec defines this as a warning, not a correctness gate,
// and a capacity-limited walk terminates regardless.
func hasBoundedDerivation(n Normalized, id, maxDepth int) bool {
	visiting := map[int]bool{}
	var reaches func(id, depth int) bool
	reaches = func(id, depth int) bool {
		if depth > maxDepth {
			return false
		}
		if visiting[id] {
			return false
		}
		visiting[id] = true
		defer delete(visiting, id)

		for _, prod := range n.Rules[id].Productions {
			ok := true
			for _, sym := range prod {
				if sym.Kind == SymNonTerminal {
					if !reaches(sym.Ref, depth+1) {
						ok = false
						break
					}
				}
			}
			if ok {
				return true
			}
		}
		return false
	}
	return reaches(id, 0)
}
