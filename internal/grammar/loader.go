package grammar

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/dekarrin/peacock/internal/pkerrors"
)

// Dialect identifies which of the two accepted JSON dialects a grammar file
// is written in.
type Dialect int

const (
	// DialectAuto asks Load to sniff the dialect from the document: the
	// presence of a top-level "Start" key implies Gramatron.
	DialectAuto Dialect = iota
	DialectPeacock
	DialectGramatron
)

// gramatronDoc mirrors the explicit-field Gramatron JSON shape: Start names
// the entry non-terminal, NonTerminals and Terminals are declared symbol
// tables, and Rules maps non-terminal name to a list of productions, each
// production a list of raw symbol strings in the same quoted/bracketed
// notation as the Peacock dialect.
type gramatronDoc struct {
	Start        string              `json:"Start"`
	NonTerminals []string            `json:"NonTerminals"`
	Terminals    []string            `json:"Terminals"`
	Rules        map[string][][]string `json:"Rules"`
}

// Sniff inspects raw grammar source and reports which dialect it appears to
// be written in, without fully parsing it. Gramatron documents are
// comment-free JSON with a top-level "Start" key; anything else is treated
// as the (comment-tolerant) Peacock dialect.
func Sniff(src []byte) Dialect {
	var probe struct {
		Start *string `json:"Start"`
	}
	if err := json.Unmarshal(src, &probe); err == nil && probe.Start != nil {
		return DialectGramatron
	}
	return DialectPeacock
}

// Load reads grammar source in the requested dialect (or autodetects it when
// dialect is DialectAuto) and produces a raw Grammar. It does not normalize:
// callers should pass the result to Normalize before building an automaton.
func Load(r io.Reader, dialect Dialect) (Grammar, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return Grammar{}, pkerrors.WrapSyntax(err, "reading grammar source")
	}

	if dialect == DialectAuto {
		dialect = Sniff(src)
	}

	switch dialect {
	case DialectGramatron:
		return loadGramatron(src)
	default:
		return loadPeacock(src)
	}
}

// loadPeacock parses the comment-tolerant Peacock dialect: an object whose
// keys are `<NonTerminal>` names and whose values are arrays of productions,
// each production an array of quoted-terminal or angle-bracketed-non-terminal
// symbol strings. Key order is preserved via json.Decoder's token stream
// since encoding/json's map unmarshaling does not preserve order.
func loadPeacock(src []byte) (Grammar, error) {
	stripped, err := stripComments(src)
	if err != nil {
		return Grammar{}, err
	}

	order, raw, err := decodeOrderedObject(stripped)
	if err != nil {
		return Grammar{}, err
	}

	var g Grammar
	for _, key := range order {
		name, ok := IsNonTerminal(key)
		if !ok {
			return Grammar{}, pkerrors.Shapef("key %q is not an angle-bracketed non-terminal", key)
		}

		var prods [][]string
		if err := json.Unmarshal(raw[key], &prods); err != nil {
			return Grammar{}, pkerrors.WrapSyntax(err, "production list for %q", key)
		}
		if len(prods) == 0 {
			return Grammar{}, pkerrors.Shapef("non-terminal %q has zero productions", name)
		}

		for _, p := range prods {
			if len(p) == 0 {
				return Grammar{}, pkerrors.Shapef("non-terminal %q has an empty production", name)
			}
			for _, sym := range p {
				if _, ok := IsTerminal(sym); ok {
					continue
				}
				if _, ok := IsNonTerminal(sym); ok {
					continue
				}
				return Grammar{}, pkerrors.Shapef("symbol %q in %q is neither a quoted terminal nor a bracketed non-terminal", sym, name)
			}
			g.AddRule(name, Production(p))
		}
	}

	if g.Len() == 0 {
		return Grammar{}, pkerrors.Emptyf("grammar has no rules")
	}

	return g, nil
}

// loadGramatron parses the explicit-field Gramatron dialect. Comments are
// not permitted in this dialect, so the source is handed to encoding/json
// verbatim.
func loadGramatron(src []byte) (Grammar, error) {
	var doc gramatronDoc
	if err := json.Unmarshal(src, &doc); err != nil {
		return Grammar{}, pkerrors.WrapSyntax(err, "parsing Gramatron document")
	}
	if doc.Start == "" {
		return Grammar{}, pkerrors.Shapef("Gramatron document missing Start")
	}
	if len(doc.Rules) == 0 {
		return Grammar{}, pkerrors.Emptyf("Gramatron document has no rules")
	}

	// Rules is an unordered map; order the non-terminals deterministically
	// with Start first so the entry non-terminal and iteration order both
	// behave predictably downstream.
	names := make([]string, 0, len(doc.Rules))
	for name := range doc.Rules {
		if name != doc.Start {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{doc.Start}, names...)

	var g Grammar
	for _, name := range names {
		prods, ok := doc.Rules[name]
		if !ok {
			continue
		}
		if len(prods) == 0 {
			return Grammar{}, pkerrors.Shapef("non-terminal %q has zero productions", name)
		}
		for _, p := range prods {
			if len(p) == 0 {
				return Grammar{}, pkerrors.Shapef("non-terminal %q has an empty production", name)
			}
			for _, sym := range p {
				if _, ok := IsTerminal(sym); ok {
					continue
				}
				if _, ok := IsNonTerminal(sym); ok {
					continue
				}
				return Grammar{}, pkerrors.Shapef("symbol %q in %q is neither a quoted terminal nor a bracketed non-terminal", sym, name)
			}
			g.AddRule(name, Production(p))
		}
	}
	g.Entry = doc.Start

	return g, nil
}

// stripComments removes JavaScript-style `//` line comments and `/* */`
// block comments from JSON source, honoring string literals so that a `//`
// or `/*` inside a quoted string is left untouched. Returns GrammarSyntax on
// an unterminated block comment.
func stripComments(src []byte) ([]byte, error) {
	var out strings.Builder
	out.Grow(len(src))

	inString := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		if inString {
			out.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			out.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(src) && src[i+1] == '/' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out.WriteByte('\n')
			}
			continue
		}

		if c == '/' && i+1 < len(src) && src[i+1] == '*' {
			i += 2
			closed := false
			for i+1 < len(src) {
				if src[i] == '*' && src[i+1] == '/' {
					i += 2
					closed = true
					break
				}
				if src[i] == '\n' {
					out.WriteByte('\n')
				}
				i++
			}
			if !closed {
				return nil, pkerrors.Syntaxf("unterminated block comment")
			}
			i-- // compensate for the loop's i++
			continue
		}

		out.WriteByte(c)
	}

	if inString {
		return nil, pkerrors.Syntaxf("unterminated string literal")
	}

	return []byte(out.String()), nil
}

// decodeOrderedObject decodes a top-level JSON object and returns its keys in
// source order alongside their still-encoded values, since encoding/json's
// map decoding does not preserve key order and the Peacock dialect relies on
// first-key-is-entry-non-terminal ordering.
func decodeOrderedObject(src []byte) (order []string, raw map[string]json.RawMessage, err error) {
	dec := json.NewDecoder(strings.NewReader(string(src)))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, pkerrors.WrapSyntax(err, "reading grammar object")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, pkerrors.Shapef("grammar document is not a JSON object")
	}

	raw = map[string]json.RawMessage{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, pkerrors.WrapSyntax(err, "reading grammar key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, pkerrors.Shapef("grammar object has a non-string key")
		}

		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, nil, pkerrors.WrapSyntax(err, "reading value for %q", key)
		}

		order = append(order, key)
		raw[key] = val
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, pkerrors.WrapSyntax(err, "reading closing brace")
	}

	return order, raw, nil
}
