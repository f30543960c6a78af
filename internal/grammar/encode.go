package grammar

import (
	"bytes"
	"encoding/json"
	"io"
)

// WritePeacock encodes g in the Peacock dialect: an object whose keys are
// `<NonTerminal>` names in g's insertion order and whose values are
// production arrays. It writes the entry non-terminal's key first regardless
// of insertion order, since the Peacock dialect's "first key is entry"
// convention must hold for the file to round-trip through Load.
func WritePeacock(w io.Writer, g Grammar) error {
	names := orderedWithEntryFirst(g)

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, name := range names {
		r, _ := g.Rule(name)
		enc, err := json.Marshal(productionsAsStrings(r.Productions))
		if err != nil {
			return err
		}
		fprintfKeyVal(&buf, "<"+name+">", string(enc), i == len(names)-1)
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

func fprintfKeyVal(buf *bytes.Buffer, key, encodedVal string, last bool) {
	buf.WriteString("  ")
	keyEnc, _ := json.Marshal(key)
	buf.Write(keyEnc)
	buf.WriteString(": ")
	buf.WriteString(encodedVal)
	if !last {
		buf.WriteString(",")
	}
	buf.WriteString("\n")
}

// WriteGramatron encodes g in the explicit-field Gramatron dialect.
func WriteGramatron(w io.Writer, g Grammar) error {
	doc := gramatronDoc{
		Start: g.Entry,
		Rules: map[string][][]string{},
	}
	for _, name := range g.NonTerminals() {
		r, _ := g.Rule(name)
		doc.NonTerminals = append(doc.NonTerminals, name)
		doc.Rules[name] = productionsAsStrings(r.Productions)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func productionsAsStrings(prods []Production) [][]string {
	out := make([][]string, len(prods))
	for i, p := range prods {
		out[i] = []string(p)
	}
	return out
}

func orderedWithEntryFirst(g Grammar) []string {
	names := g.NonTerminals()
	out := make([]string, 0, len(names))
	out = append(out, g.Entry)
	for _, n := range names {
		if n != g.Entry {
			out = append(out, n)
		}
	}
	return out
}
