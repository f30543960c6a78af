package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/dekarrin/peacock/internal/automaton"
)

type stepView struct {
	IsLiteral   bool
	LiteralGo   string // Go-quoted string literal, exact byte value round-trips
	LiteralLen  int
	NonTermFunc string
}

type altView struct {
	Index int
	Steps []stepView
}

type ntView struct {
	FuncName string // sanitized identifier suffix shared by generate_/serialize_/unparse_
	NumAlts  int
	Alts     []altView
}

type fileView struct {
	Package       string
	Hash          string
	Exported      bool
	Multithreaded bool
	Trace         bool
	DisableRand   bool
	DisableSeed   bool
	SeedLiteral   string // "0" when no compile-time seed, else the literal value (a seed of 0 is coerced like SeedGenerator does)
	HasSeed       bool
	EntryFunc     string
	NonTerminals  []ntView

	FnSeedGenerator      string
	FnMutateSequence     string
	FnSerializeSequence  string
	FnUnparseSequence    string
}

// Emit writes a single self-contained Go source file implementing aut's
// walk/mutate/serialize/unparse semantics to w, per opts. The written bytes
// are always gofmt-clean Go source; a formatting failure indicates a bug in
// this package's templates, not in the caller's grammar.
func Emit(w io.Writer, aut automaton.Automaton, opts Options, grammarHash string) error {
	view, err := buildFileView(aut, opts, grammarHash)
	if err != nil {
		return err
	}

	tmpl, err := template.New("emitted").Funcs(templateFuncs).Parse(emittedFileTemplate)
	if err != nil {
		return fmt.Errorf("codegen: internal template error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return fmt.Errorf("codegen: executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("codegen: generated source failed to gofmt (template bug): %w\n---\n%s", err, buf.String())
	}

	_, err = w.Write(formatted)
	return err
}

func buildFileView(aut automaton.Automaton, opts Options, grammarHash string) (fileView, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = "fuzztarget"
	}

	names := make([]string, len(aut.NonTerminals))
	used := map[string]int{}
	for _, nt := range aut.NonTerminals {
		base := sanitizeIdent(nt.Name)
		name := base
		for used[name] > 0 {
			used[base]++
			name = fmt.Sprintf("%s_%d", base, used[base])
		}
		used[name]++
		names[nt.ID] = name
	}

	view := fileView{
		Package:       pkg,
		Hash:          grammarHash,
		Exported:      opts.Exported,
		Multithreaded: opts.Multithreaded,
		Trace:         opts.Trace,
		DisableRand:   opts.DisableRand,
		DisableSeed:   opts.DisableSeed,
		EntryFunc:     names[aut.Entry],
	}

	if opts.Seed != nil {
		view.HasSeed = true
		view.SeedLiteral = strconv.FormatUint(*opts.Seed, 10)
		if *opts.Seed == 0 {
			// same zero-seed coercion as the generated seed function and
			// runtime.RNG.Seed; a zero xorshift state never leaves zero.
			view.SeedLiteral = "0x9E3779B97F4A7C15"
		}
	} else {
		view.SeedLiteral = "0"
	}

	view.FnSeedGenerator = entryName("SeedGenerator", opts.Exported)
	view.FnMutateSequence = entryName("MutateSequence", opts.Exported)
	view.FnSerializeSequence = entryName("SerializeSequence", opts.Exported)
	view.FnUnparseSequence = entryName("UnparseSequence", opts.Exported)

	for _, nt := range aut.NonTerminals {
		nv := ntView{FuncName: names[nt.ID], NumAlts: len(nt.Alts)}
		for altIdx, alt := range nt.Alts {
			av := altView{Index: altIdx}
			for _, step := range alt.Steps {
				if step.Kind == automaton.StepLiteral {
					av.Steps = append(av.Steps, stepView{
						IsLiteral:  true,
						LiteralGo:  strconv.Quote(string(step.Literal)),
						LiteralLen: len(step.Literal),
					})
				} else {
					av.Steps = append(av.Steps, stepView{
						NonTermFunc: names[step.NonTerm],
					})
				}
			}
			nv.Alts = append(nv.Alts, av)
		}
		view.NonTerminals = append(view.NonTerminals, nv)
	}

	return view, nil
}

func entryName(base string, exported bool) string {
	if exported {
		return base
	}
	return strings.ToLower(base[:1]) + base[1:]
}

// sanitizeIdent turns an arbitrary non-terminal name (which may contain the
// "::" merge-namespace separator, or any other grammar-author-chosen bytes)
// into a valid, unexported Go identifier fragment.
func sanitizeIdent(name string) string {
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" {
		out = "anon"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "n" + out
	}
	return out
}

var templateFuncs = template.FuncMap{
	"add1": func(i int) int { return i + 1 },
}
