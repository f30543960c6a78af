/*
Peacock-dump renders a persisted walk file as a human-readable derivation,
or renders a grammar's automaton as a table of non-terminals and
alternatives, using the in-process runtime interpreter rather than a
compiled emitted target.

Usage:

	peacock-dump [flags] GRAMMAR_FILE [WALK_FILE]

If WALK_FILE is omitted and --text is not given, peacock-dump prints the
automaton table for GRAMMAR_FILE and exits.

The flags are:

	-v, --version
		Give the current version of Peacock and then exit.

	-t, --text TEXT
		Unparse TEXT against the grammar and print the recovered walk, instead
		of dumping a walk file. WALK_FILE is ignored when this is given.
*/
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dekarrin/peacock/internal/automaton"
	"github.com/dekarrin/peacock/internal/grammar"
	"github.com/dekarrin/peacock/internal/pkerrors"
	"github.com/dekarrin/peacock/internal/runtime"
	"github.com/dekarrin/peacock/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates bad or missing arguments.
	ExitUsageError

	// ExitGrammarError indicates a problem loading/normalizing/building the
	// grammar.
	ExitGrammarError

	// ExitWalkError indicates the walk file could not be read or decoded.
	ExitWalkError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	matchText   *string = pflag.StringP("text", "t", "", "Unparse this text against the grammar instead of dumping a walk file")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	args := pflag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "USAGE: peacock-dump [flags] GRAMMAR_FILE [WALK_FILE]\n")
		returnCode = ExitUsageError
		return
	}

	aut, err := loadAutomaton(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		if kind, ok := pkerrors.KindOf(err); ok {
			fmt.Fprintf(os.Stderr, "  (%s)\n", kind)
		}
		returnCode = ExitGrammarError
		return
	}

	it := runtime.NewInterpreter(aut)

	switch {
	case *matchText != "":
		buf := make([]uint64, 4096)
		n := it.UnparseSequence(buf, len(buf), []byte(*matchText))
		if n == 0 {
			fmt.Printf("no derivation matches %q\n", *matchText)
			return
		}
		fmt.Printf("walk: %v\n", buf[:n])

	case len(args) >= 2:
		f, ferr := os.Open(args[1])
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", ferr.Error())
			returnCode = ExitWalkError
			return
		}
		defer f.Close()

		walk, derr := runtime.DecodeRaw(f)
		if derr != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", derr.Error())
			returnCode = ExitWalkError
			return
		}

		out := make([]byte, 1<<20)
		written := it.SerializeSequence(walk.Slots(), walk.Len, out)
		fmt.Printf("walk:   %v\n", walk.Slots())
		fmt.Printf("output: %q\n", string(out[:written]))

	default:
		fmt.Print(aut.String())
	}
}

func loadAutomaton(path string) (automaton.Automaton, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return automaton.Automaton{}, pkerrors.IOf(err, "read grammar file %q", path)
	}

	g, err := grammar.Load(bytes.NewReader(src), grammar.Sniff(src))
	if err != nil {
		return automaton.Automaton{}, err
	}

	n, err := grammar.Normalize(g)
	if err != nil {
		return automaton.Automaton{}, err
	}
	for _, w := range n.Warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w.Error())
	}

	return automaton.Build(n)
}
