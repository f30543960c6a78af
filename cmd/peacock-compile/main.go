/*
Peacock-compile reads a grammar file and emits a single self-contained Go
source file implementing the grammar's walk/mutate/serialize/unparse
automaton.

Usage:

	peacock-compile [flags] GRAMMAR_FILE

The flags are:

	-v, --version
		Give the current version of Peacock and then exit.

	-o, --out FILE
		Write the emitted Go source to FILE instead of stdout.

	-p, --package NAME
		Package clause of the emitted file. Defaults to "fuzztarget".

	-e, --exported
		Capitalize the four emitted entry-point identifiers.

	-s, --seed SEED
		Embed a compile-time literal RNG seed.

	-m, --multithreaded
		Wrap the emitted RNG state in a sync.Mutex.

	--disable-rand
		Omit the generated RNG; the caller must supply a RandSource function.

	--disable-seed
		Omit the generated seed-setting entry point.

	--trace
		Emit a log.Printf at the entry of every generated procedure.
*/
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dekarrin/peacock/internal/automaton"
	"github.com/dekarrin/peacock/internal/codegen"
	"github.com/dekarrin/peacock/internal/grammar"
	"github.com/dekarrin/peacock/internal/pkerrors"
	"github.com/dekarrin/peacock/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates bad or missing arguments.
	ExitUsageError

	// ExitGrammarError indicates an unsuccessful load/normalize/build of the
	// input grammar.
	ExitGrammarError

	// ExitEmitError indicates the emitted source could not be produced or
	// written.
	ExitEmitError
)

var (
	returnCode        int     = ExitSuccess
	flagVersion       *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	outFile           *string = pflag.StringP("out", "o", "", "Write the emitted Go source to this file instead of stdout")
	pkgName           *string = pflag.StringP("package", "p", "fuzztarget", "Package clause of the emitted file")
	exported          *bool   = pflag.BoolP("exported", "e", false, "Capitalize the emitted entry-point identifiers")
	seed              *uint64 = pflag.Uint64P("seed", "s", 0, "Embed a compile-time literal RNG seed")
	multithreaded     *bool   = pflag.BoolP("multithreaded", "m", false, "Wrap the emitted RNG state in a sync.Mutex")
	disableRand       *bool   = pflag.Bool("disable-rand", false, "Omit the generated RNG")
	disableSeedOutput *bool   = pflag.Bool("disable-seed", false, "Omit the generated seed-setting entry point")
	trace             *bool   = pflag.Bool("trace", false, "Emit a log.Printf at the entry of every generated procedure")
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
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "USAGE: peacock-compile [flags] GRAMMAR_FILE\n")
		returnCode = ExitUsageError
		return
	}

	aut, hash, err := loadAndBuild(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		if kind, ok := pkerrors.KindOf(err); ok {
			fmt.Fprintf(os.Stderr, "  (%s)\n", kind)
		}
		returnCode = ExitGrammarError
		return
	}

	opts := codegen.Options{
		Package:       *pkgName,
		Exported:      *exported,
		Multithreaded: *multithreaded,
		DisableRand:   *disableRand,
		DisableSeed:   *disableSeedOutput,
		Trace:         *trace,
	}
	if pflag.CommandLine.Changed("seed") {
		s := *seed
		opts.Seed = &s
	}

	out := os.Stdout
	if *outFile != "" {
		f, ferr := os.Create(*outFile)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", ferr.Error())
			returnCode = ExitEmitError
			return
		}
		defer f.Close()
		out = f
	}

	if err := codegen.Emit(out, aut, opts, hash); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitEmitError
		return
	}
}

func loadAndBuild(path string) (automaton.Automaton, string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return automaton.Automaton{}, "", pkerrors.IOf(err, "read grammar file %q", path)
	}

	g, err := grammar.Load(bytes.NewReader(src), grammar.Sniff(src))
	if err != nil {
		return automaton.Automaton{}, "", err
	}

	n, err := grammar.Normalize(g)
	if err != nil {
		return automaton.Automaton{}, "", err
	}
	for _, w := range n.Warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w.Error())
	}

	aut, err := automaton.Build(n)
	if err != nil {
		return automaton.Automaton{}, "", err
	}

	hash := codegen.HashGrammar(src)
	return aut, hash, nil
}
