/*
Peacock-merge combines one or more secondary grammar files into a primary
grammar, namespacing non-terminals contributed by each secondary file, and
can transcode between the Peacock and Gramatron JSON dialects.

Usage:

	peacock-merge [flags] PRIMARY_FILE [SECONDARY_FILE...]

The flags are:

	-v, --version
		Give the current version of Peacock and then exit.

	-o, --out FILE
		Write the merged/converted grammar to FILE instead of stdout.

	-d, --dialect DIALECT
		Output dialect: "peacock" (default) or "gramatron".
*/
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

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

	// ExitGrammarError indicates a problem loading, normalizing, or merging
	// one of the input grammars.
	ExitGrammarError

	// ExitIOError indicates the merged output could not be written.
	ExitIOError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	outFile     *string = pflag.StringP("out", "o", "", "Write the merged grammar to this file instead of stdout")
	dialectFlag *string = pflag.StringP("dialect", "d", "peacock", `Output dialect: "peacock" or "gramatron"`)
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
		fmt.Fprintf(os.Stderr, "USAGE: peacock-merge [flags] PRIMARY_FILE [SECONDARY_FILE...]\n")
		returnCode = ExitUsageError
		return
	}

	primary, err := loadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}

	var secondaries []grammar.Grammar
	var labels []string
	for _, path := range args[1:] {
		g, err := loadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitGrammarError
			return
		}
		secondaries = append(secondaries, g)
		labels = append(labels, baseNameNoExt(path))
	}

	merged, err := grammar.Merge(primary, secondaries, labels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		if kind, ok := pkerrors.KindOf(err); ok {
			fmt.Fprintf(os.Stderr, "  (%s)\n", kind)
		}
		returnCode = ExitGrammarError
		return
	}

	out := os.Stdout
	if *outFile != "" {
		f, ferr := os.Create(*outFile)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", ferr.Error())
			returnCode = ExitIOError
			return
		}
		defer f.Close()
		out = f
	}

	switch *dialectFlag {
	case "gramatron":
		err = grammar.WriteGramatron(out, merged)
	default:
		err = grammar.WritePeacock(out, merged)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitIOError
		return
	}
}

func loadFile(path string) (grammar.Grammar, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return grammar.Grammar{}, pkerrors.IOf(err, "read grammar file %q", path)
	}
	return grammar.Load(bytes.NewReader(src), grammar.Sniff(src))
}

func baseNameNoExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
