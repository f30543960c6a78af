/*
Peacock-repl loads a grammar and lets an operator interactively drive the
in-process runtime interpreter: generate a random walk, serialize a walk to
bytes, unparse bytes back to a walk, or dump the automaton table.

Usage:

	peacock-repl [flags] GRAMMAR_FILE

The flags are:

	-v, --version
		Give the current version of Peacock and then exit.

Once started, the following commands are accepted:

	generate
		Mutate-extend an empty walk and print the resulting walk and its
		serialized bytes.

	serialize N,N,N...
		Serialize the given comma-separated alternative indices.

	unparse TEXT
		Find a walk (if any) that derives TEXT, and print it.

	dump
		Print the automaton's non-terminal/alternative table.

	quit
		Exit the shell.
*/
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
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

	// ExitShellError indicates the interactive shell could not be started.
	ExitShellError
)

var (
	returnCode  int   = ExitSuccess
	flagVersion *bool = pflag.BoolP("version", "v", false, "Gives the version info")
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
		fmt.Fprintf(os.Stderr, "USAGE: peacock-repl [flags] GRAMMAR_FILE\n")
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

	rl, err := readline.NewEx(&readline.Config{Prompt: "peacock> "})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: create readline config: %s\n", err.Error())
		returnCode = ExitShellError
		return
	}
	defer rl.Close()

	it := runtime.NewInterpreter(aut)
	runShell(rl, it, aut)
}

func runShell(rl *readline.Instance, it *runtime.Interpreter, aut automaton.Automaton) {
	for {
		line, err := rl.Readline()
		if err != nil {
			if err != io.EOF && err != readline.ErrInterrupt {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		cmd := fields[0]
		var rest string
		if len(fields) > 1 {
			rest = strings.TrimSpace(fields[1])
		}

		switch cmd {
		case "quit", "exit":
			return
		case "dump":
			fmt.Print(aut.String())
		case "generate":
			handleGenerate(it)
		case "serialize":
			handleSerialize(it, rest)
		case "unparse":
			handleUnparse(it, rest)
		default:
			fmt.Printf("unrecognized command %q; try generate, serialize, unparse, dump, quit\n", cmd)
		}
	}
}

func handleGenerate(it *runtime.Interpreter) {
	buf := make([]uint64, 4096)
	length := it.MutateSequence(buf, 0, len(buf))
	out := make([]byte, 1<<16)
	written := it.SerializeSequence(buf[:length], length, out)
	fmt.Printf("walk: %v\n", buf[:length])
	fmt.Printf("text: %q\n", string(out[:written]))
}

func handleSerialize(it *runtime.Interpreter, arg string) {
	if arg == "" {
		fmt.Println("usage: serialize N,N,N...")
		return
	}

	parts := strings.Split(arg, ",")
	seq := make([]uint64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			fmt.Printf("invalid index %q: %s\n", p, err.Error())
			return
		}
		seq[i] = n
	}

	out := make([]byte, 1<<16)
	written := it.SerializeSequence(seq, len(seq), out)
	fmt.Printf("text: %q\n", string(out[:written]))
}

func handleUnparse(it *runtime.Interpreter, text string) {
	if text == "" {
		fmt.Println("usage: unparse TEXT")
		return
	}

	buf := make([]uint64, 4096)
	n := it.UnparseSequence(buf, len(buf), []byte(text))
	if n == 0 {
		fmt.Printf("no derivation matches %q\n", text)
		return
	}
	fmt.Printf("walk: %v\n", buf[:n])
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
