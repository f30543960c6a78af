/*
Peacock-fuzz drives a fuzzing campaign over a compiled target: it mutates
walks with the in-process runtime interpreter, serializes each to bytes,
feeds the target a fresh process per test case, and records interesting
walks and crashes to a local corpus store. An optional status HTTP server
exposes corpus/crash counters while the campaign runs.

The forkserver protocol itself (shared-memory coverage maps, the AFL
persistent-mode handshake) is conventional harness plumbing and is not
reimplemented here; this driver instead forks one target process per test
case and classifies the run by its exit signal, which is sufficient to
discover and record crashing inputs.

Usage:

	peacock-fuzz [flags] GRAMMAR_FILE

The flags are:

	-v, --version
		Give the current version of Peacock and then exit.

	-c, --config FILE
		Campaign config TOML file. See internal/config for its shape.

	-n, --iterations N
		Number of mutate/run iterations to perform. 0 (default) runs until
		interrupted.
*/
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"

	"github.com/dekarrin/peacock/internal/automaton"
	"github.com/dekarrin/peacock/internal/config"
	"github.com/dekarrin/peacock/internal/corpus"
	"github.com/dekarrin/peacock/internal/grammar"
	"github.com/dekarrin/peacock/internal/pkerrors"
	"github.com/dekarrin/peacock/internal/runtime"
	"github.com/dekarrin/peacock/internal/statusserver"
	"github.com/dekarrin/peacock/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates bad or missing arguments.
	ExitUsageError

	// ExitConfigError indicates a problem with the campaign config.
	ExitConfigError

	// ExitGrammarError indicates a problem loading/normalizing/building the
	// grammar.
	ExitGrammarError

	// ExitCorpusError indicates the corpus store could not be opened.
	ExitCorpusError
)

var (
	returnCode     int     = ExitSuccess
	flagVersion    *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	configFile     *string = pflag.StringP("config", "c", "", "Campaign config TOML file")
	iterationLimit *int    = pflag.IntP("iterations", "n", 0, "Number of mutate/run iterations; 0 runs until interrupted")
)

var logger = log.New(os.Stderr, "peacock-fuzz: ", log.LstdFlags)

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
		fmt.Fprintf(os.Stderr, "USAGE: peacock-fuzz [flags] GRAMMAR_FILE\n")
		returnCode = ExitUsageError
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Printf("ERROR: %s", err.Error())
		returnCode = ExitConfigError
		return
	}
	if err := cfg.Validate(); err != nil {
		logger.Printf("ERROR: invalid campaign config: %s", err.Error())
		returnCode = ExitConfigError
		return
	}

	aut, err := loadAutomaton(args[0])
	if err != nil {
		logger.Printf("ERROR: %s", err.Error())
		if kind, ok := pkerrors.KindOf(err); ok {
			logger.Printf("  (%s)", kind)
		}
		returnCode = ExitGrammarError
		return
	}

	if err := os.MkdirAll(cfg.CorpusDir, 0770); err != nil {
		logger.Printf("ERROR: create corpus dir: %s", err.Error())
		returnCode = ExitCorpusError
		return
	}
	store, err := corpus.Open(cfg.CorpusDir)
	if err != nil {
		logger.Printf("ERROR: open corpus store: %s", err.Error())
		returnCode = ExitCorpusError
		return
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.StatusAddr != "" {
		srv := statusserver.New(cfg.StatusAddr, func() statusserver.Counters {
			wc, _ := store.Walks().Count(ctx)
			cc, _ := store.Crashes().Count(ctx)
			return statusserver.Counters{CorpusSize: wc, CrashCount: cc}
		})
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				logger.Printf("status server: %s", err.Error())
			}
		}()
		logger.Printf("status server listening on %s", cfg.StatusAddr)
	}

	it := runtime.NewInterpreter(aut)
	if cfg.Seed != 0 {
		it.SeedGenerator(cfg.Seed)
	}

	runCampaign(ctx, it, cfg, store)
}

func runCampaign(ctx context.Context, it *runtime.Interpreter, cfg config.Campaign, store *corpus.Store) {
	buf := make([]uint64, cfg.Capacity)
	out := make([]byte, 1<<16)

	for i := 0; *iterationLimit == 0 || i < *iterationLimit; i++ {
		select {
		case <-ctx.Done():
			logger.Printf("interrupted after %d iterations", i)
			return
		default:
		}

		length := it.MutateSequence(buf, 0, cfg.Capacity)
		written := it.SerializeSequence(buf[:length], length, out)

		signaled, err := runTarget(ctx, cfg.Target, out[:written])
		if err != nil {
			logger.Printf("iteration %d: run target: %s", i, err.Error())
			continue
		}

		if signaled {
			seq := append([]uint64(nil), buf[:length]...)
			w, err := store.Walks().Add(ctx, seq)
			if err != nil {
				logger.Printf("iteration %d: record walk: %s", i, err.Error())
				continue
			}
			if _, err := store.Crashes().Add(ctx, w.ID, 1, string(out[:written])); err != nil {
				logger.Printf("iteration %d: record crash: %s", i, err.Error())
				continue
			}
			logger.Printf("iteration %d: crash recorded (walk %s)", i, w.ID)
		}
	}
}

// runTarget feeds input to the target binary's stdin and reports whether it
// terminated via signal (the forkserver-substitute crash classifier).
func runTarget(ctx context.Context, target string, input []byte) (signaled bool, err error) {
	cmd := exec.CommandContext(ctx, target)
	cmd.Stdin = bytes.NewReader(input)

	runErr := cmd.Run()
	if runErr == nil {
		return false, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return exitErr.ExitCode() < 0, nil // negative exit code means killed by signal
	}
	return false, runErr
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
		logger.Printf("WARNING: %s", w.Error())
	}

	return automaton.Build(n)
}
