// Package codegen emits a single self-contained Go source file whose control
// flow IS a compiled automaton: one generate/serialize/unparse procedure
// triad per non-terminal, plus the four public entry points from §4.4.4 of
// the expanded spec. The templates in this package are transcriptions of the
// algorithms in internal/runtime; the two must agree by construction.
package codegen

// Options captures the generation-time knobs that the original spec
// describes as C preprocessor macros (§6). Since the emitted artifact here
// is a Go source file rather than a C translation unit, each macro becomes a
// field that chooses which template branches get rendered, not a
// conditional-compilation directive evaluated by a downstream compiler.
type Options struct {
	// Package is the package clause of the emitted file.
	Package string

	// Exported controls the casing of the four public entry-point
	// identifiers: true emits PascalCase (MutateSequence, ...), matching
	// MAKE_VISIBLE's default-visible symbols; false emits camelCase
	// (mutateSequence, ...), unexported to anything outside the emitted
	// file's own package.
	Exported bool

	// Seed, when non-nil, embeds a compile-time literal RNG seed and omits
	// the runtime seed parameter from the generated RNG's zero-value state,
	// mirroring the SEED macro.
	Seed *uint64

	// DisableRand omits the generated xorshift64* RNG entirely; the emitted
	// file instead declares a package-level `var RandSource func() uint64`
	// that the caller must assign before calling MutateSequence, mirroring
	// DISABLE_rand.
	DisableRand bool

	// DisableSeed omits the generated seed-setting entry point, mirroring
	// DISABLE_seed. Meaningless (ignored) when DisableRand is set, since
	// there is no generated RNG state to seed.
	DisableSeed bool

	// Multithreaded wraps the generated RNG state in a sync.Mutex acquired
	// around every call site that consumes randomness, mirroring
	// MULTITHREADING.
	Multithreaded bool

	// Trace emits a log.Printf at the entry of every generated procedure,
	// mirroring the spec's debug-trace knob.
	Trace bool
}
