// Package runtime is the in-process mirror of the emitted code's runtime
// contract (§4.4-4.5 and §12 of the expanded spec): the walk data type and
// the generate/mutate, serialize, and unparse algorithms, interpreted
// directly against an automaton.Automaton instead of against generated
// switch statements. The Code Emitter's templates are transcriptions of the
// functions in this file, and this is what peacock-dump, peacock-repl and
// peacock-fuzz run directly.
package runtime

import (
	"github.com/dekarrin/peacock/internal/automaton"
)

// Interpreter evaluates an Automaton's generate/serialize/unparse semantics
// against caller-owned buffers. It holds the single process-wide RNG state
// the spec describes (§5, "Global RNG"); a Mutex field makes it safe to call
// from multiple goroutines when Multithreaded is true, mirroring the
// emitted code's MULTITHREADING knob.
type Interpreter struct {
	aut automaton.Automaton
	rng *RNG

	Multithreaded bool
	mu            mutexOrNop
}

// NewInterpreter returns an Interpreter over aut with a freshly seeded RNG.
func NewInterpreter(aut automaton.Automaton) *Interpreter {
	return &Interpreter{aut: aut, rng: NewRNG(0)}
}

// SeedGenerator seeds the interpreter's RNG. It mirrors the emitted file's
// seed_generator entry point.
func (it *Interpreter) SeedGenerator(seed uint64) {
	it.mu.Lock(it.Multithreaded)
	defer it.mu.Unlock(it.Multithreaded)
	it.rng.Seed(seed)
}

// MutateSequence mirrors mutate_sequence: replay the walk prefix buf[0:length]
// exactly, then extend with freshly sampled alternatives from the RNG until
// the entry procedure terminates or capacity is reached. length = 0 produces
// a fresh walk; length = L < a prior result mutates by preserving buf[0:L]
// and resampling the suffix. Returns the final walk length.
func (it *Interpreter) MutateSequence(buf []uint64, length, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	if length > capacity {
		length = capacity
	}

	it.mu.Lock(it.Multithreaded)
	defer it.mu.Unlock(it.Multithreaded)

	cursor := 0
	curLen := length
	it.generate(it.aut.Entry, buf, &curLen, capacity, &cursor)
	return curLen
}

// generate is generate_N from §4.4.1: read from the walk while replaying,
// sample and append while extending, fail (return false) once the walk is
// full and the cursor has run past its end. Failure aborts further
// expansion but the walk's current prefix remains a valid (if incomplete)
// prefix, per the Walk invariants.
func (it *Interpreter) generate(id int, buf []uint64, length *int, capacity int, cursor *int) bool {
	var altIdx int

	switch {
	case *cursor < *length:
		altIdx = int(buf[*cursor])
	case *length < capacity:
		n := it.aut.NumAlternatives(id)
		altIdx = it.rng.Intn(n)
		buf[*length] = uint64(altIdx)
		*length++
	default:
		return false
	}
	*cursor++

	for _, step := range it.aut.NonTerminals[id].Alts[altIdx].Steps {
		if step.Kind == automaton.StepNonTerminal {
			if !it.generate(step.NonTerm, buf, length, capacity, cursor) {
				return false
			}
		}
	}
	return true
}

// SerializeSequence mirrors serialize_sequence: realize the walk as the byte
// string it represents, writing into out and returning the number of bytes
// written. Emission halts the instant a terminal would overflow out; no
// partial terminal is ever written, and the caller sees a well-formed
// truncated prefix.
func (it *Interpreter) SerializeSequence(seq []uint64, seqLen int, out []byte) int {
	if seqLen <= 0 || len(out) == 0 {
		return 0
	}

	cursor := 0
	written := 0
	it.serialize(it.aut.Entry, seq, seqLen, &cursor, out, &written)
	return written
}

func (it *Interpreter) serialize(id int, buf []uint64, seqLen int, cursor *int, out []byte, written *int) bool {
	if *cursor >= seqLen {
		return true
	}
	altIdx := buf[*cursor]
	*cursor++

	for _, step := range it.aut.NonTerminals[id].Alts[altIdx].Steps {
		if step.Kind == automaton.StepLiteral {
			n := len(step.Literal)
			if *written+n > len(out) {
				return false
			}
			copy(out[*written:], step.Literal)
			*written += n
		} else {
			if !it.serialize(step.NonTerm, buf, seqLen, cursor, out, written) {
				return false
			}
		}
	}
	return true
}

// UnparseSequence mirrors unparse_sequence: recover a walk from a byte
// string by trying each non-terminal's alternatives in source order and
// backtracking on mismatch (§4.4.3). It returns the recovered walk's length,
// or 0 if no alternative sequence matches the entire input.
//
// A nil input is treated as "no buffer supplied" and returns 0 immediately,
// per §4.4.4's "inputs must be non-null ... otherwise the entry point
// returns 0". A non-nil, zero-length input is a legitimate empty target
// string and is matched for real — this is how an epsilon grammar's entry
// non-terminal can unparse the empty string to a non-empty walk (§8's
// epsilon-grammar scenario). See DESIGN.md for the reasoning; Go's
// nil-vs-empty-slice distinction is what lets both the defensive guard and
// the epsilon scenario hold simultaneously, something a bare C `(ptr, len)`
// pair cannot distinguish.
func (it *Interpreter) UnparseSequence(seqBuf []uint64, seqCapacity int, input []byte) int {
	if input == nil {
		return 0
	}

	walkLen := 0
	byteCursor := 0
	if !it.unparse(it.aut.Entry, seqBuf, &walkLen, seqCapacity, input, &byteCursor) {
		return 0
	}
	if byteCursor != len(input) {
		return 0
	}
	return walkLen
}

func (it *Interpreter) unparse(id int, walkBuf []uint64, walkLen *int, capacity int, input []byte, byteCursor *int) bool {
	pos := *walkLen
	if pos >= capacity {
		return false
	}

	for altIdx, alt := range it.aut.NonTerminals[id].Alts {
		savedByte := *byteCursor
		savedLen := *walkLen
		*walkLen = pos + 1

		ok := true
		for _, step := range alt.Steps {
			if step.Kind == automaton.StepLiteral {
				lit := step.Literal
				end := *byteCursor + len(lit)
				if end > len(input) || !bytesEqual(input[*byteCursor:end], lit) {
					ok = false
					break
				}
				*byteCursor = end
			} else {
				if !it.unparse(step.NonTerm, walkBuf, walkLen, capacity, input, byteCursor) {
					ok = false
					break
				}
			}
		}

		if ok {
			walkBuf[pos] = uint64(altIdx)
			return true
		}

		*byteCursor = savedByte
		*walkLen = savedLen
	}

	return false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
