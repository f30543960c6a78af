package codegen

// emittedFileTemplate is executed against a fileView to produce the
// self-contained Go source described in §4.4 of the expanded spec. Every
// branch here is a transcription of the corresponding function in
// internal/runtime/interp.go; keep the two in lockstep.
const emittedFileTemplate = `// Code generated by peacock-compile. DO NOT EDIT.
// source grammar hash: {{.Hash}}

package {{.Package}}

{{if or .Trace .Multithreaded}}import (
{{if .Trace}}	"log"
{{end}}{{if .Multithreaded}}	"sync"
{{end}})
{{end}}
{{if not .DisableRand}}
var rngState uint64 = {{if .HasSeed}}{{.SeedLiteral}}{{else}}0x9E3779B97F4A7C15{{end}}
{{if .Multithreaded}}var rngMu sync.Mutex
{{end}}
{{if not .DisableSeed}}
// {{.FnSeedGenerator}} seeds the package-level RNG state consumed by
// {{.FnMutateSequence}}.
func {{.FnSeedGenerator}}(seed uint64) {
{{if .Multithreaded}}	rngMu.Lock()
	defer rngMu.Unlock()
{{end}}	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	rngState = seed
}
{{end}}
func rngNext() uint64 {
{{if .Multithreaded}}	rngMu.Lock()
	defer rngMu.Unlock()
{{end}}	x := rngState
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	rngState = x
	return x * 0x2545F4914F6CDD1D
}

func rngIntn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(rngNext() % uint64(n))
}
{{else}}
// RandSource must be assigned by the caller before {{.FnMutateSequence}} is
// invoked; DisableRand omits the generated RNG entirely.
var RandSource func() uint64

func rngIntn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(RandSource() % uint64(n))
}
{{end}}
{{range .NonTerminals}}
func generate_{{.FuncName}}(buf []uint64, length *int, capacity int, cursor *int) bool {
{{if $.Trace}}	log.Printf("peacock: generate_{{.FuncName}} cursor=%d length=%d", *cursor, *length)
{{end}}	var altIdx int
	switch {
	case *cursor < *length:
		altIdx = int(buf[*cursor])
	case *length < capacity:
		altIdx = rngIntn({{.NumAlts}})
		buf[*length] = uint64(altIdx)
		*length++
	default:
		return false
	}
	*cursor++

	switch altIdx {
{{range .Alts}}	case {{.Index}}:
{{range .Steps}}{{if not .IsLiteral}}		if !generate_{{.NonTermFunc}}(buf, length, capacity, cursor) {
			return false
		}
{{end}}{{end}}{{end}}	default:
		panic("peacock: generate_{{.FuncName}}: alternative index out of range")
	}
	return true
}

func serialize_{{.FuncName}}(buf []uint64, seqLen int, cursor *int, out []byte, written *int) bool {
{{if $.Trace}}	log.Printf("peacock: serialize_{{.FuncName}} cursor=%d", *cursor)
{{end}}	if *cursor >= seqLen {
		return true
	}
	altIdx := buf[*cursor]
	*cursor++

	switch altIdx {
{{range .Alts}}	case {{.Index}}:
{{range .Steps}}{{if .IsLiteral}}		if *written+{{.LiteralLen}} > len(out) {
			return false
		}
		copy(out[*written:], {{.LiteralGo}})
		*written += {{.LiteralLen}}
{{else}}		if !serialize_{{.NonTermFunc}}(buf, seqLen, cursor, out, written) {
			return false
		}
{{end}}{{end}}{{end}}	default:
		panic("peacock: serialize_{{.FuncName}}: alternative index out of range")
	}
	return true
}

func unparse_{{.FuncName}}(walkBuf []uint64, walkLen *int, capacity int, input []byte, byteCursor *int) bool {
{{if $.Trace}}	log.Printf("peacock: unparse_{{.FuncName}} byteCursor=%d", *byteCursor)
{{end}}	pos := *walkLen
	if pos >= capacity {
		return false
	}
{{range .Alts}}	{
		savedByte := *byteCursor
		savedLen := *walkLen
		*walkLen = pos + 1

		matched := func() bool {
{{range .Steps}}{{if .IsLiteral}}			if *byteCursor+{{.LiteralLen}} > len(input) || string(input[*byteCursor:*byteCursor+{{.LiteralLen}}]) != {{.LiteralGo}} {
				return false
			}
			*byteCursor += {{.LiteralLen}}
{{else}}			if !unparse_{{.NonTermFunc}}(walkBuf, walkLen, capacity, input, byteCursor) {
				return false
			}
{{end}}{{end}}			return true
		}()

		if matched {
			walkBuf[pos] = {{.Index}}
			return true
		}
		*byteCursor = savedByte
		*walkLen = savedLen
	}
{{end}}	return false
}
{{end}}
func {{.FnMutateSequence}}(buf []uint64, length, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	if length > capacity {
		length = capacity
	}
	cursor := 0
	curLen := length
	generate_{{.EntryFunc}}(buf, &curLen, capacity, &cursor)
	return curLen
}

func {{.FnSerializeSequence}}(seq []uint64, seqLen int, out []byte) int {
	if seqLen <= 0 || len(out) == 0 {
		return 0
	}
	cursor := 0
	written := 0
	serialize_{{.EntryFunc}}(seq, seqLen, &cursor, out, &written)
	return written
}

func {{.FnUnparseSequence}}(seqBuf []uint64, seqCapacity int, input []byte) int {
	if input == nil {
		return 0
	}
	walkLen := 0
	byteCursor := 0
	if !unparse_{{.EntryFunc}}(seqBuf, &walkLen, seqCapacity, input, &byteCursor) {
		return 0
	}
	if byteCursor != len(input) {
		return 0
	}
	return walkLen
}
`
