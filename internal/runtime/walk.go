package runtime

import (
	"bufio"
	"encoding/binary"
	"io"
)

// Walk is the caller-owned representation of a walk: a backing buffer, its
// current length, and its capacity. The Interpreter's entry points take
// these three fields apart (buf, length, capacity) rather than this struct,
// mirroring the emitted code's three-field ABI (§5, "a triple (buffer
// pointer, length, capacity)") — a Go slice header already carries pointer,
// len, and cap, so Walk exists only as a convenience for callers (the CLI
// tools, the corpus store) that want to pass one value around instead of
// three.
type Walk struct {
	Buf []uint64
	Len int
}

// NewWalk allocates a Walk with the given capacity and zero length.
func NewWalk(capacity int) Walk {
	return Walk{Buf: make([]uint64, capacity)}
}

// Slots returns the walk's valid contents, buf[0:len].
func (w Walk) Slots() []uint64 {
	return w.Buf[:w.Len]
}

// EncodeRaw writes a walk in the persisted-walk-corpus format: raw
// machine-word-sized (64-bit) alternative indices, little-endian on the
// producing host (§6). Cross-architecture sharing of the result is
// undefined by design — see DESIGN.md's note on the open endianness
// question.
func EncodeRaw(w io.Writer, walk Walk) error {
	bw := bufio.NewWriter(w)
	var scratch [8]byte
	for _, v := range walk.Slots() {
		binary.LittleEndian.PutUint64(scratch[:], v)
		if _, err := bw.Write(scratch[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeRaw reads a persisted-walk-corpus file in full into a Walk whose
// capacity equals its length.
func DecodeRaw(r io.Reader) (Walk, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Walk{}, err
	}
	n := len(raw) / 8
	walk := Walk{Buf: make([]uint64, n), Len: n}
	for i := 0; i < n; i++ {
		walk.Buf[i] = binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
	}
	return walk, nil
}
