package gpu

import (
	"encoding/binary"
	"math"
	"slices"
)

// BytesKey is an append-only sequence of 32-bit words that fingerprints a
// program's structure. Two keys are equal only if every word matches, so
// the composition order of writers is part of the key.
type BytesKey struct {
	values []uint32
}

// Write appends one word.
func (k *BytesKey) Write(v uint32) {
	k.values = append(k.values, v)
}

// WriteInt appends v truncated to 32 bits.
func (k *BytesKey) WriteInt(v int) {
	k.Write(uint32(int32(v))) //nolint:gosec // keys only need the low bits
}

// WriteFloat appends the bit pattern of v.
func (k *BytesKey) WriteFloat(v float32) {
	k.Write(math.Float32bits(v))
}

// WriteBool appends 1 or 0.
func (k *BytesKey) WriteBool(b bool) {
	if b {
		k.Write(1)
		return
	}
	k.Write(0)
}

// WriteString appends the length of s followed by its bytes packed four
// to a word.
func (k *BytesKey) WriteString(s string) {
	k.WriteInt(len(s))
	var word [4]byte
	for i := 0; i < len(s); i += 4 {
		word = [4]byte{}
		copy(word[:], s[i:])
		k.Write(binary.LittleEndian.Uint32(word[:]))
	}
}

// WriteKey appends the length of other followed by its words.
func (k *BytesKey) WriteKey(other *BytesKey) {
	k.WriteInt(len(other.values))
	k.values = append(k.values, other.values...)
}

// Len returns the number of words.
func (k *BytesKey) Len() int { return len(k.values) }

// Reset empties the key, keeping its storage.
func (k *BytesKey) Reset() { k.values = k.values[:0] }

// Equal reports whether both keys hold the same words.
func (k *BytesKey) Equal(other *BytesKey) bool {
	return slices.Equal(k.values, other.values)
}

// String returns the raw bytes of the key. Distinct keys always produce
// distinct strings, so the result can be used as a map key.
func (k *BytesKey) String() string {
	buf := make([]byte, 4*len(k.values))
	for i, v := range k.values {
		binary.LittleEndian.PutUint32(buf[4*i:], v)
	}
	return string(buf)
}
