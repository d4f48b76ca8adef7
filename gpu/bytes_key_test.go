package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesKeyEquality(t *testing.T) {
	var a, b BytesKey
	a.Write(1)
	a.WriteFloat(0.5)
	a.WriteBool(true)
	b.Write(1)
	b.WriteFloat(0.5)
	b.WriteBool(true)
	assert.True(t, a.Equal(&b))
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, 3, a.Len())

	b.WriteBool(false)
	assert.False(t, a.Equal(&b))
	assert.NotEqual(t, a.String(), b.String())
}

func TestBytesKeyOrderMatters(t *testing.T) {
	var a, b BytesKey
	a.Write(1)
	a.Write(2)
	b.Write(2)
	b.Write(1)
	assert.NotEqual(t, a.String(), b.String())
}

func TestBytesKeyLengthPrefixes(t *testing.T) {
	// Without length prefixes these two would collide.
	var a, b BytesKey
	a.WriteString("ab")
	a.WriteString("c")
	b.WriteString("a")
	b.WriteString("bc")
	assert.NotEqual(t, a.String(), b.String())

	var inner1, inner2, outer1, outer2 BytesKey
	inner1.Write(7)
	inner2.Write(7)
	inner2.Write(8)
	outer1.WriteKey(&inner1)
	outer1.Write(8)
	outer2.WriteKey(&inner2)
	assert.NotEqual(t, outer1.String(), outer2.String())
}

func TestBytesKeyReset(t *testing.T) {
	var k BytesKey
	k.WriteInt(-1)
	assert.Equal(t, "\xff\xff\xff\xff", k.String())
	k.Reset()
	assert.Equal(t, 0, k.Len())
	assert.Equal(t, "", k.String())
}
