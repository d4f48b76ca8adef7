package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/drawpipe/geom"
)

func TestUniformBufferSetData(t *testing.T) {
	buf := newUniformBuffer([]Uniform{
		{Name: "RTAdjust", Type: SLTypeFloat4, Offset: 0},
		{Name: "Color_P1", Type: SLTypeFloat4, Offset: 16},
		{Name: "Sigma_P2", Type: SLTypeFloat, Offset: 32},
	}, 48)
	assert.Equal(t, 48, buf.Size())

	buf.SetNameSuffix("_P1")
	buf.SetColor("Color", Color{R: 0.25, G: 0.5, B: 0.75, A: 1})
	assert.Equal(t, float32(0.25), float32frombytes(buf.Bytes()[16:]))
	assert.Equal(t, float32(1), float32frombytes(buf.Bytes()[28:]))

	buf.SetNameSuffix("_P2")
	buf.SetData("Sigma", 3, 99) // extra values are dropped
	assert.Equal(t, float32(3), float32frombytes(buf.Bytes()[32:]))
	assert.Equal(t, float32(0), float32frombytes(buf.Bytes()[36:]))

	// Unknown names are ignored.
	buf.SetData("Missing", 1)
}

func TestUniformBufferSetMatrix(t *testing.T) {
	buf := newUniformBuffer([]Uniform{{Name: "Matrix", Type: SLTypeFloat3x3, Offset: 0}}, 48)
	buf.SetMatrix("Matrix", geom.Translate(5, 7))

	data := buf.Bytes()
	// Column-major, each column padded to 16 bytes.
	assert.Equal(t, float32(1), float32frombytes(data[0:]))
	assert.Equal(t, float32(1), float32frombytes(data[16+4:]))
	assert.Equal(t, float32(5), float32frombytes(data[32:]))
	assert.Equal(t, float32(7), float32frombytes(data[32+4:]))
	assert.Equal(t, float32(1), float32frombytes(data[32+8:]))
}

func TestUniformBufferRTAdjust(t *testing.T) {
	tests := []struct {
		name   string
		origin ImageOrigin
		want   [4]float32
	}{
		{"top-left", OriginTopLeft, [4]float32{0.2, -1, -0.5, 1}},
		{"bottom-left", OriginBottomLeft, [4]float32{0.2, -1, 0.5, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newUniformBuffer([]Uniform{{Name: rtAdjustName, Type: SLTypeFloat4}}, 16)
			buf.SetNameSuffix("_P0")
			buf.setRTAdjust(10, 4, tt.origin)
			for i, w := range tt.want {
				assert.InDelta(t, w, float32frombytes(buf.Bytes()[4*i:]), 1e-6)
			}
		})
	}
}
