package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/drawpipe/geom"
)

// UniformBuffer holds the CPU copy of a program's uniform block.
// Processors address uniforms by the name they passed to AddUniform; the
// pipeline appends the processor suffix before each SetData call.
type UniformBuffer struct {
	uniforms   []Uniform
	index      map[string]int
	data       []byte
	nameSuffix string
}

func newUniformBuffer(uniforms []Uniform, size int) *UniformBuffer {
	b := &UniformBuffer{
		uniforms: uniforms,
		index:    make(map[string]int, len(uniforms)),
		data:     make([]byte, size),
	}
	for i, u := range uniforms {
		b.index[u.Name] = i
	}
	return b
}

// Bytes returns the packed uniform block.
func (b *UniformBuffer) Bytes() []byte { return b.data }

// Size returns the block size in bytes.
func (b *UniformBuffer) Size() int { return len(b.data) }

// SetNameSuffix sets the suffix appended to names in later Set calls.
func (b *UniformBuffer) SetNameSuffix(suffix string) { b.nameSuffix = suffix }

func (b *UniformBuffer) lookup(name string) (Uniform, bool) {
	full := name + b.nameSuffix
	i, ok := b.index[full]
	if !ok {
		slogger().Debug("gpu: uniform not found", "name", full)
		return Uniform{}, false
	}
	return b.uniforms[i], true
}

// SetData writes float components to the named uniform. Extra values
// beyond the uniform's size are ignored.
func (b *UniformBuffer) SetData(name string, values ...float32) {
	u, ok := b.lookup(name)
	if !ok {
		return
	}
	n := min(len(values), u.Type.Size()/4)
	for i := range n {
		binary.LittleEndian.PutUint32(b.data[u.Offset+4*i:], math.Float32bits(values[i]))
	}
}

// SetMatrix writes m to a mat3x3 uniform. Each column occupies 16 bytes.
func (b *UniformBuffer) SetMatrix(name string, m geom.Matrix) {
	u, ok := b.lookup(name)
	if !ok || u.Type != SLTypeFloat3x3 {
		return
	}
	cols := m.Float32Mat3()
	for c := range 3 {
		for r := range 3 {
			off := u.Offset + 16*c + 4*r
			binary.LittleEndian.PutUint32(b.data[off:], math.Float32bits(cols[3*c+r]))
		}
	}
}

// SetColor writes c to a vec4 uniform.
func (b *UniformBuffer) SetColor(name string, c Color) {
	b.SetData(name, c.R, c.G, c.B, c.A)
}

// setRTAdjust writes the program-owned render target adjustment.
func (b *UniformBuffer) setRTAdjust(width, height int, origin ImageOrigin) {
	w, h := float32(width), float32(height)
	saved := b.nameSuffix
	b.nameSuffix = ""
	if origin == OriginBottomLeft {
		b.SetData(rtAdjustName, 2/w, -1, 2/h, -1)
	} else {
		b.SetData(rtAdjustName, 2/w, -1, -2/h, 1)
	}
	b.nameSuffix = saved
}
