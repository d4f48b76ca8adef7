package gpu

import (
	"fmt"
	"strings"
)

// rtAdjustName is the program-owned uniform that maps device coordinates
// to normalized device coordinates. Processors must not declare it.
const rtAdjustName = "RTAdjust"

// ShaderBuilder accumulates the body of one shader entry point.
type ShaderBuilder struct {
	code   strings.Builder
	indent int
}

// CodeAppend appends one or more lines of code.
func (b *ShaderBuilder) CodeAppend(code string) {
	for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		b.code.WriteString(strings.Repeat("    ", b.indent+1))
		b.code.WriteString(line)
		b.code.WriteByte('\n')
	}
}

// CodeAppendf appends formatted code.
func (b *ShaderBuilder) CodeAppendf(format string, args ...any) {
	b.CodeAppend(fmt.Sprintf(format, args...))
}

// OpenBlock starts a nested scope.
func (b *ShaderBuilder) OpenBlock() {
	b.CodeAppend("{")
	b.indent++
}

// CloseBlock ends the scope opened by OpenBlock.
func (b *ShaderBuilder) CloseBlock() {
	b.indent--
	b.CodeAppend("}")
}

// Code returns the accumulated code.
func (b *ShaderBuilder) Code() string { return b.code.String() }

// VertexShaderBuilder builds the vs_main body. Attributes are read as
// in.<name>; varyings are written through out.<name>.
type VertexShaderBuilder struct {
	ShaderBuilder
	rtAdjust string
}

// EmitNormalizedPosition writes the clip-space position for a device
// space position expression of type vec2<f32>.
func (v *VertexShaderBuilder) EmitNormalizedPosition(devPos string) {
	v.CodeAppendf("out.position = vec4<f32>(%[1]s.x * %[2]s.x + %[2]s.y, %[1]s.y * %[2]s.z + %[2]s.w, 0.0, 1.0);",
		devPos, v.rtAdjust)
}

// FragmentShaderBuilder builds the fs_main body. Varyings are read as
// in.<name>.
type FragmentShaderBuilder struct {
	ShaderBuilder
	uniforms *uniformHandler
}

// TextureLookup returns an expression sampling the texture behind handle
// at coord, with the texture's read swizzle applied.
func (f *FragmentShaderBuilder) TextureLookup(handle SamplerHandle, coord string) string {
	s := f.uniforms.sampler(handle)
	var expr string
	if s.samplerType == SamplerTypeExternal {
		expr = fmt.Sprintf("textureSampleBaseClampToEdge(%s, %s, %s)", s.textureVar(), s.samplerVar(), coord)
	} else {
		expr = fmt.Sprintf("textureSampleLevel(%s, %s, %s, 0.0)", s.textureVar(), s.samplerVar(), coord)
	}
	return s.swizzle.Apply(expr)
}

// Varying passes a value from the vertex to the fragment stage.
type Varying struct {
	name string
	typ  SLType
}

// VsOut returns the name the vertex shader writes.
func (v Varying) VsOut() string { return "out." + v.name }

// FsIn returns the name the fragment shader reads.
func (v Varying) FsIn() string { return "in." + v.name }

// Type returns the varying's type.
func (v Varying) Type() SLType { return v.typ }

// VaryingHandler registers varyings for the program being built.
type VaryingHandler struct {
	varyings []Varying
	suffix   string
}

// AddVarying registers a varying. The name is mangled with the current
// processor's suffix.
func (h *VaryingHandler) AddVarying(name string, typ SLType) Varying {
	v := Varying{name: name + h.suffix, typ: typ}
	h.varyings = append(h.varyings, v)
	return v
}
