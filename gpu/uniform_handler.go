package gpu

import "fmt"

// SamplerHandle refers to a texture binding registered with AddSampler.
type SamplerHandle int

// UniformHandler registers the uniforms and samplers a processor reads.
type UniformHandler interface {
	// AddUniform declares a uniform visible to the given stages and returns
	// the expression that reads it. The name is mangled per processor.
	AddUniform(visibility ShaderFlags, typ SLType, name string) string
	// AddSampler declares the next texture binding of the current processor.
	AddSampler(sampler TextureSampler, name string) SamplerHandle
}

// Uniform is one member of a program's uniform block.
type Uniform struct {
	Name       string
	Type       SLType
	Visibility ShaderFlags
	Offset     int
}

type samplerSlot struct {
	name        string
	samplerType SamplerType
	swizzle     Swizzle
}

func (s samplerSlot) textureVar() string { return s.name }
func (s samplerSlot) samplerVar() string { return s.name + "_sampler" }

// uniformHandler is the UniformHandler used by ProgramBuilder. Uniform
// expressions are members of the "u" uniform block.
type uniformHandler struct {
	caps     *Caps
	uniforms []Uniform
	names    map[string]struct{}
	samplers []samplerSlot
	suffix   string
	cursor   int
	err      error
}

func newUniformHandler(caps *Caps, numSamplers int) *uniformHandler {
	h := &uniformHandler{
		caps:     caps,
		names:    make(map[string]struct{}),
		samplers: make([]samplerSlot, numSamplers),
	}
	for i := range h.samplers {
		h.samplers[i] = samplerSlot{name: fmt.Sprintf("TextureSampler_%d", i), swizzle: SwizzleRGBA}
	}
	return h
}

func (h *uniformHandler) AddUniform(visibility ShaderFlags, typ SLType, name string) string {
	return h.addUniform(visibility, typ, name+h.suffix)
}

func (h *uniformHandler) addUniform(visibility ShaderFlags, typ SLType, mangled string) string {
	if _, dup := h.names[mangled]; dup {
		if h.err == nil {
			h.err = fmt.Errorf("%w: %s", ErrDuplicateUniform, mangled)
		}
	} else {
		h.names[mangled] = struct{}{}
		h.uniforms = append(h.uniforms, Uniform{Name: mangled, Type: typ, Visibility: visibility})
	}
	return "u." + mangled
}

func (h *uniformHandler) AddSampler(sampler TextureSampler, name string) SamplerHandle {
	if h.cursor >= len(h.samplers) {
		if h.err == nil {
			h.err = fmt.Errorf("gpu: sampler %q exceeds the processor's declared samplers", name)
		}
		return SamplerHandle(len(h.samplers) - 1)
	}
	slot := samplerSlot{name: name + h.suffix, swizzle: SwizzleRGBA}
	if p := sampler.Proxy; p != nil {
		slot.swizzle = h.caps.ReadSwizzle(p.Format())
		if tex := p.Texture(); tex != nil {
			slot.samplerType = tex.SamplerType()
		}
	}
	h.samplers[h.cursor] = slot
	handle := SamplerHandle(h.cursor)
	h.cursor++
	return handle
}

func (h *uniformHandler) sampler(handle SamplerHandle) samplerSlot {
	if int(handle) < 0 || int(handle) >= len(h.samplers) {
		return samplerSlot{name: "TextureSampler_invalid", swizzle: SwizzleRGBA}
	}
	return h.samplers[handle]
}

// layoutUniforms assigns offsets following WGSL uniform layout rules and
// returns the block size, rounded up to 16 bytes.
func layoutUniforms(uniforms []Uniform) int {
	offset := 0
	for i := range uniforms {
		align := uniforms[i].Type.Align()
		offset = (offset + align - 1) &^ (align - 1)
		uniforms[i].Offset = offset
		offset += uniforms[i].Type.Size()
	}
	return (offset + 15) &^ 15
}
