package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/drawpipe/gpu"
)

// program is a compiled gpu.ProgramInfo: one render pipeline with a single
// bind group layout holding the uniform block and the texture/sampler
// pairs.
type program struct {
	backend  *Backend
	label    string
	module   hal.ShaderModule
	bindings hal.BindGroupLayout
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline

	uniformSize uint32
	samplers    []gpu.SamplerInfo
	stride      int
	released    bool
}

// Release destroys the pipeline objects. It is called by the program
// cache on eviction.
func (p *program) Release() {
	if p.released {
		return
	}
	p.released = true
	b := p.backend
	switch {
	case b.encoder != nil:
		// The open frame may have recorded this pipeline.
		b.frame.programs = append(b.frame.programs, p)
	case len(b.inFlight) > 0:
		last := b.inFlight[len(b.inFlight)-1]
		last.resources.programs = append(last.resources.programs, p)
	default:
		p.destroy(b.device)
	}
}

func (p *program) destroy(d hal.Device) {
	d.DestroyRenderPipeline(p.pipeline)
	d.DestroyPipelineLayout(p.layout)
	d.DestroyBindGroupLayout(p.bindings)
	d.DestroyShaderModule(p.module)
}

// compileWGSL validates source with naga and returns SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// vertexLayout interleaves attributes in declaration order at
// consecutive shader locations.
func vertexLayout(info *gpu.ProgramInfo) ([]gputypes.VertexBufferLayout, error) {
	if len(info.Attributes) == 0 {
		return nil, nil
	}
	attrs := make([]gputypes.VertexAttribute, 0, len(info.Attributes))
	var offset uint64
	for i, a := range info.Attributes {
		format, err := vertexFormat(a.Type)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
		}
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         format,
			Offset:         offset,
			ShaderLocation: uint32(i),
		})
		offset += uint64(a.Type.Size())
	}
	stride := uint64(info.VertexStride)
	if stride == 0 {
		stride = offset
	}
	return []gputypes.VertexBufferLayout{{
		ArrayStride: stride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}}, nil
}

func bindGroupLayoutEntries(info *gpu.ProgramInfo) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, 1+2*len(info.Samplers))
	if info.UniformSize > 0 {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	for _, s := range info.Samplers {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(s.TextureBinding),
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(s.SamplerBinding),
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	return entries
}

// CompileProgram translates the generated WGSL and builds the render
// pipeline. Every partially created object is destroyed on failure.
func (b *Backend) CompileProgram(info *gpu.ProgramInfo) (gpu.CompiledProgram, error) {
	if b.released {
		return nil, ErrBackendReleased
	}
	targetFormat, err := textureFormat(info.TargetFormat)
	if err != nil {
		return nil, err
	}
	buffers, err := vertexLayout(info)
	if err != nil {
		return nil, err
	}
	code, err := compileWGSL(info.Source)
	if err != nil {
		return nil, fmt.Errorf("native: compile %s: %w", info.Label, err)
	}

	p := &program{
		backend:     b,
		label:       info.Label,
		uniformSize: uint32(info.UniformSize),
		samplers:    info.Samplers,
		stride:      info.VertexStride,
	}
	ok := false
	defer func() {
		if !ok {
			p.destroyPartial()
		}
	}()

	p.module, err = b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  info.Label,
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create shader module: %w", err)
	}
	p.bindings, err = b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   info.Label + "_bindings",
		Entries: bindGroupLayoutEntries(info),
	})
	if err != nil {
		return nil, fmt.Errorf("native: create bind group layout: %w", err)
	}
	p.layout, err = b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            info.Label + "_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindings},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create pipeline layout: %w", err)
	}

	samples := uint32(max(info.SampleCount, 1))
	p.pipeline, err = b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  info.Label,
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: info.VertexEntryPoint,
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: info.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    targetFormat,
				Blend:     blendState(info.Blend),
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create render pipeline: %w", err)
	}
	ok = true
	slogger().Debug("native: program compiled", "label", info.Label, "samplers", len(info.Samplers))
	return p, nil
}

func (p *program) destroyPartial() {
	d := p.backend.device
	if p.layout != nil {
		d.DestroyPipelineLayout(p.layout)
	}
	if p.bindings != nil {
		d.DestroyBindGroupLayout(p.bindings)
	}
	if p.module != nil {
		d.DestroyShaderModule(p.module)
	}
	p.released = true
}
