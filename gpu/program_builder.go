package gpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/drawpipe/geom"
)

// Entry points of every generated module.
const (
	vertexEntryPoint   = "vs_main"
	fragmentEntryPoint = "fs_main"
)

// ProgramInfo is everything a backend needs to compile and bind a
// generated program.
type ProgramInfo struct {
	Label              string
	Source             string
	VertexEntryPoint   string
	FragmentEntryPoint string
	Attributes         []Attribute
	// VertexStride is the byte size of one interleaved vertex.
	VertexStride int
	Uniforms     []Uniform
	UniformSize  int
	Samplers     []SamplerInfo
	Blend        BlendFormula
	TargetFormat PixelFormat
	SampleCount  int
}

// SamplerInfo describes one texture/sampler binding pair. Binding 0 is
// always the uniform block.
type SamplerInfo struct {
	Name           string
	Type           SamplerType
	TextureBinding int
	SamplerBinding int
}

// GPEmitArgs is passed to GeometryProcessor.EmitCode.
type GPEmitArgs struct {
	VertBuilder             *VertexShaderBuilder
	FragBuilder             *FragmentShaderBuilder
	VaryingHandler          *VaryingHandler
	UniformHandler          UniformHandler
	Caps                    *Caps
	OutputColor             string
	OutputCoverage          string
	FPCoordTransformHandler *FPCoordTransformHandler
}

// EmitTransforms emits one matrix uniform and one varying for every
// coordinate transform of the pipeline, mapping localCoords (a vec2<f32>
// vertex expression) through each.
func (a *GPEmitArgs) EmitTransforms(localCoords string) {
	h := a.FPCoordTransformHandler
	for ct := h.NextCoordTransform(); ct != nil; ct = h.NextCoordTransform() {
		i := h.current
		matrix := a.UniformHandler.AddUniform(ShaderFlagVertex, SLTypeFloat3x3, fmt.Sprintf("CoordTransformMatrix_%d", i))
		v := a.VaryingHandler.AddVarying(fmt.Sprintf("TransformedCoords_%d", i), SLTypeFloat2)
		a.VertBuilder.CodeAppendf("%s = (%s * vec3<f32>(%s, 1.0)).xy;", v.VsOut(), matrix, localCoords)
		h.SpecifyCoordsForCurrCoordTransform(v.FsIn())
	}
}

// SetTransformDataHelper uploads the matrices declared by EmitTransforms.
// localMatrix maps the geometry's local coordinates before each transform.
func SetTransformDataHelper(buf *UniformBuffer, localMatrix geom.Matrix, transforms *CoordTransformIter) {
	i := 0
	for ct := transforms.Next(); ct != nil; ct = transforms.Next() {
		m := ct.TotalMatrix()
		m.PreConcat(localMatrix)
		buf.SetMatrix(fmt.Sprintf("CoordTransformMatrix_%d", i), m)
		i++
	}
}

// FPEmitArgs is passed to FragmentProcessor.EmitCode.
type FPEmitArgs struct {
	FragBuilder    *FragmentShaderBuilder
	UniformHandler UniformHandler
	Caps           *Caps
	// OutputColor is the vec4<f32> variable the processor must assign.
	OutputColor string
	// InputColor is a vec4<f32> expression.
	InputColor string
	// TransformedCoords holds one vec2<f32> expression per coordinate
	// transform of the processor.
	TransformedCoords []string
	// TextureSamplers holds one handle per texture sampler, in order.
	TextureSamplers []SamplerHandle

	builder *ProgramBuilder
	fp      FragmentProcessor
}

// EmitChild emits child i of the current processor in its own scope and
// returns the variable holding its output. input may be empty for opaque
// white. coordFunc, if not nil, rewrites each of the child's transformed
// coordinate expressions.
func (a *FPEmitArgs) EmitChild(i int, input string, coordFunc func(string) string) string {
	child := a.fp.Child(i)
	return a.builder.emitNestedFragProc(child, input, coordFunc)
}

// ProgramBuilder turns a Pipeline into a WGSL module.
type ProgramBuilder struct {
	ctx      *Context
	pipeline *Pipeline

	uniforms *uniformHandler
	varyings *VaryingHandler
	vs       *VertexShaderBuilder
	fs       *FragmentShaderBuilder

	transformedCoords []string
	err               error
}

func newProgramBuilder(ctx *Context, pipeline *Pipeline) *ProgramBuilder {
	b := &ProgramBuilder{
		ctx:      ctx,
		pipeline: pipeline,
		uniforms: newUniformHandler(ctx.Caps(), len(pipeline.samplers)),
		varyings: &VaryingHandler{},
		vs:       &VertexShaderBuilder{},
	}
	b.fs = &FragmentShaderBuilder{uniforms: b.uniforms}
	return b
}

// GenerateProgramInfo emits the WGSL module for pipeline targeting a
// surface with the given format and sample count.
func GenerateProgramInfo(ctx *Context, pipeline *Pipeline, format PixelFormat, sampleCount int) (*ProgramInfo, error) {
	if err := pipeline.Err(); err != nil {
		return nil, err
	}
	b := newProgramBuilder(ctx, pipeline)
	return b.build(format, sampleCount)
}

func (b *ProgramBuilder) setProcessor(index, samplerStart int) {
	suffix := processorSuffix(index)
	b.uniforms.suffix = suffix
	b.uniforms.cursor = samplerStart
	b.varyings.suffix = suffix
}

func (b *ProgramBuilder) build(format PixelFormat, sampleCount int) (*ProgramInfo, error) {
	p := b.pipeline
	gp := p.geometryProcessor
	if gp == nil {
		return nil, fmt.Errorf("gpu: pipeline has no geometry processor")
	}

	b.vs.rtAdjust = b.uniforms.addUniform(ShaderFlagVertex, SLTypeFloat4, rtAdjustName)

	b.setProcessor(0, 0)
	color := "outputColor" + processorSuffix(0)
	coverage := "outputCoverage" + processorSuffix(0)
	b.fs.CodeAppendf("var %s: vec4<f32>;", color)
	b.fs.CodeAppendf("var %s: vec4<f32>;", coverage)
	handler := &FPCoordTransformHandler{transforms: p.transforms}
	gp.EmitCode(&GPEmitArgs{
		VertBuilder:             b.vs,
		FragBuilder:             b.fs,
		VaryingHandler:          b.varyings,
		UniformHandler:          b.uniforms,
		Caps:                    b.ctx.Caps(),
		OutputColor:             color,
		OutputCoverage:          coverage,
		FPCoordTransformHandler: handler,
	})
	if len(handler.fsNames) != len(p.transforms) {
		return nil, fmt.Errorf("gpu: %s emitted %d of %d coordinate transforms",
			gp.Name(), len(handler.fsNames), len(p.transforms))
	}
	b.transformedCoords = handler.fsNames

	for i, fp := range p.fragmentProcessors {
		if i < p.numColorProcessors {
			color = b.emitNestedFragProc(fp, color, nil)
		} else {
			coverage = b.emitNestedFragProc(fp, coverage, nil)
		}
	}
	b.fs.CodeAppendf("return %s;", p.outputSwizzle.Apply(fmt.Sprintf("(%s * %s)", color, coverage)))

	if b.err != nil {
		return nil, b.err
	}
	if b.uniforms.err != nil {
		return nil, b.uniforms.err
	}

	info := &ProgramInfo{
		Label:              gp.Name(),
		VertexEntryPoint:   vertexEntryPoint,
		FragmentEntryPoint: fragmentEntryPoint,
		Attributes:         gp.VertexAttributes(),
		Uniforms:           b.uniforms.uniforms,
		Blend:              p.blendMode.Formula(),
		TargetFormat:       format,
		SampleCount:        max(sampleCount, 1),
	}
	for _, a := range info.Attributes {
		info.VertexStride += 4 * a.Type.FloatCount()
	}
	info.UniformSize = layoutUniforms(info.Uniforms)
	for i, s := range b.uniforms.samplers {
		info.Samplers = append(info.Samplers, SamplerInfo{
			Name:           s.name,
			Type:           s.samplerType,
			TextureBinding: 1 + 2*i,
			SamplerBinding: 2 + 2*i,
		})
	}
	info.Source = b.assemble(info)
	return info, nil
}

// emitNestedFragProc declares the output variable of fp, emits fp in its
// own scope and returns the output variable.
func (b *ProgramBuilder) emitNestedFragProc(fp FragmentProcessor, input string, coordFunc func(string) string) string {
	slot, ok := b.pipeline.slots[fp]
	if !ok {
		if b.err == nil {
			b.err = fmt.Errorf("gpu: %s is not part of the pipeline", fp.Name())
		}
		return "vec4<f32>(0.0)"
	}
	if input == "" {
		input = "vec4<f32>(1.0)"
	}
	output := "output" + processorSuffix(slot.index)
	b.fs.CodeAppendf("var %s: vec4<f32>;", output)
	b.fs.OpenBlock()

	prevUniformSuffix, prevCursor, prevVaryingSuffix := b.uniforms.suffix, b.uniforms.cursor, b.varyings.suffix
	b.setProcessor(slot.index, slot.samplerStart)

	coords := make([]string, fp.NumCoordTransforms())
	for i := range coords {
		coords[i] = b.transformedCoords[slot.coordStart+i]
		if coordFunc != nil {
			coords[i] = coordFunc(coords[i])
		}
	}
	samplers := make([]SamplerHandle, fp.NumTextureSamplers())
	for i := range samplers {
		samplers[i] = b.uniforms.AddSampler(fp.TextureSampler(i), fmt.Sprintf("TextureSampler_%d", i))
	}
	fp.EmitCode(&FPEmitArgs{
		FragBuilder:       b.fs,
		UniformHandler:    b.uniforms,
		Caps:              b.ctx.Caps(),
		OutputColor:       output,
		InputColor:        input,
		TransformedCoords: coords,
		TextureSamplers:   samplers,
		builder:           b,
		fp:                fp,
	})

	b.uniforms.suffix, b.uniforms.cursor, b.varyings.suffix = prevUniformSuffix, prevCursor, prevVaryingSuffix
	b.fs.CloseBlock()
	return output
}

// assemble writes the complete module.
func (b *ProgramBuilder) assemble(info *ProgramInfo) string {
	var sb strings.Builder

	sb.WriteString("struct Uniforms {\n")
	for _, u := range info.Uniforms {
		fmt.Fprintf(&sb, "    %s: %s,\n", u.Name, u.Type.WGSL())
	}
	sb.WriteString("};\n\n@group(0) @binding(0) var<uniform> u: Uniforms;\n")
	for _, s := range info.Samplers {
		texType := "texture_2d<f32>"
		if s.Type == SamplerTypeExternal {
			texType = "texture_external"
		}
		fmt.Fprintf(&sb, "@group(0) @binding(%d) var %s: %s;\n", s.TextureBinding, s.Name, texType)
		fmt.Fprintf(&sb, "@group(0) @binding(%d) var %s_sampler: sampler;\n", s.SamplerBinding, s.Name)
	}

	if len(info.Attributes) > 0 {
		sb.WriteString("\nstruct VertexInput {\n")
		for i, a := range info.Attributes {
			fmt.Fprintf(&sb, "    @location(%d) %s: %s,\n", i, a.Name, a.Type.WGSL())
		}
		sb.WriteString("};\n")
	}

	sb.WriteString("\nstruct VertexOutput {\n    @builtin(position) position: vec4<f32>,\n")
	for i, v := range b.varyings.varyings {
		fmt.Fprintf(&sb, "    @location(%d) %s: %s,\n", i, v.name, v.typ.WGSL())
	}
	sb.WriteString("};\n\n")

	sb.WriteString("@vertex\n")
	if len(info.Attributes) > 0 {
		sb.WriteString("fn vs_main(in: VertexInput) -> VertexOutput {\n")
	} else {
		sb.WriteString("fn vs_main() -> VertexOutput {\n")
	}
	sb.WriteString("    var out: VertexOutput;\n")
	sb.WriteString(b.vs.Code())
	sb.WriteString("    return out;\n}\n\n")

	sb.WriteString("@fragment\nfn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {\n")
	sb.WriteString(b.fs.Code())
	sb.WriteString("}\n")
	return sb.String()
}
