package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/drawpipe/geom"
)

func uniformNames(info *ProgramInfo) []string {
	names := make([]string, len(info.Uniforms))
	for i, u := range info.Uniforms {
		names[i] = u.Name
	}
	return names
}

func TestGenerateProgramInfoSolidColor(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	info, err := GenerateProgramInfo(ctx, solidPipeline(ColorBlack, InputModeIgnore), PixelFormatRGBA8888, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"RTAdjust", "Matrix_P0", "Color_P0", "Color_P1"}, uniformNames(info))
	assert.Equal(t, []int{0, 16, 64, 80}, []int{
		info.Uniforms[0].Offset, info.Uniforms[1].Offset, info.Uniforms[2].Offset, info.Uniforms[3].Offset,
	})
	assert.Equal(t, 96, info.UniformSize)
	assert.Equal(t, 8, info.VertexStride)
	assert.Equal(t, "vs_main", info.VertexEntryPoint)
	assert.Equal(t, "fs_main", info.FragmentEntryPoint)
	assert.Equal(t, BlendModeSrcOver.Formula(), info.Blend)

	src := info.Source
	assert.Contains(t, src, "@group(0) @binding(0) var<uniform> u: Uniforms;")
	assert.Contains(t, src, "@location(0) position: vec2<f32>,")
	assert.Contains(t, src, "let devPosition = (u.Matrix_P0 * vec3<f32>(in.position, 1.0)).xy;")
	assert.Contains(t, src, "u.RTAdjust")
	assert.Contains(t, src, "output_P1 = u.Color_P1;")
	assert.Contains(t, src, "return (output_P1 * outputCoverage_P0);")
}

func TestGenerateProgramInfoNumbersProcessorsInPreOrder(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	compose := NewComposeFragmentProcessor(
		NewConstColorProcessor(ColorBlack, InputModeIgnore),
		NewConstColorProcessor(ColorWhite, InputModeModulateA),
	)
	coverage := NewConstColorProcessor(ColorWhite, InputModeModulateRGBA)
	pipeline := NewPipeline(PipelineDesc{
		GeometryProcessor:  NewDefaultGeometryProcessor(ColorWhite, geom.Identity(), geom.Identity()),
		ColorProcessors:    []FragmentProcessor{compose},
		CoverageProcessors: []FragmentProcessor{coverage},
	})

	assert.Equal(t, 1, pipeline.ProcessorIndex(compose))
	assert.Equal(t, 2, pipeline.ProcessorIndex(compose.Child(0)))
	assert.Equal(t, 3, pipeline.ProcessorIndex(compose.Child(1)))
	assert.Equal(t, 4, pipeline.ProcessorIndex(coverage))

	info, err := GenerateProgramInfo(ctx, pipeline, PixelFormatRGBA8888, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"RTAdjust", "Matrix_P0", "Color_P0", "Color_P2", "Color_P3", "Color_P4"}, uniformNames(info))
	assert.Contains(t, info.Source, "output_P3 = output_P2.a * u.Color_P3;")
	assert.Contains(t, info.Source, "return (output_P1 * output_P4);")
}

func TestGenerateProgramInfoTextureEffect(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	proxy := ctx.ProxyProvider().CreateTextureProxy(TextureDesc{Width: 30, Height: 20, Format: PixelFormatAlpha8}, BackingFitApprox)
	require.NotNil(t, proxy)

	pipeline := NewPipeline(PipelineDesc{
		GeometryProcessor: NewDefaultGeometryProcessor(ColorWhite, geom.Identity(), geom.Identity()),
		ColorProcessors:   []FragmentProcessor{NewTextureEffect(proxy, LinearSampling, geom.Identity())},
	})
	info, err := GenerateProgramInfo(ctx, pipeline, PixelFormatRGBA8888, 1)
	require.NoError(t, err)

	require.Len(t, info.Samplers, 1)
	assert.Equal(t, SamplerInfo{Name: "TextureSampler_0_P1", Type: SamplerType2D, TextureBinding: 1, SamplerBinding: 2}, info.Samplers[0])
	assert.Contains(t, info.Uniforms, Uniform{Name: "CoordTransformMatrix_0_P0", Type: SLTypeFloat3x3, Visibility: ShaderFlagVertex, Offset: 64})
	assert.Contains(t, info.Source, "@group(0) @binding(1) var TextureSampler_0_P1: texture_2d<f32>;")
	assert.Contains(t, info.Source, "@group(0) @binding(2) var TextureSampler_0_P1_sampler: sampler;")
	assert.Contains(t, info.Source, "out.TransformedCoords_0_P0 = (u.CoordTransformMatrix_0_P0 * vec3<f32>(in.position, 1.0)).xy;")
	// Alpha-only textures are read through the 000r swizzle.
	assert.Contains(t, info.Source, "vec4<f32>(0.0, 0.0, 0.0, (textureSampleLevel(TextureSampler_0_P1, TextureSampler_0_P1_sampler, in.TransformedCoords_0_P0, 0.0)).r)")
}

// dupUniformProcessor declares the same uniform twice.
type dupUniformProcessor struct {
	FragmentProcessorBase
}

var dupUniformClassID = RegisterProcessorClass("dupUniformProcessor")

func (fp *dupUniformProcessor) Name() string                            { return "dupUniformProcessor" }
func (fp *dupUniformProcessor) ClassID() ClassID                        { return dupUniformClassID }
func (fp *dupUniformProcessor) ComputeProcessorKey(*Context, *BytesKey) {}
func (fp *dupUniformProcessor) EmitCode(args *FPEmitArgs) {
	a := args.UniformHandler.AddUniform(ShaderFlagFragment, SLTypeFloat4, "Value")
	b := args.UniformHandler.AddUniform(ShaderFlagFragment, SLTypeFloat4, "Value")
	args.FragBuilder.CodeAppendf("%s = %s + %s;", args.OutputColor, a, b)
}

func TestGenerateProgramInfoRejectsDuplicateUniforms(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{})
	pipeline := NewPipeline(PipelineDesc{
		GeometryProcessor: NewDefaultGeometryProcessor(ColorWhite, geom.Identity(), geom.Identity()),
		ColorProcessors:   []FragmentProcessor{&dupUniformProcessor{}},
	})

	_, err := GenerateProgramInfo(ctx, pipeline, PixelFormatRGBA8888, 1)
	require.ErrorIs(t, err, ErrDuplicateUniform)

	// The cache reports the failure as a nil program and compiles nothing.
	assert.Nil(t, ctx.ProgramCache().GetProgram(NewPipelineProgramCreator(pipeline, testTarget(8, 8))))
	assert.Equal(t, 0, backend.compiles)
	assert.True(t, ctx.ProgramCache().Empty())
}

func TestPipelineProgramUpdateUniforms(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	pipeline := solidPipeline(RGBA(1, 0, 0, 0.5), InputModeIgnore)
	info, err := GenerateProgramInfo(ctx, pipeline, PixelFormatRGBA8888, 1)
	require.NoError(t, err)

	program := &PipelineProgram{info: info, uniforms: newUniformBuffer(info.Uniforms, info.UniformSize)}
	data := program.updateUniforms(testTarget(200, 100), pipeline)
	require.Len(t, data, 96)

	floats := func(off, n int) []float32 {
		out := make([]float32, n)
		for i := range out {
			out[i] = float32frombytes(data[off+4*i:])
		}
		return out
	}
	assert.Equal(t, []float32{0.01, -1, -0.02, 1}, floats(0, 4))
	assert.Equal(t, []float32{0.5, 0, 0, 0.5}, floats(80, 4))
	// Identity matrix, one column per 16 bytes.
	assert.Equal(t, []float32{1, 0, 0}, floats(16, 3))
	assert.Equal(t, []float32{0, 1, 0}, floats(32, 3))
	assert.Equal(t, []float32{0, 0, 1}, floats(48, 3))
}

func TestTiledTextureEffectClampsToContentOfApproxBacking(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	pp := ctx.ProxyProvider()
	desc := TextureDesc{Width: 120, Height: 120, Format: PixelFormatRGBA8888}
	exact := pp.CreateTextureProxy(desc, BackingFitExact)
	approx := pp.CreateTextureProxy(desc, BackingFitApprox)
	require.NotNil(t, exact)
	require.NotNil(t, approx)
	w, h := approx.BackingSize()
	require.Equal(t, 128, w)
	require.Equal(t, 128, h)

	assert.IsType(t, &TextureEffect{}, NewTiledTextureEffect(exact, LinearSampling, geom.Identity(), nil))

	fp := NewTiledTextureEffect(approx, LinearSampling, geom.Identity(), nil)
	require.IsType(t, &TiledTextureEffect{}, fp)

	pipeline := NewPipeline(PipelineDesc{
		GeometryProcessor: NewDefaultGeometryProcessor(ColorWhite, geom.Identity(), geom.Identity()),
		ColorProcessors:   []FragmentProcessor{fp},
	})
	info, err := GenerateProgramInfo(ctx, pipeline, PixelFormatRGBA8888, 1)
	require.NoError(t, err)
	assert.Contains(t, info.Source, "coord.x = clamp(coord.x, u.Clamp_P1.x, u.Clamp_P1.z);")
	assert.Contains(t, info.Source, "coord.y = clamp(coord.y, u.Clamp_P1.y, u.Clamp_P1.w);")

	program := &PipelineProgram{info: info, uniforms: newUniformBuffer(info.Uniforms, info.UniformSize)}
	data := program.updateUniforms(testTarget(120, 120), pipeline)
	var clampBounds Uniform
	for _, u := range info.Uniforms {
		if u.Name == "Clamp_P1" {
			clampBounds = u
		}
	}
	require.Equal(t, "Clamp_P1", clampBounds.Name)
	got := make([]float32, 4)
	for i := range got {
		got[i] = float32frombytes(data[clampBounds.Offset+4*i:])
	}
	// Half a texel inside the 120x120 contents of the 128x128 backing.
	assert.Equal(t, []float32{0.5 / 128, 0.5 / 128, 119.5 / 128, 119.5 / 128}, got)
}

func TestPipelineRejectsSharedProcessor(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{})
	shared := NewConstColorProcessor(ColorBlack, InputModeModulateRGBA)
	pipeline := NewPipeline(PipelineDesc{
		GeometryProcessor: NewDefaultGeometryProcessor(ColorWhite, geom.Identity(), geom.Identity()),
		ColorProcessors:   []FragmentProcessor{shared},
		CoverageProcessors: []FragmentProcessor{
			NewComposeFragmentProcessor(NewConstColorProcessor(ColorWhite, InputModeModulateA), shared),
		},
	})
	require.ErrorIs(t, pipeline.Err(), ErrSharedProcessor)
	assert.Equal(t, 1, pipeline.ProcessorIndex(shared))

	_, err := GenerateProgramInfo(ctx, pipeline, PixelFormatRGBA8888, 1)
	require.ErrorIs(t, err, ErrSharedProcessor)
	assert.Nil(t, ctx.ProgramCache().GetProgram(NewPipelineProgramCreator(pipeline, testTarget(8, 8))))
	assert.Equal(t, 0, backend.compiles)

	assert.NoError(t, solidPipeline(ColorBlack, InputModeIgnore).Err())
}
