package gpu

import "hash/fnv"

// Program is a compiled, cacheable executable. Programs are owned by the
// ProgramCache. Their GPU state is freed only through ReleaseGPU, which
// must run while the owning device is alive.
type Program interface {
	ReleaseGPU()
}

// ProgramCreator produces the fingerprint of a program and, on a cache
// miss, the program itself.
type ProgramCreator interface {
	// ComputeProgramKey writes the structural key. Creators that would
	// generate identical shader text must write identical keys.
	ComputeProgramKey(ctx *Context, key *BytesKey)
	// CreateProgram builds the program, or returns nil on failure.
	CreateProgram(ctx *Context) Program
}

// sourceDigester is implemented by creators that can fingerprint the
// exact source they would compile. The ProgramCache uses it to verify
// that equal keys really mean equal programs.
type sourceDigester interface {
	SourceDigest(ctx *Context) (uint64, bool)
}

// digestedProgram is implemented by programs that remember the digest of
// the source they were built from.
type digestedProgram interface {
	sourceDigest() uint64
}

func digestSource(src string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(src))
	return h.Sum64()
}

// PipelineProgram is the compiled form of a Pipeline.
type PipelineProgram struct {
	info     *ProgramInfo
	compiled CompiledProgram
	uniforms *UniformBuffer
	digest   uint64

	// Cached render target state; RTAdjust is rewritten only on change.
	rtWidth  int
	rtHeight int
	rtOrigin ImageOrigin
	rtValid  bool

	released bool
}

// Info returns the generated program description.
func (p *PipelineProgram) Info() *ProgramInfo { return p.info }

// Compiled returns the backend program.
func (p *PipelineProgram) Compiled() CompiledProgram { return p.compiled }

// ReleaseGPU frees the backend program. Later calls do nothing.
func (p *PipelineProgram) ReleaseGPU() {
	if p.released {
		return
	}
	p.released = true
	if p.compiled != nil {
		p.compiled.Release()
		p.compiled = nil
	}
}

func (p *PipelineProgram) sourceDigest() uint64 { return p.digest }

func (p *PipelineProgram) setRenderTargetState(rt RenderTarget) {
	if p.rtValid && p.rtWidth == rt.Width() && p.rtHeight == rt.Height() && p.rtOrigin == rt.Origin() {
		return
	}
	p.rtWidth, p.rtHeight, p.rtOrigin, p.rtValid = rt.Width(), rt.Height(), rt.Origin(), true
	p.uniforms.setRTAdjust(rt.Width(), rt.Height(), rt.Origin())
}

// updateUniforms refreshes the uniform block for a draw of pipeline into
// rt and returns it.
func (p *PipelineProgram) updateUniforms(rt RenderTarget, pipeline *Pipeline) []byte {
	p.setRenderTargetState(rt)
	pipeline.setUniforms(p.uniforms)
	return p.uniforms.Bytes()
}

// PipelineProgramCreator creates programs for a Pipeline drawn into
// targets of a given format and sample count.
type PipelineProgramCreator struct {
	pipeline    *Pipeline
	format      PixelFormat
	sampleCount int
}

// NewPipelineProgramCreator returns a creator for pipeline drawing into
// rt.
func NewPipelineProgramCreator(pipeline *Pipeline, rt RenderTarget) *PipelineProgramCreator {
	return &PipelineProgramCreator{
		pipeline:    pipeline,
		format:      rt.Format(),
		sampleCount: max(rt.SampleCount(), 1),
	}
}

// ComputeProgramKey writes the pipeline key and the target state baked
// into the compiled program.
func (c *PipelineProgramCreator) ComputeProgramKey(ctx *Context, key *BytesKey) {
	c.pipeline.ComputeProgramKey(ctx, key)
	key.WriteInt(int(c.format))
	key.WriteInt(c.sampleCount)
}

// CreateProgram generates and compiles the program. Generation or
// compile errors are logged and reported as nil.
func (c *PipelineProgramCreator) CreateProgram(ctx *Context) Program {
	info, err := GenerateProgramInfo(ctx, c.pipeline, c.format, c.sampleCount)
	if err != nil {
		slogger().Warn("gpu: program generation failed", "gp", c.pipeline.geometryProcessor.Name(), "err", err)
		return nil
	}
	compiled, err := ctx.Backend().CompileProgram(info)
	if err != nil {
		slogger().Warn("gpu: program compile failed", "label", info.Label, "err", err)
		return nil
	}
	slogger().Debug("gpu: program built", "label", info.Label,
		"uniforms", len(info.Uniforms), "samplers", len(info.Samplers))
	return &PipelineProgram{
		info:     info,
		compiled: compiled,
		uniforms: newUniformBuffer(info.Uniforms, info.UniformSize),
		digest:   digestSource(info.Source),
	}
}

// SourceDigest hashes the source CreateProgram would compile.
func (c *PipelineProgramCreator) SourceDigest(ctx *Context) (uint64, bool) {
	info, err := GenerateProgramInfo(ctx, c.pipeline, c.format, c.sampleCount)
	if err != nil {
		return 0, false
	}
	return digestSource(info.Source), true
}
