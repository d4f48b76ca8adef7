package gpu

import (
	"fmt"
	"image"
)

// RenderPass drives one backend command pass into a render target. Tasks
// receive a RenderPass from the DrawingManager and use it to bind
// pipelines and draw.
type RenderPass struct {
	ctx    *Context
	pass   CommandPass
	target RenderTarget
	label  string
	draws  int
}

func newRenderPass(ctx *Context) *RenderPass {
	return &RenderPass{ctx: ctx}
}

// Context returns the owning context.
func (rp *RenderPass) Context() *Context { return rp.ctx }

// RenderTarget returns the target of the open pass, or nil.
func (rp *RenderPass) RenderTarget() RenderTarget { return rp.target }

// Active reports whether a pass is open.
func (rp *RenderPass) Active() bool { return rp.pass != nil }

// Begin opens a pass into target.
func (rp *RenderPass) Begin(label string, target RenderTarget, load LoadOp, clear Color) error {
	if rp.pass != nil {
		return ErrRenderPassActive
	}
	if target == nil {
		return ErrTargetUnavailable
	}
	pass, err := rp.ctx.backend.BeginRenderPass(RenderPassDesc{
		Label:      label,
		Target:     target,
		Load:       load,
		ClearColor: clear,
	})
	if err != nil {
		return fmt.Errorf("begin render pass %q: %w", label, err)
	}
	rp.pass, rp.target, rp.label, rp.draws = pass, target, label, 0
	return nil
}

// BindPipeline resolves the pipeline's textures, fetches its program from
// the program cache and binds program, uniforms, samplers and scissor.
func (rp *RenderPass) BindPipeline(pipeline *Pipeline) error {
	if rp.pass == nil {
		return ErrRenderPassInactive
	}
	if err := pipeline.Err(); err != nil {
		return err
	}
	samplers, err := pipeline.instantiateTextures()
	if err != nil {
		return err
	}
	program := rp.ctx.programs.GetProgram(NewPipelineProgramCreator(pipeline, rp.target))
	if program == nil {
		return fmt.Errorf("%w: %s", ErrProgramUnavailable, pipeline.geometryProcessor.Name())
	}
	pp, ok := program.(*PipelineProgram)
	if !ok {
		return fmt.Errorf("%w: cached program is %T", ErrProgramUnavailable, program)
	}
	uniforms := pp.updateUniforms(rp.target, pipeline)
	rp.bind(pp.compiled, uniforms, samplers, pipeline.scissor)
	return nil
}

// BindProgram binds an already compiled program with its uniform block
// and samplers. It is the entry point for runtime effects.
func (rp *RenderPass) BindProgram(program CompiledProgram, uniforms []byte, samplers []BoundSampler) error {
	if rp.pass == nil {
		return ErrRenderPassInactive
	}
	if program == nil {
		return ErrProgramUnavailable
	}
	rp.bind(program, uniforms, samplers, image.Rectangle{})
	return nil
}

func (rp *RenderPass) bind(program CompiledProgram, uniforms []byte, samplers []BoundSampler, scissor image.Rectangle) {
	bounds := image.Rect(0, 0, rp.target.Width(), rp.target.Height())
	if !scissor.Empty() {
		scissor = scissor.Intersect(bounds)
		if rp.target.Origin() == OriginBottomLeft {
			scissor = image.Rect(scissor.Min.X, bounds.Dy()-scissor.Max.Y, scissor.Max.X, bounds.Dy()-scissor.Min.Y)
		}
	} else {
		scissor = bounds
	}
	rp.pass.SetProgram(program)
	rp.pass.SetUniforms(uniforms)
	rp.pass.SetSamplers(samplers)
	rp.pass.SetScissor(scissor.Min.X, scissor.Min.Y, scissor.Dx(), scissor.Dy())
}

// Draw issues vertexCount vertices of the bound program.
func (rp *RenderPass) Draw(vertices []float32, vertexCount int) error {
	if rp.pass == nil {
		return ErrRenderPassInactive
	}
	if vertexCount <= 0 {
		return nil
	}
	rp.pass.Draw(vertices, vertexCount)
	rp.draws++
	return nil
}

// End closes the pass.
func (rp *RenderPass) End() error {
	if rp.pass == nil {
		return ErrRenderPassInactive
	}
	pass := rp.pass
	rp.pass, rp.target = nil, nil
	if err := pass.End(); err != nil {
		return fmt.Errorf("end render pass %q: %w", rp.label, err)
	}
	return nil
}
