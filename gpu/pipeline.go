package gpu

import (
	"fmt"
	"image"
)

// PipelineDesc lists the parts of a Pipeline.
type PipelineDesc struct {
	GeometryProcessor GeometryProcessor
	// ColorProcessors run in order, each taking the previous output.
	ColorProcessors []FragmentProcessor
	// CoverageProcessors modulate the geometry processor's coverage.
	CoverageProcessors []FragmentProcessor
	BlendMode          BlendMode
	OutputSwizzle      Swizzle
	// Scissor limits drawing to a rectangle of the target. The zero
	// rectangle disables scissoring.
	Scissor image.Rectangle
}

// fpSlot is the structural position of a fragment processor: its
// processor index and the offsets of its first coordinate transform and
// sampler in the pipeline-wide orders.
type fpSlot struct {
	index        int
	coordStart   int
	samplerStart int
}

// Pipeline is the immutable shading recipe of one draw. It owns its
// processors and must not be shared between tasks.
type Pipeline struct {
	geometryProcessor  GeometryProcessor
	fragmentProcessors []FragmentProcessor
	numColorProcessors int
	blendMode          BlendMode
	outputSwizzle      Swizzle
	scissor            image.Rectangle

	slots      map[FragmentProcessor]fpSlot
	transforms []*CoordTransform
	samplers   []TextureSampler
	numProcs   int
	err        error
}

// NewPipeline flattens the processor trees into their emission order.
func NewPipeline(desc PipelineDesc) *Pipeline {
	p := &Pipeline{
		geometryProcessor:  desc.GeometryProcessor,
		numColorProcessors: len(desc.ColorProcessors),
		blendMode:          desc.BlendMode,
		outputSwizzle:      desc.OutputSwizzle,
		scissor:            desc.Scissor,
		slots:              make(map[FragmentProcessor]fpSlot),
		numProcs:           1,
	}
	if p.outputSwizzle == "" {
		p.outputSwizzle = SwizzleRGBA
	}
	p.fragmentProcessors = append(p.fragmentProcessors, desc.ColorProcessors...)
	p.fragmentProcessors = append(p.fragmentProcessors, desc.CoverageProcessors...)
	for _, root := range p.fragmentProcessors {
		visitFragmentProcessors(root, func(fp FragmentProcessor) {
			if _, dup := p.slots[fp]; dup {
				if p.err == nil {
					p.err = fmt.Errorf("%w: %s", ErrSharedProcessor, fp.Name())
				}
				return
			}
			p.slots[fp] = fpSlot{
				index:        p.numProcs,
				coordStart:   len(p.transforms),
				samplerStart: len(p.samplers),
			}
			p.numProcs++
			for i := range fp.NumCoordTransforms() {
				p.transforms = append(p.transforms, fp.CoordTransform(i))
			}
			for i := range fp.NumTextureSamplers() {
				p.samplers = append(p.samplers, fp.TextureSampler(i))
			}
		})
	}
	return p
}

// Err reports a malformed processor tree. A pipeline with an error
// cannot be compiled.
func (p *Pipeline) Err() error { return p.err }

// GeometryProcessor returns the pipeline's geometry processor.
func (p *Pipeline) GeometryProcessor() GeometryProcessor { return p.geometryProcessor }

// NumFragmentProcessors returns the number of top-level fragment processors.
func (p *Pipeline) NumFragmentProcessors() int { return len(p.fragmentProcessors) }

// NumColorProcessors returns how many leading fragment processors are
// color processors.
func (p *Pipeline) NumColorProcessors() int { return p.numColorProcessors }

// FragmentProcessor returns the i-th top-level fragment processor.
func (p *Pipeline) FragmentProcessor(i int) FragmentProcessor { return p.fragmentProcessors[i] }

// BlendMode returns the blend mode.
func (p *Pipeline) BlendMode() BlendMode { return p.blendMode }

// OutputSwizzle returns the swizzle applied to the final color.
func (p *Pipeline) OutputSwizzle() Swizzle { return p.outputSwizzle }

// Scissor returns the scissor rectangle; empty means none.
func (p *Pipeline) Scissor() image.Rectangle { return p.scissor }

// TextureSamplers returns every sampler of every fragment processor in
// pre-order. Sampler handles index into this slice.
func (p *Pipeline) TextureSamplers() []TextureSampler { return p.samplers }

// CoordTransformIter returns an iterator over the pipeline's coordinate
// transforms in emission order.
func (p *Pipeline) CoordTransformIter() *CoordTransformIter {
	return &CoordTransformIter{transforms: p.transforms}
}

// ProcessorIndex returns the structural index of fp, or -1 if fp is not
// part of the pipeline. The geometry processor has index 0.
func (p *Pipeline) ProcessorIndex(fp FragmentProcessor) int {
	slot, ok := p.slots[fp]
	if !ok {
		return -1
	}
	return slot.index
}

func processorSuffix(index int) string {
	return fmt.Sprintf("_P%d", index)
}

// ComputeProgramKey writes the pipeline's structural fingerprint: every
// processor's class and key in emission order, followed by the
// fixed-function state compiled into the program.
func (p *Pipeline) ComputeProgramKey(ctx *Context, key *BytesKey) {
	gp := p.geometryProcessor
	key.Write(uint32(gp.ClassID()))
	for _, attr := range gp.VertexAttributes() {
		key.Write(attr.ComputeKey())
	}
	gp.ComputeProcessorKey(ctx, key)

	key.WriteInt(len(p.fragmentProcessors))
	key.WriteInt(p.numColorProcessors)
	for _, root := range p.fragmentProcessors {
		visitFragmentProcessors(root, func(fp FragmentProcessor) {
			key.Write(uint32(fp.ClassID()))
			fp.ComputeProcessorKey(ctx, key)
			key.WriteInt(fp.NumChildren())
			key.WriteInt(fp.NumCoordTransforms())
			key.WriteInt(fp.NumTextureSamplers())
			for i := range fp.NumTextureSamplers() {
				writeSamplerKey(ctx, key, fp.TextureSampler(i))
			}
		})
	}
	key.WriteInt(int(p.blendMode))
	key.Write(p.outputSwizzle.Key())
}

func writeSamplerKey(ctx *Context, key *BytesKey, s TextureSampler) {
	if s.Proxy == nil {
		key.Write(^uint32(0))
		return
	}
	samplerType := SamplerType2D
	if tex := s.Proxy.Texture(); tex != nil {
		samplerType = tex.SamplerType()
	}
	key.WriteInt(int(samplerType))
	key.Write(ctx.Caps().ReadSwizzle(s.Proxy.Format()).Key())
}

// setUniforms runs every processor's SetData with its name suffix.
func (p *Pipeline) setUniforms(buf *UniformBuffer) {
	buf.SetNameSuffix(processorSuffix(0))
	p.geometryProcessor.SetData(buf, p.CoordTransformIter())
	for _, root := range p.fragmentProcessors {
		visitFragmentProcessors(root, func(fp FragmentProcessor) {
			buf.SetNameSuffix(processorSuffix(p.slots[fp].index))
			fp.SetData(buf)
		})
	}
	buf.SetNameSuffix("")
}

// instantiateTextures resolves every sampled proxy and returns the bound
// samplers in handle order.
func (p *Pipeline) instantiateTextures() ([]BoundSampler, error) {
	bound := make([]BoundSampler, 0, len(p.samplers))
	for i, s := range p.samplers {
		if s.Proxy == nil {
			return nil, fmt.Errorf("%w: sampler %d has no proxy", ErrTextureUnavailable, i)
		}
		tex, err := s.Proxy.Instantiate()
		if err != nil {
			return nil, fmt.Errorf("sampler %d: %w", i, err)
		}
		bound = append(bound, BoundSampler{Texture: tex, State: s.State})
	}
	return bound, nil
}
