package filter

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/drawpipe/gpu"
)

// BlurDirection is the axis of a 1D blur pass.
type BlurDirection int

const (
	BlurHorizontal BlurDirection = iota
	BlurVertical
)

var gaussianBlur1DClassID = gpu.RegisterProcessorClass("GaussianBlur1DFragmentProcessor")

// GaussianBlur1DFragmentProcessor blurs its child along one axis. The
// child is sampled at up to 4*maxSigma+1 offsets of one step each; taps
// beyond KernelRadius(sigma) are skipped at run time, so sigma is a
// uniform and only maxSigma is part of the program.
type GaussianBlur1DFragmentProcessor struct {
	gpu.FragmentProcessorBase
	sigma      float32
	direction  BlurDirection
	stepLength float32
	maxSigma   float32
}

// NewGaussianBlur1DFragmentProcessor returns a blur of source with sigma
// in pixels of the source's sampling space. stepLength scales the
// distance between taps. It returns nil if source is nil.
func NewGaussianBlur1DFragmentProcessor(source gpu.FragmentProcessor, sigma float32, direction BlurDirection,
	stepLength, maxSigma float32) gpu.FragmentProcessor {
	if source == nil {
		return nil
	}
	fp := &GaussianBlur1DFragmentProcessor{
		sigma:      min(sigma, maxSigma),
		direction:  direction,
		stepLength: stepLength,
		maxSigma:   maxSigma,
	}
	fp.RegisterChild(source)
	return fp
}

func (fp *GaussianBlur1DFragmentProcessor) Name() string         { return "GaussianBlur1DFragmentProcessor" }
func (fp *GaussianBlur1DFragmentProcessor) ClassID() gpu.ClassID { return gaussianBlur1DClassID }

func (fp *GaussianBlur1DFragmentProcessor) ComputeProcessorKey(_ *gpu.Context, key *gpu.BytesKey) {
	key.WriteInt(KernelRadius(fp.maxSigma))
}

func (fp *GaussianBlur1DFragmentProcessor) EmitCode(args *gpu.FPEmitArgs) {
	sigma := args.UniformHandler.AddUniform(gpu.ShaderFlagFragment, gpu.SLTypeFloat, "Sigma")
	step := args.UniformHandler.AddUniform(gpu.ShaderFlagFragment, gpu.SLTypeFloat2, "Step")
	maxRadius := KernelRadius(fp.maxSigma)

	fb := args.FragBuilder
	fb.CodeAppendf("let radius = i32(ceil(2.0 * %s));", sigma)
	fb.CodeAppend("var sum = vec4<f32>(0.0);")
	fb.CodeAppend("var total = 0.0;")
	fb.CodeAppendf("for (var j = 0; j <= %d; j++)", 2*maxRadius)
	fb.OpenBlock()
	fb.CodeAppendf("let i = j - %d;", maxRadius)
	fb.CodeAppend("if (i < -radius || i > radius) { continue; }")
	fb.CodeAppendf("let weight = exp(-f32(i * i) / (2.0 * %[1]s * %[1]s));", sigma)
	child := args.EmitChild(0, args.InputColor, func(coord string) string {
		return fmt.Sprintf("(%s + %s * f32(i))", coord, step)
	})
	fb.CodeAppendf("sum += %s * weight;", child)
	fb.CodeAppend("total += weight;")
	fb.CloseBlock()
	fb.CodeAppendf("%s = sum / total;", args.OutputColor)
}

// SetData uploads sigma and the per-tap offset, mapped into the child's
// normalized texture coordinates.
func (fp *GaussianBlur1DFragmentProcessor) SetData(buf *gpu.UniformBuffer) {
	buf.SetData("Sigma", math32.Max(fp.sigma, 1e-4))
	dx, dy := float64(fp.stepLength), 0.0
	if fp.direction == BlurVertical {
		dx, dy = 0, float64(fp.stepLength)
	}
	if ct := firstCoordTransform(fp.Child(0)); ct != nil {
		m := ct.TotalMatrix()
		dx, dy = m.ScaleX()*dx+m.SkewX()*dy, m.SkewY()*dx+m.ScaleY()*dy
	}
	buf.SetData("Step", float32(dx), float32(dy))
}

func firstCoordTransform(fp gpu.FragmentProcessor) *gpu.CoordTransform {
	if fp.NumCoordTransforms() > 0 {
		return fp.CoordTransform(0)
	}
	for i := range fp.NumChildren() {
		if ct := firstCoordTransform(fp.Child(i)); ct != nil {
			return ct
		}
	}
	return nil
}
