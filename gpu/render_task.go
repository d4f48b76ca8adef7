package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/drawpipe/geom"
)

// TaskState is the lifecycle state of a RenderTask.
type TaskState int

const (
	TaskRecorded TaskState = iota
	TaskQueued
	TaskExecuting
	TaskCompleted
	TaskFailed
)

// String returns the state name.
func (s TaskState) String() string {
	switch s {
	case TaskRecorded:
		return "recorded"
	case TaskQueued:
		return "queued"
	case TaskExecuting:
		return "executing"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

// RenderTask is one unit of deferred work against a render target proxy.
// Tasks are queued on a DrawingManager and executed exactly once by its
// Flush. Implementations embed TaskBase.
type RenderTask interface {
	Label() string
	State() TaskState
	// Err returns the failure of a failed task.
	Err() error
	Target() *RenderTargetProxy
	// Execute runs the task. A returned error fails this task only.
	Execute(pass *RenderPass) error

	taskBase() *TaskBase
}

// TaskBase holds the bookkeeping shared by every RenderTask.
type TaskBase struct {
	label  string
	state  TaskState
	err    error
	target *RenderTargetProxy
	inputs []*TextureProxy
	// temps are render targets created while executing, such as flattened
	// inputs. They live until the flush ends.
	temps []*RenderTargetProxy
}

// NewTaskBase returns the base of a task drawing into target.
func NewTaskBase(label string, target *RenderTargetProxy) TaskBase {
	return TaskBase{label: label, target: target}
}

func (t *TaskBase) Label() string              { return t.label }
func (t *TaskBase) State() TaskState           { return t.state }
func (t *TaskBase) Err() error                 { return t.err }
func (t *TaskBase) Target() *RenderTargetProxy { return t.target }

// Inputs returns the texture proxies the task reads.
func (t *TaskBase) Inputs() []*TextureProxy { return t.inputs }

// AddInput records a proxy the task reads. Queued tasks hold a reference
// to each input until the flush ends.
func (t *TaskBase) AddInput(p *TextureProxy) {
	if p == nil {
		return
	}
	t.inputs = append(t.inputs, p)
	if t.state == TaskQueued {
		p.Ref()
	}
}

func (t *TaskBase) taskBase() *TaskBase { return t }

func (t *TaskBase) queue() {
	t.state = TaskQueued
	if t.target != nil {
		t.target.Ref()
	}
	for _, p := range t.inputs {
		p.Ref()
	}
}

// release drops the references taken when the task was queued.
func (t *TaskBase) release() {
	for _, p := range t.temps {
		p.Unref()
	}
	t.temps = nil
	for _, p := range t.inputs {
		p.Unref()
	}
	if t.target != nil {
		t.target.Unref()
	}
}

func (t *TaskBase) instantiateTarget() (RenderTarget, error) {
	if t.target == nil {
		return nil, fmt.Errorf("%w: task %q has no target", ErrTargetUnavailable, t.label)
	}
	return t.target.Instantiate()
}

// DrawOp is one draw recorded in an OpsRenderTask.
type DrawOp interface {
	Execute(pass *RenderPass) error
	// Inputs returns the texture proxies the op samples.
	Inputs() []*TextureProxy
}

// OpsRenderTask runs a list of draw ops in one pass over its target. A
// leading ClearOp without a rectangle becomes the pass's load operation.
type OpsRenderTask struct {
	TaskBase
	ops []DrawOp
}

// NewOpsRenderTask returns a task drawing ops into target.
func NewOpsRenderTask(label string, target *RenderTargetProxy, ops ...DrawOp) *OpsRenderTask {
	t := &OpsRenderTask{TaskBase: NewTaskBase(label, target)}
	for _, op := range ops {
		t.AddOp(op)
	}
	return t
}

// AddOp appends an op.
func (t *OpsRenderTask) AddOp(op DrawOp) {
	if op == nil {
		return
	}
	t.ops = append(t.ops, op)
	for _, p := range op.Inputs() {
		t.AddInput(p)
	}
}

// NumOps returns the number of recorded ops.
func (t *OpsRenderTask) NumOps() int { return len(t.ops) }

func (t *OpsRenderTask) Execute(pass *RenderPass) error {
	rt, err := t.instantiateTarget()
	if err != nil {
		return err
	}
	load, clear, ops := LoadOpLoad, ColorTransparent, t.ops
	if len(ops) > 0 {
		if c, ok := ops[0].(*ClearOp); ok && c.Rect.Empty() {
			load, clear, ops = LoadOpClear, c.Color, ops[1:]
		}
	}
	if err := pass.Begin(t.label, rt, load, clear); err != nil {
		return err
	}
	for i, op := range ops {
		if err := op.Execute(pass); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return pass.End()
}

// FillRectOp draws a rectangle through a pipeline.
type FillRectOp struct {
	Rect geom.Rect
	// ViewMatrix maps Rect to device space.
	ViewMatrix geom.Matrix
	// LocalMatrix maps Rect's coordinates into the space the processors'
	// coordinate transforms expect.
	LocalMatrix        geom.Matrix
	Color              Color
	ColorProcessors    []FragmentProcessor
	CoverageProcessors []FragmentProcessor
	BlendMode          BlendMode
	// AA adds a half pixel coverage ramp along the edges when ViewMatrix
	// keeps rectangles axis aligned.
	AA      bool
	Scissor image.Rectangle
}

// NewFillRectOp returns an op filling rect with color through fps, drawn
// source-over without antialiasing.
func NewFillRectOp(rect geom.Rect, color Color, fps ...FragmentProcessor) *FillRectOp {
	op := &FillRectOp{
		Rect:        rect,
		ViewMatrix:  geom.Identity(),
		LocalMatrix: geom.Identity(),
		Color:       color,
		BlendMode:   BlendModeSrcOver,
	}
	for _, fp := range fps {
		if fp != nil {
			op.ColorProcessors = append(op.ColorProcessors, fp)
		}
	}
	return op
}

func (op *FillRectOp) Inputs() []*TextureProxy {
	var proxies []*TextureProxy
	collect := func(fp FragmentProcessor) {
		for i := range fp.NumTextureSamplers() {
			if p := fp.TextureSampler(i).Proxy; p != nil {
				proxies = append(proxies, p)
			}
		}
	}
	for _, root := range op.ColorProcessors {
		visitFragmentProcessors(root, collect)
	}
	for _, root := range op.CoverageProcessors {
		visitFragmentProcessors(root, collect)
	}
	return proxies
}

func (op *FillRectOp) Execute(pass *RenderPass) error {
	rt := pass.RenderTarget()
	var (
		gp       GeometryProcessor
		vertices []float32
		count    int
	)
	if op.AA && op.ViewMatrix.IsScaleTranslate() {
		gp = NewQuadPerEdgeAAGeometryProcessor(true, op.Color, op.LocalMatrix)
		vertices, count = QuadVertices(op.Rect, op.ViewMatrix, true)
	} else {
		gp = NewDefaultGeometryProcessor(op.Color, op.ViewMatrix, op.LocalMatrix)
		vertices, count = quadVertices(op.Rect), quadVertexCount
	}
	pipeline := NewPipeline(PipelineDesc{
		GeometryProcessor:  gp,
		ColorProcessors:    op.ColorProcessors,
		CoverageProcessors: op.CoverageProcessors,
		BlendMode:          op.BlendMode,
		OutputSwizzle:      pass.Context().Caps().WriteSwizzle(rt.Format()),
		Scissor:            op.Scissor,
	})
	if err := pass.BindPipeline(pipeline); err != nil {
		return err
	}
	return pass.Draw(vertices, count)
}

// ClearOp replaces the pixels of Rect, or of the whole target when Rect
// is empty, with Color.
type ClearOp struct {
	Rect  image.Rectangle
	Color Color
}

func (op *ClearOp) Inputs() []*TextureProxy { return nil }

func (op *ClearOp) Execute(pass *RenderPass) error {
	rt := pass.RenderTarget()
	bounds := image.Rect(0, 0, rt.Width(), rt.Height())
	r := bounds
	if !op.Rect.Empty() {
		r = op.Rect.Intersect(bounds)
		if r.Empty() {
			return nil
		}
	}
	fill := &FillRectOp{
		Rect:            geom.MakeXYWH(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy())),
		ViewMatrix:      geom.Identity(),
		LocalMatrix:     geom.Identity(),
		Color:           ColorWhite,
		ColorProcessors: []FragmentProcessor{NewConstColorProcessor(op.Color, InputModeIgnore)},
		BlendMode:       BlendModeSrc,
		Scissor:         r,
	}
	return fill.Execute(pass)
}

// errEffectDraw is returned when a runtime effect reports a failed draw.
var errEffectDraw = errors.New("gpu: runtime effect draw failed")

// RuntimeDrawTask draws a RuntimeEffect into its target. Inputs that
// cannot be sampled directly are flattened into temporary render targets
// first.
type RuntimeDrawTask struct {
	TaskBase
	effect RuntimeEffect
	offset geom.Point
}

// NewRuntimeDrawTask returns a task running effect over inputs.
func NewRuntimeDrawTask(target *RenderTargetProxy, effect RuntimeEffect, inputs []*TextureProxy, offset geom.Point) *RuntimeDrawTask {
	t := &RuntimeDrawTask{TaskBase: NewTaskBase("RuntimeDrawTask", target), effect: effect, offset: offset}
	if effect != nil {
		t.label = effect.Name()
	}
	for _, p := range inputs {
		t.AddInput(p)
	}
	return t
}

func (t *RuntimeDrawTask) Execute(pass *RenderPass) error {
	if t.effect == nil {
		return fmt.Errorf("%w: task %q has no effect", ErrProgramUnavailable, t.label)
	}
	rt, err := t.instantiateTarget()
	if err != nil {
		return err
	}
	textures := make([]Texture, len(t.inputs))
	for i, p := range t.inputs {
		tex, err := p.Instantiate()
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		if needsFlatten(tex) {
			if tex, err = t.flatten(pass, p); err != nil {
				return fmt.Errorf("flatten input %d: %w", i, err)
			}
		}
		textures[i] = tex
	}
	program := pass.Context().ProgramCache().GetProgram(&RuntimeProgramCreator{effect: t.effect})
	if program == nil {
		return fmt.Errorf("%w: %s", ErrProgramUnavailable, t.effect.Name())
	}
	if err := pass.Begin(t.label, rt, LoadOpLoad, ColorTransparent); err != nil {
		return err
	}
	if !t.effect.OnDraw(pass, program, textures, t.offset) {
		return fmt.Errorf("%w: %s", errEffectDraw, t.effect.Name())
	}
	return pass.End()
}

// flatten draws p into a new top-left RGBA render target and returns its
// texture.
func (t *RuntimeDrawTask) flatten(pass *RenderPass, p *TextureProxy) (Texture, error) {
	ctx := pass.Context()
	format := p.Format()
	if !ctx.Caps().IsFormatRenderable(format) {
		format = PixelFormatRGBA8888
	}
	rtp := ctx.ProxyProvider().CreateRenderTargetProxy(TextureDesc{
		Label:  t.label + "/flatten",
		Width:  p.Width(),
		Height: p.Height(),
		Format: format,
		Origin: OriginTopLeft,
	}, BackingFitExact)
	if rtp == nil {
		return nil, fmt.Errorf("%w: %dx%d", ErrTargetUnavailable, p.Width(), p.Height())
	}
	t.temps = append(t.temps, rtp)
	if err := fillWithTexture(pass, rtp, p); err != nil {
		return nil, err
	}
	tex := rtp.RenderTarget().AsTexture()
	if tex == nil {
		return nil, fmt.Errorf("%w: flattened target is not sampleable", ErrTextureUnavailable)
	}
	return tex, nil
}

// fillWithTexture copies src into dst with one full-target draw through
// the default pipeline.
func fillWithTexture(pass *RenderPass, dst *RenderTargetProxy, src *TextureProxy) error {
	rt, err := dst.Instantiate()
	if err != nil {
		return err
	}
	fp := NewTextureEffect(src, SamplerState{Filter: FilterModeNearest}, geom.Identity())
	pipeline := NewPipeline(PipelineDesc{
		GeometryProcessor: NewDefaultGeometryProcessor(ColorWhite, geom.Identity(), geom.Identity()),
		ColorProcessors:   []FragmentProcessor{fp},
		BlendMode:         BlendModeSrc,
		OutputSwizzle:     pass.Context().Caps().WriteSwizzle(rt.Format()),
	})
	if err := pass.Begin(dst.Label(), rt, LoadOpClear, ColorTransparent); err != nil {
		return err
	}
	if err := pass.BindPipeline(pipeline); err != nil {
		return err
	}
	if err := pass.Draw(quadVertices(geom.MakeWH(float64(src.Width()), float64(src.Height()))), quadVertexCount); err != nil {
		return err
	}
	return pass.End()
}
