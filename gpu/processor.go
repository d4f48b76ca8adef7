package gpu

import "sync"

// ClassID identifies a processor class inside program fingerprints.
type ClassID uint32

// classRegistry hands out class IDs. It is written by package-level
// variable initializers and read-only afterwards.
type classRegistry struct {
	mu     sync.Mutex
	byName map[string]ClassID
	names  []string
}

var processorClasses = &classRegistry{byName: make(map[string]ClassID)}

// RegisterProcessorClass returns the class ID for name, assigning a new
// one on first use. Call it from a package-level var so the ID is fixed
// before any Context exists:
//
//	var myEffectClassID = gpu.RegisterProcessorClass("MyEffect")
func RegisterProcessorClass(name string) ClassID {
	r := processorClasses
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byName[name]; ok {
		return id
	}
	r.names = append(r.names, name)
	id := ClassID(len(r.names)) //nolint:gosec // registry stays tiny
	r.byName[name] = id
	return id
}

// ProcessorClassName returns the name registered for id.
func ProcessorClassName(id ClassID) string {
	r := processorClasses
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == 0 || int(id) > len(r.names) {
		return ""
	}
	return r.names[id-1]
}

// Processor is a node that contributes shader code and uniform values.
type Processor interface {
	Name() string
	ClassID() ClassID
	// ComputeProcessorKey writes every configuration value that changes the
	// emitted shader text. Values that only reach uniforms must not be
	// written.
	ComputeProcessorKey(ctx *Context, key *BytesKey)
}

// GeometryProcessor owns the vertex stage of a draw.
type GeometryProcessor interface {
	Processor
	VertexAttributes() []Attribute
	EmitCode(args *GPEmitArgs)
	// SetData uploads per-draw uniforms. transforms yields the coordinate
	// transforms of the pipeline's fragment processors in emission order.
	SetData(buf *UniformBuffer, transforms *CoordTransformIter)
}

// FragmentProcessor computes a color from an input color. Fragment
// processors form trees through their children.
type FragmentProcessor interface {
	Processor
	NumChildren() int
	Child(i int) FragmentProcessor
	NumCoordTransforms() int
	CoordTransform(i int) *CoordTransform
	NumTextureSamplers() int
	TextureSampler(i int) TextureSampler
	EmitCode(args *FPEmitArgs)
	SetData(buf *UniformBuffer)
}

// FragmentProcessorBase carries the children and coordinate transforms of
// a fragment processor. Embed it and override what the processor needs.
type FragmentProcessorBase struct {
	children        []FragmentProcessor
	coordTransforms []*CoordTransform
}

// RegisterChild appends a child and returns its index.
func (b *FragmentProcessorBase) RegisterChild(child FragmentProcessor) int {
	b.children = append(b.children, child)
	return len(b.children) - 1
}

// AddCoordTransform appends a transform. The geometry processor emits one
// varying per transform.
func (b *FragmentProcessorBase) AddCoordTransform(ct *CoordTransform) {
	b.coordTransforms = append(b.coordTransforms, ct)
}

func (b *FragmentProcessorBase) NumChildren() int                     { return len(b.children) }
func (b *FragmentProcessorBase) Child(i int) FragmentProcessor        { return b.children[i] }
func (b *FragmentProcessorBase) NumCoordTransforms() int              { return len(b.coordTransforms) }
func (b *FragmentProcessorBase) CoordTransform(i int) *CoordTransform { return b.coordTransforms[i] }
func (b *FragmentProcessorBase) NumTextureSamplers() int              { return 0 }
func (b *FragmentProcessorBase) TextureSampler(int) TextureSampler    { return TextureSampler{} }
func (b *FragmentProcessorBase) SetData(*UniformBuffer)               {}

// visitFragmentProcessors walks fp and its descendants in pre-order.
func visitFragmentProcessors(fp FragmentProcessor, fn func(FragmentProcessor)) {
	fn(fp)
	for i := range fp.NumChildren() {
		visitFragmentProcessors(fp.Child(i), fn)
	}
}
