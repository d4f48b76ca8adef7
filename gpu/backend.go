package gpu

// LoadOp tells a render pass what to do with existing target contents.
type LoadOp int

const (
	LoadOpLoad LoadOp = iota
	LoadOpClear
)

// ProgramBackend compiles programs.
type ProgramBackend interface {
	// CompileProgram compiles the generated module. A returned error is a
	// compile failure and is never fatal to the caller.
	CompileProgram(info *ProgramInfo) (CompiledProgram, error)
}

// ResourceBackend allocates and reads back GPU resources.
type ResourceBackend interface {
	// CreateTexture creates a sampleable texture. pixels may be nil; when
	// set it holds rowBytes-strided data in desc.Format.
	CreateTexture(desc TextureDesc, pixels []byte, rowBytes int) (Texture, error)
	CreateRenderTarget(desc TextureDesc) (RenderTarget, error)
	// ReadPixels copies a w by h region of target starting at (x, y) into
	// dst as tightly packed pixels in target.Format(), rows in memory order.
	ReadPixels(target RenderTarget, x, y, w, h int, dst []byte) error
}

// CommandBackend records and submits GPU commands.
type CommandBackend interface {
	BeginRenderPass(desc RenderPassDesc) (CommandPass, error)
	// Submit sends recorded command passes to the GPU. With syncCPU it
	// blocks until the GPU has finished them.
	Submit(syncCPU bool) error
}

// Backend is the full set of services a graphics API implementation
// provides to a Context.
type Backend interface {
	ProgramBackend
	ResourceBackend
	CommandBackend

	Name() string
	Caps() *Caps
	// Release destroys the device side state. The backend must not be
	// used afterwards.
	Release()
}

// CompiledProgram is a backend's executable form of a ProgramInfo.
type CompiledProgram interface {
	Release()
}

// RenderPassDesc describes a command pass.
type RenderPassDesc struct {
	Label      string
	Target     RenderTarget
	Load       LoadOp
	ClearColor Color
}

// BoundSampler is a resolved texture with the state to sample it with.
type BoundSampler struct {
	Texture Texture
	State   SamplerState
}

// CommandPass records draws into one render target.
type CommandPass interface {
	SetProgram(program CompiledProgram)
	SetUniforms(data []byte)
	SetSamplers(samplers []BoundSampler)
	SetScissor(x, y, w, h int)
	// Draw issues vertexCount vertices as a triangle list. vertices holds
	// the interleaved attributes of the current program.
	Draw(vertices []float32, vertexCount int)
	End() error
}
