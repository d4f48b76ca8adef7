package gpu

import "github.com/gogpu/drawpipe/geom"

// RuntimeEffect is a user effect that manages its own program. The
// program is cached in the context's ProgramCache like pipeline programs.
type RuntimeEffect interface {
	Name() string
	// ComputeProgramKey writes everything that changes the program.
	ComputeProgramKey(ctx *Context, key *BytesKey)
	// CreateProgram builds the program, or returns nil on failure.
	CreateProgram(ctx *Context) Program
	// OnDraw draws into the pass's target, which is open, using inputs
	// as plain top-left 2D textures. It reports whether the draw
	// succeeded.
	OnDraw(pass *RenderPass, program Program, inputs []Texture, offset geom.Point) bool
}

// runtimeKeyTag starts every runtime effect key. Processor class IDs
// start at 1, so runtime keys never equal pipeline keys.
const runtimeKeyTag = 0

// RuntimeProgramCreator creates the program of a RuntimeEffect.
type RuntimeProgramCreator struct {
	effect RuntimeEffect
}

// NewRuntimeProgramCreator returns a creator for effect.
func NewRuntimeProgramCreator(effect RuntimeEffect) *RuntimeProgramCreator {
	return &RuntimeProgramCreator{effect: effect}
}

func (c *RuntimeProgramCreator) ComputeProgramKey(ctx *Context, key *BytesKey) {
	key.Write(runtimeKeyTag)
	key.WriteString(c.effect.Name())
	c.effect.ComputeProgramKey(ctx, key)
}

func (c *RuntimeProgramCreator) CreateProgram(ctx *Context) Program {
	return c.effect.CreateProgram(ctx)
}
