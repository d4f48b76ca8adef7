package gpu

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

var errFakeAllocation = errors.New("fake: allocation failed")

// fakeBackend records everything a Context asks of it.
type fakeBackend struct {
	caps *Caps

	compiles        int
	programReleases int
	failCompile     func(*ProgramInfo) bool
	compiled        []*ProgramInfo

	// failTargets makes CreateRenderTarget fail for targets with this
	// label.
	failTargets string

	textures   []*fakeTexture
	targets    []*fakeTarget
	passes     []*fakePass
	submits    int
	lastSync   bool
	released   bool
	failSubmit error

	// events logs submits and program releases in call order.
	events []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{caps: DefaultCaps()}
}

func (b *fakeBackend) Name() string { return "fake" }
func (b *fakeBackend) Caps() *Caps  { return b.caps }
func (b *fakeBackend) Release()     { b.released = true }

func (b *fakeBackend) CompileProgram(info *ProgramInfo) (CompiledProgram, error) {
	b.compiles++
	if b.failCompile != nil && b.failCompile(info) {
		return nil, errors.New("fake: compile failed")
	}
	b.compiled = append(b.compiled, info)
	return &fakeProgram{backend: b, info: info}, nil
}

func (b *fakeBackend) CreateTexture(desc TextureDesc, pixels []byte, _ int) (Texture, error) {
	t := &fakeTexture{desc: desc, uploaded: pixels != nil}
	b.textures = append(b.textures, t)
	return t, nil
}

func (b *fakeBackend) CreateRenderTarget(desc TextureDesc) (RenderTarget, error) {
	if b.failTargets != "" && desc.Label == b.failTargets {
		return nil, errFakeAllocation
	}
	rt := &fakeTarget{desc: desc}
	rt.texture = &fakeTexture{desc: desc}
	b.targets = append(b.targets, rt)
	return rt, nil
}

// ReadPixels fills each row with its row index in the target's memory
// order.
func (b *fakeBackend) ReadPixels(target RenderTarget, _, y, w, h int, dst []byte) error {
	bpp := target.Format().BytesPerPixel()
	for row := range h {
		for i := range w * bpp {
			dst[row*w*bpp+i] = byte(y + row)
		}
	}
	return nil
}

func (b *fakeBackend) BeginRenderPass(desc RenderPassDesc) (CommandPass, error) {
	p := &fakePass{desc: desc}
	b.passes = append(b.passes, p)
	return p, nil
}

func (b *fakeBackend) Submit(syncCPU bool) error {
	b.submits++
	b.lastSync = syncCPU
	b.events = append(b.events, "submit")
	return b.failSubmit
}

func (b *fakeBackend) passLabels() []string {
	labels := make([]string, len(b.passes))
	for i, p := range b.passes {
		labels[i] = p.desc.Label
	}
	return labels
}

type fakeProgram struct {
	backend  *fakeBackend
	info     *ProgramInfo
	releases int
}

func (p *fakeProgram) Release() {
	p.releases++
	p.backend.programReleases++
	p.backend.events = append(p.backend.events, "release-program")
}

type fakeTexture struct {
	desc        TextureDesc
	samplerType SamplerType
	yuv         bool
	uploaded    bool
	releases    int
}

func (t *fakeTexture) Width() int               { return t.desc.Width }
func (t *fakeTexture) Height() int              { return t.desc.Height }
func (t *fakeTexture) Format() PixelFormat      { return t.desc.Format }
func (t *fakeTexture) Origin() ImageOrigin      { return t.desc.Origin }
func (t *fakeTexture) Mipmapped() bool          { return t.desc.Mipmapped }
func (t *fakeTexture) SamplerType() SamplerType { return t.samplerType }
func (t *fakeTexture) IsYUV() bool              { return t.yuv }
func (t *fakeTexture) Release()                 { t.releases++ }

type fakeTarget struct {
	desc     TextureDesc
	texture  *fakeTexture
	external bool
	releases int
}

func (t *fakeTarget) Width() int            { return t.desc.Width }
func (t *fakeTarget) Height() int           { return t.desc.Height }
func (t *fakeTarget) Format() PixelFormat   { return t.desc.Format }
func (t *fakeTarget) Origin() ImageOrigin   { return t.desc.Origin }
func (t *fakeTarget) SampleCount() int      { return max(t.desc.SampleCount, 1) }
func (t *fakeTarget) ExternallyOwned() bool { return t.external }
func (t *fakeTarget) AsTexture() Texture {
	if t.texture == nil {
		return nil
	}
	return t.texture
}
func (t *fakeTarget) Release() { t.releases++ }

type fakePass struct {
	desc     RenderPassDesc
	programs []CompiledProgram
	uniforms [][]byte
	samplers [][]BoundSampler
	scissors []image.Rectangle
	draws    []int
	ended    bool
}

func (p *fakePass) SetProgram(program CompiledProgram) { p.programs = append(p.programs, program) }
func (p *fakePass) SetUniforms(data []byte) {
	p.uniforms = append(p.uniforms, append([]byte(nil), data...))
}
func (p *fakePass) SetSamplers(samplers []BoundSampler) { p.samplers = append(p.samplers, samplers) }
func (p *fakePass) SetScissor(x, y, w, h int) {
	p.scissors = append(p.scissors, image.Rect(x, y, x+w, y+h))
}
func (p *fakePass) Draw(_ []float32, vertexCount int) { p.draws = append(p.draws, vertexCount) }
func (p *fakePass) End() error {
	p.ended = true
	return nil
}

// testProgram is a Program for creator tests that do not compile.
type testProgram struct {
	releases int
	digest   uint64
}

func (p *testProgram) ReleaseGPU()          { p.releases++ }
func (p *testProgram) sourceDigest() uint64 { return p.digest }

// testCreator writes a fixed key and hands out testPrograms.
type testCreator struct {
	key     uint32
	digest  uint64
	fail    bool
	created []*testProgram
}

func (c *testCreator) ComputeProgramKey(_ *Context, key *BytesKey) { key.Write(c.key) }

func (c *testCreator) CreateProgram(*Context) Program {
	if c.fail {
		return nil
	}
	p := &testProgram{digest: c.digest}
	c.created = append(c.created, p)
	return p
}

func (c *testCreator) SourceDigest(*Context) (uint64, bool) { return c.digest, true }

func newTestContext(t *testing.T, opts ContextOptions) (*Context, *fakeBackend) {
	t.Helper()
	b := newFakeBackend()
	ctx, err := NewContext(b, opts)
	require.NoError(t, err)
	return ctx, b
}

func float32frombytes(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
