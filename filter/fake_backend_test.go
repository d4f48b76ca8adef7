package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/drawpipe/gpu"
)

// recordingBackend is a gpu.Backend that keeps every program and pass.
type recordingBackend struct {
	programs []*gpu.ProgramInfo
	targets  []string
	descs    []gpu.TextureDesc
	passes   []string
}

func (b *recordingBackend) Name() string    { return "recording" }
func (b *recordingBackend) Caps() *gpu.Caps { return gpu.DefaultCaps() }
func (b *recordingBackend) Release()        {}

func (b *recordingBackend) CompileProgram(info *gpu.ProgramInfo) (gpu.CompiledProgram, error) {
	b.programs = append(b.programs, info)
	return nopProgram{}, nil
}

func (b *recordingBackend) CreateTexture(desc gpu.TextureDesc, _ []byte, _ int) (gpu.Texture, error) {
	return &stubTexture{desc: desc}, nil
}

func (b *recordingBackend) CreateRenderTarget(desc gpu.TextureDesc) (gpu.RenderTarget, error) {
	b.targets = append(b.targets, desc.Label)
	b.descs = append(b.descs, desc)
	return &stubTarget{stubTexture{desc: desc}}, nil
}

func (b *recordingBackend) ReadPixels(gpu.RenderTarget, int, int, int, int, []byte) error { return nil }

func (b *recordingBackend) BeginRenderPass(desc gpu.RenderPassDesc) (gpu.CommandPass, error) {
	label := desc.Label
	if rt, ok := desc.Target.(*stubTarget); ok {
		label = rt.desc.Label
	}
	b.passes = append(b.passes, label)
	return nopPass{}, nil
}

func (b *recordingBackend) Submit(bool) error { return nil }

type nopProgram struct{}

func (nopProgram) Release() {}

type stubTexture struct {
	desc gpu.TextureDesc
}

func (t *stubTexture) Width() int                   { return t.desc.Width }
func (t *stubTexture) Height() int                  { return t.desc.Height }
func (t *stubTexture) Format() gpu.PixelFormat      { return t.desc.Format }
func (t *stubTexture) Origin() gpu.ImageOrigin      { return t.desc.Origin }
func (t *stubTexture) Mipmapped() bool              { return t.desc.Mipmapped }
func (t *stubTexture) SamplerType() gpu.SamplerType { return gpu.SamplerType2D }
func (t *stubTexture) IsYUV() bool                  { return false }
func (t *stubTexture) Release()                     {}

type stubTarget struct {
	stubTexture
}

func (t *stubTarget) SampleCount() int       { return max(t.desc.SampleCount, 1) }
func (t *stubTarget) ExternallyOwned() bool  { return false }
func (t *stubTarget) AsTexture() gpu.Texture { return &t.stubTexture }

type nopPass struct{}

func (nopPass) SetProgram(gpu.CompiledProgram) {}
func (nopPass) SetUniforms([]byte)             {}
func (nopPass) SetSamplers([]gpu.BoundSampler) {}
func (nopPass) SetScissor(int, int, int, int)  {}
func (nopPass) Draw([]float32, int)            {}
func (nopPass) End() error                     { return nil }

func newRecordingContext(t *testing.T) (*gpu.Context, *recordingBackend) {
	t.Helper()
	b := &recordingBackend{}
	ctx, err := gpu.NewContext(b, gpu.ContextOptions{})
	require.NoError(t, err)
	return ctx, b
}
