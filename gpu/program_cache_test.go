package gpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/drawpipe/geom"
)

func solidPipeline(color Color, mode InputMode) *Pipeline {
	return NewPipeline(PipelineDesc{
		GeometryProcessor: NewDefaultGeometryProcessor(ColorWhite, geom.Identity(), geom.Identity()),
		ColorProcessors:   []FragmentProcessor{NewConstColorProcessor(color, mode)},
		BlendMode:         BlendModeSrcOver,
	})
}

func testTarget(w, h int) *fakeTarget {
	return &fakeTarget{desc: TextureDesc{Width: w, Height: h, Format: PixelFormatRGBA8888}}
}

func TestProgramCacheReusesIdenticalPipelines(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{})
	rt := testTarget(64, 64)
	cache := ctx.ProgramCache()

	p1 := cache.GetProgram(NewPipelineProgramCreator(solidPipeline(ColorBlack, InputModeIgnore), rt))
	p2 := cache.GetProgram(NewPipelineProgramCreator(solidPipeline(ColorBlack, InputModeIgnore), rt))

	require.NotNil(t, p1)
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, backend.compiles)
	assert.Equal(t, 1, cache.Len())
	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestProgramKeyIgnoresUniformValues(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{})
	rt := testTarget(64, 64)

	red := NewPipelineProgramCreator(solidPipeline(RGBA(1, 0, 0, 1), InputModeIgnore), rt)
	blue := NewPipelineProgramCreator(solidPipeline(RGBA(0, 0, 1, 0.5), InputModeIgnore), rt)

	var k1, k2 BytesKey
	red.ComputeProgramKey(ctx, &k1)
	blue.ComputeProgramKey(ctx, &k2)
	assert.True(t, k1.Equal(&k2))

	assert.Same(t, ctx.ProgramCache().GetProgram(red), ctx.ProgramCache().GetProgram(blue))
	assert.Equal(t, 1, backend.compiles)
}

func TestProgramKeyDistinguishesStructure(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	rt := testTarget(64, 64)

	tests := []struct {
		name string
		a, b ProgramCreator
	}{
		{
			name: "input mode",
			a:    NewPipelineProgramCreator(solidPipeline(ColorBlack, InputModeIgnore), rt),
			b:    NewPipelineProgramCreator(solidPipeline(ColorBlack, InputModeModulateA), rt),
		},
		{
			name: "target format",
			a:    NewPipelineProgramCreator(solidPipeline(ColorBlack, InputModeIgnore), rt),
			b: NewPipelineProgramCreator(solidPipeline(ColorBlack, InputModeIgnore),
				&fakeTarget{desc: TextureDesc{Width: 64, Height: 64, Format: PixelFormatBGRA8888}}),
		},
		{
			name: "runtime and pipeline",
			a:    NewPipelineProgramCreator(solidPipeline(ColorBlack, InputModeIgnore), rt),
			b:    NewRuntimeProgramCreator(&testEffect{name: "effect"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ka, kb BytesKey
			tt.a.ComputeProgramKey(ctx, &ka)
			tt.b.ComputeProgramKey(ctx, &kb)
			assert.False(t, ka.Equal(&kb))
		})
	}
}

func TestProgramCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{MaxProgramCount: 2})
	cache := ctx.ProgramCache()
	a, b, c := &testCreator{key: 1}, &testCreator{key: 2}, &testCreator{key: 3}

	require.NotNil(t, cache.GetProgram(a))
	require.NotNil(t, cache.GetProgram(b))
	// Touch a so that b becomes the oldest.
	require.NotNil(t, cache.GetProgram(a))
	require.NotNil(t, cache.GetProgram(c))

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 1, cache.NumRetired())
	assert.Equal(t, 0, b.created[0].releases, "released only after the next submit")
	assert.Equal(t, uint64(1), cache.Stats().Evictions)

	_, err := ctx.Flush()
	require.NoError(t, err)
	assert.Zero(t, cache.NumRetired())
	assert.Equal(t, 0, a.created[0].releases)
	assert.Equal(t, 1, b.created[0].releases)
	assert.Equal(t, 0, c.created[0].releases)

	// b is gone, so asking again creates a new program.
	require.NotNil(t, cache.GetProgram(b))
	assert.Len(t, b.created, 2)
	assert.Equal(t, 1, b.created[0].releases)
}

func TestProgramCacheEvictionReleasesCompiledProgram(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{MaxProgramCount: 1})
	rt := testTarget(32, 32)

	first := ctx.ProgramCache().GetProgram(NewPipelineProgramCreator(solidPipeline(ColorBlack, InputModeIgnore), rt))
	require.NotNil(t, first)
	compiled := first.(*PipelineProgram).Compiled().(*fakeProgram)

	require.NotNil(t, ctx.ProgramCache().GetProgram(
		NewPipelineProgramCreator(solidPipeline(ColorBlack, InputModeModulateRGBA), rt)))
	assert.Equal(t, 0, compiled.releases)

	_, err := ctx.Flush()
	require.NoError(t, err)
	assert.Equal(t, 1, compiled.releases)
	assert.Equal(t, 1, backend.programReleases)

	first.ReleaseGPU()
	assert.Equal(t, 1, compiled.releases, "ReleaseGPU must be idempotent")
}

func TestProgramCacheCreateFailureIsNotCached(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{})
	backend.failCompile = func(*ProgramInfo) bool { return true }
	rt := testTarget(32, 32)
	creator := NewPipelineProgramCreator(solidPipeline(ColorBlack, InputModeIgnore), rt)

	assert.Nil(t, ctx.ProgramCache().GetProgram(creator))
	assert.True(t, ctx.ProgramCache().Empty())
	assert.Equal(t, uint64(1), ctx.ProgramCache().Stats().CreateFailures)

	backend.failCompile = nil
	assert.NotNil(t, ctx.ProgramCache().GetProgram(creator))
	assert.Equal(t, 1, ctx.ProgramCache().Len())
	assert.Equal(t, 2, backend.compiles)
}

func TestProgramCacheVerifyKeys(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{VerifyProgramKeys: true})
	cache := ctx.ProgramCache()
	original := &testCreator{key: 7, digest: 100}
	colliding := &testCreator{key: 7, digest: 200}

	p := cache.GetProgram(original)
	require.NotNil(t, p)

	assert.Nil(t, cache.GetProgram(colliding))
	assert.Equal(t, uint64(1), cache.Stats().KeyCollisions)
	assert.Same(t, p, cache.GetProgram(original))
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 0, p.(*testProgram).releases)
}

func TestProgramCacheReleaseAll(t *testing.T) {
	tests := []struct {
		name       string
		releaseGPU bool
		want       int
	}{
		{"release", true, 1},
		{"abandon", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newTestContext(t, ContextOptions{})
			c := &testCreator{key: 1}
			require.NotNil(t, ctx.ProgramCache().GetProgram(c))

			ctx.ProgramCache().releaseAll(tt.releaseGPU)

			assert.True(t, ctx.ProgramCache().Empty())
			assert.Equal(t, tt.want, c.created[0].releases)
		})
	}
}

func TestEvictedProgramReleasedAfterSubmit(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{MaxProgramCount: 1})
	pp := ctx.ProxyProvider()
	dm := ctx.DrawingManager()

	first := pp.CreateRenderTargetProxy(targetDesc("first", 32, 32), BackingFitExact)
	second := pp.CreateRenderTargetProxy(targetDesc("second", 32, 32), BackingFitExact)
	require.NotNil(t, dm.AddOpsTask(first, NewFillRectOp(geom.MakeWH(32, 32), ColorBlack)))
	require.NotNil(t, dm.AddOpsTask(second, NewFillRectOp(geom.MakeWH(32, 32), ColorBlack,
		NewConstColorProcessor(ColorWhite, InputModeModulateRGBA))))

	result, err := ctx.Flush()
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Completed: 2}, result)
	assert.Equal(t, uint64(1), ctx.ProgramCache().Stats().Evictions)
	assert.Equal(t, []string{"submit", "release-program"}, backend.events)
	assert.Zero(t, ctx.ProgramCache().NumRetired())
}

func TestRetiredProgramsReleasedWhenSubmitFails(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{MaxProgramCount: 1})
	backend.failSubmit = errors.New("fake: device lost")
	pp := ctx.ProxyProvider()
	dm := ctx.DrawingManager()

	target := pp.CreateRenderTargetProxy(targetDesc("rt", 16, 16), BackingFitExact)
	require.NotNil(t, dm.AddOpsTask(target,
		NewFillRectOp(geom.MakeWH(16, 16), ColorBlack),
		NewFillRectOp(geom.MakeWH(16, 16), ColorBlack, NewConstColorProcessor(ColorWhite, InputModeModulateA))))

	_, err := ctx.Flush()
	require.Error(t, err)
	assert.Equal(t, []string{"submit", "release-program"}, backend.events)
}
