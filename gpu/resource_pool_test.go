package gpu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproxSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{1, 16},
		{16, 16},
		{17, 32},
		{100, 128},
		{128, 128},
		{129, 256},
		{1000, 1024},
	}
	for _, tt := range tests {
		if got := approxSize(tt.in); got != tt.want {
			t.Errorf("approxSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func rgbaDesc(w, h int) TextureDesc {
	return TextureDesc{Width: w, Height: h, Format: PixelFormatRGBA8888}
}

func TestResourcePoolReusesApproxTargets(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{})
	pp := ctx.ProxyProvider()

	a := pp.CreateRenderTargetProxy(rgbaDesc(100, 60), BackingFitApprox)
	require.NotNil(t, a)
	assert.False(t, a.IsInstantiated())
	w, h := a.BackingSize()
	assert.Equal(t, [2]int{128, 64}, [2]int{w, h})

	rtA, err := a.Instantiate()
	require.NoError(t, err)
	assert.Equal(t, 128, rtA.Width())
	a.Unref()
	assert.Equal(t, 1, ctx.ResourcePool().Stats().IdleResources)

	// Different requested size, same approx bucket.
	b := pp.CreateRenderTargetProxy(rgbaDesc(120, 50), BackingFitApprox)
	rtB, err := b.Instantiate()
	require.NoError(t, err)
	assert.Same(t, rtA, rtB)
	assert.Len(t, backend.targets, 1)

	stats := ctx.ResourcePool().Stats()
	assert.Equal(t, uint64(1), stats.Allocations)
	assert.Equal(t, uint64(1), stats.Reuses)
	assert.Equal(t, 0, stats.IdleResources)
}

func TestResourcePoolExactDoesNotMatchApprox(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{})
	pp := ctx.ProxyProvider()

	a := pp.CreateRenderTargetProxy(rgbaDesc(100, 60), BackingFitApprox)
	_, err := a.Instantiate()
	require.NoError(t, err)
	a.Unref()

	b := pp.CreateRenderTargetProxy(rgbaDesc(100, 60), BackingFitExact)
	rt, err := b.Instantiate()
	require.NoError(t, err)
	assert.Equal(t, 100, rt.Width())
	assert.Len(t, backend.targets, 2)
}

func TestResourcePoolBackingIsNotSharedWhileReferenced(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{})
	pp := ctx.ProxyProvider()

	a := pp.CreateRenderTargetProxy(rgbaDesc(64, 64), BackingFitExact)
	b := pp.CreateRenderTargetProxy(rgbaDesc(64, 64), BackingFitExact)
	rtA, err := a.Instantiate()
	require.NoError(t, err)
	rtB, err := b.Instantiate()
	require.NoError(t, err)

	assert.NotSame(t, rtA, rtB)
	assert.Len(t, backend.targets, 2)
}

func TestResourcePoolBudget(t *testing.T) {
	// Room for exactly one 64x64 RGBA target.
	ctx, backend := newTestContext(t, ContextOptions{ResourceBudgetBytes: 64 * 64 * 4})
	pp := ctx.ProxyProvider()

	a := pp.CreateRenderTargetProxy(rgbaDesc(64, 64), BackingFitExact)
	_, err := a.Instantiate()
	require.NoError(t, err)

	b := pp.CreateRenderTargetProxy(rgbaDesc(32, 64), BackingFitExact)
	_, err = b.Instantiate()
	require.ErrorIs(t, err, ErrResourceBudgetExceeded)
	require.ErrorIs(t, err, ErrTargetUnavailable)

	// Once a is idle it is purged to make room.
	a.Unref()
	_, err = b.Instantiate()
	require.NoError(t, err)
	assert.Equal(t, 1, backend.targets[0].releases)
	assert.Equal(t, uint64(1), ctx.ResourcePool().Stats().Purges)

	tooBig := pp.CreateRenderTargetProxy(rgbaDesc(128, 128), BackingFitExact)
	_, err = tooBig.Instantiate()
	assert.ErrorIs(t, err, ErrResourceBudgetExceeded)
}

func TestResourcePoolPurgeNotUsedSince(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{})
	pool := ctx.ResourcePool()
	now := time.Unix(1000, 0)
	pool.now = func() time.Time { return now }
	pp := ctx.ProxyProvider()

	old := pp.CreateRenderTargetProxy(rgbaDesc(16, 16), BackingFitExact)
	_, err := old.Instantiate()
	require.NoError(t, err)
	old.Unref()

	now = now.Add(time.Minute)
	recent := pp.CreateRenderTargetProxy(rgbaDesc(32, 32), BackingFitExact)
	_, err = recent.Instantiate()
	require.NoError(t, err)
	recent.Unref()

	assert.Equal(t, 1, pool.PurgeNotUsedSince(now.Add(-time.Second)))
	assert.Equal(t, 1, backend.targets[0].releases)
	assert.Equal(t, 0, backend.targets[1].releases)
	assert.Equal(t, 1, pool.Stats().IdleResources)

	assert.Equal(t, 1, pool.PurgeIdle())
	assert.Equal(t, int64(0), pool.Stats().UsedBytes)
}

func TestProxyProviderRejectsInvalidRequests(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	pp := ctx.ProxyProvider()

	assert.Nil(t, pp.CreateTextureProxy(rgbaDesc(0, 10), BackingFitExact))
	assert.Nil(t, pp.CreateTextureProxy(rgbaDesc(10, -1), BackingFitExact))
	assert.Nil(t, pp.CreateRenderTargetProxy(rgbaDesc(100000, 10), BackingFitApprox))
	assert.Nil(t, pp.CreateRenderTargetProxy(TextureDesc{Width: 8, Height: 8, Format: PixelFormatGray8}, BackingFitExact))
	assert.Nil(t, pp.CreateRenderTargetProxy(TextureDesc{Width: 8, Height: 8, Format: PixelFormatRGBA8888, SampleCount: 16}, BackingFitExact))
	assert.Nil(t, pp.CreateTextureProxyFromPixels(rgbaDesc(4, 4), make([]byte, 10), 0))
	assert.Nil(t, pp.WrapRenderTarget(nil))
}

func TestTextureProxyUploadsOnInstantiate(t *testing.T) {
	ctx, backend := newTestContext(t, ContextOptions{})
	proxy := ctx.ProxyProvider().CreateTextureProxyFromPixels(rgbaDesc(4, 4), make([]byte, 64), 16)
	require.NotNil(t, proxy)
	assert.Empty(t, backend.textures)

	tex, err := proxy.Instantiate()
	require.NoError(t, err)
	require.Len(t, backend.textures, 1)
	assert.True(t, backend.textures[0].uploaded)
	assert.Same(t, tex, proxy.Texture())

	again, err := proxy.Instantiate()
	require.NoError(t, err)
	assert.Same(t, tex, again)
	assert.Len(t, backend.textures, 1)
}

func TestWrappedTargetIsNeverPooled(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	rt := &fakeTarget{desc: rgbaDesc(10, 10), external: true}
	proxy := ctx.ProxyProvider().WrapRenderTarget(rt)
	require.NotNil(t, proxy)
	assert.True(t, proxy.IsInstantiated())

	proxy.Unref()
	ctx.Release()
	assert.Equal(t, 0, rt.releases)
	assert.Equal(t, 0, ctx.ResourcePool().Stats().IdleResources)
}

func TestRenderTargetTextureProxySharesBacking(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	rtp := ctx.ProxyProvider().CreateRenderTargetProxy(rgbaDesc(20, 20), BackingFitApprox)
	tp := rtp.AsTextureProxy()
	assert.Same(t, tp, rtp.AsTextureProxy())
	assert.False(t, tp.IsInstantiated())

	tex, err := tp.Instantiate()
	require.NoError(t, err)
	assert.True(t, rtp.IsInstantiated())
	assert.Same(t, rtp.RenderTarget().AsTexture(), tex)

	tp.Ref()
	rtp.Unref()
	assert.True(t, rtp.IsInstantiated(), "texture view still holds a reference")
	tp.Unref()
	assert.False(t, rtp.IsInstantiated())
}
