package gpu

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/gogpu/drawpipe/internal/cache"
)

// Resource budget defaults.
const (
	// DefaultResourceBudgetBytes is the default pool budget (256 MiB).
	DefaultResourceBudgetBytes int64 = 256 << 20

	// minApproxSize is the smallest dimension an Approx backing is
	// rounded up to.
	minApproxSize = 16
)

// ScratchKey identifies interchangeable pooled resources.
type ScratchKey struct {
	Width       int
	Height      int
	Format      PixelFormat
	SampleCount int
	Mipmapped   bool
	Renderable  bool
}

// approxSize rounds n up to the next power of two, at least
// minApproxSize.
func approxSize(n int) int {
	if n <= minApproxSize {
		return minApproxSize
	}
	return 1 << bits.Len(uint(n-1))
}

// ResourcePoolStats contains pool usage statistics.
type ResourcePoolStats struct {
	BudgetBytes   int64
	UsedBytes     int64
	IdleBytes     int64
	Resources     int
	IdleResources int
	Allocations   uint64
	Reuses        uint64
	Purges        uint64
}

// String returns a human-readable summary.
func (s ResourcePoolStats) String() string {
	return fmt.Sprintf("Pool[%d/%d KiB, %d resources (%d idle), %d allocs, %d reuses, %d purges]",
		s.UsedBytes/1024, s.BudgetBytes/1024, s.Resources, s.IdleResources,
		s.Allocations, s.Reuses, s.Purges)
}

// pooledResource is one backend allocation tracked by the pool. Exactly
// one of texture and target is set.
type pooledResource struct {
	key      ScratchKey
	size     int64
	texture  Texture
	target   RenderTarget
	lastUsed time.Time
}

func (r *pooledResource) release() {
	if r.target != nil {
		r.target.Release()
		return
	}
	if r.texture != nil {
		r.texture.Release()
	}
}

// ResourcePool recycles scratch textures and render targets between
// proxies. A backing becomes idle when the last proxy holding it is
// unreferenced, and is handed out again only when a proxy resolves.
// Idle resources are purged least recently used first whenever a new
// allocation would exceed the budget.
//
// Like the rest of a Context, the pool is not safe for concurrent use.
type ResourcePool struct {
	backend ResourceBackend
	caps    *Caps
	now     func() time.Time

	budget    int64
	used      int64
	idleBytes int64
	resources int

	// idle maps free resources to their scratch key, oldest first.
	idle *cache.LRU[*pooledResource, ScratchKey]

	allocations uint64
	reuses      uint64
	purges      uint64
	released    bool
}

func newResourcePool(backend ResourceBackend, caps *Caps, budget int64) *ResourcePool {
	if budget <= 0 {
		budget = DefaultResourceBudgetBytes
	}
	return &ResourcePool{
		backend: backend,
		caps:    caps,
		now:     time.Now,
		budget:  budget,
		idle:    cache.NewLRU[*pooledResource, ScratchKey](),
	}
}

// scratchKey returns the key and allocation descriptor for a request.
func (p *ResourcePool) scratchKey(desc TextureDesc, fit BackingFit, renderable bool) (ScratchKey, TextureDesc) {
	if desc.SampleCount < 1 {
		desc.SampleCount = 1
	}
	if !p.caps.MipmapSupport {
		desc.Mipmapped = false
	}
	if fit == BackingFitApprox {
		desc.Width = min(approxSize(desc.Width), max(p.caps.MaxTextureSize, desc.Width))
		desc.Height = min(approxSize(desc.Height), max(p.caps.MaxTextureSize, desc.Height))
	}
	return ScratchKey{
		Width:       desc.Width,
		Height:      desc.Height,
		Format:      desc.Format,
		SampleCount: desc.SampleCount,
		Mipmapped:   desc.Mipmapped,
		Renderable:  renderable,
	}, desc
}

// findIdle removes and returns the most recently used idle resource with
// key k.
func (p *ResourcePool) findIdle(k ScratchKey) *pooledResource {
	var found *pooledResource
	p.idle.Range(func(r *pooledResource, key ScratchKey) bool {
		if key == k {
			found = r
			return false
		}
		return true
	})
	if found != nil {
		p.idle.Remove(found)
		p.idleBytes -= found.size
		p.reuses++
	}
	return found
}

// makeRoom purges idle resources until size more bytes fit the budget.
func (p *ResourcePool) makeRoom(size int64) error {
	if size > p.budget {
		return fmt.Errorf("%w: %d bytes exceeds budget of %d", ErrResourceBudgetExceeded, size, p.budget)
	}
	for p.used+size > p.budget {
		r, _, ok := p.idle.RemoveOldest()
		if !ok {
			return fmt.Errorf("%w: need %d bytes, %d of %d in use",
				ErrResourceBudgetExceeded, size, p.used, p.budget)
		}
		p.destroy(r)
	}
	return nil
}

func (p *ResourcePool) destroy(r *pooledResource) {
	p.idleBytes -= r.size
	p.used -= r.size
	p.resources--
	p.purges++
	r.release()
}

func (p *ResourcePool) track(r *pooledResource) *pooledResource {
	r.lastUsed = p.now()
	p.used += r.size
	p.resources++
	p.allocations++
	return r
}

// acquireRenderTarget returns a render target for desc, reusing an idle
// one of the same scratch key when possible.
func (p *ResourcePool) acquireRenderTarget(desc TextureDesc, fit BackingFit) (*pooledResource, error) {
	if p.released {
		return nil, ErrContextReleased
	}
	key, alloc := p.scratchKey(desc, fit, true)
	if r := p.findIdle(key); r != nil {
		r.lastUsed = p.now()
		return r, nil
	}
	size := alloc.ByteSize()
	if err := p.makeRoom(size); err != nil {
		return nil, err
	}
	rt, err := p.backend.CreateRenderTarget(alloc)
	if err != nil {
		return nil, fmt.Errorf("create render target %dx%d: %w", alloc.Width, alloc.Height, err)
	}
	slogger().Debug("gpu: render target allocated", "w", alloc.Width, "h", alloc.Height,
		"format", alloc.Format, "samples", alloc.SampleCount)
	return p.track(&pooledResource{key: key, size: size, target: rt}), nil
}

// acquireTexture returns a texture for desc. With pixels set a new
// texture is always created and uploaded; otherwise an idle texture of
// the same scratch key is reused when possible.
func (p *ResourcePool) acquireTexture(desc TextureDesc, fit BackingFit, pixels []byte, rowBytes int) (*pooledResource, error) {
	if p.released {
		return nil, ErrContextReleased
	}
	if pixels != nil {
		fit = BackingFitExact
	}
	key, alloc := p.scratchKey(desc, fit, false)
	if pixels == nil {
		if r := p.findIdle(key); r != nil {
			r.lastUsed = p.now()
			return r, nil
		}
	}
	size := alloc.ByteSize()
	if err := p.makeRoom(size); err != nil {
		return nil, err
	}
	tex, err := p.backend.CreateTexture(alloc, pixels, rowBytes)
	if err != nil {
		return nil, fmt.Errorf("create texture %dx%d: %w", alloc.Width, alloc.Height, err)
	}
	return p.track(&pooledResource{key: key, size: size, texture: tex}), nil
}

// recycle returns r to the idle set. After releaseAll it is dropped;
// the device teardown owns it then.
func (p *ResourcePool) recycle(r *pooledResource) {
	if r == nil {
		return
	}
	if p.released {
		return
	}
	r.lastUsed = p.now()
	p.idle.Add(r, r.key)
	p.idleBytes += r.size
}

// PurgeNotUsedSince releases idle resources last used before t and
// returns how many were released.
func (p *ResourcePool) PurgeNotUsedSince(t time.Time) int {
	var stale []*pooledResource
	p.idle.RangeOldest(func(r *pooledResource, _ ScratchKey) bool {
		if !r.lastUsed.Before(t) {
			return false
		}
		stale = append(stale, r)
		return true
	})
	for _, r := range stale {
		p.idle.Remove(r)
		p.destroy(r)
	}
	return len(stale)
}

// PurgeIdle releases every idle resource.
func (p *ResourcePool) PurgeIdle() int {
	n := 0
	for {
		r, _, ok := p.idle.RemoveOldest()
		if !ok {
			return n
		}
		p.destroy(r)
		n++
	}
}

// SetBudget changes the budget, purging idle resources if now over it.
func (p *ResourcePool) SetBudget(bytes int64) {
	if bytes <= 0 {
		bytes = DefaultResourceBudgetBytes
	}
	p.budget = bytes
	for p.used > p.budget {
		r, _, ok := p.idle.RemoveOldest()
		if !ok {
			return
		}
		p.destroy(r)
	}
}

// Stats returns current usage statistics.
func (p *ResourcePool) Stats() ResourcePoolStats {
	return ResourcePoolStats{
		BudgetBytes:   p.budget,
		UsedBytes:     p.used,
		IdleBytes:     p.idleBytes,
		Resources:     p.resources,
		IdleResources: p.idle.Len(),
		Allocations:   p.allocations,
		Reuses:        p.reuses,
		Purges:        p.purges,
	}
}

// releaseAll drops the idle resources, releasing them with releaseGPU.
// Resources still held by proxies are left to the device teardown.
func (p *ResourcePool) releaseAll(releaseGPU bool) {
	p.idle.RangeOldest(func(r *pooledResource, _ ScratchKey) bool {
		if releaseGPU {
			r.release()
		}
		return true
	})
	p.idle.Clear()
	p.idleBytes = 0
	p.released = true
}
