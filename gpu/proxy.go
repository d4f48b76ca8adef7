package gpu

import "fmt"

// TextureProxy is a deferred handle to a sampleable texture. The backing
// texture is created, or taken from the resource pool, the first time the
// proxy is instantiated during task execution.
//
// Proxies are reference counted. Every task that reads a proxy holds a
// reference until the flush that executed it ends; when the last
// reference goes, a pooled backing returns to the pool.
type TextureProxy struct {
	pool *ResourcePool
	desc TextureDesc
	fit  BackingFit
	refs int

	pixels   []byte
	rowBytes int

	resource *pooledResource
	texture  Texture
	wrapped  bool

	// source is set when the proxy is the sampleable view of a render
	// target proxy; resolution and references are forwarded to it.
	source *RenderTargetProxy
}

// Width returns the requested width.
func (p *TextureProxy) Width() int { return p.desc.Width }

// Height returns the requested height.
func (p *TextureProxy) Height() int { return p.desc.Height }

// Format returns the pixel format.
func (p *TextureProxy) Format() PixelFormat { return p.desc.Format }

// Mipmapped reports whether the texture has a mip chain.
func (p *TextureProxy) Mipmapped() bool { return p.desc.Mipmapped }

// Fit returns the backing fit.
func (p *TextureProxy) Fit() BackingFit { return p.fit }

// Origin returns the row order of the texture contents.
func (p *TextureProxy) Origin() ImageOrigin {
	if tex := p.Texture(); tex != nil {
		return tex.Origin()
	}
	return p.desc.Origin
}

// Texture returns the backing texture if the proxy is instantiated, or
// nil. It never allocates.
func (p *TextureProxy) Texture() Texture {
	if p.source != nil {
		if rt := p.source.RenderTarget(); rt != nil {
			return rt.AsTexture()
		}
		return nil
	}
	return p.texture
}

// IsInstantiated reports whether a backing texture is assigned.
func (p *TextureProxy) IsInstantiated() bool { return p.Texture() != nil }

// BackingSize returns the size of the backing texture, or the size it
// will have once instantiated.
func (p *TextureProxy) BackingSize() (int, int) {
	if tex := p.Texture(); tex != nil {
		return tex.Width(), tex.Height()
	}
	if p.source != nil {
		return p.source.BackingSize()
	}
	return backingSize(p.pool, p.desc, p.fit)
}

// Instantiate resolves the proxy to its backing texture, allocating it on
// first use.
func (p *TextureProxy) Instantiate() (Texture, error) {
	if p.source != nil {
		rt, err := p.source.Instantiate()
		if err != nil {
			return nil, err
		}
		tex := rt.AsTexture()
		if tex == nil {
			return nil, fmt.Errorf("%w: render target %q is not sampleable", ErrTextureUnavailable, p.source.desc.Label)
		}
		return tex, nil
	}
	if p.texture != nil {
		return p.texture, nil
	}
	r, err := p.pool.acquireTexture(p.desc, p.fit, p.pixels, p.rowBytes)
	if err != nil {
		slogger().Debug("gpu: texture proxy resolve failed", "label", p.desc.Label, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrTextureUnavailable, err)
	}
	p.resource, p.texture = r, r.texture
	p.pixels = nil
	return p.texture, nil
}

// Ref adds a reference.
func (p *TextureProxy) Ref() {
	if p.source != nil {
		p.source.Ref()
		return
	}
	p.refs++
}

// Unref drops a reference. The last one returns a pooled backing to the
// resource pool; wrapped textures stay with their owner.
func (p *TextureProxy) Unref() {
	if p.source != nil {
		p.source.Unref()
		return
	}
	if p.refs <= 0 {
		return
	}
	p.refs--
	if p.refs > 0 {
		return
	}
	if p.resource != nil {
		p.pool.recycle(p.resource)
		p.resource, p.texture = nil, nil
	}
}

// RenderTargetProxy is a deferred handle to a render target.
type RenderTargetProxy struct {
	pool *ResourcePool
	desc TextureDesc
	fit  BackingFit
	refs int

	resource *pooledResource
	target   RenderTarget
	wrapped  bool

	textureProxy *TextureProxy
}

// Width returns the requested width.
func (p *RenderTargetProxy) Width() int { return p.desc.Width }

// Height returns the requested height.
func (p *RenderTargetProxy) Height() int { return p.desc.Height }

// Format returns the pixel format.
func (p *RenderTargetProxy) Format() PixelFormat { return p.desc.Format }

// SampleCount returns the number of samples per pixel.
func (p *RenderTargetProxy) SampleCount() int { return max(p.desc.SampleCount, 1) }

// Origin returns the row order of the target.
func (p *RenderTargetProxy) Origin() ImageOrigin {
	if p.target != nil {
		return p.target.Origin()
	}
	return p.desc.Origin
}

// Fit returns the backing fit.
func (p *RenderTargetProxy) Fit() BackingFit { return p.fit }

// Label returns the debug label.
func (p *RenderTargetProxy) Label() string { return p.desc.Label }

// RenderTarget returns the backing target if instantiated, or nil.
func (p *RenderTargetProxy) RenderTarget() RenderTarget { return p.target }

// IsInstantiated reports whether a backing target is assigned.
func (p *RenderTargetProxy) IsInstantiated() bool { return p.target != nil }

// BackingSize returns the size of the backing target, or the size it will
// have once instantiated.
func (p *RenderTargetProxy) BackingSize() (int, int) {
	if p.target != nil {
		return p.target.Width(), p.target.Height()
	}
	return backingSize(p.pool, p.desc, p.fit)
}

// AsTextureProxy returns a texture proxy that samples this render target.
// It shares the target's references and backing.
func (p *RenderTargetProxy) AsTextureProxy() *TextureProxy {
	if p.textureProxy == nil {
		p.textureProxy = &TextureProxy{pool: p.pool, desc: p.desc, fit: p.fit, source: p}
		p.textureProxy.desc.SampleCount = 1
	}
	return p.textureProxy
}

// Instantiate resolves the proxy, allocating or reusing a backing target.
func (p *RenderTargetProxy) Instantiate() (RenderTarget, error) {
	if p.target != nil {
		return p.target, nil
	}
	r, err := p.pool.acquireRenderTarget(p.desc, p.fit)
	if err != nil {
		slogger().Debug("gpu: render target proxy resolve failed", "label", p.desc.Label, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrTargetUnavailable, err)
	}
	p.resource, p.target = r, r.target
	return p.target, nil
}

// Ref adds a reference.
func (p *RenderTargetProxy) Ref() { p.refs++ }

// Unref drops a reference. The last one returns a pooled backing to the
// resource pool.
func (p *RenderTargetProxy) Unref() {
	if p.refs <= 0 {
		return
	}
	p.refs--
	if p.refs > 0 {
		return
	}
	if p.resource != nil {
		p.pool.recycle(p.resource)
		p.resource, p.target = nil, nil
	}
}

func backingSize(pool *ResourcePool, desc TextureDesc, fit BackingFit) (int, int) {
	k, _ := pool.scratchKey(desc, fit, false)
	return k.Width, k.Height
}
