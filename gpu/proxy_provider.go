package gpu

import (
	"image"

	"golang.org/x/image/draw"
)

// ProxyProvider creates proxies for one Context. Invalid requests yield
// nil proxies; nothing is allocated until a proxy is instantiated.
type ProxyProvider struct {
	ctx *Context
}

func (pp *ProxyProvider) validDesc(desc TextureDesc) bool {
	caps := pp.ctx.Caps()
	if !caps.ValidDimensions(desc.Width, desc.Height) {
		slogger().Debug("gpu: proxy rejected", "label", desc.Label,
			"w", desc.Width, "h", desc.Height, "err", ErrInvalidDimensions)
		return false
	}
	if desc.Format == PixelFormatUnknown {
		slogger().Debug("gpu: proxy rejected", "label", desc.Label, "reason", "unknown format")
		return false
	}
	return true
}

// CreateTextureProxy returns a proxy for an uninitialized texture.
func (pp *ProxyProvider) CreateTextureProxy(desc TextureDesc, fit BackingFit) *TextureProxy {
	if pp.ctx.released || !pp.validDesc(desc) {
		return nil
	}
	desc.SampleCount = 1
	return &TextureProxy{pool: pp.ctx.pool, desc: desc, fit: fit, refs: 1}
}

// CreateTextureProxyFromPixels returns a proxy whose texture is created
// and uploaded from pixels, rowBytes apart, when it is instantiated. The
// pixels are retained until then.
func (pp *ProxyProvider) CreateTextureProxyFromPixels(desc TextureDesc, pixels []byte, rowBytes int) *TextureProxy {
	if pp.ctx.released || !pp.validDesc(desc) {
		return nil
	}
	if rowBytes <= 0 {
		rowBytes = desc.Width * desc.Format.BytesPerPixel()
	}
	if len(pixels) < rowBytes*(desc.Height-1)+desc.Width*desc.Format.BytesPerPixel() {
		slogger().Debug("gpu: proxy rejected", "label", desc.Label, "reason", "short pixel buffer")
		return nil
	}
	desc.SampleCount = 1
	return &TextureProxy{
		pool:     pp.ctx.pool,
		desc:     desc,
		fit:      BackingFitExact,
		refs:     1,
		pixels:   pixels,
		rowBytes: rowBytes,
	}
}

// CreateTextureProxyFromImage converts img to premultiplied RGBA and
// returns a proxy uploading it on instantiation.
func (pp *ProxyProvider) CreateTextureProxyFromImage(img image.Image, mipmapped bool) *TextureProxy {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return pp.CreateTextureProxyFromPixels(TextureDesc{
		Label:     "image",
		Width:     b.Dx(),
		Height:    b.Dy(),
		Format:    PixelFormatRGBA8888,
		Mipmapped: mipmapped,
	}, rgba.Pix, rgba.Stride)
}

// CreateRenderTargetProxy returns a proxy for a render target. Formats
// the backend cannot render to and unsupported sample counts yield nil.
func (pp *ProxyProvider) CreateRenderTargetProxy(desc TextureDesc, fit BackingFit) *RenderTargetProxy {
	if pp.ctx.released || !pp.validDesc(desc) {
		return nil
	}
	caps := pp.ctx.Caps()
	if !caps.IsFormatRenderable(desc.Format) {
		slogger().Debug("gpu: render target rejected", "label", desc.Label, "format", desc.Format)
		return nil
	}
	desc.SampleCount = max(desc.SampleCount, 1)
	if desc.SampleCount > caps.MaxSampleCount {
		slogger().Debug("gpu: render target rejected", "label", desc.Label, "samples", desc.SampleCount)
		return nil
	}
	return &RenderTargetProxy{pool: pp.ctx.pool, desc: desc, fit: fit, refs: 1}
}

// WrapRenderTarget returns an already instantiated proxy for a target the
// caller owns. The target is never released or pooled.
func (pp *ProxyProvider) WrapRenderTarget(rt RenderTarget) *RenderTargetProxy {
	if rt == nil || pp.ctx.released {
		return nil
	}
	return &RenderTargetProxy{
		pool: pp.ctx.pool,
		desc: TextureDesc{
			Label:       "wrapped",
			Width:       rt.Width(),
			Height:      rt.Height(),
			Format:      rt.Format(),
			Origin:      rt.Origin(),
			SampleCount: rt.SampleCount(),
		},
		fit:     BackingFitExact,
		refs:    1,
		target:  rt,
		wrapped: true,
	}
}

// WrapTexture returns an already instantiated proxy for a texture the
// caller owns.
func (pp *ProxyProvider) WrapTexture(tex Texture) *TextureProxy {
	if tex == nil || pp.ctx.released {
		return nil
	}
	return &TextureProxy{
		pool: pp.ctx.pool,
		desc: TextureDesc{
			Label:       "wrapped",
			Width:       tex.Width(),
			Height:      tex.Height(),
			Format:      tex.Format(),
			Origin:      tex.Origin(),
			Mipmapped:   tex.Mipmapped(),
			SampleCount: 1,
		},
		fit:     BackingFitExact,
		refs:    1,
		texture: tex,
		wrapped: true,
	}
}
