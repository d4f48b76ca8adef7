package gpu

// ImageOrigin tells where row zero of a texture sits in the image.
type ImageOrigin int

const (
	// OriginTopLeft stores the top row first.
	OriginTopLeft ImageOrigin = iota
	// OriginBottomLeft stores the bottom row first, as GL-style surfaces do.
	OriginBottomLeft
)

// BackingFit controls whether a resolved resource may be larger than the
// size a proxy asked for.
type BackingFit int

const (
	// BackingFitExact allocates exactly the requested size.
	BackingFitExact BackingFit = iota
	// BackingFitApprox allows a larger pooled backing to be reused.
	BackingFitApprox
)

// SamplerType is the kind of sampler a texture needs in the shader.
type SamplerType int

const (
	SamplerType2D SamplerType = iota
	SamplerTypeRectangle
	SamplerTypeExternal
)

// TextureDesc describes a texture or render target to create.
type TextureDesc struct {
	Label       string
	Width       int
	Height      int
	Format      PixelFormat
	Mipmapped   bool
	Origin      ImageOrigin
	SampleCount int
}

// ByteSize estimates the memory the resource occupies.
func (d TextureDesc) ByteSize() int64 {
	n := int64(d.Width) * int64(d.Height) * int64(d.Format.BytesPerPixel())
	if d.SampleCount > 1 {
		n *= int64(d.SampleCount) + 1
	}
	if d.Mipmapped {
		n += n / 3
	}
	return n
}

// Texture is a sampleable backend texture.
type Texture interface {
	Width() int
	Height() int
	Format() PixelFormat
	Origin() ImageOrigin
	Mipmapped() bool
	SamplerType() SamplerType
	// IsYUV reports whether the texture holds planar YUV data that needs
	// conversion before regular sampling.
	IsYUV() bool
	// Release frees the GPU resource. It must be called with the owning
	// context's device alive.
	Release()
}

// RenderTarget is a backend surface that can be drawn into.
type RenderTarget interface {
	Width() int
	Height() int
	Format() PixelFormat
	Origin() ImageOrigin
	SampleCount() int
	// ExternallyOwned reports whether the target wraps a surface the
	// caller manages, such as a swap chain image.
	ExternallyOwned() bool
	// AsTexture returns the sampleable view, or nil if there is none.
	AsTexture() Texture
	Release()
}

// needsFlatten reports whether tex cannot be sampled directly as a plain
// top-left 2D texture.
func needsFlatten(tex Texture) bool {
	return tex.IsYUV() || tex.SamplerType() != SamplerType2D || tex.Origin() != OriginTopLeft
}
