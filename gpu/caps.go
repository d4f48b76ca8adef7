package gpu

// Caps describes what a backend supports.
type Caps struct {
	MaxTextureSize int
	MaxSampleCount int

	// MipmapSupport reports whether mipmapped textures are honored. When
	// false, mipmap requests are accepted and ignored.
	MipmapSupport bool

	// RenderableFormats lists the formats usable as color attachments.
	RenderableFormats []PixelFormat
}

// DefaultCaps returns conservative capabilities every WebGPU device meets.
func DefaultCaps() *Caps {
	return &Caps{
		MaxTextureSize:    8192,
		MaxSampleCount:    4,
		RenderableFormats: []PixelFormat{PixelFormatRGBA8888, PixelFormatBGRA8888, PixelFormatAlpha8},
	}
}

// IsFormatRenderable reports whether f can be rendered to.
func (c *Caps) IsFormatRenderable(f PixelFormat) bool {
	for _, r := range c.RenderableFormats {
		if r == f {
			return true
		}
	}
	return false
}

// ReadSwizzle returns the swizzle applied when sampling a texture of
// format f. Single-channel formats land in the red channel on the GPU.
func (c *Caps) ReadSwizzle(f PixelFormat) Swizzle {
	switch f {
	case PixelFormatAlpha8:
		return Swizzle000R
	case PixelFormatGray8:
		return SwizzleRRR1
	default:
		return SwizzleRGBA
	}
}

// WriteSwizzle returns the swizzle applied to fragment output when
// rendering into format f.
func (c *Caps) WriteSwizzle(f PixelFormat) Swizzle {
	if f == PixelFormatAlpha8 {
		return SwizzleAAAA
	}
	return SwizzleRGBA
}

// ValidDimensions reports whether a w by h resource can be created.
func (c *Caps) ValidDimensions(w, h int) bool {
	return w > 0 && h > 0 && w <= c.MaxTextureSize && h <= c.MaxTextureSize
}
