package gpu

// PixelFormat describes the memory layout of one pixel in a texture or
// render target.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	// PixelFormatAlpha8 stores coverage in a single 8-bit channel.
	PixelFormatAlpha8
	// PixelFormatGray8 stores luminance in a single 8-bit channel.
	PixelFormatGray8
	// PixelFormatRGBA8888 stores premultiplied RGBA, 8 bits per channel.
	PixelFormatRGBA8888
	// PixelFormatBGRA8888 is RGBA8888 with red and blue swapped.
	PixelFormatBGRA8888
)

// BytesPerPixel returns the size of one pixel.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatAlpha8, PixelFormatGray8:
		return 1
	case PixelFormatRGBA8888, PixelFormatBGRA8888:
		return 4
	default:
		return 0
	}
}

// IsAlphaOnly reports whether the format carries only coverage.
func (f PixelFormat) IsAlphaOnly() bool { return f == PixelFormatAlpha8 }

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatAlpha8:
		return "Alpha8"
	case PixelFormatGray8:
		return "Gray8"
	case PixelFormatRGBA8888:
		return "RGBA8888"
	case PixelFormatBGRA8888:
		return "BGRA8888"
	default:
		return "Unknown"
	}
}
