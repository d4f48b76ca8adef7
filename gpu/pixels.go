package gpu

import (
	"errors"
	"fmt"
	"image"
)

// ErrUnsupportedConversion is returned by ConvertPixels for format pairs
// it cannot convert between.
var ErrUnsupportedConversion = errors.New("gpu: unsupported pixel conversion")

// ImageInfo describes a CPU-side pixel buffer.
type ImageInfo struct {
	Width    int
	Height   int
	Format   PixelFormat
	RowBytes int
}

// MinRowBytes returns the tightly packed row size.
func (i ImageInfo) MinRowBytes() int { return i.Width * i.Format.BytesPerPixel() }

func (i ImageInfo) rowBytes() int {
	if i.RowBytes > 0 {
		return i.RowBytes
	}
	return i.MinRowBytes()
}

// ByteSize returns the buffer size needed for the image.
func (i ImageInfo) ByteSize() int {
	if i.Height == 0 {
		return 0
	}
	return i.rowBytes()*(i.Height-1) + i.MinRowBytes()
}

// ConvertPixels copies a w by h block between formats. Color formats are
// premultiplied; conversion to Gray8 uses Rec. 601 luma.
func ConvertPixels(dst ImageInfo, dstPixels []byte, src ImageInfo, srcPixels []byte) error {
	if dst.Width != src.Width || dst.Height != src.Height {
		return fmt.Errorf("%w: size mismatch", ErrInvalidDimensions)
	}
	if len(dstPixels) < dst.ByteSize() || len(srcPixels) < src.ByteSize() {
		return fmt.Errorf("%w: short buffer", ErrInvalidDimensions)
	}
	convert, err := pixelConverter(dst.Format, src.Format)
	if err != nil {
		return err
	}
	dbpp, sbpp := dst.Format.BytesPerPixel(), src.Format.BytesPerPixel()
	for y := range src.Height {
		d := dstPixels[y*dst.rowBytes():]
		s := srcPixels[y*src.rowBytes():]
		for x := range src.Width {
			convert(d[x*dbpp:x*dbpp+dbpp], s[x*sbpp:x*sbpp+sbpp])
		}
	}
	return nil
}

func pixelConverter(dst, src PixelFormat) (func(d, s []byte), error) {
	rgba := func(f PixelFormat, p []byte) (r, g, b, a byte) {
		switch f {
		case PixelFormatAlpha8:
			return 0, 0, 0, p[0]
		case PixelFormatGray8:
			return p[0], p[0], p[0], 0xff
		case PixelFormatBGRA8888:
			return p[2], p[1], p[0], p[3]
		default:
			return p[0], p[1], p[2], p[3]
		}
	}
	if dst == PixelFormatUnknown || src == PixelFormatUnknown {
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, src, dst)
	}
	if dst == src {
		return func(d, s []byte) { copy(d, s) }, nil
	}
	switch dst {
	case PixelFormatAlpha8:
		return func(d, s []byte) { _, _, _, d[0] = rgba(src, s) }, nil
	case PixelFormatGray8:
		return func(d, s []byte) {
			r, g, b, _ := rgba(src, s)
			d[0] = byte((299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000)
		}, nil
	case PixelFormatRGBA8888:
		return func(d, s []byte) { d[0], d[1], d[2], d[3] = rgba(src, s) }, nil
	case PixelFormatBGRA8888:
		return func(d, s []byte) { d[2], d[1], d[0], d[3] = rgba(src, s) }, nil
	}
	return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, src, dst)
}

// readPixels reads the info.Width by info.Height block at (x, y) of the
// target, in top-down row order regardless of the target's origin.
func readPixels(ctx *Context, proxy *RenderTargetProxy, info ImageInfo, dst []byte, x, y int) error {
	if proxy == nil {
		return ErrTargetUnavailable
	}
	rt, err := proxy.Instantiate()
	if err != nil {
		return err
	}
	w, h := info.Width, info.Height
	if w <= 0 || h <= 0 || x < 0 || y < 0 || x+w > rt.Width() || y+h > rt.Height() {
		return fmt.Errorf("%w: read %dx%d at (%d,%d) from %dx%d",
			ErrInvalidDimensions, w, h, x, y, rt.Width(), rt.Height())
	}
	src := ImageInfo{Width: w, Height: h, Format: rt.Format()}
	tmp := make([]byte, src.ByteSize())
	srcY := y
	if rt.Origin() == OriginBottomLeft {
		srcY = rt.Height() - y - h
	}
	if err := ctx.backend.ReadPixels(rt, x, srcY, w, h, tmp); err != nil {
		return fmt.Errorf("read pixels: %w", err)
	}
	if rt.Origin() == OriginBottomLeft {
		flipRows(tmp, src.MinRowBytes(), h)
	}
	return ConvertPixels(info, dst, src, tmp)
}

func flipRows(pix []byte, rowBytes, h int) {
	tmp := make([]byte, rowBytes)
	for top, bottom := 0, h-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*rowBytes : (top+1)*rowBytes]
		b := pix[bottom*rowBytes : (bottom+1)*rowBytes]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// ReadPixelsImage flushes and returns the whole target as premultiplied
// RGBA.
func (c *Context) ReadPixelsImage(target *RenderTargetProxy) (*image.RGBA, error) {
	if target == nil {
		return nil, ErrTargetUnavailable
	}
	img := image.NewRGBA(image.Rect(0, 0, target.Width(), target.Height()))
	info := ImageInfo{Width: target.Width(), Height: target.Height(), Format: PixelFormatRGBA8888, RowBytes: img.Stride}
	if err := c.ReadPixels(target, info, img.Pix, 0, 0); err != nil {
		return nil, err
	}
	return img, nil
}
