package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertPixels(t *testing.T) {
	src := []byte{
		10, 20, 30, 255, 0, 0, 0, 0,
		255, 255, 255, 128, 1, 2, 3, 4,
	}
	srcInfo := ImageInfo{Width: 2, Height: 2, Format: PixelFormatRGBA8888}

	tests := []struct {
		name   string
		format PixelFormat
		want   []byte
	}{
		{"rgba", PixelFormatRGBA8888, src},
		{"bgra", PixelFormatBGRA8888, []byte{
			30, 20, 10, 255, 0, 0, 0, 0,
			255, 255, 255, 128, 3, 2, 1, 4,
		}},
		{"alpha", PixelFormatAlpha8, []byte{255, 0, 128, 4}},
		{"gray", PixelFormatGray8, []byte{18, 0, 255, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := ImageInfo{Width: 2, Height: 2, Format: tt.format}
			got := make([]byte, dst.ByteSize())
			require.NoError(t, ConvertPixels(dst, got, srcInfo, src))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertPixelsRowBytes(t *testing.T) {
	src := []byte{1, 2, 0xee, 3, 4, 0xee}
	srcInfo := ImageInfo{Width: 2, Height: 2, Format: PixelFormatAlpha8, RowBytes: 3}
	dstInfo := ImageInfo{Width: 2, Height: 2, Format: PixelFormatRGBA8888}
	got := make([]byte, dstInfo.ByteSize())

	require.NoError(t, ConvertPixels(dstInfo, got, srcInfo, src))
	assert.Equal(t, []byte{0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0, 4}, got)
}

func TestConvertPixelsErrors(t *testing.T) {
	a := ImageInfo{Width: 2, Height: 2, Format: PixelFormatRGBA8888}
	b := ImageInfo{Width: 3, Height: 2, Format: PixelFormatRGBA8888}
	assert.ErrorIs(t, ConvertPixels(a, make([]byte, 16), b, make([]byte, 24)), ErrInvalidDimensions)
	assert.ErrorIs(t, ConvertPixels(a, make([]byte, 4), a, make([]byte, 16)), ErrInvalidDimensions)

	unknown := ImageInfo{Width: 2, Height: 2}
	assert.ErrorIs(t, ConvertPixels(unknown, make([]byte, 16), a, make([]byte, 16)), ErrUnsupportedConversion)
}

func TestReadPixelsReturnsTopDownRows(t *testing.T) {
	tests := []struct {
		name   string
		origin ImageOrigin
		want   []byte
	}{
		{"top-left", OriginTopLeft, []byte{1, 2}},
		{"bottom-left", OriginBottomLeft, []byte{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newTestContext(t, ContextOptions{})
			desc := TextureDesc{Label: "read", Width: 2, Height: 4, Format: PixelFormatRGBA8888, Origin: tt.origin}
			target := ctx.ProxyProvider().CreateRenderTargetProxy(desc, BackingFitExact)
			require.NotNil(t, target)

			info := ImageInfo{Width: 2, Height: 2, Format: PixelFormatAlpha8}
			dst := make([]byte, 4)
			require.NoError(t, ctx.ReadPixels(target, info, dst, 0, 1))
			// The fake backend fills each row with its memory row index.
			assert.Equal(t, tt.want, []byte{dst[0], dst[2]})
		})
	}
}

func TestReadPixelsRejectsOutOfBounds(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	target := ctx.ProxyProvider().CreateRenderTargetProxy(TextureDesc{Width: 4, Height: 4, Format: PixelFormatRGBA8888}, BackingFitExact)
	info := ImageInfo{Width: 4, Height: 4, Format: PixelFormatRGBA8888}

	err := ctx.ReadPixels(target, info, make([]byte, info.ByteSize()), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	assert.ErrorIs(t, ctx.ReadPixels(nil, info, nil, 0, 0), ErrTargetUnavailable)
}

func TestReadPixelsImage(t *testing.T) {
	ctx, _ := newTestContext(t, ContextOptions{})
	target := ctx.ProxyProvider().CreateRenderTargetProxy(TextureDesc{Width: 3, Height: 2, Format: PixelFormatBGRA8888}, BackingFitExact)

	img, err := ctx.ReadPixelsImage(target)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, uint8(1), img.RGBAAt(0, 1).A)
}
