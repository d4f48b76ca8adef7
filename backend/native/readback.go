package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/drawpipe/gpu"
)

// copyPitchAlignment is the required BytesPerRow alignment for texture to
// buffer copies.
const copyPitchAlignment = 256

// ReadPixels copies a region of target to dst. Pending work is submitted
// and waited on first, so the read sees every flushed draw.
func (b *Backend) ReadPixels(target gpu.RenderTarget, x, y, w, h int, dst []byte) error {
	if b.released {
		return ErrBackendReleased
	}
	rt, err := b.ownTarget(target)
	if err != nil {
		return err
	}
	if rt.resolved == nil || rt.released {
		return ErrNotReadable
	}
	if w <= 0 || h <= 0 || x < 0 || y < 0 || x+w > rt.width || y+h > rt.height {
		return fmt.Errorf("%w: read %dx%d at (%d,%d) from %dx%d", gpu.ErrInvalidDimensions, w, h, x, y, rt.width, rt.height)
	}
	bpp := rt.format.BytesPerPixel()
	if len(dst) < w*h*bpp {
		return fmt.Errorf("native: read buffer holds %d bytes, need %d", len(dst), w*h*bpp)
	}

	// The whole texture is copied; the region is cut out on the CPU.
	bytesPerRow := uint32(rt.width * bpp)
	alignedBytesPerRow := alignUp(bytesPerRow, copyPitchAlignment)
	stagingSize := uint64(alignedBytesPerRow) * uint64(rt.height)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "drawpipe_readback",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.commandEncoder()
	if err != nil {
		return err
	}
	tex := rt.resolved
	restore := tex.usage
	tex.transition(encoder, gputypes.TextureUsageCopySrc)
	encoder.CopyTextureToBuffer(tex.raw, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: uint32(rt.height)},
		TextureBase:  hal.ImageCopyTexture{Texture: tex.raw, MipLevel: 0},
		Size:         hal.Extent3D{Width: uint32(rt.width), Height: uint32(rt.height), DepthOrArrayLayers: 1},
	}})
	tex.transition(encoder, restore)

	if err := b.Submit(true); err != nil {
		return err
	}
	readback := make([]byte, stagingSize)
	if err := b.queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("native: readback: %w", err)
	}
	cropRows(readback, int(alignedBytesPerRow), x*bpp, y, w*bpp, h, dst)
	return nil
}

// cropRows copies h rows of rowLen bytes starting at byte column x and row
// y from a src laid out with the given pitch into tightly packed dst.
func cropRows(src []byte, pitch, x, y, rowLen, h int, dst []byte) {
	for row := 0; row < h; row++ {
		off := (y+row)*pitch + x
		copy(dst[row*rowLen:(row+1)*rowLen], src[off:off+rowLen])
	}
}
