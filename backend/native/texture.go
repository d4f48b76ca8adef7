package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/drawpipe/gpu"
)

// texture is a single-sample 2D texture with one view. Textures handed out
// by renderTarget.AsTexture are borrowed and released with the target.
type texture struct {
	backend *Backend
	raw     hal.Texture
	view    hal.TextureView
	width   int
	height  int
	format  gpu.PixelFormat
	origin  gpu.ImageOrigin
	// usage is the state the texture was last transitioned to.
	usage    gputypes.TextureUsage
	borrowed bool
	released bool
}

var _ gpu.Texture = (*texture)(nil)

func (t *texture) Width() int                   { return t.width }
func (t *texture) Height() int                  { return t.height }
func (t *texture) Format() gpu.PixelFormat      { return t.format }
func (t *texture) Origin() gpu.ImageOrigin      { return t.origin }
func (t *texture) Mipmapped() bool              { return false }
func (t *texture) SamplerType() gpu.SamplerType { return gpu.SamplerType2D }
func (t *texture) IsYUV() bool                  { return false }

func (t *texture) Release() {
	if t.borrowed {
		return
	}
	t.destroy()
}

func (t *texture) destroy() {
	if t.released {
		return
	}
	t.released = true
	t.backend.device.DestroyTextureView(t.view)
	t.backend.device.DestroyTexture(t.raw)
}

// transition records a barrier moving t to usage. It must be called
// outside a render pass.
func (t *texture) transition(encoder hal.CommandEncoder, usage gputypes.TextureUsage) {
	if t.usage == usage {
		return
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.raw,
		Usage: hal.TextureUsageTransition{
			OldUsage: t.usage,
			NewUsage: usage,
		},
	}})
	t.usage = usage
}

// renderTarget is either an owned color attachment, optionally
// multisampled with a resolve texture, or a wrapped view of a surface the
// host owns.
type renderTarget struct {
	backend *Backend
	width   int
	height  int
	format  gpu.PixelFormat
	origin  gpu.ImageOrigin
	samples int

	// resolved holds the final pixels; it is also the sampleable view.
	resolved *texture
	msaa     hal.Texture
	msaaView hal.TextureView

	// surface is set for wrapped targets only.
	surface  hal.TextureView
	released bool
}

var _ gpu.RenderTarget = (*renderTarget)(nil)

func (t *renderTarget) Width() int              { return t.width }
func (t *renderTarget) Height() int             { return t.height }
func (t *renderTarget) Format() gpu.PixelFormat { return t.format }
func (t *renderTarget) Origin() gpu.ImageOrigin { return t.origin }
func (t *renderTarget) SampleCount() int        { return t.samples }
func (t *renderTarget) ExternallyOwned() bool   { return t.surface != nil }

func (t *renderTarget) AsTexture() gpu.Texture {
	if t.resolved == nil {
		return nil
	}
	return t.resolved
}

func (t *renderTarget) Release() {
	if t.released {
		return
	}
	t.released = true
	if t.msaa != nil {
		t.backend.device.DestroyTextureView(t.msaaView)
		t.backend.device.DestroyTexture(t.msaa)
	}
	if t.resolved != nil {
		t.resolved.destroy()
	}
}

// attachment returns the color view to draw into and the resolve view,
// which is nil for single-sample targets.
func (t *renderTarget) attachment() (view, resolve hal.TextureView) {
	switch {
	case t.surface != nil:
		return t.surface, nil
	case t.msaa != nil:
		return t.msaaView, t.resolved.view
	default:
		return t.resolved.view, nil
	}
}

func (b *Backend) newTexture(label string, w, h int, format gpu.PixelFormat, samples int, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	texFormat, err := textureFormat(format)
	if err != nil {
		return nil, nil, err
	}
	raw, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   uint32(max(samples, 1)),
		Dimension:     gputypes.TextureDimension2D,
		Format:        texFormat,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("native: create texture %s: %w", label, err)
	}
	view, err := b.device.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        texFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(raw)
		return nil, nil, fmt.Errorf("native: create texture view %s: %w", label, err)
	}
	return raw, view, nil
}

func (b *Backend) checkDesc(desc gpu.TextureDesc) error {
	if b.released {
		return ErrBackendReleased
	}
	if !b.caps.ValidDimensions(desc.Width, desc.Height) {
		return fmt.Errorf("%w: %dx%d", gpu.ErrInvalidDimensions, desc.Width, desc.Height)
	}
	return nil
}

// CreateTexture creates a sampleable texture and uploads pixels when
// given. Mipmap requests are ignored; Caps reports no mipmap support.
func (b *Backend) CreateTexture(desc gpu.TextureDesc, pixels []byte, rowBytes int) (gpu.Texture, error) {
	if err := b.checkDesc(desc); err != nil {
		return nil, err
	}
	raw, view, err := b.newTexture(desc.Label, desc.Width, desc.Height, desc.Format, 1,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst|gputypes.TextureUsageCopySrc)
	if err != nil {
		return nil, err
	}
	t := &texture{
		backend: b,
		raw:     raw,
		view:    view,
		width:   desc.Width,
		height:  desc.Height,
		format:  desc.Format,
		origin:  desc.Origin,
		usage:   gputypes.TextureUsageTextureBinding,
	}
	if pixels != nil {
		if err := b.upload(t, pixels, rowBytes); err != nil {
			t.destroy()
			return nil, err
		}
	}
	return t, nil
}

func (b *Backend) upload(t *texture, pixels []byte, rowBytes int) error {
	tight := t.width * t.format.BytesPerPixel()
	if rowBytes == 0 {
		rowBytes = tight
	}
	if rowBytes < tight || len(pixels) < rowBytes*(t.height-1)+tight {
		return fmt.Errorf("native: upload %dx%d: %d bytes at stride %d is too short", t.width, t.height, len(pixels), rowBytes)
	}
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.raw, MipLevel: 0},
		pixels,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(rowBytes),
			RowsPerImage: uint32(t.height),
		},
		&hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1},
	)
	return nil
}

// CreateRenderTarget creates a color attachment. Multisampled targets get
// a single-sample resolve texture that is read back and sampled.
func (b *Backend) CreateRenderTarget(desc gpu.TextureDesc) (gpu.RenderTarget, error) {
	if err := b.checkDesc(desc); err != nil {
		return nil, err
	}
	if !b.caps.IsFormatRenderable(desc.Format) {
		return nil, fmt.Errorf("%w: %s is not renderable", ErrUnsupportedFormat, desc.Format)
	}
	samples := max(desc.SampleCount, 1)
	if samples > b.caps.MaxSampleCount {
		return nil, fmt.Errorf("native: sample count %d exceeds %d", samples, b.caps.MaxSampleCount)
	}

	raw, view, err := b.newTexture(desc.Label, desc.Width, desc.Height, desc.Format, 1,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding|
			gputypes.TextureUsageCopySrc|gputypes.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	t := &renderTarget{
		backend: b,
		width:   desc.Width,
		height:  desc.Height,
		format:  desc.Format,
		origin:  desc.Origin,
		samples: samples,
		resolved: &texture{
			backend:  b,
			raw:      raw,
			view:     view,
			width:    desc.Width,
			height:   desc.Height,
			format:   desc.Format,
			origin:   desc.Origin,
			usage:    gputypes.TextureUsageRenderAttachment,
			borrowed: true,
		},
	}
	if samples > 1 {
		t.msaa, t.msaaView, err = b.newTexture(desc.Label+"_msaa", desc.Width, desc.Height, desc.Format, samples,
			gputypes.TextureUsageRenderAttachment)
		if err != nil {
			t.resolved.destroy()
			return nil, err
		}
	}
	return t, nil
}

// WrapSurfaceView exposes a host-owned texture view, such as the current
// swap chain image, as a render target. Release leaves the view alive and
// the target cannot be sampled or read back.
func (b *Backend) WrapSurfaceView(view hal.TextureView, width, height int, format gpu.PixelFormat) (gpu.RenderTarget, error) {
	if view == nil {
		return nil, errors.New("native: surface view is nil")
	}
	if err := b.checkDesc(gpu.TextureDesc{Width: width, Height: height, Format: format}); err != nil {
		return nil, err
	}
	if _, err := textureFormat(format); err != nil {
		return nil, err
	}
	return &renderTarget{
		backend: b,
		width:   width,
		height:  height,
		format:  format,
		origin:  gpu.OriginTopLeft,
		samples: 1,
		surface: view,
	}, nil
}

func (b *Backend) ownTexture(t gpu.Texture) (*texture, error) {
	nt, ok := t.(*texture)
	if !ok || nt.backend != b {
		return nil, ErrForeignResource
	}
	return nt, nil
}

func (b *Backend) ownTarget(t gpu.RenderTarget) (*renderTarget, error) {
	nt, ok := t.(*renderTarget)
	if !ok || nt.backend != b {
		return nil, ErrForeignResource
	}
	return nt, nil
}
