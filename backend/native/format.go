package native

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/drawpipe/gpu"
)

// textureFormat maps a pixel format to its device storage format.
// Single-channel formats live in the red channel; the gpu package's read
// and write swizzles move them where the shader expects.
func textureFormat(f gpu.PixelFormat) (gputypes.TextureFormat, error) {
	switch f {
	case gpu.PixelFormatAlpha8, gpu.PixelFormatGray8:
		return gputypes.TextureFormatR8Unorm, nil
	case gpu.PixelFormatRGBA8888:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case gpu.PixelFormatBGRA8888:
		return gputypes.TextureFormatBGRA8Unorm, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// addressMode maps a tile mode to hardware addressing. Decal has no
// portable hardware mode; TiledTextureEffect clears outside texels in the
// shader, so clamping is enough here.
func addressMode(m gpu.TileMode) gputypes.AddressMode {
	switch m {
	case gpu.TileModeRepeat:
		return gputypes.AddressModeRepeat
	case gpu.TileModeMirror:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

func filterMode(m gpu.FilterMode) gputypes.FilterMode {
	if m == gpu.FilterModeLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func mipmapFilter(m gpu.MipmapMode) gputypes.FilterMode {
	if m == gpu.MipmapModeLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func blendFactor(c gpu.BlendCoeff) gputypes.BlendFactor {
	switch c {
	case gpu.BlendCoeffOne:
		return gputypes.BlendFactorOne
	case gpu.BlendCoeffSrcColor:
		return gputypes.BlendFactorSrc
	case gpu.BlendCoeffInvSrcColor:
		return gputypes.BlendFactorOneMinusSrc
	case gpu.BlendCoeffDstColor:
		return gputypes.BlendFactorDst
	case gpu.BlendCoeffInvDstColor:
		return gputypes.BlendFactorOneMinusDst
	case gpu.BlendCoeffSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case gpu.BlendCoeffInvSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case gpu.BlendCoeffDstAlpha:
		return gputypes.BlendFactorDstAlpha
	case gpu.BlendCoeffInvDstAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	default:
		return gputypes.BlendFactorZero
	}
}

// blendState returns nil for a plain overwrite so the pipeline skips
// blending entirely.
func blendState(f gpu.BlendFormula) *gputypes.BlendState {
	if f.Disabled() {
		return nil
	}
	component := gputypes.BlendComponent{
		SrcFactor: blendFactor(f.Src),
		DstFactor: blendFactor(f.Dst),
		Operation: gputypes.BlendOperationAdd,
	}
	return &gputypes.BlendState{Color: component, Alpha: component}
}

func vertexFormat(t gpu.SLType) (gputypes.VertexFormat, error) {
	switch t {
	case gpu.SLTypeFloat:
		return gputypes.VertexFormatFloat32, nil
	case gpu.SLTypeFloat2:
		return gputypes.VertexFormatFloat32x2, nil
	case gpu.SLTypeFloat3:
		return gputypes.VertexFormatFloat32x3, nil
	case gpu.SLTypeFloat4:
		return gputypes.VertexFormatFloat32x4, nil
	case gpu.SLTypeInt:
		return gputypes.VertexFormatSint32, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedAttribute, t.WGSL())
	}
}

// alignUp rounds n up to a multiple of align, which must be a power of two.
func alignUp(n, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}
