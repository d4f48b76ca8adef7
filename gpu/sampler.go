package gpu

// TileMode decides how sampling outside [0, 1] behaves.
type TileMode int

const (
	TileModeClamp TileMode = iota
	TileModeRepeat
	TileModeMirror
	// TileModeDecal samples transparent black outside the image.
	TileModeDecal
)

// String returns the tile mode name.
func (m TileMode) String() string {
	switch m {
	case TileModeClamp:
		return "clamp"
	case TileModeRepeat:
		return "repeat"
	case TileModeMirror:
		return "mirror"
	case TileModeDecal:
		return "decal"
	default:
		return "unknown"
	}
}

// FilterMode selects texel filtering.
type FilterMode int

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

// MipmapMode selects filtering between mip levels.
type MipmapMode int

const (
	MipmapModeNone MipmapMode = iota
	MipmapModeNearest
	MipmapModeLinear
)

// SamplerState is the fixed-function sampling configuration bound with a
// texture. It does not change shader text and is not part of program keys.
type SamplerState struct {
	WrapX  TileMode
	WrapY  TileMode
	Filter FilterMode
	Mipmap MipmapMode
}

// LinearSampling is clamped bilinear sampling without mipmaps.
var LinearSampling = SamplerState{Filter: FilterModeLinear}

// TextureSampler is a fragment processor's request to sample a proxy.
type TextureSampler struct {
	Proxy *TextureProxy
	State SamplerState
}
