package gpu

import "github.com/gogpu/drawpipe/geom"

var (
	textureEffectClassID      = RegisterProcessorClass("TextureEffect")
	tiledTextureEffectClassID = RegisterProcessorClass("TiledTextureEffect")
)

// TextureEffect samples a texture proxy through a coordinate transform
// and modulates the result by the input color's alpha. Alpha-only
// textures instead modulate the input color by their alpha.
type TextureEffect struct {
	FragmentProcessorBase
	sampler TextureSampler
}

// NewTextureEffect returns a processor sampling proxy, with uvMatrix
// mapping local coordinates to the proxy's pixel space. It returns nil if
// proxy is nil.
func NewTextureEffect(proxy *TextureProxy, sampling SamplerState, uvMatrix geom.Matrix) FragmentProcessor {
	if proxy == nil {
		return nil
	}
	fp := &TextureEffect{sampler: TextureSampler{Proxy: proxy, State: sampling}}
	fp.AddCoordTransform(NewCoordTransform(uvMatrix, proxy))
	return fp
}

func (fp *TextureEffect) Name() string                      { return "TextureEffect" }
func (fp *TextureEffect) ClassID() ClassID                  { return textureEffectClassID }
func (fp *TextureEffect) NumTextureSamplers() int           { return 1 }
func (fp *TextureEffect) TextureSampler(int) TextureSampler { return fp.sampler }

func (fp *TextureEffect) ComputeProcessorKey(_ *Context, key *BytesKey) {
	key.WriteBool(fp.sampler.Proxy.Format().IsAlphaOnly())
}

func (fp *TextureEffect) EmitCode(args *FPEmitArgs) {
	color := args.FragBuilder.TextureLookup(args.TextureSamplers[0], args.TransformedCoords[0])
	if fp.sampler.Proxy.Format().IsAlphaOnly() {
		args.FragBuilder.CodeAppendf("%s = %s * %s.a;", args.OutputColor, args.InputColor, color)
	} else {
		args.FragBuilder.CodeAppendf("%s = %s * %s.a;", args.OutputColor, color, args.InputColor)
	}
}

// TiledTextureEffect samples a subset of a texture with a tile mode per
// axis applied in the shader.
type TiledTextureEffect struct {
	FragmentProcessorBase
	sampler TextureSampler
	subset  geom.Rect
	wrapX   TileMode
	wrapY   TileMode
}

// NewTiledTextureEffect returns a processor sampling proxy with
// sampling.WrapX and sampling.WrapY applied to subset, in the proxy's
// pixel space. A nil subset covers the proxy's contents. Clamped sampling
// of a proxy whose backing matches its contents needs no shader tiling and
// yields a TextureEffect; approx backings clamp to the contents in the
// shader.
func NewTiledTextureEffect(proxy *TextureProxy, sampling SamplerState, uvMatrix geom.Matrix, subset *geom.Rect) FragmentProcessor {
	if proxy == nil {
		return nil
	}
	content := geom.MakeWH(float64(proxy.Width()), float64(proxy.Height()))
	if subset == nil && sampling.WrapX == TileModeClamp && sampling.WrapY == TileModeClamp {
		if w, h := proxy.BackingSize(); w == proxy.Width() && h == proxy.Height() {
			return NewTextureEffect(proxy, sampling, uvMatrix)
		}
	}
	r := content
	if subset != nil {
		var ok bool
		if r, ok = subset.Intersect(content); !ok {
			return nil
		}
	}
	hw := sampling
	hw.WrapX, hw.WrapY = TileModeClamp, TileModeClamp
	fp := &TiledTextureEffect{
		sampler: TextureSampler{Proxy: proxy, State: hw},
		subset:  r,
		wrapX:   sampling.WrapX,
		wrapY:   sampling.WrapY,
	}
	fp.AddCoordTransform(NewCoordTransform(uvMatrix, proxy))
	return fp
}

func (fp *TiledTextureEffect) Name() string                      { return "TiledTextureEffect" }
func (fp *TiledTextureEffect) ClassID() ClassID                  { return tiledTextureEffectClassID }
func (fp *TiledTextureEffect) NumTextureSamplers() int           { return 1 }
func (fp *TiledTextureEffect) TextureSampler(int) TextureSampler { return fp.sampler }

func (fp *TiledTextureEffect) ComputeProcessorKey(_ *Context, key *BytesKey) {
	key.WriteInt(int(fp.wrapX))
	key.WriteInt(int(fp.wrapY))
	key.WriteBool(fp.sampler.Proxy.Format().IsAlphaOnly())
}

func tileCoord(mode TileMode, c, lo, hi string) string {
	switch mode {
	case TileModeRepeat:
		return "coord." + c + " = " + lo + " + fract((coord." + c + " - " + lo + ") / (" + hi + " - " + lo + ")) * (" + hi + " - " + lo + ");"
	case TileModeMirror:
		return "{\n    let t = (coord." + c + " - " + lo + ") / (" + hi + " - " + lo + ");\n" +
			"    coord." + c + " = " + lo + " + (1.0 - abs(t - 2.0 * floor(t * 0.5) - 1.0)) * (" + hi + " - " + lo + ");\n}"
	case TileModeDecal:
		return "if (coord." + c + " < " + lo + " || coord." + c + " > " + hi + ") { decal = 0.0; }"
	default:
		return "coord." + c + " = clamp(coord." + c + ", " + lo + ", " + hi + ");"
	}
}

func (fp *TiledTextureEffect) clamps() bool {
	return fp.wrapX == TileModeClamp || fp.wrapY == TileModeClamp
}

func (fp *TiledTextureEffect) EmitCode(args *FPEmitArgs) {
	subset := args.UniformHandler.AddUniform(ShaderFlagFragment, SLTypeFloat4, "Subset")
	// Clamping stops half a texel inside the subset so filtering never
	// reaches texels outside it.
	bounds := subset
	if fp.clamps() {
		bounds = args.UniformHandler.AddUniform(ShaderFlagFragment, SLTypeFloat4, "Clamp")
	}
	axis := func(mode TileMode, c, lo, hi string) string {
		if mode == TileModeClamp {
			return tileCoord(mode, c, bounds+"."+lo, bounds+"."+hi)
		}
		return tileCoord(mode, c, subset+"."+lo, subset+"."+hi)
	}
	fb := args.FragBuilder
	fb.CodeAppendf("var coord = %s;", args.TransformedCoords[0])
	fb.CodeAppend("var decal = 1.0;")
	fb.CodeAppend(axis(fp.wrapX, "x", "x", "z"))
	fb.CodeAppend(axis(fp.wrapY, "y", "y", "w"))
	color := fb.TextureLookup(args.TextureSamplers[0], "coord")
	if fp.sampler.Proxy.Format().IsAlphaOnly() {
		fb.CodeAppendf("%s = %s * (%s.a * decal);", args.OutputColor, args.InputColor, color)
	} else {
		fb.CodeAppendf("%s = %s * (%s.a * decal);", args.OutputColor, color, args.InputColor)
	}
}

// SetData uploads the subset in normalized coordinates of the backing.
func (fp *TiledTextureEffect) SetData(buf *UniformBuffer) {
	w, h := fp.sampler.Proxy.BackingSize()
	if w == 0 || h == 0 {
		return
	}
	l, t := fp.subset.Left/float64(w), fp.subset.Top/float64(h)
	r, b := fp.subset.Right/float64(w), fp.subset.Bottom/float64(h)
	if fp.sampler.Proxy.Origin() == OriginBottomLeft {
		t, b = 1-b, 1-t
	}
	buf.SetData("Subset", float32(l), float32(t), float32(r), float32(b))
	if !fp.clamps() {
		return
	}
	inset := fp.subset
	if inset.Width() >= 1 {
		inset.Left, inset.Right = inset.Left+0.5, inset.Right-0.5
	} else {
		inset.Left = (inset.Left + inset.Right) / 2
		inset.Right = inset.Left
	}
	if inset.Height() >= 1 {
		inset.Top, inset.Bottom = inset.Top+0.5, inset.Bottom-0.5
	} else {
		inset.Top = (inset.Top + inset.Bottom) / 2
		inset.Bottom = inset.Top
	}
	l, t = inset.Left/float64(w), inset.Top/float64(h)
	r, b = inset.Right/float64(w), inset.Bottom/float64(h)
	if fp.sampler.Proxy.Origin() == OriginBottomLeft {
		t, b = 1-b, 1-t
	}
	buf.SetData("Clamp", float32(l), float32(t), float32(r), float32(b))
}
