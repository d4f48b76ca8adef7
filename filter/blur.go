package filter

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/drawpipe/geom"
	"github.com/gogpu/drawpipe/gpu"
)

// maxBlurSigma is the largest sigma blurred at full resolution. Past it a
// one pixel feature is blurred beyond recognition, so larger sigmas run
// on a proportionally downscaled image.
const maxBlurSigma float32 = 10

// BlurFilter is a separable Gaussian blur.
type BlurFilter struct {
	sigmaX   float32
	sigmaY   float32
	tileMode gpu.TileMode
}

// Blur returns a Gaussian blur with the given sigmas in pixels. Pixels
// outside the source are sampled according to tileMode. It returns nil
// if either sigma is negative or both are zero.
func Blur(sigmaX, sigmaY float32, tileMode gpu.TileMode) ImageFilter {
	if sigmaX < 0 || sigmaY < 0 || (sigmaX == 0 && sigmaY == 0) {
		slogger().Debug("filter: blur rejected", "sigmaX", sigmaX, "sigmaY", sigmaY)
		return nil
	}
	return &BlurFilter{sigmaX: sigmaX, sigmaY: sigmaY, tileMode: tileMode}
}

// SigmaX returns the horizontal sigma.
func (f *BlurFilter) SigmaX() float32 { return f.sigmaX }

// SigmaY returns the vertical sigma.
func (f *BlurFilter) SigmaY() float32 { return f.sigmaY }

// FilterBounds returns src outset by twice the sigma on each axis.
func (f *BlurFilter) FilterBounds(src geom.Rect) geom.Rect {
	return src.Outset(2*float64(f.sigmaX), 2*float64(f.sigmaY))
}

func makeTarget(ctx *gpu.Context, label string, w, h int, alphaOnly, mipmapped bool) *gpu.RenderTargetProxy {
	format := gpu.PixelFormatRGBA8888
	if alphaOnly && ctx.Caps().IsFormatRenderable(gpu.PixelFormatAlpha8) {
		format = gpu.PixelFormatAlpha8
	}
	rt := ctx.ProxyProvider().CreateRenderTargetProxy(gpu.TextureDesc{
		Label:     label,
		Width:     w,
		Height:    h,
		Format:    format,
		Mipmapped: mipmapped,
		Origin:    gpu.OriginTopLeft,
	}, gpu.BackingFitApprox)
	if rt == nil {
		slogger().Debug("filter: blur target rejected", "label", label, "w", w, "h", h)
	}
	return rt
}

func blur1D(ctx *gpu.Context, source gpu.FragmentProcessor, target *gpu.RenderTargetProxy, sigma float32,
	direction BlurDirection, stepLength float32, flags gpu.RenderFlags) bool {
	fp := NewGaussianBlur1DFragmentProcessor(source, sigma, direction, stepLength, maxBlurSigma)
	return ctx.DrawingManager().FillRTWithFP(target, fp, flags)
}

// scaleTexture resamples texture into a new w by h target.
func scaleTexture(ctx *gpu.Context, args LockArgs, texture *gpu.TextureProxy, w, h int) *gpu.RenderTargetProxy {
	rt := makeTarget(ctx, "blur/upscale", w, h, texture.Format().IsAlphaOnly(), args.Mipmapped)
	if rt == nil {
		return nil
	}
	uv := geom.Scale(float64(texture.Width())/float64(w), float64(texture.Height())/float64(h))
	fp := gpu.NewTiledTextureEffect(texture, gpu.LinearSampling, uv, nil)
	if !ctx.DrawingManager().FillRTWithFP(rt, fp, args.RenderFlags) {
		rt.Unref()
		return nil
	}
	return rt
}

// LockTextureProxy records the blur of the clipBounds region of source.
func (f *BlurFilter) LockTextureProxy(ctx *gpu.Context, source *gpu.TextureProxy, clipBounds geom.Rect,
	args LockArgs) *gpu.RenderTargetProxy {
	if ctx == nil || source == nil || clipBounds.IsEmpty() {
		return nil
	}
	maxSigma := math32.Max(f.sigmaX, f.sigmaY)
	blur2D := f.sigmaX > 0 && f.sigmaY > 0

	// A 2D blur only needs the source pixels that reach the visible
	// region through both passes.
	boundsWillSample := clipBounds
	if blur2D {
		var ok bool
		boundsWillSample, ok = f.FilterBounds(clipBounds).Intersect(
			f.FilterBounds(geom.MakeWH(float64(source.Width()), float64(source.Height()))))
		if !ok {
			return nil
		}
		boundsWillSample = boundsWillSample.RoundOut()
	}

	scaleFactor := scaleForSigma(maxSigma)
	scaledBounds := boundsWillSample
	if scaleFactor < 1 {
		scaledBounds = geom.Scale(float64(scaleFactor), float64(scaleFactor)).MapRect(scaledBounds)
	}
	scaledBounds = scaledBounds.RoundOut()

	alphaOnly := source.Format().IsAlphaOnly()
	mipmapped := args.Mipmapped && !blur2D && maxSigma <= maxBlurSigma
	rt := makeTarget(ctx, "blur/pass1", int(scaledBounds.Width()), int(scaledBounds.Height()), alphaOnly, mipmapped)
	if rt == nil {
		return nil
	}

	uv := geom.Translate(boundsWillSample.Left, boundsWillSample.Top)
	uv.PreScale(boundsWillSample.Width()/scaledBounds.Width(), boundsWillSample.Height()/scaledBounds.Height())
	sampling := gpu.SamplerState{WrapX: f.tileMode, WrapY: f.tileMode, Filter: gpu.FilterModeLinear}
	src := gpu.NewTiledTextureEffect(source, sampling, uv, nil)

	if blur2D {
		if !blur1D(ctx, src, rt, f.sigmaX*scaleFactor, BlurHorizontal, 1, args.RenderFlags) {
			rt.Unref()
			return nil
		}
		// The vertical pass also scales back to the clip bounds.
		uv = geom.Scale(scaledBounds.Width()/boundsWillSample.Width(), scaledBounds.Height()/boundsWillSample.Height())
		uv.PreTranslate(clipBounds.Left-boundsWillSample.Left, clipBounds.Top-boundsWillSample.Top)
		src = gpu.NewTiledTextureEffect(rt.AsTextureProxy(), sampling, uv, nil)

		// Output sizes truncate the clip, so a fractional clip never grows
		// the target past its covered pixels.
		final := makeTarget(ctx, "blur/pass2", int(clipBounds.Width()), int(clipBounds.Height()), alphaOnly, args.Mipmapped)
		// The vertical pass's task holds its own reference to rt.
		defer rt.Unref()
		if final == nil {
			return nil
		}
		step := float32(boundsWillSample.Height() / scaledBounds.Height())
		if !blur1D(ctx, src, final, f.sigmaY*scaleFactor, BlurVertical, step, args.RenderFlags) {
			final.Unref()
			return nil
		}
		return final
	}

	sigma, direction := f.sigmaX, BlurHorizontal
	if f.sigmaX == 0 {
		sigma, direction = f.sigmaY, BlurVertical
	}
	if !blur1D(ctx, src, rt, sigma*scaleFactor, direction, 1, args.RenderFlags) {
		rt.Unref()
		return nil
	}
	if scaleFactor == 1 {
		return rt
	}
	defer rt.Unref()
	return scaleTexture(ctx, args, rt.AsTextureProxy(), int(clipBounds.Width()), int(clipBounds.Height()))
}

var _ ImageFilter = (*BlurFilter)(nil)
