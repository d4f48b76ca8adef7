// Package drawpipe is a deferred 2D GPU draw pipeline.
//
// Draws are recorded as render tasks against lazily created resource
// proxies, assembled from shader-generating processors, and executed on
// Flush. Compiled programs are cached by a structural key of the
// processors that produced them, so two draws that generate the same
// shader text share one GPU program.
//
// # Quick Start
//
//	ctx, err := drawpipe.NewContext(drawpipe.WithSyncSubmit(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Release()
//
//	target := ctx.ProxyProvider().CreateRenderTargetProxy(gpu.TextureDesc{
//	    Width: 256, Height: 256, Format: gpu.PixelFormatRGBA8888,
//	}, gpu.BackingFitExact)
//	fp := gpu.NewConstColorProcessor(gpu.RGBA(1, 0, 0, 1), gpu.InputModeIgnore)
//	ctx.DrawingManager().FillRTWithFP(target, fp, gpu.RenderFlagClear)
//	img, err := ctx.ReadPixelsImage(target)
//
// # Packages
//
//   - gpu: processors, program cache, proxies, resource pool, render tasks
//   - filter: image filters built on the pipeline, such as Gaussian blur
//   - backend: registry of GPU backends
//   - backend/native: pure Go WebGPU backend on gogpu/wgpu
//   - geom: points, rectangles and affine matrices
//
// # Configuration
//
// NewContext takes functional options. Settings can also come from a TOML
// or YAML file through LoadConfig and WithConfig.
//
// # Threading
//
// A context and everything created from it must be used from one
// goroutine at a time. SetLogger and the backend registry are safe for
// concurrent use.
package drawpipe
