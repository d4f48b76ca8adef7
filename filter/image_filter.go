package filter

import (
	"github.com/gogpu/drawpipe/geom"
	"github.com/gogpu/drawpipe/gpu"
)

// LockArgs carries per-request options for LockTextureProxy.
type LockArgs struct {
	// Mipmapped requests a mipmapped result where the filter allows it.
	Mipmapped bool
	// RenderFlags are passed to every pass the filter records.
	RenderFlags gpu.RenderFlags
}

// ImageFilter transforms a source image into a new image.
type ImageFilter interface {
	// FilterBounds returns the bounds of the output produced from an
	// input occupying src.
	FilterBounds(src geom.Rect) geom.Rect

	// LockTextureProxy records the passes that filter the part of source
	// within clipBounds, in the source's pixel space, and returns the
	// target holding the result. The result has clipBounds' size and its
	// origin maps to clipBounds' top-left corner. The caller owns one
	// reference to the returned proxy. It returns nil if a pass could not
	// be recorded.
	LockTextureProxy(ctx *gpu.Context, source *gpu.TextureProxy, clipBounds geom.Rect, args LockArgs) *gpu.RenderTargetProxy
}
