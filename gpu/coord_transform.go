package gpu

import "github.com/gogpu/drawpipe/geom"

// CoordTransform maps a draw's local coordinates into the space a
// fragment processor samples in. With a Proxy set, the result is further
// normalized to texture coordinates of the proxy's backing.
type CoordTransform struct {
	Matrix geom.Matrix
	Proxy  *TextureProxy
}

// NewCoordTransform returns a transform into the pixel space of proxy,
// or a plain matrix transform if proxy is nil.
func NewCoordTransform(m geom.Matrix, proxy *TextureProxy) *CoordTransform {
	return &CoordTransform{Matrix: m, Proxy: proxy}
}

// TotalMatrix returns Matrix followed by normalization to the proxy's
// backing size and origin. The proxy must be resolved.
func (c *CoordTransform) TotalMatrix() geom.Matrix {
	m := c.Matrix
	if c.Proxy == nil {
		return m
	}
	w, h := c.Proxy.BackingSize()
	if w == 0 || h == 0 {
		return m
	}
	m.PostScale(1/float64(w), 1/float64(h))
	if c.Proxy.Origin() == OriginBottomLeft {
		m.PostScale(1, -1)
		m.PostTranslate(0, 1)
	}
	return m
}

// CoordTransformIter yields the coordinate transforms of a pipeline's
// fragment processors in pre-order, the order their varyings are emitted.
type CoordTransformIter struct {
	transforms []*CoordTransform
	next       int
}

// Next returns the next transform, or nil when exhausted.
func (it *CoordTransformIter) Next() *CoordTransform {
	if it.next >= len(it.transforms) {
		return nil
	}
	ct := it.transforms[it.next]
	it.next++
	return ct
}

// FPCoordTransformHandler is handed to a geometry processor during code
// emission. For every transform it returns, the geometry processor emits
// a varying and reports the fragment-side name back.
type FPCoordTransformHandler struct {
	transforms []*CoordTransform
	fsNames    []string
	current    int
}

// NextCoordTransform returns the next transform, or nil when done.
func (h *FPCoordTransformHandler) NextCoordTransform() *CoordTransform {
	if h.current >= len(h.transforms) {
		return nil
	}
	return h.transforms[h.current]
}

// SpecifyCoordsForCurrCoordTransform records the fragment shader
// expression holding the transformed coordinates and advances.
func (h *FPCoordTransformHandler) SpecifyCoordsForCurrCoordTransform(fsVar string) {
	h.fsNames = append(h.fsNames, fsVar)
	h.current++
}
