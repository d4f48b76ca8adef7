package gpu

import "github.com/gogpu/drawpipe/geom"

// quadVertexCount is the number of vertices of a non-antialiased quad.
const quadVertexCount = 6

// aaQuadVertexCount is the number of vertices of an antialiased quad: the
// inner quad plus four edge strips.
const aaQuadVertexCount = 30

// quadVertices returns rect as two triangles of (x, y) positions.
func quadVertices(rect geom.Rect) []float32 {
	l, t := float32(rect.Left), float32(rect.Top)
	r, b := float32(rect.Right), float32(rect.Bottom)
	return []float32{
		l, t, r, t, l, b,
		l, b, r, t, r, b,
	}
}

// aaQuadVertices returns the device-space triangles of rect mapped by
// view, with a half pixel coverage ramp along each edge. Each vertex is
// (devX, devY, localX, localY, coverage). view must keep rectangles
// axis aligned.
func aaQuadVertices(rect geom.Rect, view geom.Matrix) []float32 {
	dev := view.MapRect(rect)
	inv, ok := view.Invert()
	if !ok {
		slogger().Debug("gpu: quad skipped, view matrix not invertible",
			"rect", rect, "scaleX", view.ScaleX(), "scaleY", view.ScaleY())
		return nil
	}
	outer := dev.Outset(0.5, 0.5)
	inner := dev.Outset(-0.5, -0.5)
	innerCoverage := float32(min(dev.Width(), 1) * min(dev.Height(), 1))
	if inner.Width() < 0 {
		cx := (dev.Left + dev.Right) / 2
		inner.Left, inner.Right = cx, cx
	}
	if inner.Height() < 0 {
		cy := (dev.Top + dev.Bottom) / 2
		inner.Top, inner.Bottom = cy, cy
	}

	out := make([]float32, 0, aaQuadVertexCount*5)
	vert := func(x, y float64, coverage float32) {
		local := inv.MapPoint(geom.Pt(x, y))
		out = append(out, float32(x), float32(y), float32(local.X), float32(local.Y), coverage)
	}
	type corner struct {
		x, y float64
		c    float32
	}
	quad := func(a, b, c, d corner) {
		for _, v := range [...]corner{a, b, d, d, b, c} {
			vert(v.x, v.y, v.c)
		}
	}
	oTL, oTR := corner{outer.Left, outer.Top, 0}, corner{outer.Right, outer.Top, 0}
	oBR, oBL := corner{outer.Right, outer.Bottom, 0}, corner{outer.Left, outer.Bottom, 0}
	iTL, iTR := corner{inner.Left, inner.Top, innerCoverage}, corner{inner.Right, inner.Top, innerCoverage}
	iBR, iBL := corner{inner.Right, inner.Bottom, innerCoverage}, corner{inner.Left, inner.Bottom, innerCoverage}

	quad(iTL, iTR, iBR, iBL)
	quad(oTL, oTR, iTR, iTL)
	quad(iTR, oTR, oBR, iBR)
	quad(iBL, iBR, oBR, oBL)
	quad(oTL, iTL, iBL, oBL)
	return out
}
