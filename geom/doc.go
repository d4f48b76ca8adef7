// Package geom provides the value types the draw pipeline uses for
// coordinates: points, rectangles and 2D affine matrices.
//
// All types are plain values. A Matrix caches its classification (see
// [Matrix.Type]) and recomputes it lazily after any mutating call.
package geom
