package geom

import "math"

// TypeMask classifies a Matrix by the kinds of transform it contains.
type TypeMask uint8

// Matrix classification bits. TypeIdentity is the absence of all bits.
const (
	TypeIdentity  TypeMask = 0
	TypeTranslate TypeMask = 1 << 0
	TypeScale     TypeMask = 1 << 1
	TypeAffine    TypeMask = 1 << 2
)

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
//
// The zero value is the all-zero (degenerate) matrix; use [Identity].
// The classification returned by Type is cached. Every mutating method
// clears the cache, so the fields are unexported.
type Matrix struct {
	a, b, c float64
	d, e, f float64

	mask maskCache
}

// maskCache holds a lazily computed TypeMask. valid is false until the
// first Type call after construction or mutation.
type maskCache struct {
	bits  TypeMask
	valid bool
}

// NewMatrix returns the matrix with the given coefficients.
func NewMatrix(a, b, c, d, e, f float64) Matrix {
	return Matrix{a: a, b: b, c: c, d: d, e: e, f: f}
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{a: 1, e: 1, mask: maskCache{bits: TypeIdentity, valid: true}}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{a: 1, c: x, e: 1, f: y}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{a: x, e: y}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{a: cos, b: -sin, d: sin, e: cos}
}

// Shear creates a shear matrix.
func Shear(x, y float64) Matrix {
	return Matrix{a: 1, b: x, d: y, e: 1}
}

// ScaleX returns the a coefficient.
func (m Matrix) ScaleX() float64 { return m.a }

// SkewX returns the b coefficient.
func (m Matrix) SkewX() float64 { return m.b }

// TransX returns the c coefficient.
func (m Matrix) TransX() float64 { return m.c }

// SkewY returns the d coefficient.
func (m Matrix) SkewY() float64 { return m.d }

// ScaleY returns the e coefficient.
func (m Matrix) ScaleY() float64 { return m.e }

// TransY returns the f coefficient.
func (m Matrix) TransY() float64 { return m.f }

// Type returns the matrix classification, computing it if the cached
// value was invalidated.
func (m *Matrix) Type() TypeMask {
	if !m.mask.valid {
		m.mask = maskCache{bits: m.computeType(), valid: true}
	}
	return m.mask.bits
}

func (m *Matrix) computeType() TypeMask {
	var bits TypeMask
	if m.c != 0 || m.f != 0 {
		bits |= TypeTranslate
	}
	if m.a != 1 || m.e != 1 {
		bits |= TypeScale
	}
	if m.b != 0 || m.d != 0 {
		bits |= TypeAffine
	}
	return bits
}

func (m *Matrix) invalidate() { m.mask.valid = false }

// IsIdentity reports whether m is the identity transform.
func (m Matrix) IsIdentity() bool { return m.Type() == TypeIdentity }

// IsTranslate reports whether m is at most a translation.
func (m Matrix) IsTranslate() bool { return m.Type()&^TypeTranslate == 0 }

// IsScaleTranslate reports whether m has no rotation or skew.
func (m Matrix) IsScaleTranslate() bool { return m.Type()&TypeAffine == 0 }

// Equal reports whether two matrices have identical coefficients.
func (m Matrix) Equal(o Matrix) bool {
	return m.a == o.a && m.b == o.b && m.c == o.c &&
		m.d == o.d && m.e == o.e && m.f == o.f
}

// SetAll replaces every coefficient.
func (m *Matrix) SetAll(a, b, c, d, e, f float64) {
	m.a, m.b, m.c, m.d, m.e, m.f = a, b, c, d, e, f
	m.invalidate()
}

// SetTranslate makes m a pure translation.
func (m *Matrix) SetTranslate(x, y float64) {
	*m = Translate(x, y)
}

// SetScale makes m a pure scale.
func (m *Matrix) SetScale(x, y float64) {
	*m = Scale(x, y)
}

// Multiply returns m * other: other is applied first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		a: m.a*other.a + m.b*other.d,
		b: m.a*other.b + m.b*other.e,
		c: m.a*other.c + m.b*other.f + m.c,
		d: m.d*other.a + m.e*other.d,
		e: m.d*other.b + m.e*other.e,
		f: m.d*other.c + m.e*other.f + m.f,
	}
}

// PreConcat sets m to m * other.
func (m *Matrix) PreConcat(other Matrix) {
	*m = m.Multiply(other)
}

// PostConcat sets m to other * m.
func (m *Matrix) PostConcat(other Matrix) {
	*m = other.Multiply(*m)
}

// PreTranslate sets m to m * Translate(x, y).
func (m *Matrix) PreTranslate(x, y float64) {
	m.PreConcat(Translate(x, y))
}

// PostTranslate sets m to Translate(x, y) * m.
func (m *Matrix) PostTranslate(x, y float64) {
	m.c += x
	m.f += y
	m.invalidate()
}

// PreScale sets m to m * Scale(x, y).
func (m *Matrix) PreScale(x, y float64) {
	m.PreConcat(Scale(x, y))
}

// PostScale sets m to Scale(x, y) * m.
func (m *Matrix) PostScale(x, y float64) {
	m.PostConcat(Scale(x, y))
}

// Invert returns the inverse of m. The second result is false when m is
// singular.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.a*m.e - m.b*m.d
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Matrix{}, false
	}
	inv := 1 / det
	return Matrix{
		a: m.e * inv,
		b: -m.b * inv,
		c: (m.b*m.f - m.e*m.c) * inv,
		d: -m.d * inv,
		e: m.a * inv,
		f: (m.d*m.c - m.a*m.f) * inv,
	}, true
}

// MapPoint applies the transformation to a point.
func (m Matrix) MapPoint(p Point) Point {
	return Point{
		X: m.a*p.X + m.b*p.Y + m.c,
		Y: m.d*p.X + m.e*p.Y + m.f,
	}
}

// MapRect returns the bounding box of r after transformation.
func (m Matrix) MapRect(r Rect) Rect {
	if m.IsScaleTranslate() {
		l, t := m.a*r.Left+m.c, m.e*r.Top+m.f
		rr, b := m.a*r.Right+m.c, m.e*r.Bottom+m.f
		return Rect{
			Left: math.Min(l, rr), Top: math.Min(t, b),
			Right: math.Max(l, rr), Bottom: math.Max(t, b),
		}
	}
	pts := [4]Point{
		m.MapPoint(Pt(r.Left, r.Top)),
		m.MapPoint(Pt(r.Right, r.Top)),
		m.MapPoint(Pt(r.Right, r.Bottom)),
		m.MapPoint(Pt(r.Left, r.Bottom)),
	}
	out := Rect{Left: pts[0].X, Top: pts[0].Y, Right: pts[0].X, Bottom: pts[0].Y}
	for _, p := range pts[1:] {
		out.Left = math.Min(out.Left, p.X)
		out.Top = math.Min(out.Top, p.Y)
		out.Right = math.Max(out.Right, p.X)
		out.Bottom = math.Max(out.Bottom, p.Y)
	}
	return out
}

// Float32Mat3 returns the matrix as a column-major 3x3 array, the layout
// WGSL expects for mat3x3<f32> columns.
func (m Matrix) Float32Mat3() [9]float32 {
	return [9]float32{
		float32(m.a), float32(m.d), 0,
		float32(m.b), float32(m.e), 0,
		float32(m.c), float32(m.f), 1,
	}
}
