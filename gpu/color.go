package gpu

// Color is a premultiplied RGBA color with float components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	ColorTransparent = Color{}
	ColorBlack       = Color{A: 1}
	ColorWhite       = Color{R: 1, G: 1, B: 1, A: 1}
)

// RGBA returns the color from unpremultiplied components.
func RGBA(r, g, b, a float32) Color {
	return Color{R: r * a, G: g * a, B: b * a, A: a}
}

// IsOpaque reports whether alpha is 1.
func (c Color) IsOpaque() bool { return c.A >= 1 }
