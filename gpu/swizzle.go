package gpu

import (
	"fmt"
	"strings"
)

// Swizzle remaps the four channels of a color. Each character is one of
// 'r', 'g', 'b', 'a', '0' or '1'.
type Swizzle string

// Common swizzles.
const (
	SwizzleRGBA Swizzle = "rgba"
	SwizzleBGRA Swizzle = "bgra"
	SwizzleAAAA Swizzle = "aaaa"
	SwizzleRRRA Swizzle = "rrra"
	SwizzleRRR1 Swizzle = "rrr1"
	Swizzle000R Swizzle = "000r"
)

// Key packs the swizzle into 32 bits for program fingerprints.
func (s Swizzle) Key() uint32 {
	var key uint32
	for i := 0; i < 4 && i < len(s); i++ {
		key |= uint32(s[i]) << (8 * i)
	}
	return key
}

// IsIdentity reports whether the swizzle leaves colors unchanged.
func (s Swizzle) IsIdentity() bool { return s == "" || s == SwizzleRGBA }

// Apply returns the WGSL expression for expr with the swizzle applied.
// expr must be a vec4<f32> expression.
func (s Swizzle) Apply(expr string) string {
	if s.IsIdentity() {
		return expr
	}
	if !strings.ContainsAny(string(s), "01") {
		return fmt.Sprintf("(%s).%s", expr, string(s))
	}
	parts := make([]string, 4)
	for i := range parts {
		switch c := s[i]; c {
		case '0':
			parts[i] = "0.0"
		case '1':
			parts[i] = "1.0"
		default:
			parts[i] = fmt.Sprintf("(%s).%c", expr, c)
		}
	}
	return "vec4<f32>(" + strings.Join(parts, ", ") + ")"
}
