package gpu

// SLType is a shading language value type.
type SLType int

const (
	SLTypeVoid SLType = iota
	SLTypeFloat
	SLTypeFloat2
	SLTypeFloat3
	SLTypeFloat4
	SLTypeFloat3x3
	SLTypeFloat4x4
	SLTypeInt
)

// WGSL returns the WGSL spelling of the type.
func (t SLType) WGSL() string {
	switch t {
	case SLTypeFloat:
		return "f32"
	case SLTypeFloat2:
		return "vec2<f32>"
	case SLTypeFloat3:
		return "vec3<f32>"
	case SLTypeFloat4:
		return "vec4<f32>"
	case SLTypeFloat3x3:
		return "mat3x3<f32>"
	case SLTypeFloat4x4:
		return "mat4x4<f32>"
	case SLTypeInt:
		return "i32"
	default:
		return "void"
	}
}

// Size returns the byte size of the type in the uniform address space.
func (t SLType) Size() int {
	switch t {
	case SLTypeFloat, SLTypeInt:
		return 4
	case SLTypeFloat2:
		return 8
	case SLTypeFloat3:
		return 12
	case SLTypeFloat4:
		return 16
	case SLTypeFloat3x3:
		return 48
	case SLTypeFloat4x4:
		return 64
	default:
		return 0
	}
}

// Align returns the required byte alignment of the type in the uniform
// address space.
func (t SLType) Align() int {
	switch t {
	case SLTypeFloat, SLTypeInt:
		return 4
	case SLTypeFloat2:
		return 8
	case SLTypeVoid:
		return 1
	default:
		return 16
	}
}

// FloatCount returns the number of float components a vertex attribute of
// this type carries, or 0 if it cannot be a vertex attribute.
func (t SLType) FloatCount() int {
	switch t {
	case SLTypeFloat:
		return 1
	case SLTypeFloat2:
		return 2
	case SLTypeFloat3:
		return 3
	case SLTypeFloat4:
		return 4
	default:
		return 0
	}
}

// ShaderFlags is a bitmask of shader stages.
type ShaderFlags uint8

const (
	ShaderFlagVertex ShaderFlags = 1 << iota
	ShaderFlagFragment
)

// ShaderVar is a named, typed shader value.
type ShaderVar struct {
	Name string
	Type SLType
}

// Attribute is a per-vertex input of a geometry processor.
type Attribute struct {
	Name string
	Type SLType
}

// IsInitialized reports whether the attribute has a type.
func (a Attribute) IsInitialized() bool { return a.Type != SLTypeVoid }

// ComputeKey returns the attribute's fingerprint contribution. An
// uninitialized attribute contributes all ones.
func (a Attribute) ComputeKey() uint32 {
	if !a.IsInitialized() {
		return ^uint32(0)
	}
	return uint32(a.Type) //nolint:gosec // small enum
}

// VsIn returns the expression reading the attribute in vertex code.
func (a Attribute) VsIn() string { return "in." + a.Name }
