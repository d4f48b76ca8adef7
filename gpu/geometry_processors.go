package gpu

import "github.com/gogpu/drawpipe/geom"

var (
	defaultGPClassID     = RegisterProcessorClass("DefaultGeometryProcessor")
	quadPerEdgeAAClassID = RegisterProcessorClass("QuadPerEdgeAAGeometryProcessor")
)

// DefaultGeometryProcessor draws local-space triangles mapped to device
// space by a view matrix, with a uniform color and full coverage.
type DefaultGeometryProcessor struct {
	color       Color
	viewMatrix  geom.Matrix
	localMatrix geom.Matrix
}

// NewDefaultGeometryProcessor returns a processor for vertices holding a
// local-space position. localMatrix maps positions into the space the
// fragment processors' coordinate transforms expect.
func NewDefaultGeometryProcessor(color Color, viewMatrix, localMatrix geom.Matrix) *DefaultGeometryProcessor {
	return &DefaultGeometryProcessor{color: color, viewMatrix: viewMatrix, localMatrix: localMatrix}
}

func (gp *DefaultGeometryProcessor) Name() string     { return "DefaultGeometryProcessor" }
func (gp *DefaultGeometryProcessor) ClassID() ClassID { return defaultGPClassID }

// VertexAttributes returns the single position attribute.
func (gp *DefaultGeometryProcessor) VertexAttributes() []Attribute {
	return []Attribute{{Name: "position", Type: SLTypeFloat2}}
}

// ComputeProcessorKey writes nothing: color and matrices are uniforms.
func (gp *DefaultGeometryProcessor) ComputeProcessorKey(*Context, *BytesKey) {}

func (gp *DefaultGeometryProcessor) EmitCode(args *GPEmitArgs) {
	matrix := args.UniformHandler.AddUniform(ShaderFlagVertex, SLTypeFloat3x3, "Matrix")
	args.VertBuilder.CodeAppendf("let devPosition = (%s * vec3<f32>(in.position, 1.0)).xy;", matrix)
	args.EmitTransforms("in.position")
	args.VertBuilder.EmitNormalizedPosition("devPosition")

	color := args.UniformHandler.AddUniform(ShaderFlagFragment, SLTypeFloat4, "Color")
	args.FragBuilder.CodeAppendf("%s = %s;", args.OutputColor, color)
	args.FragBuilder.CodeAppendf("%s = vec4<f32>(1.0);", args.OutputCoverage)
}

func (gp *DefaultGeometryProcessor) SetData(buf *UniformBuffer, transforms *CoordTransformIter) {
	SetTransformDataHelper(buf, gp.localMatrix, transforms)
	buf.SetMatrix("Matrix", gp.viewMatrix)
	buf.SetColor("Color", gp.color)
}

// QuadPerEdgeAAGeometryProcessor draws device-space quads. With AA each
// vertex carries a coverage value ramping to zero half a pixel outside
// the quad's edges.
type QuadPerEdgeAAGeometryProcessor struct {
	aa          bool
	color       Color
	localMatrix geom.Matrix
}

// NewQuadPerEdgeAAGeometryProcessor returns a processor for the vertices
// produced by QuadVertices with the same aa flag.
func NewQuadPerEdgeAAGeometryProcessor(aa bool, color Color, localMatrix geom.Matrix) *QuadPerEdgeAAGeometryProcessor {
	return &QuadPerEdgeAAGeometryProcessor{aa: aa, color: color, localMatrix: localMatrix}
}

func (gp *QuadPerEdgeAAGeometryProcessor) Name() string     { return "QuadPerEdgeAAGeometryProcessor" }
func (gp *QuadPerEdgeAAGeometryProcessor) ClassID() ClassID { return quadPerEdgeAAClassID }

func (gp *QuadPerEdgeAAGeometryProcessor) VertexAttributes() []Attribute {
	attrs := []Attribute{
		{Name: "position", Type: SLTypeFloat2},
		{Name: "localCoord", Type: SLTypeFloat2},
	}
	if gp.aa {
		attrs = append(attrs, Attribute{Name: "coverage", Type: SLTypeFloat})
	}
	return attrs
}

func (gp *QuadPerEdgeAAGeometryProcessor) ComputeProcessorKey(_ *Context, key *BytesKey) {
	key.WriteBool(gp.aa)
}

func (gp *QuadPerEdgeAAGeometryProcessor) EmitCode(args *GPEmitArgs) {
	args.EmitTransforms("in.localCoord")
	args.VertBuilder.EmitNormalizedPosition("in.position")

	color := args.UniformHandler.AddUniform(ShaderFlagFragment, SLTypeFloat4, "Color")
	args.FragBuilder.CodeAppendf("%s = %s;", args.OutputColor, color)
	if gp.aa {
		v := args.VaryingHandler.AddVarying("Coverage", SLTypeFloat)
		args.VertBuilder.CodeAppendf("%s = in.coverage;", v.VsOut())
		args.FragBuilder.CodeAppendf("%s = vec4<f32>(%s);", args.OutputCoverage, v.FsIn())
	} else {
		args.FragBuilder.CodeAppendf("%s = vec4<f32>(1.0);", args.OutputCoverage)
	}
}

func (gp *QuadPerEdgeAAGeometryProcessor) SetData(buf *UniformBuffer, transforms *CoordTransformIter) {
	SetTransformDataHelper(buf, gp.localMatrix, transforms)
	buf.SetColor("Color", gp.color)
}

// QuadVertices returns the vertices of rect mapped by view for a
// QuadPerEdgeAAGeometryProcessor and their count. Each vertex holds the
// device position and the local coordinate, plus coverage with aa.
func QuadVertices(rect geom.Rect, view geom.Matrix, aa bool) ([]float32, int) {
	if aa {
		v := aaQuadVertices(rect, view)
		return v, len(v) / 5
	}
	dev := quadVertices(view.MapRect(rect))
	local := quadVertices(rect)
	out := make([]float32, 0, quadVertexCount*4)
	for i := 0; i < len(dev); i += 2 {
		out = append(out, dev[i], dev[i+1], local[i], local[i+1])
	}
	return out, quadVertexCount
}
