package gpu

var (
	constColorClassID = RegisterProcessorClass("ConstColorProcessor")
	composeClassID    = RegisterProcessorClass("ComposeFragmentProcessor")
)

// InputMode decides how ConstColorProcessor combines with its input.
type InputMode int

const (
	// InputModeIgnore outputs the constant color.
	InputModeIgnore InputMode = iota
	// InputModeModulateRGBA multiplies the color by the input color.
	InputModeModulateRGBA
	// InputModeModulateA multiplies the color by the input alpha.
	InputModeModulateA
)

// ConstColorProcessor outputs a uniform color.
type ConstColorProcessor struct {
	FragmentProcessorBase
	color Color
	mode  InputMode
}

// NewConstColorProcessor returns a processor producing color.
func NewConstColorProcessor(color Color, mode InputMode) *ConstColorProcessor {
	return &ConstColorProcessor{color: color, mode: mode}
}

func (fp *ConstColorProcessor) Name() string     { return "ConstColorProcessor" }
func (fp *ConstColorProcessor) ClassID() ClassID { return constColorClassID }

func (fp *ConstColorProcessor) ComputeProcessorKey(_ *Context, key *BytesKey) {
	key.WriteInt(int(fp.mode))
}

func (fp *ConstColorProcessor) EmitCode(args *FPEmitArgs) {
	color := args.UniformHandler.AddUniform(ShaderFlagFragment, SLTypeFloat4, "Color")
	switch fp.mode {
	case InputModeModulateRGBA:
		args.FragBuilder.CodeAppendf("%s = %s * %s;", args.OutputColor, args.InputColor, color)
	case InputModeModulateA:
		args.FragBuilder.CodeAppendf("%s = %s.a * %s;", args.OutputColor, args.InputColor, color)
	default:
		args.FragBuilder.CodeAppendf("%s = %s;", args.OutputColor, color)
	}
}

func (fp *ConstColorProcessor) SetData(buf *UniformBuffer) {
	buf.SetColor("Color", fp.color)
}

// ComposeFragmentProcessor runs its children in series, each taking the
// previous child's output as input.
type ComposeFragmentProcessor struct {
	FragmentProcessorBase
}

// NewComposeFragmentProcessor chains fps. Nil entries are skipped; with
// a single processor left it is returned as is, and with none the result
// is nil.
func NewComposeFragmentProcessor(fps ...FragmentProcessor) FragmentProcessor {
	var kept []FragmentProcessor
	for _, fp := range fps {
		if fp != nil {
			kept = append(kept, fp)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	c := &ComposeFragmentProcessor{}
	for _, fp := range kept {
		c.RegisterChild(fp)
	}
	return c
}

func (fp *ComposeFragmentProcessor) Name() string                            { return "ComposeFragmentProcessor" }
func (fp *ComposeFragmentProcessor) ClassID() ClassID                        { return composeClassID }
func (fp *ComposeFragmentProcessor) ComputeProcessorKey(*Context, *BytesKey) {}

func (fp *ComposeFragmentProcessor) EmitCode(args *FPEmitArgs) {
	color := args.InputColor
	for i := range fp.NumChildren() {
		color = args.EmitChild(i, color, nil)
	}
	args.FragBuilder.CodeAppendf("%s = %s;", args.OutputColor, color)
}
