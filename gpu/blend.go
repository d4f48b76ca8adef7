package gpu

// BlendMode is a Porter-Duff or separable blend mode.
type BlendMode int

const (
	BlendModeClear BlendMode = iota
	BlendModeSrc
	BlendModeDst
	BlendModeSrcOver
	BlendModeDstOver
	BlendModeSrcIn
	BlendModeDstIn
	BlendModeSrcOut
	BlendModeDstOut
	BlendModeSrcATop
	BlendModeDstATop
	BlendModeXor
	BlendModePlus
	BlendModeModulate
	BlendModeScreen
)

// BlendCoeff is a fixed-function blend factor.
type BlendCoeff int

const (
	BlendCoeffZero BlendCoeff = iota
	BlendCoeffOne
	BlendCoeffSrcColor
	BlendCoeffInvSrcColor
	BlendCoeffDstColor
	BlendCoeffInvDstColor
	BlendCoeffSrcAlpha
	BlendCoeffInvSrcAlpha
	BlendCoeffDstAlpha
	BlendCoeffInvDstAlpha
)

// BlendFormula is result = src*Src + dst*Dst, applied to all channels.
type BlendFormula struct {
	Src BlendCoeff
	Dst BlendCoeff
}

// Disabled reports whether the formula is a plain overwrite.
func (f BlendFormula) Disabled() bool {
	return f.Src == BlendCoeffOne && f.Dst == BlendCoeffZero
}

var blendFormulas = [...]BlendFormula{
	BlendModeClear:    {BlendCoeffZero, BlendCoeffZero},
	BlendModeSrc:      {BlendCoeffOne, BlendCoeffZero},
	BlendModeDst:      {BlendCoeffZero, BlendCoeffOne},
	BlendModeSrcOver:  {BlendCoeffOne, BlendCoeffInvSrcAlpha},
	BlendModeDstOver:  {BlendCoeffInvDstAlpha, BlendCoeffOne},
	BlendModeSrcIn:    {BlendCoeffDstAlpha, BlendCoeffZero},
	BlendModeDstIn:    {BlendCoeffZero, BlendCoeffSrcAlpha},
	BlendModeSrcOut:   {BlendCoeffInvDstAlpha, BlendCoeffZero},
	BlendModeDstOut:   {BlendCoeffZero, BlendCoeffInvSrcAlpha},
	BlendModeSrcATop:  {BlendCoeffDstAlpha, BlendCoeffInvSrcAlpha},
	BlendModeDstATop:  {BlendCoeffInvDstAlpha, BlendCoeffSrcAlpha},
	BlendModeXor:      {BlendCoeffInvDstAlpha, BlendCoeffInvSrcAlpha},
	BlendModePlus:     {BlendCoeffOne, BlendCoeffOne},
	BlendModeModulate: {BlendCoeffZero, BlendCoeffSrcColor},
	BlendModeScreen:   {BlendCoeffOne, BlendCoeffInvSrcColor},
}

// Formula returns the coefficients implementing the mode. Unknown modes
// fall back to SrcOver.
func (m BlendMode) Formula() BlendFormula {
	if m < 0 || int(m) >= len(blendFormulas) {
		return blendFormulas[BlendModeSrcOver]
	}
	return blendFormulas[m]
}
