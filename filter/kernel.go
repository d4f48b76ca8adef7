package filter

import "github.com/chewxy/math32"

// KernelRadius returns the number of taps on each side of the center that
// the blur shader samples for sigma. Weights beyond 2σ are below 14% of
// the center weight and are dropped.
func KernelRadius(sigma float32) int {
	if sigma <= 0 {
		return 0
	}
	return int(math32.Ceil(2 * sigma))
}

// GaussianKernel returns the normalized 1D weights the blur shader applies
// for sigma, of length 2*KernelRadius(sigma)+1. For sigma <= 0 it returns
// the identity kernel [1].
func GaussianKernel(sigma float32) []float32 {
	radius := KernelRadius(sigma)
	if radius == 0 {
		return []float32{1}
	}
	kernel := make([]float32, 2*radius+1)
	twoSigmaSq := 2 * sigma * sigma
	var sum float32
	for i := range kernel {
		x := float32(i - radius)
		kernel[i] = math32.Exp(-(x * x) / twoSigmaSq)
		sum += kernel[i]
	}
	inv := 1 / sum
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// scaleForSigma returns the resolution scale at which a blur of maxSigma
// runs: 1 up to maxBlurSigma, then maxBlurSigma/maxSigma.
func scaleForSigma(maxSigma float32) float32 {
	if maxSigma <= maxBlurSigma {
		return 1
	}
	return maxBlurSigma / maxSigma
}
