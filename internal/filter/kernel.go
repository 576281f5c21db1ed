package filter

import (
	"math"

	"github.com/gogpu/compose/internal/lru"
)

// GaussianKernel generates a normalized 1D Gaussian kernel with the given
// standard deviation in pixels.
//
// The kernel size is 2 * ceil(sigma * 3) + 1, which covers 99.7% of the
// distribution. For sigma <= 0 it returns the identity kernel [1.0].
func GaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1.0}
	}

	halfSize := int(math.Ceil(sigma * 3))
	size := halfSize*2 + 1

	kernel := make([]float32, size)
	twoSigmaSq := 2 * sigma * sigma
	sum := float64(0)

	for i := 0; i < size; i++ {
		x := float64(i - halfSize)
		val := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(val)
		sum += val
	}

	if sum > 0 {
		invSum := float32(1.0 / sum)
		for i := range kernel {
			kernel[i] *= invSum
		}
	}

	return kernel
}

// kernels caches kernels keyed by sigma quantized to 0.01px.
var kernels = lru.New[int, []float32](64)

// CachedGaussianKernel returns a shared kernel for sigma. The returned
// slice must not be modified.
func CachedGaussianKernel(sigma float64) []float32 {
	key := int(math.Round(sigma * 100))
	return kernels.GetOrCreate(key, func() []float32 {
		return GaussianKernel(float64(key) / 100)
	})
}

// KernelExtent returns how far, in pixels, a blur with the given sigma
// spreads content past its source edge.
func KernelExtent(sigma float64) int {
	if sigma <= 0 {
		return 0
	}
	return int(math.Ceil(sigma * 3))
}

// ShadowSigma converts a canvas-style shadow blur amount into the
// standard deviation of the equivalent Gaussian.
func ShadowSigma(blur float64) float64 {
	if blur <= 0 {
		return 0
	}
	return blur / 2
}
