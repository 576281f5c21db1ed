package filter

import "github.com/gogpu/gg"

// Glow composites a blurred, colourised copy of pm's alpha shape underneath
// its content, in place. This is a zero-offset canvas shadow: blur is the
// shadow blur amount (twice the Gaussian sigma).
//
// Content that should glow past its own bounds needs transparent padding of
// at least GlowExtent(blur) pixels.
func Glow(pm *gg.Pixmap, color gg.RGBA, blur float64) {
	if pm == nil || blur <= 0 || color.A <= 0 {
		return
	}
	width, height := pm.Width(), pm.Height()
	if width == 0 || height == 0 {
		return
	}
	data := pm.Data()

	alpha := getTempBuffer(width * height)
	defer putTempBuffer(alpha)
	for i := range alpha {
		alpha[i] = float32(data[i*4+3]) / 255
	}
	blurPlane(alpha, width, height, ShadowSigma(blur))

	// Shadow colour in premultiplied 0..255 space at full coverage.
	sr := float32(clamp01(color.R) * 255)
	sg := float32(clamp01(color.G) * 255)
	sb := float32(clamp01(color.B) * 255)
	baseA := float32(clamp01(color.A))

	for p, cov := range alpha {
		sa := cov * baseA
		if sa <= 0 {
			continue
		}
		i := p * 4
		inv := 1 - float32(data[i+3])/255

		// Source over shadow: result = src + shadow * (1 - srcA).
		data[i+0] = clampUint8(float32(data[i+0]) + sr*sa*inv)
		data[i+1] = clampUint8(float32(data[i+1]) + sg*sa*inv)
		data[i+2] = clampUint8(float32(data[i+2]) + sb*sa*inv)
		data[i+3] = clampUint8(float32(data[i+3]) + 255*sa*inv)
	}
	pm.NotifyPixelsChanged()
}

// GlowExtent returns the padding, in pixels, a glow of the given blur
// amount needs around its source.
func GlowExtent(blur float64) int {
	return KernelExtent(ShadowSigma(blur))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
