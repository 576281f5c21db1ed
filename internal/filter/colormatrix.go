package filter

import "github.com/gogpu/gg"

// Matrix is a 4x5 colour transformation in row-major order:
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// Channels are straight-alpha values in [0, 255]; the fifth column is an
// offset in the same range.
type Matrix [20]float32

// IdentityMatrix passes colours through unchanged.
func IdentityMatrix() Matrix {
	return Matrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// BrightnessMatrix multiplies RGB by factor (1 = unchanged).
func BrightnessMatrix(factor float32) Matrix {
	return Matrix{
		factor, 0, 0, 0, 0,
		0, factor, 0, 0, 0,
		0, 0, factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// ContrastMatrix scales RGB around mid grey: (c - 0.5) * factor + 0.5.
func ContrastMatrix(factor float32) Matrix {
	offset := 127.5 * (1 - factor)
	return Matrix{
		factor, 0, 0, 0, offset,
		0, factor, 0, 0, offset,
		0, 0, factor, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// SaturateMatrix blends between luminance (0) and the original colour (1).
// Values above 1 oversaturate.
func SaturateMatrix(factor float32) Matrix {
	// Rec. 709 luminance weights.
	const (
		lumR = 0.2126
		lumG = 0.7152
		lumB = 0.0722
	)
	inv := 1 - factor

	return Matrix{
		lumR*inv + factor, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + factor, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// OpacityMatrix multiplies alpha by factor.
func OpacityMatrix(factor float32) Matrix {
	return Matrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, factor, 0,
	}
}

// Then returns the matrix that applies m first and next second.
func (m Matrix) Then(next Matrix) Matrix {
	var r Matrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += next[row*5+k] * m[k*5+col]
			}
			r[row*5+col] = sum
		}
		r[row*5+4] = next[row*5+0]*m[4] + next[row*5+1]*m[9] +
			next[row*5+2]*m[14] + next[row*5+3]*m[19] + next[row*5+4]
	}
	return r
}

// Apply transforms every pixel of pm in place. The pixmap holds
// premultiplied colour, so each pixel is unpremultiplied, transformed,
// clamped and premultiplied again.
func (m Matrix) Apply(pm *gg.Pixmap) {
	if pm == nil {
		return
	}
	data := pm.Data()

	for i := 0; i+3 < len(data); i += 4 {
		a := float32(data[i+3])
		var r, g, b float32
		if a > 0 {
			r = float32(data[i+0]) * 255 / a
			g = float32(data[i+1]) * 255 / a
			b = float32(data[i+2]) * 255 / a
		}

		nr := clamp255(m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4])
		ng := clamp255(m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9])
		nb := clamp255(m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14])
		na := clamp255(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])

		f := na / 255
		data[i+0] = clampUint8(nr * f)
		data[i+1] = clampUint8(ng * f)
		data[i+2] = clampUint8(nb * f)
		data[i+3] = clampUint8(na)
	}
	pm.NotifyPixelsChanged()
}

func clamp255(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
