package filter

import (
	"sync"

	"github.com/gogpu/gg"
)

// Blur applies a separable Gaussian blur with standard deviation sigma to
// pm in place. Pixels outside the pixmap count as transparent, so content
// fades out towards the edges instead of smearing the border pixels.
func Blur(pm *gg.Pixmap, sigma float64) {
	if pm == nil || sigma <= 0 {
		return
	}
	width, height := pm.Width(), pm.Height()
	if width == 0 || height == 0 {
		return
	}

	kernel := CachedGaussianKernel(sigma)

	temp := getTempBuffer(width * height * 4)
	defer putTempBuffer(temp)

	blurHorizontal(pm.Data(), temp, width, height, kernel)
	blurVertical(temp, pm.Data(), width, height, kernel)
	pm.NotifyPixelsChanged()
}

// blurHorizontal convolves each row of the premultiplied src bytes into temp.
func blurHorizontal(src []uint8, temp []float32, width, height int, kernel []float32) {
	half := len(kernel) / 2

	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			var r, g, b, a float32

			for k, weight := range kernel {
				kx := x + k - half
				if kx < 0 || kx >= width {
					continue
				}
				i := (row + kx) * 4
				r += float32(src[i+0]) * weight
				g += float32(src[i+1]) * weight
				b += float32(src[i+2]) * weight
				a += float32(src[i+3]) * weight
			}

			t := (row + x) * 4
			temp[t+0] = r
			temp[t+1] = g
			temp[t+2] = b
			temp[t+3] = a
		}
	}
}

// blurVertical convolves each column of temp back into dst.
func blurVertical(temp []float32, dst []uint8, width, height int, kernel []float32) {
	half := len(kernel) / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, a float32

			for k, weight := range kernel {
				ky := y + k - half
				if ky < 0 || ky >= height {
					continue
				}
				t := (ky*width + x) * 4
				r += temp[t+0] * weight
				g += temp[t+1] * weight
				b += temp[t+2] * weight
				a += temp[t+3] * weight
			}

			i := (y*width + x) * 4
			a8 := clampUint8(a)
			// Premultiplied colour never exceeds alpha.
			dst[i+0] = minUint8(clampUint8(r), a8)
			dst[i+1] = minUint8(clampUint8(g), a8)
			dst[i+2] = minUint8(clampUint8(b), a8)
			dst[i+3] = a8
		}
	}
}

// blurPlane blurs a single-channel float plane in place.
func blurPlane(plane []float32, width, height int, sigma float64) {
	if sigma <= 0 || width == 0 || height == 0 {
		return
	}
	kernel := CachedGaussianKernel(sigma)
	half := len(kernel) / 2

	temp := getTempBuffer(width * height)
	defer putTempBuffer(temp)

	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			var sum float32
			for k, weight := range kernel {
				kx := x + k - half
				if kx < 0 || kx >= width {
					continue
				}
				sum += plane[row+kx] * weight
			}
			temp[row+x] = sum
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float32
			for k, weight := range kernel {
				ky := y + k - half
				if ky < 0 || ky >= height {
					continue
				}
				sum += temp[ky*width+x] * weight
			}
			plane[y*width+x] = sum
		}
	}
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

var tempBufferPool = sync.Pool{
	New: func() any {
		return &floatBuffer{data: make([]float32, 512*512*4)}
	},
}

// getTempBuffer returns a zeroed buffer of at least size elements.
func getTempBuffer(size int) []float32 {
	wrapper := tempBufferPool.Get().(*floatBuffer)
	if len(wrapper.data) < size {
		tempBufferPool.Put(wrapper)
		return make([]float32, size)
	}
	buf := wrapper.data[:size]
	clear(buf)
	return buf
}

// putTempBuffer returns buf to the pool. Buffers above 64MB are dropped.
func putTempBuffer(buf []float32) {
	if cap(buf) <= 16*1024*1024 {
		tempBufferPool.Put(&floatBuffer{data: buf[:cap(buf)]})
	}
}

// clampUint8 clamps a float32 to [0, 255] and rounds to uint8.
func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func minUint8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}
