package filter

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/gogpu/gg"
)

// Silhouette returns a new pixmap of the same size as src holding src's
// alpha shape grown by radius pixels and filled with color.
//
// This is a "source-in" fill: the result's coverage is the dilated alpha
// of src multiplied by color.A.
func Silhouette(src *gg.Pixmap, radius float64, color gg.RGBA) *gg.Pixmap {
	if src == nil || src.Width() == 0 || src.Height() == 0 {
		return nil
	}
	width, height := src.Width(), src.Height()
	data := src.Data()

	// Dilate ranks pixels by colour, so carry alpha as an opaque grey.
	mask := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i+3 < len(data); i += 4 {
		a := data[i+3]
		mask.Pix[i+0] = a
		mask.Pix[i+1] = a
		mask.Pix[i+2] = a
		mask.Pix[i+3] = 0xff
	}
	if radius > 0 {
		mask = effect.Dilate(mask, radius)
	}

	out := gg.NewPixmap(width, height)
	dst := out.Data()
	cr := float32(clamp01(color.R))
	cg := float32(clamp01(color.G))
	cb := float32(clamp01(color.B))
	ca := float32(clamp01(color.A))

	for i := 0; i+3 < len(dst); i += 4 {
		cov := float32(mask.Pix[i]) / 255 * ca
		if cov <= 0 {
			continue
		}
		dst[i+0] = clampUint8(cr * cov * 255)
		dst[i+1] = clampUint8(cg * cov * 255)
		dst[i+2] = clampUint8(cb * cov * 255)
		dst[i+3] = clampUint8(cov * 255)
	}
	return out
}
