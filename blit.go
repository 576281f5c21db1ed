package compose

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gg"
)

// rgbaView wraps the premultiplied pixels of pm without copying.
func rgbaView(pm *gg.Pixmap) *image.RGBA {
	return &image.RGBA{
		Pix:    pm.Data(),
		Stride: pm.Width() * 4,
		Rect:   image.Rect(0, 0, pm.Width(), pm.Height()),
	}
}

// blit composites src over dst with its top-left corner at at, scaled by
// opacity. Both pixmaps hold premultiplied pixels, which is what
// image/draw expects from *image.RGBA.
func blit(dst, src *gg.Pixmap, at image.Point, opacity float64) {
	if dst == nil || src == nil || opacity <= 0 {
		return
	}
	r := image.Rectangle{Min: at, Max: at.Add(image.Pt(src.Width(), src.Height()))}
	dv := rgbaView(dst)
	if r.Intersect(dv.Rect).Empty() {
		return
	}
	sv := rgbaView(src)
	if opacity >= 1 {
		draw.Draw(dv, r, sv, image.Point{}, draw.Over)
	} else {
		mask := image.NewUniform(color.Alpha{A: uint8(clamp01(opacity)*255 + 0.5)})
		draw.DrawMask(dv, r, sv, image.Point{}, mask, image.Point{}, draw.Over)
	}
	dst.NotifyPixelsChanged()
}

// imageBuf converts premultiplied scratch pixels into a straight-alpha
// ImageBuf suitable for DrawImageEx under an arbitrary transform.
func imageBuf(pm *gg.Pixmap) *gg.ImageBuf {
	n := image.NewNRGBA(image.Rect(0, 0, pm.Width(), pm.Height()))
	draw.Draw(n, n.Rect, rgbaView(pm), image.Point{}, draw.Src)
	return gg.ImageBufFromImage(n)
}
