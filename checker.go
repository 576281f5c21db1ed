package compose

import (
	"image"

	"github.com/gogpu/gg"
)

// CheckerSize is the side of one checkerboard square in pixels.
const CheckerSize = 16

// checker colours: a white tile with light grey squares at (0,0) and
// (16,16) of every 32px tile.
const (
	checkerBase   = 0xff
	checkerSquare = 0xe5
)

// Checkerboard returns a width x height image of the transparency
// checkerboard.
func Checkerboard(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	pm := gg.NewPixmap(img.Rect.Dx(), img.Rect.Dy())
	fillChecker(pm)
	copy(img.Pix, pm.Data())
	return img
}

// fillChecker paints the checkerboard over the whole pixmap.
func fillChecker(pm *gg.Pixmap) {
	w, h := pm.Width(), pm.Height()
	pm.FillRect(image.Rect(0, 0, w, h), checkerBase, checkerBase, checkerBase, 0xff)
	for y := 0; y < h; y += CheckerSize {
		for x := (y / CheckerSize % 2) * CheckerSize; x < w; x += 2 * CheckerSize {
			pm.FillRect(image.Rect(x, y, x+CheckerSize, y+CheckerSize), checkerSquare, checkerSquare, checkerSquare, 0xff)
		}
	}
}
