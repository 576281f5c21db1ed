package compose

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/gogpu/compose/imagecache"
	"github.com/gogpu/compose/internal/filter"
	"github.com/gogpu/compose/shapes"
	"github.com/gogpu/compose/state"
)

// base draws the checkerboard, the solid colour or the background image.
// A colour takes precedence over an image.
func (r *renderer) base() {
	doc := r.doc
	switch {
	case doc.HasTransparentBackground:
		fillChecker(r.pm)
	case doc.BackgroundColor != "":
		r.dc.ClearWithColor(paint(doc.BackgroundColor, doc.BackgroundOpacity))
		r.pm.NotifyPixelsChanged()
	case r.inputs.background != nil:
		chain := enhancement(doc.BackgroundEnhancements, doc.ApplyToBackground)
		_ = r.layer("base", "", func() error {
			return r.drawImage(r.inputs.background, 0, 0, float64(r.w), float64(r.h), doc.BackgroundOpacity, chain)
		})
	}
}

// drawImage draws img into the rectangle (x, y, w, h) of the surface at
// opacity, running chain over the drawn pixels first when it is set.
func (r *renderer) drawImage(img *imagecache.Image, x, y, w, h, opacity float64, chain filter.Chain) error {
	if opacity <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	if chain == nil {
		r.dc.DrawImageEx(img.Buf(), gg.DrawImageOptions{X: x, Y: y, DstWidth: w, DstHeight: h, Opacity: clamp01(opacity)})
		return nil
	}

	// Filters run on an isolated copy of the area the image can reach.
	pad := chainExtent(chain)
	area := image.Rect(int(math.Floor(x)), int(math.Floor(y)), int(math.Ceil(x+w)), int(math.Ceil(y+h))).
		Inset(-pad).
		Intersect(image.Rect(0, 0, r.w, r.h).Inset(-pad))
	if area.Empty() {
		return nil
	}
	return r.withScratch(area.Dx(), area.Dy(), func(s *gg.Context) error {
		s.DrawImageEx(img.Buf(), gg.DrawImageOptions{
			X: x - float64(area.Min.X), Y: y - float64(area.Min.Y),
			DstWidth: w, DstHeight: h,
		})
		pm := s.ResizeTarget()
		chain.Apply(pm)
		blit(r.pm, pm, area.Min, opacity)
		return nil
	})
}

// chainExtent is the padding a chain's blur needs.
func chainExtent(c filter.Chain) int {
	pad := 0
	for _, op := range c {
		if op.Kind == filter.BlurPx {
			pad = max(pad, filter.KernelExtent(op.Amount))
		}
	}
	return pad
}

// overlays draws the background image layers in array order. Layers whose
// image has not loaded yet are skipped for this frame.
func (r *renderer) overlays() {
	for i, l := range r.doc.BackgroundImages {
		img := r.inputs.overlays[overlayKey(l, i)]
		if img == nil {
			r.c.logger.Debug("compose: background image layer not loaded", "id", l.ID)
			continue
		}
		_ = r.layer("background image", l.ID, func() error {
			return r.overlay(l, img)
		})
	}
}

// overlay draws one background image layer as a square of side
// min(W, H) * scale%, rendered into a buffer padded for its glow and then
// placed centred on its position.
func (r *renderer) overlay(l state.BackgroundImageLayer, img *imagecache.Image) error {
	side := math.Min(float64(r.w), float64(r.h)) * l.Scale / 100
	pad := math.Max(0, 2*l.Glow.Intensity)
	if !finite(side, pad, l.Rotation, l.Position.Horizontal, l.Position.Vertical) || side <= 0 || l.Opacity <= 0 {
		return nil
	}
	n := int(math.Ceil(side + 2*pad))

	return r.withScratch(n, n, func(s *gg.Context) error {
		if radius := l.BorderRadius / 100 * side / 2; radius > 0 {
			s.ClipRoundRect(pad, pad, side, side, math.Min(radius, side/2))
		}
		s.DrawImageEx(img.Buf(), gg.DrawImageOptions{X: pad, Y: pad, DstWidth: side, DstHeight: side})
		s.ResetClip()

		pm := s.ResizeTarget()
		if l.Glow.Intensity > 0 {
			filter.Glow(pm, gg.White, l.Glow.Intensity)
		}

		r.dc.Translate(percent(r.w, l.Position.Horizontal), percent(r.h, l.Position.Vertical))
		r.dc.Rotate(radians(l.Rotation))
		r.dc.DrawImageEx(imageBuf(pm), gg.DrawImageOptions{
			X: -side/2 - pad, Y: -side/2 - pad,
			DstWidth: float64(n), DstHeight: float64(n),
			Opacity: clamp01(l.Opacity),
		})
		return nil
	})
}

// strokes draws the committed drawings and then the stroke in progress.
func (r *renderer) strokes() {
	for _, p := range r.doc.Drawings {
		_ = r.layer("drawing", p.ID, func() error {
			return r.stroke(p.Points)
		})
	}
	if len(r.pending) > 0 {
		_ = r.layer("drawing", "in-progress", func() error {
			return r.stroke(r.pending)
		})
	}
}

// stroke draws a freehand path one segment at a time. Each segment takes
// the colour and width of its start point.
func (r *renderer) stroke(points []state.DrawingPoint) error {
	if len(points) < 2 {
		return nil
	}
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if a.Size <= 0 || !finite(a.X, a.Y, b.X, b.Y, a.Size) {
			continue
		}
		c := paint(a.Color, 1)
		r.dc.SetRGBA(c.R, c.G, c.B, c.A)
		r.dc.SetLineWidth(a.Size)
		r.dc.MoveTo(a.X, a.Y)
		r.dc.LineTo(b.X, b.Y)
		if err := r.dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// shapeLayers draws the shape layers in array order.
func (r *renderer) shapeLayers() {
	for _, l := range r.doc.Shapes {
		path, ok := r.c.shapes.Lookup(l.Type)
		if !ok {
			r.c.logger.Debug("compose: unknown shape type", "id", l.ID, "type", l.Type)
			continue
		}
		_ = r.layer("shape", l.ID, func() error {
			return r.shape(l, path)
		})
	}
}

func (r *renderer) shape(l state.ShapeLayer, path *gg.Path) error {
	scale := math.Min(float64(r.w), float64(r.h)) * l.Scale / 100 / shapes.DesignSize
	if !finite(scale, l.Rotation, l.Position.Horizontal, l.Position.Vertical) || scale <= 0 || l.Opacity <= 0 {
		return nil
	}
	place := func(dc *gg.Context) {
		dc.Translate(percent(r.w, l.Position.Horizontal), percent(r.h, l.Position.Vertical))
		dc.Rotate(radians(l.Rotation))
		dc.Translate(-0.5, -0.5)
		dc.Scale(scale, scale)
		dc.Translate(0.5, 0.5)
	}
	draw := func(dc *gg.Context, alpha float64) error {
		c := paint(l.Color, alpha)
		dc.SetRGBA(c.R, c.G, c.B, c.A)
		if l.IsFilled {
			return dc.FillPath(path)
		}
		width := l.StrokeWidth
		if width == 0 {
			width = 2
		}
		dc.SetLineWidth(width)
		dc.SetLineCap(gg.LineCapButt)
		dc.SetLineJoin(gg.LineJoinMiter)
		return dc.StrokePath(path)
	}

	if !l.Glow.Enabled || l.Glow.Intensity <= 0 {
		place(r.dc)
		return draw(r.dc, l.Opacity)
	}
	// The glow and the shape fade together, so they are drawn as a group.
	return r.withScratch(r.w, r.h, func(s *gg.Context) error {
		place(s)
		if err := draw(s, 1); err != nil {
			return err
		}
		pm := s.ResizeTarget()
		filter.Glow(pm, paint(l.Glow.Color, 1), l.Glow.Intensity)
		blit(r.pm, pm, image.Point{}, l.Opacity)
		return nil
	})
}

// textLayers draws the text layers with placement p in array order. A
// failing layer is reported to the notifier and the rest still draw.
func (r *renderer) textLayers(p state.Placement) {
	if p == state.PlacementBackground {
		for _, l := range r.doc.Texts {
			if l.Placement != state.PlacementBackground && l.Placement != state.PlacementForeground {
				r.c.logger.Debug("compose: text layer has no placement, not drawn", "id", l.ID, "placement", string(l.Placement))
			}
		}
	}
	for _, l := range r.doc.TextLayersAt(p) {
		err := r.layer("text", l.ID, func() error {
			return r.text(l)
		})
		if err != nil && r.c.notifier != nil {
			r.c.notifier.Notify(l.ID, err)
		}
	}
}

// errFontSize is returned for a text layer without a usable size.
var errFontSize = errors.New("invalid font size")

func (r *renderer) text(l state.TextLayer) error {
	if !finite(l.FontSize) || l.FontSize <= 0 {
		return fmt.Errorf("text %q: %w %v", l.ID, errFontSize, l.FontSize)
	}
	if !finite(l.Rotation, l.Position.Horizontal, l.Position.Vertical, l.Background.Width, l.Background.Height) {
		return fmt.Errorf("text %q: invalid geometry", l.ID)
	}
	face, err := r.c.fonts.Face(descriptor(l))
	if err != nil {
		return fmt.Errorf("text %q: %w", l.ID, err)
	}
	if l.Opacity <= 0 {
		return nil
	}

	draw := func(dc *gg.Context, alpha float64) error {
		dc.Translate(percent(r.w, l.Position.Horizontal), percent(r.h, l.Position.Vertical))
		dc.Rotate(radians(l.Rotation))
		if bg := l.Background; bg.Enabled {
			c := paint(bg.Color, alpha)
			dc.SetRGBA(c.R, c.G, c.B, c.A)
			if err := dc.FillPath(RoundRectPath(-bg.Width/2, -bg.Height/2, bg.Width, bg.Height, bg.BorderRadius)); err != nil {
				return err
			}
		}
		c := paint(l.Color, alpha)
		dc.SetRGBA(c.R, c.G, c.B, c.A)
		dc.SetFont(face)
		dc.DrawStringAnchored(l.Text, 0, 0, 0.5, 0.5)
		return nil
	}

	if g := l.Glow; !g.Enabled || g.Color == "" || g.Intensity <= 0 {
		return draw(r.dc, l.Opacity)
	}
	return r.withScratch(r.w, r.h, func(s *gg.Context) error {
		if err := draw(s, 1); err != nil {
			return err
		}
		pm := s.ResizeTarget()
		filter.Glow(pm, paint(l.Glow.Color, 1), l.Glow.Intensity)
		blit(r.pm, pm, image.Point{}, l.Opacity)
		return nil
	})
}

// subjectRect returns the placement of the foreground subject.
func (r *renderer) subjectRect(fg *imagecache.Image, size float64, offset bool, pos state.Offset) (x, y, w, h float64) {
	s := fitScale(r.w, r.h, fg.Width(), fg.Height()) * size / 100
	w, h = float64(fg.Width())*s, float64(fg.Height())*s
	x, y = (float64(r.w)-w)/2, (float64(r.h)-h)/2
	if offset {
		x += percent(r.w, pos.X)
		y += percent(r.h, pos.Y)
	}
	return x, y, w, h
}

// foreground draws the cutout silhouette and then the subject. The offset
// only applies on a transparent or replaced background.
func (r *renderer) foreground() {
	fg := r.inputs.foreground
	if fg == nil {
		return
	}
	doc := r.doc
	offset := doc.HasTransparentBackground || doc.HasChangedBackground
	x, y, w, h := r.subjectRect(fg, doc.ForegroundSize, offset, doc.ForegroundPosition)
	if !finite(x, y, w, h) || w <= 0 || h <= 0 {
		return
	}
	chain := enhancement(doc.ForegroundEnhancements, doc.ApplyToForeground)

	if doc.Cutout.Enabled {
		_ = r.layer("cutout", "", func() error {
			return r.cutout(fg, x, y, w, h, chain)
		})
	}
	_ = r.layer("foreground", "", func() error {
		return r.drawImage(fg, x, y, w, h, 1, chain)
	})
}

// cutout draws the subject's alpha, grown by half the cutout width and
// filled with the cutout colour, behind where the subject goes.
func (r *renderer) cutout(fg *imagecache.Image, x, y, w, h float64, chain filter.Chain) error {
	cut := r.doc.Cutout
	radius := math.Max(0, cut.Width/2)
	alpha := cut.Intensity / 100
	if alpha <= 0 || !finite(radius) {
		return nil
	}

	pad := int(math.Ceil(radius)) + 1 + chainExtent(chain)
	area := image.Rect(int(math.Floor(x)), int(math.Floor(y)), int(math.Ceil(x+w)), int(math.Ceil(y+h))).
		Inset(-pad).
		Intersect(image.Rect(0, 0, r.w, r.h).Inset(-pad))
	if area.Empty() {
		return nil
	}
	return r.withScratch(area.Dx(), area.Dy(), func(s *gg.Context) error {
		s.DrawImageEx(fg.Buf(), gg.DrawImageOptions{
			X: x - float64(area.Min.X), Y: y - float64(area.Min.Y),
			DstWidth: w, DstHeight: h,
		})
		sil := filter.Silhouette(s.ResizeTarget(), radius, paint(cut.Color, alpha))
		if sil == nil {
			return nil
		}
		chain.Apply(sil)
		blit(r.pm, sil, area.Min, 1)
		return nil
	})
}

// clones draws the foreground copies. Each has its own size, position,
// rotation and flips; none of it carries over to the next clone.
func (r *renderer) clones() {
	fg := r.inputs.foreground
	if fg == nil {
		return
	}
	for _, cl := range r.doc.Clones {
		_ = r.layer("clone", cl.ID, func() error {
			return r.clone(fg, cl)
		})
	}
}

func (r *renderer) clone(fg *imagecache.Image, cl state.ForegroundClone) error {
	x, y, w, h := r.subjectRect(fg, cl.Size, true, cl.Position)
	if !finite(x, y, w, h, cl.Rotation) || w <= 0 || h <= 0 {
		return nil
	}
	r.dc.Translate(x+w/2, y+h/2)
	r.dc.Rotate(radians(cl.Rotation))
	if cl.Flip.Horizontal {
		r.dc.Scale(-1, 1)
	}
	if cl.Flip.Vertical {
		r.dc.Scale(1, -1)
	}
	r.dc.DrawImageEx(fg.Buf(), gg.DrawImageOptions{X: -w / 2, Y: -h / 2, DstWidth: w, DstHeight: h})
	return nil
}
