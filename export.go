package compose

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"

	"github.com/gogpu/compose/state"
)

// Format is an export image format.
type Format int

const (
	// PNG keeps transparency.
	PNG Format = iota
	// JPEG flattens transparency onto black.
	JPEG
)

// DefaultJPEGQuality is used when an export asks for quality 0.
const DefaultJPEGQuality = 90

// String returns the format name.
func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses "png", "jpeg" or "jpg", ignoring case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ExportOptions controls Export.
type ExportOptions struct {
	Format  Format
	Quality int // JPEG only, 1-100

	// InProgress is drawn on top of the committed drawings when set, as in
	// a live preview.
	InProgress []state.DrawingPoint
}

// Export renders doc at full resolution on a fresh surface and encodes it
// to w. Every image and font doc references is loaded first.
func (c *Compositor) Export(ctx context.Context, w io.Writer, doc state.Document, opts ExportOptions) error {
	if err := c.Prepare(ctx, &doc); err != nil {
		return err
	}
	width, height, ok := c.Size(&doc)
	if !ok {
		return fmt.Errorf("%w: document has no size", ErrInvalidDimensions)
	}
	surf, err := NewSurface(width, height)
	if err != nil {
		return err
	}
	defer surf.Close()

	if err := c.Render(surf, Frame{Document: doc, InProgress: opts.InProgress}); err != nil {
		return err
	}
	pm := surf.Pixmap()
	if pm == nil {
		return ErrSurfaceClosed
	}
	if err := Encode(w, pm, opts.Format, opts.Quality); err != nil {
		return err
	}
	c.logger.Info("compose: export written", "format", opts.Format.String(), "width", width, "height", height)
	return nil
}

// Encode writes pm in format f.
func Encode(w io.Writer, pm *gg.Pixmap, f Format, quality int) error {
	switch f {
	case PNG:
		return pm.EncodePNG(w)
	case JPEG:
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		return pm.EncodeJPEG(w, min(quality, 100))
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
}
