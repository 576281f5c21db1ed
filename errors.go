package compose

import (
	"errors"

	"github.com/gogpu/compose/internal/csscolor"
)

var (
	// ErrSurfaceClosed is returned when drawing to or reading from a closed
	// surface.
	ErrSurfaceClosed = errors.New("compose: surface is closed")

	// ErrInvalidDimensions is returned for a non-positive surface size.
	ErrInvalidDimensions = errors.New("compose: invalid dimensions")

	// ErrNotReady is returned by Render when the base or foreground image
	// is still loading. The frame is skipped; it is redrawn once the load
	// completes.
	ErrNotReady = errors.New("compose: frame not ready")

	// ErrUnknownFormat is returned for an unsupported export format.
	ErrUnknownFormat = errors.New("compose: unknown export format")

	// ErrEditorClosed is returned by editor operations after Close.
	ErrEditorClosed = errors.New("compose: editor is closed")

	// ErrInvalidColor is returned for strings that are not CSS colours.
	ErrInvalidColor = csscolor.ErrInvalid
)
