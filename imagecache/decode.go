// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagecache

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/gg"
	"github.com/h2non/filetype"
)

// maxSourceBytes bounds how much of a source is read before decoding.
const maxSourceBytes = 64 << 20

// Image is a decoded raster ready for drawing.
type Image struct {
	// URL the image was loaded from.
	URL string

	// MIME is the sniffed content type, e.g. "image/png".
	MIME string

	// Pixels holds the decoded image with straight alpha.
	Pixels *image.NRGBA

	buf *gg.ImageBuf
}

// Width returns the natural width in pixels.
func (img *Image) Width() int { return img.Pixels.Rect.Dx() }

// Height returns the natural height in pixels.
func (img *Image) Height() int { return img.Pixels.Rect.Dy() }

// Buf returns the image as a gg.ImageBuf for DrawImage calls.
func (img *Image) Buf() *gg.ImageBuf { return img.buf }

// NewImage wraps an already decoded image. Any image type is accepted; it
// is converted to straight alpha before wrapping.
func NewImage(url string, src image.Image) *Image {
	px := toNRGBA(src)
	return &Image{
		URL:    url,
		MIME:   "image/x-raw",
		Pixels: px,
		buf:    gg.ImageBufFromImage(px),
	}
}

// decode sniffs and decodes r.
func decode(url string, r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("imagecache: read %s: %w", url, err)
	}
	if len(data) > maxSourceBytes {
		return nil, fmt.Errorf("imagecache: %s exceeds %d bytes", url, maxSourceBytes)
	}

	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotImage, url, kind.MIME.Value)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imagecache: decode %s as %s: %w", url, kind.Extension, err)
	}
	if b := src.Bounds(); b.Empty() {
		return nil, fmt.Errorf("imagecache: %s (%s) has no pixels", url, format)
	}

	img := NewImage(url, src)
	img.MIME = kind.MIME.Value
	return img, nil
}

// toNRGBA converts src to a zero-origin *image.NRGBA. gg treats RGBA8
// buffers as straight alpha, so premultiplied sources must not be passed
// through unchanged.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
