package compose

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/gogpu/gg"

	"github.com/gogpu/compose/imagecache"
)

// memImages serves in-memory images by URL. Opens of URLs listed in gates
// block until the gate is closed.
type memImages struct {
	mu    sync.Mutex
	files map[string][]byte
	gates map[string]chan struct{}
}

func newMemImages() *memImages {
	return &memImages{files: make(map[string][]byte), gates: make(map[string]chan struct{})}
}

func (l *memImages) add(t *testing.T, url string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	l.mu.Lock()
	l.files[url] = buf.Bytes()
	l.mu.Unlock()
}

func (l *memImages) gate(url string) chan struct{} {
	ch := make(chan struct{})
	l.mu.Lock()
	l.gates[url] = ch
	l.mu.Unlock()
	return ch
}

func (l *memImages) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	l.mu.Lock()
	gate := l.gates[url]
	l.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	l.mu.Lock()
	data, ok := l.files[url]
	l.mu.Unlock()
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// halves is red on the left half and blue on the right.
func halves(w, h int) *image.NRGBA {
	img := solid(w, h, color.NRGBA{R: 255, A: 255})
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
		}
	}
	return img
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func newTestCompositor(t *testing.T, l *memImages, opts ...Option) *Compositor {
	t.Helper()
	opts = append([]Option{WithImageCacheOptions(imagecache.WithLoader(l))}, opts...)
	c := New(opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newTestSurface(t *testing.T, w, h int) *Surface {
	t.Helper()
	s, err := NewSurface(w, h)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// rgb reports whether c matches the straight-alpha colour want within a
// tolerance on every channel.
func rgb(c gg.RGBA, want color.NRGBA) bool {
	const tol = 0.1
	near := func(got float64, want uint8) bool {
		return math.Abs(got-float64(want)/255) <= tol
	}
	return near(c.R, want.R) && near(c.G, want.G) && near(c.B, want.B) && near(c.A, want.A)
}

// expectColor checks the colour of each listed pixel.
func expectColor(t *testing.T, pm *gg.Pixmap, want color.NRGBA, pts ...image.Point) {
	t.Helper()
	for _, p := range pts {
		if got := pm.GetPixel(p.X, p.Y); !rgb(got, want) {
			t.Errorf("pixel %v = %+v, want %v", p, got, want)
		}
	}
}
