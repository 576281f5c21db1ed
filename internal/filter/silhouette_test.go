package filter

import (
	"testing"

	"github.com/gogpu/gg"
)

// TestSilhouetteGrowsShape verifies that the silhouette covers the source
// shape plus a band of the dilation radius, filled with the given colour.
func TestSilhouetteGrowsShape(t *testing.T) {
	src := gg.NewPixmap(31, 31)
	fillRect(src, 13, 13, 18, 18, gg.RGBA{G: 1, A: 1})
	red := gg.RGBA{R: 1, A: 1}

	s := Silhouette(src, 3, red)
	if s == nil {
		t.Fatal("Silhouette returned nil")
	}
	if s.Width() != 31 || s.Height() != 31 {
		t.Fatalf("size = %dx%d, want 31x31", s.Width(), s.Height())
	}

	for _, pt := range [][2]int{{15, 15}, {11, 15}, {15, 19}, {10, 10}} {
		if c := s.GetPixel(pt[0], pt[1]); !colorApproxEqual(c, red, 0.01) {
			t.Errorf("pixel %v = %+v, want red", pt, c)
		}
	}
	if c := s.GetPixel(5, 15); c.A != 0 {
		t.Errorf("pixel (5,15) alpha = %v, want 0", c.A)
	}
	// The source is untouched.
	if c := src.GetPixel(11, 15); c.A != 0 {
		t.Errorf("source modified at (11,15): %+v", c)
	}
}

// TestSilhouetteIntensity verifies that the colour alpha scales coverage.
func TestSilhouetteIntensity(t *testing.T) {
	src := createTestPixmap(4, 4, gg.RGBA{R: 1, G: 1, B: 1, A: 1})

	s := Silhouette(src, 0, gg.RGBA{B: 1, A: 0.5})

	want := gg.RGBA{B: 1, A: 0.5}
	if c := s.GetPixel(2, 2); !colorApproxEqual(c, want, 0.02) {
		t.Errorf("pixel = %+v, want %+v", c, want)
	}
}

func TestSilhouetteEmpty(t *testing.T) {
	if Silhouette(nil, 2, gg.RGBA{A: 1}) != nil {
		t.Error("Silhouette(nil) should return nil")
	}
}
