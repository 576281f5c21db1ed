package filter

import (
	"testing"

	"github.com/gogpu/gg"
)

func TestMatrixApply(t *testing.T) {
	tests := []struct {
		name   string
		matrix Matrix
		in     gg.RGBA
		want   gg.RGBA
	}{
		{
			name:   "identity",
			matrix: IdentityMatrix(),
			in:     gg.RGBA{R: 0.3, G: 0.5, B: 0.7, A: 1},
			want:   gg.RGBA{R: 0.3, G: 0.5, B: 0.7, A: 1},
		},
		{
			name:   "brightness halves",
			matrix: BrightnessMatrix(0.5),
			in:     gg.RGBA{R: 1, G: 1, B: 1, A: 1},
			want:   gg.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1},
		},
		{
			name:   "brightness clamps",
			matrix: BrightnessMatrix(3),
			in:     gg.RGBA{R: 0.5, G: 0.1, B: 0, A: 1},
			want:   gg.RGBA{R: 1, G: 0.3, B: 0, A: 1},
		},
		{
			name:   "zero contrast is mid grey",
			matrix: ContrastMatrix(0),
			in:     gg.RGBA{R: 1, G: 0, B: 0.2, A: 1},
			want:   gg.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1},
		},
		{
			name:   "zero saturation is luminance",
			matrix: SaturateMatrix(0),
			in:     gg.RGBA{R: 1, G: 0, B: 0, A: 1},
			want:   gg.RGBA{R: 0.2126, G: 0.2126, B: 0.2126, A: 1},
		},
		{
			name:   "opacity keeps colour",
			matrix: OpacityMatrix(0.5),
			in:     gg.RGBA{R: 1, G: 0, B: 0, A: 1},
			want:   gg.RGBA{R: 1, G: 0, B: 0, A: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := createTestPixmap(2, 2, tt.in)
			tt.matrix.Apply(p)
			if got := p.GetPixel(1, 1); !colorApproxEqual(got, tt.want, 0.02) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestMatrixApplyTransparent verifies that fully transparent pixels stay
// transparent under colour-only matrices.
func TestMatrixApplyTransparent(t *testing.T) {
	p := gg.NewPixmap(2, 2)
	ContrastMatrix(2).Apply(p)

	for _, b := range p.Data() {
		if b != 0 {
			t.Fatalf("transparent pixmap changed: %v", p.Data())
		}
	}
}

// TestMatrixThen verifies that composing matrices matches applying them
// one after another.
func TestMatrixThen(t *testing.T) {
	in := gg.RGBA{R: 0.8, G: 0.4, B: 0.2, A: 1}

	sequential := createTestPixmap(1, 1, in)
	BrightnessMatrix(0.5).Apply(sequential)
	ContrastMatrix(1.5).Apply(sequential)

	combined := createTestPixmap(1, 1, in)
	BrightnessMatrix(0.5).Then(ContrastMatrix(1.5)).Apply(combined)

	a, b := sequential.GetPixel(0, 0), combined.GetPixel(0, 0)
	if !colorApproxEqual(a, b, 0.02) {
		t.Errorf("sequential %+v != combined %+v", a, b)
	}
}
