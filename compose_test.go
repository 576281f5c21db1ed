package compose

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/gogpu/gg"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want gg.RGBA
	}{
		{"#ff0000", gg.RGBA{R: 1, A: 1}},
		{"#0f08", gg.RGBA{G: 1, A: 136.0 / 255}},
		{"rgba(0, 0, 255, 0.5)", gg.RGBA{B: 1, A: 0.5}},
		{"white", gg.RGBA{R: 1, G: 1, B: 1, A: 1}},
		{"transparent", gg.RGBA{}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if math.Abs(got.R-tt.want.R) > 0.01 || math.Abs(got.G-tt.want.G) > 0.01 ||
			math.Abs(got.B-tt.want.B) > 0.01 || math.Abs(got.A-tt.want.A) > 0.01 {
			t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseColor("not-a-colour"); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("ParseColor(invalid) = %v, want ErrInvalidColor", err)
	}
}

// TestPaintFallback verifies that an unusable colour paints opaque black
// and alpha multiplies into the parsed alpha.
func TestPaintFallback(t *testing.T) {
	if c := paint("bogus", 1); c != (gg.RGBA{A: 1}) {
		t.Errorf("paint(bogus) = %+v, want opaque black", c)
	}
	if c := paint("rgba(255, 0, 0, 0.5)", 0.5); math.Abs(c.A-0.25) > 0.01 {
		t.Errorf("alpha = %v, want 0.25", c.A)
	}
	if c := paint("#fff", 3); c.A != 1 {
		t.Errorf("alpha = %v, want clamped to 1", c.A)
	}
}

func TestRoundRectPath(t *testing.T) {
	tests := []struct {
		name       string
		x, y, w, h float64
		r          float64
		wantArea   float64
		wantBox    gg.Rect
	}{
		{"plain", 10, 20, 100, 50, 0, 5000, gg.Rect{Min: gg.Pt(10, 20), Max: gg.Pt(110, 70)}},
		{"negative size", 110, 70, -100, -50, 0, 5000, gg.Rect{Min: gg.Pt(10, 20), Max: gg.Pt(110, 70)}},
		{"rounded", 0, 0, 100, 50, 10, 5000 - (4-math.Pi)*100, gg.Rect{Max: gg.Pt(100, 50)}},
		{"radius clamped", 0, 0, 100, 50, 400, 5000 - (4-math.Pi)*625, gg.Rect{Max: gg.Pt(100, 50)}},
		{"negative radius", 0, 0, 10, 10, -3, 100, gg.Rect{Max: gg.Pt(10, 10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := RoundRectPath(tt.x, tt.y, tt.w, tt.h, tt.r)
			if got := math.Abs(p.Area()); math.Abs(got-tt.wantArea) > tt.wantArea*0.01 {
				t.Errorf("area = %v, want %v", got, tt.wantArea)
			}
			box := p.BoundingBox()
			if math.Abs(box.Min.X-tt.wantBox.Min.X) > 1e-6 || math.Abs(box.Min.Y-tt.wantBox.Min.Y) > 1e-6 ||
				math.Abs(box.Max.X-tt.wantBox.Max.X) > 1e-6 || math.Abs(box.Max.Y-tt.wantBox.Max.Y) > 1e-6 {
				t.Errorf("bounds = %+v, want %+v", box, tt.wantBox)
			}
		})
	}
}

func TestCheckerboard(t *testing.T) {
	img := Checkerboard(40, 20)
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("bounds = %v", b)
	}
	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, checkerSquare},
		{15, 15, checkerSquare},
		{16, 0, checkerBase},
		{0, 16, checkerBase},
		{16, 16, checkerSquare},
		{32, 0, checkerSquare},
		{39, 19, checkerBase},
	}
	for _, tt := range tests {
		c := img.RGBAAt(tt.x, tt.y)
		if c.R != tt.want || c.G != tt.want || c.B != tt.want || c.A != 0xff {
			t.Errorf("(%d, %d) = %v, want grey %#x", tt.x, tt.y, c, tt.want)
		}
	}

	if b := Checkerboard(-1, 5).Bounds(); !b.Empty() {
		t.Errorf("negative size gave %v", b)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", PNG, false},
		{"PNG", PNG, false},
		{".jpg", JPEG, false},
		{"jpeg", JPEG, false},
		{"gif", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if f, err := FormatFromPath("out/final.JPG"); err != nil || f != JPEG {
		t.Errorf("FormatFromPath = %v, %v", f, err)
	}
	if s := Format(7).String(); s != "Format(7)" {
		t.Errorf("String() = %q", s)
	}
}

func TestEncode(t *testing.T) {
	pm := gg.NewPixmap(8, 4)
	pm.FillRect(image.Rect(0, 0, 8, 4), 0, 0x80, 0, 0xff)

	var buf bytes.Buffer
	if err := Encode(&buf, pm, PNG, 0); err != nil {
		t.Fatalf("Encode(PNG): %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("png.Decode: %v", err)
	}

	buf.Reset()
	if err := Encode(&buf, pm, JPEG, 0); err != nil {
		t.Fatalf("Encode(JPEG): %v", err)
	}
	img, err := jpeg.Decode(&buf)
	if err != nil {
		t.Fatalf("jpeg.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("bounds = %v", b)
	}

	if err := Encode(&buf, pm, Format(9), 0); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Encode(unknown) = %v", err)
	}
}

func TestSurface(t *testing.T) {
	if _, err := NewSurface(0, 10); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("NewSurface(0, 10) = %v", err)
	}

	s, err := NewSurface(10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Resize(20, 5); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if w, h := s.Size(); w != 20 || h != 5 {
		t.Errorf("Size = %dx%d, want 20x5", w, h)
	}
	if err := s.Resize(-1, 5); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Resize(-1, 5) = %v", err)
	}

	if s.TakeDirty() {
		t.Error("new surface is dirty")
	}
	s.MarkDirty()
	if !s.TakeDirty() || s.TakeDirty() {
		t.Error("TakeDirty did not report and clear the flag once")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.Context() != nil || s.Pixmap() != nil {
		t.Error("closed surface still exposes its context")
	}
	if err := s.Resize(4, 4); !errors.Is(err, ErrSurfaceClosed) {
		t.Errorf("Resize after Close = %v", err)
	}
	if _, err := s.Image(); !errors.Is(err, ErrSurfaceClosed) {
		t.Errorf("Image after Close = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestBlitOpacity(t *testing.T) {
	dst := gg.NewPixmap(4, 4)
	dst.FillRect(image.Rect(0, 0, 4, 4), 0xff, 0xff, 0xff, 0xff)
	src := gg.NewPixmap(2, 2)
	src.FillRect(image.Rect(0, 0, 2, 2), 0, 0, 0, 0xff)

	blit(dst, src, image.Pt(1, 1), 0.5)

	if c := dst.GetPixel(0, 0); c.R != 1 {
		t.Errorf("outside pixel = %+v, want white", c)
	}
	if c := dst.GetPixel(1, 1); math.Abs(c.R-0.5) > 0.02 || c.A != 1 {
		t.Errorf("blended pixel = %+v, want half grey", c)
	}

	// Entirely outside the destination.
	blit(dst, src, image.Pt(10, 10), 1)
	if c := dst.GetPixel(3, 3); c.R != 1 {
		t.Errorf("pixel (3,3) = %+v, want white", c)
	}
}
