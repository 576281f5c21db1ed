package fonts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
)

func TestDescriptorString(t *testing.T) {
	tests := []struct {
		d    Descriptor
		want string
	}{
		{Descriptor{Family: "Inter", Weight: 700, Size: 48}, `700 48px "Inter"`},
		{Descriptor{Family: "Go", Size: 12.5}, `400 12.5px "Go"`},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// TestParseDescriptorRoundTrip verifies that String output parses back to
// the same descriptor.
func TestParseDescriptorRoundTrip(t *testing.T) {
	in := Descriptor{Family: "Latin Modern Roman", Weight: 700, Size: 32}
	got, err := ParseDescriptor(in.String())
	if err != nil {
		t.Fatalf("ParseDescriptor: %v", err)
	}
	if got != in {
		t.Errorf("ParseDescriptor(%q) = %+v, want %+v", in.String(), got, in)
	}

	if d, err := ParseDescriptor("bold 20px serif"); err != nil || d.Weight != 700 || d.Family != "serif" {
		t.Errorf("keyword weight: %+v, %v", d, err)
	}
	for _, bad := range []string{"", "400 Inter", "heavy 10px x", "400 -3px x"} {
		if _, err := ParseDescriptor(bad); err == nil {
			t.Errorf("ParseDescriptor(%q) succeeded", bad)
		}
	}
}

func TestPickClosestWeight(t *testing.T) {
	sources := []*source{{id: "a", weight: 400}, {id: "b", weight: 700}, {id: "c", weight: 500}}
	tests := []struct {
		weight int
		want   string
	}{
		{400, "a"},
		{300, "a"},
		{600, "b"}, // tie between 500 and 700 prefers the heavier face
		{900, "b"},
		{550, "c"},
	}
	for _, tt := range tests {
		if got := pick(sources, tt.weight); got.id != tt.want {
			t.Errorf("pick(%d) = %s, want %s", tt.weight, got.id, tt.want)
		}
	}
	if pick(nil, 400) != nil {
		t.Error("pick(nil) returned a source")
	}
}

// TestBundledFaces verifies that bundled families and generic aliases
// resolve without any loading.
func TestBundledFaces(t *testing.T) {
	r := New()
	defer r.Close()

	for _, family := range []string{"Go", "go mono", "Latin Modern Sans", "serif", "sans-serif"} {
		f, err := r.Face(Descriptor{Family: family, Weight: 700, Size: 24})
		if err != nil {
			t.Errorf("Face(%q): %v", family, err)
			continue
		}
		if f.Size() != 24 {
			t.Errorf("Face(%q).Size() = %v, want 24", family, f.Size())
		}
		if !f.HasGlyph('A') {
			t.Errorf("Face(%q) has no glyph for 'A'", family)
		}
	}

	a, _ := r.Face(Descriptor{Family: "Go", Size: 10})
	b, _ := r.Face(Descriptor{Family: "Go", Size: 10})
	if a != b {
		t.Error("identical descriptors produced different faces")
	}
}

// TestUnknownFamily verifies that Face falls back silently while Load
// reports the miss.
func TestUnknownFamily(t *testing.T) {
	r := New()
	defer r.Close()

	d := Descriptor{Family: "No Such Family", Size: 16}
	if err := r.Load(context.Background(), d); !errors.Is(err, ErrUnknownFamily) {
		t.Errorf("Load error = %v, want ErrUnknownFamily", err)
	}
	f, err := r.Face(d)
	if err != nil || f == nil {
		t.Fatalf("Face fallback failed: %v", err)
	}
}

// TestFontDirs verifies that a font file named after its family is found
// on Load and picked by weight.
func TestFontDirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Inter-Bold.ttf"), gobold.TTF, 0o600); err != nil {
		t.Fatal(err)
	}

	r := New(WithFontDirs(dir))
	defer r.Close()

	d := Descriptor{Family: "Inter", Weight: 700, Size: 20}
	if err := r.Load(context.Background(), d); err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, err := r.Face(d)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if f.Source() == nil {
		t.Error("face has no source")
	}
}

func TestRegisterData(t *testing.T) {
	r := New()
	if err := r.RegisterData("Brand", 400, gobold.TTF); err != nil {
		t.Fatalf("RegisterData: %v", err)
	}
	if err := r.RegisterData("Brand", 400, nil); err == nil {
		t.Error("RegisterData accepted empty data")
	}
	if err := r.Load(context.Background(), Descriptor{Family: "brand", Size: 12}); err != nil {
		t.Errorf("Load(brand): %v", err)
	}
	if err := r.RegisterFile("X", 400, filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Error("RegisterFile accepted a missing file")
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.Face(Descriptor{Family: "Go", Size: 12}); !errors.Is(err, ErrClosed) {
		t.Errorf("Face after Close error = %v, want ErrClosed", err)
	}
	if err := r.RegisterData("Y", 400, gobold.TTF); !errors.Is(err, ErrClosed) {
		t.Errorf("RegisterData after Close error = %v, want ErrClosed", err)
	}
}
