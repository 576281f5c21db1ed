package main

import (
	"context"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/compose"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadConfig(filepath.Join(dir, "missing.toml"), false)
	if err != nil {
		t.Fatalf("optional missing config: %v", err)
	}
	if cfg.Output.Quality != 90 || cfg.Log.Level != "warn" {
		t.Errorf("defaults = %+v", cfg)
	}
	if _, err := loadConfig(filepath.Join(dir, "missing.toml"), true); err == nil {
		t.Error("required missing config did not fail")
	}

	path := filepath.Join(dir, "compose.toml")
	writeFile(t, path, `
[output]
format = "jpeg"
quality = 75

[fonts]
dirs = ["/usr/share/fonts/custom"]
system = true

[log]
level = "debug"
`)
	cfg, err = loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Output.Format != "jpeg" || cfg.Output.Quality != 75 {
		t.Errorf("output = %+v", cfg.Output)
	}
	if len(cfg.Fonts.Dirs) != 1 || !cfg.Fonts.System {
		t.Errorf("fonts = %+v", cfg.Fonts)
	}
	if cfg.Images.TimeoutSeconds != 30 {
		t.Errorf("unset timeout = %d, want the default 30", cfg.Images.TimeoutSeconds)
	}
	if lvl, _ := parseLevel(cfg.Log.Level); lvl != slog.LevelDebug {
		t.Errorf("level = %v", lvl)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[output\n"},
		{"quality", "[output]\nquality = 101\n"},
		{"level", "[log]\nlevel = \"loud\"\n"},
		{"timeout", "[images]\ntimeout_seconds = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.toml")
			writeFile(t, path, tt.data)
			if _, err := loadConfig(path, true); err == nil {
				t.Error("loadConfig accepted an invalid config")
			}
		})
	}
}

func TestNewJob(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		output     string
		format     string
		wantOutput string
		wantFormat compose.Format
		wantErr    bool
	}{
		{"default", "doc.json", "", "", "doc.png", compose.PNG, false},
		{"config format", "doc.yaml", "", "jpeg", "doc.jpeg", compose.JPEG, false},
		{"output extension", "doc.toml", "out.jpg", "", "out.jpg", compose.JPEG, false},
		{"format wins", "doc.json", "out.jpg", "png", "out.jpg", compose.PNG, false},
		{"bad document", "doc.txt", "", "", "", 0, true},
		{"bad output", "doc.json", "out.gif", "", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Output.Format = tt.format
			j, err := newJob(tt.input, tt.output, &cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newJob error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if j.output != tt.wantOutput || j.format != tt.wantFormat {
				t.Errorf("job = %s as %v, want %s as %v", j.output, j.format, tt.wantOutput, tt.wantFormat)
			}
		})
	}
}

func TestJobRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.yaml")
	writeFile(t, input, `
backgroundColor: "#ff0000"
backgroundOpacity: 1
hasChangedBackground: true
backgroundDimensions:
  width: 32
  height: 24
`)
	cfg := defaultConfig()
	j, err := newJob(input, "", &cfg)
	if err != nil {
		t.Fatal(err)
	}
	comp := compose.New()
	defer comp.Close()

	if err := j.run(context.Background(), comp); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "doc.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("bounds = %v, want 32x24", b)
	}
	if r, g, _, _ := img.At(5, 5).RGBA(); r != 0xffff || g != 0 {
		t.Errorf("pixel = %v, want red", img.At(5, 5))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("directory has %d entries, want the document and the image", len(entries))
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList = %q", got)
	}
}
