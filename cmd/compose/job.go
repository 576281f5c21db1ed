package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/state"
)

// job renders one document file to one image file.
type job struct {
	input   string
	output  string
	format  compose.Format
	quality int
}

// newJob resolves the output path and format. An explicit format wins,
// then the output extension, then PNG.
func newJob(input, output string, cfg *Config) (*job, error) {
	if _, err := state.FormatFromPath(input); err != nil {
		return nil, err
	}
	j := &job{input: input, output: output, quality: cfg.Output.Quality}

	switch {
	case cfg.Output.Format != "":
		f, err := compose.ParseFormat(cfg.Output.Format)
		if err != nil {
			return nil, err
		}
		j.format = f
	case output != "":
		f, err := compose.FormatFromPath(output)
		if err != nil {
			return nil, err
		}
		j.format = f
	default:
		j.format = compose.PNG
	}

	if j.output == "" {
		j.output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + j.format.String()
	}
	return j, nil
}

// load decodes the document.
func (j *job) load() (state.Document, error) {
	f, err := state.FormatFromPath(j.input)
	if err != nil {
		return state.Document{}, err
	}
	r, err := os.Open(j.input)
	if err != nil {
		return state.Document{}, err
	}
	defer r.Close()
	return state.Decode(r, f)
}

// run renders the document and replaces the output file. The image is
// written to a temporary file first so a failed render never leaves a
// truncated output behind.
func (j *job) run(ctx context.Context, comp *compose.Compositor) error {
	doc, err := j.load()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(j.output), ".compose-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	err = comp.Export(ctx, tmp, doc, compose.ExportOptions{Format: j.format, Quality: j.quality})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", j.input, err)
	}
	return os.Rename(tmp.Name(), j.output)
}
