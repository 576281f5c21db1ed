package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a document serialisation format.
type Format int

const (
	// JSON is the format of the browser editor state.
	JSON Format = iota
	// YAML documents.
	YAML
	// TOML documents.
	TOML
)

// ErrUnknownFormat is returned for a file extension with no codec.
var ErrUnknownFormat = errors.New("state: unknown document format")

// String returns the format name.
func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks a format from the file extension of path.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Decode reads a document in format f. Fields absent from the input keep
// the NewDocument defaults.
func Decode(r io.Reader, f Format) (Document, error) {
	doc := NewDocument()
	data, err := io.ReadAll(r)
	if err != nil {
		return doc, fmt.Errorf("state: read document: %w", err)
	}

	switch f {
	case JSON:
		err = json.Unmarshal(data, &doc)
	case YAML:
		err = yaml.Unmarshal(data, &doc)
	case TOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return doc, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return doc, fmt.Errorf("state: decode %v document: %w", f, err)
	}
	return doc, nil
}

// Encode writes doc in format f.
func Encode(w io.Writer, doc *Document, f Format) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case JSON:
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	case TOML:
		data, err = toml.Marshal(doc)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("state: encode %v document: %w", f, err)
	}
	_, err = w.Write(data)
	return err
}
