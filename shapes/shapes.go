// Package shapes maps shape-type keys to vector outlines.
//
// Outlines are SVG path data in a 1000-unit design space centred on the
// origin, so a shape spans [-500, 500] on its longest axis. The compositor
// scales that space to the canvas and never mutates registered paths.
package shapes

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gg"
)

// DesignSize is the extent of the shape design space.
const DesignSize = 1000

var (
	// ErrDuplicate is returned when registering a name twice.
	ErrDuplicate = errors.New("shapes: duplicate shape")

	// ErrEmptyName is returned when registering a shape without a name.
	ErrEmptyName = errors.New("shapes: empty shape name")
)

// builtin lists the shapes every Default registry starts with.
var builtin = map[string]string{
	"circle":    "M 0 -500 A 500 500 0 1 1 0 500 A 500 500 0 1 1 0 -500 Z",
	"square":    "M -500 -500 H 500 V 500 H -500 Z",
	"rectangle": "M -500 -300 H 500 V 300 H -500 Z",
	"triangle":  "M 0 -500 L 500 433 L -500 433 Z",
	"diamond":   "M 0 -500 L 500 0 L 0 500 L -500 0 Z",
	"pentagon":  "M 0 -500 L 475.53 -154.51 L 293.89 404.51 L -293.89 404.51 L -475.53 -154.51 Z",
	"hexagon":   "M 0 -500 L 433.01 -250 L 433.01 250 L 0 500 L -433.01 250 L -433.01 -250 Z",
	"star": "M 0 -500 L 117.56 -161.8 L 475.53 -154.51 L 190.21 61.8 L 293.89 404.51 " +
		"L 0 200 L -293.89 404.51 L -190.21 61.8 L -475.53 -154.51 L -117.56 -161.8 Z",
	"heart": "M 0 450 C -500 100 -450 -500 0 -250 C 450 -500 500 100 0 450 Z",
	"arrow": "M -500 -150 H 100 V -400 L 500 0 L 100 400 V 150 H -500 Z",
	"cross": "M -150 -500 H 150 V -150 H 500 V 150 H 150 V 500 H -150 V 150 H -500 V -150 H -150 Z",
}

// Registry is a concurrency-safe name -> outline table.
type Registry struct {
	mu    sync.RWMutex
	paths map[string]*gg.Path
	data  map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		paths: make(map[string]*gg.Path),
		data:  make(map[string]string),
	}
}

// Default returns a new registry holding the built-in shapes.
func Default() *Registry {
	r := NewRegistry()
	if err := r.RegisterAll(builtin); err != nil {
		panic(err)
	}
	return r
}

// Register parses d as SVG path data and stores it under name.
func (r *Registry) Register(name, d string) error {
	if name == "" {
		return ErrEmptyName
	}
	p, err := gg.ParseSVGPath(d)
	if err != nil {
		return fmt.Errorf("shapes: parse %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.paths[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	r.paths[name] = p
	r.data[name] = d
	return nil
}

// RegisterAll registers every entry of defs in name order and stops at the
// first error.
func (r *Registry) RegisterAll(defs map[string]string) error {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.Register(name, defs[name]); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the outline registered under name. The returned path is
// shared and must be treated as read-only.
func (r *Registry) Lookup(name string) (*gg.Path, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.paths[name]
	return p, ok
}

// Data returns the SVG path data registered under name.
func (r *Registry) Data(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.data[name]
	return d, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.paths))
	for name := range r.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
