// Package fonts resolves CSS-style font descriptors to gg text faces.
//
// A Registry starts with the bundled Go and Latin Modern families. User
// font directories and installed system fonts are consulted when a family
// is first loaded. Loads are deduplicated per descriptor, and sized faces
// are kept in a bounded LRU cache.
//
// Rendering code calls Face, which never blocks on disk or a system scan:
// a family that has not been loaded yet resolves to the fallback family.
package fonts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10regular"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/compose/internal/lru"
)

var (
	// ErrUnknownFamily is returned by Load when no source provides a family.
	ErrUnknownFamily = errors.New("fonts: unknown font family")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("fonts: registry is closed")
)

// source is one font file or blob providing a family at one weight.
type source struct {
	id     string
	family string // normalised
	weight int
	path   string
	index  int
	data   []byte
}

type faceKey struct {
	id   string
	size float64
}

// Registry maps descriptors to faces.
//
// Thread safety: all methods are safe for concurrent use.
type Registry struct {
	opts options

	mu       sync.Mutex
	families map[string][]*source
	aliases  map[string]string
	parsed   map[string]*text.FontSource
	closed   bool

	faces   *lru.Cache[faceKey, text.Face]
	group   singleflight.Group
	dirOnce sync.Once
	sysOnce sync.Once
	sysErr  error
}

// New returns a registry holding the bundled families.
func New(opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	r := &Registry{
		opts:     o,
		families: make(map[string][]*source),
		parsed:   make(map[string]*text.FontSource),
		aliases: map[string]string{
			normalize("sans-serif"): normalize("Go"),
			normalize("system-ui"):  normalize("Go"),
			normalize("serif"):      normalize("Latin Modern Roman"),
			normalize("monospace"):  normalize("Go Mono"),
		},
		faces: lru.New[faceKey, text.Face](o.faceCache),
	}

	bundled := []struct {
		family string
		weight int
		data   []byte
	}{
		{"Go", 400, goregular.TTF},
		{"Go", 500, gomedium.TTF},
		{"Go", 700, gobold.TTF},
		{"Go Mono", 400, gomono.TTF},
		{"Go Mono", 700, gomonobold.TTF},
		{"Latin Modern Roman", 400, lmroman10regular.TTF},
		{"Latin Modern Roman", 700, lmroman10bold.TTF},
		{"Latin Modern Sans", 400, lmsans10regular.TTF},
		{"Latin Modern Sans", 700, lmsans10bold.TTF},
		{"Latin Modern Mono", 400, lmmono10regular.TTF},
	}
	for _, b := range bundled {
		r.add(&source{
			id:     fmt.Sprintf("bundled:%s:%d", normalize(b.family), b.weight),
			family: normalize(b.family),
			weight: b.weight,
			data:   b.data,
		})
	}
	return r
}

// add registers src. Callers must hold r.mu or own r exclusively.
func (r *Registry) add(src *source) {
	for _, s := range r.families[src.family] {
		if s.id == src.id {
			return
		}
	}
	r.families[src.family] = append(r.families[src.family], src)
}

// RegisterData adds font data for family at weight.
func (r *Registry) RegisterData(family string, weight int, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("fonts: empty data for %q", family)
	}
	src := &source{
		id:     fmt.Sprintf("data:%s:%d", normalize(family), weight),
		family: normalize(family),
		weight: weight,
		data:   append([]byte(nil), data...),
	}
	return r.register(src)
}

// RegisterFile adds the font file at path for family at weight. The file
// is parsed on first use.
func (r *Registry) RegisterFile(family string, weight int, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("fonts: %w", err)
	}
	return r.register(&source{
		id:     "file:" + path,
		family: normalize(family),
		weight: weight,
		path:   path,
	})
}

func (r *Registry) register(src *source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.add(src)
	return nil
}

// Families returns the normalised names of every known family.
func (r *Registry) Families() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.families))
	for f := range r.families {
		out = append(out, f)
	}
	return out
}

// Load makes the family of d available, consulting font directories and
// system fonts when it is not known yet, and parses the best matching
// source. Concurrent loads of the same descriptor share one attempt.
func (r *Registry) Load(ctx context.Context, d Descriptor) error {
	ch := r.group.DoChan(d.String(), func() (any, error) {
		return nil, r.load(d)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) load(d Descriptor) error {
	family := r.resolveFamily(d.Family)

	r.mu.Lock()
	closed := r.closed
	_, known := r.families[family]
	r.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if !known {
		r.dirOnce.Do(r.scanDirs)
		if !r.knows(family) && r.opts.system {
			r.sysOnce.Do(func() { r.sysErr = r.scanSystem() })
			if r.sysErr != nil {
				r.opts.logger.Warn("fonts: system font scan failed", "err", r.sysErr)
			}
		}
		if !r.knows(family) {
			return fmt.Errorf("%w: %q", ErrUnknownFamily, d.Family)
		}
	}

	_, err := r.face(d, family)
	return err
}

func (r *Registry) knows(family string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.families[family]
	return ok
}

func (r *Registry) resolveFamily(family string) string {
	f := normalize(family)
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.aliases[f]; ok {
		return a
	}
	return f
}

// Face returns a face for d. A family that is not registered resolves to
// the fallback family; Face never touches the file system for discovery.
func (r *Registry) Face(d Descriptor) (text.Face, error) {
	family := r.resolveFamily(d.Family)
	if !r.knows(family) {
		r.opts.logger.Debug("fonts: family not loaded, using fallback", "family", d.Family, "fallback", r.opts.fallback)
		family = normalize(r.opts.fallback)
	}
	return r.face(d, family)
}

func (r *Registry) face(d Descriptor, family string) (text.Face, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	src := pick(r.families[family], d.weight())
	r.mu.Unlock()
	if src == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, d.Family)
	}

	size := d.Size
	if size <= 0 {
		size = 16
	}
	key := faceKey{id: src.id, size: size}
	if f, ok := r.faces.Get(key); ok {
		return f, nil
	}

	fs, err := r.fontSource(src)
	if err != nil {
		return nil, err
	}
	f := fs.Face(size)
	r.faces.Set(key, f)
	return f, nil
}

// fontSource parses src once.
func (r *Registry) fontSource(src *source) (*text.FontSource, error) {
	r.mu.Lock()
	fs, ok := r.parsed[src.id]
	r.mu.Unlock()
	if ok {
		return fs, nil
	}

	v, err, _ := r.group.Do("parse:"+src.id, func() (any, error) {
		var opts []text.SourceOption
		if src.index > 0 {
			opts = append(opts, text.WithCollectionIndex(src.index))
		}
		if src.path != "" {
			return text.NewFontSourceFromFile(src.path, opts...)
		}
		return text.NewFontSource(src.data, opts...)
	})
	if err != nil {
		return nil, fmt.Errorf("fonts: parse %s: %w", src.id, err)
	}
	fs = v.(*text.FontSource)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		_ = fs.Close()
		return nil, ErrClosed
	}
	if prev, ok := r.parsed[src.id]; ok {
		return prev, nil
	}
	r.parsed[src.id] = fs
	return fs, nil
}

// pick returns the source whose weight is closest to weight, preferring
// the heavier one on ties.
func pick(sources []*source, weight int) *source {
	var best *source
	bestDist := math.MaxInt
	for _, s := range sources {
		dist := s.weight - weight
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist || (dist == bestDist && best != nil && s.weight > best.weight) {
			best, bestDist = s, dist
		}
	}
	return best
}

var weightWords = []struct {
	word   string
	weight int
}{
	{"extrabold", 800},
	{"semibold", 600},
	{"bold", 700},
	{"black", 900},
	{"medium", 500},
	{"extralight", 200},
	{"light", 300},
	{"thin", 100},
}

// scanDirs registers font files from the configured directories. The
// family is taken from the file name up to the first '-' or '_'.
func (r *Registry) scanDirs() {
	for _, dir := range r.opts.dirs {
		err := filepath.WalkDir(dir, func(path string, e os.DirEntry, err error) error {
			if err != nil || e.IsDir() {
				return err
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".ttf" && ext != ".otf" && ext != ".ttc" {
				return nil
			}
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			family, style, _ := strings.Cut(strings.NewReplacer("_", "-").Replace(base), "-")
			weight := 400
			lower := strings.ToLower(style)
			for _, w := range weightWords {
				if strings.Contains(lower, w.word) {
					weight = w.weight
					break
				}
			}
			if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
				return nil
			}
			r.mu.Lock()
			r.add(&source{id: "file:" + path, family: normalize(family), weight: weight, path: path})
			r.mu.Unlock()
			return nil
		})
		if err != nil {
			r.opts.logger.Warn("fonts: scan directory", "dir", dir, "err", err)
		}
	}
}

// scanSystem registers every upright installed font.
func (r *Registry) scanSystem() error {
	footprints, err := fontscan.SystemFonts(scanLogger{r.opts.logger}, r.opts.cacheDir)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, fp := range footprints {
		if fp.Aspect.Style == font.StyleItalic {
			continue
		}
		weight := int(fp.Aspect.Weight)
		if weight == 0 {
			weight = 400
		}
		r.add(&source{
			id:     fmt.Sprintf("system:%s:%d", fp.Location.File, fp.Location.Index),
			family: fp.Family,
			weight: weight,
			path:   fp.Location.File,
			index:  int(fp.Location.Index),
		})
		n++
	}
	r.opts.logger.Info("fonts: system fonts indexed", "faces", n)
	return nil
}

// Close releases every parsed font. Later calls fail with ErrClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.faces.Clear()
	var errs []error
	for id, fs := range r.parsed {
		if err := fs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("fonts: close %s: %w", id, err))
		}
	}
	r.parsed = nil
	return errors.Join(errs...)
}
