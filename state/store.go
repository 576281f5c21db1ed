package state

import (
	"sync"

	"github.com/google/uuid"
)

// Store owns a Document and versions every mutation.
//
// Readers take deep-copied snapshots; writers mutate through Update. Each
// Update bumps the version by one and notifies subscribers after the lock
// is released, so a subscriber may call back into the store.
//
// Thread safety: all methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	doc     Document
	version uint64

	subMu  sync.Mutex
	subs   map[int]func(uint64)
	nextID int
}

// NewStore returns a store holding doc at version 1.
func NewStore(doc Document) *Store {
	return &Store{
		doc:     doc.Clone(),
		version: 1,
		subs:    make(map[int]func(uint64)),
	}
}

// Snapshot returns a deep copy of the document and the version it was
// taken at.
func (s *Store) Snapshot() (Document, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), s.version
}

// Version returns the current version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Update applies fn to the document under the write lock and returns the
// new version.
func (s *Store) Update(fn func(*Document)) uint64 {
	s.mu.Lock()
	fn(&s.doc)
	s.version++
	v := s.version
	s.mu.Unlock()

	s.notify(v)
	return v
}

// Set replaces the whole document.
func (s *Store) Set(doc Document) uint64 {
	doc = doc.Clone()
	return s.Update(func(d *Document) { *d = doc })
}

// Subscribe registers fn to be called with the new version after every
// mutation. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(version uint64)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(v uint64) {
	s.subMu.Lock()
	fns := make([]func(uint64), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// AddDrawingPath commits a finished stroke and returns its id. An empty
// stroke is ignored and reports an empty id.
func (s *Store) AddDrawingPath(points []DrawingPoint) string {
	if len(points) == 0 {
		return ""
	}
	path := DrawingPath{
		ID:     uuid.NewString(),
		Points: append([]DrawingPoint(nil), points...),
	}
	s.Update(func(d *Document) { d.Drawings = append(d.Drawings, path) })
	return path.ID
}

// ClearDrawings removes every committed stroke.
func (s *Store) ClearDrawings() {
	s.Update(func(d *Document) { d.Drawings = nil })
}

func ensureID(id *string) string {
	if *id == "" {
		*id = uuid.NewString()
	}
	return *id
}

// AddBackgroundImage appends l and returns its id, assigning one if empty.
func (s *Store) AddBackgroundImage(l BackgroundImageLayer) string {
	id := ensureID(&l.ID)
	s.Update(func(d *Document) { d.BackgroundImages = append(d.BackgroundImages, l) })
	return id
}

// AddShape appends l and returns its id, assigning one if empty.
func (s *Store) AddShape(l ShapeLayer) string {
	id := ensureID(&l.ID)
	s.Update(func(d *Document) { d.Shapes = append(d.Shapes, l) })
	return id
}

// AddText appends l and returns its id, assigning one if empty.
func (s *Store) AddText(l TextLayer) string {
	id := ensureID(&l.ID)
	s.Update(func(d *Document) { d.Texts = append(d.Texts, l) })
	return id
}

// AddClone appends c and returns its id, assigning one if empty.
func (s *Store) AddClone(c ForegroundClone) string {
	id := ensureID(&c.ID)
	s.Update(func(d *Document) { d.Clones = append(d.Clones, c) })
	return id
}

// UpdateLayer replaces the layer whose id matches the id of layer. Layer
// must be one of the layer record types. It reports whether a layer was
// replaced; no version is consumed otherwise.
func (s *Store) UpdateLayer(layer any) bool {
	s.mu.Lock()
	ok := false
	switch l := layer.(type) {
	case BackgroundImageLayer:
		ok = replace(s.doc.BackgroundImages, l, func(x BackgroundImageLayer) string { return x.ID })
	case ShapeLayer:
		ok = replace(s.doc.Shapes, l, func(x ShapeLayer) string { return x.ID })
	case TextLayer:
		ok = replace(s.doc.Texts, l, func(x TextLayer) string { return x.ID })
	case ForegroundClone:
		ok = replace(s.doc.Clones, l, func(x ForegroundClone) string { return x.ID })
	}
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.version++
	v := s.version
	s.mu.Unlock()

	s.notify(v)
	return true
}

// RemoveLayer deletes the layer with the given id from whichever array
// holds it, and reports whether one was found.
func (s *Store) RemoveLayer(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	n := 0
	s.doc.BackgroundImages, n = remove(s.doc.BackgroundImages, id, n, func(x BackgroundImageLayer) string { return x.ID })
	s.doc.Shapes, n = remove(s.doc.Shapes, id, n, func(x ShapeLayer) string { return x.ID })
	s.doc.Texts, n = remove(s.doc.Texts, id, n, func(x TextLayer) string { return x.ID })
	s.doc.Clones, n = remove(s.doc.Clones, id, n, func(x ForegroundClone) string { return x.ID })
	s.doc.Drawings, n = remove(s.doc.Drawings, id, n, func(x DrawingPath) string { return x.ID })
	if n == 0 {
		s.mu.Unlock()
		return false
	}
	s.version++
	v := s.version
	s.mu.Unlock()

	s.notify(v)
	return true
}

func replace[T any](items []T, item T, id func(T) string) bool {
	want := id(item)
	if want == "" {
		return false
	}
	for i := range items {
		if id(items[i]) == want {
			items[i] = item
			return true
		}
	}
	return false
}

func remove[T any](items []T, want string, n int, id func(T) string) ([]T, int) {
	out := items[:0]
	for _, it := range items {
		if id(it) == want {
			n++
			continue
		}
		out = append(out, it)
	}
	return out, n
}
