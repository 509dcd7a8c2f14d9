// Package records implements the per-file record cache: point lookups
// for tags and metadata, plus a content-change stream consumed by the
// projection engine.
package records

import (
	"sort"
	"sync"
	"time"

	"notenav/pkg/types"
)

// FieldSet marks which conceptual fields of a record changed.
type FieldSet uint8

const (
	FieldContent FieldSet = 1 << iota
	FieldTags
	FieldMetadata
)

// Has reports whether the set includes the given field.
func (f FieldSet) Has(field FieldSet) bool {
	return f&field != 0
}

// Record is the cached state of one file.
type Record struct {
	Path     string
	Tags     []string // normalized: lower-cased, no leading '#'
	Hidden   bool     // frontmatter hidden flag
	Created  time.Time
	Modified time.Time
	Size     int64
}

// File returns the lightweight handle for the record.
func (r *Record) File() *types.File {
	return &types.File{Path: r.Path, Created: r.Created, Modified: r.Modified, Size: r.Size}
}

// Change is one content-change notification.
type Change struct {
	Path   string
	Fields FieldSet
}

// Store is an in-memory record cache with change subscriptions. All
// mutation happens synchronously inside its methods.
type Store struct {
	mu           sync.RWMutex
	records      map[string]*Record
	listeners    map[int]func(Change)
	nextListener int
}

// NewStore creates an empty record store.
func NewStore() *Store {
	return &Store{
		records:   make(map[string]*Record),
		listeners: make(map[int]func(Change)),
	}
}

// Put inserts or replaces a record, normalizing its tags, and notifies
// subscribers with the fields that actually changed. Inserting a new
// record reports all fields changed.
func (s *Store) Put(rec Record) {
	normalized := make([]string, 0, len(rec.Tags))
	for _, tag := range rec.Tags {
		if t := types.NormalizeTag(tag); t != "" {
			normalized = append(normalized, t)
		}
	}
	rec.Tags = normalized

	s.mu.Lock()
	prev, existed := s.records[rec.Path]
	stored := rec
	s.records[rec.Path] = &stored
	s.mu.Unlock()

	var fields FieldSet
	if !existed {
		fields = FieldContent | FieldTags | FieldMetadata
	} else {
		if !tagsEqual(prev.Tags, stored.Tags) {
			fields |= FieldTags
		}
		if prev.Hidden != stored.Hidden || !prev.Modified.Equal(stored.Modified) || !prev.Created.Equal(stored.Created) {
			fields |= FieldMetadata
		}
		if prev.Size != stored.Size || !prev.Modified.Equal(stored.Modified) {
			fields |= FieldContent
		}
	}
	if fields != 0 {
		s.notify(Change{Path: rec.Path, Fields: fields})
	}
}

// Delete removes a record if present.
func (s *Store) Delete(path string) {
	s.mu.Lock()
	_, existed := s.records[path]
	delete(s.records, path)
	s.mu.Unlock()

	if existed {
		s.notify(Change{Path: path, Fields: FieldContent | FieldMetadata})
	}
}

// Rename moves a record to a new path, keeping its cached state.
func (s *Store) Rename(oldPath, newPath string) {
	s.mu.Lock()
	rec, existed := s.records[oldPath]
	if existed {
		delete(s.records, oldPath)
		moved := *rec
		moved.Path = newPath
		s.records[newPath] = &moved
	}
	s.mu.Unlock()

	if existed {
		s.notify(Change{Path: oldPath, Fields: FieldMetadata})
		s.notify(Change{Path: newPath, Fields: FieldMetadata})
	}
}

// Record returns a copy of the cached record for a path.
func (s *Store) Record(path string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[path]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Tags returns the normalized tags cached for a path, nil when the path
// is unknown or untagged.
func (s *Store) Tags(path string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[path]
	if !ok {
		return nil
	}
	return rec.Tags
}

// Files returns a path-ordered snapshot of all cached files. Ordering is
// fixed so callers never observe map iteration order.
func (s *Store) Files() []*types.File {
	s.mu.RLock()
	files := make([]*types.File, 0, len(s.records))
	for _, rec := range s.records {
		files = append(files, rec.File())
	}
	s.mu.RUnlock()

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// Len returns the number of cached records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Subscribe registers a change listener and returns its unsubscribe
// closure. Listeners run synchronously on the mutating call.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(change Change) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}

func tagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
