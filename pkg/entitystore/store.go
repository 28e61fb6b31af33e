// Package entitystore keeps one record per entity (a guild, a user, ...) in a single file.
//
// Records are loaded eagerly, handed out as shared pointers and created from a default
// factory the first time a key is looked up. Nothing is written back until Persist is called,
// either directly, through Update, or through a Flusher.
package entitystore

import (
	"slices"

	"go.uber.org/zap"
)

// Key is the type of an entity identifier. Keys are written as object keys, so numeric IDs
// end up as strings in the file.
type Key interface {
	~int64 | ~uint64 | ~string
}

// Store maps entity keys to records, backed by a file shaped as { key: record }.
type Store[K Key, T any] struct {
	file      *backing
	newRecord func() *T
	records   map[K]*T
}

// Open loads the store at path. newRecord builds the record returned for an unseen key;
// when nil a zero T is used. A missing or unreadable file fails with ErrIO and content that
// is not a mapping of records fails with ErrMalformedData.
func Open[K Key, T any](path string, newRecord func() *T, opts ...Option) (*Store[K, T], error) {
	if newRecord == nil {
		newRecord = func() *T { return new(T) }
	}

	file, _ := newBacking(path, opts)

	s := &Store[K, T]{
		file:      file,
		newRecord: newRecord,
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the backing file path.
func (s *Store[K, T]) Path() string {
	return s.file.path
}

// Reload replaces the in-memory mapping with the file content. Pointers handed out before
// the reload are no longer tracked.
func (s *Store[K, T]) Reload() error {
	var records map[K]*T
	if err := s.file.read(&records); err != nil {
		return err
	}

	if records == nil {
		records = make(map[K]*T)
	}

	dropNullRecords(records)

	s.file.mu.Lock()
	s.records = records
	s.file.mu.Unlock()

	s.file.logger.Info("loaded data file", zap.Int("records", len(records)))

	return nil
}

// Get returns the record for key, creating and caching a default one on a miss.
func (s *Store[K, T]) Get(key K) *T {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	return s.getLocked(key)
}

func (s *Store[K, T]) getLocked(key K) *T {
	if record := s.records[key]; record != nil {
		return record
	}

	record := s.newRecord()
	s.records[key] = record

	s.file.logger.Debug("created default record", zap.Any("key", key))

	return record
}

// With runs fn on the record for key while holding the store lock. Nothing is persisted.
func (s *Store[K, T]) With(key K, fn func(*T)) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	fn(s.getLocked(key))
}

// Update runs fn on the record for key and persists the whole mapping, as one step with
// respect to other calls on the store. When fn fails nothing is written and its error is
// returned; fn should leave the record untouched in that case.
func (s *Store[K, T]) Update(key K, fn func(*T) error) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if err := fn(s.getLocked(key)); err != nil {
		return err
	}

	return s.file.write(s.records)
}

// Persist overwrites the backing file with the current mapping.
func (s *Store[K, T]) Persist() error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	return s.file.write(s.records)
}

// Has reports whether key has a record, without creating one.
func (s *Store[K, T]) Has(key K) bool {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	return s.records[key] != nil
}

// Delete drops the record for key and reports whether there was one.
func (s *Store[K, T]) Delete(key K) bool {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	_, ok := s.records[key]
	delete(s.records, key)

	return ok
}

// Retain drops every record whose key keep rejects and returns how many were dropped.
func (s *Store[K, T]) Retain(keep func(K) bool) int {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	return retain(s.records, keep)
}

// Keys returns the keys currently held, sorted.
func (s *Store[K, T]) Keys() []K {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	return sortedKeys(s.records)
}

func (s *Store[K, T]) Len() int {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	return len(s.records)
}

// dropNullRecords removes keys stored as null, which count as absent.
func dropNullRecords[K Key, T any](records map[K]*T) {
	for key, record := range records {
		if record == nil {
			delete(records, key)
		}
	}
}

func retain[K Key, T any](records map[K]*T, keep func(K) bool) int {
	dropped := 0

	for key := range records {
		if !keep(key) {
			delete(records, key)
			dropped++
		}
	}

	return dropped
}

func sortedKeys[K Key, T any](records map[K]*T) []K {
	keys := make([]K, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}
