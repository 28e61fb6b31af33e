package entitystore

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
)

// CategoryStore maps (category, key) pairs to records, backed by a file shaped as
// { category: { key: record } }. Categories are never created by lookups.
type CategoryStore[K Key, T any] struct {
	file       *backing
	newRecord  func(category string) *T
	registered []string
	records    map[string]map[K]*T
}

// OpenCategories loads the category store at path. newRecord builds the record returned for
// an unseen key and is told which category it is for; when nil a zero T is used.
func OpenCategories[K Key, T any](path string, newRecord func(category string) *T, opts ...Option) (*CategoryStore[K, T], error) {
	if newRecord == nil {
		newRecord = func(string) *T { return new(T) }
	}

	file, o := newBacking(path, opts)

	s := &CategoryStore[K, T]{
		file:       file,
		newRecord:  newRecord,
		registered: slices.Compact(slices.Sorted(slices.Values(o.categories))),
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *CategoryStore[K, T]) Path() string {
	return s.file.path
}

// Reload replaces the in-memory mapping with the file content, then adds any registered
// category the file did not have.
func (s *CategoryStore[K, T]) Reload() error {
	var records map[string]map[K]*T
	if err := s.file.read(&records); err != nil {
		return err
	}

	if records == nil {
		records = make(map[string]map[K]*T)
	}

	for category, inner := range records {
		if len(s.registered) > 0 && !slices.Contains(s.registered, category) {
			return fmt.Errorf("%w: %s: unknown category %q", ErrMalformedData, s.file.path, category)
		}

		if inner == nil {
			records[category] = make(map[K]*T)
			continue
		}

		dropNullRecords(inner)
	}

	for _, category := range s.registered {
		if _, ok := records[category]; !ok {
			records[category] = make(map[K]*T)
		}
	}

	s.file.mu.Lock()
	s.records = records
	s.file.mu.Unlock()

	s.file.logger.Info("loaded data file", zap.Int("categories", len(records)))

	return nil
}

// Get returns the record for key within category, creating and caching a default one on a
// miss. It fails with ErrCategoryNotFound when the category does not exist.
func (s *CategoryStore[K, T]) Get(category string, key K) (*T, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	return s.getLocked(category, key)
}

func (s *CategoryStore[K, T]) getLocked(category string, key K) (*T, error) {
	inner, ok := s.records[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}

	if record := inner[key]; record != nil {
		return record, nil
	}

	record := s.newRecord(category)
	inner[key] = record

	s.file.logger.Debug("created default record", zap.String("category", category), zap.Any("key", key))

	return record, nil
}

// With runs fn on the record for (category, key) while holding the store lock. Nothing is persisted.
func (s *CategoryStore[K, T]) With(category string, key K, fn func(*T)) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	record, err := s.getLocked(category, key)
	if err != nil {
		return err
	}

	fn(record)

	return nil
}

// Update runs fn on the record for (category, key) and persists the whole mapping in one
// step. When fn fails nothing is written.
func (s *CategoryStore[K, T]) Update(category string, key K, fn func(*T) error) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	record, err := s.getLocked(category, key)
	if err != nil {
		return err
	}

	if err := fn(record); err != nil {
		return err
	}

	return s.file.write(s.records)
}

func (s *CategoryStore[K, T]) Persist() error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	return s.file.write(s.records)
}

// EnsureCategory creates an empty category. When categories were registered at Open, only
// those can be created.
func (s *CategoryStore[K, T]) EnsureCategory(category string) error {
	if len(s.registered) > 0 && !slices.Contains(s.registered, category) {
		return fmt.Errorf("%w: %q is not registered", ErrCategoryNotFound, category)
	}

	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if _, ok := s.records[category]; !ok {
		s.records[category] = make(map[K]*T)
	}

	return nil
}

func (s *CategoryStore[K, T]) HasCategory(category string) bool {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	_, ok := s.records[category]

	return ok
}

// Categories returns the category names, sorted.
func (s *CategoryStore[K, T]) Categories() []string {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	return slices.Sorted(maps.Keys(s.records))
}

// Has reports whether (category, key) has a record, without creating one.
func (s *CategoryStore[K, T]) Has(category string, key K) bool {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	return s.records[category][key] != nil
}

// Delete drops the record for (category, key) and reports whether there was one.
func (s *CategoryStore[K, T]) Delete(category string, key K) bool {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	inner, ok := s.records[category]
	if !ok {
		return false
	}

	_, ok = inner[key]
	delete(inner, key)

	return ok
}

// Retain drops every record of category whose key keep rejects and returns how many were dropped.
func (s *CategoryStore[K, T]) Retain(category string, keep func(K) bool) (int, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	inner, ok := s.records[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}

	return retain(inner, keep), nil
}

// Keys returns the keys held in category, sorted.
func (s *CategoryStore[K, T]) Keys(category string) ([]K, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	inner, ok := s.records[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}

	return sortedKeys(inner), nil
}
