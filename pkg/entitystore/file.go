package entitystore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// pathLocks serializes reads and writes of the same file across store handles.
var pathLocks sync.Map

func lockPath(path string) func() {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	value, _ := pathLocks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}

// backing is the file half shared by Store and CategoryStore.
type backing struct {
	path   string
	codec  Codec
	logger *zap.Logger

	// mu guards the owning store's in-memory mapping.
	mu sync.Mutex
}

func newBacking(path string, opts []Option) (*backing, *options) {
	o := &options{
		codec:  JSON,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return &backing{
		path:   path,
		codec:  o.codec,
		logger: o.logger.With(zap.String("path", path)),
	}, o
}

func (b *backing) read(v any) error {
	unlock := lockPath(b.path)
	defer unlock()

	data, err := os.ReadFile(b.path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrIO, b.path, err)
	}

	// an empty file holds an empty mapping
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := b.codec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrMalformedData, b.path, err)
	}

	return nil
}

func (b *backing) write(v any) error {
	data, err := b.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", b.path, err)
	}

	unlock := lockPath(b.path)
	defer unlock()

	if err := writeFileAtomic(b.path, data); err != nil {
		return err
	}

	b.logger.Debug("persisted data file", zap.Int("bytes", len(data)))

	return nil
}

// writeFileAtomic replaces path with data through a synced temporary file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file for %s: %w", ErrIO, path, err)
	}

	tmpPath := tmp.Name()

	fail := func(step string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("%w: %s for %s: %w", ErrIO, step, path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("writing temp file", err)
	}

	if err := tmp.Chmod(0o644); err != nil {
		return fail("setting temp file mode", err)
	}

	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: closing temp file for %s: %w", ErrIO, path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming temp file to %s: %w", ErrIO, path, err)
	}

	return nil
}

// EnsureFile creates path, and its parent directories, holding an empty mapping when it does not exist yet.
// It reports whether the file was created.
func EnsureFile(path string, codec Codec) (bool, error) {
	if codec == nil {
		codec = JSON
	}

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: checking %s: %w", ErrIO, path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("%w: creating directory for %s: %w", ErrIO, path, err)
	}

	data, err := codec.Marshal(map[string]any{})
	if err != nil {
		return false, fmt.Errorf("encoding empty mapping: %w", err)
	}

	unlock := lockPath(path)
	defer unlock()

	if err := writeFileAtomic(path, data); err != nil {
		return false, err
	}

	return true, nil
}
