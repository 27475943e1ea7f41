package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/lox/casino/internal/fileutil"
)

// File keeps all values in a single JSON document that is rewritten
// atomically on every PutAll.
type File struct {
	path   string
	mu     sync.Mutex
	values map[string]int64
}

// OpenFile loads path, creating an empty store if the file does not exist.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("file store requires a path")
	}

	f := &File{path: path, values: make(map[string]int64)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("read store %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.values); err != nil {
			return nil, fmt.Errorf("decode store %s: %w", path, err)
		}
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *File) PutAll(ctx context.Context, values map[string]int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.values)
	maps.Copy(next, values)

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := fileutil.WriteFileAtomic(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write store %s: %w", f.path, err)
	}

	f.values = next
	return nil
}

func (f *File) Close() error { return nil }
