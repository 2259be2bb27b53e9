package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// FileStore is a MemoryStore that writes a msgpack snapshot of every live key
// to disk after each mutation. Writes go through a temp file and a rename so a
// crash never leaves a torn snapshot.
type FileStore struct {
	*MemoryStore

	path string
	wmu  sync.Mutex // Serializes snapshot writes
}

// OpenFile loads the snapshot at path, creating an empty store if it does not exist.
func OpenFile(path string) (*FileStore, error) {
	fsx := &FileStore{MemoryStore: NewMemoryStore(), path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fsx, nil
	case err != nil:
		return nil, fmt.Errorf("kv: read %s: %w", path, err)
	}

	var entries map[string]entry
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("kv: decode %s: %w", path, err)
	}
	now := fsx.Now()
	for k, e := range entries {
		if !e.expired(now) {
			fsx.entries[k] = e
		}
	}
	return fsx, nil
}

// Put stores value under key and persists the snapshot.
func (f *FileStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := f.MemoryStore.Put(ctx, key, value, ttl); err != nil {
		return err
	}
	return f.save()
}

// Delete removes key and persists the snapshot.
func (f *FileStore) Delete(ctx context.Context, key string) error {
	if err := f.MemoryStore.Delete(ctx, key); err != nil {
		return err
	}
	return f.save()
}

// Path returns the snapshot location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) save() error {
	f.wmu.Lock()
	defer f.wmu.Unlock()

	f.mu.Lock()
	now := f.Now()
	snapshot := make(map[string]entry, len(f.entries))
	for k, e := range f.entries {
		if !e.expired(now) {
			snapshot[k] = e
		}
	}
	f.mu.Unlock()

	data, err := msgpack.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("kv: encode: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("kv: write %s: %w", f.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("kv: write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kv: write %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("kv: write %s: %w", f.path, err)
	}
	return nil
}
