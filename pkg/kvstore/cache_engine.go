package kvstore

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/patrickmn/go-cache"
)

const (
	entrySuffix = ".entry"
	tempSuffix  = ".tmp"
)

// CacheEngine keeps entries in a go-cache instance without expiration and
// persists them under a snapshot directory, one file per key. Flush only
// rewrites the keys changed since the previous flush. An empty path keeps
// the engine memory only.
type CacheEngine struct {
	cache       *cache.Cache
	snapshotDir string
	closed      atomic.Bool

	mu    sync.Mutex
	dirty map[string]struct{}
}

func NewCacheEngine(snapshotDir string) (*CacheEngine, error) {
	e := &CacheEngine{
		cache:       cache.New(cache.NoExpiration, 0),
		snapshotDir: snapshotDir,
		dirty:       make(map[string]struct{}),
	}
	if snapshotDir == "" {
		return e, nil
	}
	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

func entryFile(key string) string {
	return hex.EncodeToString([]byte(key)) + entrySuffix
}

func (e *CacheEngine) load() error {
	entries, err := os.ReadDir(e.snapshotDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open snapshot directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, entrySuffix) {
			continue
		}
		key, err := hex.DecodeString(strings.TrimSuffix(name, entrySuffix))
		if err != nil {
			continue
		}
		value, err := os.ReadFile(filepath.Join(e.snapshotDir, name))
		if err != nil {
			return fmt.Errorf("failed to load snapshot entry %s: %w", name, err)
		}
		e.cache.Set(string(key), value, cache.NoExpiration)
	}
	return nil
}

func (e *CacheEngine) markDirty(keys ...string) {
	if e.snapshotDir == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, k := range keys {
		e.dirty[k] = struct{}{}
	}
}

func (e *CacheEngine) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if e.closed.Load() {
		return nil, false, ErrClosed
	}
	v, found := e.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, true, nil
}

func (e *CacheEngine) Set(ctx context.Context, key string, value []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	e.cache.Set(key, stored, cache.NoExpiration)
	e.markDirty(key)
	return nil
}

func (e *CacheEngine) Delete(ctx context.Context, keys ...string) error {
	if e.closed.Load() {
		return ErrClosed
	}
	for _, k := range keys {
		e.cache.Delete(k)
	}
	e.markDirty(keys...)
	return nil
}

func (e *CacheEngine) Keys(ctx context.Context, prefix string) ([]string, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	keys := make([]string, 0)
	for k := range e.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Flush writes every changed key through a temp file so a crash never
// leaves a truncated entry behind. Keys that failed stay dirty.
func (e *CacheEngine) Flush(ctx context.Context) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.flush()
}

func (e *CacheEngine) flush() error {
	if e.snapshotDir == "" {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.dirty) == 0 {
		return nil
	}

	if err := os.MkdirAll(e.snapshotDir, 0750); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	for key := range e.dirty {
		if err := e.persist(key); err != nil {
			return err
		}
		delete(e.dirty, key)
	}
	return nil
}

// persist must be called with mu held.
func (e *CacheEngine) persist(key string) error {
	path := filepath.Join(e.snapshotDir, entryFile(key))

	v, found := e.cache.Get(key)
	if !found {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove snapshot entry: %w", err)
		}
		return nil
	}

	tmp, err := os.CreateTemp(e.snapshotDir, entryFile(key)+".*"+tempSuffix)
	if err != nil {
		return fmt.Errorf("failed to create snapshot entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(v.([]byte)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot entry: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func (e *CacheEngine) Ping(ctx context.Context) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (e *CacheEngine) Close() error {
	if e.closed.Load() {
		return nil
	}
	err := e.flush()
	e.closed.Store(true)
	return err
}
