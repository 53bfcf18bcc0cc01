package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sparkcrackers/storefront/pkg/cache"
	"github.com/sparkcrackers/storefront/pkg/storage"
)

// ── memory ──────────────────────────────────────────────────────────────────

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// ── disk ────────────────────────────────────────────────────────────────────

// DiskStore keeps each key as a file named dir/key on a storage disk.
type DiskStore struct {
	disk storage.Disk
	dir  string
}

func NewDisk(disk storage.Disk, dir string) *DiskStore {
	return &DiskStore{disk: disk, dir: dir}
}

func (d *DiskStore) path(key string) string {
	if d.dir == "" {
		return key
	}
	return d.dir + "/" + key
}

func (d *DiskStore) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := d.disk.Get(ctx, d.path(key))
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session/disk: %w", err)
	}
	return string(data), true, nil
}

func (d *DiskStore) Set(ctx context.Context, key, value string) error {
	if err := d.disk.Put(ctx, d.path(key), []byte(value)); err != nil {
		return fmt.Errorf("session/disk: %w", err)
	}
	return nil
}

func (d *DiskStore) Delete(ctx context.Context, keys ...string) error {
	var errs []error
	for _, k := range keys {
		if err := d.disk.Delete(ctx, d.path(k)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("session/disk: %w", errors.Join(errs...))
	}
	return nil
}

// ── redis ───────────────────────────────────────────────────────────────────

// RedisStore keeps each key under prefix+key without expiry.
type RedisStore struct {
	c      *cache.Store
	prefix string
}

func NewRedis(c *cache.Store, prefix string) *RedisStore {
	return &RedisStore{c: c, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	return r.c.GetString(ctx, r.prefix+key)
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return r.c.SetString(ctx, r.prefix+key, value, 0)
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.c.Del(ctx, full...)
}
