// Package session is durable client-side storage for the shopper session.
//
// The storefront keeps exactly two keys, "token" and "user", and always
// writes or clears them together. A Store is a flat string map with three
// drivers:
//
//	disk    one file per key on a storage.Disk (local directory or S3)
//	redis   one Redis key per entry, namespaced by a prefix
//	memory  process-local, for tests and one-shot commands
//
// Open builds the configured driver and seals the token with pkg/crypt.
package session

import (
	"context"
	"fmt"

	"github.com/sparkcrackers/storefront/config"
	"github.com/sparkcrackers/storefront/pkg/cache"
	"github.com/sparkcrackers/storefront/pkg/crypt"
	"github.com/sparkcrackers/storefront/pkg/storage"
)

// Durable keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is durable key/value storage for session data.
type Store interface {
	// Get returns the value at key. A missing key is ("", false, nil).
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// Open returns the store selected by SESSION_DRIVER with the token sealed.
func Open() (Store, error) {
	var (
		st  Store
		err error
	)

	switch config.SessionDriver() {
	case "memory":
		st = NewMemory()
	case "redis":
		c, cerr := cache.Connect(config.RedisAddr(), config.RedisPassword())
		if cerr != nil {
			return nil, fmt.Errorf("session: %w", cerr)
		}
		st = NewRedis(c, config.Get("SESSION_PREFIX", "storefront:session:"))
	default:
		var disk storage.Disk
		if name := config.Get("SESSION_DISK", "local"); name == "s3" {
			disk, err = storage.Open(name)
		} else {
			disk, err = storage.NewLocal(config.SessionPath(), "")
		}
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		st = NewDisk(disk, "")
	}

	box, err := crypt.Default()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return Sealed(st, box, KeyToken), nil
}

// Sealed wraps inner so the listed keys are encrypted with box at rest.
// A value that no longer opens (rotated key, tampering) reads as missing.
func Sealed(inner Store, box *crypt.Box, keys ...string) Store {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return &sealed{inner: inner, box: box, keys: set}
}

type sealed struct {
	inner Store
	box   *crypt.Box
	keys  map[string]bool
}

func (s *sealed) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok || !s.keys[key] {
		return v, ok, err
	}
	plain, err := s.box.OpenString(v)
	if err != nil {
		return "", false, nil
	}
	return plain, true, nil
}

func (s *sealed) Set(ctx context.Context, key, value string) error {
	if s.keys[key] {
		enc, err := s.box.SealString(value)
		if err != nil {
			return fmt.Errorf("session: seal %s: %w", key, err)
		}
		value = enc
	}
	return s.inner.Set(ctx, key, value)
}

func (s *sealed) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, keys...)
}
