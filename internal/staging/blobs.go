// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package staging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// BlobStore keeps the raw payloads of staged files.
type BlobStore interface {
	Put(ctx context.Context, handle string, data []byte) error
	Get(ctx context.Context, handle string) ([]byte, error)
	Delete(ctx context.Context, handle string) error
}

// MemoryBlobs is an in-process BlobStore. It is the default when Valkey
// is not configured, and is what tests use.
type MemoryBlobs struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBlobs returns an empty in-memory blob store.
func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{data: make(map[string][]byte)}
}

func (m *MemoryBlobs) Put(_ context.Context, handle string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[handle] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBlobs) Get(_ context.Context, handle string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[handle]
	if !ok {
		return nil, ErrNotStaged
	}
	return data, nil
}

func (m *MemoryBlobs) Delete(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, handle)
	return nil
}

// Len returns the number of payloads held.
func (m *MemoryBlobs) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

const (
	// blobKeyPrefix namespaces staged payloads in Valkey.
	blobKeyPrefix = "staged:"

	// DefaultBlobTTL bounds how long an abandoned payload can outlive its session.
	DefaultBlobTTL = 6 * time.Hour
)

// ValkeyBlobs stores staged payloads in Valkey with a TTL, so payloads of
// sessions that are never torn down still expire.
type ValkeyBlobs struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeyBlobs creates a Valkey-backed blob store.
func NewValkeyBlobs(client *redis.Client, ttl time.Duration) *ValkeyBlobs {
	if ttl == 0 {
		ttl = DefaultBlobTTL
	}
	return &ValkeyBlobs{client: client, ttl: ttl}
}

func (v *ValkeyBlobs) Put(ctx context.Context, handle string, data []byte) error {
	if err := v.client.Set(ctx, blobKeyPrefix+handle, data, v.ttl).Err(); err != nil {
		return fmt.Errorf("valkey put staged blob: %w", err)
	}
	return nil
}

func (v *ValkeyBlobs) Get(ctx context.Context, handle string) ([]byte, error) {
	data, err := v.client.Get(ctx, blobKeyPrefix+handle).Bytes()
	if err == redis.Nil {
		return nil, ErrNotStaged
	}
	if err != nil {
		return nil, fmt.Errorf("valkey get staged blob: %w", err)
	}
	return data, nil
}

func (v *ValkeyBlobs) Delete(ctx context.Context, handle string) error {
	if err := v.client.Del(ctx, blobKeyPrefix+handle).Err(); err != nil {
		return fmt.Errorf("valkey delete staged blob: %w", err)
	}
	return nil
}
