// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// query.go caches decoded-ready REST responses in Valkey. Every entry is
// filed under a tag (posts, tags, users, ...) and a mutation drops every
// entry of its tag at once, so dashboard lists never outlive a write.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// queryKeyPrefix is the Valkey key prefix for cached responses.
	queryKeyPrefix = "query:"

	// tagKeyPrefix prefixes the set holding every key filed under a tag.
	tagKeyPrefix = "qtag:"

	// DefaultQueryTTL is how long a cached response stays valid.
	DefaultQueryTTL = 30 * time.Second
)

// QueryCache is a Valkey-backed response cache with tag invalidation.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQueryCache creates a query cache backed by the given Valkey client.
func NewQueryCache(client *redis.Client, ttl time.Duration) *QueryCache {
	if ttl == 0 {
		ttl = DefaultQueryTTL
	}
	return &QueryCache{client: client, ttl: ttl}
}

// Get returns the cached body for key. Errors are logged and reported as a miss.
func (qc *QueryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := qc.client.Get(ctx, queryKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("query cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("query cache hit", "key", key)
	return val, true
}

// Set stores body under key and files the key under tag. The tag set lives
// a little longer than its members so it never drops a live key.
func (qc *QueryCache) Set(ctx context.Context, tag, key string, body []byte) {
	tagKey := tagKeyPrefix + tag
	_, err := qc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, queryKeyPrefix+key, body, qc.ttl)
		pipe.SAdd(ctx, tagKey, key)
		pipe.Expire(ctx, tagKey, 2*qc.ttl)
		return nil
	})
	if err != nil {
		slog.Warn("query cache set error", "tag", tag, "key", key, "error", err)
	}
}

// Invalidate removes every entry filed under the given tags.
func (qc *QueryCache) Invalidate(ctx context.Context, tags ...string) {
	for _, tag := range tags {
		tagKey := tagKeyPrefix + tag
		members, err := qc.client.SMembers(ctx, tagKey).Result()
		if err != nil {
			slog.Warn("query cache tag lookup error", "tag", tag, "error", err)
			continue
		}
		keys := make([]string, 0, len(members)+1)
		for _, m := range members {
			keys = append(keys, queryKeyPrefix+m)
		}
		keys = append(keys, tagKey)
		if err := qc.client.Del(ctx, keys...).Err(); err != nil {
			slog.Warn("query cache invalidate error", "tag", tag, "error", err)
			continue
		}
		slog.Debug("query cache invalidated", "tag", tag, "entries", len(members))
	}
}

// InvalidateAll removes every cached response by scanning for the prefixes.
func (qc *QueryCache) InvalidateAll(ctx context.Context) {
	var deleted int
	for _, pattern := range []string{queryKeyPrefix + "*", tagKeyPrefix + "*"} {
		var cursor uint64
		for {
			keys, next, err := qc.client.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				slog.Warn("query cache scan error", "error", err)
				return
			}
			if len(keys) > 0 {
				if err := qc.client.Del(ctx, keys...).Err(); err != nil {
					slog.Warn("query cache bulk delete error", "error", err)
				}
				deleted += len(keys)
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	if deleted > 0 {
		slog.Info("query cache fully cleared", "deleted", deleted)
	}
}
