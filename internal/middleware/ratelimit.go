// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(*http.Request) string

// ByClientIP counts requests per client address.
func ByClientIP(r *http.Request) string {
	return "ip:" + clientIP(r)
}

// BySessionUser counts requests per signed-in user, falling back to the
// client address for anonymous requests.
func BySessionUser(r *http.Request) string {
	if sess := SessionFromCtx(r.Context()); sess != nil && sess.UserID != "" {
		return "user:" + sess.UserID
	}
	return ByClientIP(r)
}

// window holds the hit times of one bucket, oldest first.
type window struct {
	mu   sync.Mutex
	hits []time.Time
}

// expire drops hits at or before cutoff.
func (w *window) expire(cutoff time.Time) {
	n := 0
	for n < len(w.hits) && !w.hits[n].After(cutoff) {
		n++
	}
	w.hits = w.hits[n:]
}

// RateLimiter is a sliding-window limiter. The server runs one keyed by
// client IP in front of POST /auth/login and one keyed by session user in
// front of the editor's image staging routes.
type RateLimiter struct {
	name   string
	limit  int
	period time.Duration
	key    KeyFunc
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*window

	stopCh   chan struct{}
	stopOnce sync.Once
}

// LimiterOption customizes a RateLimiter.
type LimiterOption func(*RateLimiter)

// WithKey sets how requests are bucketed. The default is ByClientIP.
func WithKey(fn KeyFunc) LimiterOption {
	return func(rl *RateLimiter) { rl.key = fn }
}

// WithName labels the limiter in log lines.
func WithName(name string) LimiterOption {
	return func(rl *RateLimiter) { rl.name = name }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) LimiterOption {
	return func(rl *RateLimiter) { rl.now = now }
}

// NewRateLimiter allows limit requests per period and bucket. Idle buckets
// are swept by a background goroutine until Stop is called.
func NewRateLimiter(limit int, period time.Duration, opts ...LimiterOption) *RateLimiter {
	rl := &RateLimiter{
		name:    "default",
		limit:   limit,
		period:  period,
		key:     ByClientIP,
		now:     time.Now,
		buckets: make(map[string]*window),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}

	go rl.janitor(max(period, time.Minute))
	return rl
}

func (rl *RateLimiter) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop ends the sweeper. Safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// take records a hit for key. When the bucket is full it reports false and
// how long until its oldest hit leaves the window.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	w, ok := rl.buckets[key]
	if !ok {
		w = &window{}
		rl.buckets[key] = w
	}
	rl.mu.Unlock()

	now := rl.now()
	w.mu.Lock()
	defer w.mu.Unlock()

	w.expire(now.Add(-rl.period))
	if len(w.hits) >= rl.limit {
		return false, w.hits[0].Add(rl.period).Sub(now)
	}
	w.hits = append(w.hits, now)
	return true, 0
}

// sweep forgets buckets whose hits have all expired and returns how many
// remain.
func (rl *RateLimiter) sweep() int {
	cutoff := rl.now().Add(-rl.period)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, w := range rl.buckets {
		w.mu.Lock()
		w.expire(cutoff)
		empty := len(w.hits) == 0
		w.mu.Unlock()
		if empty {
			delete(rl.buckets, key)
		}
	}
	return len(rl.buckets)
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header in whole seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.key(r)
		ok, wait := rl.take(key)
		if !ok {
			slog.Warn("rate limited", "limiter", rl.name, "key", key, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the leftmost X-Forwarded-For address, then X-Real-IP,
// then RemoteAddr without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
