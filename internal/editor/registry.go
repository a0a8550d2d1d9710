// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"blogdesk/internal/htmlref"
	"blogdesk/internal/models"
	"blogdesk/internal/staging"
)

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = 2 * time.Hour

// Registry keeps the open editor sessions. Sessions idle past the TTL are
// torn down by a background janitor, releasing their staged images.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	blobs    staging.BlobStore
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRegistry creates a registry whose sessions stage into blobs. It
// starts a background goroutine that sweeps idle sessions.
func NewRegistry(blobs staging.BlobStore, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	r := &Registry{
		sessions: make(map[string]*Session),
		blobs:    blobs,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.sweep(context.Background())
			case <-r.stopCh:
				return
			}
		}
	}()

	return r
}

// OpenNew registers a session for a new post.
func (r *Registry) OpenNew(owner string) *Session {
	s := NewSession(owner, r.blobs)
	r.add(s)
	return s
}

// OpenEdit registers a session editing post.
func (r *Registry) OpenEdit(owner string, post *models.Post, classifier *htmlref.Classifier) *Session {
	s := EditSession(owner, post, classifier, r.blobs)
	r.add(s)
	return s
}

func (r *Registry) add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	slog.Debug("editor session opened", "session", s.ID, "owner", s.Owner, "mode", s.mode)
}

// Get returns the session id owned by owner. Sessions of other owners are
// reported as not found.
func (r *Registry) Get(id, owner string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || s.Owner != owner {
		return nil, ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

// Close tears down a session and releases its staged images.
func (r *Registry) Close(ctx context.Context, id, owner string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok || s.Owner != owner {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	s.Close(ctx)
	slog.Debug("editor session closed", "session", id)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// sweep closes sessions idle longer than the TTL. Sessions with a save in
// flight are kept. Returns how many were closed.
func (r *Registry) sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		seen, saving := s.idleSince()
		if !saving && seen.Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close(ctx)
	}
	if len(expired) > 0 {
		slog.Info("idle editor sessions closed", "count", len(expired))
	}
	return len(expired)
}

// Stop terminates the janitor and tears down every session.
func (r *Registry) Stop(ctx context.Context) {
	r.stopOnce.Do(func() { close(r.stopCh) })

	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.Close(ctx)
	}
}
