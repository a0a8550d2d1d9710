// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides Valkey-backed HTTP session management.
// Sessions are identified by a secure cookie and stored as JSON in Valkey
// with automatic TTL expiry. Each session carries the upstream bearer token
// the dashboard uses on the user's behalf.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/redis/go-redis/v9"

	"blogdesk/internal/models"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "bd_session"

	// DefaultTTL is how long a session lives in Valkey before automatic expiry.
	DefaultTTL = 12 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// ErrTokenExpired is returned by Create when the upstream token has
// already expired.
var ErrTokenExpired = errors.New("session: upstream token expired")

// Data holds the session payload stored in Valkey.
type Data struct {
	UserID         string      `json:"user_id"`
	Email          string      `json:"email"`
	DisplayName    string      `json:"display_name"`
	Role           models.Role `json:"role"`
	AccessToken    string      `json:"access_token"`
	TokenExpiresAt time.Time   `json:"token_expires_at,omitzero"`
	CreatedAt      time.Time   `json:"created_at"`
}

// HasRole reports whether the session's role is one of roles.
func (d *Data) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if d.Role == r {
			return true
		}
	}
	return false
}

// tokenUsable reports whether the upstream token is still valid at now.
// Tokens without a known expiry are trusted until the session expires.
func (d *Data) tokenUsable(now time.Time) bool {
	return d.TokenExpiresAt.IsZero() || now.Before(d.TokenExpiresAt)
}

// TokenExpiry reads the exp claim of a JWT access token. The signature is
// not checked; the backend does that on every call. Opaque tokens and
// tokens without exp report false.
func TokenExpiry(token string) (time.Time, bool) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return time.Time{}, false
	}
	var claims jwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil || claims.Expiry == nil {
		return time.Time{}, false
	}
	return claims.Expiry.Time(), true
}

// Store keeps sessions in Valkey under session:<id>. A session never
// outlives the upstream token it carries.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewStore creates a session store backed by the given Valkey client.
// A zero ttl falls back to DefaultTTL. Secure marks the cookie TLS-only.
func NewStore(client *redis.Client, secure bool, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl, secure: secure, now: time.Now}
}

// lifetime is the store TTL capped at the token's remaining validity.
func (s *Store) lifetime(d *Data, now time.Time) time.Duration {
	if d.TokenExpiresAt.IsZero() {
		return s.ttl
	}
	return min(s.ttl, d.TokenExpiresAt.Sub(now))
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// Create stores data under a fresh id and sets the cookie. The token
// expiry is read from the access token when the caller left it unset.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	now := s.now()
	data.CreatedAt = now
	if data.TokenExpiresAt.IsZero() {
		data.TokenExpiresAt, _ = TokenExpiry(data.AccessToken)
	}
	ttl := s.lifetime(data, now)
	if ttl <= 0 {
		return "", ErrTokenExpired
	}

	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	http.SetCookie(w, s.cookie(id, int(ttl.Seconds())))
	return id, nil
}

// Get returns the session named by the request cookie, or nil when there
// is none. A session whose upstream token has expired is deleted and
// reported as absent so the caller sees a plain 401.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil
	}
	key := keyPrefix + c.Value

	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	if !data.tokenUsable(s.now()) {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return nil, fmt.Errorf("session drop expired: %w", err)
		}
		return nil, nil
	}
	return &data, nil
}

// Destroy removes the session and expires the cookie. Requests without a
// cookie are a no-op.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+c.Value).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	http.SetCookie(w, s.cookie("", -1))
	return nil
}

// generateID returns idLength random bytes, hex encoded.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
