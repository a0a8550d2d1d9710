// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package api is a typed client for the blog REST backend. Responses are
// unwrapped from the backend's {success, message, data} envelope, list
// metadata is normalized into models.Meta, and GET responses are cached
// per tag until a mutation on that tag invalidates them.
package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Cache tags, one per resource family.
const (
	TagPosts      = "posts"
	TagCategories = "categories"
	TagTags       = "tags"
	TagUsers      = "users"
	TagProfile    = "profile"
	TagComments   = "comments"
)

// Cache stores raw GET response bodies under a tag. Implementations must
// treat their own failures as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, tag, key string, body []byte)
	Invalidate(ctx context.Context, tags ...string)
}

// Client talks to the blog REST backend.
type Client struct {
	baseURL string
	http    *http.Client
	cache   Cache
	token   string
}

// New creates a client for baseURL. A nil httpClient gets a 30s timeout;
// a nil cache disables response caching.
func New(baseURL string, httpClient *http.Client, cache Cache) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		cache:   cache,
	}
}

// WithToken returns a copy of the client that authenticates as the holder
// of the given bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Posts() *PostService { return &PostService{c: c} }
func (c *Client) Categories() *CategoryService { return &CategoryService{c: c} }
func (c *Client) Tags() *TagService { return &TagService{c: c} }
func (c *Client) Users() *UserService { return &UserService{c: c} }
func (c *Client) Profile() *ProfileService { return &ProfileService{c: c} }
func (c *Client) Comments() *CommentService { return &CommentService{c: c} }
func (c *Client) Assets() *AssetService { return &AssetService{c: c} }
func (c *Client) Auth() *AuthService { return &AuthService{c: c} }

// envelope is the wrapper every backend response uses.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

// request describes one call to the backend.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// jsonRequest builds a request with a JSON-encoded body.
func jsonRequest(method, path string, body any) (request, error) {
	req := request{method: method, path: path}
	if body == nil {
		return req, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return req, fmt.Errorf("marshal %s %s: %w", method, path, err)
	}
	req.body = bytes.NewReader(payload)
	req.contentType = "application/json"
	return req, nil
}

// send performs r and returns the decoded envelope and the raw body.
func (c *Client) send(ctx context.Context, r request) (*envelope, []byte, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s request: %w", r.method, r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s http: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s read body: %w", r.method, r.path, err)
	}

	env, err := decodeEnvelope(resp.StatusCode, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	return env, raw, nil
}

// decodeEnvelope turns a response into an envelope, or an *Error when the
// status is not 2xx or the body explicitly reports success:false.
func decodeEnvelope(status int, raw []byte) (*envelope, error) {
	var env envelope
	jsonErr := json.Unmarshal(raw, &env)

	if status < 200 || status > 299 {
		msg := env.Message
		if jsonErr != nil || msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		return nil, &Error{Status: status, Message: msg}
	}
	if jsonErr != nil {
		if len(bytes.TrimSpace(raw)) == 0 {
			return &envelope{}, nil
		}
		return nil, fmt.Errorf("decode envelope: %w", jsonErr)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, &Error{Status: status, Message: msg}
	}
	return &env, nil
}

// cacheKey scopes a GET to the caller's token so one user's cached view is
// never served to another.
func (c *Client) cacheKey(r request) string {
	sum := sha256.Sum256([]byte(c.token))
	key := hex.EncodeToString(sum[:8]) + " " + r.path
	if len(r.query) > 0 {
		key += "?" + r.query.Encode()
	}
	return key
}

// get performs a cached GET and returns the envelope.
func (c *Client) get(ctx context.Context, tag, path string, query url.Values) (*envelope, error) {
	r := request{method: http.MethodGet, path: path, query: query}

	if c.cache != nil {
		key := c.cacheKey(r)
		if raw, ok := c.cache.Get(ctx, key); ok {
			env, err := decodeEnvelope(http.StatusOK, raw)
			if err == nil {
				return env, nil
			}
			slog.Warn("discarding undecodable cache entry", "key", key, "error", err)
		}
		env, raw, err := c.send(ctx, r)
		if err != nil {
			return nil, err
		}
		c.cache.Set(ctx, tag, key, raw)
		return env, nil
	}

	env, _, err := c.send(ctx, r)
	return env, err
}

// mutate performs a write and invalidates the given tags on success.
func (c *Client) mutate(ctx context.Context, r request, tags ...string) (*envelope, error) {
	env, _, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	if c.cache != nil && len(tags) > 0 {
		c.cache.Invalidate(ctx, tags...)
	}
	return env, nil
}

// mutateJSON marshals body and performs a write.
func (c *Client) mutateJSON(ctx context.Context, method, path string, body any, tags ...string) (*envelope, error) {
	r, err := jsonRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	return c.mutate(ctx, r, tags...)
}

// decodeData unmarshals the envelope's data into out.
func hasData(env *envelope) bool {
	return len(env.Data) > 0 && string(env.Data) != "null"
}

func decodeData(env *envelope, out any) error {
	if !hasData(env) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// one performs a cached GET and decodes a single item.
func one[T any](ctx context.Context, c *Client, tag, path string, query url.Values) (*T, error) {
	env, err := c.get(ctx, tag, path, query)
	if err != nil {
		return nil, err
	}
	var out T
	if err := decodeData(env, &out); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return &out, nil
}

// mutateOne performs a JSON write and decodes a single item.
func mutateOne[T any](ctx context.Context, c *Client, method, path string, body any, tags ...string) (*T, error) {
	env, err := c.mutateJSON(ctx, method, path, body, tags...)
	if err != nil {
		return nil, err
	}
	var out T
	if err := decodeData(env, &out); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return &out, nil
}
