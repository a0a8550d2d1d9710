// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package listquery keeps the search, filter and pagination state of a
// dashboard list and turns it into the query the REST backend expects.
package listquery

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultDebounce is the quiet interval before typed search text applies.
	DefaultDebounce = 450 * time.Millisecond

	// DefaultLimit is the page size when a Spec does not set one.
	DefaultLimit = 10

	// SearchParam is the query key carrying the search text.
	SearchParam = "searchTerm"
)

// Timer is the part of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet interval. Zero or negative applies search
// text immediately.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.quiet = d }
}

// WithAfterFunc replaces the timer source, mainly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(c *Controller) { c.afterFunc = fn }
}

// Controller holds the state of one list view. It is safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	spec      Spec
	quiet     time.Duration
	afterFunc AfterFunc
	timer     Timer
	gen       uint64

	raw     string
	search  string
	filters map[string]string
	page    int
	limit   int
}

// New creates a controller on page 1 with the spec's default limit.
func New(spec Spec, opts ...Option) *Controller {
	c := &Controller{
		spec:      spec,
		quiet:     DefaultDebounce,
		afterFunc: realAfterFunc,
		filters:   make(map[string]string),
		page:      1,
		limit:     spec.defaultLimit(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeSearch collapses runs of whitespace and trims the result.
func NormalizeSearch(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SetSearch records raw search text. The effective search changes only
// after the quiet interval passes with no further calls.
func (c *Controller) SetSearch(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.raw = raw
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.quiet <= 0 {
		c.settleLocked()
		return
	}
	gen := c.gen
	c.timer = c.afterFunc(c.quiet, func() { c.settle(gen) })
}

// Flush applies pending search text without waiting for the timer.
func (c *Controller) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.settleLocked()
}

func (c *Controller) settle(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.timer = nil
	c.settleLocked()
}

func (c *Controller) settleLocked() {
	next := NormalizeSearch(c.raw)
	if next != c.search {
		c.search = next
		c.page = 1
	}
}

// SetFilter selects value for the filter named key. An empty value clears
// it. Unknown keys and disallowed values are ignored and report false.
func (c *Controller) SetFilter(key, value string) bool {
	f, ok := c.spec.filter(key)
	if !ok {
		return false
	}
	value = strings.TrimSpace(value)
	if value != "" && !f.accepts(value) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filters[f.Key] == value {
		return true
	}
	if value == "" {
		delete(c.filters, f.Key)
	} else {
		c.filters[f.Key] = value
	}
	c.page = 1
	return true
}

// SetLimit changes the page size. Invalid sizes fall back to the default.
func (c *Controller) SetLimit(n int) {
	if !c.spec.validLimit(n) {
		n = c.spec.defaultLimit()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limit != n {
		c.limit = n
		c.page = 1
	}
}

// SetPage moves to page n, never below 1.
func (c *Controller) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	c.page = n
	c.mu.Unlock()
}

// ClampPage moves back to the last page when total results no longer
// reach the current one, and returns the resulting page.
func (c *Controller) ClampPage(total int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pages := totalPages(total, c.limit); pages > 0 && c.page > pages {
		c.page = pages
	}
	return c.page
}

// Page returns the current page.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Limit returns the current page size.
func (c *Controller) Limit() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit
}

// Search returns the effective, debounced search text.
func (c *Controller) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// RawSearch returns the text as last typed.
func (c *Controller) RawSearch() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw
}

// Filter returns the selection for key, or "" when unset.
func (c *Controller) Filter(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters[key]
}

// Query returns page, limit, the search text when non-empty and every set
// filter under its backend parameter name.
func (c *Controller) Query() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := map[string]string{
		"page":  strconv.Itoa(c.page),
		"limit": strconv.Itoa(c.limit),
	}
	if c.search != "" {
		q[SearchParam] = c.search
	}
	for _, f := range c.spec.Filters {
		if v, ok := c.filters[f.Key]; ok {
			q[f.Param] = v
		}
	}
	return q
}

// Values renders Query as url.Values.
func (c *Controller) Values() url.Values {
	v := make(url.Values)
	for k, val := range c.Query() {
		v.Set(k, val)
	}
	return v
}

// Stop cancels a pending search timer.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// FromValues builds a controller from dashboard query parameters. Limit,
// filters and search are applied before the page so the requested page
// survives while a fresh controller still honours the reset rule.
func FromValues(spec Spec, v url.Values) *Controller {
	c := New(spec, WithDebounce(0))
	if n, err := strconv.Atoi(v.Get("limit")); err == nil {
		c.SetLimit(n)
	}
	for _, f := range spec.Filters {
		val := v.Get(f.Key)
		if val == "" {
			val = v.Get(f.Param)
		}
		if val != "" {
			c.SetFilter(f.Key, val)
		}
	}
	search := v.Get(SearchParam)
	if search == "" {
		search = v.Get("search")
	}
	c.SetSearch(search)
	if n, err := strconv.Atoi(v.Get("page")); err == nil {
		c.SetPage(n)
	}
	return c
}

func totalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
