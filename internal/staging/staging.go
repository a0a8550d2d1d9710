// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package staging holds image files an author has picked in the editor
// but not yet uploaded. Each file is addressed by a transient local handle
// that the draft references until save time replaces it with a remote URL.
package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogdesk/internal/htmlref"
)

// ErrInvalidFileType is returned when a picked file does not declare an
// image media type. Nothing is staged in that case.
var ErrInvalidFileType = errors.New("only image files are allowed")

// Kind tells cover images apart from images embedded in the post body.
type Kind string

const (
	KindCover  Kind = "cover"
	KindInline Kind = "inline"
)

// File is a raw picked file as received from the dashboard.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Entry describes one staged file. The payload itself lives in the BlobStore.
type Entry struct {
	Handle      string    `json:"handle"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StagedAt    time.Time `json:"staged_at"`
}

// Area is the staging mapping of one editor session: at most one cover
// plus any number of inline images, keyed by handle.
type Area struct {
	mu     sync.Mutex
	blobs  BlobStore
	cover  *Entry
	inline map[string]*Entry
}

// NewArea creates an empty staging area backed by the given blob store.
func NewArea(blobs BlobStore) *Area {
	return &Area{
		blobs:  blobs,
		inline: make(map[string]*Entry),
	}
}

// IsImageType reports whether a declared media type is an image type.
func IsImageType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// Stage validates f, stores its payload and returns a fresh handle.
// Staging a cover replaces (and releases) the previously staged cover.
func (a *Area) Stage(ctx context.Context, kind Kind, f File) (string, error) {
	if !IsImageType(f.ContentType) {
		return "", fmt.Errorf("stage %q (%s): %w", f.Name, f.ContentType, ErrInvalidFileType)
	}
	if kind != KindCover && kind != KindInline {
		return "", fmt.Errorf("stage: unknown kind %q", kind)
	}

	handle := htmlref.LocalScheme + uuid.NewString()
	if err := a.blobs.Put(ctx, handle, f.Data); err != nil {
		return "", fmt.Errorf("stage %q: %w", f.Name, err)
	}

	entry := &Entry{
		Handle:      handle,
		Kind:        kind,
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        int64(len(f.Data)),
		StagedAt:    time.Now(),
	}

	a.mu.Lock()
	var previous *Entry
	if kind == KindCover {
		previous = a.cover
		a.cover = entry
	} else {
		a.inline[handle] = entry
	}
	a.mu.Unlock()

	if previous != nil {
		a.free(ctx, previous.Handle)
	}

	slog.Debug("image staged", "handle", handle, "kind", kind, "size", entry.Size)
	return handle, nil
}

// Release drops a handle and frees its payload. Unknown handles are ignored,
// so a handle is only ever freed once.
func (a *Area) Release(ctx context.Context, handle string) {
	a.mu.Lock()
	found := false
	if a.cover != nil && a.cover.Handle == handle {
		a.cover = nil
		found = true
	} else if _, ok := a.inline[handle]; ok {
		delete(a.inline, handle)
		found = true
	}
	a.mu.Unlock()

	if found {
		a.free(ctx, handle)
	}
}

// Prune releases every inline handle that is not in refs and returns the
// handles it released. The cover is never pruned.
func (a *Area) Prune(ctx context.Context, refs map[string]struct{}) []string {
	a.mu.Lock()
	var stale []string
	for h := range a.inline {
		if _, used := refs[h]; !used {
			stale = append(stale, h)
			delete(a.inline, h)
		}
	}
	a.mu.Unlock()

	for _, h := range stale {
		a.free(ctx, h)
	}
	return stale
}

// ReleaseAll releases the cover and every inline handle.
func (a *Area) ReleaseAll(ctx context.Context) {
	a.mu.Lock()
	var all []string
	if a.cover != nil {
		all = append(all, a.cover.Handle)
		a.cover = nil
	}
	for h := range a.inline {
		all = append(all, h)
	}
	a.inline = make(map[string]*Entry)
	a.mu.Unlock()

	for _, h := range all {
		a.free(ctx, h)
	}
}

// Lookup returns the entry for a handle of either kind.
func (a *Area) Lookup(handle string) (Entry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cover != nil && a.cover.Handle == handle {
		return *a.cover, true
	}
	if e, ok := a.inline[handle]; ok {
		return *e, true
	}
	return Entry{}, false
}

// Cover returns the staged cover, if any.
func (a *Area) Cover() (Entry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cover == nil {
		return Entry{}, false
	}
	return *a.cover, true
}

// IsInline reports whether handle is a staged inline image.
func (a *Area) IsInline(handle string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.inline[handle]
	return ok
}

// Entries returns every staged entry, cover first.
func (a *Area) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Entry, 0, len(a.inline)+1)
	if a.cover != nil {
		out = append(out, *a.cover)
	}
	for _, e := range a.inline {
		out = append(out, *e)
	}
	return out
}

// Open loads the payload of a staged handle.
func (a *Area) Open(ctx context.Context, handle string) (File, error) {
	e, ok := a.Lookup(handle)
	if !ok {
		return File{}, fmt.Errorf("open staged %s: %w", handle, ErrNotStaged)
	}
	data, err := a.blobs.Get(ctx, handle)
	if err != nil {
		return File{}, fmt.Errorf("open staged %s: %w", handle, err)
	}
	return File{Name: e.Name, ContentType: e.ContentType, Data: data}, nil
}

// ErrNotStaged is returned by Open for handles that are not staged.
var ErrNotStaged = errors.New("handle is not staged")

// free deletes a payload; failures only leak until the blob TTL expires.
func (a *Area) free(ctx context.Context, handle string) {
	if err := a.blobs.Delete(ctx, handle); err != nil {
		slog.Warn("staged image release failed", "handle", handle, "error", err)
		return
	}
	slog.Debug("staged image released", "handle", handle)
}
