// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the blogdesk dashboard
// API. Handlers are grouped by concern (editor, posts, taxonomy, users,
// comments, orphans, auth) and receive their dependencies through the
// handler struct. Every upstream call is made with the bearer token of the
// session that issued the request.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"blogdesk/internal/api"
	"blogdesk/internal/editor"
	"blogdesk/internal/htmlref"
	"blogdesk/internal/middleware"
	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

// maxJSONBody caps JSON request bodies (1 MB). Post content is HTML and
// stays well below this.
const maxJSONBody = 1 << 20

// OrphanLedger is the part of the orphan store the dashboard uses.
type OrphanLedger interface {
	ListPending(ctx context.Context, limit, offset int) ([]models.Orphan, error)
	CountPending(ctx context.Context) (int, error)
	Retry(ctx context.Context, id uuid.UUID, assets store.AssetDeleter) (*models.Orphan, error)
}

// Deps wires the dashboard handlers.
type Deps struct {
	API        *api.Client
	Registry   *editor.Registry
	Saver      *editor.Orchestrator
	Classifier *htmlref.Classifier
	Assets     editor.AssetClient // direct storage backend; nil uses the REST asset endpoints
	Orphans    OrphanLedger       // nil when no database is configured
	Logger     *slog.Logger
}

// Dashboard groups the authenticated dashboard handlers.
type Dashboard struct {
	api        *api.Client
	registry   *editor.Registry
	saver      *editor.Orchestrator
	classifier *htmlref.Classifier
	assets     editor.AssetClient
	orphans    OrphanLedger
	logger     *slog.Logger
}

// NewDashboard creates the dashboard handler group.
func NewDashboard(d Deps) *Dashboard {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classifier := d.Classifier
	if classifier == nil {
		classifier = htmlref.NewClassifier(nil, nil)
	}
	return &Dashboard{
		api:        d.API,
		registry:   d.Registry,
		saver:      d.Saver,
		classifier: classifier,
		assets:     d.Assets,
		orphans:    d.Orphans,
		logger:     logger,
	}
}

// client returns the REST client bound to the caller's upstream token.
func (d *Dashboard) client(r *http.Request) *api.Client {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return d.api
	}
	return d.api.WithToken(sess.AccessToken)
}

// assetClient picks the direct storage backend when configured.
func (d *Dashboard) assetClient(c *api.Client) editor.AssetClient {
	if d.assets != nil {
		return d.assets
	}
	return c.Assets()
}

// owner identifies the caller for editor session ownership.
func owner(r *http.Request) string {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		return sess.UserID
	}
	return ""
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// badRequest is a client error detected before any upstream call.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func errBadRequest(msg string) error { return &badRequest{msg: msg} }

// decodeJSON reads a JSON body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && allowEmpty:
		return nil
	case errors.Is(err, io.EOF):
		return errBadRequest("request body is required")
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBadRequest("request body too large")
		}
		return errBadRequest("invalid JSON body")
	}
}
