// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogdesk/internal/listquery"
	"blogdesk/internal/models"
)

// orphansSpec pages the orphan ledger; it has no filters.
var orphansSpec = listquery.Spec{Name: "orphans", DefaultLimit: 20, Limits: []int{10, 20, 50, 100}}

// ListOrphans serves the pending entries of the orphaned asset ledger.
func (d *Dashboard) ListOrphans(w http.ResponseWriter, r *http.Request) {
	if d.orphans == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "orphan ledger is not configured"})
		return
	}

	ctl := listquery.FromValues(orphansSpec, r.URL.Query())
	defer ctl.Stop()

	total, err := d.orphans.CountPending(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, limit := ctl.ClampPage(total), ctl.Limit()

	items, err := d.orphans.ListPending(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if items == nil {
		items = []models.Orphan{}
	}

	writeJSON(w, http.StatusOK, listResponse[models.Orphan]{
		Meta:  models.NewMeta(page, limit, total),
		Items: items,
		Query: ctl.Query(),
	})
}

// RetryOrphan retries the deletion of one orphaned asset. A failed retry
// answers 502 with the updated entry.
func (d *Dashboard) RetryOrphan(w http.ResponseWriter, r *http.Request) {
	if d.orphans == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "orphan ledger is not configured"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, errBadRequest("invalid orphan id"))
		return
	}

	orphan, err := d.orphans.Retry(r.Context(), id, d.assetClient(d.client(r)))
	switch {
	case orphan == nil && err == nil:
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case orphan != nil && err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "orphan": orphan})
	case err != nil:
		respondError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, orphan)
	}
}
