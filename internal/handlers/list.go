// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"net/url"

	"blogdesk/internal/listquery"
	"blogdesk/internal/models"
)

// listResponse is a page of results plus the effective query, so the
// dashboard can reflect a reset or clamped page back into its controls.
type listResponse[T any] struct {
	Meta  models.Meta       `json:"meta"`
	Items []T               `json:"data"`
	Query map[string]string `json:"query"`
}

type fetchFunc[T any] func(ctx context.Context, q url.Values) (*models.Page[T], error)

// servePage resolves the list query from the request, fetches the page and,
// when the total shrank below the requested page, refetches the last page.
func servePage[T any](w http.ResponseWriter, r *http.Request, spec listquery.Spec, fetch fetchFunc[T]) {
	ctl := listquery.FromValues(spec, r.URL.Query())
	defer ctl.Stop()

	page, err := fetch(r.Context(), ctl.Values())
	if err != nil {
		respondError(w, r, err)
		return
	}

	requested := ctl.Page()
	if ctl.ClampPage(page.Meta.Total) != requested {
		if page, err = fetch(r.Context(), ctl.Values()); err != nil {
			respondError(w, r, err)
			return
		}
	}

	items := page.Items
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse[T]{Meta: page.Meta, Items: items, Query: ctl.Query()})
}
