// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"blogdesk/internal/listquery"
	"blogdesk/internal/models"
)

// --- Categories ---

// ListCategories serves the paginated category list.
func (d *Dashboard) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := d.client(r).Categories()
	servePage(w, r, listquery.CategoriesSpec, func(ctx context.Context, q url.Values) (*models.Page[models.Category], error) {
		return categories.List(ctx, q)
	})
}

// CreateCategory creates a category.
func (d *Dashboard) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var p models.CategoryPayload
	if err := decodeJSON(w, r, &p, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateCategory(&p); err != nil {
		respondError(w, r, err)
		return
	}

	c, err := d.client(r).Categories().Create(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory updates a category.
func (d *Dashboard) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var p models.CategoryPayload
	if err := decodeJSON(w, r, &p, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateCategory(&p); err != nil {
		respondError(w, r, err)
		return
	}

	c, err := d.client(r).Categories().Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory deletes a category.
func (d *Dashboard) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := d.client(r).Categories().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Tags ---

// ListTags serves the paginated tag list.
func (d *Dashboard) ListTags(w http.ResponseWriter, r *http.Request) {
	tags := d.client(r).Tags()
	servePage(w, r, listquery.TagsSpec, func(ctx context.Context, q url.Values) (*models.Page[models.Tag], error) {
		return tags.List(ctx, q)
	})
}

// CreateTag creates a tag.
func (d *Dashboard) CreateTag(w http.ResponseWriter, r *http.Request) {
	var p models.TagPayload
	if err := decodeJSON(w, r, &p, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateTag(&p); err != nil {
		respondError(w, r, err)
		return
	}

	t, err := d.client(r).Tags().Create(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTag updates a tag.
func (d *Dashboard) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var p models.TagPayload
	if err := decodeJSON(w, r, &p, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateTag(&p); err != nil {
		respondError(w, r, err)
		return
	}

	t, err := d.client(r).Tags().Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTag deletes a tag.
func (d *Dashboard) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := d.client(r).Tags().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
