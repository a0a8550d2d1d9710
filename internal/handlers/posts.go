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

// ListPosts serves the filtered, paginated post table with authors,
// categories and tags populated.
func (d *Dashboard) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts := d.client(r).Posts()
	servePage(w, r, listquery.PostsSpec, func(ctx context.Context, q url.Values) (*models.Page[models.PostPopulated], error) {
		return posts.ListPopulated(ctx, q)
	})
}

// GetPost returns one populated post.
func (d *Dashboard) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := d.client(r).Posts().GetPopulated(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// GetPostBySlug returns one populated post looked up by slug.
func (d *Dashboard) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := d.client(r).Posts().GetBySlugPopulated(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePost deletes a post.
func (d *Dashboard) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := d.client(r).Posts().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePostStatus publishes, unpublishes or archives a post.
func (d *Dashboard) ChangePostStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateStatus(req.Status, models.PostStatuses...); err != nil {
		respondError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := d.client(r).Posts().ChangeStatus(r.Context(), id, models.PostStatus(req.Status)); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

type postTagsRequest struct {
	TagIDs []string `json:"tagIds"`
}

// AddPostTags attaches tags to a post.
func (d *Dashboard) AddPostTags(w http.ResponseWriter, r *http.Request) {
	d.changePostTags(w, r, true)
}

// RemovePostTags detaches tags from a post.
func (d *Dashboard) RemovePostTags(w http.ResponseWriter, r *http.Request) {
	d.changePostTags(w, r, false)
}

func (d *Dashboard) changePostTags(w http.ResponseWriter, r *http.Request, add bool) {
	var req postTagsRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if len(req.TagIDs) == 0 {
		respondError(w, r, errBadRequest("tagIds must not be empty"))
		return
	}

	posts := d.client(r).Posts()
	id := chi.URLParam(r, "id")
	var err error
	if add {
		err = posts.AddTags(r.Context(), id, req.TagIDs)
	} else {
		err = posts.RemoveTags(r.Context(), id, req.TagIDs)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
