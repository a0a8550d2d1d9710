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

var moderationStatuses = []models.CommentStatus{
	models.CommentStatusPending,
	models.CommentStatusApproved,
	models.CommentStatusRejected,
	models.CommentStatusSpam,
}

// ListPostComments serves the comments of one post for moderation.
func (d *Dashboard) ListPostComments(w http.ResponseWriter, r *http.Request) {
	comments := d.client(r).Comments()
	postID := chi.URLParam(r, "postId")
	servePage(w, r, listquery.CommentsSpec, func(ctx context.Context, q url.Values) (*models.Page[models.Comment], error) {
		return comments.ByPost(ctx, postID, q)
	})
}

// ModerateComment changes a comment's moderation status.
func (d *Dashboard) ModerateComment(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateStatus(req.Status, moderationStatuses...); err != nil {
		respondError(w, r, err)
		return
	}

	c, err := d.client(r).Comments().Moderate(r.Context(), chi.URLParam(r, "id"), models.CommentStatus(req.Status))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteComment deletes a comment.
func (d *Dashboard) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := d.client(r).Comments().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
