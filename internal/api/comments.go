// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package api

import (
	"context"
	"net/http"
	"net/url"

	"blogdesk/internal/models"
)

// CommentService covers /comment.
type CommentService struct {
	c *Client
}

// ByPost returns a page of comments on a post.
func (s *CommentService) ByPost(ctx context.Context, postID string, q url.Values) (*models.Page[models.Comment], error) {
	return list[models.Comment](ctx, s.c, TagComments, "/comment/post/"+url.PathEscape(postID), q)
}

func (s *CommentService) Get(ctx context.Context, id string) (*models.Comment, error) {
	return one[models.Comment](ctx, s.c, TagComments, "/comment/"+url.PathEscape(id), nil)
}

func (s *CommentService) Create(ctx context.Context, p models.CommentPayload) (*models.Comment, error) {
	return mutateOne[models.Comment](ctx, s.c, http.MethodPost, "/comment", p, TagComments)
}

// Update edits the text of a comment.
func (s *CommentService) Update(ctx context.Context, id, content string) (*models.Comment, error) {
	body := map[string]string{"content": content}
	return mutateOne[models.Comment](ctx, s.c, http.MethodPatch, "/comment/"+url.PathEscape(id), body, TagComments)
}

func (s *CommentService) Delete(ctx context.Context, id string) error {
	_, err := s.c.mutateJSON(ctx, http.MethodDelete, "/comment/"+url.PathEscape(id), nil, TagComments)
	return err
}

// Moderate sets the moderation status of a comment.
func (s *CommentService) Moderate(ctx context.Context, id string, status models.CommentStatus) (*models.Comment, error) {
	body := map[string]models.CommentStatus{"status": status}
	return mutateOne[models.Comment](ctx, s.c, http.MethodPatch, "/comment/moderate/"+url.PathEscape(id), body, TagComments)
}
