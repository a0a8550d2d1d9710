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

// CategoryService covers /categories.
type CategoryService struct {
	c *Client
}

func (s *CategoryService) List(ctx context.Context, q url.Values) (*models.Page[models.Category], error) {
	return list[models.Category](ctx, s.c, TagCategories, "/categories", q)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	return one[models.Category](ctx, s.c, TagCategories, "/categories/"+url.PathEscape(id), nil)
}

func (s *CategoryService) Create(ctx context.Context, p models.CategoryPayload) (*models.Category, error) {
	return mutateOne[models.Category](ctx, s.c, http.MethodPost, "/categories", p, TagCategories)
}

func (s *CategoryService) Update(ctx context.Context, id string, p models.CategoryPayload) (*models.Category, error) {
	return mutateOne[models.Category](ctx, s.c, http.MethodPatch, "/categories/"+url.PathEscape(id), p, TagCategories, TagPosts)
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	_, err := s.c.mutateJSON(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, TagCategories, TagPosts)
	return err
}

// TagService covers /tags.
type TagService struct {
	c *Client
}

func (s *TagService) List(ctx context.Context, q url.Values) (*models.Page[models.Tag], error) {
	return list[models.Tag](ctx, s.c, TagTags, "/tags", q)
}

func (s *TagService) Get(ctx context.Context, id string) (*models.Tag, error) {
	return one[models.Tag](ctx, s.c, TagTags, "/tags/"+url.PathEscape(id), nil)
}

func (s *TagService) Create(ctx context.Context, p models.TagPayload) (*models.Tag, error) {
	return mutateOne[models.Tag](ctx, s.c, http.MethodPost, "/tags", p, TagTags)
}

func (s *TagService) Update(ctx context.Context, id string, p models.TagPayload) (*models.Tag, error) {
	return mutateOne[models.Tag](ctx, s.c, http.MethodPatch, "/tags/"+url.PathEscape(id), p, TagTags, TagPosts)
}

func (s *TagService) Delete(ctx context.Context, id string) error {
	_, err := s.c.mutateJSON(ctx, http.MethodDelete, "/tags/"+url.PathEscape(id), nil, TagTags, TagPosts)
	return err
}
