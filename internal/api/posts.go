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

// PostService covers /posts.
type PostService struct {
	c *Client
}

func populated(q url.Values) url.Values {
	out := make(url.Values, len(q)+1)
	for k, v := range q {
		out[k] = v
	}
	out.Set("populate", "true")
	return out
}

// List returns a page of posts with category, tags and author as ids.
func (s *PostService) List(ctx context.Context, q url.Values) (*models.Page[models.Post], error) {
	return list[models.Post](ctx, s.c, TagPosts, "/posts", q)
}

// ListPopulated returns a page of posts with nested category, tags and author.
func (s *PostService) ListPopulated(ctx context.Context, q url.Values) (*models.Page[models.PostPopulated], error) {
	return list[models.PostPopulated](ctx, s.c, TagPosts, "/posts", populated(q))
}

// Get returns a post by id.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return one[models.Post](ctx, s.c, TagPosts, "/posts/"+url.PathEscape(id), nil)
}

// GetPopulated returns a post by id with nested relations.
func (s *PostService) GetPopulated(ctx context.Context, id string) (*models.PostPopulated, error) {
	return one[models.PostPopulated](ctx, s.c, TagPosts, "/posts/"+url.PathEscape(id), populated(nil))
}

// GetBySlug returns a post by slug.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return one[models.Post](ctx, s.c, TagPosts, "/posts/slug/"+url.PathEscape(slug), nil)
}

// GetBySlugPopulated returns a post by slug with nested relations.
func (s *PostService) GetBySlugPopulated(ctx context.Context, slug string) (*models.PostPopulated, error) {
	return one[models.PostPopulated](ctx, s.c, TagPosts, "/posts/slug/"+url.PathEscape(slug), populated(nil))
}

// Create creates a post. An envelope reporting success:false is an *Error.
func (s *PostService) Create(ctx context.Context, p models.PostPayload) (*models.Post, error) {
	return mutateOne[models.Post](ctx, s.c, http.MethodPost, "/posts", p, TagPosts, TagCategories, TagTags)
}

// Update sends the full payload as a partial update of post id.
func (s *PostService) Update(ctx context.Context, id string, p models.PostPayload) (*models.Post, error) {
	return mutateOne[models.Post](ctx, s.c, http.MethodPatch, "/posts/"+url.PathEscape(id), p, TagPosts, TagCategories, TagTags)
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id string) error {
	_, err := s.c.mutateJSON(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, TagPosts, TagComments)
	return err
}

// ChangeStatus moves a post to another publishing state.
func (s *PostService) ChangeStatus(ctx context.Context, id string, status models.PostStatus) error {
	body := map[string]models.PostStatus{"status": status}
	_, err := s.c.mutateJSON(ctx, http.MethodPatch, "/posts/change-status/"+url.PathEscape(id), body, TagPosts)
	return err
}

// AddTags attaches tags to a post.
func (s *PostService) AddTags(ctx context.Context, id string, tagIDs []string) error {
	body := map[string][]string{"tagIds": tagIDs}
	_, err := s.c.mutateJSON(ctx, http.MethodPost, "/posts/"+url.PathEscape(id)+"/tags", body, TagPosts, TagTags)
	return err
}

// RemoveTags detaches tags from a post.
func (s *PostService) RemoveTags(ctx context.Context, id string, tagIDs []string) error {
	body := map[string][]string{"tagIds": tagIDs}
	_, err := s.c.mutateJSON(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id)+"/tags", body, TagPosts, TagTags)
	return err
}
