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

// UserService covers the admin user management endpoints under /user.
type UserService struct {
	c *Client
}

// List returns a page of users. Filters: role, status, emailVarified.
func (s *UserService) List(ctx context.Context, q url.Values) (*models.Page[models.User], error) {
	return list[models.User](ctx, s.c, TagUsers, "/user/all-users", q)
}

// Get returns the admin view of one user.
func (s *UserService) Get(ctx context.Context, uuid string) (*models.User, error) {
	return one[models.User](ctx, s.c, TagUsers, "/user/admin/"+url.PathEscape(uuid), nil)
}

// ChangeStatus activates, deactivates or blocks a user.
func (s *UserService) ChangeStatus(ctx context.Context, uuid string, status models.UserStatus) error {
	body := map[string]models.UserStatus{"status": status}
	_, err := s.c.mutateJSON(ctx, http.MethodPatch, "/user/change-status/"+url.PathEscape(uuid), body, TagUsers)
	return err
}

// ChangePassword sets a user's password on their behalf.
func (s *UserService) ChangePassword(ctx context.Context, uuid, password string) error {
	body := map[string]string{"password": password}
	_, err := s.c.mutateJSON(ctx, http.MethodPatch, "/user/change-password-admin/"+url.PathEscape(uuid), body, TagUsers)
	return err
}

// SignUp creates an account.
func (s *UserService) SignUp(ctx context.Context, p models.SignUpPayload) (*models.User, error) {
	return mutateOne[models.User](ctx, s.c, http.MethodPost, "/user/sign-up", p, TagUsers)
}

// ProfileService covers /profile/me.
type ProfileService struct {
	c *Client
}

// Me returns the caller's profile.
func (s *ProfileService) Me(ctx context.Context) (*models.Profile, error) {
	return one[models.Profile](ctx, s.c, TagProfile, "/profile/me", nil)
}

// UpdateMe applies a partial update to the caller's profile.
func (s *ProfileService) UpdateMe(ctx context.Context, p models.ProfilePayload) (*models.Profile, error) {
	return mutateOne[models.Profile](ctx, s.c, http.MethodPatch, "/profile/me", p, TagProfile, TagPosts)
}
