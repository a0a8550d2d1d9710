// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"blogdesk/internal/models"
)

// AuthService covers /auth.
type AuthService struct {
	c *Client
}

// LoginResult is what a successful login yields.
type LoginResult struct {
	AccessToken string      `json:"accessToken"`
	Token       string      `json:"token,omitempty"`
	User        models.User `json:"user"`
}

// Login exchanges credentials for an access token and the user record.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	res, err := mutateOne[LoginResult](ctx, s.c, http.MethodPost, "/auth/login", body)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		res.AccessToken = res.Token
	}
	if res.AccessToken == "" {
		return nil, errors.New("login: response carried no access token")
	}
	return res, nil
}

// ChangePassword changes the caller's own password.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	if _, err := s.c.mutateJSON(ctx, http.MethodPatch, "/auth/change-password", body); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}
