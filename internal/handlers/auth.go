// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"blogdesk/internal/api"
	"blogdesk/internal/middleware"
	"blogdesk/internal/models"
	"blogdesk/internal/session"
)

// SessionStore creates and destroys dashboard sessions.
type SessionStore interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// dashboardRoles may sign in to the dashboard.
var dashboardRoles = []models.Role{models.RoleAdmin, models.RoleEditor, models.RoleAuthor}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	api      *api.Client
	sessions SessionStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(client *api.Client, sessions SessionStore) *Auth {
	return &Auth{api: client, sessions: sessions}
}

type meResponse struct {
	UserID      string      `json:"userId"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Role        models.Role `json:"role"`
}

func meOf(s *session.Data) meResponse {
	return meResponse{UserID: s.UserID, Email: s.Email, DisplayName: s.DisplayName, Role: s.Role}
}

// Login exchanges credentials with the blog backend and opens a session.
// Accounts without a dashboard role are refused before a session exists.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := a.api.Auth().Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	data := &session.Data{
		UserID:      res.User.UUID,
		Email:       res.User.Email,
		DisplayName: res.User.DisplayName,
		Role:        res.User.Role,
		AccessToken: res.AccessToken,
	}
	if data.UserID == "" {
		data.UserID = res.User.ID
	}
	if data.DisplayName == "" {
		data.DisplayName = res.User.Username
	}
	if !data.HasRole(dashboardRoles...) {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "this account cannot use the dashboard"})
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		if errors.Is(err, session.ErrTokenExpired) {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "the backend issued an expired token"})
			return
		}
		respondError(w, r, err)
		return
	}

	slog.Info("user logged in", "user_id", data.UserID, "role", data.Role)
	writeJSON(w, http.StatusOK, meOf(data))
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}
	writeJSON(w, http.StatusOK, meOf(sess))
}

// ChangePassword changes the caller's own password upstream.
func (a *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
		return
	}

	var req ownPasswordRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := a.api.WithToken(sess.AccessToken).Auth().ChangePassword(r.Context(), req.OldPassword, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
