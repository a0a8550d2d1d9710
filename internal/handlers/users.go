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

// ListUsers serves the user management table.
func (d *Dashboard) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := d.client(r).Users()
	servePage(w, r, listquery.UsersSpec, func(ctx context.Context, q url.Values) (*models.Page[models.User], error) {
		return users.List(ctx, q)
	})
}

// GetUser returns the admin view of one user.
func (d *Dashboard) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := d.client(r).Users().Get(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// CreateUser signs up an account on behalf of an admin.
func (d *Dashboard) CreateUser(w http.ResponseWriter, r *http.Request) {
	var p models.SignUpPayload
	if err := decodeJSON(w, r, &p, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateSignUp(&p); err != nil {
		respondError(w, r, err)
		return
	}

	u, err := d.client(r).Users().SignUp(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// ChangeUserStatus activates, deactivates or blocks a user.
func (d *Dashboard) ChangeUserStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateStatus(req.Status, models.UserStatusActive, models.UserStatusInactive, models.UserStatusBlocked); err != nil {
		respondError(w, r, err)
		return
	}

	id := chi.URLParam(r, "uuid")
	if err := d.client(r).Users().ChangeStatus(r.Context(), id, models.UserStatus(req.Status)); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uuid": id, "status": req.Status})
}

// ChangeUserPassword sets another user's password.
func (d *Dashboard) ChangeUserPassword(w http.ResponseWriter, r *http.Request) {
	var req adminPasswordRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := d.client(r).Users().ChangePassword(r.Context(), chi.URLParam(r, "uuid"), req.Password); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Profile ---

// GetProfile returns the caller's profile.
func (d *Dashboard) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := d.client(r).Profile().Me(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProfile applies a partial update to the caller's profile.
func (d *Dashboard) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p models.ProfilePayload
	if err := decodeJSON(w, r, &p, false); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateProfile(&p); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := d.client(r).Profile().UpdateMe(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
