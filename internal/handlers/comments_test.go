// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogdesk/internal/models"
)

func TestModerateComment(t *testing.T) {
	env := newTestEnv(t, func(r *http.Request, _ []byte) (int, string) {
		return http.StatusOK, ok(`{"_id":"cm1","post":"p1","content":"hi","status":"approved"}`)
	})

	r := newRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"approved"}`), testSession(models.RoleEditor), "id", "cm1")
	rec := httptest.NewRecorder()
	env.Dashboard.ModerateComment(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode[models.Comment](t, rec).Status; got != models.CommentStatusApproved {
		t.Errorf("status = %q, want approved", got)
	}

	// Deletion has its own endpoint.
	r = newRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"deleted"}`), testSession(models.RoleEditor), "id", "cm1")
	rec = httptest.NewRecorder()
	env.Dashboard.ModerateComment(rec, r)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("deleted status: code = %d, want 422", rec.Code)
	}
}

func TestListPostComments(t *testing.T) {
	env := newTestEnv(t, func(r *http.Request, _ []byte) (int, string) {
		return http.StatusOK, ok(`[{"_id":"cm1","post":"p1","status":"pending"}]`)
	})

	r := newRequest(http.MethodGet, "/?status=pending", nil, testSession(models.RoleEditor), "postId", "p1")
	rec := httptest.NewRecorder()
	env.Dashboard.ListPostComments(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if items := decode[listResponse[models.Comment]](t, rec).Items; len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}
	if calls := env.Backend.requests(); !strings.HasSuffix(calls[0].path, "/p1") {
		t.Errorf("backend path = %s", calls[0].path)
	}
}
