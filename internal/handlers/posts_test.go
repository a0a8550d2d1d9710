// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogdesk/internal/models"
)

func TestListPostsForwardsQuery(t *testing.T) {
	env := newTestEnv(t, func(r *http.Request, _ []byte) (int, string) {
		return http.StatusOK, ok(`{"meta":{"page":2,"limit":10,"total":25},"data":[{"_id":"p1","title":"One","category":{"_id":"c1","name":"Go"},"tags":[],"author":{"displayName":"Ann"}}]}`)
	})

	r := newRequest(http.MethodGet, "/dashboard/posts?page=2&status=published&searchTerm=+go+", nil, testSession(models.RoleEditor))
	rec := httptest.NewRecorder()
	env.Dashboard.ListPosts(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[listResponse[models.PostPopulated]](t, rec)
	if len(resp.Items) != 1 || resp.Items[0].Category.Name != "Go" {
		t.Errorf("items = %+v", resp.Items)
	}
	if resp.Meta.Total != 25 || resp.Meta.TotalPages != 3 || !resp.Meta.HasNext {
		t.Errorf("meta = %+v", resp.Meta)
	}

	calls := env.Backend.requests()
	if len(calls) != 1 {
		t.Fatalf("backend calls = %d, want 1", len(calls))
	}
	q := calls[0].query
	if q.Get("page") != "2" || q.Get("status") != "published" || q.Get("searchTerm") != "go" || q.Get("populate") != "true" {
		t.Errorf("backend query = %v", q)
	}
	if resp.Query["status"] != "published" {
		t.Errorf("echoed query = %v", resp.Query)
	}
}

func TestListPostsClampsPastLastPage(t *testing.T) {
	env := newTestEnv(t, func(r *http.Request, _ []byte) (int, string) {
		if r.URL.Query().Get("page") == "2" {
			return http.StatusOK, ok(`{"meta":{"total":12},"data":[{"_id":"p11"},{"_id":"p12"}]}`)
		}
		return http.StatusOK, ok(`{"meta":{"total":12},"data":[]}`)
	})

	r := newRequest(http.MethodGet, "/dashboard/posts?page=5", nil, testSession(models.RoleEditor))
	rec := httptest.NewRecorder()
	env.Dashboard.ListPosts(rec, r)

	resp := decode[listResponse[models.PostPopulated]](t, rec)
	if resp.Query["page"] != "2" {
		t.Errorf("page = %q, want 2", resp.Query["page"])
	}
	if len(resp.Items) != 2 {
		t.Errorf("items = %d, want 2", len(resp.Items))
	}
	if n := len(env.Backend.requests()); n != 2 {
		t.Errorf("backend calls = %d, want 2", n)
	}
}

func TestListPostsBackendError(t *testing.T) {
	env := newTestEnv(t, func(r *http.Request, _ []byte) (int, string) {
		return http.StatusInternalServerError, fail("boom")
	})

	r := newRequest(http.MethodGet, "/dashboard/posts", nil, testSession(models.RoleEditor))
	rec := httptest.NewRecorder()
	env.Dashboard.ListPosts(rec, r)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestChangePostStatus(t *testing.T) {
	env := newTestEnv(t, func(r *http.Request, _ []byte) (int, string) {
		return http.StatusOK, ok(`null`)
	})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"publish", `{"status":"published"}`, http.StatusOK},
		{"archive", `{"status":"archived"}`, http.StatusOK},
		{"unknown status", `{"status":"deleted"}`, http.StatusUnprocessableEntity},
		{"missing status", `{}`, http.StatusUnprocessableEntity},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRequest(http.MethodPatch, "/", strings.NewReader(tt.body), testSession(models.RoleEditor), "id", "p1")
			rec := httptest.NewRecorder()
			env.Dashboard.ChangePostStatus(rec, r)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}

	if got := env.Backend.count(http.MethodPatch, "/posts/change-status/p1"); got != 2 {
		t.Errorf("backend status changes = %d, want 2", got)
	}
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t, func(r *http.Request, _ []byte) (int, string) {
		if r.URL.Path == "/posts/gone" {
			return http.StatusNotFound, fail("Post not found")
		}
		return http.StatusOK, ok(`null`)
	})

	r := newRequest(http.MethodDelete, "/", nil, testSession(models.RoleEditor), "id", "p1")
	rec := httptest.NewRecorder()
	env.Dashboard.DeletePost(rec, r)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d, want 204", rec.Code)
	}

	r = newRequest(http.MethodDelete, "/", nil, testSession(models.RoleEditor), "id", "gone")
	rec = httptest.NewRecorder()
	env.Dashboard.DeletePost(rec, r)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d, want 404", rec.Code)
	}
	if body := decode[errorBody](t, rec); body.Error != "not found" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestAddPostTags(t *testing.T) {
	env := newTestEnv(t, func(r *http.Request, _ []byte) (int, string) {
		return http.StatusOK, ok(`null`)
	})

	r := newRequest(http.MethodPost, "/", strings.NewReader(`{"tagIds":["t1","t2"]}`), testSession(models.RoleEditor), "id", "p1")
	rec := httptest.NewRecorder()
	env.Dashboard.AddPostTags(rec, r)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	calls := env.Backend.requests()
	var body map[string][]string
	json.Unmarshal(calls[0].body, &body)
	if calls[0].path != "/posts/p1/tags" || len(body["tagIds"]) != 2 {
		t.Errorf("backend call = %s %s", calls[0].path, calls[0].body)
	}

	r = newRequest(http.MethodPost, "/", strings.NewReader(`{"tagIds":[]}`), testSession(models.RoleEditor), "id", "p1")
	rec = httptest.NewRecorder()
	env.Dashboard.AddPostTags(rec, r)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty tags: status = %d, want 400", rec.Code)
	}
}
