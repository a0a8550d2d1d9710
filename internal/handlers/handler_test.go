// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// The blog backend is an httptest server; editor sessions stage into
// memory, so no external service is needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogdesk/internal/api"
	"blogdesk/internal/editor"
	"blogdesk/internal/htmlref"
	"blogdesk/internal/middleware"
	"blogdesk/internal/models"
	"blogdesk/internal/session"
	"blogdesk/internal/staging"
	"blogdesk/internal/store"
)

// assetHost is the storage host the fake backend hands out URLs on.
const assetHost = "cdn.test"

// seen is one request received by the fake backend.
type seen struct {
	method string
	path   string
	query  url.Values
	auth   string
	body   []byte
}

// fakeBackend answers backend calls through handle.
type fakeBackend struct {
	mu     sync.Mutex
	calls  []seen
	handle func(r *http.Request, body []byte) (int, string)
}

func newFakeBackend(t *testing.T, handle func(r *http.Request, body []byte) (int, string)) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{handle: handle}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls = append(b.calls, seen{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			auth:   r.Header.Get("Authorization"),
			body:   body,
		})
		b.mu.Unlock()
		status, resp := b.handle(r, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) requests() []seen {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]seen(nil), b.calls...)
}

// count returns how many requests matched method and path.
func (b *fakeBackend) count(method, path string) int {
	n := 0
	for _, c := range b.requests() {
		if c.method == method && c.path == path {
			n++
		}
	}
	return n
}

// fakeLedger is an in-memory OrphanLedger.
type fakeLedger struct {
	mu      sync.Mutex
	orphans []models.Orphan
	err     error
}

func (l *fakeLedger) ListPending(_ context.Context, limit, offset int) ([]models.Orphan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	var pending []models.Orphan
	for _, o := range l.orphans {
		if !o.IsResolved() {
			pending = append(pending, o)
		}
	}
	if offset >= len(pending) {
		return nil, nil
	}
	end := min(offset+limit, len(pending))
	return pending[offset:end], nil
}

func (l *fakeLedger) CountPending(_ context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return 0, l.err
	}
	n := 0
	for _, o := range l.orphans {
		if !o.IsResolved() {
			n++
		}
	}
	return n, nil
}

func (l *fakeLedger) Retry(ctx context.Context, id uuid.UUID, assets store.AssetDeleter) (*models.Orphan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.orphans {
		o := &l.orphans[i]
		if o.ID != id {
			continue
		}
		var err error
		if o.AssetID != "" {
			err = assets.DeleteByID(ctx, o.AssetID)
		} else {
			err = assets.DeleteByURL(ctx, o.URL)
		}
		o.Attempts++
		if err != nil {
			o.LastError = err.Error()
			cp := *o
			return &cp, err
		}
		now := time.Now()
		o.ResolvedAt = &now
		o.LastError = ""
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

// fakeSessions records created sessions instead of storing them.
type fakeSessions struct {
	created   []*session.Data
	destroyed int
	createErr error
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test-session", Path: "/"})
	return "test-session", nil
}

func (f *fakeSessions) Destroy(_ context.Context, _ http.ResponseWriter, _ *http.Request) error {
	f.destroyed++
	return nil
}

// testEnv holds the handler dependencies wired to a fake backend.
type testEnv struct {
	Backend   *fakeBackend
	API       *api.Client
	Registry  *editor.Registry
	Ledger    *fakeLedger
	Dashboard *Dashboard
}

func newTestEnv(t *testing.T, handle func(r *http.Request, body []byte) (int, string)) *testEnv {
	t.Helper()

	backend, srv := newFakeBackend(t, handle)
	client := api.New(srv.URL, srv.Client(), nil)
	classifier := htmlref.NewClassifier([]string{assetHost}, nil)

	registry := editor.NewRegistry(staging.NewMemoryBlobs(), time.Hour)
	t.Cleanup(func() { registry.Stop(context.Background()) })

	ledger := &fakeLedger{}
	dash := NewDashboard(Deps{
		API:        client,
		Registry:   registry,
		Saver:      editor.NewOrchestrator(editor.Config{Classifier: classifier, DetachedTimeout: 5 * time.Second}),
		Classifier: classifier,
		Orphans:    ledger,
	})

	return &testEnv{Backend: backend, API: client, Registry: registry, Ledger: ledger, Dashboard: dash}
}

// testSession returns an editor's session carrying an upstream token.
func testSession(role models.Role) *session.Data {
	return &session.Data{
		UserID:      "user-1",
		Email:       "editor@example.com",
		DisplayName: "Test Editor",
		Role:        role,
		AccessToken: "tok-1",
	}
}

// newRequest builds a request carrying sess and chi URL params given as
// key, value pairs.
func newRequest(method, target string, body io.Reader, sess *session.Data, params ...string) *http.Request {
	r := httptest.NewRequest(method, target, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = middleware.WithSession(ctx, sess)
	}
	return r.WithContext(ctx)
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

// multipartFile builds a multipart body with one "file" part.
func multipartFile(t *testing.T, name, contentType string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(data)
	w.Close()
	return &buf, w.FormDataContentType()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

// ok wraps data in the backend's success envelope.
func ok(data string) string {
	return `{"success":true,"data":` + data + `}`
}

func fail(msg string) string {
	return `{"success":false,"message":"` + msg + `"}`
}
