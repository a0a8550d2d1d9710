// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"blogdesk/internal/htmlref"
	"blogdesk/internal/models"
	"blogdesk/internal/staging"
)

// ---------- Fakes ----------

// fakeAssets is an in-memory asset store. Upload number failUploadAt
// (1-based) fails; URLs in failDeleteURL fail to delete.
type fakeAssets struct {
	mu            sync.Mutex
	live          map[string]string // id -> url
	uploads       []string          // file names in upload order
	deletedIDs    []string
	deletedURLs   []string
	failUploadAt  int
	failDeleteID  map[string]bool
	failDeleteURL map[string]bool
	blockUpload   chan struct{} // when set, Upload waits on it
	uploadStarted chan struct{}
	deleteCtxErr  []error
	seq           int
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{
		live:          map[string]string{},
		failDeleteID:  map[string]bool{},
		failDeleteURL: map[string]bool{},
	}
}

func (f *fakeAssets) Upload(ctx context.Context, file staging.File) (models.UploadedAsset, error) {
	if f.uploadStarted != nil {
		f.uploadStarted <- struct{}{}
	}
	if f.blockUpload != nil {
		<-f.blockUpload
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, file.Name)
	if len(f.uploads) == f.failUploadAt {
		return models.UploadedAsset{}, errors.New("storage unavailable")
	}
	f.seq++
	id := fmt.Sprintf("asset-%d", f.seq)
	url := "https://cdn/" + file.Name
	f.live[id] = url
	return models.UploadedAsset{ID: id, URL: url}, nil
}

func (f *fakeAssets) DeleteByID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCtxErr = append(f.deleteCtxErr, ctx.Err())
	if f.failDeleteID[id] {
		return errors.New("delete refused")
	}
	f.deletedIDs = append(f.deletedIDs, id)
	delete(f.live, id)
	return nil
}

func (f *fakeAssets) DeleteByURL(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDeleteURL[url] {
		return errors.New("delete refused")
	}
	f.deletedURLs = append(f.deletedURLs, url)
	return nil
}

type fakePosts struct {
	created []models.PostPayload
	updated []models.PostPayload
	err     error
	cancel  context.CancelFunc // called before returning, to simulate a disconnect
}

func (p *fakePosts) Create(ctx context.Context, pl models.PostPayload) (*models.Post, error) {
	p.created = append(p.created, pl)
	return p.result("new-post", pl)
}

func (p *fakePosts) Update(ctx context.Context, id string, pl models.PostPayload) (*models.Post, error) {
	p.updated = append(p.updated, pl)
	return p.result(id, pl)
}

func (p *fakePosts) result(id string, pl models.PostPayload) (*models.Post, error) {
	if p.cancel != nil {
		p.cancel()
	}
	if p.err != nil {
		return nil, p.err
	}
	return &models.Post{PostBase: models.PostBase{ID: id, Title: pl.Title, Content: pl.Content, CoverImage: pl.CoverImage}}, nil
}

type fakeOrphans struct {
	mu       sync.Mutex
	recorded []models.Orphan
}

func (o *fakeOrphans) Record(_ context.Context, orphan models.Orphan) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recorded = append(o.recorded, orphan)
	return nil
}

// ---------- Helpers ----------

var testClassifier = htmlref.NewClassifier([]string{"cdn"}, nil)

type harness struct {
	assets  *fakeAssets
	posts   *fakePosts
	orphans *fakeOrphans
	orch    *Orchestrator
	blobs   *staging.MemoryBlobs
}

func newHarness() *harness {
	h := &harness{
		assets:  newFakeAssets(),
		posts:   &fakePosts{},
		orphans: &fakeOrphans{},
		blobs:   staging.NewMemoryBlobs(),
	}
	h.orch = NewOrchestrator(Config{
		Assets:     h.assets,
		Posts:      h.posts,
		Classifier: testClassifier,
		Orphans:    h.orphans,
	})
	return h
}

func img(name string) staging.File {
	return staging.File{Name: name, ContentType: "image/png", Data: []byte(name)}
}

func validDraft(content string) DraftPatch {
	title, cat := "Hello", "cat-1"
	return DraftPatch{Title: &title, Category: &cat, Content: &content}
}

func mustUpdate(t *testing.T, s *Session, p DraftPatch) {
	t.Helper()
	if _, err := s.Update(context.Background(), p); err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func mustStageImage(t *testing.T, s *Session, name string) string {
	t.Helper()
	h, err := s.StageImage(context.Background(), img(name))
	if err != nil {
		t.Fatalf("StageImage: %v", err)
	}
	return h
}

func mustStageCover(t *testing.T, s *Session, name string) string {
	t.Helper()
	h, err := s.StageCover(context.Background(), img(name))
	if err != nil {
		t.Fatalf("StageCover: %v", err)
	}
	return h
}

func editSession(h *harness, cover, content string) *Session {
	post := &models.Post{
		PostBase: models.PostBase{ID: "post-1", Title: "Stored", Content: content, CoverImage: cover, Status: models.PostStatusPublished},
		Category: "cat-1",
		Tags:     []string{"t1"},
	}
	return EditSession("user-1", post, testClassifier, h.blobs)
}

// =====================================================================
// Scenarios
// =====================================================================

func TestScenarioNewPostUploadsAndPersists(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	s := NewSession("user-1", h.blobs)

	mustStageCover(t, s, "cover.png")
	blob1 := mustStageImage(t, s, "photo.jpg")
	mustUpdate(t, s, validDraft(`<p>hi</p><img src="`+blob1+`">`))

	res, err := h.orch.Save(ctx, s)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !slices.Equal(h.assets.uploads, []string{"cover.png", "photo.jpg"}) {
		t.Errorf("uploads: got %v, want cover first then inline", h.assets.uploads)
	}
	wantContent := `<p>hi</p><img src="https://cdn/photo.jpg">`
	if res.Content != wantContent {
		t.Errorf("content: got %q, want %q", res.Content, wantContent)
	}
	if len(h.posts.created) != 1 {
		t.Fatalf("creates: got %d, want 1", len(h.posts.created))
	}
	got := h.posts.created[0]
	if got.Content != wantContent || got.CoverImage != "https://cdn/cover.png" {
		t.Errorf("persisted payload: %+v", got)
	}
	if got.Status != models.PostStatusDraft || got.ReadingTime != "1 min read" {
		t.Errorf("status/reading time: %q/%q", got.Status, got.ReadingTime)
	}
	if len(h.assets.deletedIDs) != 0 || len(h.assets.deletedURLs) != 0 {
		t.Errorf("unexpected deletions: ids=%v urls=%v", h.assets.deletedIDs, h.assets.deletedURLs)
	}

	v := s.View()
	if v.Mode != ModeEdit || v.PostID != "new-post" || v.State != StateDone {
		t.Errorf("session after create: mode=%s post=%s state=%s", v.Mode, v.PostID, v.State)
	}
	if len(v.Staged) != 0 || h.blobs.Len() != 0 {
		t.Errorf("staged handles not released: %v", v.Staged)
	}
	if v.Draft.Content != wantContent || v.Draft.CoverImage != "https://cdn/cover.png" {
		t.Errorf("draft not updated to final values: %+v", v.Draft)
	}
	if v.Baseline.Cover != "https://cdn/cover.png" || !slices.Equal(v.Baseline.Inline, []string{"https://cdn/photo.jpg"}) {
		t.Errorf("baseline: %+v", v.Baseline)
	}
}

func TestScenarioInlineUploadFailureRollsBack(t *testing.T) {
	h := newHarness()
	h.assets.failUploadAt = 2
	ctx := context.Background()
	s := NewSession("user-1", h.blobs)

	cover := mustStageCover(t, s, "cover.png")
	blob1 := mustStageImage(t, s, "photo.jpg")
	content := `<p>hi</p><img src="` + blob1 + `">`
	mustUpdate(t, s, validDraft(content))

	_, err := h.orch.Save(ctx, s)
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	var serr *SaveError
	if !errors.As(err, &serr) || serr.RolledBack != 1 {
		t.Fatalf("expected one rolled back upload, got %v", err)
	}
	if !strings.HasSuffix(err.Error(), "(uploads rolled back)") || !strings.Contains(err.Error(), "storage unavailable") {
		t.Errorf("message: %q", err.Error())
	}

	if !slices.Equal(h.assets.deletedIDs, []string{"asset-1"}) {
		t.Errorf("rollback deletes: got %v, want [asset-1]", h.assets.deletedIDs)
	}
	if len(h.assets.live) != 0 {
		t.Errorf("assets left behind: %v", h.assets.live)
	}
	if len(h.posts.created) != 0 {
		t.Error("post must not be created")
	}

	v := s.View()
	if v.Draft.Content != content || v.Draft.CoverImage != cover {
		t.Errorf("draft not restored: %+v", v.Draft)
	}
	if v.State != StateIdle || v.Saving || v.Mode != ModeNew {
		t.Errorf("session after failure: %+v", v)
	}
	if len(v.Staged) != 2 {
		t.Errorf("staged files must survive a failed save, got %d", len(v.Staged))
	}
}

func TestScenarioEditReplacesCover(t *testing.T) {
	h := newHarness()
	s := editSession(h, "https://cdn/old.jpg", `<p>body</p>`)

	mustStageCover(t, s, "new.jpg")

	res, err := h.orch.Save(context.Background(), s)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(h.posts.updated) != 1 || h.posts.updated[0].CoverImage != "https://cdn/new.jpg" {
		t.Fatalf("update payload: %+v", h.posts.updated)
	}
	if !slices.Equal(h.assets.deletedURLs, []string{"https://cdn/old.jpg"}) {
		t.Errorf("cleanup deletes: got %v, want exactly the old cover", h.assets.deletedURLs)
	}
	if res.Cleanup.PartialFailure() {
		t.Errorf("unexpected cleanup failure: %+v", res.Cleanup)
	}
	if res.Created {
		t.Error("edit reported as create")
	}
}

// =====================================================================
// Properties
// =====================================================================

func TestUploadFailureLeavesNoAssets(t *testing.T) {
	for n := 1; n <= 4; n++ {
		for k := 1; k <= n; k++ {
			t.Run(fmt.Sprintf("fail %d of %d", k, n), func(t *testing.T) {
				h := newHarness()
				h.assets.failUploadAt = k
				s := NewSession("user-1", h.blobs)

				var b strings.Builder
				for i := range n {
					handle := mustStageImage(t, s, fmt.Sprintf("img%d.png", i))
					fmt.Fprintf(&b, `<img src="%s">`, handle)
				}
				mustUpdate(t, s, validDraft(b.String()))

				_, err := h.orch.Save(context.Background(), s)
				if !errors.Is(err, ErrUploadFailed) {
					t.Fatalf("expected ErrUploadFailed, got %v", err)
				}
				if len(h.assets.live) != 0 {
					t.Errorf("assets tied to the attempt remain: %v", h.assets.live)
				}
				if len(h.assets.deletedIDs) != k-1 {
					t.Errorf("rollback deletes: got %d, want %d", len(h.assets.deletedIDs), k-1)
				}
				if len(h.assets.uploads) != k {
					t.Errorf("uploads attempted: got %d, want %d (abort on first failure)", len(h.assets.uploads), k)
				}
				if len(h.posts.created) != 0 {
					t.Error("post persisted after upload failure")
				}
			})
		}
	}
}

func TestResaveWithoutChangesDeletesNothing(t *testing.T) {
	h := newHarness()
	s := editSession(h, "https://cdn/cover.jpg", `<img src="https://cdn/a.png">`)

	handle := mustStageImage(t, s, "b.png")
	content := `<img src="https://cdn/a.png"><img src="` + handle + `">`
	mustUpdate(t, s, DraftPatch{Content: &content})

	if _, err := h.orch.Save(context.Background(), s); err != nil {
		t.Fatalf("first save: %v", err)
	}
	h.assets.deletedURLs = nil

	res, err := h.orch.Save(context.Background(), s)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(h.assets.deletedURLs) != 0 || len(res.Cleanup.Deleted) != 0 {
		t.Errorf("second save deleted %v", h.assets.deletedURLs)
	}
	if res.Uploaded != 0 {
		t.Errorf("second save uploaded %d assets", res.Uploaded)
	}
}

func TestCleanupDeletesExactlyDroppedImages(t *testing.T) {
	h := newHarness()
	s := editSession(h, "", `<img src="https://cdn/A"><img src="https://cdn/B"><img src="https://cdn/C">`)

	content := `<img src="https://cdn/A"><img src="https://cdn/D">`
	mustUpdate(t, s, DraftPatch{Content: &content})

	if _, err := h.orch.Save(context.Background(), s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got := slices.Clone(h.assets.deletedURLs)
	slices.Sort(got)
	if !slices.Equal(got, []string{"https://cdn/B", "https://cdn/C"}) {
		t.Errorf("deleted %v, want exactly B and C", got)
	}
}

func TestRemovedAssets(t *testing.T) {
	tests := []struct {
		name      string
		base      Baseline
		newInline []string
		newCover  string
		want      []string
	}{
		{"nothing changed", Baseline{Cover: "https://cdn/c", Inline: []string{"https://cdn/a"}}, []string{"https://cdn/a"}, "https://cdn/c", nil},
		{"cover replaced", Baseline{Cover: "https://cdn/c"}, nil, "https://cdn/d", []string{"https://cdn/c"}},
		{"cover removed", Baseline{Cover: "https://cdn/c"}, nil, "", []string{"https://cdn/c"}},
		{"foreign cover kept", Baseline{Cover: "https://elsewhere/c"}, nil, "", nil},
		{"cover moved inline still deleted once", Baseline{Cover: "https://cdn/x", Inline: []string{"https://cdn/x"}}, nil, "", []string{"https://cdn/x"}},
		{"foreign inline ignored", Baseline{Inline: []string{"https://other/a"}}, nil, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := removedAssets(tt.base, tt.newInline, tt.newCover, testClassifier)
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// =====================================================================
// Failure handling
// =====================================================================

func TestPersistFailureRollsBackAllUploads(t *testing.T) {
	h := newHarness()
	h.posts.err = errors.New("backend error (status 200): Category not found")
	s := NewSession("user-1", h.blobs)
	mustStageCover(t, s, "c.png")
	handle := mustStageImage(t, s, "i.png")
	mustUpdate(t, s, validDraft(`<img src="`+handle+`">`))

	_, err := h.orch.Save(context.Background(), s)
	if !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("expected ErrPersistFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "Category not found") {
		t.Errorf("message lacks backend reason: %q", err.Error())
	}
	if len(h.assets.deletedIDs) != 2 || len(h.assets.live) != 0 {
		t.Errorf("rollback: deleted=%v live=%v", h.assets.deletedIDs, h.assets.live)
	}
}

func TestRollbackSurvivesCallerCancellation(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.posts.err = context.Canceled
	h.posts.cancel = cancel

	s := NewSession("user-1", h.blobs)
	handle := mustStageImage(t, s, "i.png")
	mustUpdate(t, s, validDraft(`<img src="`+handle+`">`))

	if _, err := h.orch.Save(ctx, s); !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("expected ErrPersistFailed, got %v", err)
	}
	if len(h.assets.deletedIDs) != 1 {
		t.Fatalf("rollback did not run: %v", h.assets.deletedIDs)
	}
	for _, e := range h.assets.deleteCtxErr {
		if e != nil {
			t.Errorf("rollback ran on a cancelled context: %v", e)
		}
	}
}

func TestRollbackFailureIsRecordedAsOrphan(t *testing.T) {
	h := newHarness()
	h.assets.failUploadAt = 2
	h.assets.failDeleteID["asset-1"] = true
	s := NewSession("user-1", h.blobs)
	a := mustStageImage(t, s, "a.png")
	b := mustStageImage(t, s, "b.png")
	mustUpdate(t, s, validDraft(`<img src="`+a+`"><img src="`+b+`">`))

	_, err := h.orch.Save(context.Background(), s)
	var serr *SaveError
	if !errors.As(err, &serr) || !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected upload SaveError, got %v", err)
	}
	if serr.Orphaned != 1 || serr.RolledBack != 0 {
		t.Errorf("orphaned/rolled back: %d/%d", serr.Orphaned, serr.RolledBack)
	}
	if len(h.orphans.recorded) != 1 {
		t.Fatalf("orphans: got %d, want 1", len(h.orphans.recorded))
	}
	o := h.orphans.recorded[0]
	if o.AssetID != "asset-1" || o.Reason != models.OrphanReasonRollback {
		t.Errorf("orphan: %+v", o)
	}
}

func TestCleanupPartialFailureIsAWarning(t *testing.T) {
	h := newHarness()
	h.assets.failDeleteURL["https://cdn/B"] = true
	s := editSession(h, "https://cdn/cover", `<img src="https://cdn/A"><img src="https://cdn/B">`)

	content := `<p>no images</p>`
	empty := ""
	mustUpdate(t, s, DraftPatch{Content: &content, CoverImage: &empty})

	res, err := h.orch.Save(context.Background(), s)
	if err != nil {
		t.Fatalf("cleanup failure must not fail the save: %v", err)
	}
	if !res.Cleanup.PartialFailure() || len(res.Cleanup.Failed) != 1 || res.Cleanup.Failed[0].URL != "https://cdn/B" {
		t.Errorf("report: %+v", res.Cleanup)
	}
	if len(res.Cleanup.Deleted) != 2 {
		t.Errorf("independent deletions: got %v, want A and cover", res.Cleanup.Deleted)
	}
	if !strings.Contains(res.Cleanup.Warning(), "1 old image(s)") {
		t.Errorf("warning: %q", res.Cleanup.Warning())
	}
	if len(h.orphans.recorded) != 1 || h.orphans.recorded[0].URL != "https://cdn/B" || h.orphans.recorded[0].PostID != "post-1" {
		t.Errorf("orphans: %+v", h.orphans.recorded)
	}
	if len(h.posts.updated) != 1 {
		t.Error("post update must stay committed")
	}
	if s.View().State != StateDone {
		t.Errorf("state: got %s", s.View().State)
	}
}

func TestSaveInProgressGuard(t *testing.T) {
	h := newHarness()
	h.assets.blockUpload = make(chan struct{})
	h.assets.uploadStarted = make(chan struct{}, 1)
	s := NewSession("user-1", h.blobs)
	handle := mustStageImage(t, s, "i.png")
	mustUpdate(t, s, validDraft(`<img src="`+handle+`">`))

	done := make(chan error, 1)
	go func() {
		_, err := h.orch.Save(context.Background(), s)
		done <- err
	}()
	<-h.assets.uploadStarted

	if _, err := h.orch.Save(context.Background(), s); !errors.Is(err, ErrSaveInProgress) {
		t.Errorf("concurrent save: expected ErrSaveInProgress, got %v", err)
	}
	title := "changed"
	if _, err := s.Update(context.Background(), DraftPatch{Title: &title}); !errors.Is(err, ErrSaveInProgress) {
		t.Errorf("draft change during save: expected ErrSaveInProgress, got %v", err)
	}
	if _, err := s.StageImage(context.Background(), img("x.png")); !errors.Is(err, ErrSaveInProgress) {
		t.Errorf("staging during save: expected ErrSaveInProgress, got %v", err)
	}
	if v := s.View(); !v.Saving || v.State != StateUploading {
		t.Errorf("view during save: saving=%v state=%s", v.Saving, v.State)
	}

	close(h.assets.blockUpload)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := h.orch.Save(context.Background(), s); err != nil {
		t.Errorf("save after completion: %v", err)
	}
}

func TestValidationRunsBeforeNetwork(t *testing.T) {
	h := newHarness()
	s := NewSession("user-1", h.blobs)
	handle := mustStageImage(t, s, "i.png")
	content := `<img src="` + handle + `">`
	mustUpdate(t, s, DraftPatch{Content: &content})

	_, err := h.orch.Save(context.Background(), s)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["title"]; !ok {
		t.Errorf("title not reported: %v", ve.Fields)
	}
	if _, ok := ve.Fields["category"]; !ok {
		t.Errorf("category not reported: %v", ve.Fields)
	}
	if len(h.assets.uploads) != 0 || len(h.posts.created) != 0 {
		t.Error("network touched before validation")
	}
	if s.View().Saving {
		t.Error("save slot not released after validation failure")
	}
}

func TestUnresolvableLocalReferences(t *testing.T) {
	h := newHarness()
	s := NewSession("user-1", h.blobs)
	ghostCover := htmlref.LocalScheme + "gone-cover"
	content := `<img src="local:never-staged">`
	p := validDraft(content)
	p.CoverImage = &ghostCover
	mustUpdate(t, s, p)

	res, err := h.orch.Save(context.Background(), s)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if res.CoverImage != "" {
		t.Errorf("unstaged local cover persisted: %q", res.CoverImage)
	}
	if res.Content != content {
		t.Errorf("content changed: %q", res.Content)
	}
	if len(h.assets.uploads) != 0 {
		t.Errorf("uploads: %v", h.assets.uploads)
	}
}

// =====================================================================
// Session
// =====================================================================

func TestContentChangePrunesStagedImages(t *testing.T) {
	h := newHarness()
	s := NewSession("user-1", h.blobs)
	a := mustStageImage(t, s, "a.png")
	b := mustStageImage(t, s, "b.png")

	content := `<img src="` + a + `">`
	mustUpdate(t, s, DraftPatch{Content: &content})

	staged := s.View().Staged
	if len(staged) != 1 || staged[0].Handle != a {
		t.Errorf("staged after prune: %+v (b=%s should be gone)", staged, b)
	}
	if h.blobs.Len() != 1 {
		t.Errorf("blob payloads: got %d, want 1", h.blobs.Len())
	}
}

func TestCoverChangesReleaseStagedCover(t *testing.T) {
	h := newHarness()
	s := NewSession("user-1", h.blobs)
	mustStageCover(t, s, "one.png")
	second := mustStageCover(t, s, "two.png")

	if got := s.View().Draft.CoverImage; got != second {
		t.Errorf("cover: got %q, want %q", got, second)
	}
	if h.blobs.Len() != 1 {
		t.Errorf("replaced cover payload not released: %d blobs", h.blobs.Len())
	}

	if err := s.ClearCover(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.blobs.Len() != 0 || s.View().Draft.CoverImage != "" {
		t.Errorf("cover not cleared: %d blobs, cover=%q", h.blobs.Len(), s.View().Draft.CoverImage)
	}
}

func TestStageRejectsNonImages(t *testing.T) {
	s := NewSession("user-1", staging.NewMemoryBlobs())
	_, err := s.StageImage(context.Background(), staging.File{Name: "notes.txt", ContentType: "text/plain"})
	if !errors.Is(err, staging.ErrInvalidFileType) {
		t.Errorf("expected ErrInvalidFileType, got %v", err)
	}
}

func TestEditSessionBaseline(t *testing.T) {
	h := newHarness()
	s := editSession(h, "https://cdn/c.jpg", `<img src="https://cdn/a.png"><img src="https://elsewhere/x.png"><img src="https://cdn/a.png">`)
	v := s.View()
	if v.Mode != ModeEdit || v.PostID != "post-1" {
		t.Errorf("mode/post: %s/%s", v.Mode, v.PostID)
	}
	if v.Baseline.Cover != "https://cdn/c.jpg" || !slices.Equal(v.Baseline.Inline, []string{"https://cdn/a.png"}) {
		t.Errorf("baseline: %+v", v.Baseline)
	}
	if v.Draft.Category != "cat-1" || !slices.Equal(v.Draft.Tags, []string{"t1"}) {
		t.Errorf("draft: %+v", v.Draft)
	}
}

// =====================================================================
// Draft
// =====================================================================

func TestDraftValidate(t *testing.T) {
	long := strings.Repeat("é", maxTitleLen+1)
	tests := []struct {
		name       string
		draft      Draft
		wantFields []string
	}{
		{"valid", Draft{Title: "T", Category: "c"}, nil},
		{"blank title", Draft{Title: "   ", Category: "c"}, []string{"title"}},
		{"title counted in runes", Draft{Title: strings.Repeat("é", maxTitleLen), Category: "c"}, nil},
		{"title too long", Draft{Title: long, Category: "c"}, []string{"title"}},
		{"excerpt too long", Draft{Title: "T", Category: "c", Excerpt: strings.Repeat("x", maxExcerptLen+1)}, []string{"excerpt"}},
		{"bad status", Draft{Title: "T", Category: "c", Status: "live"}, []string{"status"}},
		{"empty tag", Draft{Title: "T", Category: "c", Tags: []string{"t1", ""}}, []string{"tags"}},
		{"missing everything", Draft{}, []string{"title", "category"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(ve.Fields) != len(tt.wantFields) {
				t.Errorf("fields: got %v, want %v", ve.Fields, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := ve.Fields[f]; !ok {
					t.Errorf("missing field %q in %v", f, ve.Fields)
				}
			}
		})
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words int
		want  string
	}{
		{0, "1 min read"},
		{199, "1 min read"},
		{200, "1 min read"},
		{201, "2 min read"},
		{1000, "5 min read"},
	}
	for _, tt := range tests {
		content := "<p>" + strings.Repeat("word ", tt.words) + "</p>"
		if got := ReadingTime(content); got != tt.want {
			t.Errorf("ReadingTime(%d words) = %q, want %q", tt.words, got, tt.want)
		}
	}
}
