// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"blogdesk/internal/models"
)

type fakeDeleter struct {
	err  error
	ids  []string
	urls []string
}

func (f *fakeDeleter) DeleteByID(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return f.err
}

func (f *fakeDeleter) DeleteByURL(_ context.Context, url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

func TestOrphanStore_RecordAndGet(t *testing.T) {
	db := testDB(t)
	s := NewOrphanStore(db)
	ctx := context.Background()
	postID := "test-post-" + uuid.NewString()
	t.Cleanup(func() { cleanOrphans(t, db, postID) })

	o := models.Orphan{
		ID:        uuid.New(),
		AssetID:   "asset-1",
		Reason:    models.OrphanReasonRollback,
		PostID:    postID,
		LastError: "boom",
	}
	if err := s.Record(ctx, o); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := s.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected orphan, got nil")
	}
	if got.AssetID != "asset-1" || got.Reason != models.OrphanReasonRollback || got.LastError != "boom" {
		t.Errorf("unexpected orphan: %+v", got)
	}
	if got.IsResolved() {
		t.Error("new orphan should be pending")
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestOrphanStore_GetNotFound(t *testing.T) {
	s := NewOrphanStore(testDB(t))
	got, err := s.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestOrphanStore_RecordRequiresTarget(t *testing.T) {
	s := NewOrphanStore(testDB(t))
	err := s.Record(context.Background(), models.Orphan{Reason: models.OrphanReasonCleanup})
	if !errors.Is(err, ErrNothingToDelete) {
		t.Errorf("got %v, want ErrNothingToDelete", err)
	}
}

func TestOrphanStore_ListPendingAndCount(t *testing.T) {
	db := testDB(t)
	s := NewOrphanStore(db)
	ctx := context.Background()
	postID := "test-post-" + uuid.NewString()
	t.Cleanup(func() { cleanOrphans(t, db, postID) })

	before, err := s.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending: %v", err)
	}

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	for i, id := range ids {
		o := models.Orphan{ID: id, URL: "https://cdn.example.com/" + id.String(), Reason: models.OrphanReasonCleanup, PostID: postID}
		if i == 0 {
			o.URL, o.AssetID = "", "asset-"+id.String()
		}
		if err := s.Record(ctx, o); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := s.MarkResolved(ctx, ids[0]); err != nil {
		t.Fatalf("MarkResolved: %v", err)
	}

	after, err := s.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending: %v", err)
	}
	if after != before+1 {
		t.Errorf("pending count: got %d, want %d", after, before+1)
	}

	list, err := s.ListPending(ctx, 1000, 0)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	var found bool
	for _, o := range list {
		if o.ID == ids[0] {
			t.Error("resolved orphan listed as pending")
		}
		if o.ID == ids[1] {
			found = true
		}
	}
	if !found {
		t.Error("pending orphan missing from list")
	}
}

func TestOrphanStore_Retry(t *testing.T) {
	db := testDB(t)
	s := NewOrphanStore(db)
	ctx := context.Background()
	postID := "test-post-" + uuid.NewString()
	t.Cleanup(func() { cleanOrphans(t, db, postID) })

	byID := models.Orphan{ID: uuid.New(), AssetID: "a1", Reason: models.OrphanReasonRollback, PostID: postID}
	byURL := models.Orphan{ID: uuid.New(), URL: "https://cdn.example.com/x.png", Reason: models.OrphanReasonCleanup, PostID: postID}
	for _, o := range []models.Orphan{byID, byURL} {
		if err := s.Record(ctx, o); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	t.Run("failure counts an attempt", func(t *testing.T) {
		d := &fakeDeleter{err: errors.New("upstream down")}
		got, err := s.Retry(ctx, byID.ID, d)
		if err == nil {
			t.Fatal("expected error")
		}
		if got == nil || got.Attempts != 1 || got.LastError != "upstream down" || got.IsResolved() {
			t.Errorf("unexpected orphan after failed retry: %+v", got)
		}
		if len(d.ids) != 1 || d.ids[0] != "a1" {
			t.Errorf("DeleteByID calls: %v", d.ids)
		}
	})

	t.Run("success resolves by id", func(t *testing.T) {
		got, err := s.Retry(ctx, byID.ID, &fakeDeleter{})
		if err != nil {
			t.Fatalf("Retry: %v", err)
		}
		if !got.IsResolved() || got.Attempts != 2 || got.LastError != "" {
			t.Errorf("unexpected orphan after retry: %+v", got)
		}
	})

	t.Run("success resolves by url", func(t *testing.T) {
		d := &fakeDeleter{}
		got, err := s.Retry(ctx, byURL.ID, d)
		if err != nil {
			t.Fatalf("Retry: %v", err)
		}
		if !got.IsResolved() {
			t.Error("expected resolved")
		}
		if len(d.urls) != 1 || d.urls[0] != byURL.URL {
			t.Errorf("DeleteByURL calls: %v", d.urls)
		}
	})

	t.Run("resolved orphans are not retried", func(t *testing.T) {
		d := &fakeDeleter{}
		if _, err := s.Retry(ctx, byURL.ID, d); err != nil {
			t.Fatalf("Retry: %v", err)
		}
		if len(d.ids)+len(d.urls) != 0 {
			t.Error("deleter called for resolved orphan")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		got, err := s.Retry(ctx, uuid.New(), &fakeDeleter{})
		if err != nil || got != nil {
			t.Errorf("got (%v, %v), want (nil, nil)", got, err)
		}
	})
}

func TestLogOrphans_Record(t *testing.T) {
	if err := (LogOrphans{}).Record(context.Background(), models.Orphan{AssetID: "x"}); err != nil {
		t.Errorf("Record: %v", err)
	}
}
