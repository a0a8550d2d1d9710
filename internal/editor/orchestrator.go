// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor implements post editing sessions and the save workflow
// that turns staged images into remote assets. A save uploads staged files
// one at a time, rewrites the content, persists the post and then deletes
// remote images the new version no longer uses. A failure before the post
// is committed deletes everything the attempt uploaded.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blogdesk/internal/htmlref"
	"blogdesk/internal/models"
	"blogdesk/internal/staging"
)

// AssetClient uploads and deletes remote assets.
type AssetClient interface {
	Upload(ctx context.Context, f staging.File) (models.UploadedAsset, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByURL(ctx context.Context, url string) error
}

// PostWriter persists posts.
type PostWriter interface {
	Create(ctx context.Context, p models.PostPayload) (*models.Post, error)
	Update(ctx context.Context, id string, p models.PostPayload) (*models.Post, error)
}

// OrphanRecorder keeps track of remote assets that could not be deleted.
type OrphanRecorder interface {
	Record(ctx context.Context, o models.Orphan) error
}

const (
	// DefaultCleanupConcurrency bounds parallel deletions after a save.
	DefaultCleanupConcurrency = 4

	// DefaultDetachedTimeout bounds rollback and cleanup once they no
	// longer follow the caller's context.
	DefaultDetachedTimeout = 30 * time.Second
)

// Config wires an Orchestrator.
type Config struct {
	Assets             AssetClient
	Posts              PostWriter
	Classifier         *htmlref.Classifier
	Orphans            OrphanRecorder // optional
	Logger             *slog.Logger   // optional
	CleanupConcurrency int
	DetachedTimeout    time.Duration
}

// Orchestrator runs the save workflow of editor sessions.
type Orchestrator struct {
	assets      AssetClient
	posts       PostWriter
	classifier  *htmlref.Classifier
	orphans     OrphanRecorder
	logger      *slog.Logger
	concurrency int
	detached    time.Duration
}

// NewOrchestrator creates an orchestrator from cfg, applying defaults.
func NewOrchestrator(cfg Config) *Orchestrator {
	o := &Orchestrator{
		assets:      cfg.Assets,
		posts:       cfg.Posts,
		classifier:  cfg.Classifier,
		orphans:     cfg.Orphans,
		logger:      cfg.Logger,
		concurrency: cfg.CleanupConcurrency,
		detached:    cfg.DetachedTimeout,
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.concurrency <= 0 {
		o.concurrency = DefaultCleanupConcurrency
	}
	if o.detached <= 0 {
		o.detached = DefaultDetachedTimeout
	}
	return o
}

// With returns a copy bound to other asset and post clients, typically
// the REST client authenticated as the session's user.
func (o *Orchestrator) With(assets AssetClient, posts PostWriter) *Orchestrator {
	cp := *o
	if assets != nil {
		cp.assets = assets
	}
	if posts != nil {
		cp.posts = posts
	}
	return &cp
}

// Result describes a committed save.
type Result struct {
	Post       *models.Post  `json:"post,omitempty"`
	PostID     string        `json:"postId"`
	Created    bool          `json:"created"`
	Content    string        `json:"content"`
	CoverImage string        `json:"coverImage"`
	Uploaded   int           `json:"uploaded"`
	Cleanup    CleanupReport `json:"cleanup"`
}

// upload is one staged file the attempt must upload.
type upload struct {
	handle string
	cover  bool
}

// plan lists the uploads in order: the cover first when it is a staged
// handle, then staged inline handles in order of first appearance.
func plan(d Draft, area *staging.Area) []upload {
	var out []upload
	if htmlref.IsLocal(d.CoverImage) {
		if e, ok := area.Cover(); ok && e.Handle == d.CoverImage {
			out = append(out, upload{handle: d.CoverImage, cover: true})
		}
	}
	for _, ref := range htmlref.ExtractImageReferences(d.Content) {
		if htmlref.IsLocal(ref) && area.IsInline(ref) {
			out = append(out, upload{handle: ref})
		}
	}
	return out
}

// Save runs one save attempt for s. On failure before the post is
// committed every upload of the attempt is deleted, the draft keeps its
// pre-attempt values and a *SaveError is returned. Cleanup failures after
// the commit never fail the save; they are reported in Result.Cleanup.
func (o *Orchestrator) Save(ctx context.Context, s *Session) (*Result, error) {
	at, err := s.beginSave()
	if err != nil {
		return nil, err
	}
	if err := at.draft.Validate(); err != nil {
		s.fail(err)
		return nil, err
	}

	log := o.logger.With("session", s.ID, "mode", at.mode, "post_id", at.postID)
	uploads := plan(at.draft, s.area)

	// Upload.
	s.setState(StateUploading)
	var uploaded []string
	replace := make(map[string]string, len(uploads))
	coverURL := ""
	for _, u := range uploads {
		f, err := s.area.Open(ctx, u.handle)
		if err != nil {
			return nil, o.rollback(ctx, s, at, uploaded, &SaveError{Kind: ErrUploadFailed, Err: err})
		}
		asset, err := o.assets.Upload(ctx, f)
		if err == nil && (asset.ID == "" || asset.URL == "") {
			err = fmt.Errorf("upload %s: response missing asset id or url", f.Name)
		}
		if err != nil {
			return nil, o.rollback(ctx, s, at, uploaded, &SaveError{Kind: ErrUploadFailed, Err: err})
		}
		uploaded = append(uploaded, asset.ID)
		replace[u.handle] = asset.URL
		if u.cover {
			coverURL = asset.URL
		}
		log.Debug("asset uploaded", "handle", u.handle, "asset_id", asset.ID)
	}

	// Rewrite.
	finalContent := htmlref.RewriteImageReferences(at.draft.Content, replace)
	finalCover := at.draft.CoverImage
	switch {
	case coverURL != "":
		finalCover = coverURL
	case htmlref.IsLocal(finalCover):
		// A handle with no staged file behind it cannot be persisted.
		finalCover = ""
	}

	// Persist.
	s.setState(StatePersisting)
	payload := at.draft.payload(finalContent, finalCover)
	var post *models.Post
	if at.mode == ModeEdit {
		post, err = o.posts.Update(ctx, at.postID, payload)
	} else {
		post, err = o.posts.Create(ctx, payload)
	}
	if err != nil {
		return nil, o.rollback(ctx, s, at, uploaded, &SaveError{Kind: ErrPersistFailed, Err: err})
	}

	postID := at.postID
	if post != nil && post.ID != "" {
		postID = post.ID
	}
	newInline := o.classifier.RemoteReferences(finalContent)

	// Cleanup.
	var report CleanupReport
	if at.mode == ModeEdit {
		s.setState(StateCleaning)
		removed := removedAssets(at.baseline, newInline, finalCover, o.classifier)
		report = o.cleanup(ctx, postID, removed)
	}

	// Bookkeeping.
	for _, u := range uploads {
		s.area.Release(ctx, u.handle)
	}
	s.area.Prune(ctx, htmlref.LocalReferences(finalContent))
	s.commit(postID, finalContent, finalCover, newInline)

	log.Info("post saved", "post_id", postID, "uploaded", len(uploaded),
		"cleanup_deleted", len(report.Deleted), "cleanup_failed", len(report.Failed))

	return &Result{
		Post:       post,
		PostID:     postID,
		Created:    at.mode == ModeNew,
		Content:    finalContent,
		CoverImage: finalCover,
		Uploaded:   len(uploaded),
		Cleanup:    report,
	}, nil
}

// detach returns a context that survives the caller's cancellation but is
// still bounded in time.
func (o *Orchestrator) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), o.detached)
}

// rollback deletes every asset uploaded by the attempt and returns the
// error the save surfaces. Deletion failures are logged and recorded as
// orphans; they never change the returned error's kind.
func (o *Orchestrator) rollback(ctx context.Context, s *Session, at attempt, uploaded []string, serr *SaveError) error {
	s.setState(StateRollingBack)
	log := o.logger.With("session", s.ID, "post_id", at.postID)

	if len(uploaded) > 0 {
		rctx, cancel := o.detach(ctx)
		defer cancel()
		for _, id := range uploaded {
			if err := o.assets.DeleteByID(rctx, id); err != nil {
				serr.Orphaned++
				log.Warn("rollback delete failed", "asset_id", id, "error", err)
				o.recordOrphan(rctx, models.Orphan{
					AssetID:   id,
					Reason:    models.OrphanReasonRollback,
					PostID:    at.postID,
					LastError: err.Error(),
				})
				continue
			}
			serr.RolledBack++
		}
	}

	log.Warn("save rolled back", "error", serr.Err, "rolled_back", serr.RolledBack, "orphaned", serr.Orphaned)
	s.fail(serr)
	return serr
}

func (o *Orchestrator) recordOrphan(ctx context.Context, orphan models.Orphan) {
	if o.orphans == nil {
		return
	}
	if err := o.orphans.Record(ctx, orphan); err != nil {
		o.logger.Error("recording orphaned asset", "asset_id", orphan.AssetID, "url", orphan.URL, "error", err)
	}
}
