// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogdesk/internal/htmlref"
	"blogdesk/internal/models"
	"blogdesk/internal/staging"
)

// Mode tells whether a session composes a new post or edits a stored one.
type Mode string

const (
	ModeNew  Mode = "new"
	ModeEdit Mode = "edit"
)

// State is the save state of a session.
type State string

const (
	StateIdle        State = "idle"
	StateUploading   State = "uploading"
	StatePersisting  State = "persisting"
	StateCleaning    State = "cleaning"
	StateDone        State = "done"
	StateRollingBack State = "rolling_back"
)

// Baseline is what the stored post referenced when the session loaded it
// or last saved it. Cleanup deletes what the baseline had and the new
// version dropped.
type Baseline struct {
	Cover  string   `json:"cover"`
	Inline []string `json:"inline"`
}

// Session is one open editor page: a draft, its staged images and the
// baseline of the stored post.
type Session struct {
	ID    string
	Owner string

	mu       sync.Mutex
	mode     Mode
	postID   string
	draft    Draft
	baseline Baseline
	state    State
	saving   bool
	lastErr  string
	lastSeen time.Time
	area     *staging.Area
}

// View is a read-only snapshot of a session.
type View struct {
	ID       string          `json:"id"`
	Mode     Mode            `json:"mode"`
	PostID   string          `json:"postId,omitempty"`
	Draft    Draft           `json:"draft"`
	Baseline Baseline        `json:"baseline"`
	State    State           `json:"state"`
	Saving   bool            `json:"saving"`
	LastErr  string          `json:"lastError,omitempty"`
	Staged   []staging.Entry `json:"staged"`
}

// NewSession opens a session for a post that does not exist yet.
func NewSession(owner string, blobs staging.BlobStore) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Owner:    owner,
		mode:     ModeNew,
		draft:    Draft{Status: models.PostStatusDraft},
		state:    StateIdle,
		lastSeen: time.Now(),
		area:     staging.NewArea(blobs),
	}
}

// EditSession opens a session on a stored post. The baseline is taken from
// the post's cover and the remote images in its content.
func EditSession(owner string, post *models.Post, classifier *htmlref.Classifier, blobs staging.BlobStore) *Session {
	s := NewSession(owner, blobs)
	s.mode = ModeEdit
	s.postID = post.ID
	s.draft = DraftFromPost(post)
	s.baseline = Baseline{
		Cover:  post.CoverImage,
		Inline: classifier.RemoteReferences(post.Content),
	}
	return s
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:       s.ID,
		Mode:     s.mode,
		PostID:   s.postID,
		Draft:    s.draft.clone(),
		Baseline: Baseline{Cover: s.baseline.Cover, Inline: append([]string(nil), s.baseline.Inline...)},
		State:    s.state,
		Saving:   s.saving,
		LastErr:  s.lastErr,
		Staged:   s.area.Entries(),
	}
}

// touch records activity for the idle janitor.
func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen, s.saving
}

// Update applies a patch to the draft. A content change releases every
// staged inline image the new content no longer references; replacing a
// staged cover releases it.
func (s *Session) Update(ctx context.Context, p DraftPatch) (Draft, error) {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return Draft{}, ErrSaveInProgress
	}
	oldCover := s.draft.CoverImage
	s.draft.apply(p)
	d := s.draft.clone()
	s.lastSeen = time.Now()
	s.mu.Unlock()

	if p.CoverImage != nil && oldCover != d.CoverImage && htmlref.IsLocal(oldCover) {
		s.area.Release(ctx, oldCover)
	}
	if p.Content != nil {
		s.area.Prune(ctx, htmlref.LocalReferences(d.Content))
	}
	return d, nil
}

// StageCover stages a cover file and points the draft at its handle.
func (s *Session) StageCover(ctx context.Context, f staging.File) (string, error) {
	if err := s.checkIdle(); err != nil {
		return "", err
	}
	handle, err := s.area.Stage(ctx, staging.KindCover, f)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.draft.CoverImage = handle
	s.lastSeen = time.Now()
	s.mu.Unlock()
	return handle, nil
}

// ClearCover removes the cover, releasing it if it was staged.
func (s *Session) ClearCover(ctx context.Context) error {
	empty := ""
	_, err := s.Update(ctx, DraftPatch{CoverImage: &empty})
	return err
}

// StageImage stages an inline image. The caller inserts the returned
// handle into the content as an <img src>.
func (s *Session) StageImage(ctx context.Context, f staging.File) (string, error) {
	if err := s.checkIdle(); err != nil {
		return "", err
	}
	handle, err := s.area.Stage(ctx, staging.KindInline, f)
	if err != nil {
		return "", err
	}
	s.touch()
	return handle, nil
}

// OpenStaged returns the payload behind a staged handle.
func (s *Session) OpenStaged(ctx context.Context, handle string) (staging.File, error) {
	s.touch()
	return s.area.Open(ctx, handle)
}

// Close releases every staged image.
func (s *Session) Close(ctx context.Context) {
	s.area.ReleaseAll(ctx)
}

func (s *Session) checkIdle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrSaveInProgress
	}
	return nil
}

// attempt is the frozen input of one save.
type attempt struct {
	mode     Mode
	postID   string
	draft    Draft
	baseline Baseline
}

// beginSave claims the save slot and snapshots the session.
func (s *Session) beginSave() (attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return attempt{}, ErrSaveInProgress
	}
	s.saving = true
	s.state = StateIdle
	s.lastErr = ""
	s.lastSeen = time.Now()
	return attempt{
		mode:     s.mode,
		postID:   s.postID,
		draft:    s.draft.clone(),
		baseline: Baseline{Cover: s.baseline.Cover, Inline: append([]string(nil), s.baseline.Inline...)},
	}, nil
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// fail ends a save attempt with the draft left untouched.
func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state = StateIdle
	s.saving = false
	s.lastErr = err.Error()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// commit records a successful save: the draft takes the final values, the
// baseline moves to the new references and, once the post has an id, a
// new post becomes an edit.
func (s *Session) commit(postID, content, cover string, inline []string) {
	s.mu.Lock()
	s.draft.Content = content
	s.draft.CoverImage = cover
	s.baseline = Baseline{Cover: cover, Inline: inline}
	if postID != "" {
		s.mode = ModeEdit
		s.postID = postID
	}
	s.state = StateDone
	s.saving = false
	s.lastSeen = time.Now()
	s.mu.Unlock()
}
