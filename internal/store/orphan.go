// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// orphan.go keeps the ledger of remote assets whose deletion failed during
// a save rollback or an old-image cleanup. Entries stay pending until a
// retry succeeds.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blogdesk/internal/models"
)

// ErrNothingToDelete is returned when an orphan carries neither an asset id
// nor a URL.
var ErrNothingToDelete = errors.New("orphan has no asset id or url")

// AssetDeleter removes remote assets.
type AssetDeleter interface {
	DeleteByID(ctx context.Context, id string) error
	DeleteByURL(ctx context.Context, url string) error
}

// OrphanStore handles the orphaned asset ledger.
type OrphanStore struct {
	db *sql.DB
}

// NewOrphanStore creates a new OrphanStore.
func NewOrphanStore(db *sql.DB) *OrphanStore {
	return &OrphanStore{db: db}
}

const orphanColumns = `id, asset_id, url, reason, post_id, attempts, last_error, resolved_at, created_at`

// Record inserts a new pending orphan. A zero ID gets a fresh UUID.
func (s *OrphanStore) Record(ctx context.Context, o models.Orphan) error {
	if o.AssetID == "" && o.URL == "" {
		return ErrNothingToDelete
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO asset_orphans (id, asset_id, url, reason, post_id, last_error)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, o.ID, o.AssetID, o.URL, string(o.Reason), o.PostID, o.LastError)
	if err != nil {
		return fmt.Errorf("insert orphan: %w", err)
	}

	slog.Info("orphaned asset recorded", "id", o.ID, "asset_id", o.AssetID, "url", o.URL, "reason", o.Reason)
	return nil
}

// Get retrieves an orphan by ID. Returns nil, nil when not found.
func (s *OrphanStore) Get(ctx context.Context, id uuid.UUID) (*models.Orphan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orphanColumns+` FROM asset_orphans WHERE id = $1`, id)
	o, err := scanOrphan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get orphan: %w", err)
	}
	return o, nil
}

// ListPending returns unresolved orphans, oldest first.
func (s *OrphanStore) ListPending(ctx context.Context, limit, offset int) ([]models.Orphan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orphanColumns+`
		FROM asset_orphans
		WHERE resolved_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orphans: %w", err)
	}
	defer rows.Close()

	var out []models.Orphan
	for rows.Next() {
		o, err := scanOrphan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan orphan: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// CountPending returns the number of unresolved orphans.
func (s *OrphanStore) CountPending(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM asset_orphans WHERE resolved_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orphans: %w", err)
	}
	return n, nil
}

// MarkResolved stamps the orphan as deleted.
func (s *OrphanStore) MarkResolved(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE asset_orphans
		SET attempts = attempts + 1, last_error = '', resolved_at = $2
		WHERE id = $1
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("resolve orphan: %w", err)
	}
	return nil
}

// MarkFailed counts a failed retry and keeps its error.
func (s *OrphanStore) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE asset_orphans
		SET attempts = attempts + 1, last_error = $2
		WHERE id = $1
	`, id, msg)
	if err != nil {
		return fmt.Errorf("mark orphan failed: %w", err)
	}
	return nil
}

// Retry tries to delete the orphan's asset again and updates the ledger with
// the outcome. It returns the refreshed entry, or nil, nil when the ID is
// unknown. A failed deletion is returned as an error alongside the entry.
func (s *OrphanStore) Retry(ctx context.Context, id uuid.UUID, assets AssetDeleter) (*models.Orphan, error) {
	o, err := s.Get(ctx, id)
	if err != nil || o == nil {
		return o, err
	}
	if o.IsResolved() {
		return o, nil
	}

	var derr error
	switch {
	case o.AssetID != "":
		derr = assets.DeleteByID(ctx, o.AssetID)
	case o.URL != "":
		derr = assets.DeleteByURL(ctx, o.URL)
	default:
		derr = ErrNothingToDelete
	}

	if derr != nil {
		if err := s.MarkFailed(ctx, id, derr.Error()); err != nil {
			return nil, err
		}
		slog.Warn("orphan retry failed", "id", id, "asset_id", o.AssetID, "url", o.URL, "error", derr)
	} else {
		if err := s.MarkResolved(ctx, id); err != nil {
			return nil, err
		}
		slog.Info("orphan resolved", "id", id, "asset_id", o.AssetID, "url", o.URL)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if derr != nil {
		return updated, fmt.Errorf("delete asset: %w", derr)
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrphan(r rowScanner) (*models.Orphan, error) {
	o := &models.Orphan{}
	var reason string
	var resolvedAt sql.NullTime
	if err := r.Scan(&o.ID, &o.AssetID, &o.URL, &reason, &o.PostID, &o.Attempts, &o.LastError, &resolvedAt, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Reason = models.OrphanReason(reason)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		o.ResolvedAt = &t
	}
	return o, nil
}

// LogOrphans is the recorder used when no database is configured. It only
// logs what would have been recorded.
type LogOrphans struct {
	Logger *slog.Logger
}

// Record logs the orphan at warn level.
func (l LogOrphans) Record(_ context.Context, o models.Orphan) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("orphaned asset (no ledger configured)",
		"asset_id", o.AssetID,
		"url", o.URL,
		"reason", o.Reason,
		"post_id", o.PostID,
		"error", o.LastError,
	)
	return nil
}
