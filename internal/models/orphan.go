// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// OrphanReason tells why an asset was left behind.
type OrphanReason string

const (
	// OrphanReasonRollback: an upload of a failed save could not be deleted.
	OrphanReasonRollback OrphanReason = "rollback"
	// OrphanReasonCleanup: an asset a saved post no longer uses could not be deleted.
	OrphanReasonCleanup OrphanReason = "cleanup"
)

// Orphan is a remote asset whose deletion failed and awaits a manual retry.
// Rollback orphans carry an AssetID, cleanup orphans a URL.
type Orphan struct {
	ID         uuid.UUID    `json:"id"`
	AssetID    string       `json:"assetId,omitempty"`
	URL        string       `json:"url,omitempty"`
	Reason     OrphanReason `json:"reason"`
	PostID     string       `json:"postId,omitempty"`
	Attempts   int          `json:"attempts"`
	LastError  string       `json:"lastError,omitempty"`
	ResolvedAt *time.Time   `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// IsResolved returns true once a retry deleted the asset.
func (o *Orphan) IsResolved() bool {
	return o.ResolvedAt != nil
}
