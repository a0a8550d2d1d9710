// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// AssetStatus is the lifecycle state the asset service keeps per object.
type AssetStatus string

const (
	AssetStatusActive        AssetStatus = "active"
	AssetStatusOrphaned      AssetStatus = "orphaned"
	AssetStatusPendingDelete AssetStatus = "pending_delete"
	AssetStatusDeleted       AssetStatus = "deleted"
)

// AssetUse identifies one place that references an asset.
type AssetUse struct {
	Kind  string `json:"kind"` // post, profile, category, comment
	RefID string `json:"refId"`
	Field string `json:"field"`
}

// Asset is a stored object owned by the asset service.
type Asset struct {
	ID           string      `json:"_id"`
	URL          string      `json:"url"`
	SecureURL    string      `json:"secureUrl,omitempty"`
	Provider     string      `json:"provider,omitempty"`
	Key          string      `json:"key,omitempty"`
	Owner        string      `json:"owner,omitempty"`
	Status       AssetStatus `json:"status,omitempty"`
	RefCount     int         `json:"refCount,omitempty"`
	UsedBy       []AssetUse  `json:"usedBy,omitempty"`
	MimeType     string      `json:"mimeType,omitempty"`
	Size         int64       `json:"size,omitempty"`
	Width        int         `json:"width,omitempty"`
	Height       int         `json:"height,omitempty"`
	OriginalName string      `json:"originalName,omitempty"`
	OrphanedAt   *time.Time  `json:"orphanedAt,omitempty"`
	DeletedAt    *time.Time  `json:"deletedAt,omitempty"`
	CreatedAt    *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time  `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts the asset id as either "_id" or "id".
func (a *Asset) UnmarshalJSON(b []byte) error {
	type plain Asset
	aux := struct {
		*plain
		AltID string `json:"id"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = aux.AltID
	}
	return nil
}

// UploadedAsset is the part of an upload result the editor needs.
type UploadedAsset struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
