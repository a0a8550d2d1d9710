// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category groups posts. Every post belongs to exactly one.
type Category struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug,omitempty"`
	Description string     `json:"description,omitempty"`
	PostCount   int        `json:"postCount,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// CategoryPayload is the body for category create/update.
type CategoryPayload struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// Tag is a free-form label; posts carry any number of them.
type Tag struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// TagPayload is the body for tag create/update.
type TagPayload struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}
