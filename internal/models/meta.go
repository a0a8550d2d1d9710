// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Meta is the single pagination shape handed to callers, whatever shape
// the backend used for a given list.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewMeta derives page counts and navigation flags from page, limit and total.
func NewMeta(page, limit, total int) Meta {
	m := Meta{Page: page, Limit: limit, Total: total}
	if limit > 0 && total > 0 {
		m.TotalPages = (total + limit - 1) / limit
	}
	m.HasNext = page < m.TotalPages
	m.HasPrev = page > 1
	return m
}

// Page is one page of a list response.
type Page[T any] struct {
	Meta  Meta `json:"meta"`
	Items []T  `json:"data"`
}
