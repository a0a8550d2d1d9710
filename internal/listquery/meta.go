// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package listquery

import (
	"bytes"
	"encoding/json"
	"strconv"

	"blogdesk/internal/models"
)

// Number is a count the backend may send as a JSON number or a numeric
// string. Valid is false when the field was absent or not numeric.
type Number struct {
	N     int
	Valid bool
}

// UnmarshalJSON accepts 12, 12.0 and "12". Anything else leaves Valid false.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(s)
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return nil
	}
	*n = Number{N: int(f), Valid: true}
	return nil
}

// RawMeta is the union of the pagination shapes the backend has been
// seen to return.
type RawMeta struct {
	Page       Number `json:"page"`
	Limit      Number `json:"limit"`
	TotalPages Number `json:"totalPages"`
	Total      Number `json:"total"`
	TotalItems Number `json:"totalItems"`
	Count      Number `json:"count"`
	TotalData  Number `json:"totalData"`
}

// ResolveTotal picks the first count present in priority order: total,
// totalItems, count, totalData, then the number of rows received.
func ResolveTotal(m RawMeta, rows int) int {
	for _, n := range []Number{m.Total, m.TotalItems, m.Count, m.TotalData} {
		if n.Valid {
			return n.N
		}
	}
	return rows
}

// Normalize turns whatever meta the backend sent into models.Meta.
// Page and limit fall back to the values that were requested.
func Normalize(m RawMeta, rows, page, limit int) models.Meta {
	if m.Page.Valid && m.Page.N > 0 {
		page = m.Page.N
	}
	if m.Limit.Valid && m.Limit.N > 0 {
		limit = m.Limit.N
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = rows
	}
	return models.NewMeta(page, limit, ResolveTotal(m, rows))
}
