// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"blogdesk/internal/listquery"
	"blogdesk/internal/models"
)

// pagedData is the nested list shape: data:{meta:{...}, data:[...]}.
type pagedData struct {
	Meta       *listquery.RawMeta `json:"meta"`
	Pagination *listquery.RawMeta `json:"pagination"`
	Data       json.RawMessage    `json:"data"`
	Result     json.RawMessage    `json:"result"`
}

// list performs a cached GET of a paginated endpoint. The backend returns
// rows either directly in data or nested under data.data or data.result,
// with meta beside them or at the top level; all of it comes back as one
// models.Page.
func list[T any](ctx context.Context, c *Client, tag, path string, query url.Values) (*models.Page[T], error) {
	env, err := c.get(ctx, tag, path, query)
	if err != nil {
		return nil, err
	}

	var (
		rowsRaw json.RawMessage
		meta    listquery.RawMeta
	)
	if len(env.Meta) > 0 {
		if err := json.Unmarshal(env.Meta, &meta); err != nil {
			meta = listquery.RawMeta{}
			slog.Warn("ignoring undecodable list meta", "path", path, "error", err)
		}
	}

	data := bytes.TrimSpace(env.Data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
	case data[0] == '[':
		rowsRaw = data
	default:
		var pd pagedData
		if err := json.Unmarshal(data, &pd); err != nil {
			return nil, fmt.Errorf("GET %s: decode page: %w", path, err)
		}
		switch {
		case pd.Meta != nil:
			meta = *pd.Meta
		case pd.Pagination != nil:
			meta = *pd.Pagination
		}
		rowsRaw = pd.Data
		if len(rowsRaw) == 0 {
			rowsRaw = pd.Result
		}
	}

	items := []T{}
	if len(rowsRaw) > 0 && !bytes.Equal(rowsRaw, []byte("null")) {
		if err := json.Unmarshal(rowsRaw, &items); err != nil {
			return nil, fmt.Errorf("GET %s: decode rows: %w", path, err)
		}
	}

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	return &models.Page[T]{
		Meta:  listquery.Normalize(meta, len(items), page, limit),
		Items: items,
	}, nil
}
