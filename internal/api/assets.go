// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"blogdesk/internal/models"
	"blogdesk/internal/staging"
)

// ErrIncompleteAsset is returned when an upload succeeds at the transport
// level but the response lacks an asset id or url.
var ErrIncompleteAsset = errors.New("upload response missing asset id or url")

// AssetService covers /assets.
type AssetService struct {
	c *Client
}

// uploadEnvelope mirrors the upload response, which may also carry the
// url at the top level next to data.
type uploadEnvelope struct {
	URL       string `json:"url"`
	SecureURL string `json:"secureUrl"`
}

func multipartBody(f staging.File) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	h.Set("Content-Type", f.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (s *AssetService) sendFile(ctx context.Context, method, path string, f staging.File) (*models.Asset, error) {
	body, contentType, err := multipartBody(f)
	if err != nil {
		return nil, err
	}
	env, raw, err := s.c.send(ctx, request{method: method, path: path, body: body, contentType: contentType})
	if err != nil {
		return nil, err
	}
	var asset models.Asset
	if hasData(env) {
		err = decodeData(env, &asset)
	} else if len(bytes.TrimSpace(raw)) > 0 {
		// Some asset backends answer with the bare object.
		err = json.Unmarshal(raw, &asset)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if asset.URL == "" {
		asset.URL = asset.SecureURL
	}
	if asset.URL == "" {
		var top uploadEnvelope
		if json.Unmarshal(raw, &top) == nil {
			asset.URL = top.URL
			if asset.URL == "" {
				asset.URL = top.SecureURL
			}
		}
	}
	return &asset, nil
}

// Upload stores a staged file as a new asset.
func (s *AssetService) Upload(ctx context.Context, f staging.File) (models.UploadedAsset, error) {
	asset, err := s.sendFile(ctx, http.MethodPost, "/assets/upload", f)
	if err != nil {
		return models.UploadedAsset{}, fmt.Errorf("upload %s: %w", f.Name, err)
	}
	if asset.ID == "" || asset.URL == "" {
		return models.UploadedAsset{}, fmt.Errorf("upload %s: %w", f.Name, ErrIncompleteAsset)
	}
	return models.UploadedAsset{ID: asset.ID, URL: asset.URL}, nil
}

// Replace swaps the stored object behind an existing asset.
func (s *AssetService) Replace(ctx context.Context, id string, f staging.File) (*models.Asset, error) {
	asset, err := s.sendFile(ctx, http.MethodPatch, "/assets/"+url.PathEscape(id)+"/replace", f)
	if err != nil {
		return nil, fmt.Errorf("replace asset %s: %w", id, err)
	}
	if asset.ID == "" || asset.URL == "" {
		return nil, fmt.Errorf("replace asset %s: %w", id, ErrIncompleteAsset)
	}
	return asset, nil
}

// DeleteByID deletes an asset by id.
func (s *AssetService) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.c.mutateJSON(ctx, http.MethodDelete, "/assets/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	return nil
}

// DeleteByURL deletes the asset stored at url.
func (s *AssetService) DeleteByURL(ctx context.Context, assetURL string) error {
	body := map[string]string{"url": assetURL}
	if _, err := s.c.mutateJSON(ctx, http.MethodDelete, "/assets/by-url", body); err != nil {
		return fmt.Errorf("delete asset by url %s: %w", assetURL, err)
	}
	return nil
}
