// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"blogdesk/internal/config"
	"blogdesk/internal/models"
)

func TestRenderOrphans(t *testing.T) {
	id := uuid.New()
	out := renderOrphans([]models.Orphan{
		{ID: id, AssetID: "asset-1", Reason: models.OrphanReasonRollback, Attempts: 2, CreatedAt: time.Now()},
		{ID: uuid.New(), URL: "https://cdn.test/a.png", Reason: models.OrphanReasonCleanup, PostID: "p1"},
	})

	for _, want := range []string{"REASON", id.String(), "asset-1", "https://cdn.test/a.png", "rollback", "cleanup"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestNewClassifierWithoutS3(t *testing.T) {
	cfg := config.Defaults()
	cfg.AssetHosts = []string{"res.cloudinary.com"}
	cfg.AssetPrefixes = []string{"https://cdn.example.com/blog"}

	c := newClassifier(cfg, nil)
	if !c.IsRemote("https://res.cloudinary.com/demo/image/upload/x.png") {
		t.Error("configured host not remote")
	}
	if !c.IsRemote("https://cdn.example.com/blog/y.png") {
		t.Error("configured prefix not remote")
	}
	if c.IsRemote("https://elsewhere.test/z.png") {
		t.Error("foreign host classified as remote")
	}
}

func TestDefaultClassifierRecognisesStoredAssets(t *testing.T) {
	c := newClassifier(config.Defaults(), nil)
	if !c.IsRemote("https://res.cloudinary.com/demo/image/upload/v1/a.jpg") {
		t.Error("default classifier does not recognise the asset host")
	}
	if c.IsRemote("https://example.org/a.jpg") {
		t.Error("foreign host classified as remote")
	}
}

func TestNewAssetBackendDefaultsToAPI(t *testing.T) {
	cfg := config.Defaults()
	cfg.AssetBackend = config.AssetBackendAPI

	assets, err := newAssetBackend(cfg)
	if err != nil || assets != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", assets, err)
	}
}
