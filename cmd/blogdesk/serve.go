// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"blogdesk/internal/api"
	"blogdesk/internal/cache"
	"blogdesk/internal/config"
	"blogdesk/internal/database"
	"blogdesk/internal/editor"
	"blogdesk/internal/handlers"
	"blogdesk/internal/htmlref"
	"blogdesk/internal/middleware"
	"blogdesk/internal/router"
	"blogdesk/internal/session"
	"blogdesk/internal/staging"
	"blogdesk/internal/storage"
	"blogdesk/internal/store"
)

// shutdownTimeout bounds how long in-flight requests may take to finish.
const shutdownTimeout = 30 * time.Second

// serve runs the HTTP server until SIGINT or SIGTERM.
func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr(), "api", cfg.APIBaseURL, "assets", cfg.AssetBackend)

	// Connect to Valkey (sessions, staged blobs and the query cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkeyClient.Close()

	// The orphan ledger is optional.
	var (
		db      *sql.DB
		orphans editor.OrphanRecorder = store.LogOrphans{}
		ledger  handlers.OrphanLedger
	)
	if cfg.HasDB() {
		db, err = openLedger(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		orphanStore := store.NewOrphanStore(db)
		orphans, ledger = orphanStore, orphanStore
	} else {
		slog.Warn("postgres not configured, orphaned assets will only be logged")
	}

	client := newAPIClient(cfg, valkeyClient)

	assets, err := newAssetBackend(cfg)
	if err != nil {
		return err
	}
	classifier := newClassifier(cfg, assets)

	sessions := session.NewStore(valkeyClient, cfg.CookieSecure, cfg.SessionTTL)
	registry := editor.NewRegistry(staging.NewValkeyBlobs(valkeyClient, cfg.StagingTTL), cfg.EditorSessionTTL)
	saver := editor.NewOrchestrator(editor.Config{
		Classifier:         classifier,
		Orphans:            orphans,
		Logger:             slog.Default(),
		CleanupConcurrency: cfg.CleanupConcurrency,
		DetachedTimeout:    cfg.DetachedTimeout,
	})

	deps := handlers.Deps{
		API:        client,
		Registry:   registry,
		Saver:      saver,
		Classifier: classifier,
		Orphans:    ledger,
		Logger:     slog.Default(),
	}
	if assets != nil {
		deps.Assets = assets
	}

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow,
		middleware.WithName("login"))
	defer loginLimiter.Stop()
	uploadLimiter := middleware.NewRateLimiter(cfg.UploadRateLimit, cfg.UploadRateWindow,
		middleware.WithName("staging"), middleware.WithKey(middleware.BySessionUser))
	defer uploadLimiter.Stop()

	r, err := router.New(router.Config{
		Sessions:      sessions,
		Dashboard:     handlers.NewDashboard(deps),
		Auth:          handlers.NewAuth(client, sessions),
		LoginLimiter:  loginLimiter,
		UploadLimiter: uploadLimiter,
		Logger:        slog.Default(),
	})
	if err != nil {
		return err
	}

	// Uploads of staged images can be large, hence the generous timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	registry.Stop(shutdownCtx)

	slog.Info("server stopped gracefully")
	return nil
}

// openLedger connects to PostgreSQL and applies pending migrations.
func openLedger(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// newAPIClient builds the REST client, with the query cache unless the
// cache TTL is negative.
func newAPIClient(cfg *config.Config, valkeyClient *redis.Client) *api.Client {
	httpClient := &http.Client{Timeout: cfg.APITimeout}
	if cfg.CacheTTL < 0 {
		return api.New(cfg.APIBaseURL, httpClient, nil)
	}
	return api.New(cfg.APIBaseURL, httpClient, cache.NewQueryCache(valkeyClient, cfg.CacheTTL))
}

// newAssetBackend returns the direct S3 backend when configured, or nil to
// go through the REST asset endpoints.
func newAssetBackend(cfg *config.Config) (*storage.Client, error) {
	if cfg.AssetBackend != config.AssetBackendS3 {
		return nil, nil
	}
	s3Client, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 storage: %w", err)
	}
	if s3Client == nil {
		return nil, errors.New("init s3 storage: endpoint and credentials are required")
	}
	slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	return s3Client, nil
}

// newClassifier recognises the configured asset hosts plus, with the S3
// backend, the bucket's own URLs.
func newClassifier(cfg *config.Config, assets *storage.Client) *htmlref.Classifier {
	hosts := append([]string(nil), cfg.AssetHosts...)
	prefixes := append([]string(nil), cfg.AssetPrefixes...)
	if assets != nil {
		hosts = append(hosts, assets.Hosts()...)
		prefixes = append(prefixes, assets.URLPrefixes()...)
	}
	return htmlref.NewClassifier(hosts, prefixes)
}
