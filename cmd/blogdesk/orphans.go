// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"blogdesk/internal/api"
	"blogdesk/internal/config"
	"blogdesk/internal/database"
	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// migrate applies the ledger migrations.
func migrate(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.HasDB() {
		return errors.New("migrate: POSTGRES_HOST is not set")
	}
	db, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := database.Version(db)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "version", version)
	return nil
}

// openOrphanStore loads config and opens the ledger for the orphan commands.
func openOrphanStore(cmd *cli.Command) (*config.Config, *store.OrphanStore, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	if !cfg.HasDB() {
		return nil, nil, nil, errors.New("orphan ledger requires POSTGRES_HOST")
	}
	db, err := openLedger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, store.NewOrphanStore(db), func() { db.Close() }, nil
}

// listOrphans prints the pending orphans as a table.
func listOrphans(ctx context.Context, cmd *cli.Command) error {
	_, orphans, closeDB, err := openOrphanStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	limit := int(cmd.Int("limit"))
	pending, err := orphans.ListPending(ctx, limit, 0)
	if err != nil {
		return err
	}
	total, err := orphans.CountPending(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, renderOrphans(pending))
	fmt.Fprintf(os.Stdout, "%d of %d pending\n", len(pending), total)
	return nil
}

// renderOrphans formats orphans as a bordered table.
func renderOrphans(orphans []models.Orphan) string {
	rows := make([][]string, 0, len(orphans))
	for _, o := range orphans {
		target := o.AssetID
		if target == "" {
			target = o.URL
		}
		rows = append(rows, []string{
			o.ID.String(),
			string(o.Reason),
			target,
			o.PostID,
			strconv.Itoa(o.Attempts),
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.LastError,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("ID", "REASON", "ASSET", "POST", "ATTEMPTS", "CREATED", "LAST ERROR").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// retryOrphans retries the given orphans, or every pending one with --all.
func retryOrphans(ctx context.Context, cmd *cli.Command) error {
	cfg, orphans, closeDB, err := openOrphanStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	assets, err := cliAssetDeleter(cfg, cmd.String("token"))
	if err != nil {
		return err
	}

	ids, err := retryTargets(ctx, cmd, orphans)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stdout, "nothing to retry")
		return nil
	}

	failed := 0
	for _, id := range ids {
		o, err := orphans.Retry(ctx, id, assets)
		switch {
		case o == nil && err == nil:
			fmt.Fprintf(os.Stdout, "%s %s not found\n", errStyle.Render("✗"), id)
			failed++
		case err != nil:
			fmt.Fprintf(os.Stdout, "%s %s %v\n", errStyle.Render("✗"), id, err)
			failed++
		default:
			fmt.Fprintf(os.Stdout, "%s %s deleted\n", okStyle.Render("✓"), id)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d retries failed", failed, len(ids))
	}
	return nil
}

// retryTargets resolves the ids to retry from the arguments or --all.
func retryTargets(ctx context.Context, cmd *cli.Command, orphans *store.OrphanStore) ([]uuid.UUID, error) {
	if cmd.Bool("all") {
		total, err := orphans.CountPending(ctx)
		if err != nil {
			return nil, err
		}
		pending, err := orphans.ListPending(ctx, total, 0)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, len(pending))
		for i, o := range pending {
			ids[i] = o.ID
		}
		return ids, nil
	}

	if cmd.Args().Len() == 0 {
		return nil, errors.New("pass orphan ids or --all")
	}
	ids := make([]uuid.UUID, 0, cmd.Args().Len())
	for _, arg := range cmd.Args().Slice() {
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid orphan id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// cliAssetDeleter picks the backend that deletes assets for the CLI: S3
// directly when configured, otherwise the REST backend with token.
func cliAssetDeleter(cfg *config.Config, token string) (store.AssetDeleter, error) {
	s3Client, err := newAssetBackend(cfg)
	if err != nil {
		return nil, err
	}
	if s3Client != nil {
		return s3Client, nil
	}
	if token == "" {
		return nil, errors.New("deleting through the blog backend needs --token or BLOG_API_TOKEN")
	}
	client := api.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}, nil)
	return client.WithToken(token).Assets(), nil
}
