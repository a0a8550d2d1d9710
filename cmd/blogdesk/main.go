// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for blogdesk, the dashboard service in
// front of the blog REST backend. It serves the dashboard API, runs the
// orphan ledger migrations, and lists or retries orphaned assets.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"blogdesk/internal/config"
)

func main() {
	cmd := &cli.Command{
		Name:   "blogdesk",
		Usage:  "Dashboard service for the blog: editor sessions, uploads and moderation",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an optional YAML config file",
				Sources: cli.EnvVars(config.FileEnv),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the orphan ledger migrations and exit",
				Action: migrate,
			},
			{
				Name:  "orphans",
				Usage: "Inspect and retry assets that could not be deleted",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List pending orphaned assets",
						Action: listOrphans,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 50, Usage: "Maximum rows to show"},
						},
					},
					{
						Name:      "retry",
						Usage:     "Retry deleting orphaned assets",
						ArgsUsage: "[id...]",
						Action:    retryOrphans,
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "all", Usage: "Retry every pending orphan"},
							&cli.StringFlag{
								Name:    "token",
								Usage:   "Bearer token for the blog backend when assets are deleted through it",
								Sources: cli.EnvVars("BLOG_API_TOKEN"),
							},
						},
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("blogdesk failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration, honouring --config, and installs the
// default logger: JSON in production, text in development.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if path := cmd.String("config"); path != "" {
		os.Setenv(config.FileEnv, path)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	return cfg, nil
}
