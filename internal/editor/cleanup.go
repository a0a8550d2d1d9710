// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"blogdesk/internal/htmlref"
	"blogdesk/internal/models"
)

// CleanupFailure is one remote asset that could not be deleted.
type CleanupFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// CleanupReport is the outcome of deleting assets a save made unused.
// Failures are a warning: the post is already committed.
type CleanupReport struct {
	Deleted []string         `json:"deleted"`
	Failed  []CleanupFailure `json:"failed"`
}

// PartialFailure reports whether any deletion failed.
func (r CleanupReport) PartialFailure() bool {
	return len(r.Failed) > 0
}

// Warning returns the user-facing warning, or "" when nothing failed.
func (r CleanupReport) Warning() string {
	if !r.PartialFailure() {
		return ""
	}
	return fmt.Sprintf("Post saved, but %d old image(s) could not be deleted. They were queued for a manual retry.", len(r.Failed))
}

// removedAssets returns the remote URLs the baseline referenced and the
// saved version does not: dropped inline images, plus the old cover when
// it was remote and has changed.
func removedAssets(base Baseline, newInline []string, newCover string, c *htmlref.Classifier) []string {
	keep := make(map[string]struct{}, len(newInline))
	for _, u := range newInline {
		keep[u] = struct{}{}
	}
	var out []string
	add := func(u string) {
		if !c.IsRemote(u) || slices.Contains(out, u) {
			return
		}
		out = append(out, u)
	}
	for _, u := range base.Inline {
		if _, ok := keep[u]; !ok {
			add(u)
		}
	}
	if base.Cover != "" && base.Cover != newCover {
		add(base.Cover)
	}
	return out
}

// cleanup deletes urls concurrently. Every deletion runs to completion
// regardless of the others; failures are recorded as orphans.
func (o *Orchestrator) cleanup(ctx context.Context, postID string, urls []string) CleanupReport {
	report := CleanupReport{Deleted: []string{}, Failed: []CleanupFailure{}}
	if len(urls) == 0 {
		return report
	}

	cctx, cancel := o.detach(ctx)
	defer cancel()

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for _, u := range urls {
		g.Go(func() error {
			err := o.assets.DeleteByURL(cctx, u)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, CleanupFailure{URL: u, Error: err.Error()})
				return nil
			}
			report.Deleted = append(report.Deleted, u)
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range report.Failed {
		o.logger.Warn("cleanup delete failed", "post_id", postID, "url", f.URL, "error", f.Error)
		o.recordOrphan(cctx, models.Orphan{
			URL:       f.URL,
			Reason:    models.OrphanReasonCleanup,
			PostID:    postID,
			LastError: f.Error,
		})
	}
	return report
}
