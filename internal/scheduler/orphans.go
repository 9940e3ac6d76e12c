// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aljanabi/partycms/internal/assets"
	"github.com/aljanabi/partycms/internal/images"
	"github.com/aljanabi/partycms/internal/store"
)

// DefaultOrphanGrace is how long an unreferenced blob must sit in the store
// before the sweep deletes it. The window keeps uploads that have not been
// persisted to a record yet from being collected mid-request.
const DefaultOrphanGrace = time.Hour

// OrphanSweep deletes uploaded blobs no record references anymore. Failed
// replaces and abandoned form uploads accumulate otherwise.
type OrphanSweep struct {
	queries    *store.Queries
	assetStore assets.Store
	grace      time.Duration
	logger     *slog.Logger
}

// NewOrphanSweep creates the sweep job. A zero grace uses the default.
func NewOrphanSweep(queries *store.Queries, assetStore assets.Store, grace time.Duration, logger *slog.Logger) *OrphanSweep {
	if grace == 0 {
		grace = DefaultOrphanGrace
	}
	return &OrphanSweep{
		queries:    queries,
		assetStore: assetStore,
		grace:      grace,
		logger:     logger,
	}
}

// Run performs one sweep over all managed folders.
func (o *OrphanSweep) Run(ctx context.Context) error {
	referenced, err := o.referencedPaths(ctx)
	if err != nil {
		return fmt.Errorf("collecting referenced assets: %w", err)
	}

	cutoff := time.Now().Add(-o.grace)
	var removed, kept int

	for _, folder := range images.ManagedFolders() {
		paths, err := o.assetStore.List(ctx, folder)
		if err != nil {
			return fmt.Errorf("listing %s: %w", folder, err)
		}
		for _, p := range paths {
			if referenced[p] {
				kept++
				continue
			}
			mod, err := o.assetStore.ModTime(ctx, p)
			if err != nil || mod.After(cutoff) {
				// Recent or unreadable blobs wait for the next sweep.
				kept++
				continue
			}
			if err := o.assetStore.Remove(ctx, p); err != nil {
				o.logger.Warn("failed to remove orphaned asset", "path", p, "error", err)
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		o.logger.Info("orphaned asset sweep finished", "removed", removed, "kept", kept)
	}
	return nil
}

// referencedPaths builds the set of store paths any record points at.
func (o *OrphanSweep) referencedPaths(ctx context.Context) (map[string]bool, error) {
	var urls []string
	for _, list := range []func(context.Context) ([]string, error){
		o.queries.ListHeroImageURLs,
		o.queries.ListSectionImageURLs,
		o.queries.ListLeaderImageURLs,
		o.queries.ListAttachmentURLs,
	} {
		batch, err := list(ctx)
		if err != nil {
			return nil, err
		}
		urls = append(urls, batch...)
	}

	referenced := make(map[string]bool, len(urls))
	for _, u := range urls {
		// Legacy page keys and inline data resolve through other rows or
		// carry their bytes with them; only direct URLs map to store paths.
		if p, ok := o.assetStore.PathFromURL(u); ok {
			referenced[p] = true
		}
	}
	return referenced, nil
}
