// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aljanabi/partycms/internal/content"
)

// PageCache stores rendered page views as JSON in a Cacher. It satisfies the
// content service's cache port; cache faults degrade to a store read, never
// to a request failure.
type PageCache struct {
	backend Cacher
	ttl     time.Duration
}

// NewPageCache wraps a backend for page views.
func NewPageCache(backend Cacher, ttl time.Duration) *PageCache {
	return &PageCache{backend: backend, ttl: ttl}
}

func pageKey(pageID string) string {
	return "page:" + pageID
}

// Get returns the cached view for the page, if present.
func (p *PageCache) Get(ctx context.Context, pageID string) (*content.PageView, bool) {
	data, err := p.backend.Get(ctx, pageKey(pageID))
	if err != nil {
		return nil, false
	}
	var view content.PageView
	if err := json.Unmarshal(data, &view); err != nil {
		slog.Warn("discarding corrupt cached page", "page", pageID, "error", err)
		_ = p.backend.Delete(ctx, pageKey(pageID))
		return nil, false
	}
	return &view, true
}

// Set stores the view. Marshal or backend failures are logged and ignored.
func (p *PageCache) Set(ctx context.Context, pageID string, view *content.PageView) {
	data, err := json.Marshal(view)
	if err != nil {
		slog.Warn("failed to marshal page for cache", "page", pageID, "error", err)
		return
	}
	if err := p.backend.Set(ctx, pageKey(pageID), data, p.ttl); err != nil {
		slog.Warn("failed to cache page", "page", pageID, "error", err)
	}
}

// Invalidate drops the cached view for the page.
func (p *PageCache) Invalidate(ctx context.Context, pageID string) {
	if err := p.backend.Delete(ctx, pageKey(pageID)); err != nil {
		slog.Warn("failed to invalidate cached page", "page", pageID, "error", err)
	}
}

var _ content.PageCache = (*PageCache)(nil)
