// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aljanabi/partycms/internal/model"
	"github.com/aljanabi/partycms/internal/store"
	"github.com/aljanabi/partycms/internal/testutil"
)

func newTestLogger(t *testing.T) (*slog.Logger, *store.Queries) {
	t.Helper()
	db := testutil.TestDB(t)
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewEventHandler(inner, db)), store.New(db)
}

func TestWarnAndAboveBecomeEvents(t *testing.T) {
	ctx := context.Background()
	logger, queries := newTestLogger(t)

	logger.Info("routine info, not persisted")
	logger.Warn("upload rejected", "reason", "too large")
	logger.Error("login backend unavailable")

	events, err := queries.ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (info must not persist)", len(events))
	}

	byMessage := make(map[string]model.Event, len(events))
	for _, e := range events {
		byMessage[e.Message] = e
	}

	warn, ok := byMessage["upload rejected"]
	if !ok {
		t.Fatal("warning event missing")
	}
	if warn.Level != model.EventLevelWarning {
		t.Errorf("warn level = %q", warn.Level)
	}
	if warn.Category != model.EventCategoryAssets {
		t.Errorf("warn category = %q, want inferred assets", warn.Category)
	}
	if warn.Metadata != `{"reason":"too large"}` {
		t.Errorf("warn metadata = %s", warn.Metadata)
	}

	errEvent, ok := byMessage["login backend unavailable"]
	if !ok {
		t.Fatal("error event missing")
	}
	if errEvent.Level != model.EventLevelError {
		t.Errorf("error level = %q", errEvent.Level)
	}
	if errEvent.Category != model.EventCategoryAuth {
		t.Errorf("error category = %q, want inferred auth", errEvent.Category)
	}
}

func TestExplicitCategoryAttribute(t *testing.T) {
	ctx := context.Background()
	logger, queries := newTestLogger(t)

	logger.Warn("something odd", "category", model.EventCategoryReview)

	events, err := queries.ListRecentEvents(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatal("event missing")
	}
	if events[0].Category != model.EventCategoryReview {
		t.Errorf("category = %q, want explicit review", events[0].Category)
	}
	if events[0].Metadata != "{}" {
		t.Errorf("category attr leaked into metadata: %s", events[0].Metadata)
	}
}

func TestMetadataEscaping(t *testing.T) {
	ctx := context.Background()
	logger, queries := newTestLogger(t)

	logger.Warn("asset path", "path", `up"loads\x`)

	events, err := queries.ListRecentEvents(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatal("event missing")
	}
	want := `{"path":"up\"loads\\x"}`
	if events[0].Metadata != want {
		t.Errorf("metadata = %s, want %s", events[0].Metadata, want)
	}
}
