// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aljanabi/partycms/internal/store"
	"github.com/aljanabi/partycms/internal/testutil"
	"github.com/aljanabi/partycms/internal/util"
)

func TestOrphanSweep(t *testing.T) {
	ctx := context.Background()
	queries := testutil.TestQueries(t)
	fake := testutil.NewFakeAssetStore()

	// One referenced hero image, one stale orphan, one fresh orphan.
	heroURL, err := fake.Upload(ctx, "hero/referenced.jpg", strings.NewReader("hero"))
	if err != nil {
		t.Fatalf("seeding hero: %v", err)
	}
	if _, err := fake.Upload(ctx, "hero/stale-orphan.jpg", strings.NewReader("old")); err != nil {
		t.Fatalf("seeding orphan: %v", err)
	}
	if _, err := fake.Upload(ctx, "sections/fresh-orphan.jpg", strings.NewReader("new")); err != nil {
		t.Fatalf("seeding orphan: %v", err)
	}
	fake.SetModTime("hero/referenced.jpg", time.Now().Add(-48*time.Hour))
	fake.SetModTime("hero/stale-orphan.jpg", time.Now().Add(-48*time.Hour))
	// fresh-orphan keeps its just-uploaded mod time.

	if _, err := queries.UpsertPage(ctx, store.UpsertPageParams{
		PageID:       "home",
		Title:        "Home",
		HeroImage:    util.NullStringFromValue(heroURL),
		LastModified: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seeding page: %v", err)
	}

	sweep := NewOrphanSweep(queries, fake, time.Hour, testutil.TestLogger())
	if err := sweep.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !fake.Has("hero/referenced.jpg") {
		t.Error("referenced image was swept")
	}
	if fake.Has("hero/stale-orphan.jpg") {
		t.Error("stale orphan survived the sweep")
	}
	if !fake.Has("sections/fresh-orphan.jpg") {
		t.Error("orphan inside the grace period was swept")
	}
}

func TestOrphanSweepProtectsAttachments(t *testing.T) {
	ctx := context.Background()
	queries := testutil.TestQueries(t)
	fake := testutil.NewFakeAssetStore()

	attURL, err := fake.Upload(ctx, "attachments/id-scan.pdf", strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("seeding attachment: %v", err)
	}
	fake.SetModTime("attachments/id-scan.pdf", time.Now().Add(-48*time.Hour))

	if _, err := queries.CreateApplication(ctx, store.CreateApplicationParams{
		FullName:    "Ali Hassan",
		NationalID:  "199012345678",
		Phone:       "07701234567",
		Attachments: []string{attURL},
		SubmittedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seeding application: %v", err)
	}

	sweep := NewOrphanSweep(queries, fake, time.Hour, testutil.TestLogger())
	if err := sweep.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !fake.Has("attachments/id-scan.pdf") {
		t.Error("referenced attachment was swept")
	}
}

func TestOrphanSweepIgnoresLegacyImageKeys(t *testing.T) {
	ctx := context.Background()
	queries := testutil.TestQueries(t)
	fake := testutil.NewFakeAssetStore()

	// A leader row holding a legacy page key instead of a URL must not break
	// the sweep or be mistaken for a store path.
	if _, err := queries.CreateLeader(ctx, store.CreateLeaderParams{
		Name:        "Party President",
		Image:       util.NullStringFromValue("leadership"),
		OrderNumber: 1,
	}); err != nil {
		t.Fatalf("seeding leader: %v", err)
	}

	sweep := NewOrphanSweep(queries, fake, time.Hour, testutil.TestLogger())
	if err := sweep.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
