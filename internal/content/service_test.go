// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aljanabi/partycms/internal/model"
	"github.com/aljanabi/partycms/internal/testutil"
)

// countingCache records cache traffic for assertions.
type countingCache struct {
	views       map[string]*PageView
	gets        int
	sets        int
	invalidates int
}

func newCountingCache() *countingCache {
	return &countingCache{views: make(map[string]*PageView)}
}

func (c *countingCache) Get(_ context.Context, pageID string) (*PageView, bool) {
	c.gets++
	v, ok := c.views[pageID]
	return v, ok
}

func (c *countingCache) Set(_ context.Context, pageID string, view *PageView) {
	c.sets++
	c.views[pageID] = view
}

func (c *countingCache) Invalidate(_ context.Context, pageID string) {
	c.invalidates++
	delete(c.views, pageID)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(testutil.TestQueries(t), nil)
}

func TestGetPageDefaultFallback(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, pageID := range model.NavPriority {
		view, err := svc.GetPage(ctx, pageID)
		if err != nil {
			t.Fatalf("GetPage(%q) on empty database: %v", pageID, err)
		}
		if view.Page.ID != pageID {
			t.Errorf("GetPage(%q) returned page %q", pageID, view.Page.ID)
		}
		if view.Page.Title == "" {
			t.Errorf("default page %q has no title", pageID)
		}
	}
}

func TestGetPageUnknown(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetPage(context.Background(), "no-such-page")
	if !errors.Is(err, ErrPageNotFound) {
		t.Errorf("GetPage(unknown) = %v, want ErrPageNotFound", err)
	}
}

func TestUpdatePageOverridesDefault(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	hero := "/uploads/hero/new.jpg"
	page, err := svc.UpdatePage(ctx, UpdatePageParams{
		PageID:    model.PageVision,
		Title:     "Our Vision",
		HeroImage: &hero,
	})
	if err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	if page.Title != "Our Vision" {
		t.Errorf("title = %q", page.Title)
	}
	if !page.HeroImage.Valid || page.HeroImage.String != hero {
		t.Errorf("hero image = %v", page.HeroImage)
	}
	if page.LastModified.IsZero() {
		t.Error("last modified not stamped")
	}

	view, err := svc.GetPage(ctx, model.PageVision)
	if err != nil {
		t.Fatalf("GetPage after update: %v", err)
	}
	if view.Page.Title != "Our Vision" {
		t.Error("stored page did not replace the default")
	}
}

func TestUpsertSectionByTitleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageHome, Title: "Home"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	first, err := svc.UpsertSectionByTitle(ctx, SectionParams{
		PageID:  model.PageHome,
		Title:   "welcome",
		Content: "Original text",
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := svc.UpsertSectionByTitle(ctx, SectionParams{
		PageID:  model.PageHome,
		Title:   "welcome",
		Content: "Edited text",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("repeat upsert changed row ID: %d -> %d", first.ID, second.ID)
	}
	if second.Content != "Edited text" {
		t.Errorf("content = %q", second.Content)
	}

	view, err := svc.GetPage(ctx, model.PageHome)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(view.Sections) != 1 {
		t.Errorf("got %d sections, want exactly 1", len(view.Sections))
	}
}

func TestSectionOrdering(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageNews, Title: "News"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	// Insert out of order; reads must come back sorted.
	for _, s := range []struct {
		title string
		order int64
	}{
		{"third", 3},
		{"first", 1},
		{"second", 2},
	} {
		if _, err := svc.AddSection(ctx, SectionParams{
			PageID:      model.PageNews,
			Title:       s.title,
			Content:     "body",
			OrderNumber: s.order,
		}); err != nil {
			t.Fatalf("AddSection(%s): %v", s.title, err)
		}
	}

	view, err := svc.GetPage(ctx, model.PageNews)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	var titles []string
	for _, sec := range view.Sections {
		titles = append(titles, sec.Title)
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("section order = %v, want %v", titles, want)
		}
	}
}

func TestAddSectionAppendsOnZeroOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageActivities, Title: "Activities"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	a, err := svc.AddSection(ctx, SectionParams{PageID: model.PageActivities, Title: "a", Content: "x"})
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	b, err := svc.AddSection(ctx, SectionParams{PageID: model.PageActivities, Title: "b", Content: "y"})
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	if b.OrderNumber != a.OrderNumber+1 {
		t.Errorf("appended orders %d, %d; want consecutive", a.OrderNumber, b.OrderNumber)
	}
}

func TestVisionSectionOrderIsClamped(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageVision, Title: "Vision"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageHome, Title: "Home"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	tests := []struct {
		name      string
		pageID    string
		title     string
		order     int64
		wantOrder int64
	}{
		{"pillar below band", model.PageVision, "pillar-1", -5, model.VisionPillarMinOrder},
		{"pillar above band", model.PageVision, "pillar-2", 9, model.VisionPillarMaxOrder},
		{"pillar inside band", model.PageVision, "pillar-3", 2, 2},
		{"goal below band", model.PageVision, "goals", 2, model.VisionGoalMinOrder},
		{"goal inside band", model.PageVision, "goals-longterm", 6, 6},
		{"unbanded vision title gets floor only", model.PageVision, "preamble", -1, model.VisionPillarMinOrder},
		{"other pages pass through", model.PageHome, "pillar-1", 9, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, err := svc.UpsertSectionByTitle(ctx, SectionParams{
				PageID:      tt.pageID,
				Title:       tt.title,
				Content:     "x",
				OrderNumber: tt.order,
			})
			if err != nil {
				t.Fatalf("UpsertSectionByTitle: %v", err)
			}
			if sec.OrderNumber != tt.wantOrder {
				t.Errorf("order = %d, want %d", sec.OrderNumber, tt.wantOrder)
			}
		})
	}
}

func TestVisionBandHoldsOnUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageVision, Title: "Vision"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	sec, err := svc.AddSection(ctx, SectionParams{
		PageID:  model.PageVision,
		Title:   "pillar-1",
		Content: "x",
	})
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}

	updated, err := svc.UpdateSection(ctx, sec.ID, SectionParams{
		Title:       "pillar-1",
		Content:     "y",
		OrderNumber: 8,
	})
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if updated.OrderNumber != model.VisionPillarMaxOrder {
		t.Errorf("order = %d, want clamped to %d", updated.OrderNumber, model.VisionPillarMaxOrder)
	}
}

func TestUpdateSectionKeepsOrderWhenUnspecified(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageHome, Title: "Home"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	sec, err := svc.AddSection(ctx, SectionParams{
		PageID:      model.PageHome,
		Title:       "intro",
		Content:     "v1",
		OrderNumber: 7,
	})
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}

	updated, err := svc.UpdateSection(ctx, sec.ID, SectionParams{Title: "intro", Content: "v2"})
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if updated.OrderNumber != 7 {
		t.Errorf("order = %d, want preserved 7", updated.OrderNumber)
	}
	if updated.Content != "v2" {
		t.Errorf("content = %q", updated.Content)
	}
}

func TestDeleteSection(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageHome, Title: "Home"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	sec, err := svc.AddSection(ctx, SectionParams{PageID: model.PageHome, Title: "gone", Content: "x"})
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}

	if err := svc.DeleteSection(ctx, sec.ID); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if err := svc.DeleteSection(ctx, sec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestPublicPageRendersMarkdown(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageHome, Title: "Home"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	if _, err := svc.AddSection(ctx, SectionParams{
		PageID:  model.PageHome,
		Title:   "welcome",
		Content: "Hello **members** of the party",
	}); err != nil {
		t.Fatalf("AddSection: %v", err)
	}

	view, err := svc.PublicPage(ctx, model.PageHome)
	if err != nil {
		t.Fatalf("PublicPage: %v", err)
	}
	if len(view.Sections) != 1 {
		t.Fatalf("got %d sections", len(view.Sections))
	}
	if !strings.Contains(view.Sections[0].HTML, "<strong>members</strong>") {
		t.Errorf("markdown not rendered: %q", view.Sections[0].HTML)
	}
}

func TestPublicPageStripsScriptTags(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageHome, Title: "Home"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	if _, err := svc.AddSection(ctx, SectionParams{
		PageID:  model.PageHome,
		Title:   "welcome",
		Content: `safe text <script>alert("xss")</script>`,
	}); err != nil {
		t.Fatalf("AddSection: %v", err)
	}

	view, err := svc.PublicPage(ctx, model.PageHome)
	if err != nil {
		t.Fatalf("PublicPage: %v", err)
	}
	if strings.Contains(view.Sections[0].HTML, "<script") {
		t.Errorf("script tag survived sanitization: %q", view.Sections[0].HTML)
	}
}

func TestPublicPageUsesCacheAndInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	cache := newCountingCache()
	svc := NewService(testutil.TestQueries(t), cache)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageHome, Title: "Home"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	if _, err := svc.PublicPage(ctx, model.PageHome); err != nil {
		t.Fatalf("first PublicPage: %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("sets = %d, want 1", cache.sets)
	}

	// Second read must be served from the cache.
	setsBefore := cache.sets
	if _, err := svc.PublicPage(ctx, model.PageHome); err != nil {
		t.Fatalf("second PublicPage: %v", err)
	}
	if cache.sets != setsBefore {
		t.Error("cached read hit the store again")
	}

	// Any write drops the cached view.
	if _, err := svc.UpsertSectionByTitle(ctx, SectionParams{
		PageID:  model.PageHome,
		Title:   "welcome",
		Content: "new",
	}); err != nil {
		t.Fatalf("UpsertSectionByTitle: %v", err)
	}
	if _, ok := cache.views[model.PageHome]; ok {
		t.Error("write left a stale view in the cache")
	}
}

func TestListPagesNavigationalOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// Store a couple of rows; the rest come from defaults.
	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageContact, Title: "Contact"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	pages, err := svc.ListPages(ctx)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(pages) != len(model.NavPriority) {
		t.Fatalf("got %d pages, want %d", len(pages), len(model.NavPriority))
	}
	for i, id := range model.NavPriority {
		if pages[i].ID != id {
			t.Errorf("pages[%d] = %q, want %q", i, pages[i].ID, id)
		}
	}
}

func TestLeaderLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.UpdatePage(ctx, UpdatePageParams{PageID: model.PageLeadership, Title: "Leadership"}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	main, err := svc.AddLeader(ctx, LeaderParams{Name: "Party President", Position: "President", IsMain: true})
	if err != nil {
		t.Fatalf("AddLeader: %v", err)
	}
	if main.OrderNumber != 1 {
		t.Errorf("first main leader order = %d, want 1", main.OrderNumber)
	}

	second, err := svc.AddLeader(ctx, LeaderParams{Name: "Deputy", Position: "Deputy", IsMain: true})
	if err != nil {
		t.Fatalf("AddLeader: %v", err)
	}
	if second.OrderNumber != 2 {
		t.Errorf("second main leader order = %d, want 2", second.OrderNumber)
	}

	// Orders append per band: the first non-main leader starts at 1 again.
	member, err := svc.AddLeader(ctx, LeaderParams{Name: "Bureau Member", IsMain: false})
	if err != nil {
		t.Fatalf("AddLeader: %v", err)
	}
	if member.OrderNumber != 1 {
		t.Errorf("first non-main leader order = %d, want 1", member.OrderNumber)
	}

	updated, err := svc.UpdateLeader(ctx, member.ID, LeaderParams{Name: "Bureau Member", Position: "Secretary"})
	if err != nil {
		t.Fatalf("UpdateLeader: %v", err)
	}
	if updated.Position != "Secretary" {
		t.Errorf("position = %q", updated.Position)
	}
	if updated.OrderNumber != member.OrderNumber {
		t.Errorf("update changed order %d -> %d", member.OrderNumber, updated.OrderNumber)
	}

	if err := svc.DeleteLeader(ctx, member.ID); err != nil {
		t.Fatalf("DeleteLeader: %v", err)
	}
	if _, err := svc.GetLeader(ctx, member.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLeader after delete = %v, want ErrNotFound", err)
	}

	// The leadership page view carries its leaders.
	view, err := svc.GetPage(ctx, model.PageLeadership)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(view.Leaders) != 2 {
		t.Errorf("leadership view has %d leaders, want 2", len(view.Leaders))
	}
}
