// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content manages the page/section/leader content tree: ordered reads
// for the public site, field-like upserts and CRUD for editors, and the
// last-modified stamping that keeps page metadata honest.
package content

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/aljanabi/partycms/internal/model"
	"github.com/aljanabi/partycms/internal/store"
	"github.com/aljanabi/partycms/internal/util"
)

// ErrPageNotFound is returned for page IDs with neither a stored row nor a
// compiled-in default. Handlers map it to an empty-state 404.
var ErrPageNotFound = errors.New("page not found")

// ErrNotFound is returned when a section or leader ID does not exist.
var ErrNotFound = errors.New("record not found")

// PageView is a page with its ordered sections and, for the leadership page,
// its leaders.
type PageView struct {
	Page     model.Page     `json:"page"`
	Sections []SectionView  `json:"sections"`
	Leaders  []model.Leader `json:"leaders,omitempty"`
}

// SectionView wraps a section with its rendered HTML body. HTML is empty on
// raw (editor-facing) reads.
type SectionView struct {
	model.Section
	HTML string `json:"html,omitempty"`
}

// PageCache fronts public page reads. Implementations may be in-memory or
// Redis-backed; a nil cache disables caching.
type PageCache interface {
	Get(ctx context.Context, pageID string) (*PageView, bool)
	Set(ctx context.Context, pageID string, view *PageView)
	Invalidate(ctx context.Context, pageID string)
}

// Service is the content tree manager.
type Service struct {
	queries  *store.Queries
	cache    PageCache
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewService creates a content service. cache may be nil.
func NewService(queries *store.Queries, cache PageCache) *Service {
	return &Service{
		queries: queries,
		cache:   cache,
		policy:  bluemonday.UGCPolicy(),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// GetPage returns the page with its sections in display order, raw markdown
// bodies included. A missing row falls back to the compiled-in default for
// well-known pages; unknown IDs return ErrPageNotFound.
func (s *Service) GetPage(ctx context.Context, pageID string) (*PageView, error) {
	page, err := s.queries.GetPage(ctx, pageID)
	if errors.Is(err, sql.ErrNoRows) {
		if view := defaultPageView(pageID); view != nil {
			if pageID == model.PageLeadership {
				if err := s.attachLeaders(ctx, view); err != nil {
					return nil, err
				}
			}
			return view, nil
		}
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading page %s: %w", pageID, err)
	}

	sections, err := s.queries.ListSectionsByPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("loading sections for %s: %w", pageID, err)
	}

	view := &PageView{Page: page}
	for _, sec := range sections {
		view.Sections = append(view.Sections, SectionView{Section: sec})
	}
	if pageID == model.PageLeadership {
		if err := s.attachLeaders(ctx, view); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// PublicPage returns the page with section bodies rendered markdown-to-HTML,
// served through the page cache when one is configured.
func (s *Service) PublicPage(ctx context.Context, pageID string) (*PageView, error) {
	if s.cache != nil {
		if view, ok := s.cache.Get(ctx, pageID); ok {
			return view, nil
		}
	}

	view, err := s.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	for i := range view.Sections {
		view.Sections[i].HTML = s.renderMarkdown(view.Sections[i].Content)
	}

	if s.cache != nil {
		s.cache.Set(ctx, pageID, view)
	}
	return view, nil
}

// ListPages returns all pages in navigational order: the fixed priority list
// first, any remaining pages alphabetically after it. Well-known pages with
// no stored row appear with their default titles so navigation is complete on
// a fresh deployment.
func (s *Service) ListPages(ctx context.Context) ([]model.Page, error) {
	stored, err := s.queries.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}

	byID := make(map[string]model.Page, len(stored))
	for _, p := range stored {
		byID[p.ID] = p
	}
	for id, tpl := range defaultPages {
		if _, ok := byID[id]; !ok {
			byID[id] = model.Page{ID: id, Title: tpl.Title}
		}
	}

	rank := make(map[string]int, len(model.NavPriority))
	for i, id := range model.NavPriority {
		rank[id] = i
	}

	pages := make([]model.Page, 0, len(byID))
	for _, p := range byID {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool {
		ri, iKnown := rank[pages[i].ID]
		rj, jKnown := rank[pages[j].ID]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return pages[i].ID < pages[j].ID
		}
	})
	return pages, nil
}

// UpdatePageParams holds editable page metadata.
type UpdatePageParams struct {
	PageID    string
	Title     string
	HeroImage *string
	HeroVideo *string
}

// UpdatePage upserts the page row with a fresh last_modified stamp.
func (s *Service) UpdatePage(ctx context.Context, arg UpdatePageParams) (model.Page, error) {
	if arg.Title == "" {
		return model.Page{}, errors.New("page title is required")
	}
	page, err := s.queries.UpsertPage(ctx, store.UpsertPageParams{
		PageID:       arg.PageID,
		Title:        s.policy.Sanitize(arg.Title),
		HeroImage:    util.NullStringFromPtr(arg.HeroImage),
		HeroVideo:    util.NullStringFromPtr(arg.HeroVideo),
		LastModified: time.Now().UTC(),
	})
	if err != nil {
		return model.Page{}, fmt.Errorf("updating page %s: %w", arg.PageID, err)
	}
	s.invalidate(ctx, arg.PageID)
	return page, nil
}

// SectionParams holds section write parameters. A zero OrderNumber means
// "append": the section gets max(existing)+1 within the page.
type SectionParams struct {
	PageID      string
	Title       string
	Content     string
	Image       *string
	OrderNumber int64
}

// UpsertSectionByTitle writes the section keyed on (page, title): a new row
// when the title is unseen, an in-place update preserving the row ID when it
// exists. Editors treat titled sections as named fields, so repeating a save
// must not duplicate rows.
func (s *Service) UpsertSectionByTitle(ctx context.Context, arg SectionParams) (model.Section, error) {
	if err := s.validateSection(arg); err != nil {
		return model.Section{}, err
	}
	order, err := s.resolveSectionOrder(ctx, arg.PageID, arg.Title, arg.OrderNumber)
	if err != nil {
		return model.Section{}, err
	}
	section, err := s.queries.UpsertSectionByTitle(ctx, store.CreateSectionParams{
		PageID:      arg.PageID,
		Title:       arg.Title,
		Content:     s.policy.Sanitize(arg.Content),
		Image:       util.NullStringFromPtr(arg.Image),
		OrderNumber: order,
	})
	if err != nil {
		return model.Section{}, fmt.Errorf("upserting section %s/%s: %w", arg.PageID, arg.Title, err)
	}
	if err := s.touch(ctx, arg.PageID); err != nil {
		return model.Section{}, err
	}
	return section, nil
}

// AddSection appends a new section to the page.
func (s *Service) AddSection(ctx context.Context, arg SectionParams) (model.Section, error) {
	if err := s.validateSection(arg); err != nil {
		return model.Section{}, err
	}
	order, err := s.resolveSectionOrder(ctx, arg.PageID, arg.Title, arg.OrderNumber)
	if err != nil {
		return model.Section{}, err
	}
	section, err := s.queries.CreateSection(ctx, store.CreateSectionParams{
		PageID:      arg.PageID,
		Title:       arg.Title,
		Content:     s.policy.Sanitize(arg.Content),
		Image:       util.NullStringFromPtr(arg.Image),
		OrderNumber: order,
	})
	if err != nil {
		return model.Section{}, fmt.Errorf("creating section on %s: %w", arg.PageID, err)
	}
	if err := s.touch(ctx, arg.PageID); err != nil {
		return model.Section{}, err
	}
	return section, nil
}

// UpdateSection updates an existing section in place.
func (s *Service) UpdateSection(ctx context.Context, id int64, arg SectionParams) (model.Section, error) {
	existing, err := s.queries.GetSection(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Section{}, ErrNotFound
	}
	if err != nil {
		return model.Section{}, fmt.Errorf("loading section %d: %w", id, err)
	}

	arg.PageID = existing.PageID
	if err := s.validateSection(arg); err != nil {
		return model.Section{}, err
	}
	order := arg.OrderNumber
	if order == 0 {
		order = existing.OrderNumber
	}
	order = clampVisionOrder(existing.PageID, arg.Title, order)

	section, err := s.queries.UpdateSection(ctx, store.UpdateSectionParams{
		ID:          id,
		Title:       arg.Title,
		Content:     s.policy.Sanitize(arg.Content),
		Image:       util.NullStringFromPtr(arg.Image),
		OrderNumber: order,
	})
	if err != nil {
		return model.Section{}, fmt.Errorf("updating section %d: %w", id, err)
	}
	if err := s.touch(ctx, existing.PageID); err != nil {
		return model.Section{}, err
	}
	return section, nil
}

// DeleteSection permanently removes the section.
func (s *Service) DeleteSection(ctx context.Context, id int64) error {
	existing, err := s.queries.GetSection(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading section %d: %w", id, err)
	}
	if err := s.queries.DeleteSection(ctx, id); err != nil {
		return fmt.Errorf("deleting section %d: %w", id, err)
	}
	return s.touch(ctx, existing.PageID)
}

// ListLeaders returns leaders in display order: main band first.
func (s *Service) ListLeaders(ctx context.Context) ([]model.Leader, error) {
	return s.queries.ListLeaders(ctx)
}

// GetLeader returns the leader with the given ID.
func (s *Service) GetLeader(ctx context.Context, id int64) (model.Leader, error) {
	leader, err := s.queries.GetLeader(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Leader{}, ErrNotFound
	}
	return leader, err
}

// LeaderParams holds leader write parameters. A zero OrderNumber appends
// within the is_main band.
type LeaderParams struct {
	Name        string
	Position    string
	IsMain      bool
	Image       *string
	OrderNumber int64
	Bio         string
	Email       string
	Phone       string
}

// AddLeader inserts a leader and stamps the leadership page.
func (s *Service) AddLeader(ctx context.Context, arg LeaderParams) (model.Leader, error) {
	if arg.Name == "" {
		return model.Leader{}, errors.New("leader name is required")
	}
	order := arg.OrderNumber
	if order == 0 {
		max, err := s.queries.MaxLeaderOrder(ctx, arg.IsMain)
		if err != nil {
			return model.Leader{}, fmt.Errorf("resolving leader order: %w", err)
		}
		order = max + 1
	}
	leader, err := s.queries.CreateLeader(ctx, store.CreateLeaderParams{
		Name:        arg.Name,
		Position:    arg.Position,
		IsMain:      arg.IsMain,
		Image:       util.NullStringFromPtr(arg.Image),
		OrderNumber: order,
		Bio:         s.policy.Sanitize(arg.Bio),
		Email:       arg.Email,
		Phone:       arg.Phone,
	})
	if err != nil {
		return model.Leader{}, fmt.Errorf("creating leader: %w", err)
	}
	if err := s.touch(ctx, model.PageLeadership); err != nil {
		return model.Leader{}, err
	}
	return leader, nil
}

// UpdateLeader updates the leader in place and stamps the leadership page.
func (s *Service) UpdateLeader(ctx context.Context, id int64, arg LeaderParams) (model.Leader, error) {
	existing, err := s.queries.GetLeader(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Leader{}, ErrNotFound
	}
	if err != nil {
		return model.Leader{}, fmt.Errorf("loading leader %d: %w", id, err)
	}
	if arg.Name == "" {
		return model.Leader{}, errors.New("leader name is required")
	}
	order := arg.OrderNumber
	if order == 0 {
		order = existing.OrderNumber
	}
	leader, err := s.queries.UpdateLeader(ctx, store.UpdateLeaderParams{
		ID:          id,
		Name:        arg.Name,
		Position:    arg.Position,
		IsMain:      arg.IsMain,
		Image:       util.NullStringFromPtr(arg.Image),
		OrderNumber: order,
		Bio:         s.policy.Sanitize(arg.Bio),
		Email:       arg.Email,
		Phone:       arg.Phone,
	})
	if err != nil {
		return model.Leader{}, fmt.Errorf("updating leader %d: %w", id, err)
	}
	if err := s.touch(ctx, model.PageLeadership); err != nil {
		return model.Leader{}, err
	}
	return leader, nil
}

// DeleteLeader permanently removes the leader and stamps the leadership page.
func (s *Service) DeleteLeader(ctx context.Context, id int64) error {
	_, err := s.queries.GetLeader(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading leader %d: %w", id, err)
	}
	if err := s.queries.DeleteLeader(ctx, id); err != nil {
		return fmt.Errorf("deleting leader %d: %w", id, err)
	}
	return s.touch(ctx, model.PageLeadership)
}

func (s *Service) attachLeaders(ctx context.Context, view *PageView) error {
	leaders, err := s.queries.ListLeaders(ctx)
	if err != nil {
		return fmt.Errorf("loading leaders: %w", err)
	}
	view.Leaders = leaders
	return nil
}

func (s *Service) validateSection(arg SectionParams) error {
	if arg.PageID == "" {
		return errors.New("page ID is required")
	}
	if arg.Title == "" {
		return errors.New("section title is required")
	}
	return nil
}

// resolveSectionOrder applies the append default and the vision page's order
// bands to a requested order number.
func (s *Service) resolveSectionOrder(ctx context.Context, pageID, title string, requested int64) (int64, error) {
	order := requested
	if order == 0 {
		max, err := s.queries.MaxSectionOrder(ctx, pageID)
		if err != nil {
			return 0, fmt.Errorf("resolving section order: %w", err)
		}
		order = max + 1
	}
	return clampVisionOrder(pageID, title, order), nil
}

// clampVisionOrder keeps vision sections inside their band, classified by
// slot title: pillar sections occupy orders 1-3, goal sections 4 and up.
// Untitled-band vision sections only get the lower bound; other pages pass
// through unchanged.
func clampVisionOrder(pageID, title string, order int64) int64 {
	if pageID != model.PageVision {
		return order
	}
	switch {
	case strings.HasPrefix(strings.ToLower(title), "pillar"):
		if order < model.VisionPillarMinOrder {
			return model.VisionPillarMinOrder
		}
		if order > model.VisionPillarMaxOrder {
			return model.VisionPillarMaxOrder
		}
	case strings.HasPrefix(strings.ToLower(title), "goal"):
		if order < model.VisionGoalMinOrder {
			return model.VisionGoalMinOrder
		}
	default:
		if order < model.VisionPillarMinOrder {
			return model.VisionPillarMinOrder
		}
	}
	return order
}

// touch stamps the parent page and drops its cached view.
func (s *Service) touch(ctx context.Context, pageID string) error {
	if err := s.queries.TouchPage(ctx, pageID, time.Now().UTC()); err != nil {
		return fmt.Errorf("stamping page %s: %w", pageID, err)
	}
	s.invalidate(ctx, pageID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, pageID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, pageID)
	}
}

func (s *Service) renderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(source), &buf); err != nil {
		slog.Warn("markdown render failed", "error", err)
		return s.policy.Sanitize(source)
	}
	return s.policy.Sanitize(buf.String())
}
