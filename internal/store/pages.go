// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/aljanabi/partycms/internal/model"
)

const pageColumns = `page_id, page_title, hero_image, hero_video, last_modified`

// GetPage returns the page row with the given ID.
func (q *Queries) GetPage(ctx context.Context, pageID string) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM page_content WHERE page_id = ?`, pageID)
	var p model.Page
	err := row.Scan(&p.ID, &p.Title, &p.HeroImage, &p.HeroVideo, &p.LastModified)
	return p, err
}

// ListPages returns all page rows. Navigational ordering is applied by the
// content service, not here.
func (q *Queries) ListPages(ctx context.Context) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+pageColumns+` FROM page_content ORDER BY page_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pages []model.Page
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.Title, &p.HeroImage, &p.HeroVideo, &p.LastModified); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// UpsertPageParams holds parameters for UpsertPage.
type UpsertPageParams struct {
	PageID       string
	Title        string
	HeroImage    sql.NullString
	HeroVideo    sql.NullString
	LastModified time.Time
}

// UpsertPage inserts or replaces the page row. Pages are a fixed set of
// slugs, so the single-row upsert is the only write path.
func (q *Queries) UpsertPage(ctx context.Context, arg UpsertPageParams) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO page_content (page_id, page_title, hero_image, hero_video, last_modified)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(page_id) DO UPDATE SET
			page_title = excluded.page_title,
			hero_image = excluded.hero_image,
			hero_video = excluded.hero_video,
			last_modified = excluded.last_modified
		RETURNING `+pageColumns,
		arg.PageID, arg.Title, arg.HeroImage, arg.HeroVideo, arg.LastModified,
	)
	var p model.Page
	err := row.Scan(&p.ID, &p.Title, &p.HeroImage, &p.HeroVideo, &p.LastModified)
	return p, err
}

// TouchPage stamps the page's last_modified without changing other fields.
// Missing rows are created with the page ID as a provisional title so that
// section writes against a default-template page still record modification.
func (q *Queries) TouchPage(ctx context.Context, pageID string, t time.Time) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO page_content (page_id, page_title, last_modified)
		VALUES (?, ?, ?)
		ON CONFLICT(page_id) DO UPDATE SET last_modified = excluded.last_modified`,
		pageID, pageID, t,
	)
	return err
}

// ListHeroImageURLs returns all non-null hero image URLs. Used by the orphan
// asset sweep to compute the referenced set.
func (q *Queries) ListHeroImageURLs(ctx context.Context) ([]string, error) {
	return q.listURLColumn(ctx, `SELECT hero_image FROM page_content WHERE hero_image IS NOT NULL AND hero_image != ''`)
}

func (q *Queries) listURLColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}
