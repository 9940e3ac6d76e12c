// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/aljanabi/partycms/internal/model"
)

const sectionColumns = `id, page_id, title, content, image, order_number`

// ListSectionsByPage returns the page's sections ordered for display:
// ascending order_number, ties broken by insertion ID.
func (q *Queries) ListSectionsByPage(ctx context.Context, pageID string) ([]model.Section, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+sectionColumns+` FROM page_sections
		WHERE page_id = ?
		ORDER BY order_number, id`, pageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sections []model.Section
	for rows.Next() {
		s, err := scanSectionRows(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// GetSection returns the section with the given ID.
func (q *Queries) GetSection(ctx context.Context, id int64) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+sectionColumns+` FROM page_sections WHERE id = ?`, id)
	return scanSection(row)
}

// GetSectionByTitle returns the section with the given (page, title) key.
func (q *Queries) GetSectionByTitle(ctx context.Context, pageID, title string) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+sectionColumns+` FROM page_sections WHERE page_id = ? AND title = ?`,
		pageID, title)
	return scanSection(row)
}

// CreateSectionParams holds parameters for CreateSection.
type CreateSectionParams struct {
	PageID      string
	Title       string
	Content     string
	Image       sql.NullString
	OrderNumber int64
}

// CreateSection inserts a new section and returns it.
func (q *Queries) CreateSection(ctx context.Context, arg CreateSectionParams) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO page_sections (page_id, title, content, image, order_number)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+sectionColumns,
		arg.PageID, arg.Title, arg.Content, arg.Image, arg.OrderNumber,
	)
	return scanSection(row)
}

// UpsertSectionByTitle inserts the section or, when the (page_id, title) key
// already exists, updates the row in place preserving its ID. The unique
// index on (page_id, title) makes the operation a single atomic statement.
func (q *Queries) UpsertSectionByTitle(ctx context.Context, arg CreateSectionParams) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO page_sections (page_id, title, content, image, order_number)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(page_id, title) DO UPDATE SET
			content = excluded.content,
			image = excluded.image,
			order_number = excluded.order_number
		RETURNING `+sectionColumns,
		arg.PageID, arg.Title, arg.Content, arg.Image, arg.OrderNumber,
	)
	return scanSection(row)
}

// UpdateSectionParams holds parameters for UpdateSection.
type UpdateSectionParams struct {
	ID          int64
	Title       string
	Content     string
	Image       sql.NullString
	OrderNumber int64
}

// UpdateSection updates the section in place and returns it.
func (q *Queries) UpdateSection(ctx context.Context, arg UpdateSectionParams) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE page_sections
		SET title = ?, content = ?, image = ?, order_number = ?
		WHERE id = ?
		RETURNING `+sectionColumns,
		arg.Title, arg.Content, arg.Image, arg.OrderNumber, arg.ID,
	)
	return scanSection(row)
}

// DeleteSection permanently removes the section. There is no soft delete.
func (q *Queries) DeleteSection(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM page_sections WHERE id = ?`, id)
	return err
}

// MaxSectionOrder returns the highest order_number on the page, or 0 when the
// page has no sections.
func (q *Queries) MaxSectionOrder(ctx context.Context, pageID string) (int64, error) {
	var max sql.NullInt64
	err := q.db.QueryRowContext(ctx,
		`SELECT MAX(order_number) FROM page_sections WHERE page_id = ?`, pageID).Scan(&max)
	if err != nil {
		return 0, err
	}
	return max.Int64, nil
}

// ListSectionImageURLs returns all non-null section image URLs for the orphan
// asset sweep.
func (q *Queries) ListSectionImageURLs(ctx context.Context) ([]string, error) {
	return q.listURLColumn(ctx, `SELECT image FROM page_sections WHERE image IS NOT NULL AND image != ''`)
}

func scanSection(row *sql.Row) (model.Section, error) {
	var s model.Section
	err := row.Scan(&s.ID, &s.PageID, &s.Title, &s.Content, &s.Image, &s.OrderNumber)
	return s, err
}

func scanSectionRows(rows *sql.Rows) (model.Section, error) {
	var s model.Section
	err := rows.Scan(&s.ID, &s.PageID, &s.Title, &s.Content, &s.Image, &s.OrderNumber)
	return s, err
}
