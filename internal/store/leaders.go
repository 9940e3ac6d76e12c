// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/aljanabi/partycms/internal/model"
)

const leaderColumns = `id, name, position, is_main, image, order_number, bio, email, phone`

// ListLeaders returns all leaders ordered for display: the is_main band
// first, then ascending order_number with ties broken by insertion ID.
func (q *Queries) ListLeaders(ctx context.Context) ([]model.Leader, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+leaderColumns+` FROM leaders
		ORDER BY is_main DESC, order_number, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var leaders []model.Leader
	for rows.Next() {
		l, err := scanLeaderRows(rows)
		if err != nil {
			return nil, err
		}
		leaders = append(leaders, l)
	}
	return leaders, rows.Err()
}

// GetLeader returns the leader with the given ID.
func (q *Queries) GetLeader(ctx context.Context, id int64) (model.Leader, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+leaderColumns+` FROM leaders WHERE id = ?`, id)
	return scanLeader(row)
}

// CreateLeaderParams holds parameters for CreateLeader.
type CreateLeaderParams struct {
	Name        string
	Position    string
	IsMain      bool
	Image       sql.NullString
	OrderNumber int64
	Bio         string
	Email       string
	Phone       string
}

// CreateLeader inserts a new leader and returns it.
func (q *Queries) CreateLeader(ctx context.Context, arg CreateLeaderParams) (model.Leader, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO leaders (name, position, is_main, image, order_number, bio, email, phone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+leaderColumns,
		arg.Name, arg.Position, arg.IsMain, arg.Image, arg.OrderNumber, arg.Bio, arg.Email, arg.Phone,
	)
	return scanLeader(row)
}

// UpdateLeaderParams holds parameters for UpdateLeader.
type UpdateLeaderParams struct {
	ID          int64
	Name        string
	Position    string
	IsMain      bool
	Image       sql.NullString
	OrderNumber int64
	Bio         string
	Email       string
	Phone       string
}

// UpdateLeader updates the leader in place and returns it.
func (q *Queries) UpdateLeader(ctx context.Context, arg UpdateLeaderParams) (model.Leader, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE leaders
		SET name = ?, position = ?, is_main = ?, image = ?, order_number = ?, bio = ?, email = ?, phone = ?
		WHERE id = ?
		RETURNING `+leaderColumns,
		arg.Name, arg.Position, arg.IsMain, arg.Image, arg.OrderNumber, arg.Bio, arg.Email, arg.Phone, arg.ID,
	)
	return scanLeader(row)
}

// DeleteLeader permanently removes the leader.
func (q *Queries) DeleteLeader(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM leaders WHERE id = ?`, id)
	return err
}

// MaxLeaderOrder returns the highest order_number within the is_main band,
// or 0 when the band is empty.
func (q *Queries) MaxLeaderOrder(ctx context.Context, isMain bool) (int64, error) {
	var max sql.NullInt64
	err := q.db.QueryRowContext(ctx,
		`SELECT MAX(order_number) FROM leaders WHERE is_main = ?`, isMain).Scan(&max)
	if err != nil {
		return 0, err
	}
	return max.Int64, nil
}

// ListLeaderImageURLs returns all non-null leader image values for the orphan
// asset sweep. Values may be direct URLs or legacy page keys; the sweep
// resolves them before comparing paths.
func (q *Queries) ListLeaderImageURLs(ctx context.Context) ([]string, error) {
	return q.listURLColumn(ctx, `SELECT image FROM leaders WHERE image IS NOT NULL AND image != ''`)
}

func scanLeader(row *sql.Row) (model.Leader, error) {
	var l model.Leader
	err := row.Scan(&l.ID, &l.Name, &l.Position, &l.IsMain, &l.Image, &l.OrderNumber, &l.Bio, &l.Email, &l.Phone)
	return l, err
}

func scanLeaderRows(rows *sql.Rows) (model.Leader, error) {
	var l model.Leader
	err := rows.Scan(&l.ID, &l.Name, &l.Position, &l.IsMain, &l.Image, &l.OrderNumber, &l.Bio, &l.Email, &l.Phone)
	return l, err
}
