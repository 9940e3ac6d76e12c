// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/aljanabi/partycms/internal/model"
)

const statisticsColumns = `id, total_members, female_members, male_members, youth_members, last_updated`

// AppendStatisticsParams holds parameters for AppendStatistics.
type AppendStatisticsParams struct {
	TotalMembers  int64
	FemaleMembers int64
	MaleMembers   int64
	YouthMembers  int64
	LastUpdated   time.Time
}

// AppendStatistics inserts a new snapshot row. Statistics are an append-only
// ledger: there is deliberately no update statement for this table.
func (q *Queries) AppendStatistics(ctx context.Context, arg AppendStatisticsParams) (model.StatisticsSnapshot, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO statistics (total_members, female_members, male_members, youth_members, last_updated)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+statisticsColumns,
		arg.TotalMembers, arg.FemaleMembers, arg.MaleMembers, arg.YouthMembers, arg.LastUpdated,
	)
	var s model.StatisticsSnapshot
	err := row.Scan(&s.ID, &s.TotalMembers, &s.FemaleMembers, &s.MaleMembers, &s.YouthMembers, &s.LastUpdated)
	return s, err
}

// LatestStatistics returns the most recent snapshot.
func (q *Queries) LatestStatistics(ctx context.Context) (model.StatisticsSnapshot, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+statisticsColumns+` FROM statistics
		ORDER BY last_updated DESC, id DESC
		LIMIT 1`)
	var s model.StatisticsSnapshot
	err := row.Scan(&s.ID, &s.TotalMembers, &s.FemaleMembers, &s.MaleMembers, &s.YouthMembers, &s.LastUpdated)
	return s, err
}
