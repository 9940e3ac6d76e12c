// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package stats exposes the member-count ledger: append-only snapshot writes
// and latest-row reads.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aljanabi/partycms/internal/model"
	"github.com/aljanabi/partycms/internal/store"
)

// ErrNoSnapshots is returned by Latest before any snapshot exists.
var ErrNoSnapshots = errors.New("no statistics snapshots")

// Ledger is the only write path to the statistics table. Every save appends;
// history is never edited.
type Ledger struct {
	queries *store.Queries
}

// NewLedger creates a statistics ledger.
func NewLedger(queries *store.Queries) *Ledger {
	return &Ledger{queries: queries}
}

// Snapshot carries the aggregate counts for one append.
type Snapshot struct {
	TotalMembers  int64 `json:"total_members"`
	FemaleMembers int64 `json:"female_members"`
	MaleMembers   int64 `json:"male_members"`
	YouthMembers  int64 `json:"youth_members"`
}

// Append records a new snapshot stamped with the current time.
func (l *Ledger) Append(ctx context.Context, snap Snapshot) (model.StatisticsSnapshot, error) {
	if snap.TotalMembers < 0 || snap.FemaleMembers < 0 || snap.MaleMembers < 0 || snap.YouthMembers < 0 {
		return model.StatisticsSnapshot{}, errors.New("member counts must be non-negative")
	}
	row, err := l.queries.AppendStatistics(ctx, store.AppendStatisticsParams{
		TotalMembers:  snap.TotalMembers,
		FemaleMembers: snap.FemaleMembers,
		MaleMembers:   snap.MaleMembers,
		YouthMembers:  snap.YouthMembers,
		LastUpdated:   time.Now().UTC(),
	})
	if err != nil {
		return model.StatisticsSnapshot{}, fmt.Errorf("appending statistics: %w", err)
	}
	return row, nil
}

// Latest returns the most recent snapshot, or ErrNoSnapshots when the ledger
// is empty.
func (l *Ledger) Latest(ctx context.Context) (model.StatisticsSnapshot, error) {
	row, err := l.queries.LatestStatistics(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StatisticsSnapshot{}, ErrNoSnapshots
	}
	if err != nil {
		return model.StatisticsSnapshot{}, fmt.Errorf("reading latest statistics: %w", err)
	}
	return row, nil
}
