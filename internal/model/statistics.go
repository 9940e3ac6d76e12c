// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// StatisticsSnapshot is a flat row of aggregate member counts. Snapshots form
// an append-only ledger: every save is an insert and readers take the most
// recent row.
type StatisticsSnapshot struct {
	ID            int64     `json:"id"`
	TotalMembers  int64     `json:"total_members"`
	FemaleMembers int64     `json:"female_members"`
	MaleMembers   int64     `json:"male_members"`
	YouthMembers  int64     `json:"youth_members"`
	LastUpdated   time.Time `json:"last_updated"`
}
