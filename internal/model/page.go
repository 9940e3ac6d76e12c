// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Well-known page IDs. Pages are a fixed set of site routes; editors change
// their content but never create or delete the rows themselves.
const (
	PageHome       = "home"
	PageVision     = "vision"
	PageNews       = "news"
	PageStatements = "statements"
	PageActivities = "activities"
	PageLeadership = "leadership"
	PageBudgets    = "budgets"
	PageMembership = "membership"
	PageContact    = "contact"
)

// NavPriority is the fixed navigational order for page listings. Pages not
// listed here sort alphabetically after these.
var NavPriority = []string{
	PageHome,
	PageVision,
	PageNews,
	PageStatements,
	PageActivities,
	PageLeadership,
	PageBudgets,
	PageMembership,
	PageContact,
}

// Page represents a top-level site route's content container.
type Page struct {
	ID           string         `json:"id"` // stable slug, e.g. "vision"
	Title        string         `json:"title"`
	HeroImage    sql.NullString `json:"hero_image,omitempty"`
	HeroVideo    sql.NullString `json:"hero_video,omitempty"`
	LastModified time.Time      `json:"last_modified"`
}

// Section is a named, ordered content block belonging to a Page. Within a
// page, OrderNumber defines display sequence; ties break by insertion ID.
type Section struct {
	ID          int64          `json:"id"`
	PageID      string         `json:"page_id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Image       sql.NullString `json:"image,omitempty"`
	OrderNumber int64          `json:"order_number"`
}

// Vision page order bands: "pillar" sections occupy 1-3, "goal" sections 4+.
// Caller-supplied orders are clamped into the band rather than trusted.
const (
	VisionPillarMinOrder = 1
	VisionPillarMaxOrder = 3
	VisionGoalMinOrder   = 4
)
