// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "database/sql"

// Leader is a person record shown on the leadership page. IsMain partitions
// leaders into top leadership vs assistants; there is no deeper hierarchy.
type Leader struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Position    string         `json:"position"`
	IsMain      bool           `json:"is_main"`
	Image       sql.NullString `json:"image,omitempty"`
	OrderNumber int64          `json:"order_number"`
	Bio         string         `json:"bio"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
}
