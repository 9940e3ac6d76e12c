// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Staff roles. Admin sees everything; the two section roles are deliberately
// narrow editors for their pages only.
const (
	RoleAdmin          = "admin"
	RoleNewsStatements = "news_statements"
	RoleActivities     = "activities"
)

// ValidRoles contains all assignable roles.
var ValidRoles = []string{RoleAdmin, RoleNewsStatements, RoleActivities}

// Account is a staff account. Applicants never get accounts; the public
// surface is anonymous.
type Account struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Name         string       `json:"name"`
	Role         string       `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// IsAdmin returns true for the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsValidRole checks whether role is a known role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
