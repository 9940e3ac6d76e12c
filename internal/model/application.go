// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Application review statuses. Pending is the creation state; approved and
// rejected are terminal only in the sense that no automatic transition runs;
// reviewers may still move an application between any two states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatuses contains all valid application statuses.
var ValidStatuses = []string{StatusPending, StatusApproved, StatusRejected}

// MaxAttachments is the maximum number of attachment URLs per application.
const MaxAttachments = 5

// Application is a membership-intake submission. It is created once by the
// public form; after creation only status and notes change.
type Application struct {
	ID int64 `json:"id"`

	// Identity
	FullName      string `json:"full_name"`
	MotherName    string `json:"mother_name"`
	NationalID    string `json:"national_id"`
	DateOfBirth   string `json:"date_of_birth"`
	BirthPlace    string `json:"birth_place"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"marital_status"`

	// Contact
	Governorate string `json:"governorate"`
	District    string `json:"district"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`

	// Education
	EducationLevel string `json:"education_level"`
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`

	// Employment
	Occupation  string `json:"occupation"`
	Employer    string `json:"employer"`
	WorkAddress string `json:"work_address"`

	// Prior party history
	PreviousParty       bool   `json:"previous_party"`
	PreviousPartyName   string `json:"previous_party_name"`
	PreviousPartyPeriod string `json:"previous_party_period"`
	ReasonForLeaving    string `json:"reason_for_leaving"`

	// Motivation
	JoinReason string `json:"join_reason"`
	Skills     string `json:"skills"`
	Languages  string `json:"languages"`

	// Up to MaxAttachments attachment URLs (ID scan, photo, CV, ...).
	Attachments []string `json:"attachments"`

	Status      string        `json:"status"`
	SubmittedAt time.Time     `json:"submitted_at"`
	ReviewedBy  sql.NullInt64 `json:"reviewed_by,omitempty"`
	ReviewedAt  sql.NullTime  `json:"reviewed_at,omitempty"`
	Notes       string        `json:"notes"`
}

// IsPending returns true if the application has not been reviewed yet.
func (a *Application) IsPending() bool {
	return a.Status == StatusPending
}

// IsValidStatus checks whether status is a known review status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
