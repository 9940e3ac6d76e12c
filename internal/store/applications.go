// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aljanabi/partycms/internal/model"
)

const applicationColumns = `id, full_name, mother_name, national_id, date_of_birth, birth_place,
	gender, marital_status, governorate, district, address, phone, email,
	education_level, degree, institution, occupation, employer, work_address,
	previous_party, previous_party_name, previous_party_period, reason_for_leaving,
	join_reason, skills, languages,
	attachment1, attachment2, attachment3, attachment4, attachment5,
	status, submitted_at, reviewed_by, reviewed_at, notes`

// CreateApplicationParams holds the applicant-supplied fields. Status and
// submission time are set by the store, not the caller.
type CreateApplicationParams struct {
	FullName            string
	MotherName          string
	NationalID          string
	DateOfBirth         string
	BirthPlace          string
	Gender              string
	MaritalStatus       string
	Governorate         string
	District            string
	Address             string
	Phone               string
	Email               string
	EducationLevel      string
	Degree              string
	Institution         string
	Occupation          string
	Employer            string
	WorkAddress         string
	PreviousParty       bool
	PreviousPartyName   string
	PreviousPartyPeriod string
	ReasonForLeaving    string
	JoinReason          string
	Skills              string
	Languages           string
	Attachments         []string
	SubmittedAt         time.Time
}

// CreateApplication inserts a new pending application and returns it.
func (q *Queries) CreateApplication(ctx context.Context, arg CreateApplicationParams) (model.Application, error) {
	att := make([]string, model.MaxAttachments)
	copy(att, arg.Attachments)

	row := q.db.QueryRowContext(ctx, `
		INSERT INTO applications (
			full_name, mother_name, national_id, date_of_birth, birth_place,
			gender, marital_status, governorate, district, address, phone, email,
			education_level, degree, institution, occupation, employer, work_address,
			previous_party, previous_party_name, previous_party_period, reason_for_leaving,
			join_reason, skills, languages,
			attachment1, attachment2, attachment3, attachment4, attachment5,
			status, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+applicationColumns,
		arg.FullName, arg.MotherName, arg.NationalID, arg.DateOfBirth, arg.BirthPlace,
		arg.Gender, arg.MaritalStatus, arg.Governorate, arg.District, arg.Address, arg.Phone, arg.Email,
		arg.EducationLevel, arg.Degree, arg.Institution, arg.Occupation, arg.Employer, arg.WorkAddress,
		arg.PreviousParty, arg.PreviousPartyName, arg.PreviousPartyPeriod, arg.ReasonForLeaving,
		arg.JoinReason, arg.Skills, arg.Languages,
		att[0], att[1], att[2], att[3], att[4],
		model.StatusPending, arg.SubmittedAt,
	)
	return scanApplication(row)
}

// GetApplication returns the application with the given ID.
func (q *Queries) GetApplication(ctx context.Context, id int64) (model.Application, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	return scanApplication(row)
}

// ListApplicationsParams holds filter parameters for ListApplications.
type ListApplicationsParams struct {
	// Status filters by review status; empty or "all" returns every status.
	Status string
	// Search matches case-insensitively as a substring against full name,
	// national ID, phone, and email.
	Search string
}

// ListApplications returns applications newest first, optionally filtered.
func (q *Queries) ListApplications(ctx context.Context, arg ListApplicationsParams) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications`
	var conds []string
	var args []any

	if arg.Status != "" && arg.Status != "all" {
		conds = append(conds, "status = ?")
		args = append(args, arg.Status)
	}
	if arg.Search != "" {
		// LOWER + LIKE gives case-insensitive substring matching; the
		// pattern is escaped so user input cannot inject wildcards.
		pattern := "%" + escapeLike(strings.ToLower(arg.Search)) + "%"
		conds = append(conds, `(
			LOWER(full_name) LIKE ? ESCAPE '\' OR
			LOWER(national_id) LIKE ? ESCAPE '\' OR
			LOWER(phone) LIKE ? ESCAPE '\' OR
			LOWER(email) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY submitted_at DESC, id DESC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var apps []model.Application
	for rows.Next() {
		a, err := scanApplicationRows(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// SetApplicationStatusParams holds parameters for SetApplicationStatus.
type SetApplicationStatusParams struct {
	ID         int64
	Status     string
	Notes      string
	ReviewedBy int64
	ReviewedAt time.Time
}

// SetApplicationStatus persists a review decision. Conflicting concurrent
// reviews resolve last-write-wins; there is no optimistic locking.
func (q *Queries) SetApplicationStatus(ctx context.Context, arg SetApplicationStatusParams) (model.Application, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE applications
		SET status = ?, notes = ?, reviewed_by = ?, reviewed_at = ?
		WHERE id = ?
		RETURNING `+applicationColumns,
		arg.Status, arg.Notes, arg.ReviewedBy, arg.ReviewedAt, arg.ID,
	)
	return scanApplication(row)
}

// CountApplicationsByStatus returns the number of applications per status.
func (q *Queries) CountApplicationsByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications WHERE status = ?`, status).Scan(&n)
	return n, err
}

// ListAttachmentURLs returns every non-empty attachment URL across all
// applications for the orphan asset sweep.
func (q *Queries) ListAttachmentURLs(ctx context.Context) ([]string, error) {
	var urls []string
	for i := 1; i <= model.MaxAttachments; i++ {
		col := fmt.Sprintf("attachment%d", i)
		batch, err := q.listURLColumn(ctx,
			`SELECT `+col+` FROM applications WHERE `+col+` != ''`)
		if err != nil {
			return nil, err
		}
		urls = append(urls, batch...)
	}
	return urls, nil
}

// escapeLike escapes LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

type applicationScanner interface {
	Scan(dest ...any) error
}

func scanApplicationFrom(s applicationScanner) (model.Application, error) {
	var a model.Application
	att := make([]string, model.MaxAttachments)
	err := s.Scan(
		&a.ID, &a.FullName, &a.MotherName, &a.NationalID, &a.DateOfBirth, &a.BirthPlace,
		&a.Gender, &a.MaritalStatus, &a.Governorate, &a.District, &a.Address, &a.Phone, &a.Email,
		&a.EducationLevel, &a.Degree, &a.Institution, &a.Occupation, &a.Employer, &a.WorkAddress,
		&a.PreviousParty, &a.PreviousPartyName, &a.PreviousPartyPeriod, &a.ReasonForLeaving,
		&a.JoinReason, &a.Skills, &a.Languages,
		&att[0], &att[1], &att[2], &att[3], &att[4],
		&a.Status, &a.SubmittedAt, &a.ReviewedBy, &a.ReviewedAt, &a.Notes,
	)
	if err != nil {
		return a, err
	}
	for _, u := range att {
		if u != "" {
			a.Attachments = append(a.Attachments, u)
		}
	}
	return a, nil
}

func scanApplication(row *sql.Row) (model.Application, error) {
	return scanApplicationFrom(row)
}

func scanApplicationRows(rows *sql.Rows) (model.Application, error) {
	return scanApplicationFrom(rows)
}
