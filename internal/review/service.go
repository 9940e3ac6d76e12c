// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package review implements the membership application workflow: public
// submission, reviewer listing and search, and the status decisions that
// trigger applicant notifications.
package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/aljanabi/partycms/internal/model"
	"github.com/aljanabi/partycms/internal/store"
)

// ErrNotFound is returned when an application ID does not exist.
var ErrNotFound = errors.New("application not found")

// ValidationError reports which submitted fields failed validation. The
// submission is rejected before any write.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "invalid application fields: " + strings.Join(keys, ", ")
}

// Notifier is the applicant-email port. Failures never affect the state
// transition that triggered them.
type Notifier interface {
	SendConfirmation(ctx context.Context, to, fullName string) error
	SendDecision(ctx context.Context, to, fullName, status, notes string) error
}

// Service is the application review engine.
type Service struct {
	queries  *store.Queries
	notifier Notifier
	policy   *bluemonday.Policy
}

// NewService creates a review service. notifier may be nil to disable
// applicant email entirely.
func NewService(queries *store.Queries, notifier Notifier) *Service {
	return &Service{
		queries:  queries,
		notifier: notifier,
		policy:   bluemonday.UGCPolicy(),
	}
}

// Submission carries the applicant-supplied form fields. Attachment URLs are
// produced by the upload handler before Submit runs.
type Submission struct {
	FullName            string   `json:"full_name"`
	MotherName          string   `json:"mother_name"`
	NationalID          string   `json:"national_id"`
	DateOfBirth         string   `json:"date_of_birth"`
	BirthPlace          string   `json:"birth_place"`
	Gender              string   `json:"gender"`
	MaritalStatus       string   `json:"marital_status"`
	Governorate         string   `json:"governorate"`
	District            string   `json:"district"`
	Address             string   `json:"address"`
	Phone               string   `json:"phone"`
	Email               string   `json:"email"`
	EducationLevel      string   `json:"education_level"`
	Degree              string   `json:"degree"`
	Institution         string   `json:"institution"`
	Occupation          string   `json:"occupation"`
	Employer            string   `json:"employer"`
	WorkAddress         string   `json:"work_address"`
	PreviousParty       bool     `json:"previous_party"`
	PreviousPartyName   string   `json:"previous_party_name"`
	PreviousPartyPeriod string   `json:"previous_party_period"`
	ReasonForLeaving    string   `json:"reason_for_leaving"`
	JoinReason          string   `json:"join_reason"`
	Skills              string   `json:"skills"`
	Languages           string   `json:"languages"`
	Attachments         []string `json:"attachments"`
}

// Submit validates the submission, stores it as pending, and sends the
// confirmation email. The email is best-effort: the application is already
// persisted when it goes out, and a send failure only logs.
func (s *Service) Submit(ctx context.Context, sub Submission) (model.Application, error) {
	if err := validate(sub); err != nil {
		return model.Application{}, err
	}

	app, err := s.queries.CreateApplication(ctx, store.CreateApplicationParams{
		FullName:            strings.TrimSpace(sub.FullName),
		MotherName:          strings.TrimSpace(sub.MotherName),
		NationalID:          strings.TrimSpace(sub.NationalID),
		DateOfBirth:         sub.DateOfBirth,
		BirthPlace:          sub.BirthPlace,
		Gender:              sub.Gender,
		MaritalStatus:       sub.MaritalStatus,
		Governorate:         sub.Governorate,
		District:            sub.District,
		Address:             sub.Address,
		Phone:               strings.TrimSpace(sub.Phone),
		Email:               strings.TrimSpace(sub.Email),
		EducationLevel:      sub.EducationLevel,
		Degree:              sub.Degree,
		Institution:         sub.Institution,
		Occupation:          sub.Occupation,
		Employer:            sub.Employer,
		WorkAddress:         sub.WorkAddress,
		PreviousParty:       sub.PreviousParty,
		PreviousPartyName:   sub.PreviousPartyName,
		PreviousPartyPeriod: sub.PreviousPartyPeriod,
		ReasonForLeaving:    sub.ReasonForLeaving,
		JoinReason:          sub.JoinReason,
		Skills:              sub.Skills,
		Languages:           sub.Languages,
		Attachments:         sub.Attachments,
		SubmittedAt:         time.Now().UTC(),
	})
	if err != nil {
		return model.Application{}, fmt.Errorf("storing application: %w", err)
	}

	s.recordEvent(ctx, model.EventLevelInfo, "application submitted", app.ID, sql.NullInt64{})
	s.notifyConfirmation(ctx, app)

	return app, nil
}

// Get returns a single application.
func (s *Service) Get(ctx context.Context, id int64) (model.Application, error) {
	app, err := s.queries.GetApplication(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Application{}, ErrNotFound
	}
	return app, err
}

// List returns applications newest first. filter is one of all/pending/
// approved/rejected; search matches case-insensitive substrings of full
// name, national ID, phone, and email.
func (s *Service) List(ctx context.Context, filter, search string) ([]model.Application, error) {
	if filter != "" && filter != "all" && !model.IsValidStatus(filter) {
		return nil, fmt.Errorf("unknown status filter %q", filter)
	}
	return s.queries.ListApplications(ctx, store.ListApplicationsParams{
		Status: filter,
		Search: search,
	})
}

// Counts returns per-status application totals for the dashboard.
func (s *Service) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 3)
	for _, status := range []string{model.StatusPending, model.StatusApproved, model.StatusRejected} {
		n, err := s.queries.CountApplicationsByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("counting %s applications: %w", status, err)
		}
		counts[status] = n
	}
	return counts, nil
}

// SetStatus records a review decision. All transitions between pending,
// approved, and rejected are allowed, re-reviews included; concurrent
// decisions resolve last-write-wins. The decision email goes out after the
// write and cannot roll it back.
func (s *Service) SetStatus(ctx context.Context, id int64, status string, reviewerID int64, notes string) (model.Application, error) {
	if !model.IsValidStatus(status) {
		return model.Application{}, fmt.Errorf("unknown status %q", status)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return model.Application{}, err
	}

	// Notes render in the admin UI and in decision emails; stored sanitized.
	app, err := s.queries.SetApplicationStatus(ctx, store.SetApplicationStatusParams{
		ID:         id,
		Status:     status,
		Notes:      s.policy.Sanitize(notes),
		ReviewedBy: reviewerID,
		ReviewedAt: time.Now().UTC(),
	})
	if err != nil {
		return model.Application{}, fmt.Errorf("updating application %d: %w", id, err)
	}

	s.recordEvent(ctx, model.EventLevelInfo, "application "+status, app.ID,
		sql.NullInt64{Int64: reviewerID, Valid: true})
	s.notifyDecision(ctx, app)

	return app, nil
}

func (s *Service) notifyConfirmation(ctx context.Context, app model.Application) {
	if s.notifier == nil || app.Email == "" {
		return
	}
	if err := s.notifier.SendConfirmation(ctx, app.Email, app.FullName); err != nil {
		slog.Warn("confirmation email failed", "application", app.ID, "error", err)
	}
}

func (s *Service) notifyDecision(ctx context.Context, app model.Application) {
	if s.notifier == nil || app.Email == "" {
		return
	}
	if err := s.notifier.SendDecision(ctx, app.Email, app.FullName, app.Status, app.Notes); err != nil {
		slog.Warn("decision email failed", "application", app.ID, "status", app.Status, "error", err)
	}
}

func (s *Service) recordEvent(ctx context.Context, level, message string, appID int64, accountID sql.NullInt64) {
	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  model.EventCategoryReview,
		Message:   message,
		AccountID: accountID,
		Metadata:  fmt.Sprintf(`{"application_id":%d}`, appID),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to record review event", "application", appID, "error", err)
	}
}

func validate(sub Submission) error {
	fields := make(map[string]string)

	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			fields[name] = "required"
		}
	}
	require("full_name", sub.FullName)
	require("national_id", sub.NationalID)
	require("date_of_birth", sub.DateOfBirth)
	require("governorate", sub.Governorate)
	require("phone", sub.Phone)
	require("join_reason", sub.JoinReason)

	if email := strings.TrimSpace(sub.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			fields["email"] = "invalid email address"
		}
	}
	if len(sub.Attachments) > model.MaxAttachments {
		fields["attachments"] = fmt.Sprintf("at most %d attachments allowed", model.MaxAttachments)
	}
	if sub.PreviousParty && strings.TrimSpace(sub.PreviousPartyName) == "" {
		fields["previous_party_name"] = "required when previous party membership is declared"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
