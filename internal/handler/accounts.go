// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aljanabi/partycms/internal/auth"
	"github.com/aljanabi/partycms/internal/model"
	"github.com/aljanabi/partycms/internal/store"
)

// ListAccounts returns all staff accounts. Admin only; password hashes never
// serialize.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.queries.ListAccounts(r.Context())
	if err != nil {
		h.logger.Error("listing accounts failed", "error", err)
		WriteInternalError(w, "Failed to load accounts")
		return
	}
	WriteSuccess(w, accounts, &Meta{Total: len(accounts)})
}

// createAccountRequest carries a new staff account.
type createAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// CreateAccount creates a staff account with one of the known roles.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	fields := make(map[string]string)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		fields["email"] = "required"
	}
	if len(req.Password) < 12 {
		fields["password"] = "must be at least 12 characters"
	}
	if !model.IsValidRole(req.Role) {
		fields["role"] = "unknown role"
	}
	if len(fields) > 0 {
		WriteValidationError(w, fields)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hashing password failed", "error", err)
		WriteInternalError(w, "Failed to create account")
		return
	}

	now := time.Now().UTC()
	account, err := h.queries.CreateAccount(r.Context(), store.CreateAccountParams{
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The unique index on email is the usual cause.
		WriteBadRequest(w, "Account could not be created", nil)
		return
	}

	h.logger.Info("account created", "account_id", account.ID, "role", account.Role)
	WriteCreated(w, account)
}

// ListEvents returns recent operational events for the dashboard.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListRecentEvents(r.Context(), 100)
	if err != nil {
		h.logger.Error("listing events failed", "error", err)
		WriteInternalError(w, "Failed to load events")
		return
	}
	WriteSuccess(w, events, &Meta{Total: len(events)})
}
