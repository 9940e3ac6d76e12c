// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aljanabi/partycms/internal/auth"
	"github.com/aljanabi/partycms/internal/authz"
	"github.com/aljanabi/partycms/internal/middleware"
	"github.com/aljanabi/partycms/internal/model"
)

// loginRequest is the login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionInfo is what authenticated endpoints return about the caller.
type sessionInfo struct {
	Account model.Account  `json:"account"`
	Screens []authz.Screen `json:"screens"`
}

// Login authenticates a staff account and starts a session. Invalid email and
// invalid password produce the same response so the endpoint cannot be used
// to enumerate accounts.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		WriteBadRequest(w, "Email and password are required", nil)
		return
	}

	if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
		h.logger.Warn("login attempt on locked account", "email", email, "remaining", remaining)
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			"Too many failed attempts, try again later", nil)
		return
	}

	account, err := h.queries.GetAccountByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			h.logger.Error("account lookup failed", "error", err)
		}
		h.failLogin(w, email)
		return
	}

	ok, err := auth.CheckPassword(req.Password, account.PasswordHash)
	if err != nil {
		h.logger.Error("password check failed", "account_id", account.ID, "error", err)
		WriteInternalError(w, "Sign in failed")
		return
	}
	if !ok {
		h.failLogin(w, email)
		return
	}

	h.loginProtection.RecordSuccessfulLogin(email)

	// New session token on privilege change, standard fixation defence.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		h.logger.Error("session renew failed", "error", err)
		WriteInternalError(w, "Sign in failed")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyAccountID, account.ID)

	if err := h.queries.UpdateAccountLastLogin(r.Context(), account.ID, time.Now().UTC()); err != nil {
		h.logger.Warn("failed to stamp last login", "account_id", account.ID, "error", err)
	}

	h.logger.Info("login", "account_id", account.ID, "role", account.Role)
	WriteSuccess(w, sessionInfo{
		Account: account,
		Screens: authz.VisibleScreens(account.Role),
	}, nil)
}

func (h *Handler) failLogin(w http.ResponseWriter, email string) {
	if locked, duration := h.loginProtection.RecordFailedAttempt(email); locked {
		h.logger.Warn("account locked", "email", email, "duration", duration)
	}
	WriteUnauthorized(w, "Invalid email or password")
}

// Logout destroys the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r)
	if err := h.sessions.Destroy(r.Context()); err != nil {
		h.logger.Error("session destroy failed", "error", err)
		WriteInternalError(w, "Sign out failed")
		return
	}
	if accountID != 0 {
		h.logger.Info("logout", "account_id", accountID)
	}
	WriteSuccess(w, map[string]string{"status": "signed_out"}, nil)
}

// Me returns the signed-in account and its visible screens.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r)
	if account == nil {
		WriteUnauthorized(w, "Sign in required")
		return
	}
	WriteSuccess(w, sessionInfo{
		Account: *account,
		Screens: authz.VisibleScreens(account.Role),
	}, nil)
}
