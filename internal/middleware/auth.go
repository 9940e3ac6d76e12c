// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/aljanabi/partycms/internal/authz"
	"github.com/aljanabi/partycms/internal/model"
	"github.com/aljanabi/partycms/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request-scoped data.
const (
	ContextKeyAccount     ContextKey = "account"
	ContextKeyRequestPath ContextKey = "request_path"
)

// SessionKeyAccountID is the session key holding the signed-in account's ID.
const SessionKeyAccountID = "account_id"

// gateError is the generic insufficient-privilege body. It deliberately says
// nothing about which roles exist or which role the screen wants.
type gateError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		SignIn  string `json:"sign_in,omitempty"`
	} `json:"error"`
}

func writeGateError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	var body gateError
	body.Error.Code = code
	body.Error.Message = message
	body.Error.SignIn = "/api/auth/login"
	_ = json.NewEncoder(w).Encode(body)
}

// LoadAccount creates middleware that loads the signed-in account into the
// request context. Requests without a session pass through without account
// context; the screen gates decide what that means.
func LoadAccount(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID := sm.GetInt64(r.Context(), SessionKeyAccountID)
			if accountID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			account, err := queries.GetAccountByID(r.Context(), accountID)
			if err != nil {
				// Account deleted or store error - drop the stale session.
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAccount, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScreen creates middleware that gates a route on the static
// screen-to-roles table. It must run before any data fetch: unauthenticated
// requests get 401, under-privileged ones get the generic 403 body. Neither
// response enumerates roles.
func RequireScreen(screen authz.Screen) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := GetAccount(r)
			if account == nil {
				writeGateError(w, http.StatusUnauthorized, "unauthenticated", "Sign in required")
				return
			}

			if !authz.Authorize(account.Role, screen) {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"account_id", account.ID,
					"screen", string(screen),
					"remote_addr", r.RemoteAddr,
				)
				writeGateError(w, http.StatusForbidden, "forbidden", "Insufficient privilege")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetAccount retrieves the signed-in account from the request context.
// Returns nil if no account is in context.
func GetAccount(r *http.Request) *model.Account {
	account, ok := r.Context().Value(ContextKeyAccount).(model.Account)
	if !ok {
		return nil
	}
	return &account
}

// GetAccountID returns the signed-in account's ID, or 0 if not found.
// Safe to use in logging where a zero value is acceptable.
func GetAccountID(r *http.Request) int64 {
	if account := GetAccount(r); account != nil {
		return account.ID
	}
	return 0
}

// RequestPath creates middleware that stores the request path in the context.
// The logging tee uses it to include the URL in event rows.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
