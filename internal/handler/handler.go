// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"

	"github.com/alexedwards/scs/v2"

	"github.com/aljanabi/partycms/internal/content"
	"github.com/aljanabi/partycms/internal/images"
	"github.com/aljanabi/partycms/internal/middleware"
	"github.com/aljanabi/partycms/internal/review"
	"github.com/aljanabi/partycms/internal/stats"
	"github.com/aljanabi/partycms/internal/store"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db              *sql.DB
	queries         *store.Queries
	content         *content.Service
	review          *review.Service
	stats           *stats.Ledger
	images          *images.Lifecycle
	sessions        *scs.SessionManager
	loginProtection *middleware.LoginProtection
	logger          *slog.Logger
}

// Deps bundles the handler's collaborators.
type Deps struct {
	DB              *sql.DB
	Content         *content.Service
	Review          *review.Service
	Stats           *stats.Ledger
	Images          *images.Lifecycle
	Sessions        *scs.SessionManager
	LoginProtection *middleware.LoginProtection
	Logger          *slog.Logger
}

// New creates the handler.
func New(deps Deps) *Handler {
	return &Handler{
		db:              deps.DB,
		queries:         store.New(deps.DB),
		content:         deps.Content,
		review:          deps.Review,
		stats:           deps.Stats,
		images:          deps.Images,
		sessions:        deps.Sessions,
		loginProtection: deps.LoginProtection,
		logger:          deps.Logger,
	}
}
