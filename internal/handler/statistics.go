// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aljanabi/partycms/internal/stats"
)

// GetStatistics returns the latest published member counts. An empty ledger
// yields zero counts, not an error.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	snap, err := h.stats.Latest(r.Context())
	if errors.Is(err, stats.ErrNoSnapshots) {
		WriteSuccess(w, snap, nil)
		return
	}
	if err != nil {
		h.logger.Error("loading statistics failed", "error", err)
		WriteInternalError(w, "Failed to load statistics")
		return
	}
	WriteSuccess(w, snap, nil)
}

// AppendStatistics records a new member-count snapshot. Every save appends a
// row; previous snapshots stay queryable in the table.
func (h *Handler) AppendStatistics(w http.ResponseWriter, r *http.Request) {
	var req stats.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	snap, err := h.stats.Append(r.Context(), req)
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteCreated(w, snap)
}
