// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aljanabi/partycms/internal/content"
	"github.com/aljanabi/partycms/internal/images"
	"github.com/aljanabi/partycms/internal/model"
)

// ListLeaders returns all leaders in display order, with image values
// resolved for direct rendering.
func (h *Handler) ListLeaders(w http.ResponseWriter, r *http.Request) {
	leaders, err := h.content.ListLeaders(r.Context())
	if err != nil {
		h.logger.Error("listing leaders failed", "error", err)
		WriteInternalError(w, "Failed to load leaders")
		return
	}
	h.resolveLeaderImages(r.Context(), leaders)
	WriteSuccess(w, leaders, &Meta{Total: len(leaders)})
}

// resolveLeaderImages rewrites stored leader image values (legacy page keys
// included) into displayable URLs. Unresolvable values clear the field so the
// frontend never receives a raw key.
func (h *Handler) resolveLeaderImages(ctx context.Context, leaders []model.Leader) {
	for i := range leaders {
		if !leaders[i].Image.Valid {
			continue
		}
		resolved := h.images.Resolve(ctx, leaders[i].Image.String)
		leaders[i].Image.String = resolved
		leaders[i].Image.Valid = resolved != ""
	}
}

// leaderRequest carries leader write fields.
type leaderRequest struct {
	Name        string  `json:"name"`
	Position    string  `json:"position"`
	IsMain      bool    `json:"is_main"`
	Image       *string `json:"image"`
	OrderNumber int64   `json:"order_number"`
	Bio         string  `json:"bio"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
}

func (req leaderRequest) params() content.LeaderParams {
	return content.LeaderParams{
		Name:        req.Name,
		Position:    req.Position,
		IsMain:      req.IsMain,
		Image:       req.Image,
		OrderNumber: req.OrderNumber,
		Bio:         req.Bio,
		Email:       req.Email,
		Phone:       req.Phone,
	}
}

// AddLeader creates a leader.
func (h *Handler) AddLeader(w http.ResponseWriter, r *http.Request) {
	var req leaderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	leader, err := h.content.AddLeader(r.Context(), req.params())
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteCreated(w, leader)
}

// UpdateLeader updates a leader in place.
func (h *Handler) UpdateLeader(w http.ResponseWriter, r *http.Request) {
	id, ok := leaderID(w, r)
	if !ok {
		return
	}
	var req leaderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	leader, err := h.content.UpdateLeader(r.Context(), id, req.params())
	if errors.Is(err, content.ErrNotFound) {
		WriteNotFound(w, "Leader not found")
		return
	}
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteSuccess(w, leader, nil)
}

// DeleteLeader permanently removes a leader.
func (h *Handler) DeleteLeader(w http.ResponseWriter, r *http.Request) {
	id, ok := leaderID(w, r)
	if !ok {
		return
	}
	if err := h.content.DeleteLeader(r.Context(), id); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			WriteNotFound(w, "Leader not found")
			return
		}
		h.logger.Error("deleting leader failed", "leader", id, "error", err)
		WriteInternalError(w, "Failed to delete leader")
		return
	}
	WriteSuccess(w, map[string]string{"status": "deleted"}, nil)
}

// ReplaceLeaderImage uploads a new portrait for the leader.
func (h *Handler) ReplaceLeaderImage(w http.ResponseWriter, r *http.Request) {
	id, ok := leaderID(w, r)
	if !ok {
		return
	}
	leader, err := h.content.GetLeader(r.Context(), id)
	if errors.Is(err, content.ErrNotFound) {
		WriteNotFound(w, "Leader not found")
		return
	}
	if err != nil {
		h.logger.Error("loading leader failed", "leader", id, "error", err)
		WriteInternalError(w, "Failed to load leader")
		return
	}

	var currentURL string
	if leader.Image.Valid {
		currentURL = leader.Image.String
	}
	newURL, ok := h.uploadImage(w, r, currentURL, images.FolderLeaders)
	if !ok {
		return
	}

	updated, err := h.content.UpdateLeader(r.Context(), id, content.LeaderParams{
		Name:        leader.Name,
		Position:    leader.Position,
		IsMain:      leader.IsMain,
		Image:       &newURL,
		OrderNumber: leader.OrderNumber,
		Bio:         leader.Bio,
		Email:       leader.Email,
		Phone:       leader.Phone,
	})
	if err != nil {
		h.logger.Error("persisting leader image failed", "leader", id, "error", err)
		WriteInternalError(w, "Failed to save image")
		return
	}
	WriteSuccess(w, updated, nil)
}

func leaderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "leaderID"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid leader ID", nil)
		return 0, false
	}
	return id, true
}
