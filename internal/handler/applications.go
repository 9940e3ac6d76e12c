// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aljanabi/partycms/internal/images"
	"github.com/aljanabi/partycms/internal/middleware"
	"github.com/aljanabi/partycms/internal/model"
	"github.com/aljanabi/partycms/internal/review"
)

// maxAttachmentSize limits each application attachment.
const maxAttachmentSize = 10 << 20 // 10MB

// SubmitApplication accepts a public membership application. JSON bodies
// carry fields only; multipart bodies additionally carry up to five
// attachment files under the "attachments" field.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var sub review.Submission

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if !h.parseMultipartSubmission(w, r, &sub) {
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			WriteBadRequest(w, "Invalid request body", nil)
			return
		}
	}

	app, err := h.review.Submit(r.Context(), sub)
	var vErr *review.ValidationError
	if errors.As(err, &vErr) {
		WriteValidationError(w, vErr.Fields)
		return
	}
	if err != nil {
		h.logger.Error("application submission failed", "error", err)
		WriteInternalError(w, "Failed to submit application")
		return
	}
	WriteCreated(w, app)
}

// parseMultipartSubmission fills sub from a multipart form: the "application"
// field holds the JSON payload, "attachments" the files.
func (h *Handler) parseMultipartSubmission(w http.ResponseWriter, r *http.Request, sub *review.Submission) bool {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return false
	}
	payload := r.FormValue("application")
	if payload == "" {
		WriteBadRequest(w, "Missing application field", nil)
		return false
	}
	if err := json.Unmarshal([]byte(payload), sub); err != nil {
		WriteBadRequest(w, "Invalid application payload", nil)
		return false
	}

	files := r.MultipartForm.File["attachments"]
	if len(files) > model.MaxAttachments {
		WriteValidationError(w, map[string]string{
			"attachments": "at most " + strconv.Itoa(model.MaxAttachments) + " attachments allowed",
		})
		return false
	}
	for _, hdr := range files {
		url, ok := h.storeAttachment(w, r, hdr)
		if !ok {
			return false
		}
		sub.Attachments = append(sub.Attachments, url)
	}
	return true
}

func (h *Handler) storeAttachment(w http.ResponseWriter, r *http.Request, hdr *multipart.FileHeader) (string, bool) {
	if hdr.Size > maxAttachmentSize {
		WriteValidationError(w, map[string]string{"attachments": "attachment too large"})
		return "", false
	}
	file, err := hdr.Open()
	if err != nil {
		WriteBadRequest(w, "Unreadable attachment", nil)
		return "", false
	}
	defer func() { _ = file.Close() }()

	url, err := h.images.ReplaceDocument(r.Context(), "",
		io.LimitReader(file, maxAttachmentSize), images.FolderAttachments, hdr.Filename)
	if err != nil {
		h.logger.Error("storing attachment failed", "error", err)
		WriteInternalError(w, "Failed to store attachment")
		return "", false
	}
	return url, true
}

// ListApplications returns applications for review, filtered by status and
// free-text search.
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	apps, err := h.review.List(r.Context(), filter, search)
	if err != nil {
		if strings.Contains(err.Error(), "unknown status") {
			WriteBadRequest(w, err.Error(), nil)
			return
		}
		h.logger.Error("listing applications failed", "error", err)
		WriteInternalError(w, "Failed to load applications")
		return
	}
	WriteSuccess(w, apps, &Meta{Total: len(apps)})
}

// GetApplication returns one application.
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := applicationID(w, r)
	if !ok {
		return
	}
	app, err := h.review.Get(r.Context(), id)
	if errors.Is(err, review.ErrNotFound) {
		WriteNotFound(w, "Application not found")
		return
	}
	if err != nil {
		h.logger.Error("loading application failed", "application", id, "error", err)
		WriteInternalError(w, "Failed to load application")
		return
	}
	WriteSuccess(w, app, nil)
}

// statusRequest carries a review decision.
type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// SetApplicationStatus records a review decision and triggers the applicant
// notification.
func (h *Handler) SetApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := applicationID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	reviewerID := middleware.GetAccountID(r)
	app, err := h.review.SetStatus(r.Context(), id, req.Status, reviewerID, req.Notes)
	if errors.Is(err, review.ErrNotFound) {
		WriteNotFound(w, "Application not found")
		return
	}
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteSuccess(w, app, nil)
}

// ApplicationCounts returns per-status totals for the dashboard.
func (h *Handler) ApplicationCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.review.Counts(r.Context())
	if err != nil {
		h.logger.Error("counting applications failed", "error", err)
		WriteInternalError(w, "Failed to load counts")
		return
	}
	WriteSuccess(w, counts, nil)
}

func applicationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "applicationID"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid application ID", nil)
		return 0, false
	}
	return id, true
}
