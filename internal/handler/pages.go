// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aljanabi/partycms/internal/authz"
	"github.com/aljanabi/partycms/internal/content"
	"github.com/aljanabi/partycms/internal/images"
	"github.com/aljanabi/partycms/internal/middleware"
	"github.com/aljanabi/partycms/internal/model"
	"github.com/aljanabi/partycms/internal/util"
)

const maxUploadMemory = 32 << 20 // 32MB multipart buffer

// ListPages returns all pages in navigational order.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.content.ListPages(r.Context())
	if err != nil {
		h.logger.Error("listing pages failed", "error", err)
		WriteInternalError(w, "Failed to load pages")
		return
	}
	WriteSuccess(w, pages, &Meta{Total: len(pages)})
}

// GetPage returns one page with rendered sections for the public site.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if !util.IsValidSlug(pageID) {
		WriteNotFound(w, "Page not found")
		return
	}

	view, err := h.content.PublicPage(r.Context(), pageID)
	if errors.Is(err, content.ErrPageNotFound) {
		WriteNotFound(w, "Page not found")
		return
	}
	if err != nil {
		h.logger.Error("loading page failed", "page", pageID, "error", err)
		WriteInternalError(w, "Failed to load page")
		return
	}
	h.resolveLeaderImages(r.Context(), view.Leaders)
	WriteSuccess(w, view, nil)
}

// AdminGetPage returns the raw page for editing.
func (h *Handler) AdminGetPage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if !h.requirePageAccess(w, r, pageID) {
		return
	}

	view, err := h.content.GetPage(r.Context(), pageID)
	if errors.Is(err, content.ErrPageNotFound) {
		WriteNotFound(w, "Page not found")
		return
	}
	if err != nil {
		h.logger.Error("loading page failed", "page", pageID, "error", err)
		WriteInternalError(w, "Failed to load page")
		return
	}
	WriteSuccess(w, view, nil)
}

// updatePageRequest carries editable page metadata. Nil pointers leave the
// current value untouched; empty strings clear it.
type updatePageRequest struct {
	Title     *string `json:"title"`
	HeroImage *string `json:"hero_image"`
	HeroVideo *string `json:"hero_video"`
}

// UpdatePage updates page metadata.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if !h.requirePageAccess(w, r, pageID) {
		return
	}

	var req updatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	existing, err := h.content.GetPage(r.Context(), pageID)
	if errors.Is(err, content.ErrPageNotFound) {
		WriteNotFound(w, "Page not found")
		return
	}
	if err != nil {
		h.logger.Error("loading page failed", "page", pageID, "error", err)
		WriteInternalError(w, "Failed to load page")
		return
	}

	params := content.UpdatePageParams{
		PageID: pageID,
		Title:  existing.Page.Title,
	}
	if existing.Page.HeroImage.Valid {
		v := existing.Page.HeroImage.String
		params.HeroImage = &v
	}
	if existing.Page.HeroVideo.Valid {
		v := existing.Page.HeroVideo.String
		params.HeroVideo = &v
	}
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.HeroImage != nil {
		params.HeroImage = req.HeroImage
	}
	if req.HeroVideo != nil {
		params.HeroVideo = req.HeroVideo
	}

	page, err := h.content.UpdatePage(r.Context(), params)
	if err != nil {
		h.logger.Error("updating page failed", "page", pageID, "error", err)
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteSuccess(w, page, nil)
}

// ReplaceHeroImage uploads a new hero image for the page and persists its
// URL. The previous managed image is deleted only after the upload succeeds.
func (h *Handler) ReplaceHeroImage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if !h.requirePageAccess(w, r, pageID) {
		return
	}

	existing, err := h.content.GetPage(r.Context(), pageID)
	if errors.Is(err, content.ErrPageNotFound) {
		WriteNotFound(w, "Page not found")
		return
	}
	if err != nil {
		h.logger.Error("loading page failed", "page", pageID, "error", err)
		WriteInternalError(w, "Failed to load page")
		return
	}

	var currentURL string
	if existing.Page.HeroImage.Valid {
		currentURL = existing.Page.HeroImage.String
	}
	newURL, ok := h.uploadImage(w, r, currentURL, images.FolderHero)
	if !ok {
		return
	}

	params := content.UpdatePageParams{
		PageID:    pageID,
		Title:     existing.Page.Title,
		HeroImage: &newURL,
	}
	if existing.Page.HeroVideo.Valid {
		v := existing.Page.HeroVideo.String
		params.HeroVideo = &v
	}
	page, err := h.content.UpdatePage(r.Context(), params)
	if err != nil {
		h.logger.Error("persisting hero image failed", "page", pageID, "error", err)
		WriteInternalError(w, "Failed to save image")
		return
	}
	WriteSuccess(w, page, nil)
}

// sectionRequest carries section write fields.
type sectionRequest struct {
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Image       *string `json:"image"`
	OrderNumber int64   `json:"order_number"`
}

// AddSection appends a section to the page.
func (h *Handler) AddSection(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if !h.requirePageAccess(w, r, pageID) {
		return
	}

	var req sectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	section, err := h.content.AddSection(r.Context(), content.SectionParams{
		PageID:      pageID,
		Title:       req.Title,
		Content:     req.Content,
		Image:       req.Image,
		OrderNumber: req.OrderNumber,
	})
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteCreated(w, section)
}

// UpsertSectionByTitle writes the section keyed by (page, title). Saving the
// same title twice updates the existing row instead of duplicating it.
func (h *Handler) UpsertSectionByTitle(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if !h.requirePageAccess(w, r, pageID) {
		return
	}

	var req sectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	section, err := h.content.UpsertSectionByTitle(r.Context(), content.SectionParams{
		PageID:      pageID,
		Title:       req.Title,
		Content:     req.Content,
		Image:       req.Image,
		OrderNumber: req.OrderNumber,
	})
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteSuccess(w, section, nil)
}

// UpdateSection updates a section in place.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	section, ok := h.loadSection(w, r)
	if !ok {
		return
	}

	var req sectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	updated, err := h.content.UpdateSection(r.Context(), section.ID, content.SectionParams{
		Title:       req.Title,
		Content:     req.Content,
		Image:       req.Image,
		OrderNumber: req.OrderNumber,
	})
	if errors.Is(err, content.ErrNotFound) {
		WriteNotFound(w, "Section not found")
		return
	}
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}
	WriteSuccess(w, updated, nil)
}

// DeleteSection permanently removes a section.
func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	section, ok := h.loadSection(w, r)
	if !ok {
		return
	}
	if err := h.content.DeleteSection(r.Context(), section.ID); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			WriteNotFound(w, "Section not found")
			return
		}
		h.logger.Error("deleting section failed", "section", section.ID, "error", err)
		WriteInternalError(w, "Failed to delete section")
		return
	}
	WriteSuccess(w, map[string]string{"status": "deleted"}, nil)
}

// ReplaceSectionImage uploads a new image for the section.
func (h *Handler) ReplaceSectionImage(w http.ResponseWriter, r *http.Request) {
	section, ok := h.loadSection(w, r)
	if !ok {
		return
	}

	var currentURL string
	if section.Image.Valid {
		currentURL = section.Image.String
	}
	newURL, ok := h.uploadImage(w, r, currentURL, images.FolderSections)
	if !ok {
		return
	}

	updated, err := h.content.UpdateSection(r.Context(), section.ID, content.SectionParams{
		Title:       section.Title,
		Content:     section.Content,
		Image:       &newURL,
		OrderNumber: section.OrderNumber,
	})
	if err != nil {
		h.logger.Error("persisting section image failed", "section", section.ID, "error", err)
		WriteInternalError(w, "Failed to save image")
		return
	}
	WriteSuccess(w, updated, nil)
}

// loadSection resolves the {sectionID} parameter, checks the caller may edit
// the owning page, and returns the section.
func (h *Handler) loadSection(w http.ResponseWriter, r *http.Request) (model.Section, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "sectionID"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid section ID", nil)
		return model.Section{}, false
	}
	section, err := h.queries.GetSection(r.Context(), id)
	if err != nil {
		WriteNotFound(w, "Section not found")
		return model.Section{}, false
	}
	if !h.requirePageAccess(w, r, section.PageID) {
		return model.Section{}, false
	}
	return section, true
}

// requirePageAccess enforces the page-to-screen mapping for the signed-in
// account. Route-level gates only guarantee a session; which pages a section
// editor may touch depends on the page itself.
func (h *Handler) requirePageAccess(w http.ResponseWriter, r *http.Request, pageID string) bool {
	account := middleware.GetAccount(r)
	if account == nil {
		WriteUnauthorized(w, "Sign in required")
		return false
	}
	if !authz.Authorize(account.Role, authz.PageScreen(pageID)) {
		slog.Warn("access denied",
			"status", http.StatusForbidden,
			"method", r.Method,
			"path", r.URL.Path,
			"account_id", account.ID,
			"page", pageID,
		)
		WriteError(w, http.StatusForbidden, "forbidden", "Insufficient privilege", nil)
		return false
	}
	return true
}

// uploadImage reads the multipart "image" field and runs it through the
// image lifecycle. On failure it writes the error response and returns
// ok=false; the previous image is untouched.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request, currentURL, folder string) (string, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return "", false
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		WriteBadRequest(w, "Missing image file", nil)
		return "", false
	}
	defer func() { _ = file.Close() }()

	newURL, err := h.images.ReplaceImage(r.Context(), currentURL, file, folder)
	if err != nil {
		h.logger.Warn("image upload rejected", "folder", folder, "error", err)
		WriteBadRequest(w, "Image could not be processed", nil)
		return "", false
	}
	return newURL, true
}
