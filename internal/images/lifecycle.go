// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aljanabi/partycms/internal/assets"
	"github.com/aljanabi/partycms/internal/imaging"
	"github.com/aljanabi/partycms/internal/store"
)

// Upload folders, one per image-bearing record type.
const (
	FolderHero        = "hero"
	FolderSections    = "sections"
	FolderLeaders     = "leaders"
	FolderAttachments = "attachments"
)

// MaxUploadSize limits uploaded image size.
const MaxUploadSize = 20 * 1024 * 1024 // 20MB

// Lifecycle replaces images in the asset store and garbage-collects the
// object they displace. It never writes the record store: callers persist
// the returned URL through the content service.
type Lifecycle struct {
	store   assets.Store
	queries *store.Queries
}

// NewLifecycle creates a lifecycle manager over the given asset store. The
// queries handle is used only to resolve legacy page-key references.
func NewLifecycle(assetStore assets.Store, queries *store.Queries) *Lifecycle {
	return &Lifecycle{
		store:   assetStore,
		queries: queries,
	}
}

// ReplaceImage uploads a new image and, only after the upload is confirmed,
// deletes the object currentURL points at. The ordering guarantees a record
// never transiently references a deleted asset: if the upload fails, the old
// image stays live and untouched.
//
// currentURL may be empty (no previous image). Inline data URLs and URLs not
// hosted in the managed store (bundled placeholders, external hosts) are
// passed over: they are never sent to asset cleanup. Deletion failures are
// logged and swallowed: a dangling blob costs storage, a premature delete
// breaks the live page.
func (l *Lifecycle) ReplaceImage(ctx context.Context, currentURL string, upload io.Reader, folder string) (string, error) {
	limited := io.LimitReader(upload, MaxUploadSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", fmt.Errorf("image exceeds maximum allowed size (%d bytes)", MaxUploadSize)
	}

	normalized, err := imaging.Normalize(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("processing image: %w", err)
	}

	objectPath := assets.ObjectPath(folder, "image"+normalized.Ext)
	newURL, err := l.store.Upload(ctx, objectPath, bytes.NewReader(normalized.Data))
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	l.deleteIfManaged(ctx, currentURL)

	return newURL, nil
}

// ReplaceDocument stores a non-image attachment (PDF and similar) without
// normalization, with the same upload-before-delete contract.
func (l *Lifecycle) ReplaceDocument(ctx context.Context, currentURL string, upload io.Reader, folder, filename string) (string, error) {
	objectPath := assets.ObjectPath(folder, filename)
	newURL, err := l.store.Upload(ctx, objectPath, upload)
	if err != nil {
		return "", fmt.Errorf("uploading document: %w", err)
	}

	l.deleteIfManaged(ctx, currentURL)

	return newURL, nil
}

// Resolve turns a stored image value into a displayable URL. Direct URLs and
// inline data pass through unchanged; legacy page keys are resolved against
// the referenced page's hero-image slot. An unresolvable legacy key yields
// an empty URL, not an error, and the page renders without the image.
func (l *Lifecycle) Resolve(ctx context.Context, value string) string {
	if value == "" {
		return ""
	}

	ref := ParseRef(value)
	switch ref.Kind {
	case RefDirect, RefInline:
		return ref.Value
	case RefLegacyPageKey:
		page, err := l.queries.GetPage(ctx, ref.Value)
		if err != nil {
			slog.Warn("unresolvable legacy image key", "key", ref.Value, "error", err)
			return ""
		}
		if !page.HeroImage.Valid {
			return ""
		}
		return page.HeroImage.String
	default:
		return ""
	}
}

// deleteIfManaged removes the object behind url when it is a managed,
// deletable asset. Failures are logged and swallowed.
func (l *Lifecycle) deleteIfManaged(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if !ParseRef(url).IsDeletable() {
		return
	}
	objectPath, ok := l.store.PathFromURL(url)
	if !ok {
		return
	}
	if err := l.store.Remove(ctx, objectPath); err != nil {
		slog.Warn("failed to delete replaced image", "path", objectPath, "error", err)
	}
}

// ManagedFolders returns the upload folders the orphan sweep scans.
func ManagedFolders() []string {
	return []string{FolderHero, FolderSections, FolderLeaders, FolderAttachments}
}

// FolderOf returns the managed folder an object path belongs to, or "".
func FolderOf(objectPath string) string {
	dir := path.Dir(objectPath)
	for _, f := range ManagedFolders() {
		if dir == f || strings.HasPrefix(dir, f+"/") {
			return f
		}
	}
	return ""
}
