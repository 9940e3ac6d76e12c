// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package assets provides durable blob storage for uploaded images and
// documents, addressed by path and exposing stable public URLs.
package assets

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aljanabi/partycms/internal/util"
)

// Store is the asset storage port. Implementations must return stable public
// URLs: once Upload succeeds, PublicURL of the same path serves the blob
// until Remove is called.
type Store interface {
	// Upload writes the blob under path and returns its public URL.
	Upload(ctx context.Context, path string, r io.Reader) (string, error)
	// PublicURL returns the public URL for a stored path.
	PublicURL(path string) string
	// PathFromURL maps a public URL back to a storage path. Returns false
	// for URLs not managed by this store (bundled placeholders, external
	// hosts, data URLs).
	PathFromURL(url string) (string, bool)
	// Remove deletes the blob at path. Removing a missing path is not an error.
	Remove(ctx context.Context, path string) error
	// List returns all stored paths under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// ModTime returns the time the blob at path was stored.
	ModTime(ctx context.Context, path string) (time.Time, error)
}

// ObjectPath builds a collision-resistant storage path inside folder for a
// file with the given original name. The timestamp prefix keeps listings
// roughly chronological, the UUID removes collisions, and the sanitized
// original name keeps stored URLs recognizable to editors.
func ObjectPath(folder, filename string) string {
	filename = SanitizeFilename(filename)
	ext := path.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	name := fmt.Sprintf("%d-%s-%s%s", time.Now().Unix(), uuid.New().String(), stem, ext)
	return path.Join(folder, name)
}

// SanitizeFilename rewrites an uploaded filename into a storage- and
// URL-safe one: the stem is slugified (Arabic and other non-Latin names
// transliterate to ASCII) and the extension lowercased.
func SanitizeFilename(filename string) string {
	filename = path.Base(filename)
	ext := util.Slugify(strings.TrimPrefix(path.Ext(filename), "."))
	stem := util.Slugify(strings.TrimSuffix(filename, path.Ext(filename)))
	if stem == "" {
		stem = "file"
	}
	if ext == "" {
		ext = "bin"
	}
	return stem + "." + ext
}
