// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package images owns the replace-and-garbage-collect lifecycle for hero,
// section and leader images, and the resolution of stored image references.
package images

import "strings"

// RefKind discriminates the stored representations of an image value.
type RefKind int

// Stored image representations. Legacy page keys are a migration artifact:
// early leader rows stored the page ID whose hero-image slot held the photo
// instead of a direct URL. Already-stored rows keep working, so the dual
// representation must be preserved.
const (
	// RefDirect is a plain URL (managed or external).
	RefDirect RefKind = iota
	// RefInline is a data: URL embedded in the record itself.
	RefInline
	// RefLegacyPageKey is a page ID pointing at that page's hero image.
	RefLegacyPageKey
)

// ImageRef is the tagged form of a stored image value.
type ImageRef struct {
	Kind  RefKind
	Value string
}

// ParseRef classifies a stored image value. Anything that already looks like
// a URL or inline data is final; everything else is treated as a legacy page
// key to be resolved against page_content.
func ParseRef(value string) ImageRef {
	switch {
	case strings.HasPrefix(value, "data:"):
		return ImageRef{Kind: RefInline, Value: value}
	case strings.HasPrefix(value, "http://"),
		strings.HasPrefix(value, "https://"),
		strings.HasPrefix(value, "/"):
		return ImageRef{Kind: RefDirect, Value: value}
	default:
		return ImageRef{Kind: RefLegacyPageKey, Value: value}
	}
}

// IsDeletable reports whether the stored value may ever be targeted for
// asset-store cleanup. Inline data and legacy keys never are; direct URLs
// are deletable only if the asset store recognizes them as managed, which
// the lifecycle manager checks separately.
func (r ImageRef) IsDeletable() bool {
	return r.Kind == RefDirect
}
