// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package assets

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"document.pdf", "document.pdf"},
		{"My Résumé.PDF", "my-resume.pdf"},
		{"../../etc/passwd", "passwd.bin"},
		{"no-extension", "no-extension.bin"},
		{"weird <name>?.png", "weird-name.png"},
		{"", "file.bin"},
		{"....", "file.bin"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameTransliteratesArabic(t *testing.T) {
	got := SanitizeFilename("السيرة الذاتية.pdf")
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("extension lost: %q", got)
	}
	stem := strings.TrimSuffix(got, ".pdf")
	if stem == "" || stem == "file" {
		t.Errorf("stem not transliterated: %q", got)
	}
	for _, r := range stem {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			t.Errorf("stem %q contains non-slug rune %q", stem, r)
		}
	}
}

func TestObjectPathKeepsFolderAndOriginalName(t *testing.T) {
	p := ObjectPath("attachments", "National ID Scan.JPG")
	if !strings.HasPrefix(p, "attachments/") {
		t.Errorf("path %q not under attachments/", p)
	}
	if !strings.HasSuffix(p, "-national-id-scan.jpg") {
		t.Errorf("path %q does not carry the sanitized original name", p)
	}
}

func TestObjectPathsAreUnique(t *testing.T) {
	a := ObjectPath("hero", "image.png")
	b := ObjectPath("hero", "image.png")
	if a == b {
		t.Errorf("two uploads of the same name collided: %q", a)
	}
}
