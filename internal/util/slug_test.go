// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple title",
			input:    "Hello World",
			expected: "hello-world",
		},
		{
			name:     "with special characters",
			input:    "Hello, World!",
			expected: "hello-world",
		},
		{
			name:     "with numbers",
			input:    "Budget 2026",
			expected: "budget-2026",
		},
		{
			name:     "with accents",
			input:    "Café résumé",
			expected: "cafe-resume",
		},
		{
			name:     "with multiple spaces",
			input:    "Hello   World",
			expected: "hello-world",
		},
		{
			name:     "with hyphens",
			input:    "Hello - World",
			expected: "hello-world",
		},
		{
			name:     "with leading/trailing spaces",
			input:    "  Hello World  ",
			expected: "hello-world",
		},
		{
			name:     "all special characters",
			input:    "!@#$%^&*()",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "mixed case",
			input:    "HeLLo WoRLd",
			expected: "hello-world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// Arabic titles are the common case for this site; the exact transliteration
// is unidecode's business, but the result must always be a usable slug.
func TestSlugifyArabic(t *testing.T) {
	result := Slugify("بيان الحزب")
	if result == "" {
		t.Fatal("Slugify of Arabic text returned empty string")
	}
	if !IsValidSlug(result) {
		t.Errorf("Slugify of Arabic text produced invalid slug %q", result)
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"well-known page", "vision", true},
		{"with hyphen", "about-us", true},
		{"with numbers", "budget-2026", true},
		{"empty", "", false},
		{"uppercase", "Vision", false},
		{"with space", "about us", false},
		{"leading hyphen", "-vision", false},
		{"trailing hyphen", "vision-", false},
		{"path traversal", "../etc", false},
		{"with slash", "a/b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidSlug(tt.input); got != tt.valid {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}
