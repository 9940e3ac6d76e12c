// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package authz

import (
	"reflect"
	"testing"

	"github.com/aljanabi/partycms/internal/model"
)

func TestVisibleScreens(t *testing.T) {
	tests := []struct {
		role     string
		expected []Screen
	}{
		{
			role: model.RoleAdmin,
			expected: []Screen{
				ScreenDashboard, ScreenPages, ScreenLeadership, ScreenNews,
				ScreenStatements, ScreenActivities, ScreenApplications,
				ScreenStatistics, ScreenAccounts,
			},
		},
		{
			role:     model.RoleNewsStatements,
			expected: []Screen{ScreenDashboard, ScreenNews, ScreenStatements},
		},
		{
			role:     model.RoleActivities,
			expected: []Screen{ScreenDashboard, ScreenActivities},
		},
		{
			role:     "unknown",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got := VisibleScreens(tt.role)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("VisibleScreens(%q) = %v, want %v", tt.role, got, tt.expected)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		screen  Screen
		allowed bool
	}{
		{"admin on accounts", model.RoleAdmin, ScreenAccounts, true},
		{"admin on news", model.RoleAdmin, ScreenNews, true},
		{"news role on news", model.RoleNewsStatements, ScreenNews, true},
		{"news role on statements", model.RoleNewsStatements, ScreenStatements, true},
		{"news role on pages", model.RoleNewsStatements, ScreenPages, false},
		{"news role on applications", model.RoleNewsStatements, ScreenApplications, false},
		{"news role on activities", model.RoleNewsStatements, ScreenActivities, false},
		{"activities role on activities", model.RoleActivities, ScreenActivities, true},
		{"activities role on news", model.RoleActivities, ScreenNews, false},
		{"activities role on accounts", model.RoleActivities, ScreenAccounts, false},
		{"empty role", "", ScreenDashboard, false},
		{"unknown screen", model.RoleAdmin, Screen("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.role, tt.screen); got != tt.allowed {
				t.Errorf("Authorize(%q, %q) = %v, want %v", tt.role, tt.screen, got, tt.allowed)
			}
		})
	}
}

func TestPageScreen(t *testing.T) {
	tests := []struct {
		pageID string
		screen Screen
	}{
		{model.PageNews, ScreenNews},
		{model.PageStatements, ScreenStatements},
		{model.PageActivities, ScreenActivities},
		{model.PageLeadership, ScreenLeadership},
		{model.PageHome, ScreenPages},
		{model.PageVision, ScreenPages},
		{model.PageBudgets, ScreenPages},
		{"anything-else", ScreenPages},
	}

	for _, tt := range tests {
		t.Run(tt.pageID, func(t *testing.T) {
			if got := PageScreen(tt.pageID); got != tt.screen {
				t.Errorf("PageScreen(%q) = %q, want %q", tt.pageID, got, tt.screen)
			}
		})
	}
}

// The content-editing role split is the whole point of the table: the
// news_statements and activities roles must never see each other's screens,
// and only admin reaches the membership pipeline.
func TestNonAdminRolesAreDisjointOutsideDashboard(t *testing.T) {
	news := VisibleScreens(model.RoleNewsStatements)
	activities := VisibleScreens(model.RoleActivities)

	seen := make(map[Screen]bool)
	for _, s := range news {
		if s != ScreenDashboard {
			seen[s] = true
		}
	}
	for _, s := range activities {
		if s == ScreenDashboard {
			continue
		}
		if seen[s] {
			t.Errorf("screen %q is visible to both non-admin roles", s)
		}
	}
}
