// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package authz maps editor roles to admin screens. The mapping is a single
// static table checked through one Authorize function; role lists never live
// at call sites.
package authz

import "github.com/aljanabi/partycms/internal/model"

// Screen identifies an admin surface.
type Screen string

// Admin screens.
const (
	ScreenDashboard    Screen = "dashboard"
	ScreenPages        Screen = "pages"
	ScreenLeadership   Screen = "leadership"
	ScreenNews         Screen = "news"
	ScreenStatements   Screen = "statements"
	ScreenActivities   Screen = "activities"
	ScreenApplications Screen = "applications"
	ScreenStatistics   Screen = "statistics"
	ScreenAccounts     Screen = "accounts"
)

// screenOrder is the display order for VisibleScreens.
var screenOrder = []Screen{
	ScreenDashboard,
	ScreenPages,
	ScreenLeadership,
	ScreenNews,
	ScreenStatements,
	ScreenActivities,
	ScreenApplications,
	ScreenStatistics,
	ScreenAccounts,
}

// screenRoles declares which roles may use each screen. Admin is listed
// everywhere: the mapping is inclusion, not a linear ranking, and a non-admin
// role grants exactly its listed screens.
var screenRoles = map[Screen][]string{
	ScreenDashboard:    {model.RoleAdmin, model.RoleNewsStatements, model.RoleActivities},
	ScreenPages:        {model.RoleAdmin},
	ScreenLeadership:   {model.RoleAdmin},
	ScreenNews:         {model.RoleAdmin, model.RoleNewsStatements},
	ScreenStatements:   {model.RoleAdmin, model.RoleNewsStatements},
	ScreenActivities:   {model.RoleAdmin, model.RoleActivities},
	ScreenApplications: {model.RoleAdmin},
	ScreenStatistics:   {model.RoleAdmin},
	ScreenAccounts:     {model.RoleAdmin},
}

// Authorize reports whether role may use screen. Unknown roles and unknown
// screens are simply not authorized; there is no error case.
func Authorize(role string, screen Screen) bool {
	for _, r := range screenRoles[screen] {
		if r == role {
			return true
		}
	}
	return false
}

// VisibleScreens returns the screens role may use, in display order. The
// admin role sees the union of all screens.
func VisibleScreens(role string) []Screen {
	var screens []Screen
	for _, s := range screenOrder {
		if Authorize(role, s) {
			screens = append(screens, s)
		}
	}
	return screens
}

// PageScreen maps a page ID to the admin screen that edits it. News,
// statements and activities have dedicated role-scoped screens; every other
// page is edited through the admin-only pages screen.
func PageScreen(pageID string) Screen {
	switch pageID {
	case model.PageNews:
		return ScreenNews
	case model.PageStatements:
		return ScreenStatements
	case model.PageActivities:
		return ScreenActivities
	case model.PageLeadership:
		return ScreenLeadership
	default:
		return ScreenPages
	}
}
