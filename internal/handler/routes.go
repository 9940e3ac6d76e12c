// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aljanabi/partycms/internal/authz"
	"github.com/aljanabi/partycms/internal/middleware"
)

// Routes mounts the API. The caller applies the outer middleware stack
// (sessions, CSRF, security headers) before calling this.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		// Public surface: reads plus the application form.
		r.Get("/pages", h.ListPages)
		r.Get("/pages/{pageID}", h.GetPage)
		r.Get("/leaders", h.ListLeaders)
		r.Get("/statistics", h.GetStatistics)
		r.Post("/applications", h.SubmitApplication)

		r.Route("/auth", func(r chi.Router) {
			r.With(h.loginProtection.Middleware()).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})

		r.Route("/admin", func(r chi.Router) {
			// Any staff session may enter; per-page content routes apply
			// their own page-to-screen checks on top.
			r.Use(middleware.RequireScreen(authz.ScreenDashboard))

			r.Get("/events", h.ListEvents)
			r.Get("/applications/counts", h.ApplicationCounts)

			r.Route("/pages/{pageID}", func(r chi.Router) {
				r.Get("/", h.AdminGetPage)
				r.Put("/", h.UpdatePage)
				r.Post("/hero-image", h.ReplaceHeroImage)
				r.Post("/sections", h.AddSection)
				r.Put("/sections/by-title", h.UpsertSectionByTitle)
			})
			r.Route("/sections/{sectionID}", func(r chi.Router) {
				r.Put("/", h.UpdateSection)
				r.Delete("/", h.DeleteSection)
				r.Post("/image", h.ReplaceSectionImage)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireScreen(authz.ScreenLeadership))
				r.Post("/leaders", h.AddLeader)
				r.Route("/leaders/{leaderID}", func(r chi.Router) {
					r.Put("/", h.UpdateLeader)
					r.Delete("/", h.DeleteLeader)
					r.Post("/image", h.ReplaceLeaderImage)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireScreen(authz.ScreenApplications))
				r.Get("/applications", h.ListApplications)
				r.Get("/applications/{applicationID}", h.GetApplication)
				r.Put("/applications/{applicationID}/status", h.SetApplicationStatus)
			})

			r.With(middleware.RequireScreen(authz.ScreenStatistics)).
				Post("/statistics", h.AppendStatistics)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireScreen(authz.ScreenAccounts))
				r.Get("/accounts", h.ListAccounts)
				r.Post("/accounts", h.CreateAccount)
			})
		})
	})
}

// StaticUploads serves the local asset directory under the public base path.
func StaticUploads(r chi.Router, baseURL, dir string) {
	fs := http.StripPrefix(baseURL+"/", http.FileServer(http.Dir(dir)))
	r.Get(baseURL+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}
