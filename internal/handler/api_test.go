// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aljanabi/partycms/internal/auth"
	"github.com/aljanabi/partycms/internal/content"
	"github.com/aljanabi/partycms/internal/images"
	"github.com/aljanabi/partycms/internal/middleware"
	"github.com/aljanabi/partycms/internal/model"
	"github.com/aljanabi/partycms/internal/review"
	"github.com/aljanabi/partycms/internal/session"
	"github.com/aljanabi/partycms/internal/stats"
	"github.com/aljanabi/partycms/internal/store"
	"github.com/aljanabi/partycms/internal/testutil"
)

// testApp bundles a running API server with direct access to its stores.
type testApp struct {
	srv      *httptest.Server
	client   *http.Client
	queries  *store.Queries
	notifier *testutil.FakeNotifier
	assets   *testutil.FakeAssetStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.TestDB(t)
	queries := store.New(db)
	sessionManager := session.New(db, time.Hour, true)
	fakeAssets := testutil.NewFakeAssetStore()
	notifier := &testutil.FakeNotifier{}

	h := New(Deps{
		DB:       db,
		Content:  content.NewService(queries, nil),
		Review:   review.NewService(queries, notifier),
		Stats:    stats.NewLedger(queries),
		Images:   images.NewLifecycle(fakeAssets, queries),
		Sessions: sessionManager,
		LoginProtection: middleware.NewLoginProtection(middleware.LoginProtectionConfig{
			IPRateLimit: 1000, // the rate limiter has its own tests
			IPBurst:     1000,
		}),
		Logger: testutil.TestLogger(),
	})

	r := chi.NewRouter()
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadAccount(sessionManager, db))
	h.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}

	return &testApp{
		srv:      srv,
		client:   &http.Client{Jar: jar},
		queries:  queries,
		notifier: notifier,
		assets:   fakeAssets,
	}
}

func (a *testApp) getJSON(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := a.client.Get(a.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding GET %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func (a *testApp) sendJSON(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (a *testApp) createAccount(t *testing.T, email, password, role string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now().UTC()
	if _, err := a.queries.CreateAccount(context.Background(), store.CreateAccountParams{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test Staff",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
}

func (a *testApp) login(t *testing.T, email, password string) {
	t.Helper()
	status := a.sendJSON(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, nil)
	if status != http.StatusOK {
		t.Fatalf("login returned %d", status)
	}
}

func TestPublicListPages(t *testing.T) {
	app := newTestApp(t)

	var resp struct {
		Data []model.Page `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if status := app.getJSON(t, "/api/pages", &resp); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if resp.Meta.Total != len(model.NavPriority) {
		t.Errorf("total = %d, want %d", resp.Meta.Total, len(model.NavPriority))
	}
	if resp.Data[0].ID != model.PageHome {
		t.Errorf("first page = %q, want home", resp.Data[0].ID)
	}
}

func TestPublicGetPage(t *testing.T) {
	app := newTestApp(t)

	var resp struct {
		Data content.PageView `json:"data"`
	}
	if status := app.getJSON(t, "/api/pages/vision", &resp); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if resp.Data.Page.ID != model.PageVision {
		t.Errorf("page = %q", resp.Data.Page.ID)
	}

	if status := app.getJSON(t, "/api/pages/no-such-page", nil); status != http.StatusNotFound {
		t.Errorf("unknown page status = %d, want 404", status)
	}
	if status := app.getJSON(t, "/api/pages/NotASlug", nil); status != http.StatusNotFound {
		t.Errorf("invalid slug status = %d, want 404", status)
	}
}

func TestSubmitApplication(t *testing.T) {
	app := newTestApp(t)

	var resp struct {
		Data model.Application `json:"data"`
	}
	status := app.sendJSON(t, http.MethodPost, "/api/applications", map[string]any{
		"full_name":     "Ali Hassan Kareem",
		"national_id":   "199012345678",
		"date_of_birth": "1990-03-14",
		"governorate":   "Baghdad",
		"phone":         "07701234567",
		"email":         "ali@example.org",
		"join_reason":   "I believe in the platform.",
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("status = %d", status)
	}
	if resp.Data.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", resp.Data.Status)
	}
	if len(app.notifier.Confirmations) != 1 {
		t.Errorf("confirmations = %v", app.notifier.Confirmations)
	}
}

func TestSubmitApplicationValidationError(t *testing.T) {
	app := newTestApp(t)

	var resp struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	status := app.sendJSON(t, http.MethodPost, "/api/applications", map[string]any{
		"full_name": "Ali",
	}, &resp)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", status)
	}
	if resp.Error.Code != "validation_error" {
		t.Errorf("code = %q", resp.Error.Code)
	}
	if _, ok := resp.Error.Details["phone"]; !ok {
		t.Errorf("details missing phone: %v", resp.Error.Details)
	}
}

func TestAdminRequiresSession(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/api/admin/events",
		"/api/admin/applications",
		"/api/admin/accounts",
	} {
		if status := app.getJSON(t, path, nil); status != http.StatusUnauthorized {
			t.Errorf("GET %s without session = %d, want 401", path, status)
		}
	}
}

func TestLoginAndSessionFlow(t *testing.T) {
	app := newTestApp(t)
	app.createAccount(t, "admin@party.example.org", "a-long-test-password", model.RoleAdmin)

	var loginResp struct {
		Data struct {
			Account model.Account `json:"account"`
			Screens []string      `json:"screens"`
		} `json:"data"`
	}
	status := app.sendJSON(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "admin@party.example.org", "password": "a-long-test-password"},
		&loginResp)
	if status != http.StatusOK {
		t.Fatalf("login status = %d", status)
	}
	if loginResp.Data.Account.Role != model.RoleAdmin {
		t.Errorf("role = %q", loginResp.Data.Account.Role)
	}
	if len(loginResp.Data.Screens) != 9 {
		t.Errorf("admin sees %d screens, want all 9", len(loginResp.Data.Screens))
	}

	// The session cookie now opens the admin surface.
	if status := app.getJSON(t, "/api/admin/events", nil); status != http.StatusOK {
		t.Errorf("GET /api/admin/events after login = %d", status)
	}
	if status := app.getJSON(t, "/api/auth/me", nil); status != http.StatusOK {
		t.Errorf("GET /api/auth/me after login = %d", status)
	}

	// And logout closes it again.
	if status := app.sendJSON(t, http.MethodPost, "/api/auth/logout", map[string]string{}, nil); status != http.StatusOK {
		t.Errorf("logout status = %d", status)
	}
	if status := app.getJSON(t, "/api/admin/events", nil); status != http.StatusUnauthorized {
		t.Errorf("GET /api/admin/events after logout = %d, want 401", status)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)
	app.createAccount(t, "admin@party.example.org", "a-long-test-password", model.RoleAdmin)

	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	// Wrong password and unknown email produce the identical generic answer.
	status := app.sendJSON(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "admin@party.example.org", "password": "wrong"}, &resp)
	if status != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", status)
	}
	wrongPasswordMsg := resp.Error.Message

	status = app.sendJSON(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ghost@party.example.org", "password": "wrong"}, &resp)
	if status != http.StatusUnauthorized {
		t.Fatalf("unknown email status = %d", status)
	}
	if resp.Error.Message != wrongPasswordMsg {
		t.Error("unknown email and wrong password responses differ (account enumeration)")
	}
}

func TestRoleGating(t *testing.T) {
	app := newTestApp(t)
	app.createAccount(t, "news@party.example.org", "a-long-test-password", model.RoleNewsStatements)
	app.login(t, "news@party.example.org", "a-long-test-password")

	// Staff session reaches the shared dashboard surface.
	if status := app.getJSON(t, "/api/admin/events", nil); status != http.StatusOK {
		t.Errorf("events = %d, want 200", status)
	}

	// But not admin-only screens.
	if status := app.getJSON(t, "/api/admin/accounts", nil); status != http.StatusForbidden {
		t.Errorf("accounts = %d, want 403", status)
	}
	if status := app.getJSON(t, "/api/admin/applications", nil); status != http.StatusForbidden {
		t.Errorf("applications = %d, want 403", status)
	}

	// The news role edits the news page but not the home page.
	status := app.sendJSON(t, http.MethodPut, "/api/admin/pages/news", map[string]any{
		"title": "Latest News",
	}, nil)
	if status != http.StatusOK {
		t.Errorf("update news page = %d, want 200", status)
	}
	status = app.sendJSON(t, http.MethodPut, "/api/admin/pages/home", map[string]any{
		"title": "Hijacked",
	}, nil)
	if status != http.StatusForbidden {
		t.Errorf("update home page = %d, want 403", status)
	}
}

func TestReviewWorkflowOverAPI(t *testing.T) {
	app := newTestApp(t)
	app.createAccount(t, "admin@party.example.org", "a-long-test-password", model.RoleAdmin)

	var submitResp struct {
		Data model.Application `json:"data"`
	}
	status := app.sendJSON(t, http.MethodPost, "/api/applications", map[string]any{
		"full_name":     "Zainab Mahmoud",
		"national_id":   "198511112222",
		"date_of_birth": "1985-07-01",
		"governorate":   "Basra",
		"phone":         "07509876543",
		"email":         "zainab@example.org",
		"join_reason":   "Community work.",
	}, &submitResp)
	if status != http.StatusCreated {
		t.Fatalf("submit status = %d", status)
	}

	app.login(t, "admin@party.example.org", "a-long-test-password")

	var decisionResp struct {
		Data model.Application `json:"data"`
	}
	path := "/api/admin/applications/" + itoa(submitResp.Data.ID) + "/status"
	status = app.sendJSON(t, http.MethodPut, path, map[string]string{
		"status": model.StatusApproved,
		"notes":  "welcome",
	}, &decisionResp)
	if status != http.StatusOK {
		t.Fatalf("decision status = %d", status)
	}
	if decisionResp.Data.Status != model.StatusApproved {
		t.Errorf("status = %q", decisionResp.Data.Status)
	}
	if !decisionResp.Data.ReviewedBy.Valid {
		t.Error("decision did not record the reviewer")
	}
	if len(app.notifier.Decisions) != 1 {
		t.Errorf("decisions sent = %d, want 1", len(app.notifier.Decisions))
	}

	var countsResp struct {
		Data map[string]int64 `json:"data"`
	}
	if status := app.getJSON(t, "/api/admin/applications/counts", &countsResp); status != http.StatusOK {
		t.Fatalf("counts status = %d", status)
	}
	if countsResp.Data[model.StatusApproved] != 1 {
		t.Errorf("approved count = %d", countsResp.Data[model.StatusApproved])
	}
}

func TestStatisticsEndpoints(t *testing.T) {
	app := newTestApp(t)
	app.createAccount(t, "admin@party.example.org", "a-long-test-password", model.RoleAdmin)

	// The empty ledger reads as zeros, not as an error.
	var emptyResp struct {
		Data stats.Snapshot `json:"data"`
	}
	if status := app.getJSON(t, "/api/statistics", &emptyResp); status != http.StatusOK {
		t.Fatalf("empty statistics status = %d", status)
	}
	if emptyResp.Data.TotalMembers != 0 {
		t.Errorf("empty total = %d", emptyResp.Data.TotalMembers)
	}

	// Appending requires an admin session.
	status := app.sendJSON(t, http.MethodPost, "/api/admin/statistics", stats.Snapshot{TotalMembers: 500}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("append without session = %d, want 401", status)
	}

	app.login(t, "admin@party.example.org", "a-long-test-password")
	status = app.sendJSON(t, http.MethodPost, "/api/admin/statistics", stats.Snapshot{
		TotalMembers:  500,
		FemaleMembers: 200,
		MaleMembers:   300,
		YouthMembers:  100,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("append status = %d", status)
	}

	var latestResp struct {
		Data stats.Snapshot `json:"data"`
	}
	if status := app.getJSON(t, "/api/statistics", &latestResp); status != http.StatusOK {
		t.Fatalf("statistics status = %d", status)
	}
	if latestResp.Data.TotalMembers != 500 {
		t.Errorf("total = %d, want 500", latestResp.Data.TotalMembers)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	app := newTestApp(t)
	app.createAccount(t, "admin@party.example.org", "a-long-test-password", model.RoleAdmin)
	app.login(t, "admin@party.example.org", "a-long-test-password")

	// Short passwords are refused.
	status := app.sendJSON(t, http.MethodPost, "/api/admin/accounts", map[string]string{
		"email":    "new@party.example.org",
		"password": "short",
		"role":     model.RoleActivities,
	}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Errorf("short password = %d, want 422", status)
	}

	// Unknown roles are refused.
	status = app.sendJSON(t, http.MethodPost, "/api/admin/accounts", map[string]string{
		"email":    "new@party.example.org",
		"password": "a-long-enough-password",
		"role":     "superuser",
	}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Errorf("unknown role = %d, want 422", status)
	}

	status = app.sendJSON(t, http.MethodPost, "/api/admin/accounts", map[string]string{
		"email":    "new@party.example.org",
		"password": "a-long-enough-password",
		"role":     model.RoleActivities,
		"name":     "New Editor",
	}, nil)
	if status != http.StatusCreated {
		t.Errorf("valid account = %d, want 201", status)
	}
}

func TestLeadershipPageResolvesLegacyLeaderImages(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	const heroURL = "/uploads/hero/chairman.jpg"
	if _, err := app.queries.UpsertPage(ctx, store.UpsertPageParams{
		PageID:       model.PageHome,
		Title:        "Home",
		HeroImage:    sql.NullString{String: heroURL, Valid: true},
		LastModified: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("UpsertPage: %v", err)
	}
	if _, err := app.queries.CreateLeader(ctx, store.CreateLeaderParams{
		Name:        "Chairman",
		Position:    "Party Chair",
		IsMain:      true,
		Image:       sql.NullString{String: model.PageHome, Valid: true},
		OrderNumber: 1,
	}); err != nil {
		t.Fatalf("CreateLeader: %v", err)
	}

	var pageResp struct {
		Data content.PageView `json:"data"`
	}
	if status := app.getJSON(t, "/api/pages/leadership", &pageResp); status != http.StatusOK {
		t.Fatalf("GET /api/pages/leadership = %d", status)
	}
	if len(pageResp.Data.Leaders) != 1 {
		t.Fatalf("got %d leaders, want 1", len(pageResp.Data.Leaders))
	}
	if got := pageResp.Data.Leaders[0].Image.String; got != heroURL {
		t.Errorf("leadership page leader image = %q, want %q", got, heroURL)
	}

	var leadersResp struct {
		Data []model.Leader `json:"data"`
	}
	if status := app.getJSON(t, "/api/leaders", &leadersResp); status != http.StatusOK {
		t.Fatalf("GET /api/leaders = %d", status)
	}
	if got := leadersResp.Data[0].Image.String; got != heroURL {
		t.Errorf("leaders list image = %q, want %q", got, heroURL)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
