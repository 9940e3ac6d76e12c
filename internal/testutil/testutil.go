// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aljanabi/partycms/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary test database with migrations applied. Cleanup
// is registered on t.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "partycms-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestQueries creates a migrated temporary database and returns its query
// handle.
func TestQueries(t *testing.T) *store.Queries {
	t.Helper()
	return store.New(TestDB(t))
}

// FakeAssetStore is an in-memory assets.Store for exercising image lifecycle
// and sweep logic without a filesystem.
type FakeAssetStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	modTime map[string]time.Time

	// UploadErr, when set, fails every Upload.
	UploadErr error
	// RemoveErr, when set, fails every Remove.
	RemoveErr error
	// Removed records every path passed to Remove, including failed ones.
	Removed []string
}

// NewFakeAssetStore creates an empty fake store.
func NewFakeAssetStore() *FakeAssetStore {
	return &FakeAssetStore{
		objects: make(map[string][]byte),
		modTime: make(map[string]time.Time),
	}
}

const fakeBaseURL = "/uploads"

// Upload stores the object in memory.
func (f *FakeAssetStore) Upload(_ context.Context, path string, r io.Reader) (string, error) {
	if f.UploadErr != nil {
		return "", f.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = data
	f.modTime[path] = time.Now()
	return f.PublicURL(path), nil
}

// PublicURL maps a path to its public URL.
func (f *FakeAssetStore) PublicURL(path string) string {
	return fakeBaseURL + "/" + path
}

// PathFromURL inverts PublicURL for managed URLs.
func (f *FakeAssetStore) PathFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, fakeBaseURL+"/") {
		return "", false
	}
	return strings.TrimPrefix(url, fakeBaseURL+"/"), true
}

// Remove deletes the object. Missing objects are not an error.
func (f *FakeAssetStore) Remove(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Removed = append(f.Removed, path)
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	delete(f.objects, path)
	delete(f.modTime, path)
	return nil
}

// List returns sorted paths under the prefix.
func (f *FakeAssetStore) List(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var paths []string
	for p := range f.objects {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ModTime returns the stored modification time.
func (f *FakeAssetStore) ModTime(_ context.Context, path string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.modTime[path]
	if !ok {
		return time.Time{}, os.ErrNotExist
	}
	return t, nil
}

// SetModTime backdates an object for grace-period tests.
func (f *FakeAssetStore) SetModTime(path string, t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modTime[path] = t
}

// Has reports whether the object exists.
func (f *FakeAssetStore) Has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[path]
	return ok
}

// FakeNotifier records sent notifications for assertions.
type FakeNotifier struct {
	mu sync.Mutex

	// SendErr, when set, fails every call.
	SendErr error

	Confirmations []string // recipient addresses
	Decisions     []FakeDecision
}

// FakeDecision is one recorded decision email.
type FakeDecision struct {
	To     string
	Status string
	Notes  string
}

// SendConfirmation records the confirmation.
func (f *FakeNotifier) SendConfirmation(_ context.Context, to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	f.Confirmations = append(f.Confirmations, to)
	return nil
}

// SendDecision records the decision.
func (f *FakeNotifier) SendDecision(_ context.Context, to, _, status, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	f.Decisions = append(f.Decisions, FakeDecision{To: to, Status: status, Notes: notes})
	return nil
}

// PNGPixel returns a minimal valid 1x1 PNG for upload tests.
func PNGPixel() *bytes.Reader {
	return bytes.NewReader([]byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xde, 0x00, 0x00, 0x00,
		0x10, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0xfa, 0xcf, 0xc0, 0x00,
		0x08, 0x00, 0x00, 0xff, 0xff, 0x03, 0x09, 0x01, 0x02, 0x58, 0xb6, 0xd5,
		0x50, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60,
		0x82,
	})
}
