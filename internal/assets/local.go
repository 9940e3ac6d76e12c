// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package assets

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore stores blobs on the local filesystem and serves them under a
// public base URL (the HTTP server mounts the directory at that prefix).
type LocalStore struct {
	baseDir string
	baseURL string // no trailing slash
}

// NewLocalStore creates a local filesystem store rooted at baseDir, serving
// under baseURL (e.g. "/uploads" or "https://party.example.org/uploads").
func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// BaseDir returns the root directory blobs are stored under.
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

// Upload writes the blob under path and returns its public URL.
func (s *LocalStore) Upload(ctx context.Context, path string, r io.Reader) (string, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	out, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, r); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("writing file: %w", err)
	}

	return s.PublicURL(path), nil
}

// PublicURL returns the public URL for a stored path.
func (s *LocalStore) PublicURL(path string) string {
	return s.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// PathFromURL maps a public URL back to a storage path. Returns false for
// URLs outside this store's base, inline data URLs, and empty values.
func (s *LocalStore) PathFromURL(url string) (string, bool) {
	if url == "" || strings.HasPrefix(url, "data:") {
		return "", false
	}
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	path := strings.TrimPrefix(url, prefix)
	if path == "" {
		return "", false
	}
	return path, true
}

// Remove deletes the blob at path. A missing blob is not an error.
func (s *LocalStore) Remove(ctx context.Context, path string) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// List returns all stored paths under prefix, relative to the store root.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	root, err := s.fullPath(prefix)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", prefix, err)
	}
	return paths, nil
}

// ModTime returns the time the blob at path was stored.
func (s *LocalStore) ModTime(ctx context.Context, path string) (time.Time, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %q: %w", path, err)
	}
	return info.ModTime(), nil
}

// fullPath resolves a storage path under baseDir, rejecting traversal out of
// the root.
func (s *LocalStore) fullPath(path string) (string, error) {
	full := filepath.Join(s.baseDir, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.baseDir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid storage path %q", path)
	}
	return full, nil
}
