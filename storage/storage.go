// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/danielhkuo/treat-pageant/cliparse"
)

var (
	ErrNotFound    = errors.New("object not found")
	ErrInvalidName = errors.New("invalid object name")
)

// ObjectStore holds uploaded files (portraits, payment proofs, contestant
// images and gallery pictures). Names are slash-separated relative paths.
type ObjectStore interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, prefix string, limit int) ([]Object, error)
	PublicURL(name string) string
}

type Object struct {
	Name    string
	Size    int64
	Updated time.Time
}

// CleanName normalizes an object name and rejects anything that would escape
// the store root.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return "", ErrInvalidName
	}
	cleaned := path.Clean("/" + name)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, seg := range strings.Split(cleaned, "/") {
		if seg == ".." || seg == "." {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return cleaned, nil
}

// NewStore builds the backend selected by STORAGE_BACKEND.
func NewStore(ctx context.Context, cfg cliparse.Config) (ObjectStore, error) {
	switch cfg.StorageBackend {
	case "local", "":
		return NewLocal(cfg.StorageDir, cfg.PublicBaseURL+"/files")
	case "gcs":
		if cfg.StorageBucket == "" {
			return nil, fmt.Errorf("STORAGE_BUCKET required for gcs storage")
		}
		return NewGCS(ctx, cfg.StorageBucket, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}
