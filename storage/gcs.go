// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// GCS stores objects in a Google Cloud Storage bucket. Objects are expected
// to be publicly readable through bucket IAM.
type GCS struct {
	svc    *gcs.Service
	bucket string
}

func NewGCS(ctx context.Context, bucket, credentialsFile string, opts ...option.ClientOption) (*GCS, error) {
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("gcs credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(gcs.DevstorageReadWriteScope))

	svc, err := gcs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCS{svc: svc, bucket: bucket}, nil
}

func (g *GCS) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	clean, err := CleanName(name)
	if err != nil {
		return "", err
	}
	obj := &gcs.Object{Name: clean, ContentType: contentType}
	if _, err := g.svc.Objects.Insert(g.bucket, obj).
		Media(r, googleapi.ContentType(contentType)).
		Context(ctx).
		Do(); err != nil {
		return "", fmt.Errorf("gcs insert %s: %w", clean, err)
	}
	return g.PublicURL(clean), nil
}

func (g *GCS) Exists(ctx context.Context, name string) (bool, error) {
	clean, err := CleanName(name)
	if err != nil {
		return false, err
	}
	_, err = g.svc.Objects.Get(g.bucket, clean).Context(ctx).Do()
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("gcs get %s: %w", clean, err)
	}
	return true, nil
}

func (g *GCS) Delete(ctx context.Context, name string) error {
	clean, err := CleanName(name)
	if err != nil {
		return err
	}
	err = g.svc.Objects.Delete(g.bucket, clean).Context(ctx).Do()
	if isNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("gcs delete %s: %w", clean, err)
	}
	return nil
}

func (g *GCS) List(ctx context.Context, prefix string, limit int) ([]Object, error) {
	var objects []Object
	call := g.svc.Objects.List(g.bucket).Prefix(prefix)
	if limit > 0 {
		call = call.MaxResults(int64(limit))
	}

	err := call.Pages(ctx, func(res *gcs.Objects) error {
		for _, item := range res.Items {
			if strings.HasSuffix(item.Name, "/") {
				continue
			}
			updated, _ := time.Parse(time.RFC3339, item.Updated)
			objects = append(objects, Object{Name: item.Name, Size: int64(item.Size), Updated: updated})
			if limit > 0 && len(objects) >= limit {
				return errStopPaging
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopPaging) {
		return nil, fmt.Errorf("gcs list: %w", err)
	}
	return objects, nil
}

var errStopPaging = errors.New("stop paging")

func (g *GCS) PublicURL(name string) string {
	segs := strings.Split(name, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "https://storage.googleapis.com/" + g.bucket + "/" + strings.Join(segs, "/")
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
