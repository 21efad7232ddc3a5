// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

/*
Package objectstore provides a managed client for S3-compatible object storage.

It holds cover images for books. The core never parses stored objects; it
addresses them by caller-chosen keys and hands signed URLs (or public paths)
back to the presentation layer.

Core Responsibilities:

  - Durability: Covers survive independently of the relational store.
  - Addressing: Content is stored under deterministic, slug-safe keys.
  - Safety: Upload sizes are capped before any bytes reach the bucket.
*/
package objectstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/prosepilot/api/internal/platform/config"
	"github.com/prosepilot/api/internal/platform/constants"
	"github.com/prosepilot/api/pkg/slug"
)

// presignTTL is how long a generated cover download URL stays valid.
const presignTTL = 15 * time.Minute

// Store wraps a MinIO client bound to the configured cover bucket.
type Store struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// New connects to the configured S3-compatible endpoint.
//
// # Parameters
//   - cfg: Application configuration carrying the S3_* settings.
//   - logger: Structured logger for storage events.
func New(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to create client: %w", err)
	}

	logger.Info("objectstore client configured",
		slog.String("endpoint", cfg.S3Endpoint),
		slog.String("bucket", cfg.S3Bucket),
	)

	return &Store{client: client, bucket: cfg.S3Bucket, logger: logger}, nil
}

// CoverKey builds the deterministic object key for a book cover upload.
//
// # Format
//
// covers/<bookID>/<slugified filename>. The extension is preserved so the
// object's content type survives round-trips through the bucket.
func CoverKey(bookID, filename string) string {
	extension := path.Ext(filename)
	base := slug.From(filename[:len(filename)-len(extension)])
	if base == "" {
		base = "cover"
	}
	return constants.CoverKeyPrefix + bookID + "/" + base + extension
}

// PutCover streams a cover image into the bucket under the given key.
func (store *Store) PutCover(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if size > constants.CoverMaxBytes {
		return fmt.Errorf("objectstore: cover exceeds %d bytes", int64(constants.CoverMaxBytes))
	}

	_, err := store.client.PutObject(ctx, store.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("objectstore: upload failed: %w", err)
	}

	store.logger.Info("cover_uploaded",
		slog.String("key", key),
		slog.Int64("bytes", size),
	)

	return nil
}

// CoverURL returns a presigned, time-limited download URL for a stored cover.
func (store *Store) CoverURL(ctx context.Context, key string) (string, error) {
	u, err := store.client.PresignedGetObject(ctx, store.bucket, key, presignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("objectstore: presign failed: %w", err)
	}
	return u.String(), nil
}

// RemoveCover deletes a stored cover. Used when a book is deleted.
func (store *Store) RemoveCover(ctx context.Context, key string) error {
	if err := store.client.RemoveObject(ctx, store.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("objectstore: remove failed: %w", err)
	}
	return nil
}
