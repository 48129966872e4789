// Package blobstore uploads generated persona portraits to durable object
// storage so they outlive the provider's short-lived URLs.
package blobstore

import (
	"bytes"
	"context"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// Uploader writes images into a Supabase storage bucket.
type Uploader struct {
	storage *storage_go.Client
	bucket  string
	logger  *zap.Logger
}

// New wraps the storage client of an existing Supabase client.
func New(client *supabase.Client, bucket string, logger *zap.Logger) *Uploader {
	return &Uploader{
		storage: client.Storage,
		bucket:  bucket,
		logger:  logger.Named("blobstore"),
	}
}

// Upload stores the image under personas/<filename> and returns its public
// URL. Failures bubble up so the caller can fall back to a placeholder.
func (u *Uploader) Upload(_ context.Context, filename string, data []byte, contentType string) (string, error) {
	path := "personas/" + filename

	_, err := u.storage.UploadFile(u.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}

	resp := u.storage.GetPublicUrl(u.bucket, path)
	if resp.SignedURL == "" {
		return "", fmt.Errorf("no public url for uploaded image %s", path)
	}

	u.logger.Debug("image uploaded", zap.String("path", path))
	return resp.SignedURL, nil
}
