package storage

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/go-community-market/pkg/helpers"
)

const imageCacheControl = "public, max-age=86400"

// ImageStore uploads product images to a Google Cloud Storage bucket.
type ImageStore struct {
	client *gcs.Client
	bucket string
}

func NewImageStore(client *gcs.Client, bucket string) *ImageStore {
	return &ImageStore{client: client, bucket: bucket}
}

// Upload streams r into objectPath and returns the object's public URL.
// A failed copy never leaves a partial object behind.
func (s *ImageStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if s.client == nil || s.bucket == "" {
		return "", errors.New("gcs not configured")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = imageCacheControl
	w.ChunkSize = 0 // single request upload; images are capped in size
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return helpers.PublicURL(s.bucket, objectPath), nil
}
