package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Uploader stores product image blobs and hands back the object name the
// catalog persists.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, contentType string) (string, error)
	Remove(ctx context.Context, name string) error
}

type BucketService struct {
	client *storage.Client
	bucket string
}

func NewBucketService(client *storage.Client, bucket string) *BucketService {
	return &BucketService{client: client, bucket: bucket}
}

func (s *BucketService) Upload(ctx context.Context, r io.Reader, contentType string) (string, error) {
	name := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to upload object %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload %s: %w", name, err)
	}
	return name, nil
}

func (s *BucketService) Remove(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(name).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("failed to delete object %s: %w", name, err)
	}
	return nil
}
