package storage

import (
	"context"
	"fmt"
	"io"

	"greencycle/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxUploadBytes caps item images at 10 MB. Oversized uploads are
// rejected before any network call.
const MaxUploadBytes = 10 << 20

// ImageStore handles item photo uploads to S3.
type ImageStore struct {
	client *s3.Client
	bucket string
	region string
}

func NewImageStore(client *s3.Client, bucket, region string) *ImageStore {
	return &ImageStore{
		client: client,
		bucket: bucket,
		region: region,
	}
}

// Upload stores an image under key and returns the key on success.
func (s *ImageStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("%w: image is empty", types.ErrValidation)
	}
	if size > MaxUploadBytes {
		return "", fmt.Errorf("%w: image exceeds the %d MB limit", types.ErrValidation, MaxUploadBytes>>20)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", key, err)
	}

	return key, nil
}

func (s *ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}

	return nil
}

// PublicURL returns the retrievable URL for an uploaded key.
func (s *ImageStore) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
