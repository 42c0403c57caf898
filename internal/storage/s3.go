package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/google/uuid"
)

// S3Store stores images on Amazon S3 or a compatible API.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

func NewS3Store(client *s3.Client, bucket string, prefix string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

func (s *S3Store) Upload(ctx context.Context, r io.Reader, contentType string, existingID string) (string, error) {
	if s.bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}

	id := strings.TrimSpace(existingID)
	if id == "" {
		id = uuid.NewString()
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload image %s: %w", id, err)
	}
	return id, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) error {
	if s.bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("image id is required")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("delete image %s: %w", id, err)
	}
	return nil
}

func (s *S3Store) key(id string) string {
	if s.prefix == "" {
		return id
	}
	return s.prefix + "/" + id
}

var _ ImageStore = (*S3Store)(nil)
