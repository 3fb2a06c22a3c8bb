package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sharespace-media/backend/internal/util"
)

// S3Store stores uploads in an S3 bucket fronted by a CDN
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Store creates an S3-backed blob store
func NewS3Store(region, bucket, baseURL string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Store{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save uploads the file to S3 under the sanitized relative path
func (s *S3Store) Save(ctx context.Context, data []byte, relPath string, mimeType string) (*UploadResult, error) {
	dir, name := path.Split(path.Clean(relPath))
	safeName := util.SanitizeFilename(name)
	if safeName == "" {
		return nil, fmt.Errorf("filename %q sanitizes to nothing", name)
	}

	key := path.Join("uploads", strings.TrimPrefix(strings.Trim(dir, "/"), "uploads/"), safeName)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	now := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(mimeType),
		CacheControl: aws.String("max-age=3600"),
		Metadata: map[string]string{
			"original-filename": name,
			"upload-timestamp":  now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		ID:       fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		Filename: safeName,
		URL:      fmt.Sprintf("%s/%s?v=%d", s.baseURL, key, now.UnixMilli()),
		Size:     int64(len(data)),
		MimeType: mimeType,
	}, nil
}

// Delete removes an object from the bucket
func (s *S3Store) Delete(ctx context.Context, relPath string) error {
	key := strings.Trim(path.Clean(relPath), "/")
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// CheckBucketAccess verifies that the bucket is reachable
func (s *S3Store) CheckBucketAccess(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", s.bucket, err)
	}
	return nil
}
