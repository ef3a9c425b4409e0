package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectExists is returned when a put would overwrite an existing object.
// Collision avoidance relies on the timestamp-prefixed filename, so an existing
// object at the same path means something went wrong upstream.
var ErrObjectExists = errors.New("object already exists at this path")

// Storage provides an S3-compatible backend using MinIO with one bucket for
// originals and one for thumbnails.
type Storage struct {
	client     *minio.Client
	originals  string
	thumbnails string
}

// New creates a Storage connected to the given MinIO server. Missing buckets
// are created automatically.
func New(ctx context.Context, endpoint, accessKey, secretKey string, useSSL bool, originals, thumbnails string) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	for _, bucket := range []string{originals, thumbnails} {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check if bucket %s exists: %w", bucket, err)
		}

		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
	}

	return &Storage{
		client:     client,
		originals:  originals,
		thumbnails: thumbnails,
	}, nil
}

// OriginalsBucket returns the originals bucket name.
func (s *Storage) OriginalsBucket() string { return s.originals }

// ThumbnailsBucket returns the thumbnails bucket name.
func (s *Storage) ThumbnailsBucket() string { return s.thumbnails }

// ObjectPath builds the deterministic object path for an owner's file.
func ObjectPath(ownerID uuid.UUID, filename string) string {
	return path.Join(ownerID.String(), filename)
}

// SaveOriginal uploads original file bytes to the originals bucket.
func (s *Storage) SaveOriginal(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	return s.save(ctx, s.originals, objectPath, data, contentType)
}

// SaveThumbnail uploads thumbnail bytes to the thumbnails bucket.
func (s *Storage) SaveThumbnail(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	return s.save(ctx, s.thumbnails, objectPath, data, contentType)
}

// save uploads to the given bucket, refusing to overwrite an existing object.
func (s *Storage) save(ctx context.Context, bucket, objectPath string, data []byte, contentType string) (string, error) {
	_, err := s.client.StatObject(ctx, bucket, objectPath, minio.StatObjectOptions{})
	if err == nil {
		return "", fmt.Errorf("%s/%s: %w", bucket, objectPath, ErrObjectExists)
	}
	if resp := minio.ToErrorResponse(err); resp.Code != "NoSuchKey" {
		return "", fmt.Errorf("failed to check object %s/%s: %w", bucket, objectPath, err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, bucket, objectPath, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return objectPath, nil
}

// SignedURL produces a time-limited download URL for an object.
func (s *Storage) SignedURL(ctx context.Context, bucket, objectPath string, expires time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, objectPath, expires, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s/%s: %w", bucket, objectPath, err)
	}

	return u.String(), nil
}

// PublicURL resolves a best-effort display URL for an object. Paths carrying a
// redundant leading bucket segment or slash are normalized first.
func (s *Storage) PublicURL(bucket, objectPath string) string {
	normalized := strings.TrimPrefix(objectPath, bucket+"/")
	normalized = strings.TrimPrefix(normalized, "/")
	if normalized == "" {
		return ""
	}

	base := *s.client.EndpointURL()
	base.Path = path.Join(base.Path, bucket, normalized)

	return base.String()
}
