package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/vladimiradmaev/bp-assistant/internal/config"
	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
	"github.com/vladimiradmaev/bp-assistant/internal/logger"
	"google.golang.org/api/option"
)

const uploadTimeout = 2 * time.Minute

// StorageService uploads reading photos to a Cloud Storage bucket and
// derives their public URLs. There is no retry and no cleanup: an upload
// orphaned by a later pipeline failure stays in the bucket.
type StorageService struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewStorageService(ctx context.Context, cfg config.StorageConfig) (*StorageService, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &StorageService{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Upload writes the image bytes under the configured prefix and returns
// the public URL of the created object.
func (s *StorageService) Upload(ctx context.Context, data []byte, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	key := s.prefix + "/" + name
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "image/jpeg"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", apperrors.NewUploadError(err)
	}
	if err := w.Close(); err != nil {
		return "", apperrors.NewUploadError(err)
	}

	publicURL := s.PublicURL(name)
	logger.Debug("Image uploaded", "bucket", s.bucket, "key", key, "size", len(data))
	return publicURL, nil
}

// PublicURL returns the deterministic URL of an uploaded object.
func (s *StorageService) PublicURL(name string) string {
	return fmt.Sprintf("https://%s.storage.googleapis.com/%s/%s",
		s.bucket, s.prefix, url.PathEscape(name))
}

// GenerateFileName produces a collision-resistant object name from the
// current time plus a short random suffix. The suffix is the actual
// collision guard; the timestamp only keeps listings readable.
func GenerateFileName() string {
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "", ".", "").Replace(ts)
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s.jpg", ts, suffix)
}
