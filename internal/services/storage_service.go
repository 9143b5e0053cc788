// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/kivoa/catalog-backend/internal/config"
)

// ErrObjectNotFound reports a source reference whose object is gone.
// Redelivery cannot fix it, so callers treat it as a permanent failure.
var ErrObjectNotFound = errors.New("source object not found")

type StorageService struct {
	s3Client   s3iface.S3API
	httpClient *http.Client
	config     *config.Config
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	svc := &StorageService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		config:     cfg,
	}

	if cfg.AWS.AccessKeyID == "" {
		// Local development without S3
		return svc, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	svc.s3Client = s3.New(sess)
	return svc, nil
}

// Upload writes data under the given key and returns the public URL.
// Keys are deterministic per caller, so a retried upload overwrites the
// object from the previous attempt instead of duplicating it.
func (s *StorageService) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	if s.s3Client == nil {
		return fmt.Sprintf("http://localhost:%s/uploads/%s", s.config.Server.Port, key), nil
	}

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return s.ObjectURL(key), nil
}

// Delete removes an object by key or by its public URL.
func (s *StorageService) Delete(ctx context.Context, keyOrURL string) error {
	if s.s3Client == nil {
		return nil
	}

	key := s.keyFromURL(keyOrURL)
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}
	return nil
}

// Fetch retrieves source image bytes from a stored reference. References are
// either s3://bucket/key URIs or https URLs; each needs its own protocol
// handling. A missing object maps to ErrObjectNotFound.
func (s *StorageService) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "s3://") {
		return s.fetchFromS3(ctx, ref)
	}
	return s.fetchOverHTTP(ctx, ref)
}

func (s *StorageService) fetchFromS3(ctx context.Context, ref string) ([]byte, error) {
	if s.s3Client == nil {
		return nil, fmt.Errorf("S3 client not configured")
	}

	trimmed := strings.TrimPrefix(ref, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid S3 reference %q", ref)
	}

	out, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(parts[0]),
		Key:    aws.String(parts[1]),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, ref)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return data, nil
}

func (s *StorageService) fetchOverHTTP(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL %q: %w", ref, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s returned %d", ErrObjectNotFound, ref, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s returned status %d", ref, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return data, nil
}

// GenerateUploadURL returns a presigned PUT URL a client can upload a
// photo to directly, plus the public URL the object will have.
func (s *StorageService) GenerateUploadURL(filename, contentType string) (uploadURL, fileURL string, err error) {
	if s.s3Client == nil {
		return "", "", fmt.Errorf("S3 client not configured")
	}

	key := fmt.Sprintf("raw-images/%s%s", uuid.New().String(), strings.ToLower(path.Ext(filename)))
	req, _ := s.s3Client.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(s.config.AWS.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})

	uploadURL, err = req.Presign(time.Duration(s.config.AWS.PresignedURLExpiration) * time.Second)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return uploadURL, s.ObjectURL(key), nil
}

// GeneratePresignedURL returns a temporary GET URL for a private object.
func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

func (s *StorageService) ObjectURL(key string) string {
	if s.config.AWS.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.config.AWS.CDNDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

func (s *StorageService) keyFromURL(keyOrURL string) string {
	u, err := url.Parse(keyOrURL)
	if err != nil || u.Scheme == "" {
		return keyOrURL
	}
	return strings.TrimPrefix(u.Path, "/")
}
