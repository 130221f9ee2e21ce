package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BrandingService stores tenant branding assets (logos) in object
// storage and hands out presigned URLs for the console to render.
type BrandingService interface {
	UploadLogo(ctx context.Context, tenantID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
	LogoURL(objectName string, expiry time.Duration) (string, error)
	DeleteLogo(ctx context.Context, objectName string) error
	EnsureBucketExists(ctx context.Context) error
}

type brandingService struct {
	client *minio.Client
	bucket string
}

func NewBrandingService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (BrandingService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &brandingService{client: client, bucket: bucket}, nil
}

var allowedLogoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".svg":  true,
	".webp": true,
}

func (s *brandingService) UploadLogo(ctx context.Context, tenantID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedLogoExtensions[ext] {
		return "", fmt.Errorf("unsupported logo file type: %s", ext)
	}

	objectName := fmt.Sprintf("%s/%s%s", tenantID.String(), uuid.NewString(), ext)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *brandingService) LogoURL(objectName string, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(context.Background(), s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (s *brandingService) DeleteLogo(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

func (s *brandingService) EnsureBucketExists(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
