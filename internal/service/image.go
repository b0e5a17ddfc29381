package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/curateddiscoveries/backend/config"
)

// Uploads above this size are rejected before touching S3.
const maxImageBytes = 5 << 20

// ImageService stores curation and profile images in S3 under per-kind key
// prefixes and hands back public URLs.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// UploadCurationImage stores an image under the curation-images prefix.
func (s *ImageService) UploadCurationImage(ctx context.Context, data []byte, contentType string) (string, error) {
	return s.upload(ctx, config.CurationImagePrefix, data, contentType)
}

// UploadProfileImage stores an image under the profile-images prefix.
func (s *ImageService) UploadProfileImage(ctx context.Context, data []byte, contentType string) (string, error) {
	return s.upload(ctx, config.ProfileImagePrefix, data, contentType)
}

func (s *ImageService) upload(ctx context.Context, prefix string, data []byte, contentType string) (string, error) {
	if s.s3Config == nil || s.s3Config.Client == nil {
		return "", fmt.Errorf("%w: image storage is not configured", ErrValidation)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty upload", ErrValidation)
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("%w: image larger than %d bytes", ErrValidation, maxImageBytes)
	}
	ext, err := extensionFor(contentType)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}

func extensionFor(contentType string) (string, error) {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png", nil
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/webp":
		return ".webp", nil
	case "image/gif":
		return ".gif", nil
	default:
		return "", fmt.Errorf("%w: unsupported content type %q", ErrValidation, contentType)
	}
}
