package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/apperror"
)

// MaxImageSize is the largest upload accepted.
const MaxImageSize = 5 << 20

const (
	recipeImagesFolder = "recipe-images"
	avatarsFolder      = "avatars"

	// PresignTTL is how long a signed image link stays valid.
	PresignTTL = 15 * time.Minute
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectUploader is the slice of the S3 client the image service needs.
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectPresigner signs time-limited GET links for private buckets.
type ObjectPresigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// PresignedImage is a signed link to a stored image.
type PresignedImage struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ImageService stores user uploaded images in the bucket
type ImageService struct {
	uploader  ObjectUploader
	presigner ObjectPresigner
	bucket    string
	publicURL func(key string) string
	now       func() time.Time
}

// NewImageService wires the service to S3. A nil config yields a service
// that reports storage as unavailable.
func NewImageService(s3Config *config.S3Config) *ImageService {
	if s3Config == nil {
		return &ImageService{now: time.Now}
	}
	svc := NewImageServiceWithUploader(s3Config.Client, s3Config.BucketName, s3Config.PublicURL)
	return svc.WithPresigner(s3Config)
}

func NewImageServiceWithUploader(uploader ObjectUploader, bucket string, publicURL func(string) string) *ImageService {
	return &ImageService{
		uploader:  uploader,
		bucket:    bucket,
		publicURL: publicURL,
		now:       time.Now,
	}
}

// WithPresigner enables PresignImage.
func (s *ImageService) WithPresigner(presigner ObjectPresigner) *ImageService {
	s.presigner = presigner
	return s
}

func (s *ImageService) UploadRecipeImage(ctx context.Context, userID uuid.UUID, data []byte) (string, error) {
	return s.upload(ctx, recipeImagesFolder, userID, data)
}

func (s *ImageService) UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte) (string, error) {
	return s.upload(ctx, avatarsFolder, userID, data)
}

// upload validates the image and stores it under <folder>/<user>-<millis><ext>.
func (s *ImageService) upload(ctx context.Context, folder string, userID uuid.UUID, data []byte) (string, error) {
	if s.uploader == nil {
		return "", apperror.NewTransient("image storage not configured", nil)
	}
	if len(data) == 0 {
		return "", apperror.NewValidation("image is empty")
	}
	if len(data) > MaxImageSize {
		return "", apperror.NewValidation("image must be at most 5MB")
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", apperror.NewValidation("unsupported image type " + contentType)
	}

	key := fmt.Sprintf("%s/%s-%d%s", folder, userID, s.now().UnixMilli(), ext)
	_, err := s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", apperror.NewTransient("failed to upload image", err)
	}

	url := s.publicURL(key)
	log.Printf("[ImageService] Uploaded %s", url)
	return url, nil
}

// PresignImage signs a GET link for an uploaded image. Only keys under the
// upload folders are signed.
func (s *ImageService) PresignImage(ctx context.Context, key string) (*PresignedImage, error) {
	key = strings.TrimPrefix(key, "/")
	if !isImageKey(key) {
		return nil, apperror.NewNotFound("image not found")
	}
	if s.presigner == nil {
		return nil, apperror.NewTransient("image storage not configured", nil)
	}

	expiresAt := s.now().Add(PresignTTL)
	url, err := s.presigner.GeneratePresignedURL(ctx, key, PresignTTL)
	if err != nil {
		return nil, apperror.NewTransient("failed to sign image link", err)
	}
	return &PresignedImage{URL: url, ExpiresAt: expiresAt}, nil
}

func isImageKey(key string) bool {
	if strings.Contains(key, "..") {
		return false
	}
	for _, folder := range []string{recipeImagesFolder, avatarsFolder} {
		if name := strings.TrimPrefix(key, folder+"/"); name != key && name != "" && !strings.Contains(name, "/") {
			return true
		}
	}
	return false
}
