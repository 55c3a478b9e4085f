package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const maxPresignExpiry = 7 * 24 * time.Hour

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client        *s3.Client
	BucketName    string
	PublicBaseURL string

	presign *s3.PresignClient
}

// NewS3Config initializes the S3 client from the application config. A custom
// endpoint switches the client to path-style addressing (MinIO, LocalStack).
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.S3PublicBaseURL
	if base == "" {
		if cfg.S3Endpoint != "" {
			base = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3BucketName
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3BucketName, cfg.AWSRegion)
		}
	}

	return &S3Config{
		Client:        client,
		BucketName:    cfg.S3BucketName,
		PublicBaseURL: strings.TrimRight(base, "/"),
		presign:       s3.NewPresignClient(client),
	}, nil
}

// PublicURL returns the public address of an object in the bucket.
func (s *S3Config) PublicURL(objectKey string) string {
	return s.PublicBaseURL + "/" + objectKey
}

// GeneratePresignedURL signs a GET link for objectKey that stays valid for
// expiration, which S3 caps at seven days.
func (s *S3Config) GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	if expiration <= 0 || expiration > maxPresignExpiry {
		return "", fmt.Errorf("presign expiration %s out of range", expiration)
	}
	presign := s.presign
	if presign == nil {
		presign = s3.NewPresignClient(s.Client)
	}
	req, err := presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectKey, err)
	}
	return req.URL, nil
}
