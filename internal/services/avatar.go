package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Mykyta-Harashchenko/contacthub/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// AvatarStore uploads user avatars to an S3-compatible bucket. Static
// credentials plus an endpoint override make it work against MinIO as well
// as AWS.
type AvatarStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewAvatarStore returns (nil, nil) when storage is disabled in config.
func NewAvatarStore(ctx context.Context, cfg *config.StorageConfig) (*AvatarStore, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = cfg.Endpoint
	}

	return &AvatarStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Upload stores the avatar under a random object key and returns its public URL.
func (s *AvatarStore) Upload(ctx context.Context, r io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("avatars/%s", uuid.New())

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key), nil
}
