package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/GTDGit/panel_api/internal/config"
)

// S3 uploads to an S3 (or S3-compatible) bucket.
type S3 struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3 builds an S3 uploader. Static keys are used when configured,
// otherwise the default AWS credential chain.
func NewS3(ctx context.Context, cfg *config.S3Config) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores f under folder with a random key and returns its URL.
func (s *S3) Upload(ctx context.Context, folder string, f File) (string, error) {
	body, err := f.Open()
	if err != nil {
		return "", err
	}
	defer body.Close()

	key := path.Join(folder, uuid.NewString()+strings.ToLower(path.Ext(f.Name)))
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if f.ContentType != "" {
		input.ContentType = aws.String(f.ContentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return s.objectURL(key), nil
}

// objectURL returns the public URL of key.
func (s *S3) objectURL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
