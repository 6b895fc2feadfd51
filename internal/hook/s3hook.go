package hook

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/kenchrcum/yts3/internal/config"
	providers "github.com/kenchrcum/yts3/internal/s3"
)

// S3Hook uploads the encoded video to an S3-compatible bucket and
// downloads it back to a local temp file, demonstrating the "opaque
// bulk-storage target" contract with a real, swappable backend.
// Adapted from the teacher's internal/s3.NewClient/PutObject/GetObject,
// trimmed to the single upload/download round trip this hook needs.
type S3Hook struct {
	client *s3.Client
	bucket string
	logger *logrus.Logger
}

// NewS3Hook builds an S3Hook from the resolved hook configuration.
func NewS3Hook(ctx context.Context, cfg config.S3HookConfig, logger *logrus.Logger) (*S3Hook, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 hook: bucket is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = "aws"
	}
	endpoint, region, err := providers.ValidateProviderConfig(cfg.Endpoint, provider, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("s3 hook: %w", err)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 hook: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if provider != "aws" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = providers.RequiresPathStyleAddressing(provider)
		})
	}

	return &S3Hook{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// AfterEncode uploads encodedPath to the configured bucket under its
// base name, then downloads it back to a fresh temp file and returns
// that path, so decoding never reads the original encoder output
// directly — it reads what the storage target actually returned.
func (h *S3Hook) AfterEncode(ctx context.Context, encodedPath string) (string, error) {
	key := filepath.Base(encodedPath)

	f, err := os.Open(encodedPath)
	if err != nil {
		return "", fmt.Errorf("s3 hook: open encoded file: %w", err)
	}
	defer f.Close()

	if _, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return "", fmt.Errorf("s3 hook: put object %s: %w", key, err)
	}
	h.logger.WithFields(logrus.Fields{"bucket": h.bucket, "key": key}).Info("uploaded encoded video")

	result, err := h.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("s3 hook: get object %s: %w", key, err)
	}
	defer result.Body.Close()

	out, err := os.CreateTemp("", "yts3-hook-*.mkv")
	if err != nil {
		return "", fmt.Errorf("s3 hook: create temp file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, result.Body); err != nil {
		return "", fmt.Errorf("s3 hook: download object %s: %w", key, err)
	}
	h.logger.WithFields(logrus.Fields{"bucket": h.bucket, "key": key, "path": out.Name()}).Info("downloaded encoded video")

	return out.Name(), nil
}
