package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/storedesk/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultUploadTimeout = 30 * time.Second

// S3Storage S3 兼容对象存储（AWS / R2 / MinIO）
type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicURL     string
	uploadTimeout time.Duration
}

// NewS3Storage 创建 S3 存储
func NewS3Storage(ctx context.Context, cfg config.S3StorageConfig) (*S3Storage, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	publicURL := strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/")
	if bucket == "" || publicURL == "" {
		return nil, errors.New("s3 storage requires bucket and public_url")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	timeout := time.Duration(cfg.UploadTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	return &S3Storage{
		client:        client,
		bucket:        bucket,
		publicURL:     publicURL,
		uploadTimeout: timeout,
	}, nil
}

// Put 上传对象
func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(cleaned),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(uploadCtx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", cleaned, err)
	}
	return s.publicURL + "/" + cleaned, nil
}

// Delete 删除对象
func (s *S3Storage) Delete(ctx context.Context, url string) error {
	if !s.Owns(url) {
		return ErrNotOwned
	}
	key, err := cleanKey(strings.TrimPrefix(url, s.publicURL+"/"))
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Owns 判断地址是否位于公开访问前缀下
func (s *S3Storage) Owns(url string) bool {
	return strings.HasPrefix(strings.TrimSpace(url), s.publicURL+"/")
}
