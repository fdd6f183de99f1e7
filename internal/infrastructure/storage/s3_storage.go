package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/config"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Storage keeps cover images in an S3-compatible bucket under
// folder/<uuid><ext>.
type S3Storage struct {
	objects   objectAPI
	presigner presignAPI
	bucket    string
	publicURL string
	expiry    time.Duration
	logger    *zap.Logger
}

// NewS3Client builds an S3 client from static credentials. A custom endpoint
// switches to path-style addressing for MinIO and similar servers.
func NewS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3Storage(client *s3.Client, cfg config.StorageConfig, logger *zap.Logger) *S3Storage {
	return &S3Storage{
		objects:   client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		expiry:    cfg.PresignExpiry,
		logger:    logger,
	}
}

func objectKey(folder, filename string) string {
	return path.Join(folder, filename)
}

// Upload stores the file under a fresh name and returns that name.
func (s *S3Storage) Upload(ctx context.Context, file *repository.Upload, folder string) (string, error) {
	filename := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(folder, filename)),
		Body:        file.Body,
		ContentType: aws.String(file.ContentType),
		ACL:         s3types.ObjectCannedACLPrivate,
	}
	if file.Size > 0 {
		input.ContentLength = aws.Int64(file.Size)
	}

	if _, err := s.objects.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s to s3: %w", filename, err)
	}
	return filename, nil
}

func (s *S3Storage) Delete(ctx context.Context, filename, folder string) error {
	_, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(folder, filename)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from s3: %w", filename, err)
	}
	return nil
}

// URL returns the public URL when one is configured, otherwise a presigned
// GET URL. Presign failures yield "".
func (s *S3Storage) URL(ctx context.Context, filename, folder string) string {
	key := objectKey(folder, filename)
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		s.logger.Warn("Failed to presign cover URL", zap.String("key", key), zap.Error(err))
		return ""
	}
	return req.URL
}
