package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
)

// S3Storage stores media in an S3-compatible bucket.
type S3Storage struct {
	bucket       string
	region       string
	publicBase   string
	publicPolicy bool
	client       *s3.Client
	presigner    *s3.PresignClient
	log          zerolog.Logger
}

func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	return &S3Storage{
		bucket:       cfg.Bucket,
		region:       cfg.S3Region,
		publicBase:   cfg.ResolvedPublicBaseURL(),
		publicPolicy: !cfg.PresignedURLs(),
		client:       client,
		presigner:    s3.NewPresignClient(client),
		log:          logger,
	}, nil
}

func (s *S3Storage) Backend() string {
	return config.StorageBackendS3
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (err error) {
	defer func(start time.Time) { observe(s.Backend(), "put", start, err) }(time.Now())

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Remove deletes the object. S3 treats a missing key as success.
func (s *S3Storage) Remove(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { observe(s.Backend(), "remove", start, err) }(time.Now())

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// EnsureBucket creates the bucket when missing and, under the public URL policy, tries to
// open it for anonymous reads. A rejected policy is only logged.
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var notFound *types.NotFound
		if !errors.As(err, &notFound) {
			return fmt.Errorf("check bucket: %w", err)
		}
		input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
		if s.region != "" && s.region != "us-east-1" {
			input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
				LocationConstraint: types.BucketLocationConstraint(s.region),
			}
		}
		if _, err := s.client.CreateBucket(ctx, input); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		s.log.Info().Str("bucket", s.bucket).Msg("bucket created")
	}

	if s.publicPolicy {
		_, err := s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
			Bucket: aws.String(s.bucket),
			Policy: aws.String(publicReadPolicy(s.bucket)),
		})
		if err != nil {
			s.log.Warn().Err(err).Str("bucket", s.bucket).Msg("could not set public read policy; public URLs may be denied")
		}
	}
	return nil
}

func (s *S3Storage) PublicURL(key string) string {
	return publicObjectURL(s.publicBase, s.bucket, key)
}

func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (url string, err error) {
	defer func(start time.Time) { observe(s.Backend(), "presign", start, err) }(time.Now())

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign object %q: %w", key, err)
	}
	return req.URL, nil
}

// Health performs a HeadBucket request.
func (s *S3Storage) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
