package mediastore

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/akarpovs/viewtube/internal/common"
	sc "github.com/akarpovs/viewtube/internal/server/config"
)

// Seams for tests: the S3 calls are routed through package-level variables so
// tests can intercept them without a live backend.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// S3Store implements Store over an S3-compatible backend (MinIO in local
// setups).
type S3Store struct {
	cfg sc.S3
}

func NewS3Store(cfg sc.S3) *S3Store {
	return &S3Store{cfg: cfg}
}

// randomStorageKey spreads objects under a dated prefix.
func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3Store) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.AccessKey,
			s.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// publicURL derives the public URL of a stored object.
func (s *S3Store) publicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.BaseEndpoint, "/"), s.cfg.Bucket, key)
}

// keyFromURL is the inverse of publicURL. Returns "" for URLs that do not
// belong to this store's endpoint and bucket.
func (s *S3Store) keyFromURL(url string) string {
	prefix := fmt.Sprintf("%s/%s/", strings.TrimRight(s.cfg.BaseEndpoint, "/"), s.cfg.Bucket)
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func (s *S3Store) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", common.ErrMediaOperation, path.Base(localPath), err)
	}
	defer file.Close()

	client, err := s.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMediaOperation, err)
	}

	key := randomStorageKey()
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMediaOperation, err)
	}

	return s.publicURL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key := s.keyFromURL(url)
	if key == "" {
		return fmt.Errorf("%w: url %q does not belong to this store", common.ErrMediaOperation, url)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrMediaOperation, err)
	}

	_, err = deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrMediaOperation, err)
	}
	return nil
}
