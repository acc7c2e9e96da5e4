package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

const (
	scheme          = "s3://"
	keyPrefix       = "documents"
	downloadExpires = 15 * time.Minute
)

var (
	// ErrMissingBucket indicates no bucket was configured.
	ErrMissingBucket = errors.New("s3 bucket must be provided")
	// ErrForeignLocation indicates a location that does not belong to this bucket.
	ErrForeignLocation = errors.New("location does not belong to the configured bucket")
)

// Config holds the bucket and credentials. Endpoint is optional and enables
// path-style addressing for S3-compatible stores such as MinIO.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Store keeps documents in an S3 bucket and hands out presigned download links.
type Store struct {
	bucket    string
	client    objectPutter
	presigner objectPresigner
	logger    zerolog.Logger
}

// New builds the S3 client from static credentials.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrMissingBucket
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newStore(cfg.Bucket, client, s3.NewPresignClient(client), logger), nil
}

func newStore(bucket string, client objectPutter, presigner objectPresigner, logger zerolog.Logger) *Store {
	return &Store{
		bucket:    bucket,
		client:    client,
		presigner: presigner,
		logger:    logger.With().Str("component", "s3store").Logger(),
	}
}

// Upload writes the object and returns an s3:// location. The put is
// conditional so an existing key is left untouched.
func (s *Store) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	key := path.Join(keyPrefix, path.Base(name))
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		IfNoneMatch: aws.String("*"),
	}
	if contentType := mime.TypeByExtension(filepath.Ext(name)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Info().Str("bucket", s.bucket).Str("key", key).Msg("document uploaded to s3")
	return scheme + s.bucket + "/" + key, nil
}

// DownloadURL presigns a short-lived GET for a location returned by Upload.
func (s *Store) DownloadURL(ctx context.Context, location string) (string, error) {
	key, ok := strings.CutPrefix(location, scheme+s.bucket+"/")
	if !ok || key == "" {
		return "", ErrForeignLocation
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(downloadExpires))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}
