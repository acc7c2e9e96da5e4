package s3store

import (
	"bytes"
	"context"
	"io"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	key         string
	contentType string
	ifNoneMatch string
	body        []byte
	presigned   string
}

func (f *fakeBucket) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.key = *params.Key
	if params.ContentType != nil {
		f.contentType = *params.ContentType
	}
	if params.IfNoneMatch != nil {
		f.ifNoneMatch = *params.IfNoneMatch
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBucket) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.presigned = *params.Key
	return &v4.PresignedHTTPRequest{URL: "https://signed.example.com/" + *params.Key, Method: "GET"}, nil
}

func TestUploadAndPresign(t *testing.T) {
	bucket := &fakeBucket{}
	store := newStore("course-docs", bucket, bucket, zerolog.Nop())

	location, err := store.Upload(context.Background(), "12_3_limits.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	require.NoError(t, err)
	require.Equal(t, "s3://course-docs/documents/12_3_limits.pdf", location)
	require.Equal(t, "documents/12_3_limits.pdf", bucket.key)
	require.Equal(t, "application/pdf", bucket.contentType)
	require.Equal(t, []byte("%PDF-1.4"), bucket.body)
	require.Equal(t, "*", bucket.ifNoneMatch, "puts must not replace an existing key")

	url, err := store.DownloadURL(context.Background(), location)
	require.NoError(t, err)
	require.Equal(t, "https://signed.example.com/documents/12_3_limits.pdf", url)
}

func TestDownloadURLRejectsForeignLocation(t *testing.T) {
	bucket := &fakeBucket{}
	store := newStore("course-docs", bucket, bucket, zerolog.Nop())

	_, err := store.DownloadURL(context.Background(), "s3://other/documents/a.pdf")
	require.ErrorIs(t, err, ErrForeignLocation)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{Region: "af-south-1"}, zerolog.Nop())
	require.ErrorIs(t, err, ErrMissingBucket)
}
