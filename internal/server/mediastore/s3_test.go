package mediastore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpovs/viewtube/internal/common"
	sc "github.com/akarpovs/viewtube/internal/server/config"
)

func testStore() *S3Store {
	return NewS3Store(sc.S3{
		AccessKey:    "admin",
		SecretKey:    "secret",
		Bucket:       "media",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
	})
}

func withStubbedS3(t *testing.T, put func(*s3.PutObjectInput) error, del func(*s3.DeleteObjectInput) error) {
	t.Helper()
	origPut, origDel := putObject, deleteObject
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		if put != nil {
			if err := put(in); err != nil {
				return nil, err
			}
		}
		return &s3.PutObjectOutput{}, nil
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		if del != nil {
			if err := del(in); err != nil {
				return nil, err
			}
		}
		return &s3.DeleteObjectOutput{}, nil
	}
	t.Cleanup(func() { putObject, deleteObject = origPut, origDel })
}

func tempFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(p, []byte("img"), 0o600))
	return p
}

func TestUpload_ReturnsPublicURL(t *testing.T) {
	var gotKey string
	withStubbedS3(t, func(in *s3.PutObjectInput) error {
		gotKey = aws.ToString(in.Key)
		return nil
	}, nil)

	store := testStore()
	url, err := store.Upload(context.Background(), tempFile(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:9000/media/"))
	assert.True(t, strings.HasSuffix(url, gotKey))
	assert.True(t, strings.HasPrefix(gotKey, "media/"))
}

func TestUpload_MissingFile(t *testing.T) {
	withStubbedS3(t, nil, nil)

	store := testStore()
	_, err := store.Upload(context.Background(), "/nonexistent/file.png")
	assert.ErrorIs(t, err, common.ErrMediaOperation)
}

func TestUpload_PutFails(t *testing.T) {
	withStubbedS3(t, func(in *s3.PutObjectInput) error {
		return errors.New("backend down")
	}, nil)

	store := testStore()
	_, err := store.Upload(context.Background(), tempFile(t))
	assert.ErrorIs(t, err, common.ErrMediaOperation)
}

func TestDelete_RoundTripsUploadURL(t *testing.T) {
	var uploadedKey, deletedKey string
	withStubbedS3(t, func(in *s3.PutObjectInput) error {
		uploadedKey = aws.ToString(in.Key)
		return nil
	}, func(in *s3.DeleteObjectInput) error {
		deletedKey = aws.ToString(in.Key)
		return nil
	})

	store := testStore()
	url, err := store.Upload(context.Background(), tempFile(t))
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), url))
	assert.Equal(t, uploadedKey, deletedKey)
}

func TestDelete_ForeignURL(t *testing.T) {
	withStubbedS3(t, nil, nil)

	store := testStore()
	err := store.Delete(context.Background(), "https://elsewhere.example/media/x")
	assert.ErrorIs(t, err, common.ErrMediaOperation)
}
