package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.input = input
	f.body = string(data)
	return &manager.UploadOutput{Key: input.Key}, nil
}

func TestObjectKey(t *testing.T) {
	key := objectKey("products/", "front view?.jpg")

	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, "-front_view_.jpg"))
	assert.NotEqual(t, key, objectKey("products/", "front view?.jpg"))
}

func TestS3Store_Store(t *testing.T) {
	up := &fakeUploader{}
	store := &S3Store{uploader: up, bucket: "catalog", prefix: "products"}

	key, err := store.Store(context.Background(), strings.NewReader("jpeg"), "a.jpg", "image/jpeg")
	require.NoError(t, err)

	require.NotNil(t, up.input)
	assert.Equal(t, "catalog", aws.ToString(up.input.Bucket))
	assert.Equal(t, key, aws.ToString(up.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(up.input.ContentType))
	assert.Equal(t, "jpeg", up.body)
}

func TestS3Store_StoreError(t *testing.T) {
	store := &S3Store{uploader: &fakeUploader{err: errors.New("denied")}, bucket: "catalog"}

	_, err := store.Store(context.Background(), strings.NewReader("x"), "a.jpg", "image/jpeg")
	assert.ErrorContains(t, err, "denied")
}

func TestLocalStore_Store(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "products")
	require.NoError(t, err)

	key, err := store.Store(context.Background(), strings.NewReader("png"), "b.png", "image/png")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}
