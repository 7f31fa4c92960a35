package storage

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

func TestDecodeDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(pngHeader))

	img, err := DecodeDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, []byte(pngHeader), img.Data)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, "image/png", img.ContentType)

	// the declared subtype does not decide the stored type
	img, err = DecodeDataURI("data:image/html;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, "image/png", img.ContentType)

	for _, bad := range []string{
		"",
		"not-a-uri",
		"data:text/plain;base64," + payload,
		"data:image/png;base64,%%%",
		"data:image/;base64," + payload,
	} {
		_, err := DecodeDataURI(bad)
		assert.ErrorIs(t, err, ErrInvalidDataURI, bad)
	}
}

func TestDecodeDataURIRejectsNonImages(t *testing.T) {
	script := base64.StdEncoding.EncodeToString([]byte("<html><script>alert(document.cookie)</script></html>"))
	_, err := DecodeDataURI("data:image/html;base64," + script)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = DecodeDataURI("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestDecodeDataURIRejectsOversizedImages(t *testing.T) {
	data := append([]byte(pngHeader), make([]byte, MaxImageSize)...)
	_, err := DecodeDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString(data))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = DetectImage(data)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestDetectImage(t *testing.T) {
	img, err := DetectImage([]byte(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, "image/png", img.ContentType)

	_, err = DetectImage([]byte("plain text"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	_, err = DetectImage(nil)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestFilesystemStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir, "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, ".PNG", "image/png", []byte("data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, ImagePrefix+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "/media/"+key, store.URL(key))

	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), content)

	require.NoError(t, store.Delete(ctx, key))
	assert.ErrorIs(t, store.Delete(ctx, key), ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "../etc/passwd"), ErrNotFound)
	assert.Equal(t, "", store.URL(""))
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func TestS3Store(t *testing.T) {
	client := new(mockS3)
	store := NewS3StoreWithClient(client, "bucket", "", "eu-west-1")
	ctx := context.Background()

	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "bucket" && aws.ToString(in.ContentType) == "image/png"
	})).Return(nil).Once()

	key, err := store.Save(ctx, "png", "image/png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/"+key, store.URL(key))

	client.On("DeleteObject", ctx, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == key
	})).Return(nil).Once()
	require.NoError(t, store.Delete(ctx, key))

	client.AssertExpectations(t)

	minio := NewS3StoreWithClient(client, "bucket", "http://minio:9000/", "")
	assert.Equal(t, "http://minio:9000/bucket/"+key, minio.URL(key))
}
