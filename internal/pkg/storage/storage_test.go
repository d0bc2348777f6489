package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestReadImage(t *testing.T) {
	data, mime, err := ReadImage(bytes.NewReader(pngBytes(t)), MaxImageSize)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.NotEmpty(t, data)
	assert.Equal(t, ".png", ExtensionFor(mime))

	_, _, err = ReadImage(strings.NewReader(""), MaxImageSize)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, _, err = ReadImage(strings.NewReader("plain text, not an image"), MaxImageSize)
	assert.ErrorIs(t, err, ErrInvalidMimeType)

	_, _, err = ReadImage(bytes.NewReader(pngBytes(t)), 8)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	key := "spaces/abc/image.png"
	require.NoError(t, s.Put(ctx, key, bytes.NewReader(pngBytes(t)), "image/png"))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:8080/uploads/spaces/abc/image.png", s.GetURL(key))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))

	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	assert.Error(t, s.Put(context.Background(), "../escape.txt", strings.NewReader("x"), "text/plain"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("boom")))
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(Config{Driver: "s3"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(Config{Driver: "ftp"})
	assert.Error(t, err)
}

func TestS3GetURL(t *testing.T) {
	s := &S3Storage{bucket: "walls", endpoint: "http://minio:9000"}
	assert.Equal(t, "http://minio:9000/walls/a.jpg", s.GetURL("a.jpg"))

	s.publicURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/a.jpg", s.GetURL("a.jpg"))

	assert.Equal(t, "https://walls.s3.amazonaws.com/a.jpg", (&S3Storage{bucket: "walls"}).GetURL("a.jpg"))
}
