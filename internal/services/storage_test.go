package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSaveUploadLocal(t *testing.T) {
	dir := t.TempDir()
	store := LocalStorage{Dir: dir, URLPrefix: "/uploads/"}

	out, err := SaveUpload(context.Background(), store, bytes.NewReader(pngHeader), 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.ContentType)
	assert.True(t, strings.HasPrefix(out.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(out.Key, ".png"))
	assert.Len(t, out.SHA256, 64)

	data, err := os.ReadFile(filepath.Join(dir, out.Key))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestSaveUploadRejects(t *testing.T) {
	store := LocalStorage{Dir: t.TempDir(), URLPrefix: "/uploads"}
	cases := map[string][]byte{
		"empty":     {},
		"too big":   append(append([]byte{}, pngHeader...), make([]byte, 64)...),
		"not image": []byte("#!/bin/sh\necho hi\n"),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := SaveUpload(context.Background(), store, bytes.NewReader(body), 32)
			assert.Equal(t, http.StatusBadRequest, StatusOf(err))
		})
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	return &s3.PutObjectOutput{}, f.err
}

func TestS3StoragePut(t *testing.T) {
	client := &fakeS3{}
	store := &S3Storage{client: client, Bucket: "site", PublicBaseURL: "https://cdn.example.com/"}

	url, err := store.Put(context.Background(), "a.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/a.png", url)
	assert.Equal(t, "site", *client.input.Bucket)
	assert.Equal(t, "uploads/a.png", *client.input.Key)
	assert.Equal(t, "image/png", *client.input.ContentType)
	assert.Equal(t, int64(len(pngHeader)), *client.input.ContentLength)
}

func TestS3StoragePutError(t *testing.T) {
	store := &S3Storage{client: &fakeS3{err: errors.New("denied")}, Bucket: "site"}
	_, err := SaveUpload(context.Background(), store, bytes.NewReader(pngHeader), 1024)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}
