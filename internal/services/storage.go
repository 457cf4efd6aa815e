package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Extensions of the image types accepted for upload, keyed by sniffed
// content type.
var uploadTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Storage persists an uploaded object and returns the URL clients use to
// fetch it.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type StoredUpload struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	SHA256      string `json:"sha256"`
}

// SaveUpload reads at most maxBytes from body, checks that it is an accepted
// image type and stores it under a fresh random key.
func SaveUpload(ctx context.Context, store Storage, body io.Reader, maxBytes int64) (StoredUpload, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return StoredUpload{}, ErrInternal("Error reading upload", err)
	}
	if len(data) == 0 {
		return StoredUpload{}, ErrValidation("file is empty")
	}
	if int64(len(data)) > maxBytes {
		return StoredUpload{}, ErrValidation(fmt.Sprintf("file exceeds %d bytes", maxBytes))
	}
	contentType := http.DetectContentType(data)
	ext, ok := uploadTypes[contentType]
	if !ok {
		return StoredUpload{}, ErrValidation("only jpeg, png, gif and webp images are accepted")
	}
	key := uuid.NewString() + ext
	url, err := store.Put(ctx, key, contentType, data)
	if err != nil {
		return StoredUpload{}, ErrInternal("Error storing upload", err)
	}
	sum := sha256.Sum256(data)
	return StoredUpload{
		URL:         url,
		Key:         key,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		SHA256:      hex.EncodeToString(sum[:]),
	}, nil
}

// LocalStorage writes uploads below Dir; URLPrefix is where the server
// exposes that directory.
type LocalStorage struct {
	Dir       string
	URLPrefix string
}

func (s LocalStorage) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", err
	}
	target := filepath.Join(s.Dir, filepath.Base(key))
	tmp := target + ".part"
	if err := os.WriteFile(tmp, body, 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return path.Join("/", strings.Trim(s.URLPrefix, "/"), key), nil
}

type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage stores uploads in a bucket. With PublicBaseURL empty the
// returned URL is the relative key path.
type S3Storage struct {
	client        s3PutAPI
	Bucket        string
	PublicBaseURL string
}

// NewS3Storage builds a client from the default AWS credential chain.
func NewS3Storage(ctx context.Context, bucket, publicBaseURL string) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Storage{client: s3.NewFromConfig(cfg), Bucket: bucket, PublicBaseURL: publicBaseURL}, nil
}

func (s *S3Storage) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	objectKey := "uploads/" + key
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", objectKey, err)
	}
	if s.PublicBaseURL == "" {
		return "/" + objectKey, nil
	}
	return strings.TrimRight(s.PublicBaseURL, "/") + "/" + objectKey, nil
}
