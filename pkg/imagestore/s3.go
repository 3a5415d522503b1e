// Package imagestore hosts artwork images in S3-compatible object storage
// served through a CDN.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Folder is the key prefix of every artwork image.
const Folder = "arthemis/artworks"

// Transform is the delivery transform appended to every image URL: fit
// within 1200x1200 with automatic format and quality.
const Transform = "w=1200&h=1200&fit=max&auto=format,compress"

// Config holds the bucket and CDN settings.
type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	CDNBaseURL      string
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type deleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store uploads and deletes images in one bucket.
type Store struct {
	uploader uploader
	objects  deleter
	bucket   string
	baseURL  string
}

// New creates a Store from cfg. An empty Endpoint uses AWS itself.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("imagestore: bucket must be set")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.CDNBaseURL
	if baseURL == "" {
		baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return newStore(manager.NewUploader(client), client, cfg.Bucket, baseURL), nil
}

func newStore(up uploader, objects deleter, bucket, baseURL string) *Store {
	return &Store{
		uploader: up,
		objects:  objects,
		bucket:   bucket,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// KeyFor returns the object key of an artwork image.
func KeyFor(artworkID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return path.Join(Folder, artworkID, name)
}

// URLFor returns the public, transformed URL of key.
func (s *Store) URLFor(key string) string {
	return s.baseURL + "/" + key + "?" + Transform
}

// keyFromURL extracts the object key of a URL produced by URLFor.
func (s *Store) keyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/" + Folder + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, s.baseURL+"/")
	if i := strings.IndexByte(key, '?'); i >= 0 {
		key = key[:i]
	}
	return key, true
}

// Owns reports whether url is an image hosted by this store.
func (s *Store) Owns(url string) bool {
	_, ok := s.keyFromURL(url)
	return ok
}

// Upload stores the image under the artwork's folder, overwriting an object
// of the same name, and returns its URL.
func (s *Store) Upload(ctx context.Context, artworkID, filename, contentType string, body io.Reader, size int64) (string, error) {
	key := KeyFor(artworkID, filename)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", key, s.bucket, err)
	}
	return s.URLFor(key), nil
}

// Delete removes the object behind url. URLs not owned by the store are ignored.
func (s *Store) Delete(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}
	_, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}
