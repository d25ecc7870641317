package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured is returned by a nil or unconfigured storage.
var ErrNotConfigured = errors.New("object storage not configured")

// Provider represents the S3-compatible storage provider
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderCustom Provider = "custom" // MinIO, Wasabi, R2 ...
)

// Config holds configuration for S3-compatible storage
type Config struct {
	Provider        Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	// Endpoint is required for ProviderCustom, e.g. "https://s3.eu-central-1.wasabisys.com".
	Endpoint string
	// PublicBaseURL, when set, prefixes object keys in returned URLs (CDN).
	PublicBaseURL string
}

// Object is a stored blob: a durable URL plus the key needed to delete it.
type Object struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type putDeleter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage uploads and deletes objects in a single bucket.
type S3Storage struct {
	api putDeleter
	cfg Config
}

// NewS3Storage builds the client for AWS or a custom S3 endpoint.
func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	switch cfg.Provider {
	case ProviderCustom:
		if cfg.Endpoint == "" {
			return nil, errors.New("storage: custom provider requires S3_ENDPOINT")
		}
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	default:
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Storage{api: client, cfg: cfg}, nil
}

// Put stores body under key and returns its public URL.
func (s *S3Storage) Put(ctx context.Context, key, contentType string, body []byte) (*Object, error) {
	if s == nil {
		return nil, ErrNotConfigured
	}
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}
	return &Object{URL: s.URL(key), Key: key}, nil
}

// Delete removes key. Deleting a missing key is not an error on S3.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if s == nil {
		return ErrNotConfigured
	}
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// URL returns the address clients use to fetch key.
func (s *S3Storage) URL(key string) string {
	key = strings.TrimLeft(key, "/")
	switch {
	case s.cfg.PublicBaseURL != "":
		return s.cfg.PublicBaseURL + "/" + key
	case s.cfg.Provider == ProviderCustom:
		return fmt.Sprintf("%s/%s/%s", s.cfg.Endpoint, s.cfg.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}
