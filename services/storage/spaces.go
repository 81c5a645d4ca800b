package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// SpacesConfig holds configuration for the DigitalOcean Spaces store
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string // e.g. nyc3.digitaloceanspaces.com
	CDNURL    string // optional public host
	Prefix    string // key prefix, e.g. avatars
}

// SpacesFileStore stores files in an S3 compatible bucket with public-read ACL
type SpacesFileStore struct {
	s3Client *s3.S3
	config   SpacesConfig
}

// NewSpacesFileStore creates a new Spaces client
func NewSpacesFileStore(config SpacesConfig) (*SpacesFileStore, error) {
	if config.Bucket == "" || config.Endpoint == "" {
		return nil, fmt.Errorf("spaces bucket and endpoint are required")
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String("https://" + strings.TrimPrefix(config.Endpoint, "https://")),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &SpacesFileStore{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

func (s *SpacesFileStore) objectKey(key string) string {
	if s.config.Prefix == "" {
		return key
	}
	return s.config.Prefix + "/" + key
}

// FileURL returns the public URL for an object key
func (s *SpacesFileStore) FileURL(objectKey string) string {
	if s.config.CDNURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.CDNURL, "/"), objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.config.Bucket, strings.TrimPrefix(s.config.Endpoint, "https://"), objectKey)
}

// Save uploads the file to Spaces
func (s *SpacesFileStore) Save(ctx context.Context, key string, data io.ReadSeeker, contentType string) (string, error) {
	objectKey := s.objectKey(key)

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(objectKey),
		Body:        data,
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.FileURL(objectKey), nil
}

// Delete removes the object behind a URL returned by Save
func (s *SpacesFileStore) Delete(ctx context.Context, url string) error {
	base := s.FileURL("")
	if !strings.HasPrefix(url, base) {
		return ErrForeignURL
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(strings.TrimPrefix(url, base)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
