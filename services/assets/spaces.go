package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

// SpacesClient stores course media on an S3-compatible asset host
type SpacesClient struct {
	s3Client s3iface.S3API
	bucket   string
	endpoint string
	cdnURL   string
}

// SpacesConfig holds configuration for Spaces client
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string // host without scheme, e.g. nyc3.digitaloceanspaces.com
	CDNURL    string
}

// NewSpacesClient creates a new Spaces client
func NewSpacesClient(config SpacesConfig) (*SpacesClient, error) {
	awsCfg := &aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Region: aws.String(config.Region),
	}
	if config.Endpoint != "" {
		awsCfg.Endpoint = aws.String("https://" + strings.TrimPrefix(config.Endpoint, "https://"))
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset host session: %w", err)
	}

	return newSpacesClient(s3.New(sess), config), nil
}

func newSpacesClient(api s3iface.S3API, config SpacesConfig) *SpacesClient {
	endpoint := strings.TrimPrefix(config.Endpoint, "https://")
	if endpoint == "" {
		endpoint = fmt.Sprintf("s3.%s.amazonaws.com", config.Region)
	}
	return &SpacesClient{
		s3Client: api,
		bucket:   config.Bucket,
		endpoint: endpoint,
		cdnURL:   strings.TrimSuffix(config.CDNURL, "/"),
	}
}

// UploadFile uploads an object with public-read access and returns its public URL
func (s *SpacesClient) UploadFile(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return s.GetFileURL(key), nil
}

// UploadImage stores an image under prefix with a generated key. Only
// common web image formats are accepted.
func (s *SpacesClient) UploadImage(ctx context.Context, prefix, filename string, data []byte) (string, error) {
	contentType := ImageContentType(filename)
	if contentType == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, filepath.Ext(filename))
	}
	return s.UploadFile(ctx, GenerateKey(prefix, filename), bytes.NewReader(data), contentType)
}

// DeleteFile deletes an object
func (s *SpacesClient) DeleteFile(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DeleteByURL deletes the object behind a URL previously returned by UploadFile
func (s *SpacesClient) DeleteByURL(ctx context.Context, url string) error {
	key, ok := s.KeyFromURL(url)
	if !ok {
		return fmt.Errorf("url %q does not belong to bucket %s", url, s.bucket)
	}
	return s.DeleteFile(ctx, key)
}

// GetFileURL returns the public URL for a key
func (s *SpacesClient) GetFileURL(key string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}

func (s *SpacesClient) KeyFromURL(url string) (string, bool) {
	for _, base := range []string{s.cdnURL, fmt.Sprintf("https://%s.%s", s.bucket, s.endpoint)} {
		if base != "" && strings.HasPrefix(url, base+"/") {
			return strings.TrimPrefix(url, base+"/"), true
		}
	}
	return "", false
}

// GenerateKey generates a unique key for file storage
func GenerateKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.New().String(), ext)
}

// ImageContentType returns the content type for an image filename, or ""
// when the extension is not an accepted image format.
func ImageContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".avif":
		return "image/avif"
	default:
		return ""
	}
}
