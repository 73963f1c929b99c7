package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// StatementStore archives uploaded statement files in S3. Clients upload
// directly via presigned PUT URLs; the API then downloads the object for
// parsing, so large files never stream through the request body.
type StatementStore struct {
	client *s3.Client
	bucket string
}

// NewStatementStore creates the store. A non-empty endpoint switches to
// path-style addressing with static credentials, for LocalStack and
// S3-compatible services in development.
func NewStatementStore(bucket, region, endpoint string) (*StatementStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}
	if region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}

	ctx := context.Background()

	if endpoint != "" {
		cfg, err := config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		return &StatementStore{client: client, bucket: bucket}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &StatementStore{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// StatementKey builds the object key for a user's statement upload:
// statements/{userID}/{timestamp}-{uniqueID}-{sanitized name}.
func (s *StatementStore) StatementKey(userID, filename string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("userID cannot be empty")
	}
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	ext := filepath.Ext(filename)
	base := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.TrimSuffix(filename, ext))

	return fmt.Sprintf("statements/%s/%d-%s-%s%s",
		userID, time.Now().UTC().Unix(), uuid.New().String()[:8], base, ext), nil
}

// KeyOwnedBy reports whether an object key sits under a user's prefix. Keys
// are user-scoped; a caller must never read another user's statements.
func KeyOwnedBy(key, userID string) bool {
	return strings.HasPrefix(key, fmt.Sprintf("statements/%s/", userID))
}

// PresignUpload returns a presigned PUT URL for a statement object.
func (s *StatementStore) PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key cannot be empty")
	}
	if expiry <= 0 {
		return "", fmt.Errorf("expiry must be positive")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := s3.NewPresignClient(s.client).PresignPutObject(ctx, input, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, nil
}

// Download fetches a statement object for parsing.
func (s *StatementStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download statement: %w", err)
	}
	return out.Body, nil
}
