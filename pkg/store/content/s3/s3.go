// Package s3 implements ContentStore on Amazon S3 or S3-compatible storage.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// S3ContentStore implements content.ContentStore on an S3 bucket.
//
// Object keys are "<keyPrefix><contentID>". Content blobs here are document
// bodies (typically kilobytes), so whole-object PutObject/GetObject is the
// right granularity; there is no multipart handling.
//
// Thread Safety:
// The S3 client is safe for concurrent use. Concurrent writes to the same
// ContentID are last-write-wins under S3's consistency model.
type S3ContentStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// Config contains configuration for the S3 content store.
type Config struct {
	// Client is the configured S3 client.
	Client *s3.Client

	// Bucket is the S3 bucket name. The bucket must already exist.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys, e.g.
	// "quantafs/content/".
	KeyPrefix string
}

// NewS3ContentStore verifies bucket access and returns a store over it.
func NewS3ContentStore(ctx context.Context, config Config) (*S3ContentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	_, err := config.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(config.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", config.Bucket, err)
	}

	return &S3ContentStore{
		client:    config.Client,
		bucket:    config.Bucket,
		keyPrefix: config.KeyPrefix,
	}, nil
}

func (s *S3ContentStore) key(id node.ContentID) string {
	return s.keyPrefix + string(id)
}

// Write stores data under id, replacing any previous content.
func (s *S3ContentStore) Write(ctx context.Context, id node.ContentID, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to write content %s: %w", id, err)
	}
	return nil
}

// Read returns the full content for id.
func (s *S3ContentStore) Read(ctx context.Context, id node.ContentID) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, &node.StoreError{Code: node.ErrNotFound, Message: "content not found", Path: string(id)}
		}
		return nil, fmt.Errorf("failed to read content %s: %w", id, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read content body %s: %w", id, err)
	}
	return data, nil
}

// Delete removes the content for id.
//
// S3 DeleteObject succeeds for missing keys, so existence is checked first to
// honor the ErrNotFound contract.
func (s *S3ContentStore) Delete(ctx context.Context, id node.ContentID) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return &node.StoreError{Code: node.ErrNotFound, Message: "content not found", Path: string(id)}
		}
		return fmt.Errorf("failed to check content %s: %w", id, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete content %s: %w", id, err)
	}
	return nil
}

// Healthcheck verifies the bucket is still reachable.
func (s *S3ContentStore) Healthcheck(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q unreachable: %w", s.bucket, err)
	}
	return nil
}

// Close is a no-op; the S3 client holds no local resources.
func (s *S3ContentStore) Close() error {
	return nil
}
