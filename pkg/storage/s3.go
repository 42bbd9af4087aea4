package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Store implements Store on Amazon S3 or an S3-compatible endpoint.
type S3Store struct {
	client s3iface.S3API
}

// NewS3Store creates an S3 client from configuration. Static credentials are
// used when both keys are set, otherwise the default AWS chain applies.
func NewS3Store(c Config) (*S3Store, error) {
	awsCfg := &aws.Config{Region: aws.String(c.Region)}
	if c.AccessKey != "" && c.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(c.AccessKey, c.SecretKey, "")
	}
	if c.Endpoint != "" {
		awsCfg.Endpoint = aws.String(c.Endpoint)
	}
	if c.PathStyle {
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("storage: create aws session: %w", err)
	}
	return NewS3StoreWithClient(s3.New(sess)), nil
}

// NewS3StoreWithClient wraps an existing S3 API client.
func NewS3StoreWithClient(client s3iface.S3API) *S3Store {
	return &S3Store{client: client}
}

// Get downloads an object body.
func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == s3.ErrCodeNoSuchBucket) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, key)
		}
		return nil, fmt.Errorf("storage: get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read s3://%s/%s: %w", bucket, key, err)
	}
	return body, nil
}

// Put uploads an object body.
func (s *S3Store) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("storage: put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
