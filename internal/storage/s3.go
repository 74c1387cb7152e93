package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// s3API is the subset of the S3 client the store calls.
type s3API interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
	DeleteObjectsWithContext(ctx aws.Context, input *s3.DeleteObjectsInput, opts ...request.Option) (*s3.DeleteObjectsOutput, error)
}

// S3Config configures the S3 store. Endpoint and PathStyle target MinIO
// and other S3-compatible servers.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string //nolint:gosec // G117: object storage credential config
	PublicURL string
	PathStyle bool
}

type S3Store struct {
	client    s3API
	publicURL string
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.PathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("storage.NewS3Store: session: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.Endpoint
	}

	return newS3Store(s3.New(sess), publicURL), nil
}

func newS3Store(client s3API, publicURL string) *S3Store {
	return &S3Store{client: client, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload writes the object and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, bucket, objectPath, contentType string, body io.ReadSeeker) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(objectPath),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage.S3Store.Upload: %w", err)
	}

	return s.PublicURL(bucket, objectPath), nil
}

// PublicURL is "{publicURL}/{bucket}/{path}".
func (s *S3Store) PublicURL(bucket, objectPath string) string {
	return s.publicURL + "/" + bucket + "/" + strings.TrimLeft(objectPath, "/")
}

// Remove deletes the objects in one batch request. Missing objects are not
// an error.
func (s *S3Store) Remove(ctx context.Context, bucket string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	objects := make([]*s3.ObjectIdentifier, len(paths))
	for i, p := range paths {
		objects[i] = &s3.ObjectIdentifier{Key: aws.String(p)}
	}

	out, err := s.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("storage.S3Store.Remove: %w", err)
	}
	if len(out.Errors) > 0 {
		e := out.Errors[0]
		return fmt.Errorf("storage.S3Store.Remove: %s: %s", aws.StringValue(e.Key), aws.StringValue(e.Message))
	}

	return nil
}
