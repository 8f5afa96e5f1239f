package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"cassa/internal/blob"
)

// API is the subset of the S3 client the store needs.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store keeps each blob as one object named prefix+key plus the format's
// extension.
type Store struct {
	api    API
	bucket string
	prefix string
	format blob.Format
}

var _ blob.Store = (*Store)(nil)

func New(api API, bucket, prefix string, format blob.Format) *Store {
	return &Store{api: api, bucket: bucket, prefix: prefix, format: format}
}

// Options configures NewClient.
type Options struct {
	Region   string
	Endpoint string // S3-compatible endpoint, enables path-style addressing
}

// NewClient builds an S3 client from the default credential chain.
func NewClient(ctx context.Context, opts Options) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *Store) objectKey(key string) string {
	return s.prefix + key + s.format.Extension
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := blob.ValidateKey(key); err != nil {
		return nil, false, err
	}
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3 get %s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3 read %s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	return data, true, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := blob.ValidateKey(key); err != nil {
		return err
	}
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if s.format.ContentType != "" {
		in.ContentType = aws.String(s.format.ContentType)
	}
	_, err := s.api.PutObject(ctx, in)
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	return nil
}
