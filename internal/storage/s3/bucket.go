package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxObjectSize caps how much of an object is read into memory.
const MaxObjectSize = 32 << 20

var ErrNoBucket = errors.New("s3: no bucket configured")

// getter is the part of *s3.Client in use; tests stub it.
type getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Bucket reads objects from one bucket.
type Bucket struct {
	api  getter
	name string
}

// Open builds a client for cfg. It does not contact the endpoint.
func Open(ctx context.Context, cfg Config) (*Bucket, error) {
	if !cfg.Configured() {
		return nil, ErrNoBucket
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &Bucket{api: client, name: cfg.Bucket}, nil
}

// ReadObject returns the body of key, refusing objects over MaxObjectSize.
func (b *Bucket) ReadObject(ctx context.Context, key string) ([]byte, error) {
	out, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: get %s/%s: %w", b.name, key, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > MaxObjectSize {
		return nil, fmt.Errorf("s3: %s/%s is %d bytes, limit %d", b.name, key, *out.ContentLength, MaxObjectSize)
	}
	body, err := io.ReadAll(io.LimitReader(out.Body, MaxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("s3: read %s/%s: %w", b.name, key, err)
	}
	if len(body) > MaxObjectSize {
		return nil, fmt.Errorf("s3: %s/%s exceeds %d bytes", b.name, key, MaxObjectSize)
	}
	return body, nil
}
