package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ntarasov/cloudpipe/internal/ports"
	"github.com/ntarasov/cloudpipe/pkg/metrics"
)

// Проверка, что Storage удовлетворяет порту ObjectStorage.
var _ ports.ObjectStorage = (*Storage)(nil)

// api — минимальный контракт над S3-клиентом.
type api interface {
	CreateBucket(ctx context.Context, in *awss3.CreateBucketInput, optFns ...func(*awss3.Options)) (*awss3.CreateBucketOutput, error)
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
}

// Storage — объектное хранилище поверх S3. Для LocalStack включается
// path-style адресация (virtual-host bucket'ы эмулятор не обслуживает).
type Storage struct {
	client api
}

// NewClient — S3-клиент; непустой endpoint направляет запросы в эмулятор.
func NewClient(cfg aws.Config, endpoint string) *awss3.Client {
	return awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

func New(client api) *Storage { return &Storage{client: client} }

// EnsureBucket — идемпотентное создание bucket'а.
func (s *Storage) EnsureBucket(ctx context.Context, bucket string) error {
	metrics.StorageOps.WithLabelValues("ensure_bucket").Inc()

	_, err := s.client.CreateBucket(ctx, &awss3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		metrics.StorageErrors.Inc()
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

func (s *Storage) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	metrics.StorageOps.WithLabelValues("put").Inc()

	in := &awss3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		metrics.StorageErrors.Inc()
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	metrics.StorageOps.WithLabelValues("get").Inc()

	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, ports.ErrObjectNotFound)
		}
		metrics.StorageErrors.Inc()
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		metrics.StorageErrors.Inc()
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// List — все ключи bucket'а с префиксом; постранично через continuation token.
func (s *Storage) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	metrics.StorageOps.WithLabelValues("list").Inc()

	var keys []string
	var token *string
	for {
		in := &awss3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			ContinuationToken: token,
		}
		if prefix != "" {
			in.Prefix = aws.String(prefix)
		}

		out, err := s.client.ListObjectsV2(ctx, in)
		if err != nil {
			var noBucket *types.NoSuchBucket
			if errors.As(err, &noBucket) {
				return nil, fmt.Errorf("s3://%s: %w", bucket, ports.ErrObjectNotFound)
			}
			metrics.StorageErrors.Inc()
			return nil, fmt.Errorf("list s3://%s: %w", bucket, err)
		}

		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}
