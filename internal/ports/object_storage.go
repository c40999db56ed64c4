package ports

import (
	"context"
	"errors"
)

// ErrObjectNotFound — объект или bucket отсутствует в хранилище.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage — контракт объектного хранилища (S3 или LocalStack).
type ObjectStorage interface {
	// EnsureBucket — создать bucket, если его ещё нет (идемпотентно).
	EnsureBucket(ctx context.Context, bucket string) error

	// Put — загрузить объект.
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error

	// Get — скачать объект целиком; ErrObjectNotFound, если объекта нет.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// List — ключи объектов bucket'а с заданным префиксом.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}
