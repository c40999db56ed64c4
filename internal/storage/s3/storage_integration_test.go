//go:build integration

package s3_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ntarasov/cloudpipe/internal/awsx"
	"github.com/ntarasov/cloudpipe/internal/ports"
	s3storage "github.com/ntarasov/cloudpipe/internal/storage/s3"
	"github.com/ntarasov/cloudpipe/internal/testutil"
)

func startStorage(t *testing.T) (context.Context, *s3storage.Storage, string) {
	t.Helper()

	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancelStart)

	ls, stop, err := testutil.StartLocalStackTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)

	awsCfg, err := awsx.LoadConfig(ctx, "us-east-1", "test", "test")
	require.NoError(t, err)

	store := s3storage.New(s3storage.NewClient(awsCfg, ls.Endpoint))
	bucket := testutil.UniqueName("itest-bucket")
	require.NoError(t, store.EnsureBucket(ctx, bucket))

	return ctx, store, bucket
}

// Put → Get: объект читается обратно байт в байт
func TestS3_PutGet_TC(t *testing.T) {
	t.Parallel()

	ctx, store, bucket := startStorage(t)

	body := []byte("employee_id,name\n1,Alice\n")
	require.NoError(t, store.Put(ctx, bucket, "raw/employees.csv", body, "text/csv"))

	got, err := store.Get(ctx, bucket, "raw/employees.csv")
	require.NoError(t, err)
	require.Equal(t, body, got)
}

// Get несуществующего ключа — ports.ErrObjectNotFound
func TestS3_GetMissing_NotFound_TC(t *testing.T) {
	t.Parallel()

	ctx, store, bucket := startStorage(t)

	_, err := store.Get(ctx, bucket, "raw/missing.csv")
	require.Error(t, err)
	require.True(t, errors.Is(err, ports.ErrObjectNotFound), "want ErrObjectNotFound, got %v", err)
}

// List фильтрует по префиксу
func TestS3_ListByPrefix_TC(t *testing.T) {
	t.Parallel()

	ctx, store, bucket := startStorage(t)

	require.NoError(t, store.Put(ctx, bucket, "raw/a.csv", []byte("a"), "text/csv"))
	require.NoError(t, store.Put(ctx, bucket, "raw/b.csv", []byte("b"), "text/csv"))
	require.NoError(t, store.Put(ctx, bucket, "processed/c.csv", []byte("c"), "text/csv"))

	raw, err := store.List(ctx, bucket, "raw/")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"raw/a.csv", "raw/b.csv"}, raw)

	all, err := store.List(ctx, bucket, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

// Повторный EnsureBucket того же бакета — не ошибка
func TestS3_EnsureBucket_Idempotent_TC(t *testing.T) {
	t.Parallel()

	ctx, store, bucket := startStorage(t)

	require.NoError(t, store.EnsureBucket(ctx, bucket))
}
