//go:build integration

package sqs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ntarasov/cloudpipe/internal/awsx"
	sqsqueue "github.com/ntarasov/cloudpipe/internal/queue/sqs"
	"github.com/ntarasov/cloudpipe/internal/testutil"
)

func startQueue(t *testing.T, visibility time.Duration) (context.Context, *sqsqueue.Queue) {
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

	client := sqsqueue.NewClient(awsCfg, ls.Endpoint)
	url, err := sqsqueue.EnsureQueue(ctx, client, testutil.UniqueName("events-itest"), visibility)
	require.NoError(t, err)

	return ctx, sqsqueue.New(client, url, visibility)
}

// Отправка → получение → удаление: после Delete сообщение не приходит повторно
func TestSQS_SendReceiveDelete_TC(t *testing.T) {
	t.Parallel()

	ctx, q := startQueue(t, 2*time.Second)

	msgID, err := q.Send(ctx, []byte(`{"event_id":"evt-1"}`))
	require.NoError(t, err)
	require.NotEmpty(t, msgID)

	msgs, err := q.Receive(ctx, 10, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, `{"event_id":"evt-1"}`, string(msgs[0].Body))
	require.NotEmpty(t, msgs[0].ReceiptHandle)

	require.NoError(t, q.Delete(ctx, msgs[0].ReceiptHandle))

	// После удаления сообщение не возвращается даже после visibility timeout
	time.Sleep(3 * time.Second)
	again, err := q.Receive(ctx, 10, 1*time.Second)
	require.NoError(t, err)
	require.Empty(t, again)
}

// Необработанное сообщение возвращается после visibility timeout с новым receipt handle
func TestSQS_RedeliveryAfterVisibilityTimeout_TC(t *testing.T) {
	t.Parallel()

	ctx, q := startQueue(t, 2*time.Second)

	_, err := q.Send(ctx, []byte("retry-me"))
	require.NoError(t, err)

	first, err := q.Receive(ctx, 10, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Пока сообщение скрыто — его не видно
	hidden, err := q.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Empty(t, hidden)

	// После истечения visibility timeout сообщение приходит повторно
	time.Sleep(3 * time.Second)
	second, err := q.Receive(ctx, 10, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, "retry-me", string(second[0].Body))
	require.NotEqual(t, first[0].ReceiptHandle, second[0].ReceiptHandle,
		"receipt handle must be new for each delivery")
}
