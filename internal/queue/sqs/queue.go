package sqs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/ntarasov/cloudpipe/internal/ports"
)

// Проверка, что Queue удовлетворяет порту MessageQueue.
var _ ports.MessageQueue = (*Queue)(nil)

// api — минимальный контракт над SQS-клиентом (для подмены в тестах).
type api interface {
	SendMessage(ctx context.Context, in *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error)
}

// Queue — реализация MessageQueue поверх SQS (реальный сервис или
// LocalStack — разница только в endpoint клиента).
type Queue struct {
	client   api
	queueURL string
	// visibility переопределяет visibility timeout очереди на уровне
	// ReceiveMessage; 0 — использовать настройку самой очереди.
	visibility time.Duration
}

// NewClient — SQS-клиент; непустой endpoint направляет запросы в эмулятор.
func NewClient(cfg aws.Config, endpoint string) *awssqs.Client {
	return awssqs.NewFromConfig(cfg, func(o *awssqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

func New(client api, queueURL string, visibility time.Duration) *Queue {
	return &Queue{client: client, queueURL: queueURL, visibility: visibility}
}

// EnsureQueue — создаёт очередь (идемпотентно) и возвращает её URL.
// visibility задаёт VisibilityTimeout очереди.
func EnsureQueue(ctx context.Context, client *awssqs.Client, name string, visibility time.Duration) (string, error) {
	in := &awssqs.CreateQueueInput{QueueName: aws.String(name)}
	if visibility > 0 {
		in.Attributes = map[string]string{
			"VisibilityTimeout": strconv.Itoa(int(visibility / time.Second)),
		}
	}
	out, err := client.CreateQueue(ctx, in)
	if err != nil {
		return "", fmt.Errorf("create queue %s: %w", name, err)
	}
	return aws.ToString(out.QueueUrl), nil
}

func (q *Queue) Send(ctx context.Context, body []byte) (string, error) {
	out, err := q.client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return "", fmt.Errorf("sqs send: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

// Receive — long-poll до wait (SQS ограничивает его 20 секундами,
// а размер батча — 10 сообщениями).
func (q *Queue) Receive(ctx context.Context, max int, wait time.Duration) ([]ports.Message, error) {
	if max < 1 {
		max = 1
	}
	if max > 10 {
		max = 10
	}
	waitSec := int32(wait / time.Second)
	if waitSec < 0 {
		waitSec = 0
	}
	if waitSec > 20 {
		waitSec = 20
	}

	in := &awssqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(max),
		WaitTimeSeconds:     waitSec,
	}
	if q.visibility > 0 {
		in.VisibilityTimeout = int32(q.visibility / time.Second)
	}

	out, err := q.client.ReceiveMessage(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("sqs receive: %w", err)
	}

	msgs := make([]ports.Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, ports.Message{
			ID:            aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          []byte(aws.ToString(m.Body)),
		})
	}
	return msgs, nil
}

func (q *Queue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("sqs delete: %w", err)
	}
	return nil
}

// URL — адрес очереди (для логов и /health).
func (q *Queue) URL() string { return q.queueURL }
