package consumer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ntarasov/cloudpipe/internal/ports"
	"github.com/ntarasov/cloudpipe/pkg/metrics"
)

// Проверка, что Consumer удовлетворяет интерфейсу верхнего уровня (порт приложения).
var _ ports.MessageConsumer = (*Consumer)(nil)

// queue — минимальный контракт над источником сообщений,
// чтобы легко подменять его моками в тестах.
type queue interface {
	Receive(ctx context.Context, max int, wait time.Duration) ([]ports.Message, error)
	Delete(ctx context.Context, receiptHandle string) error
	Send(ctx context.Context, body []byte) (string, error)
}

// processor — зависимость на бизнес-логику,
// которая парсит/валидирует/применяет сообщение.
type processor interface {
	ProcessMessage(ctx context.Context, raw []byte) error
}

// Config — параметры цикла потребления.
type Config struct {
	QueueName      string
	MaxBatch       int           // сообщений за один Receive (1..10)
	WaitTime       time.Duration // long poll: сколько ждать сообщений в Receive
	ProcessTimeout time.Duration
	RetryInitial   time.Duration
	RetryMax       time.Duration
}

// Consumer — цикл явного подтверждения: получили, обработали, удалили.
// Неудалённое сообщение вернётся в очередь после visibility timeout,
// поэтому подтверждение строго ПОСЛЕ успешной обработки (at-least-once).
type Consumer struct {
	queue          queue
	dlq            queue // nil — невалидные сообщения просто удаляются
	service        processor
	log            ports.Logger
	queueName      string
	maxBatch       int
	waitTime       time.Duration
	processTimeout time.Duration
	retryInitial   time.Duration
	retryMax       time.Duration
	jitterRand     *rand.Rand
	closeOnce      sync.Once
}

// NewConsumer — конструктор. dlq может быть nil, если очередь
// недоставленных сообщений не настроена.
func NewConsumer(cfg Config, q ports.MessageQueue, dlq ports.MessageQueue, service processor, log ports.Logger) *Consumer {
	// Параметры по умолчанию (если не заданы в конфиге)
	batch := cfg.MaxBatch
	if batch <= 0 {
		batch = 10
	}

	wait := cfg.WaitTime
	if wait <= 0 {
		wait = 10 * time.Second
	}

	pt := cfg.ProcessTimeout
	if pt <= 0 {
		pt = 5 * time.Second
	}

	rInit := cfg.RetryInitial
	if rInit <= 0 {
		rInit = 1 * time.Second
	}

	rMax := cfg.RetryMax
	if rMax <= 0 {
		rMax = 30 * time.Second
	}

	c := &Consumer{
		queue:          q,
		service:        service,
		log:            log,
		queueName:      cfg.QueueName,
		maxBatch:       batch,
		waitTime:       wait,
		processTimeout: pt,
		retryInitial:   rInit,
		retryMax:       rMax,
		// jitterRand — источник случайности, чтобы рассинхронизировать экспоненциальный backoff.
		jitterRand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if dlq != nil {
		c.dlq = dlq
	}
	return c
}

// Run — основной цикл:
// 1) читаем пачку сообщений (long poll, без авто-подтверждения);
// 2) успешная обработка → Delete по receipt handle;
// 3) невалидные данные → в DLQ и Delete (пропускаем навсегда);
// 4) временная ошибка → без Delete (вернётся после visibility timeout, at-least-once).
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Infof(ctx, "queue consumer started queue=%s batch=%d wait=%s", c.queueName, c.maxBatch, c.waitTime)

	// Экспоненциальный backoff на ошибках Receive с equal-jitter
	retry := c.retryInitial

	for {
		msgs, recvErr := c.queue.Receive(ctx, c.maxBatch, c.waitTime)
		if recvErr != nil {
			// Если контекст отменен -> выходим
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Иначе - временная ошибка очереди/сети. Ожидаем и повторяем
			sleep := c.withJitterEqual(retry)
			c.log.Warnf(ctx, "receive failed: %v (will retry in %s)", recvErr, sleep)
			if !c.sleepWithBackoff(ctx, sleep) {
				return ctx.Err()
			}
			// nextBackoff возвращает следующее время ожидания повтора с учетом retryMax.
			retry = c.nextBackoff(retry)
			continue
		}

		// Успешный Receive -> сбрасываем интервал ожидания
		retry = c.retryInitial

		for i := range msgs {
			msg := &msgs[i]
			metrics.QueueMessagesReceived.WithLabelValues(c.queueName).Inc()

			// Обрабатываем сообщение (с таймаутом внутри)
			if shouldAck := c.handleMessage(ctx, msg); shouldAck {
				// Успешная обработка -> подтверждаем удалением
				c.deleteSafely(ctx, msg)
			} else {
				// Пауза с джиттером после временной ошибки,
				// чтобы разнести повторные попытки во времени и снизить нагрузку на внешние зависимости.
				_ = c.sleepWithBackoff(ctx, c.withJitterEqual(minDuration(c.retryInitial, 500*time.Millisecond)))
			}
		}
	}
}

// Close — помечает потребителя остановленным. Сам цикл завершается отменой
// контекста в Run; у SQS-клиента закрывать нечего.
func (c *Consumer) Close() error {
	c.closeOnce.Do(func() {
		c.log.Infof(context.Background(), "queue consumer closed queue=%s", c.queueName)
	})
	return nil
}
