package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/ntarasov/cloudpipe/internal/ports"
	"github.com/ntarasov/cloudpipe/pkg/metrics"
	"github.com/ntarasov/cloudpipe/pkg/validate"
)

// handleMessage обрабатывает одно сообщение и определяет, нужно ли его удалять.
func (c *Consumer) handleMessage(ctx context.Context, msg *ports.Message) bool {
	ctxTimeout, cancel := context.WithTimeout(ctx, c.processTimeout)
	err := c.service.ProcessMessage(ctxTimeout, msg.Body)
	cancel()

	switch {
	case err == nil:
		// Успешная обработка: фиксируем метрику и удаляем сообщение
		metrics.QueueMessagesProcessed.WithLabelValues(c.queueName).Inc()
		return true
	case errors.Is(err, validate.ErrInvalidEvent):
		// Невалидные данные не исправятся повторной доставкой:
		// уводим в DLQ (если настроена) и удаляем из основной очереди.
		metrics.QueueMessagesFailed.WithLabelValues(c.queueName).Inc()
		if !c.sendToDLQ(ctx, msg) {
			// DLQ настроена, но недоступна — не удаляем, чтобы не потерять сообщение.
			return false
		}
		c.log.Warnf(ctx, "invalid message id=%s: %v (skipped)", msg.ID, err)
		return true
	default:
		// Временная ошибка (БД/сеть/таймаут): НЕ удаляем — сообщение
		// вернётся в очередь после visibility timeout.
		metrics.QueueMessagesFailed.WithLabelValues(c.queueName).Inc()
		c.log.Warnf(ctx, "process failed id=%s: %v (will retry after visibility timeout)", msg.ID, err)
		return false
	}
}

// sendToDLQ уводит невалидное сообщение в очередь недоставленных.
// true — сообщение можно удалять из основной очереди (ушло в DLQ
// или DLQ не настроена и политика — просто пропустить).
func (c *Consumer) sendToDLQ(ctx context.Context, msg *ports.Message) bool {
	if c.dlq == nil {
		return true
	}
	if _, err := c.dlq.Send(ctx, msg.Body); err != nil {
		c.log.Errorf(ctx, "dlq send failed id=%s: %v", msg.ID, err)
		return false
	}
	metrics.QueueMessagesDeadLettered.WithLabelValues(c.queueName).Inc()
	return true
}

// deleteSafely пытается удалить сообщение и залогировать ошибку.
// Неудачное удаление не фатально: сообщение придёт повторно,
// и обработчик отсеет его как дубль.
func (c *Consumer) deleteSafely(ctx context.Context, msg *ports.Message) {
	if delErr := c.queue.Delete(ctx, msg.ReceiptHandle); delErr != nil {
		c.log.Warnf(ctx, "delete failed id=%s: %v", msg.ID, delErr)
		return
	}
	metrics.QueueMessagesDeleted.WithLabelValues(c.queueName).Inc()
}

// sleepWithBackoff ждет backoff или останавливается по контексту.
func (c *Consumer) sleepWithBackoff(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// nextBackoff возвращает следующее время ожидания повтора с учетом retryMax.
func (c *Consumer) nextBackoff(current time.Duration) time.Duration {
	current *= 2
	if current > c.retryMax {
		return c.retryMax
	}
	return current
}

// withJitterEqual — умеренная случайность: половина задержки фиксирована,
// вторая половина — случайная. Баланс между стабильностью и случайностью.
func (c *Consumer) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	jitter := time.Duration(c.jitterRand.Int63n(int64(d-half) + 1))
	return half + jitter
}

// minDuration возвращает минимальное время из двух.
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
