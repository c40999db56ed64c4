package ports

import (
	"context"
	"time"
)

// Message — сообщение, полученное из очереди.
type Message struct {
	// ID — идентификатор сообщения у брокера (для логов и метрик).
	ID string
	// ReceiptHandle — токен доставки. Действителен только для текущей
	// доставки: после истечения visibility timeout брокер выдаст сообщение
	// заново с новым токеном.
	ReceiptHandle string
	// Body — неизменяемое тело сообщения (JSON события).
	Body []byte
}

// MessageQueue — контракт очереди с семантикой at-least-once:
// send / receive с long-poll / delete по токену доставки.
// Реализации: SQS (реальный сервис или LocalStack через endpoint)
// и in-memory очередь с visibility timeout.
type MessageQueue interface {
	// Send — отправить сообщение; возвращает идентификатор у брокера.
	Send(ctx context.Context, body []byte) (string, error)

	// Receive — запросить до max сообщений, ожидая доступности до wait.
	// Пустой результат при отсутствии сообщений — не ошибка.
	// Отмена контекста прерывает ожидание без побочных эффектов.
	Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error)

	// Delete — подтвердить обработку: удалить доставку по её токену.
	// Вызывается только после того, как эффекты обработки зафиксированы.
	Delete(ctx context.Context, receiptHandle string) error
}
