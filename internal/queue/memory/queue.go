package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ntarasov/cloudpipe/internal/ports"
)

// Проверка, что Queue удовлетворяет порту MessageQueue.
var _ ports.MessageQueue = (*Queue)(nil)

// ErrStaleReceipt — токен доставки уже недействителен: сообщение либо
// удалено, либо выдано заново с новым токеном.
var ErrStaleReceipt = errors.New("stale receipt handle")

// message — внутреннее состояние сообщения.
// Пока visibleAt в будущем, сообщение считается доставленным (скрытым);
// после visibleAt оно снова доступно для Receive.
type message struct {
	id            string
	body          []byte
	visibleAt     time.Time
	receiptHandle string // токен текущей доставки; пустой, пока сообщение не выдавалось
	receiveCount  int
}

// Queue — in-memory очередь с семантикой SQS: at-least-once, visibility
// timeout, удаление по токену доставки. Вторая взаимозаменяемая реализация
// MessageQueue (выбирается конфигурацией) и основа для тестов redelivery.
type Queue struct {
	name       string
	visibility time.Duration

	mu       sync.Mutex
	msgs     []*message          // порядок поступления
	byHandle map[string]*message // актуальный токен -> сообщение

	// notify будит ожидающие Receive при Send.
	notify chan struct{}
}

// NewQueue — очередь с заданным visibility timeout.
func NewQueue(name string, visibility time.Duration) *Queue {
	if visibility <= 0 {
		visibility = 30 * time.Second
	}
	return &Queue{
		name:       name,
		visibility: visibility,
		byHandle:   make(map[string]*message),
		notify:     make(chan struct{}, 1),
	}
}

// Send — кладёт сообщение в очередь; оно сразу доступно для Receive.
func (q *Queue) Send(_ context.Context, body []byte) (string, error) {
	m := &message{
		id:   uuid.New().String(),
		body: append([]byte(nil), body...),
	}

	q.mu.Lock()
	q.msgs = append(q.msgs, m)
	q.mu.Unlock()

	// Неблокирующий сигнал: одного достаточно, ожидающие перечитают состояние.
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return m.id, nil
}

// Receive — до max видимых сообщений; при их отсутствии ждёт до wait.
// Выданные сообщения скрываются на visibility timeout, каждому выдаётся
// новый токен доставки (прежний токен при этом становится недействительным).
func (q *Queue) Receive(ctx context.Context, max int, wait time.Duration) ([]ports.Message, error) {
	if max <= 0 {
		max = 1
	}
	deadline := time.Now().Add(wait)

	for {
		batch, nextVisible := q.takeVisible(max)
		if len(batch) > 0 {
			return batch, nil
		}

		now := time.Now()
		if !now.Before(deadline) {
			// Пустой результат в пределах wait — не ошибка.
			return nil, nil
		}

		// Ждём ближайшего события: новое сообщение, истечение visibility
		// у скрытого сообщения, конец long-poll или отмена контекста.
		sleep := deadline.Sub(now)
		if !nextVisible.IsZero() {
			if d := nextVisible.Sub(now); d < sleep {
				sleep = d
			}
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-q.notify:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Delete — подтверждение обработки по токену текущей доставки.
// Устаревший токен (сообщение выдано заново или уже удалено) — ошибка,
// состояние очереди не меняется.
func (q *Queue) Delete(_ context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	m, ok := q.byHandle[receiptHandle]
	if !ok || m.receiptHandle != receiptHandle {
		return fmt.Errorf("%w: %s", ErrStaleReceipt, receiptHandle)
	}

	delete(q.byHandle, receiptHandle)
	for i, cur := range q.msgs {
		if cur == m {
			q.msgs = append(q.msgs[:i], q.msgs[i+1:]...)
			break
		}
	}
	return nil
}

// takeVisible — выбирает до max видимых сообщений и скрывает их.
// Вторым значением возвращает ближайший момент, когда скрытое сообщение
// снова станет видимым (нулевое время, если скрытых нет).
func (q *Queue) takeVisible(max int) ([]ports.Message, time.Time) {
	now := time.Now()

	q.mu.Lock()
	defer q.mu.Unlock()

	var batch []ports.Message
	var nextVisible time.Time

	for _, m := range q.msgs {
		if m.visibleAt.After(now) {
			if nextVisible.IsZero() || m.visibleAt.Before(nextVisible) {
				nextVisible = m.visibleAt
			}
			continue
		}
		if len(batch) >= max {
			continue
		}

		// Повторная выдача аннулирует прежний токен.
		if m.receiptHandle != "" {
			delete(q.byHandle, m.receiptHandle)
		}
		m.receiptHandle = uuid.New().String()
		m.visibleAt = now.Add(q.visibility)
		m.receiveCount++
		q.byHandle[m.receiptHandle] = m

		batch = append(batch, ports.Message{
			ID:            m.id,
			ReceiptHandle: m.receiptHandle,
			Body:          append([]byte(nil), m.body...),
		})

		if nextVisible.IsZero() || m.visibleAt.Before(nextVisible) {
			nextVisible = m.visibleAt
		}
	}
	return batch, nextVisible
}

// Len — количество сообщений в очереди (видимых и скрытых); для тестов и /health.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}
