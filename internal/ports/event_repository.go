package ports

import (
	"context"

	"github.com/ntarasov/cloudpipe/internal/domain"
)

// EventRepository — хранилище записей об обработанных событиях (inbox)
// и каталога пайплайна.
type EventRepository interface {
	// AlreadyProcessed — true, если событие с таким ключом уже учтено.
	// Быстрая проверка перед побочными эффектами (подавление дублей).
	AlreadyProcessed(ctx context.Context, eventID string) (bool, error)

	// Apply — атомарно зафиксировать событие: вставка ключа в inbox и
	// запись каталога/статистики в одной транзакции. Возвращает false,
	// если ключ уже был вставлен другим воркером (эффекты не применяются).
	Apply(ctx context.Context, ev *domain.Event, stats []domain.DepartmentStat) (bool, error)

	// RecentEvents — последние обработанные события (для HTTP).
	RecentEvents(ctx context.Context, limit int) ([]*domain.Event, error)

	// DepartmentStats — текущая агрегированная статистика по отделам.
	DepartmentStats(ctx context.Context) ([]domain.DepartmentStat, error)
}
