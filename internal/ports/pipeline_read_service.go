package ports

import (
	"context"

	"github.com/ntarasov/cloudpipe/internal/domain"
)

// PipelineReadService — read-контракт для HTTP-слоя:
// хендлеры зависят от интерфейса, а не от конкретного usecase.
type PipelineReadService interface {
	RecentEvents(ctx context.Context, limit int) ([]*domain.Event, error)
	DepartmentStats(ctx context.Context) ([]domain.DepartmentStat, error)
	ListFiles(ctx context.Context, bucket, prefix string) ([]string, error)
}
