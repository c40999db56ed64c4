package ports

import (
	"context"

	"github.com/ntarasov/cloudpipe/internal/domain"
)

type EventValidator interface {
	Validate(ctx context.Context, ev *domain.Event) error
}
