package ports

import "context"

// Logger — минимальный контракт логгера; контекст прокидывается для
// метаданных запроса (request_id) и трейсинга.
type Logger interface {
	Infof(ctx context.Context, format string, args ...any)
	Warnf(ctx context.Context, format string, args ...any)
	Errorf(ctx context.Context, format string, args ...any)
}
