package ports

import "context"

// DedupCache — быстрый путь дедупликации событий перед походом в БД.
// Seen == true означает «уже обработано»; false ничего не гарантирует —
// финальное решение принимает inbox в хранилище.
type DedupCache interface {
	Seen(ctx context.Context, eventID string) bool
	Mark(ctx context.Context, eventID string)
}
