package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ntarasov/cloudpipe/internal/domain"
	"github.com/ntarasov/cloudpipe/internal/ports"
)

// Проверка, что EventRepository удовлетворяет порту EventRepository.
var _ ports.EventRepository = (*EventRepository)(nil)

// EventRepository — inbox обработанных событий и каталог пайплайна на
// Postgres (pgxpool). Ключ идемпотентности — processed_events.event_id:
// вставка с ON CONFLICT DO NOTHING даёт атомарный check-and-set, поэтому
// из двух воркеров с одной повторной доставкой эффекты применит ровно один.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// AlreadyProcessed — быстрая проверка inbox'а до побочных эффектов.
func (r *EventRepository) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM processed_events WHERE event_id = $1)
	`, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check processed: %w", err)
	}
	return exists, nil
}

// Apply — одна транзакция: запись в inbox + каталог + статистика.
// Возвращает (false, nil), если event_id уже есть в inbox — эффекты
// не применяются (дубль от повторной доставки или параллельного воркера).
func (r *EventRepository) Apply(ctx context.Context, ev *domain.Event, stats []domain.DepartmentStat) (bool, error) {
	if ev == nil || ev.EventID == "" {
		return false, errors.New("event is empty or event_id is required")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		// Для уже завершённой транзакции Rollback вернёт ErrTxClosed — игнорируем.
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	// 1) inbox — атомарный check-and-set по event_id.
	tag, err := tx.Exec(ctx, `
		INSERT INTO processed_events (
			event_id, event_type, bucket, filename, input_file, output_file,
			record_count, event_ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`, ev.EventID, string(ev.Type), ev.Bucket, ev.Filename, ev.InputFile, ev.OutputFile,
		ev.RecordCount, ev.Timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("insert processed event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Ключ уже вставлен — событие учтено раньше.
		return false, nil
	}

	// 2) каталог файлов — upsert по (bucket, filename), если событие про файл.
	if ev.Bucket != "" && ev.Filename != "" {
		if _, err = tx.Exec(ctx, `
			INSERT INTO pipeline_files (bucket, filename, record_count, last_event_id, last_event_ts)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (bucket, filename) DO UPDATE SET
				record_count  = EXCLUDED.record_count,
				last_event_id = EXCLUDED.last_event_id,
				last_event_ts = EXCLUDED.last_event_ts
		`, ev.Bucket, ev.Filename, ev.RecordCount, ev.EventID, ev.Timestamp); err != nil {
			return false, fmt.Errorf("upsert pipeline file: %w", err)
		}
	}

	// 3) статистика по отделам — upsert по department.
	for _, s := range stats {
		if _, err = tx.Exec(ctx, `
			INSERT INTO department_stats (department, avg_salary, min_salary, max_salary, avg_performance, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (department) DO UPDATE SET
				avg_salary      = EXCLUDED.avg_salary,
				min_salary      = EXCLUDED.min_salary,
				max_salary      = EXCLUDED.max_salary,
				avg_performance = EXCLUDED.avg_performance,
				updated_at      = now()
		`, s.Department, s.AvgSalary, s.MinSalary, s.MaxSalary, s.AvgPerformance); err != nil {
			return false, fmt.Errorf("upsert department stat: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// RecentEvents — последние обработанные события (по времени фиксации).
func (r *EventRepository) RecentEvents(ctx context.Context, limit int) ([]*domain.Event, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT event_id, event_type, bucket, filename, input_file, output_file,
			record_count, event_ts
		FROM processed_events
		ORDER BY processed_at DESC, event_id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select recent events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		ev := &domain.Event{}
		var typ string
		if err := rows.Scan(
			&ev.EventID, &typ, &ev.Bucket, &ev.Filename, &ev.InputFile, &ev.OutputFile,
			&ev.RecordCount, &ev.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Type = domain.EventType(typ)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("events rows: %w", err)
	}
	return events, nil
}

// DepartmentStats — текущие агрегаты по отделам.
func (r *EventRepository) DepartmentStats(ctx context.Context) ([]domain.DepartmentStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT department, avg_salary, min_salary, max_salary, avg_performance
		FROM department_stats
		ORDER BY department
	`)
	if err != nil {
		return nil, fmt.Errorf("select department stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.DepartmentStat
	for rows.Next() {
		var s domain.DepartmentStat
		if err := rows.Scan(&s.Department, &s.AvgSalary, &s.MinSalary, &s.MaxSalary, &s.AvgPerformance); err != nil {
			return nil, fmt.Errorf("scan department stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats rows: %w", err)
	}
	return stats, nil
}
