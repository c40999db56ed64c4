//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/ntarasov/cloudpipe/internal/domain"
	pgrepo "github.com/ntarasov/cloudpipe/internal/repo/postgres"
	"github.com/ntarasov/cloudpipe/internal/testutil"
)

func startRepo(t *testing.T) (context.Context, *pgrepo.EventRepository, *pgxpool.Pool) {
	t.Helper()

	// длинный контекст — только на подъём контейнера
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancelStart)

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })

	// миграции
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	// короткий контекст — на сами БД-операции
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	pool, err := pgxpool.New(ctx, pg.DSN)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return ctx, pgrepo.NewEventRepository(pool), pool
}

// 1) Первый Apply применяет эффекты, повторный с тем же event_id — нет
func TestRepo_Apply_Idempotent_TC(t *testing.T) {
	t.Parallel()

	ctx, repo, _ := startRepo(t)

	ev := testutil.MakeEvent()
	stats := testutil.MakeStats()

	applied, err := repo.Apply(ctx, &ev, stats)
	require.NoError(t, err)
	require.True(t, applied, "first apply must win")

	// Повторная доставка: тот же event_id — эффекты не применяются
	applied, err = repo.Apply(ctx, &ev, stats)
	require.NoError(t, err)
	require.False(t, applied, "second apply must be a no-op")

	processed, err := repo.AlreadyProcessed(ctx, ev.EventID)
	require.NoError(t, err)
	require.True(t, processed)
}

// 2) AlreadyProcessed для незнакомого события — false
func TestRepo_AlreadyProcessed_Unknown_TC(t *testing.T) {
	t.Parallel()

	ctx, repo, _ := startRepo(t)

	processed, err := repo.AlreadyProcessed(ctx, "evt-never-seen")
	require.NoError(t, err)
	require.False(t, processed)
}

// 3) RecentEvents возвращает события в порядке от новых к старым
func TestRepo_RecentEvents_Order_TC(t *testing.T) {
	t.Parallel()

	ctx, repo, _ := startRepo(t)

	first := testutil.MakeEvent(testutil.WithEventID("evt-first-" + testutil.UniqSuffix()))
	second := testutil.MakeEvent(testutil.WithEventID("evt-second-" + testutil.UniqSuffix()))

	applied, err := repo.Apply(ctx, &first, nil)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = repo.Apply(ctx, &second, nil)
	require.NoError(t, err)
	require.True(t, applied)

	events, err := repo.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, second.EventID, events[0].EventID)
	require.Equal(t, first.EventID, events[1].EventID)
}

// 4) Статистика по отделам апдейтится вторым событием
func TestRepo_DepartmentStats_Upsert_TC(t *testing.T) {
	t.Parallel()

	ctx, repo, _ := startRepo(t)

	ev1 := testutil.MakeEvent()
	applied, err := repo.Apply(ctx, &ev1, []domain.DepartmentStat{
		{Department: "IT", AvgSalary: 50000, MinSalary: 40000, MaxSalary: 60000, AvgPerformance: 3.0},
	})
	require.NoError(t, err)
	require.True(t, applied)

	ev2 := testutil.MakeEvent()
	applied, err = repo.Apply(ctx, &ev2, []domain.DepartmentStat{
		{Department: "IT", AvgSalary: 67500, MinSalary: 45000, MaxSalary: 90000, AvgPerformance: 4.0},
		{Department: "Sales", AvgSalary: 48000, MinSalary: 48000, MaxSalary: 48000, AvgPerformance: 2.5},
	})
	require.NoError(t, err)
	require.True(t, applied)

	stats, err := repo.DepartmentStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	// Отсортировано по имени отдела
	require.Equal(t, "IT", stats[0].Department)
	require.Equal(t, 67500.0, stats[0].AvgSalary)
	require.Equal(t, 90000, stats[0].MaxSalary)
	require.Equal(t, "Sales", stats[1].Department)
}

// 5) Каталог файлов обновляется последним событием по тому же файлу
func TestRepo_PipelineFiles_LastEventWins_TC(t *testing.T) {
	t.Parallel()

	ctx, repo, pool := startRepo(t)

	bucket := "raw-data-bucket"
	filename := "raw/employees_shared.csv"

	ev1 := testutil.MakeEvent(testutil.WithFile(bucket, filename))
	ev1.RecordCount = 10
	ev2 := testutil.MakeEvent(testutil.WithFile(bucket, filename))
	ev2.RecordCount = 25

	applied, err := repo.Apply(ctx, &ev1, nil)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = repo.Apply(ctx, &ev2, nil)
	require.NoError(t, err)
	require.True(t, applied)

	var recordCount int
	var lastEventID string
	err = pool.QueryRow(ctx, `
		SELECT record_count, last_event_id FROM pipeline_files
		WHERE bucket = $1 AND filename = $2
	`, bucket, filename).Scan(&recordCount, &lastEventID)
	require.NoError(t, err)
	require.Equal(t, 25, recordCount)
	require.Equal(t, ev2.EventID, lastEventID)
}
