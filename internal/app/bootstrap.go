package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ntarasov/cloudpipe/config"
	"github.com/ntarasov/cloudpipe/internal/awsx"
	memcache "github.com/ntarasov/cloudpipe/internal/cache/memory"
	"github.com/ntarasov/cloudpipe/internal/consumer"
	"github.com/ntarasov/cloudpipe/internal/ports"
	memqueue "github.com/ntarasov/cloudpipe/internal/queue/memory"
	sqsqueue "github.com/ntarasov/cloudpipe/internal/queue/sqs"
	"github.com/ntarasov/cloudpipe/internal/repo/postgres"
	memstorage "github.com/ntarasov/cloudpipe/internal/storage/memory"
	s3storage "github.com/ntarasov/cloudpipe/internal/storage/s3"
	rest "github.com/ntarasov/cloudpipe/internal/transport/http"
	"github.com/ntarasov/cloudpipe/internal/usecase"
	"github.com/ntarasov/cloudpipe/pkg/logger"
	"github.com/ntarasov/cloudpipe/pkg/metrics"
	"github.com/ntarasov/cloudpipe/pkg/telemetry"
	"github.com/ntarasov/cloudpipe/pkg/validate"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, consumer).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер
	Consumer        ports.MessageConsumer // консьюмер сообщений очереди
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// buildStorage — объектное хранилище по конфигурации (s3 или memory).
func buildStorage(ctx context.Context, cfg *config.Config) (ports.ObjectStorage, error) {
	if strings.EqualFold(cfg.Storage.Driver, "memory") {
		return memstorage.New(), nil
	}
	awsCfg, err := awsx.LoadConfig(ctx, cfg.Queue.Region, cfg.Queue.AccessKey, cfg.Queue.SecretKey)
	if err != nil {
		return nil, err
	}
	return s3storage.New(s3storage.NewClient(awsCfg, cfg.Storage.Endpoint)), nil
}

// buildQueues — основная очередь и (опционально) DLQ по конфигурации.
func buildQueues(ctx context.Context, cfg *config.Config) (ports.MessageQueue, ports.MessageQueue, error) {
	if strings.EqualFold(cfg.Queue.Driver, "memory") {
		q := memqueue.NewQueue(cfg.Queue.Name, cfg.Queue.VisibilityTimeout)
		var dlq ports.MessageQueue
		if cfg.Queue.DLQName != "" {
			dlq = memqueue.NewQueue(cfg.Queue.DLQName, cfg.Queue.VisibilityTimeout)
		}
		return q, dlq, nil
	}

	awsCfg, err := awsx.LoadConfig(ctx, cfg.Queue.Region, cfg.Queue.AccessKey, cfg.Queue.SecretKey)
	if err != nil {
		return nil, nil, err
	}
	client := sqsqueue.NewClient(awsCfg, cfg.Queue.Endpoint)

	queueURL, err := sqsqueue.EnsureQueue(ctx, client, cfg.Queue.Name, cfg.Queue.VisibilityTimeout)
	if err != nil {
		return nil, nil, err
	}
	q := sqsqueue.New(client, queueURL, cfg.Queue.VisibilityTimeout)

	var dlq ports.MessageQueue
	if cfg.Queue.DLQName != "" {
		dlqURL, dlqErr := sqsqueue.EnsureQueue(ctx, client, cfg.Queue.DLQName, cfg.Queue.VisibilityTimeout)
		if dlqErr != nil {
			return nil, nil, dlqErr
		}
		dlq = sqsqueue.New(client, dlqURL, cfg.Queue.VisibilityTimeout)
	}
	return q, dlq, nil
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Пул подключений Postgres
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	failCleanup := func() {
		pool.Close()
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
	}

	// Объектное хранилище и бакеты пайплайна.
	store, err := buildStorage(ctx, cfg)
	if err != nil {
		failCleanup()
		return nil, func() {}, err
	}
	for _, bucket := range []string{cfg.Storage.RawBucket, cfg.Storage.ProcessedBucket} {
		if err := store.EnsureBucket(ctx, bucket); err != nil {
			failCleanup()
			return nil, func() {}, err
		}
	}

	// Очередь событий (+ DLQ при заданном имени).
	q, dlq, err := buildQueues(ctx, cfg)
	if err != nil {
		failCleanup()
		return nil, func() {}, err
	}

	// Сборка зависимостей доменного слоя.
	eventValidator := validate.NewEventValidator()
	eventRepo := postgres.NewEventRepository(pool)

	// Кэш дедупликации; прогреваем последними записями inbox'а,
	// чтобы после рестарта не бегать в БД за свежими дублями.
	dedup := memcache.NewDedupCache(cfg.Cache.Capacity, cfg.Cache.TTL)
	if cfg.Cache.WarmupLimit > 0 {
		recent, wErr := eventRepo.RecentEvents(ctx, cfg.Cache.WarmupLimit)
		if wErr != nil {
			logg.Warnf(ctx, "dedup cache warmup skipped: %v", wErr)
		} else {
			ids := make([]string, 0, len(recent))
			for _, ev := range recent {
				ids = append(ids, ev.EventID)
			}
			dedup.WarmUp(ctx, ids)
			logg.Infof(ctx, "dedup cache warmed up with %d event ids", len(ids))
		}
	}

	pipelineService := usecase.NewPipelineService(eventRepo, dedup, store, q, logg, eventValidator, cfg.Storage.ProcessedBucket)

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Проверки живости для /health.
	checks := map[string]rest.HealthCheck{
		"postgres": func(ctx context.Context) error { return pool.Ping(ctx) },
		"storage": func(ctx context.Context) error {
			_, lErr := store.List(ctx, cfg.Storage.RawBucket, "")
			return lErr
		},
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(pipelineService, logg, cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, checks, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	// Консьюмер очереди событий.
	cons := consumer.NewConsumer(consumer.Config{
		QueueName:      cfg.Queue.Name,
		MaxBatch:       cfg.Queue.MaxBatch,
		WaitTime:       cfg.Queue.WaitTime,
		ProcessTimeout: cfg.Queue.ProcessTimeout,
		RetryInitial:   cfg.Queue.RetryInitial,
		RetryMax:       cfg.Queue.RetryMax,
	}, q, dlq, pipelineService, logg)

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		Consumer:        cons,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if err := cons.Close(); err != nil {
			logg.Warnf(ctx, "consumer close error: %v", err)
		}

		pool.Close()
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run — запускает HTTP-сервер и консьюмера; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Запуск консьюмера.
	go func() {
		a.Logger.Infof(ctx, "queue consumer starting")
		if err := a.Consumer.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Остановка консьюмера.
	if err := a.Consumer.Close(); err != nil {
		a.Logger.Warnf(ctx, "consumer close error: %v", err)
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
