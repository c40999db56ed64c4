package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ntarasov/cloudpipe/internal/domain"
	"github.com/ntarasov/cloudpipe/internal/ports"
	"github.com/ntarasov/cloudpipe/pkg/httpx"
)

const (
	defaultEventsLimit = 20
	maxEventsLimit     = 100
)

// HealthCheck — именованная проверка зависимости для /health.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	service ports.PipelineReadService
	log     ports.Logger
	timeout time.Duration // таймаут обработки одного запроса; 0 — без таймаута
}

func NewHandler(service ports.PipelineReadService, log ports.Logger, timeout time.Duration) *Handler {
	return &Handler{service: service, log: log, timeout: timeout}
}

// NewRouter — собирает маршруты сервиса. serviceName != "" включает otelgin.
func NewRouter(h *Handler, checks map[string]HealthCheck, serviceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	if serviceName != "" {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", healthHandler(checks))

	r.GET("/events", h.listEvents)
	r.GET("/files", h.listFiles)
	r.GET("/stats/departments", h.departmentStats)

	return r
}

// reqCtx — контекст запроса с таймаутом хендлера (если задан).
func (h *Handler) reqCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request.Context()
	if h.timeout > 0 {
		return context.WithTimeout(ctx, h.timeout)
	}
	return ctx, func() {}
}

func (h *Handler) listEvents(c *gin.Context) {
	limit := httpx.ParseLimit(c, defaultEventsLimit, maxEventsLimit)

	ctx, cancel := h.reqCtx(c)
	defer cancel()

	events, err := h.service.RecentEvents(ctx, limit)
	if err != nil {
		h.log.Errorf(ctx, "RecentEvents failed limit=%d err=%v", limit, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) listFiles(c *gin.Context) {
	bucket := c.Query("bucket")
	if bucket == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bucket is required"})
		return
	}
	prefix := c.Query("prefix")

	ctx, cancel := h.reqCtx(c)
	defer cancel()

	files, err := h.service.ListFiles(ctx, bucket, prefix)
	if err != nil {
		h.log.Errorf(ctx, "ListFiles failed bucket=%s prefix=%s err=%v", bucket, prefix, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if files == nil {
		files = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"bucket": bucket, "files": files})
}

func (h *Handler) departmentStats(c *gin.Context) {
	ctx, cancel := h.reqCtx(c)
	defer cancel()

	stats, err := h.service.DepartmentStats(ctx)
	if err != nil {
		h.log.Errorf(ctx, "DepartmentStats failed err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if stats == nil {
		stats = []domain.DepartmentStat{}
	}
	c.JSON(http.StatusOK, stats)
}

// healthHandler — опрашивает зависимости и возвращает карту имя→статус.
// 200 — все живы, 503 — хотя бы одна проверка провалилась.
func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		result := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				result[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		c.JSON(status, result)
	}
}
