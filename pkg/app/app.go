// Package app 提供应用程序的初始化和配置功能.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/trackvault/pkg/api"
	"github.com/yeisme/trackvault/pkg/configs"
	"github.com/yeisme/trackvault/pkg/internal/jobs"
	"github.com/yeisme/trackvault/pkg/internal/service"
	"github.com/yeisme/trackvault/pkg/internal/storage"
	"github.com/yeisme/trackvault/pkg/internal/storage/kv"
	"github.com/yeisme/trackvault/pkg/log"
	"github.com/yeisme/trackvault/pkg/metrics"
	"github.com/yeisme/trackvault/pkg/middleware"
	"github.com/yeisme/trackvault/pkg/queue"
	"github.com/yeisme/trackvault/pkg/scheduler"
	"github.com/yeisme/trackvault/pkg/tracing"
)

// App 持有 HTTP 引擎以及进程级资源：存储、调度器与事件审计.
type App struct {
	Engine *gin.Engine

	config    *configs.AppConfig
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
	stopAudit context.CancelFunc
}

// NewApp 按已加载的配置初始化追踪、监控、存储、定时任务与路由.
// 调用前需先执行 configs.InitConfig.
func NewApp(ctx context.Context) (*App, error) {
	config := configs.GetConfig()
	l := log.Logger()

	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	// 初始化追踪
	if err := tracing.InitTracer(ctx, config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &App{config: config, manager: manager, stopAudit: func() {}}

	if config.Events.Enabled && config.Events.Audit {
		auditCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		a.stopAudit = cancel

		if err := service.StartAudit(auditCtx, manager.MQ, queue.AllTopics); err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("start event audit: %w", err)
		}
	}

	if a.scheduler, err = scheduler.NewScheduler(); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	if err := jobs.RegisterCronJobs(a.scheduler, manager, config.Cleanup); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("register cron jobs: %w", err)
	}

	a.Engine = a.newEngine()

	return a, nil
}

// newEngine 组装中间件链与路由.
func (a *App) newEngine() *gin.Engine {
	config := a.config
	engine := gin.New()
	engine.MaxMultipartMemory = 8 << 20

	metricsPath := config.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.GinLoggerMiddleware("/api/health/", metricsPath),
		middleware.CORSMiddleware(),
		middleware.GzipMiddleware(config.Upload.PublicPrefix, metricsPath, "/debug/pprof"),
		middleware.TracingMiddleware(),
	)

	if config.Metrics.Enabled {
		engine.Use(middleware.PrometheusMiddleware())
	}

	engine.Use(
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.StorageMiddleware(a.manager),
		middleware.SchedulerMiddleware(a.scheduler),
	)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	var store kv.KVStore
	if a.manager.KV != nil {
		store = a.manager.KV
	}

	api.RegisterGroup(engine, middleware.NewResponseCache(store, config.Cache))

	return engine
}

// Run 启动 HTTP 服务与调度器，收到 SIGINT/SIGTERM 后优雅关闭并释放资源.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := log.Logger()

	srv := &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	a.scheduler.Start()

	errCh := make(chan error, 1)

	go func() {
		l.Info().Str("addr", srv.Addr).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	var serveErr error

	select {
	case <-ctx.Done():
		l.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
		l.Error().Err(serveErr).Msg("http server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Server.GetShutdownDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("http server shutdown")
	}

	return errors.Join(serveErr, a.Close(shutdownCtx))
}

// Close 停止调度器与事件审计，关闭存储并刷新追踪数据.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.scheduler != nil {
		errs = append(errs, a.scheduler.Shutdown())
	}

	a.stopAudit()

	errs = append(errs, a.manager.Close(), tracing.ShutdownTracer(ctx))

	log.Logger().Info().Msg("application stopped")

	return errors.Join(errs...)
}
