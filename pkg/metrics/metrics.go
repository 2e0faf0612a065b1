// Package metrics 定义 HTTP 与领域操作的 Prometheus 指标，并在主服务上暴露 /metrics.
//
// Example:
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		return err
//	}
//
//	metrics.ObserveOperation("project.create", err)
package metrics

import (
	"errors"
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/trackvault/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP 请求数，route 为路由模板，status 为状态码.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration HTTP 请求耗时.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: configs.AppName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// InflightRequests 正在处理的请求数.
	InflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: configs.AppName,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Number of HTTP requests being served",
		},
	)

	// OperationCounter 领域操作计数器，按操作与结果区分.
	OperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "operations_total",
			Help:      "Total number of project and file operations",
		},
		[]string{"operation", "result"},
	)

	// UploadBytes 成功写入上传存储的字节数.
	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "upload_bytes_total",
			Help:      "Total bytes written to the upload sink",
		},
	)

	// CleanupRemoved 清理任务删除的对象与记录数.
	CleanupRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "cleanup_removed_total",
			Help:      "Total number of orphan objects and dangling rows removed by cleanup",
		},
		[]string{"kind"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// ObserveOperation 记录一次领域操作的结果.
func ObserveOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	OperationCounter.WithLabelValues(operation, result).Inc()
}

// InitMetrics 注册应用指标，配置的 labels 作为常量标签附加到每个应用指标上.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	// Go runtime 与进程指标由默认注册表提供
	if !config.RuntimeMetrics {
		prometheus.Unregister(collectors.NewGoCollector())
		prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	reg := prometheus.WrapRegistererWith(prometheus.Labels(config.Labels), registry)

	for _, c := range []prometheus.Collector{
		RequestCounter, RequestDuration, InflightRequests,
		OperationCounter, UploadBytes, CleanupRemoved,
	} {
		if err := register(reg, c); err != nil {
			return err
		}
	}

	return nil
}

// register 忽略重复注册，InitMetrics 在测试中可能被多次调用.
func register(reg prometheus.Registerer, c prometheus.Collector) error {
	var are prometheus.AlreadyRegisteredError
	if err := reg.Register(c); err != nil && !errors.As(err, &are) {
		return err
	}

	return nil
}

// StartMetricsServer 启动Metrics HTTP服务器.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	debugEngine.GET(path, gin.WrapH(promhttp.HandlerFor(Gatherer(), promhttp.HandlerOpts{})))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// Gatherer 合并应用注册表与默认注册表，GORM 插件与 runtime 指标都在默认注册表上.
func Gatherer() prometheus.Gatherer {
	return prometheus.Gatherers{registry, prometheus.DefaultGatherer}
}
