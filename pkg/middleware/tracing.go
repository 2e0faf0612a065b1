package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/trackvault/pkg/tracing"
)

// TracingMiddleware 为每个请求开启服务端 span，上游的 traceparent 作为父 span.
// span 名使用路由模板（GET /api/projects/:id），未匹配的路由记为 unmatched.
func TracingMiddleware() gin.HandlerFunc {
	prop := otel.GetTextMapPropagator

	return func(c *gin.Context) {
		req := c.Request

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		parent := prop().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		ctx, span := tracing.StartSpan(parent, req.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(req.Method),
				semconv.HTTPRoute(route),
				semconv.URLPath(req.URL.Path),
				semconv.ServerAddress(req.Host),
				semconv.ClientAddress(c.ClientIP()),
				semconv.UserAgentOriginal(req.UserAgent()),
			),
		)
		defer span.End()

		c.Request = req.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			semconv.HTTPResponseStatusCode(status),
			semconv.HTTPResponseBodySize(c.Writer.Size()),
		)

		for _, e := range c.Errors {
			span.RecordError(e.Err)
		}

		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
