package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/felixge/httpsnoop"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger writes one line per request. Static assets and health probes
// are logged at debug level; server errors at warn.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics := httpsnoop.CaptureMetrics(next, w, r)
		duration := metrics.Duration
		if duration == 0 {
			duration = time.Since(start)
		}

		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", metrics.Code,
			"bytes", metrics.Written,
			"duration", duration,
		}
		if sc := trace.SpanFromContext(r.Context()).SpanContext(); sc.IsValid() {
			fields = append(fields, "trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
		}

		switch {
		case metrics.Code >= http.StatusInternalServerError:
			log.Warn("request", fields...)
		case isQuietPath(r.URL.Path):
			log.Debug("request", fields...)
		default:
			log.Info("request", fields...)
		}
	})
}

func isQuietPath(path string) bool {
	return strings.HasPrefix(path, "/static/") || path == "/api/v1/health"
}
