package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/plastinin/fileconverter/internal/adapter/metrics"
)

// NewMetricsMiddleware считает запросы и их длительность по шаблону маршрута
func NewMetricsMiddleware(m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			m.IncInFlight()
			defer func() {
				m.DecInFlight()
				m.ObserveRequest(r.Method, routePattern(r), ww.Status(), time.Since(start))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// routePattern шаблон маршрута вместо пути, чтобы не плодить метки
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unknown"
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unmatched"
}
