package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/plastinin/fileconverter/internal/adapter/http/handler"
	httpmiddleware "github.com/plastinin/fileconverter/internal/adapter/http/middleware"
	"github.com/plastinin/fileconverter/internal/adapter/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Handlers набор обработчиков API
type Handlers struct {
	Conversion *handler.ConversionHandler
	Image      *handler.ImageHandler
	Generation *handler.GenerationHandler
	Operation  *handler.OperationHandler
	Health     *handler.HealthHandler
}

// RouterDeps зависимости роутера
type RouterDeps struct {
	Handlers       Handlers
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
}

// NewRouter создаёт и настраивает HTTP роутер
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	h := deps.Handlers

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.NewLoggingMiddleware(deps.Logger))
	r.Use(httpmiddleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
		// Фронтенд берёт имя файла из Content-Disposition
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}).Handler)

	// Метрики Prometheus (вне /api)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.Check)

		// PDF операции отдают бинарный ответ, JSON сжимаем отдельно
		r.Post("/compress", h.Conversion.Compress)
		r.Post("/merge", h.Conversion.Merge)
		r.Post("/image-to-pdf", h.Conversion.ImageToPDF)

		r.Post("/compress-image", h.Image.CompressImage)
		r.Post("/upscale", h.Image.Upscale)
		r.Get("/asset-info/*", h.Image.AssetInfo)

		r.With(middleware.Compress(5, "application/json")).Post("/generate-image", h.Generation.Generate)

		r.Route("/operations", func(r chi.Router) {
			r.Use(middleware.Compress(5, "application/json"))
			r.Get("/", h.Operation.List)
			r.Get("/{id}", h.Operation.GetByID)
		})
	})

	return r
}
