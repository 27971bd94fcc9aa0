package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/plastinin/fileconverter/internal/adapter/assethost"
	"github.com/plastinin/fileconverter/internal/adapter/http/dto"
	"github.com/plastinin/fileconverter/internal/adapter/http/handler"
	"github.com/plastinin/fileconverter/internal/adapter/ilovepdf"
	"github.com/plastinin/fileconverter/internal/adapter/imagegen"
	"github.com/plastinin/fileconverter/internal/adapter/metrics"
	"github.com/plastinin/fileconverter/internal/adapter/pdfinfo"
	"github.com/plastinin/fileconverter/internal/adapter/queue"
	"github.com/plastinin/fileconverter/internal/adapter/repository"
	"github.com/plastinin/fileconverter/internal/adapter/tempstore"
	"github.com/plastinin/fileconverter/internal/config"
	"github.com/plastinin/fileconverter/internal/usecase"
	"github.com/plastinin/fileconverter/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	apphttp "github.com/plastinin/fileconverter/internal/adapter/http"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Инициализируем логгер
	log := logger.Must("fileconverter-api", cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	log.Info("Starting fileconverter API",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("asset_host", cfg.AssetHost.Driver),
	)

	// Контекст с отменой для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.MustNewMetrics(registry)

	// Хранилище ассетов
	assets, err := assethost.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to init asset host", zap.Error(err))
	}

	// Внешние сервисы обработки
	if !cfg.ILovePDF.Configured() {
		log.Warn("iLovePDF keys are not set, PDF operations will fail")
	}
	processor := ilovepdf.NewClient(cfg.ILovePDF, cfg.Provider.CallTimeout, log)

	if !cfg.ImageGen.Configured() {
		log.Warn("Image generation key is not set, /api/generate-image will fail")
	}
	generator := imagegen.NewClient(cfg.ImageGen, cfg.Provider.CallTimeout, log)

	// Журнал операций (необязательный)
	var operations usecase.OperationRepository
	if cfg.Journal.Enabled {
		dbPool, err := repository.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer dbPool.Close()

		if err := repository.Migrate(ctx, dbPool); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		operations = repository.NewOperationRepository(dbPool)
		log.Info("Connected to PostgreSQL, operation journal enabled")
	}

	// Удаление промежуточных ассетов
	var cleaner usecase.AssetCleaner
	switch cfg.Cleanup.Mode {
	case config.CleanupQueue:
		producer := queue.NewCleanupProducer(cfg.Redis, cfg.Cleanup)
		defer producer.Close()
		cleaner = producer
		log.Info("Asset cleanup via queue",
			zap.String("redis", cfg.Redis.Addr()),
			zap.Duration("delay", cfg.Cleanup.Delay),
		)
	case config.CleanupInline:
		cleaner = usecase.NewInlineCleaner(assets)
		log.Info("Asset cleanup inline")
	}

	// Временные файлы загрузок
	store, err := tempstore.New(cfg.Upload.TempDir, cfg.Upload.MaxFileSize, log)
	if err != nil {
		log.Fatal("Failed to init upload temp store", zap.Error(err))
	}

	// Инициализируем use cases
	ingress := usecase.NewIngress(usecase.UploadLimits{
		MaxFileSize: cfg.Upload.MaxFileSize,
		MaxFiles:    cfg.Upload.MaxFiles,
	}, log)

	documentUC := usecase.NewDocumentUseCase(usecase.DocumentDeps{
		Ingress:    ingress,
		Assets:     assets,
		Processor:  processor,
		Cleaner:    cleaner,
		Operations: operations,
		Pages:      pdfinfo.NewInspector(),
		PushLimit:  cfg.Upload.PushConcurrency,
		Logger:     log,
	})
	imageUC := usecase.NewImageUseCase(usecase.ImageDeps{
		Ingress:    ingress,
		Assets:     assets,
		Cleaner:    cleaner,
		Operations: operations,
		Logger:     log,
	})
	generationUC := usecase.NewGenerationUseCase(generator, operations, log)
	operationUC := usecase.NewOperationUseCase(operations)

	// Инициализируем handlers
	uploads := handler.NewUploads(store, cfg.Upload.MaxRequestSize())
	handlers := apphttp.Handlers{
		Conversion: handler.NewConversionHandler(documentUC, uploads, log),
		Image:      handler.NewImageHandler(imageUC, uploads, log),
		Generation: handler.NewGenerationHandler(generationUC, log),
		Operation:  handler.NewOperationHandler(operationUC, log),
		Health: handler.NewHealthHandler(dto.HealthServices{
			PDFProcessor:   cfg.ILovePDF.Configured(),
			AssetHost:      assethost.Configured(cfg),
			ImageGenerator: cfg.ImageGen.Configured(),
			Journal:        operations != nil,
		}, log),
	}

	// Создаём роутер
	router := apphttp.NewRouter(apphttp.RouterDeps{
		Handlers:       handlers,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        m,
		Gatherer:       registry,
		Logger:         log,
	})

	// Создаём HTTP сервер
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", cfg.Server.Addr()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
