package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plastinin/fileconverter/internal/adapter/assethost"
	"github.com/plastinin/fileconverter/internal/adapter/metrics"
	"github.com/plastinin/fileconverter/internal/adapter/queue"
	"github.com/plastinin/fileconverter/internal/config"
	"github.com/plastinin/fileconverter/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Инициализируем логгер
	log := logger.Must("fileconverter-worker", cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	if cfg.Cleanup.Mode != config.CleanupQueue {
		log.Warn("Cleanup queue is not in use, worker has nothing to do",
			zap.String("cleanup_mode", cfg.Cleanup.Mode),
		)
	}

	log.Info("Starting fileconverter cleanup worker",
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("asset_host", cfg.AssetHost.Driver),
		zap.Int("concurrency", cfg.Cleanup.Concurrency),
	)

	// Контекст для инициализации
	ctx := context.Background()

	// Хранилище ассетов, из которого удаляем
	assets, err := assethost.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to init asset host", zap.Error(err))
	}

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.MustNewMetrics(registry)

	metricsServer := &http.Server{
		Addr:              cfg.Worker.MetricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// Инициализируем consumer
	consumer := queue.NewCleanupConsumer(cfg.Redis, cfg.Cleanup, assets, m, log)

	// Запускаем consumer
	if err := consumer.Start(); err != nil {
		log.Fatal("Failed to start consumer", zap.Error(err))
	}

	log.Info("Worker started, waiting for tasks...")

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker...")

	// Останавливаем consumer
	consumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Metrics server shutdown failed", zap.Error(err))
	}

	log.Info("Worker stopped")
}
