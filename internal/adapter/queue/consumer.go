package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/plastinin/fileconverter/internal/adapter/metrics"
	"github.com/plastinin/fileconverter/internal/config"
	"github.com/plastinin/fileconverter/internal/domain"
	"go.uber.org/zap"
)

// AssetRemover удаляет ассет у провайдера и возвращает ошибку для повтора
type AssetRemover interface {
	Remove(ctx context.Context, ref domain.AssetRef) error
}

// CleanupConsumer обрабатывает задачи удаления ассетов
type CleanupConsumer struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	remover AssetRemover
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCleanupConsumer создаёт новый экземпляр CleanupConsumer
func NewCleanupConsumer(
	redisCfg config.RedisConfig,
	cleanupCfg config.CleanupConfig,
	remover AssetRemover,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CleanupConsumer {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Addr(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			Concurrency: cleanupCfg.Concurrency,
			Queues: map[string]int{
				cleanupQueue: 10,
				"default":    1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	consumer := &CleanupConsumer{
		server:  server,
		mux:     asynq.NewServeMux(),
		remover: remover,
		metrics: m,
		logger:  logger,
	}

	// Регистрируем обработчики
	consumer.mux.HandleFunc(TypeAssetDelete, consumer.handleAssetDelete)

	return consumer
}

// Start запускает обработку задач
func (c *CleanupConsumer) Start() error {
	c.logger.Info("Starting cleanup consumer")
	return c.server.Start(c.mux)
}

// Stop останавливает обработку задач
func (c *CleanupConsumer) Stop() {
	c.logger.Info("Stopping cleanup consumer")
	c.server.Stop()
	c.server.Shutdown()
}

// handleAssetDelete удаляет ассет, при ошибке asynq повторит задачу
func (c *CleanupConsumer) handleAssetDelete(ctx context.Context, t *asynq.Task) error {
	var payload AssetDeletePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		c.logger.Error("Failed to unmarshal payload",
			zap.Error(err),
			zap.ByteString("payload", t.Payload()),
		)
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if payload.AssetID == "" {
		return fmt.Errorf("empty asset id: %w", asynq.SkipRetry)
	}

	err := c.remover.Remove(ctx, domain.AssetRef{
		ID:           payload.AssetID,
		ResourceType: payload.ResourceType,
	})
	c.metrics.ObserveAssetDeletion(err)

	if err != nil {
		c.logger.Warn("Failed to delete asset",
			zap.String("asset_id", payload.AssetID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Debug("Asset deleted", zap.String("asset_id", payload.AssetID))
	return nil
}

// asynqLogger адаптер логгера для asynq
type asynqLogger struct {
	logger *zap.Logger
}

func newAsynqLogger(logger *zap.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.Named("asynq")}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
