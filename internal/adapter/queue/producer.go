package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/plastinin/fileconverter/internal/config"
	"github.com/plastinin/fileconverter/internal/domain"
)

// Типы задач
const (
	TypeAssetDelete = "asset:delete"
)

const cleanupQueue = "cleanup"

// AssetDeletePayload данные задачи на удаление ассета у провайдера
type AssetDeletePayload struct {
	AssetID      string `json:"asset_id"`
	ResourceType string `json:"resource_type,omitempty"`
}

// enqueuer часть asynq.Client, нужная продюсеру
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// CleanupProducer ставит промежуточные ассеты в очередь на отложенное удаление
type CleanupProducer struct {
	client   enqueuer
	delay    time.Duration
	maxRetry int
}

// NewCleanupProducer создаёт новый экземпляр CleanupProducer
func NewCleanupProducer(redisCfg config.RedisConfig, cleanupCfg config.CleanupConfig) *CleanupProducer {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	return &CleanupProducer{
		client:   client,
		delay:    cleanupCfg.Delay,
		maxRetry: cleanupCfg.MaxRetry,
	}
}

// ScheduleDeletion ставит по задаче на каждый ассет. Ошибка первой неудачной постановки
// возвращается после попытки поставить остальные.
func (p *CleanupProducer) ScheduleDeletion(ctx context.Context, refs []domain.AssetRef) error {
	var firstErr error
	for _, ref := range refs {
		task, err := newAssetDeleteTask(ref)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		_, err = p.client.EnqueueContext(ctx, task,
			asynq.ProcessIn(p.delay),
			asynq.MaxRetry(p.maxRetry),
			asynq.Queue(cleanupQueue),
		)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to enqueue deletion of %s: %w", ref.ID, err)
		}
	}
	return firstErr
}

// Close закрывает соединение
func (p *CleanupProducer) Close() error {
	return p.client.Close()
}

func newAssetDeleteTask(ref domain.AssetRef) (*asynq.Task, error) {
	payload, err := json.Marshal(AssetDeletePayload{
		AssetID:      ref.ID,
		ResourceType: ref.ResourceType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeAssetDelete, payload), nil
}
