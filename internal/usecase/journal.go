package usecase

import (
	"context"
	"time"

	"github.com/plastinin/fileconverter/internal/domain"
	"go.uber.org/zap"
)

const backgroundWriteTimeout = 5 * time.Second

// journal записывает итог операции и планирует очистку ассетов.
// Ошибки только логируются, на ответ клиенту они не влияют.
type journal struct {
	repo    OperationRepository
	cleaner AssetCleaner
	pages   PageCounter
	logger  *zap.Logger
}

// finish фиксирует итог операции в журнале
func (j *journal) finish(ctx context.Context, op *domain.Operation, outputBytes int64, opErr error) {
	if opErr != nil {
		_ = op.MarkFailed(opErr.Error())
	} else {
		_ = op.MarkCompleted(outputBytes)
	}

	if j.repo == nil {
		return
	}

	// Клиент мог уже отключиться, запись всё равно нужна
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundWriteTimeout)
	defer cancel()

	if err := j.repo.Create(writeCtx, op); err != nil {
		j.logger.Error("Failed to record operation",
			zap.String("operation_id", op.ID.String()),
			zap.String("kind", string(op.Kind)),
			zap.Error(err),
		)
	}
}

// scheduleCleanup передаёт промежуточные ассеты на отложенное удаление
func (j *journal) scheduleCleanup(ctx context.Context, refs []*domain.AssetRef) {
	if j.cleaner == nil {
		return
	}

	pushed := make([]domain.AssetRef, 0, len(refs))
	for _, ref := range refs {
		if ref != nil {
			pushed = append(pushed, *ref)
		}
	}
	if len(pushed) == 0 {
		return
	}

	scheduleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundWriteTimeout)
	defer cancel()

	if err := j.cleaner.ScheduleDeletion(scheduleCtx, pushed); err != nil {
		j.logger.Warn("Failed to schedule asset cleanup",
			zap.Int("assets", len(pushed)),
			zap.Error(err),
		)
	}
}

// countPages считает страницы результата, при ошибке страницы не указываются
func (j *journal) countPages(op *domain.Operation, data []byte) {
	if j.pages == nil {
		return
	}
	n, err := j.pages.CountPages(data)
	if err != nil {
		j.logger.Debug("Failed to count result pages",
			zap.String("operation_id", op.ID.String()),
			zap.Error(err),
		)
		return
	}
	op.SetPageCount(n)
}
