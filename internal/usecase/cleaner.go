package usecase

import (
	"context"

	"github.com/plastinin/fileconverter/internal/domain"
)

// InlineCleaner удаляет промежуточные ассеты сразу, без очереди.
// Ошибки удаления логирует сам AssetHost.
type InlineCleaner struct {
	assets AssetHost
}

// NewInlineCleaner создаёт новый экземпляр InlineCleaner
func NewInlineCleaner(assets AssetHost) *InlineCleaner {
	return &InlineCleaner{assets: assets}
}

// ScheduleDeletion удаляет ассеты по очереди в текущем запросе
func (c *InlineCleaner) ScheduleDeletion(ctx context.Context, refs []domain.AssetRef) error {
	for _, ref := range refs {
		c.assets.DeleteAsset(ctx, ref)
	}
	return nil
}
