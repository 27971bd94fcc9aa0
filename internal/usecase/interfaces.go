package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/plastinin/fileconverter/internal/domain"
)

// AssetHost интерфейс внешнего хранилища ассетов (CDN / S3)
type AssetHost interface {
	PushFile(ctx context.Context, localPath string, opts domain.PushOptions) (*domain.AssetRef, error)
	PushBuffer(ctx context.Context, data []byte, opts domain.PushOptions) (*domain.AssetRef, error)
	DeleteAsset(ctx context.Context, ref domain.AssetRef)
	AssetInfo(ctx context.Context, id string) (*domain.AssetInfo, error)
	FetchTransformed(ctx context.Context, ref domain.AssetRef, transform domain.Transform) ([]byte, error)
}

// DocumentProcessor интерфейс провайдера обработки PDF
type DocumentProcessor interface {
	CreateTask(kind domain.TaskKind) (*domain.ProcessingTask, error)
	Start(ctx context.Context, task *domain.ProcessingTask) error
	AddInput(ctx context.Context, task *domain.ProcessingTask, ref domain.AssetRef) error
	Process(ctx context.Context, task *domain.ProcessingTask, opts domain.ProcessOptions) error
	Download(ctx context.Context, task *domain.ProcessingTask) ([]byte, error)
}

// ImageGenerator интерфейс провайдера генерации изображений
type ImageGenerator interface {
	SubmitPrompt(ctx context.Context, prompt string) (*domain.GeneratedAsset, error)
	FetchBytes(ctx context.Context, asset *domain.GeneratedAsset) ([]byte, error)
}

// AssetCleaner планирует удаление промежуточных ассетов у провайдера
type AssetCleaner interface {
	ScheduleDeletion(ctx context.Context, refs []domain.AssetRef) error
}

// OperationRepository интерфейс журнала операций
type OperationRepository interface {
	Create(ctx context.Context, op *domain.Operation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Operation, error)
	List(ctx context.Context, filter domain.OperationFilter, pagination domain.Pagination) (*domain.OperationListResult, error)
}

// PageCounter считает страницы PDF
type PageCounter interface {
	CountPages(data []byte) (int, error)
}
