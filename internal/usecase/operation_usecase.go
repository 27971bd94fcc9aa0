package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/plastinin/fileconverter/internal/domain"
)

var ErrJournalDisabled = errors.New("operation journal is disabled")

// OperationUseCase чтение журнала операций
type OperationUseCase struct {
	repo OperationRepository
}

// NewOperationUseCase создаёт новый экземпляр OperationUseCase.
// repo может быть nil, если журнал отключён.
func NewOperationUseCase(repo OperationRepository) *OperationUseCase {
	return &OperationUseCase{repo: repo}
}

// GetByID возвращает запись журнала по ID
func (uc *OperationUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Operation, error) {
	if uc.repo == nil {
		return nil, ErrJournalDisabled
	}
	return uc.repo.GetByID(ctx, id)
}

// List возвращает страницу журнала
func (uc *OperationUseCase) List(ctx context.Context, filter domain.OperationFilter, pagination domain.Pagination) (*domain.OperationListResult, error) {
	if uc.repo == nil {
		return nil, ErrJournalDisabled
	}
	return uc.repo.List(ctx, filter, pagination)
}
