package dto

import (
	"time"

	"github.com/plastinin/fileconverter/internal/domain"
)

// OperationResponse запись журнала операций
type OperationResponse struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	FileCount   int        `json:"file_count"`
	InputBytes  int64      `json:"input_bytes"`
	OutputBytes int64      `json:"output_bytes"`
	PageCount   *int       `json:"page_count,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// OperationFromDomain конвертирует доменную модель в DTO
func OperationFromDomain(op *domain.Operation) *OperationResponse {
	return &OperationResponse{
		ID:          op.ID.String(),
		Kind:        string(op.Kind),
		Status:      op.Status.String(),
		FileCount:   op.FileCount,
		InputBytes:  op.InputBytes,
		OutputBytes: op.OutputBytes,
		PageCount:   op.PageCount,
		Error:       op.Error,
		CreatedAt:   op.CreatedAt,
		CompletedAt: op.CompletedAt,
	}
}

// OperationListResponse страница журнала
type OperationListResponse struct {
	Operations []*OperationResponse `json:"operations"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// OperationListFromDomain конвертирует результат списка в DTO
func OperationListFromDomain(result *domain.OperationListResult) *OperationListResponse {
	operations := make([]*OperationResponse, len(result.Operations))
	for i, op := range result.Operations {
		operations[i] = OperationFromDomain(op)
	}

	return &OperationListResponse{
		Operations: operations,
		Total:      result.Total,
		Page:       result.Pagination.Page,
		PageSize:   result.Pagination.PageSize,
		TotalPages: result.TotalPages(),
	}
}
