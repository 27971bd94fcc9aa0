package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidOperationStatus = errors.New("invalid operation status")

// OperationKind пользовательская операция шлюза
type OperationKind string

const (
	OperationCompressPDF   OperationKind = "compress_pdf"
	OperationCompressImage OperationKind = "compress_image"
	OperationUpscale       OperationKind = "upscale"
	OperationMergePDF      OperationKind = "merge_pdf"
	OperationImagesToPDF   OperationKind = "images_to_pdf"
	OperationGenerateImage OperationKind = "generate_image"
)

// IsValid проверяет валидность вида операции
func (k OperationKind) IsValid() bool {
	switch k {
	case OperationCompressPDF, OperationCompressImage, OperationUpscale,
		OperationMergePDF, OperationImagesToPDF, OperationGenerateImage:
		return true
	}
	return false
}

// OperationStatus статус записи журнала
type OperationStatus string

const (
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
)

// IsValid проверяет валидность статуса
func (s OperationStatus) IsValid() bool {
	switch s {
	case OperationStatusRunning, OperationStatusCompleted, OperationStatusFailed:
		return true
	}
	return false
}

func (s OperationStatus) String() string {
	return string(s)
}

// Operation запись журнала операций
type Operation struct {
	ID          uuid.UUID       `json:"id"`
	Kind        OperationKind   `json:"kind"`
	Status      OperationStatus `json:"status"`
	FileCount   int             `json:"file_count"`
	InputBytes  int64           `json:"input_bytes"`
	OutputBytes int64           `json:"output_bytes"`
	PageCount   *int            `json:"page_count,omitempty"` // Только для PDF результатов
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// NewOperation создаёт запись в статусе running
func NewOperation(kind OperationKind, files []*UploadedFile) *Operation {
	var inputBytes int64
	for _, f := range files {
		inputBytes += f.Size
	}
	return &Operation{
		ID:         uuid.New(),
		Kind:       kind,
		Status:     OperationStatusRunning,
		FileCount:  len(files),
		InputBytes: inputBytes,
		CreatedAt:  time.Now(),
	}
}

// MarkCompleted фиксирует успешное завершение
func (o *Operation) MarkCompleted(outputBytes int64) error {
	if o.Status != OperationStatusRunning {
		return ErrInvalidOperationStatus
	}
	now := time.Now()
	o.Status = OperationStatusCompleted
	o.OutputBytes = outputBytes
	o.CompletedAt = &now
	return nil
}

// MarkFailed фиксирует ошибку
func (o *Operation) MarkFailed(errMsg string) error {
	if o.Status != OperationStatusRunning {
		return ErrInvalidOperationStatus
	}
	now := time.Now()
	o.Status = OperationStatusFailed
	o.Error = errMsg
	o.CompletedAt = &now
	return nil
}

// SetPageCount сохраняет количество страниц результата
func (o *Operation) SetPageCount(n int) {
	o.PageCount = &n
}
