package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки домена
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrRemoteUpload        = errors.New("remote upload failed")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProcessingFailed    = errors.New("processing failed")
	ErrDownloadFailed      = errors.New("download failed")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrOperationNotFound   = errors.New("operation not found")
)

// InputError ошибка во входных данных клиента (нет файла, не тот тип, пустой файл)
type InputError struct {
	Message string
	File    string   // Имя файла, не прошедшего проверку
	Allowed []string // Допустимые расширения
}

// NewInputError создаёт ошибку входных данных без привязки к файлу
func NewInputError(message string) *InputError {
	return &InputError{Message: message}
}

func (e *InputError) Error() string {
	if e.File == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.File)
}

// Is позволяет проверять ошибку через errors.Is(err, ErrInvalidInput)
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Details возвращает подробности для ответа клиенту
func (e *InputError) Details() string {
	var parts []string
	if e.File != "" {
		parts = append(parts, "file: "+e.File)
	}
	if len(e.Allowed) > 0 {
		parts = append(parts, "allowed: "+strings.Join(e.Allowed, ", "))
	}
	return strings.Join(parts, "; ")
}

// ProviderError ошибка внешнего сервиса.
// Kind — одна из sentinel-ошибок выше, Details — диагностика провайдера как есть.
type ProviderError struct {
	Kind    error
	Op      string
	Details string
	Err     error
}

// NewProviderError создаёт ошибку внешнего сервиса
func NewProviderError(kind error, op, details string, err error) *ProviderError {
	return &ProviderError{
		Kind:    kind,
		Op:      op,
		Details: details,
		Err:     err,
	}
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Is(target error) bool {
	return target == e.Kind
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
