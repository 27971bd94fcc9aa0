package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/plastinin/fileconverter/internal/adapter/http/dto"
	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/plastinin/fileconverter/internal/usecase"
	"go.uber.org/zap"
)

// responder общие методы формирования ответов
type responder struct {
	logger *zap.Logger
}

// respondJSON отправляет JSON ответ
func (h responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError отправляет ответ с ошибкой
func (h responder) respondError(w http.ResponseWriter, status int, message string, details string) {
	h.respondJSON(w, status, dto.NewErrorResponse(message, details))
}

// respondAttachment отдаёт файл как вложение
func (h responder) respondAttachment(w http.ResponseWriter, fileName, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write attachment", zap.String("file", fileName), zap.Error(err))
	}
}

// fail классифицирует ошибку и отправляет ответ {error, details}.
// fallback — сообщение для ошибок провайдеров и внутренних ошибок.
func (h responder) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	message, details := describe(err, fallback)
	h.log(r, status, err)
	h.respondError(w, status, message, details)
}

// log пишет ошибку с уровнем по классу: клиентские — Warn, остальные — Error
func (h responder) log(r *http.Request, status int, err error) {
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status < http.StatusInternalServerError && status != http.StatusPaymentRequired {
		h.logger.Warn("Request rejected", fields...)
		return
	}
	h.logger.Error("Request failed", fields...)
}

// statusFor сопоставляет ошибке HTTP статус
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrAssetNotFound), errors.Is(err, domain.ErrOperationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrProviderUnavailable),
		errors.Is(err, usecase.ErrJournalDisabled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// describe возвращает сообщение и подробности для клиента
func describe(err error, fallback string) (string, string) {
	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		return inputErr.Message, inputErr.Details()
	}

	switch {
	case errors.Is(err, domain.ErrAssetNotFound):
		return "File not found", err.Error()
	case errors.Is(err, domain.ErrOperationNotFound):
		return "Operation not found", ""
	case errors.Is(err, usecase.ErrJournalDisabled):
		return "Operation journal is disabled", ""
	}

	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) && providerErr.Details != "" {
		return fallback, providerErr.Details
	}
	return fallback, err.Error()
}

// contentDisposition заголовок вложения. Для имён не в ASCII добавляется
// filename* по RFC 6266, а filename остаётся ASCII-заменой
func contentDisposition(fileName string) string {
	name := quoteSafe(fileName)
	fallback := asciiFallback(name)
	if fallback == name {
		return fmt.Sprintf(`attachment; filename="%s"`, name)
	}

	encoded := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if encoded == "" {
		return fmt.Sprintf(`attachment; filename="%s"`, fallback)
	}
	return fmt.Sprintf(`attachment; filename="%s"; %s`, fallback, strings.TrimPrefix(encoded, "attachment; "))
}

func asciiFallback(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '_'
		}
		return r
	}, name)
}

// quoteSafe убирает из имени файла символы, ломающие заголовок
func quoteSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '\r', '\n':
			return '_'
		}
		return r
	}, name)
}
