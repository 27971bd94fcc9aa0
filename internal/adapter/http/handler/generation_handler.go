package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/plastinin/fileconverter/internal/adapter/http/dto"
	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/plastinin/fileconverter/internal/usecase"
	"go.uber.org/zap"
)

const maxPromptBodySize = 64 << 10

// GenerationHandler обработчик генерации изображений
type GenerationHandler struct {
	responder
	generation *usecase.GenerationUseCase
}

// NewGenerationHandler создаёт новый GenerationHandler
func NewGenerationHandler(generation *usecase.GenerationUseCase, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		responder:  responder{logger: logger},
		generation: generation,
	}
}

// Generate генерирует изображение по описанию
// POST /api/generate-image
// Body: {"prompt": "..."}
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPromptBodySize)

	var req dto.GenerateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid generation request body", zap.Error(err))
		h.respondJSON(w, http.StatusBadRequest, dto.GenerationErrorResponse{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	result, err := h.generation.Generate(r.Context(), usecase.GenerateImageInput{Prompt: req.Prompt})
	if err != nil {
		h.failGeneration(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.GeneratedImageResponse{
		Success: true,
		Photo:   result.DataURI,
	})
}

// failGeneration отвечает в формате {success:false, ...}
func (h *GenerationHandler) failGeneration(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	h.log(r, status, err)

	if errors.Is(err, domain.ErrQuotaExceeded) {
		message := "Image generation quota exceeded"
		var providerErr *domain.ProviderError
		if errors.As(err, &providerErr) && providerErr.Details != "" {
			message = providerErr.Details
		}
		h.respondJSON(w, status, dto.GenerationErrorResponse{Success: false, Message: message})
		return
	}

	message, details := describe(err, "Image generation failed")
	h.respondJSON(w, status, dto.GenerationErrorResponse{
		Success: false,
		Error:   message,
		Details: details,
	})
}
