package handler

import (
	"net/http"
	"time"

	"github.com/plastinin/fileconverter/internal/adapter/http/dto"
	"go.uber.org/zap"
)

// HealthHandler обработчик health check запросов
type HealthHandler struct {
	responder
	services dto.HealthServices
	now      func() time.Time
}

// NewHealthHandler создаёт новый HealthHandler.
// services — какие внешние сервисы настроены при запуске.
func NewHealthHandler(services dto.HealthServices, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		responder: responder{logger: logger},
		services:  services,
		now:       time.Now,
	}
}

// Check проверяет состояние сервиса
// GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Services:  h.services,
	})
}
