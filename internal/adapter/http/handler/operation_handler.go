package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/plastinin/fileconverter/internal/adapter/http/dto"
	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/plastinin/fileconverter/internal/usecase"
	"go.uber.org/zap"
)

// OperationHandler обработчик журнала операций
type OperationHandler struct {
	responder
	operations *usecase.OperationUseCase
}

// NewOperationHandler создаёт новый OperationHandler
func NewOperationHandler(operations *usecase.OperationUseCase, logger *zap.Logger) *OperationHandler {
	return &OperationHandler{
		responder:  responder{logger: logger},
		operations: operations,
	}
}

// GetByID возвращает запись журнала по ID
// GET /api/operations/{id}
func (h *OperationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid operation ID", err.Error())
		return
	}

	op, err := h.operations.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get operation")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.OperationFromDomain(op))
}

// List возвращает страницу журнала
// GET /api/operations?page=1&page_size=20&kind=merge_pdf&status=failed
func (h *OperationHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	pagination := domain.NewPagination(page, pageSize)

	var filter domain.OperationFilter
	if kindStr := query.Get("kind"); kindStr != "" {
		kind := domain.OperationKind(kindStr)
		if !kind.IsValid() {
			h.respondError(w, http.StatusBadRequest, "Invalid kind filter", kindStr)
			return
		}
		filter.Kind = &kind
	}
	if statusStr := query.Get("status"); statusStr != "" {
		status := domain.OperationStatus(statusStr)
		if !status.IsValid() {
			h.respondError(w, http.StatusBadRequest, "Invalid status filter", statusStr)
			return
		}
		filter.Status = &status
	}

	result, err := h.operations.List(r.Context(), filter, pagination)
	if err != nil {
		h.fail(w, r, err, "Failed to list operations")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.OperationListFromDomain(result))
}
