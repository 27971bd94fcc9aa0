package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plastinin/fileconverter/internal/adapter/http/dto"
	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/plastinin/fileconverter/internal/usecase"
	"go.uber.org/zap"
)

// ImageHandler обработчик операций над изображениями
type ImageHandler struct {
	responder
	images  *usecase.ImageUseCase
	uploads *Uploads
}

// NewImageHandler создаёт новый ImageHandler
func NewImageHandler(images *usecase.ImageUseCase, uploads *Uploads, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		responder: responder{logger: logger},
		images:    images,
		uploads:   uploads,
	}
}

// CompressImage сжимает изображение с конвертацией в PDF
// POST /api/compress-image
// - file: изображение
func (h *ImageHandler) CompressImage(w http.ResponseWriter, r *http.Request) {
	batch, err := h.uploads.receive(w, r)
	if err != nil {
		h.fail(w, r, err, "Compression failed")
		return
	}
	defer batch.Release()

	result, err := h.images.CompressImage(r.Context(), usecase.ImageInput{File: firstFile(batch.Files())})
	if err != nil {
		h.fail(w, r, err, "Compression failed")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.LinkFromAsset(result.Asset, "Image compressed and converted to PDF successfully"))
}

// Upscale улучшает изображение и отдаёт JPEG
// POST /api/upscale
// - file: изображение
func (h *ImageHandler) Upscale(w http.ResponseWriter, r *http.Request) {
	batch, err := h.uploads.receive(w, r)
	if err != nil {
		h.fail(w, r, err, "Image enhancement failed")
		return
	}
	defer batch.Release()

	result, err := h.images.Upscale(r.Context(), usecase.ImageInput{File: firstFile(batch.Files())})
	if err != nil {
		h.fail(w, r, err, "Image enhancement failed")
		return
	}

	h.respondAttachment(w, result.FileName, result.ContentType, result.Data)
}

// AssetInfo возвращает метаданные ассета
// GET /api/asset-info/{id...}
func (h *ImageHandler) AssetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.images.AssetInfo(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		h.fail(w, r, err, "Failed to get file info")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.AssetInfoFromDomain(info))
}

// firstFile единственный файл операции; лишние файлы отклонит валидация
func firstFile(files []*domain.UploadedFile) *domain.UploadedFile {
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
