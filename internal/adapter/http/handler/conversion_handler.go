package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/plastinin/fileconverter/internal/adapter/http/dto"
	"github.com/plastinin/fileconverter/internal/adapter/tempstore"
	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/plastinin/fileconverter/internal/usecase"
	"go.uber.org/zap"
)

// ConversionHandler обработчик PDF операций
type ConversionHandler struct {
	responder
	documents *usecase.DocumentUseCase
	uploads   *Uploads
}

// NewConversionHandler создаёт новый ConversionHandler
func NewConversionHandler(documents *usecase.DocumentUseCase, uploads *Uploads, logger *zap.Logger) *ConversionHandler {
	return &ConversionHandler{
		responder: responder{logger: logger},
		documents: documents,
		uploads:   uploads,
	}
}

// Compress сжимает PDF
// POST /api/compress
// Content-Type: multipart/form-data
// - file: PDF
// - compression_level: low | recommended | high (необязательно)
// - delivery: attachment | link (необязательно)
func (h *ConversionHandler) Compress(w http.ResponseWriter, r *http.Request) {
	batch, err := h.uploads.receive(w, r)
	if err != nil {
		h.fail(w, r, err, "Compression failed")
		return
	}
	defer batch.Release()

	opts := domain.DefaultProcessOptions(domain.TaskKindCompress)
	if level := strings.TrimSpace(batch.Value("compression_level")); level != "" {
		opts.CompressionLevel = domain.CompressionLevel(strings.ToLower(level))
	}

	result, err := h.documents.CompressPDF(r.Context(), usecase.DocumentInput{
		Files:    batch.Files(),
		Options:  opts,
		Delivery: parseDelivery(batch),
	})
	if err != nil {
		h.fail(w, r, err, "Compression failed")
		return
	}

	h.respondDocument(w, result, "PDF compressed successfully")
}

// Merge объединяет PDF в порядке загрузки
// POST /api/merge
// - files: PDF, не меньше двух
func (h *ConversionHandler) Merge(w http.ResponseWriter, r *http.Request) {
	batch, err := h.uploads.receive(w, r)
	if err != nil {
		h.fail(w, r, err, "Merge failed")
		return
	}
	defer batch.Release()

	result, err := h.documents.MergePDF(r.Context(), usecase.DocumentInput{
		Files:    batch.Files(),
		Delivery: parseDelivery(batch),
	})
	if err != nil {
		h.fail(w, r, err, "Merge failed")
		return
	}

	h.respondDocument(w, result, "PDFs merged successfully")
}

// ImageToPDF собирает изображения в PDF
// POST /api/image-to-pdf
// - files: изображения
// - pagesize: fit | A4 | letter, margin: число, orientation: portrait | landscape
func (h *ConversionHandler) ImageToPDF(w http.ResponseWriter, r *http.Request) {
	batch, err := h.uploads.receive(w, r)
	if err != nil {
		h.fail(w, r, err, "Image to PDF conversion failed")
		return
	}
	defer batch.Release()

	opts, err := imagePDFOptions(batch)
	if err != nil {
		h.fail(w, r, err, "Image to PDF conversion failed")
		return
	}

	result, err := h.documents.ImagesToPDF(r.Context(), usecase.DocumentInput{
		Files:    batch.Files(),
		Options:  opts,
		Delivery: parseDelivery(batch),
	})
	if err != nil {
		h.fail(w, r, err, "Image to PDF conversion failed")
		return
	}

	h.respondDocument(w, result, "Images converted to PDF successfully")
}

// respondDocument отдаёт PDF вложением или JSON со ссылкой
func (h *ConversionHandler) respondDocument(w http.ResponseWriter, result *usecase.DocumentResult, message string) {
	if result.Asset != nil {
		h.respondJSON(w, http.StatusOK, dto.LinkFromAsset(result.Asset, message))
		return
	}
	h.respondAttachment(w, result.FileName, result.ContentType, result.Data)
}

func imagePDFOptions(batch *tempstore.Batch) (domain.ProcessOptions, error) {
	opts := domain.DefaultProcessOptions(domain.TaskKindImagesToPDF)

	if v := strings.TrimSpace(batch.Value("pagesize")); v != "" {
		opts.PageSize = v
	}
	if v := strings.TrimSpace(batch.Value("orientation")); v != "" {
		opts.Orientation = strings.ToLower(v)
	}
	if v := strings.TrimSpace(batch.Value("margin")); v != "" {
		margin, err := strconv.Atoi(v)
		if err != nil {
			return opts, domain.NewInputError("margin must be an integer")
		}
		opts.Margin = margin
	}
	return opts, nil
}

func parseDelivery(batch *tempstore.Batch) usecase.Delivery {
	if strings.EqualFold(strings.TrimSpace(batch.Value("delivery")), string(usecase.DeliveryLink)) {
		return usecase.DeliveryLink
	}
	return usecase.DeliveryAttachment
}
