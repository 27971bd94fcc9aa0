package dto

import (
	"time"

	"github.com/plastinin/fileconverter/internal/domain"
)

// LinkResponse результат, сохранённый у провайдера и отданный ссылкой
type LinkResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	DownloadURL string `json:"downloadUrl"`
	Size        int64  `json:"size"`
	Format      string `json:"format"`
}

// LinkFromAsset конвертирует ассет в ответ со ссылкой
func LinkFromAsset(asset *domain.AssetRef, message string) *LinkResponse {
	return &LinkResponse{
		Success:     true,
		Message:     message,
		DownloadURL: asset.URL,
		Size:        asset.Bytes,
		Format:      asset.Format,
	}
}

// AssetInfoResponse метаданные ассета
type AssetInfoResponse struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Bytes        int64  `json:"bytes"`
	Format       string `json:"format"`
	ResourceType string `json:"resourceType"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// AssetInfoFromDomain конвертирует метаданные ассета в DTO
func AssetInfoFromDomain(info *domain.AssetInfo) *AssetInfoResponse {
	resp := &AssetInfoResponse{
		ID:           info.ID,
		URL:          info.URL,
		Bytes:        info.Bytes,
		Format:       info.Format,
		ResourceType: info.ResourceType,
		Width:        info.Width,
		Height:       info.Height,
	}
	if !info.CreatedAt.IsZero() {
		resp.CreatedAt = info.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
