package domain

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxAssetNameLength = 64

var unsafeAssetChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// AssetRef ссылка на файл, сохранённый во внешнем хранилище ассетов
type AssetRef struct {
	ID           string `json:"id"`            // Идентификатор у провайдера (public_id / ключ объекта)
	URL          string `json:"url"`           // Постоянный URL для скачивания
	Bytes        int64  `json:"bytes"`         // Размер
	Format       string `json:"format"`        // Формат (pdf, jpg, png...)
	ResourceType string `json:"resource_type"` // image / raw
}

// AssetInfo метаданные ассета для /asset-info
type AssetInfo struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Bytes        int64     `json:"bytes"`
	Format       string    `json:"format"`
	ResourceType string    `json:"resource_type"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PushOptions параметры загрузки во внешнее хранилище
type PushOptions struct {
	NameHint     string // Исходное имя файла, из него строится идентификатор
	Prefix       string // Префикс идентификатора, например "compressed"
	Folder       string // Папка у провайдера
	ResourceType string // image / auto
	Format       string // Целевой формат, если провайдер конвертирует при загрузке
	Quality      string // Качество, например "auto:good"
	BestEffort   bool   // Format и Quality необязательны: драйвер без преобразований сохранит файл как есть
}

// Transform цепочка преобразований при выдаче ассета (шаги в синтаксисе провайдера)
type Transform []string

func (t Transform) String() string {
	return strings.Join(t, "/")
}

// UpscaleTransform улучшение изображения: качество, резкость, контраст, цвет,
// увеличение до 2000px по большей стороне, выдача в JPEG
var UpscaleTransform = Transform{
	"q_auto:best",
	"e_sharpen",
	"e_auto_contrast",
	"e_auto_color",
	"c_limit,h_2000,w_2000",
	"f_jpg",
}

// GeneratedAsset результат генерации изображения
type GeneratedAsset struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
}

// NewAssetID строит уникальный идентификатор ассета: [prefix_]name_uuid
func NewAssetID(prefix, nameHint string) string {
	name := filepath.Base(nameHint)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Trim(unsafeAssetChars.ReplaceAllString(name, "_"), "_")
	if len(name) > maxAssetNameLength {
		name = name[:maxAssetNameLength]
	}
	if name == "" {
		name = "file"
	}

	id := name + "_" + uuid.New().String()
	if prefix != "" {
		id = prefix + "_" + id
	}
	return id
}
