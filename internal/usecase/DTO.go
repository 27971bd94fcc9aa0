package usecase

import (
	"github.com/plastinin/fileconverter/internal/domain"
)

// Delivery способ выдачи результата PDF операций
type Delivery string

const (
	DeliveryAttachment Delivery = "attachment" // Файл в теле ответа
	DeliveryLink       Delivery = "link"       // Ссылка на ассет у провайдера
)

// DocumentInput входные данные PDF операций
type DocumentInput struct {
	Files    []*domain.UploadedFile // В порядке, выбранном пользователем
	Options  domain.ProcessOptions
	Delivery Delivery
}

// DocumentResult результат PDF операции.
// При DeliveryLink заполнен Asset, иначе Data.
type DocumentResult struct {
	FileName    string
	ContentType string
	Data        []byte
	Asset       *domain.AssetRef
}

// ImageInput входные данные операций над одним изображением
type ImageInput struct {
	File *domain.UploadedFile
}

// CompressedImage результат сжатия изображения
type CompressedImage struct {
	Asset *domain.AssetRef
}

// BinaryResult бинарный результат с именем файла для Content-Disposition
type BinaryResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// GenerateImageInput входные данные генерации
type GenerateImageInput struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

// GeneratedImage результат генерации, готовый к показу в браузере
type GeneratedImage struct {
	DataURI string
}
