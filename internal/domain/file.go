package domain

import (
	"path/filepath"
	"strings"
)

// FileFamily семейство файлов, с которым работает операция
type FileFamily string

const (
	FileFamilyImage FileFamily = "image"
	FileFamilyPDF   FileFamily = "pdf"
)

// Допустимые расширения по семействам
var (
	ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"}
	PDFExtensions   = []string{".pdf"}
)

// Маппинг расширений на MIME типы
var extToContentType = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".pdf":  "application/pdf",
}

// UploadedFile файл запроса, уже сохранённый во временное хранилище
type UploadedFile struct {
	Path        string // Путь на локальном диске
	FileName    string // Оригинальное имя файла
	Size        int64  // Фактический размер на диске
	ContentType string // MIME тип, заявленный клиентом
}

// Ext возвращает расширение в нижнем регистре, с точкой
func (f *UploadedFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.FileName))
}

// BaseName возвращает имя файла без расширения
func (f *UploadedFile) BaseName() string {
	name := filepath.Base(f.FileName)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// UploadRule правила приёма файлов для конкретной операции
type UploadRule struct {
	Family     FileFamily
	Extensions []string
	MaxSize    int64
	MinFiles   int
	MaxFiles   int
}

// ImageUploadRule правило для операций над изображениями
func ImageUploadRule(maxSize int64, minFiles, maxFiles int) UploadRule {
	return UploadRule{
		Family:     FileFamilyImage,
		Extensions: ImageExtensions,
		MaxSize:    maxSize,
		MinFiles:   minFiles,
		MaxFiles:   maxFiles,
	}
}

// PDFUploadRule правило для операций над PDF
func PDFUploadRule(maxSize int64, minFiles, maxFiles int) UploadRule {
	return UploadRule{
		Family:     FileFamilyPDF,
		Extensions: PDFExtensions,
		MaxSize:    maxSize,
		MinFiles:   minFiles,
		MaxFiles:   maxFiles,
	}
}

// AllowsExtension проверяет, входит ли расширение в список допустимых
func (r UploadRule) AllowsExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range r.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// AllowedList возвращает допустимые расширения без точки, для сообщений об ошибке
func (r UploadRule) AllowedList() []string {
	list := make([]string, len(r.Extensions))
	for i, ext := range r.Extensions {
		list[i] = strings.TrimPrefix(ext, ".")
	}
	return list
}

// MatchesFamily проверяет, что определённый по содержимому MIME тип относится к семейству
func (r UploadRule) MatchesFamily(contentType string) bool {
	switch r.Family {
	case FileFamilyImage:
		return IsImage(contentType)
	case FileFamilyPDF:
		return IsPDF(contentType)
	}
	return false
}

// ContentTypeFromFileName определяет MIME тип по имени файла
func ContentTypeFromFileName(fileName string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(fileName))
	ct, ok := extToContentType[ext]
	return ct, ok
}

// IsImage проверяет, является ли файл изображением
func IsImage(contentType string) bool {
	return strings.HasPrefix(normalizeContentType(contentType), "image/")
}

// IsPDF проверяет, является ли файл PDF
func IsPDF(contentType string) bool {
	return normalizeContentType(contentType) == "application/pdf"
}

func normalizeContentType(contentType string) string {
	// Убираем параметры типа charset
	ct := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(ct))
}
