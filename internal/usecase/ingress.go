package usecase

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/plastinin/fileconverter/internal/domain"
	"go.uber.org/zap"
)

// UploadLimits ограничения на загружаемые файлы
type UploadLimits struct {
	MaxFileSize int64
	MaxFiles    int
}

// Ingress проверка загруженных файлов до любого обращения к внешним сервисам
type Ingress struct {
	limits UploadLimits
	logger *zap.Logger
}

// NewIngress создаёт новый экземпляр Ingress
func NewIngress(limits UploadLimits, logger *zap.Logger) *Ingress {
	return &Ingress{
		limits: limits,
		logger: logger,
	}
}

// RuleFor возвращает правило приёма файлов для операции
func (in *Ingress) RuleFor(kind domain.OperationKind) domain.UploadRule {
	switch kind {
	case domain.OperationCompressImage, domain.OperationUpscale:
		return domain.ImageUploadRule(in.limits.MaxFileSize, 1, 1)
	case domain.OperationImagesToPDF:
		return domain.ImageUploadRule(in.limits.MaxFileSize, 1, in.limits.MaxFiles)
	case domain.OperationMergePDF:
		return domain.PDFUploadRule(in.limits.MaxFileSize, 2, in.limits.MaxFiles)
	default:
		return domain.PDFUploadRule(in.limits.MaxFileSize, 1, 1)
	}
}

// Validate проверяет все файлы запроса. Если хотя бы один не проходит,
// отклоняется весь запрос.
func (in *Ingress) Validate(kind domain.OperationKind, files []*domain.UploadedFile) error {
	rule := in.RuleFor(kind)

	if len(files) == 0 {
		return domain.NewInputError("no file uploaded")
	}
	if len(files) < rule.MinFiles {
		return domain.NewInputError(fmt.Sprintf("at least %d files are required", rule.MinFiles))
	}
	if len(files) > rule.MaxFiles {
		return domain.NewInputError(fmt.Sprintf("at most %d files are allowed", rule.MaxFiles))
	}

	for _, f := range files {
		if err := in.validateFile(f, rule); err != nil {
			in.logger.Warn("Upload rejected",
				zap.String("operation", string(kind)),
				zap.String("file_name", f.FileName),
				zap.Error(err),
			)
			return err
		}
	}

	return nil
}

func (in *Ingress) validateFile(f *domain.UploadedFile, rule domain.UploadRule) error {
	if !rule.AllowsExtension(f.Ext()) {
		return &domain.InputError{
			Message: "unsupported file type",
			File:    f.FileName,
			Allowed: rule.AllowedList(),
		}
	}
	if f.Size == 0 {
		return &domain.InputError{Message: "uploaded file is empty", File: f.FileName}
	}
	if f.Size > rule.MaxSize {
		return &domain.InputError{
			Message: fmt.Sprintf("file exceeds %d bytes", rule.MaxSize),
			File:    f.FileName,
		}
	}

	// Расширение может не соответствовать содержимому
	mt, err := mimetype.DetectFile(f.Path)
	if err != nil {
		return fmt.Errorf("failed to detect content type of %s: %w", f.FileName, err)
	}
	if !rule.MatchesFamily(mt.String()) {
		return &domain.InputError{
			Message: fmt.Sprintf("file content does not match its extension (detected %s)", mt.String()),
			File:    f.FileName,
			Allowed: rule.AllowedList(),
		}
	}
	f.ContentType = mt.String()

	return nil
}
