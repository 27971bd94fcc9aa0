package usecase

import (
	"context"
	"strings"

	"github.com/plastinin/fileconverter/internal/domain"
	"go.uber.org/zap"
)

// ImageDeps зависимости ImageUseCase
type ImageDeps struct {
	Ingress    *Ingress
	Assets     AssetHost
	Cleaner    AssetCleaner
	Operations OperationRepository
	Logger     *zap.Logger
}

// ImageUseCase операции, которые целиком выполняет хранилище ассетов
type ImageUseCase struct {
	ingress *Ingress
	assets  AssetHost
	journal *journal
	logger  *zap.Logger
}

// NewImageUseCase создаёт новый экземпляр ImageUseCase
func NewImageUseCase(deps ImageDeps) *ImageUseCase {
	return &ImageUseCase{
		ingress: deps.Ingress,
		assets:  deps.Assets,
		journal: &journal{
			repo:    deps.Operations,
			cleaner: deps.Cleaner,
			logger:  deps.Logger,
		},
		logger: deps.Logger,
	}
}

// CompressImage загружает изображение с конвертацией в PDF и автоматическим качеством.
// Ассет остаётся у провайдера: клиент получает на него ссылку.
func (uc *ImageUseCase) CompressImage(ctx context.Context, input ImageInput) (result *CompressedImage, err error) {
	files := singleFile(input.File)
	if err := uc.ingress.Validate(domain.OperationCompressImage, files); err != nil {
		return nil, err
	}

	op := domain.NewOperation(domain.OperationCompressImage, files)
	defer func() {
		var outputBytes int64
		if result != nil {
			outputBytes = result.Asset.Bytes
		}
		uc.journal.finish(ctx, op, outputBytes, err)
	}()

	asset, err := uc.assets.PushFile(ctx, input.File.Path, domain.PushOptions{
		NameHint:     input.File.FileName,
		Prefix:       "compressed",
		ResourceType: "image",
		Format:       "pdf",
		Quality:      "auto:good",
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Image compressed",
		zap.String("operation_id", op.ID.String()),
		zap.String("asset_id", asset.ID),
		zap.Int64("size", asset.Bytes),
	)

	return &CompressedImage{Asset: asset}, nil
}

// Upscale улучшает изображение преобразованиями провайдера и возвращает JPEG
func (uc *ImageUseCase) Upscale(ctx context.Context, input ImageInput) (result *BinaryResult, err error) {
	files := singleFile(input.File)
	if err := uc.ingress.Validate(domain.OperationUpscale, files); err != nil {
		return nil, err
	}

	op := domain.NewOperation(domain.OperationUpscale, files)
	defer func() {
		var outputBytes int64
		if result != nil {
			outputBytes = int64(len(result.Data))
		}
		uc.journal.finish(ctx, op, outputBytes, err)
	}()

	original, err := uc.assets.PushFile(ctx, input.File.Path, domain.PushOptions{
		NameHint:     input.File.FileName,
		Folder:       "image-enhanced",
		ResourceType: "image",
	})
	if err != nil {
		return nil, err
	}
	defer uc.journal.scheduleCleanup(ctx, []*domain.AssetRef{original})

	data, err := uc.assets.FetchTransformed(ctx, *original, domain.UpscaleTransform)
	if err != nil {
		return nil, err
	}

	return &BinaryResult{
		FileName:    input.File.BaseName() + "_enhanced.jpg",
		ContentType: "image/jpeg",
		Data:        data,
	}, nil
}

// AssetInfo возвращает метаданные ассета
func (uc *ImageUseCase) AssetInfo(ctx context.Context, id string) (*domain.AssetInfo, error) {
	id = strings.Trim(strings.TrimSpace(id), "/")
	if id == "" {
		return nil, domain.NewInputError("asset id is required")
	}
	return uc.assets.AssetInfo(ctx, id)
}

func singleFile(f *domain.UploadedFile) []*domain.UploadedFile {
	if f == nil {
		return nil
	}
	return []*domain.UploadedFile{f}
}
