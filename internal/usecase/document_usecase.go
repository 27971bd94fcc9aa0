package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/plastinin/fileconverter/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pdfContentType = "application/pdf"

// DocumentDeps зависимости DocumentUseCase
type DocumentDeps struct {
	Ingress    *Ingress
	Assets     AssetHost
	Processor  DocumentProcessor
	Cleaner    AssetCleaner        // nil — промежуточные ассеты не удаляются
	Operations OperationRepository // nil — журнал отключён
	Pages      PageCounter         // nil — страницы не считаются
	PushLimit  int                 // Сколько файлов загружать параллельно
	Logger     *zap.Logger
}

// DocumentUseCase PDF операции: сжатие, объединение, конвертация изображений в PDF
type DocumentUseCase struct {
	ingress   *Ingress
	assets    AssetHost
	processor DocumentProcessor
	journal   *journal
	pushLimit int
	logger    *zap.Logger
}

// NewDocumentUseCase создаёт новый экземпляр DocumentUseCase
func NewDocumentUseCase(deps DocumentDeps) *DocumentUseCase {
	pushLimit := deps.PushLimit
	if pushLimit <= 0 {
		pushLimit = 1
	}
	return &DocumentUseCase{
		ingress:   deps.Ingress,
		assets:    deps.Assets,
		processor: deps.Processor,
		journal: &journal{
			repo:    deps.Operations,
			cleaner: deps.Cleaner,
			pages:   deps.Pages,
			logger:  deps.Logger,
		},
		pushLimit: pushLimit,
		logger:    deps.Logger,
	}
}

// documentPipeline описание одной PDF операции
type documentPipeline struct {
	operation  domain.OperationKind
	task       domain.TaskKind
	push       domain.PushOptions
	outputName string
}

// CompressPDF сжимает один PDF
func (uc *DocumentUseCase) CompressPDF(ctx context.Context, input DocumentInput) (*DocumentResult, error) {
	outputName := "compressed.pdf"
	if len(input.Files) > 0 {
		outputName = "compressed_" + input.Files[0].FileName
	}
	return uc.run(ctx, documentPipeline{
		operation:  domain.OperationCompressPDF,
		task:       domain.TaskKindCompress,
		push:       domain.PushOptions{Folder: "pdfs", ResourceType: "auto"},
		outputName: outputName,
	}, input)
}

// MergePDF объединяет несколько PDF в порядке загрузки
func (uc *DocumentUseCase) MergePDF(ctx context.Context, input DocumentInput) (*DocumentResult, error) {
	return uc.run(ctx, documentPipeline{
		operation:  domain.OperationMergePDF,
		task:       domain.TaskKindMerge,
		push:       domain.PushOptions{Folder: "merge", ResourceType: "auto"},
		outputName: "merged_document.pdf",
	}, input)
}

// ImagesToPDF собирает изображения в один PDF, по странице на изображение
func (uc *DocumentUseCase) ImagesToPDF(ctx context.Context, input DocumentInput) (*DocumentResult, error) {
	return uc.run(ctx, documentPipeline{
		operation:  domain.OperationImagesToPDF,
		task:       domain.TaskKindImagesToPDF,
		push:       domain.PushOptions{Folder: "images-to-pdf", ResourceType: "image", Quality: "auto:best", BestEffort: true},
		outputName: fmt.Sprintf("merged_images_%d.pdf", time.Now().UnixMilli()),
	}, input)
}

// run проверяет вход, загружает файлы, проводит задачу через все состояния
// и выдаёт результат
func (uc *DocumentUseCase) run(ctx context.Context, p documentPipeline, input DocumentInput) (result *DocumentResult, err error) {
	if err := uc.ingress.Validate(p.operation, input.Files); err != nil {
		return nil, err
	}
	if err := input.Options.Validate(p.task); err != nil {
		return nil, err
	}

	op := domain.NewOperation(p.operation, input.Files)
	defer func() {
		var outputBytes int64
		if result != nil {
			outputBytes = int64(len(result.Data))
			if result.Asset != nil {
				outputBytes = result.Asset.Bytes
			}
		}
		uc.journal.finish(ctx, op, outputBytes, err)
	}()

	uc.logger.Info("Starting document operation",
		zap.String("operation_id", op.ID.String()),
		zap.String("operation", string(p.operation)),
		zap.Int("files", len(input.Files)),
	)

	refs, err := uc.pushAll(ctx, input.Files, p.push)
	// Удаляем то, что успело загрузиться, даже если часть загрузок упала
	defer uc.journal.scheduleCleanup(ctx, refs)
	if err != nil {
		return nil, err
	}

	data, err := uc.process(ctx, p.task, refs, input.Options)
	if err != nil {
		return nil, err
	}
	uc.journal.countPages(op, data)

	result = &DocumentResult{
		FileName:    p.outputName,
		ContentType: pdfContentType,
		Data:        data,
	}

	if input.Delivery == DeliveryLink {
		asset, err := uc.assets.PushBuffer(ctx, data, domain.PushOptions{
			NameHint:     p.outputName,
			Folder:       "results",
			ResourceType: "auto",
			Format:       "pdf",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store result: %w", err)
		}
		result.Data = nil
		result.Asset = asset
	}

	uc.logger.Info("Document operation completed",
		zap.String("operation_id", op.ID.String()),
		zap.Int("result_size", len(data)),
	)

	return result, nil
}

// pushAll загружает файлы параллельно. Ссылки раскладываются по индексу
// исходного файла, порядок завершения загрузок на результат не влияет.
func (uc *DocumentUseCase) pushAll(ctx context.Context, files []*domain.UploadedFile, opts domain.PushOptions) ([]*domain.AssetRef, error) {
	refs := make([]*domain.AssetRef, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.pushLimit)

	for i, f := range files {
		g.Go(func() error {
			fileOpts := opts
			fileOpts.NameHint = f.FileName

			ref, err := uc.assets.PushFile(gctx, f.Path, fileOpts)
			if err != nil {
				return fmt.Errorf("failed to push %s: %w", f.FileName, err)
			}
			refs[i] = ref
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return refs, err
	}
	return refs, nil
}

// process проводит задачу: created -> started -> inputs -> processed -> downloaded
func (uc *DocumentUseCase) process(ctx context.Context, kind domain.TaskKind, refs []*domain.AssetRef, opts domain.ProcessOptions) ([]byte, error) {
	task, err := uc.processor.CreateTask(kind)
	if err != nil {
		return nil, err
	}

	if err := uc.processor.Start(ctx, task); err != nil {
		return nil, err
	}

	// Строго по индексу: порядок страниц должен совпасть с выбором пользователя
	for _, ref := range refs {
		if err := uc.processor.AddInput(ctx, task, *ref); err != nil {
			return nil, err
		}
	}

	if err := uc.processor.Process(ctx, task, opts); err != nil {
		return nil, err
	}

	return uc.processor.Download(ctx, task)
}
