package usecase

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type documentFixture struct {
	assets     *fakeAssetHost
	processor  *fakeProcessor
	cleaner    *fakeCleaner
	operations *fakeOperations
	uc         *DocumentUseCase
}

func newDocumentFixture() *documentFixture {
	f := &documentFixture{
		assets:     &fakeAssetHost{},
		processor:  &fakeProcessor{output: []byte("%PDF-1.4 result")},
		cleaner:    &fakeCleaner{},
		operations: &fakeOperations{},
	}
	f.uc = NewDocumentUseCase(DocumentDeps{
		Ingress:    testIngress(),
		Assets:     f.assets,
		Processor:  f.processor,
		Cleaner:    f.cleaner,
		Operations: f.operations,
		Pages:      fakePages{pages: 2},
		PushLimit:  5,
		Logger:     zap.NewNop(),
	})
	return f
}

func TestCompressPDF_ReturnsProviderBytes(t *testing.T) {
	f := newDocumentFixture()
	f.processor.output = []byte("%PDF-smaller")
	file := writeFile(t, "report.pdf", []byte(samplePDF))

	result, err := f.uc.CompressPDF(context.Background(), DocumentInput{
		Files:   []*domain.UploadedFile{file},
		Options: domain.DefaultProcessOptions(domain.TaskKindCompress),
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-smaller"), result.Data)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "compressed_report.pdf", result.FileName)
	assert.Nil(t, result.Asset)

	require.Len(t, f.processor.tasks, 1)
	task := f.processor.tasks[0]
	assert.Equal(t, domain.TaskKindCompress, task.Kind)
	assert.Equal(t, domain.TaskStateDownloaded, task.State)
	assert.Equal(t, domain.CompressionRecommended, f.processor.opts.CompressionLevel)
	assert.Equal(t, "pdfs", f.assets.pushed[0].Folder)

	op := f.operations.last(t)
	assert.Equal(t, domain.OperationStatusCompleted, op.Status)
	assert.Equal(t, int64(len("%PDF-smaller")), op.OutputBytes)
	require.NotNil(t, op.PageCount)
	assert.Equal(t, 2, *op.PageCount)

	assert.Equal(t, []string{"report.pdf"}, f.cleaner.scheduled)
}

func TestMergePDF_PreservesOrderWhenPushesFinishOutOfOrder(t *testing.T) {
	f := newDocumentFixture()
	// c завершается первой и открывает b, b открывает a
	f.assets.gates = map[string]chan struct{}{
		"a.pdf": make(chan struct{}),
		"b.pdf": make(chan struct{}),
	}
	f.assets.opens = map[string]string{
		"c.pdf": "b.pdf",
		"b.pdf": "a.pdf",
	}

	files := []*domain.UploadedFile{
		writeFile(t, "a.pdf", []byte(samplePDF)),
		writeFile(t, "b.pdf", []byte(samplePDF)),
		writeFile(t, "c.pdf", []byte(samplePDF)),
	}

	result, err := f.uc.MergePDF(context.Background(), DocumentInput{Files: files})
	require.NoError(t, err)
	assert.Equal(t, "merged_document.pdf", result.FileName)

	assert.Equal(t, []string{"c.pdf", "b.pdf", "a.pdf"}, f.assets.completed)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, f.processor.added)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, f.processor.tasks[0].InputIDs())
}

func TestImagesToPDF_RecordsInputOrder(t *testing.T) {
	f := newDocumentFixture()
	files := []*domain.UploadedFile{
		writeFile(t, "p1.png", pngPixel(t, color.White)),
		writeFile(t, "p2.png", pngPixel(t, color.Black)),
		writeFile(t, "p3.png", pngPixel(t, color.Gray{Y: 128})),
	}

	result, err := f.uc.ImagesToPDF(context.Background(), DocumentInput{
		Files:   files,
		Options: domain.DefaultProcessOptions(domain.TaskKindImagesToPDF),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.FileName, "merged_images_"))
	assert.Equal(t, []string{"p1.png", "p2.png", "p3.png"}, f.processor.tasks[0].InputIDs())
	assert.Equal(t, domain.TaskKindImagesToPDF, f.processor.tasks[0].Kind)
	assert.Equal(t, "fit", f.processor.opts.PageSize)
	assert.Equal(t, "portrait", f.processor.opts.Orientation)
	assert.Equal(t, "auto:best", f.assets.pushed[0].Quality)
	assert.True(t, f.assets.pushed[0].BestEffort)
}

func TestDocumentUseCase_RejectsBeforeRemoteCalls(t *testing.T) {
	f := newDocumentFixture()
	files := []*domain.UploadedFile{
		writeFile(t, "a.pdf", []byte(samplePDF)),
		writeFile(t, "b.docx", []byte("PK\x03\x04")),
	}

	_, err := f.uc.MergePDF(context.Background(), DocumentInput{Files: files})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Zero(t, f.assets.callCount())
	assert.Empty(t, f.processor.tasks)
	assert.Empty(t, f.operations.created)
}

func TestDocumentUseCase_RejectsInvalidOptions(t *testing.T) {
	f := newDocumentFixture()
	file := writeFile(t, "report.pdf", []byte(samplePDF))

	_, err := f.uc.CompressPDF(context.Background(), DocumentInput{
		Files:   []*domain.UploadedFile{file},
		Options: domain.ProcessOptions{CompressionLevel: "maximum"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.assets.callCount())
}

func TestDocumentUseCase_ProcessingFailure(t *testing.T) {
	f := newDocumentFixture()
	f.processor.processErr = domain.NewProviderError(domain.ErrProcessingFailed, "process", "Damaged file", nil)
	file := writeFile(t, "broken.pdf", []byte(samplePDF))

	_, err := f.uc.CompressPDF(context.Background(), DocumentInput{
		Files:   []*domain.UploadedFile{file},
		Options: domain.DefaultProcessOptions(domain.TaskKindCompress),
	})
	require.ErrorIs(t, err, domain.ErrProcessingFailed)

	op := f.operations.last(t)
	assert.Equal(t, domain.OperationStatusFailed, op.Status)
	assert.Contains(t, op.Error, "Damaged file")
	// Загруженный ассет всё равно уходит на удаление
	assert.Equal(t, []string{"broken.pdf"}, f.cleaner.scheduled)
}

func TestDocumentUseCase_PushFailure(t *testing.T) {
	f := newDocumentFixture()
	f.assets.pushErr = domain.NewProviderError(domain.ErrRemoteUpload, "upload", "quota", errors.New("402"))
	file := writeFile(t, "report.pdf", []byte(samplePDF))

	_, err := f.uc.CompressPDF(context.Background(), DocumentInput{
		Files:   []*domain.UploadedFile{file},
		Options: domain.DefaultProcessOptions(domain.TaskKindCompress),
	})
	require.ErrorIs(t, err, domain.ErrRemoteUpload)
	assert.Empty(t, f.processor.tasks)
	assert.Empty(t, f.cleaner.scheduled)
}

func TestDocumentUseCase_LinkDelivery(t *testing.T) {
	f := newDocumentFixture()
	f.processor.output = []byte("%PDF-merged")
	files := []*domain.UploadedFile{
		writeFile(t, "a.pdf", []byte(samplePDF)),
		writeFile(t, "b.pdf", []byte(samplePDF)),
	}

	result, err := f.uc.MergePDF(context.Background(), DocumentInput{Files: files, Delivery: DeliveryLink})
	require.NoError(t, err)

	require.NotNil(t, result.Asset)
	assert.Nil(t, result.Data)
	assert.Equal(t, int64(len("%PDF-merged")), result.Asset.Bytes)
	require.Len(t, f.assets.buffers, 1)
	assert.Equal(t, []byte("%PDF-merged"), f.assets.buffers[0])

	// Результат не удаляется, только входные файлы
	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf"}, f.cleaner.scheduled)
}
