package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/plastinin/fileconverter/internal/adapter/tempstore"
	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/plastinin/fileconverter/internal/usecase"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

// spyAssets считает обращения к хранилищу ассетов
type spyAssets struct {
	mu          sync.Mutex
	calls       int
	transformed []byte
	info        *domain.AssetInfo
	infoErr     error
}

func (s *spyAssets) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *spyAssets) PushFile(ctx context.Context, localPath string, opts domain.PushOptions) (*domain.AssetRef, error) {
	s.hit()
	return &domain.AssetRef{ID: opts.Folder + "/" + opts.NameHint, URL: "https://cdn.example.com/" + opts.NameHint, Bytes: 42, Format: "pdf"}, nil
}

func (s *spyAssets) PushBuffer(ctx context.Context, data []byte, opts domain.PushOptions) (*domain.AssetRef, error) {
	s.hit()
	return &domain.AssetRef{ID: "results/" + opts.NameHint, URL: "https://cdn.example.com/results/" + opts.NameHint, Bytes: int64(len(data)), Format: "pdf"}, nil
}

func (s *spyAssets) DeleteAsset(ctx context.Context, ref domain.AssetRef) {}

func (s *spyAssets) AssetInfo(ctx context.Context, id string) (*domain.AssetInfo, error) {
	s.hit()
	return s.info, s.infoErr
}

func (s *spyAssets) FetchTransformed(ctx context.Context, ref domain.AssetRef, transform domain.Transform) ([]byte, error) {
	s.hit()
	return s.transformed, nil
}

func (s *spyAssets) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// spyProcessor проводит задачу по состояниям без сети
type spyProcessor struct {
	calls      int
	startErr   error
	processErr error
	output     []byte
}

func (p *spyProcessor) CreateTask(kind domain.TaskKind) (*domain.ProcessingTask, error) {
	p.calls++
	return domain.NewProcessingTask(kind)
}

func (p *spyProcessor) Start(ctx context.Context, task *domain.ProcessingTask) error {
	if p.startErr != nil {
		return p.startErr
	}
	return task.MarkStarted("remote-task", "api-test.example.com")
}

func (p *spyProcessor) AddInput(ctx context.Context, task *domain.ProcessingTask, ref domain.AssetRef) error {
	return task.AppendInput(domain.TaskInput{Asset: ref, ServerFilename: "srv_" + ref.ID})
}

func (p *spyProcessor) Process(ctx context.Context, task *domain.ProcessingTask, opts domain.ProcessOptions) error {
	if p.processErr != nil {
		return p.processErr
	}
	return task.MarkProcessed()
}

func (p *spyProcessor) Download(ctx context.Context, task *domain.ProcessingTask) ([]byte, error) {
	if err := task.MarkDownloaded(); err != nil {
		return nil, err
	}
	return p.output, nil
}

type stubGenerator struct {
	err  error
	data []byte
}

func (g *stubGenerator) SubmitPrompt(ctx context.Context, prompt string) (*domain.GeneratedAsset, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &domain.GeneratedAsset{URL: "https://images.example.com/out.png"}, nil
}

func (g *stubGenerator) FetchBytes(ctx context.Context, asset *domain.GeneratedAsset) ([]byte, error) {
	return g.data, nil
}

type stubOperations struct {
	ops []*domain.Operation
}

func (r *stubOperations) Create(ctx context.Context, op *domain.Operation) error {
	r.ops = append(r.ops, op)
	return nil
}

func (r *stubOperations) GetByID(ctx context.Context, id uuid.UUID) (*domain.Operation, error) {
	for _, op := range r.ops {
		if op.ID == id {
			return op, nil
		}
	}
	return nil, domain.ErrOperationNotFound
}

func (r *stubOperations) List(ctx context.Context, filter domain.OperationFilter, pagination domain.Pagination) (*domain.OperationListResult, error) {
	return &domain.OperationListResult{Operations: r.ops, Total: len(r.ops), Pagination: pagination}, nil
}

// fixture собирает обработчики поверх настоящих usecase и шпионов провайдеров
type fixture struct {
	tempDir   string
	assets    *spyAssets
	processor *spyProcessor
	router    chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()

	tempDir := t.TempDir()
	store, err := tempstore.New(tempDir, 1<<20, logger)
	require.NoError(t, err)
	uploads := NewUploads(store, 8<<20)

	f := &fixture{
		tempDir:   tempDir,
		assets:    &spyAssets{transformed: []byte("jpeg-bytes")},
		processor: &spyProcessor{output: []byte("%PDF-result")},
	}

	ingress := usecase.NewIngress(usecase.UploadLimits{MaxFileSize: 1 << 20, MaxFiles: 10}, logger)
	documents := usecase.NewDocumentUseCase(usecase.DocumentDeps{
		Ingress:   ingress,
		Assets:    f.assets,
		Processor: f.processor,
		PushLimit: 2,
		Logger:    logger,
	})
	images := usecase.NewImageUseCase(usecase.ImageDeps{
		Ingress: ingress,
		Assets:  f.assets,
		Logger:  logger,
	})

	conversion := NewConversionHandler(documents, uploads, logger)
	image := NewImageHandler(images, uploads, logger)

	r := chi.NewRouter()
	r.Post("/api/compress", conversion.Compress)
	r.Post("/api/merge", conversion.Merge)
	r.Post("/api/image-to-pdf", conversion.ImageToPDF)
	r.Post("/api/compress-image", image.CompressImage)
	r.Post("/api/upscale", image.Upscale)
	r.Get("/api/asset-info/*", image.AssetInfo)
	f.router = r

	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// assertTempDirEmpty проверяет, что после ответа не осталось временных файлов
func (f *fixture) assertTempDirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tempDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

type formFile struct {
	field string
	name  string
	data  []byte
}

// multipartRequest собирает multipart/form-data запрос
func multipartRequest(t *testing.T, target string, values map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}
