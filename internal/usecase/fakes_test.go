package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// samplePDF минимальный PDF, который распознаётся по сигнатуре
const samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

type fakeAssetHost struct {
	mu          sync.Mutex
	calls       int
	pushed      []domain.PushOptions
	buffers     [][]byte
	completed   []string
	deleted     []string
	pushErr     error
	transformed []byte
	info        *domain.AssetInfo
	infoErr     error

	// gates: загрузка файла ждёт закрытия канала; opens: по завершении файла открываем следующий
	gates map[string]chan struct{}
	opens map[string]string
}

func (h *fakeAssetHost) PushFile(ctx context.Context, localPath string, opts domain.PushOptions) (*domain.AssetRef, error) {
	name := filepath.Base(localPath)

	h.mu.Lock()
	h.calls++
	h.pushed = append(h.pushed, opts)
	gate := h.gates[name]
	h.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if h.pushErr != nil {
		return nil, h.pushErr
	}

	h.mu.Lock()
	h.completed = append(h.completed, name)
	if next, ok := h.opens[name]; ok {
		close(h.gates[next])
	}
	h.mu.Unlock()

	return &domain.AssetRef{ID: name, URL: "https://cdn.example.com/" + name, Bytes: 10, Format: "pdf"}, nil
}

func (h *fakeAssetHost) PushBuffer(ctx context.Context, data []byte, opts domain.PushOptions) (*domain.AssetRef, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	h.pushed = append(h.pushed, opts)
	h.buffers = append(h.buffers, data)
	return &domain.AssetRef{
		ID:     domain.NewAssetID("", opts.NameHint),
		URL:    "https://cdn.example.com/results/" + opts.NameHint,
		Bytes:  int64(len(data)),
		Format: "pdf",
	}, nil
}

func (h *fakeAssetHost) DeleteAsset(ctx context.Context, ref domain.AssetRef) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, ref.ID)
}

func (h *fakeAssetHost) AssetInfo(ctx context.Context, id string) (*domain.AssetInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	return h.info, h.infoErr
}

func (h *fakeAssetHost) FetchTransformed(ctx context.Context, ref domain.AssetRef, transform domain.Transform) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	return h.transformed, nil
}

func (h *fakeAssetHost) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

type fakeProcessor struct {
	mu          sync.Mutex
	tasks       []*domain.ProcessingTask
	added       []string
	opts        domain.ProcessOptions
	startErr    error
	processErr  error
	downloadErr error
	output      []byte
}

func (p *fakeProcessor) CreateTask(kind domain.TaskKind) (*domain.ProcessingTask, error) {
	task, err := domain.NewProcessingTask(kind)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.tasks = append(p.tasks, task)
	p.mu.Unlock()
	return task, nil
}

func (p *fakeProcessor) Start(ctx context.Context, task *domain.ProcessingTask) error {
	if p.startErr != nil {
		return p.startErr
	}
	return task.MarkStarted("remote-task", "api-test.example.com")
}

func (p *fakeProcessor) AddInput(ctx context.Context, task *domain.ProcessingTask, ref domain.AssetRef) error {
	p.mu.Lock()
	p.added = append(p.added, ref.ID)
	p.mu.Unlock()
	return task.AppendInput(domain.TaskInput{Asset: ref, ServerFilename: "srv_" + ref.ID})
}

func (p *fakeProcessor) Process(ctx context.Context, task *domain.ProcessingTask, opts domain.ProcessOptions) error {
	p.opts = opts
	if p.processErr != nil {
		return p.processErr
	}
	return task.MarkProcessed()
}

func (p *fakeProcessor) Download(ctx context.Context, task *domain.ProcessingTask) ([]byte, error) {
	if p.downloadErr != nil {
		return nil, p.downloadErr
	}
	if err := task.MarkDownloaded(); err != nil {
		return nil, err
	}
	return p.output, nil
}

type fakeCleaner struct {
	mu        sync.Mutex
	scheduled []string
}

func (c *fakeCleaner) ScheduleDeletion(ctx context.Context, refs []domain.AssetRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ref := range refs {
		c.scheduled = append(c.scheduled, ref.ID)
	}
	return nil
}

type fakeOperations struct {
	mu      sync.Mutex
	created []*domain.Operation
}

func (r *fakeOperations) Create(ctx context.Context, op *domain.Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, op)
	return nil
}

func (r *fakeOperations) GetByID(ctx context.Context, id uuid.UUID) (*domain.Operation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range r.created {
		if op.ID == id {
			return op, nil
		}
	}
	return nil, domain.ErrOperationNotFound
}

func (r *fakeOperations) List(ctx context.Context, filter domain.OperationFilter, pagination domain.Pagination) (*domain.OperationListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &domain.OperationListResult{Operations: r.created, Total: len(r.created), Pagination: pagination}, nil
}

func (r *fakeOperations) last(t *testing.T) *domain.Operation {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.created)
	return r.created[len(r.created)-1]
}

type fakePages struct{ pages int }

func (p fakePages) CountPages(data []byte) (int, error) {
	return p.pages, nil
}

func testIngress() *Ingress {
	return NewIngress(UploadLimits{MaxFileSize: 10 << 20, MaxFiles: 30}, zap.NewNop())
}

// writeFile сохраняет содержимое во временный каталог теста
func writeFile(t *testing.T, name string, data []byte) *domain.UploadedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return &domain.UploadedFile{Path: path, FileName: name, Size: int64(len(data))}
}

// pngPixel PNG размером 1×1
func pngPixel(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
