package ilovepdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/plastinin/fileconverter/internal/config"
	"github.com/plastinin/fileconverter/internal/domain"
	"go.uber.org/zap"
)

// Инструменты провайдера для видов задач
var tools = map[domain.TaskKind]string{
	domain.TaskKindCompress:    "compress",
	domain.TaskKindMerge:       "merge",
	domain.TaskKindImagesToPDF: "imagepdf",
}

// Client клиент iLovePDF API: start -> upload -> process -> download
type Client struct {
	httpClient  *http.Client
	baseURL     string
	region      string
	tokens      *tokenSource
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewClient создаёт новый экземпляр Client
func NewClient(cfg config.ILovePDFConfig, callTimeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 2 * callTimeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		region:      cfg.Region,
		tokens:      newTokenSource(cfg.PublicKey, cfg.SecretKey),
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// CreateTask создаёт задачу в состоянии created, без обращения к провайдеру
func (c *Client) CreateTask(kind domain.TaskKind) (*domain.ProcessingTask, error) {
	return domain.NewProcessingTask(kind)
}

// Start выделяет у провайдера сервер и идентификатор задачи
func (c *Client) Start(ctx context.Context, task *domain.ProcessingTask) error {
	if task.State != domain.TaskStateCreated {
		return fmt.Errorf("%w: start from %s", domain.ErrInvalidTaskState, task.State)
	}

	endpoint := fmt.Sprintf("%s/v1/start/%s/%s", c.baseURL, tools[task.Kind], c.region)

	var started struct {
		Server string `json:"server"`
		Task   string `json:"task"`
	}
	if err := c.call(ctx, http.MethodGet, endpoint, nil, "", &started); err != nil {
		return asProviderError(domain.ErrProviderUnavailable, "start", err)
	}
	if started.Server == "" || started.Task == "" {
		return domain.NewProviderError(domain.ErrProviderUnavailable, "start", "no server allocated", nil)
	}

	c.logger.Debug("Processing task started",
		zap.String("tool", tools[task.Kind]),
		zap.String("task", started.Task),
		zap.String("server", started.Server),
	)

	return task.MarkStarted(started.Task, started.Server)
}

// AddInput передаёт провайдеру ссылку на ассет. Вызывается по одному разу на вход, в порядке пользователя.
func (c *Client) AddInput(ctx context.Context, task *domain.ProcessingTask, ref domain.AssetRef) error {
	if err := task.CheckAcceptsInputs(); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("task", task.RemoteID)
	form.Set("cloud_file", ref.URL)

	var uploaded struct {
		ServerFilename string `json:"server_filename"`
	}
	err := c.call(ctx, http.MethodPost, c.serverURL(task, "upload"),
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &uploaded)
	if err != nil {
		return asProviderError(domain.ErrRemoteUpload, "add input", err)
	}

	return task.AppendInput(domain.TaskInput{Asset: ref, ServerFilename: uploaded.ServerFilename})
}

// processFile файл в запросе process
type processFile struct {
	ServerFilename string `json:"server_filename"`
	Filename       string `json:"filename"`
}

// processRequest тело запроса process
type processRequest struct {
	Task             string        `json:"task"`
	Tool             string        `json:"tool"`
	Files            []processFile `json:"files"`
	CompressionLevel string        `json:"compression_level,omitempty"`
	PageSize         string        `json:"pagesize,omitempty"`
	Margin           *int          `json:"margin,omitempty"`
	Orientation      string        `json:"orientation,omitempty"`
}

// Process запускает обработку загруженных файлов
func (c *Client) Process(ctx context.Context, task *domain.ProcessingTask, opts domain.ProcessOptions) error {
	if err := task.CheckProcessable(); err != nil {
		return err
	}

	body := buildProcessRequest(task, opts)
	reqJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	startTime := time.Now()
	var processed struct {
		Status string `json:"status"`
	}
	err = c.call(ctx, http.MethodPost, c.serverURL(task, "process"),
		bytes.NewReader(reqJSON), "application/json", &processed)
	if err != nil {
		return asProviderError(domain.ErrProcessingFailed, "process", err)
	}

	c.logger.Debug("Processing task completed",
		zap.String("task", task.RemoteID),
		zap.String("status", processed.Status),
		zap.Duration("duration", time.Since(startTime)),
	)

	return task.MarkProcessed()
}

// Download скачивает результат обработки
func (c *Client) Download(ctx context.Context, task *domain.ProcessingTask) ([]byte, error) {
	if task.State != domain.TaskStateProcessed {
		return nil, fmt.Errorf("%w: download from %s", domain.ErrInvalidTaskState, task.State)
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, c.serverURL(task, "download", task.RemoteID), nil, "")
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "download", "", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "download", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "download", readErrorMessage(resp), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "download", "", err)
	}

	if err := task.MarkDownloaded(); err != nil {
		return nil, err
	}
	return data, nil
}

func buildProcessRequest(task *domain.ProcessingTask, opts domain.ProcessOptions) processRequest {
	req := processRequest{
		Task:  task.RemoteID,
		Tool:  tools[task.Kind],
		Files: make([]processFile, len(task.Inputs)),
	}
	for i, in := range task.Inputs {
		req.Files[i] = processFile{
			ServerFilename: in.ServerFilename,
			Filename:       inputFilename(in.Asset),
		}
	}

	switch task.Kind {
	case domain.TaskKindCompress:
		req.CompressionLevel = compressionLevel(opts.CompressionLevel)
	case domain.TaskKindImagesToPDF:
		margin := opts.Margin
		req.PageSize = opts.PageSize
		req.Margin = &margin
		req.Orientation = opts.Orientation
	}
	return req
}

// compressionLevel уровень сжатия в терминах провайдера
func compressionLevel(level domain.CompressionLevel) string {
	switch level {
	case domain.CompressionLow:
		return "low"
	case domain.CompressionHigh:
		return "extreme"
	default:
		return "recommended"
	}
}

func inputFilename(ref domain.AssetRef) string {
	name := path.Base(ref.ID)
	if ref.Format != "" && path.Ext(name) == "" {
		name += "." + ref.Format
	}
	return name
}

// serverURL адрес на выделенном под задачу сервере
func (c *Client) serverURL(task *domain.ProcessingTask, parts ...string) string {
	server := task.Server
	if !strings.Contains(server, "://") {
		server = "https://" + server
	}
	return strings.TrimRight(server, "/") + "/v1/" + strings.Join(parts, "/")
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (*http.Request, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// call выполняет запрос с таймаутом на вызов и декодирует JSON ответ
func (c *Client) call(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, endpoint, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, message: readErrorMessage(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// statusError ответ провайдера с кодом, отличным от 200
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.message)
}

// asProviderError переводит ошибку вызова в ProviderError нужного вида.
// Диагностика провайдера уходит в Details как есть.
func asProviderError(kind error, op string, err error) error {
	if se, ok := err.(*statusError); ok {
		return domain.NewProviderError(kind, op, se.message, nil)
	}
	return domain.NewProviderError(kind, op, "", err)
}

func readErrorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var er struct {
		Error struct {
			Message string          `json:"message"`
			Code    json.RawMessage `json:"code"`
			Param   json.RawMessage `json:"param"`
		} `json:"error"`
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &er); err == nil {
		switch {
		case er.Error.Message != "" && len(er.Error.Param) > 0 && string(er.Error.Param) != "null":
			return er.Error.Message + ": " + string(er.Error.Param)
		case er.Error.Message != "":
			return er.Error.Message
		case er.Message != "":
			return er.Message
		}
	}
	if len(body) > 0 {
		return strings.TrimSpace(string(body))
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
