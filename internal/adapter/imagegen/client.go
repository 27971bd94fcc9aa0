package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/plastinin/fileconverter/internal/config"
	"github.com/plastinin/fileconverter/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Максимальный размер сгенерированного изображения
const maxImageSize = 32 << 20

// Client клиент генерации изображений через Hugging Face inference router
type Client struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	limiter     *rate.Limiter
	callTimeout time.Duration
	maxSize     int64
	logger      *zap.Logger
}

// NewClient создаёт новый экземпляр Client
func NewClient(cfg config.ImageGenConfig, callTimeout time.Duration, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Limit(cfg.RatePerMinute / 60)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 2 * callTimeout,
		},
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		limiter:     rate.NewLimiter(limit, burst),
		callTimeout: callTimeout,
		maxSize:     maxImageSize,
		logger:      logger,
	}
}

// generateRequest структура запроса к API генерации
type generateRequest struct {
	Prompt   string `json:"prompt"`
	SyncMode bool   `json:"sync_mode"`
}

// generateResponse структура ответа API генерации
type generateResponse struct {
	Images []struct {
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
	} `json:"images"`
}

// SubmitPrompt отправляет промпт и возвращает ссылку на сгенерированное изображение
func (c *Client) SubmitPrompt(ctx context.Context, prompt string) (*domain.GeneratedAsset, error) {
	// Ждём токен лимитера в рамках контекста запроса
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.NewProviderError(domain.ErrProviderUnavailable, "generate", "rate limit wait aborted", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	reqJSON, err := json.Marshal(generateRequest{Prompt: prompt, SyncMode: true})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrGenerationFailed, "generate", "", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Image generation request completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("status_code", resp.StatusCode),
	)

	if resp.StatusCode == http.StatusPaymentRequired {
		return nil, domain.NewProviderError(domain.ErrQuotaExceeded, "generate",
			"You have exceeded your monthly API credits. Please upgrade plan or try later.", nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, domain.NewProviderError(domain.ErrGenerationFailed, "generate",
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, domain.NewProviderError(domain.ErrGenerationFailed, "generate", "", fmt.Errorf("failed to decode response: %w", err))
	}

	if len(genResp.Images) == 0 || genResp.Images[0].URL == "" {
		return nil, domain.NewProviderError(domain.ErrGenerationFailed, "generate", "empty result", nil)
	}

	return &domain.GeneratedAsset{
		URL:         genResp.Images[0].URL,
		ContentType: genResp.Images[0].ContentType,
	}, nil
}

// FetchBytes скачивает сгенерированное изображение
func (c *Client) FetchBytes(ctx context.Context, asset *domain.GeneratedAsset) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "fetch", "", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "fetch", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "fetch",
			fmt.Sprintf("status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)), nil)
	}

	// Читаем на байт больше лимита, чтобы отличить превышение от файла ровно в лимит
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "fetch", "", err)
	}
	if int64(len(data)) > c.maxSize {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "fetch",
			fmt.Sprintf("result exceeds %d bytes", c.maxSize), nil)
	}
	return data, nil
}
