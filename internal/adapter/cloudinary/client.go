package cloudinary

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	cldconfig "github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/plastinin/fileconverter/internal/config"
	"github.com/plastinin/fileconverter/internal/domain"
	"go.uber.org/zap"
)

// sdkDeliveryURL префикс, с которым SDK строит delivery URL
const sdkDeliveryURL = "https://res.cloudinary.com"

// Client клиент Cloudinary поверх официального SDK: загрузка, удаление,
// метаданные и выдача ассетов с преобразованиями
type Client struct {
	sdk         *cld.Cloudinary
	httpClient  *http.Client
	deliveryURL string
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewClient создаёт новый экземпляр Client
func NewClient(cfg config.CloudinaryConfig, callTimeout time.Duration, logger *zap.Logger) (*Client, error) {
	conf, err := cldconfig.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to build cloudinary config: %w", err)
	}
	// Адрес API задаётся до создания: Admin и Upload хранят копию конфигурации
	if cfg.APIBaseURL != "" {
		conf.API.UploadPrefix = strings.TrimRight(cfg.APIBaseURL, "/")
	}

	sdk, err := cld.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return &Client{
		sdk: sdk,
		httpClient: &http.Client{
			// Внешняя граница, основной таймаут задаётся на каждый вызов
			Timeout: 2 * callTimeout,
		},
		deliveryURL: strings.TrimRight(cfg.DeliveryURL, "/"),
		callTimeout: callTimeout,
		logger:      logger,
	}, nil
}

// PushFile загружает локальный файл
func (c *Client) PushFile(ctx context.Context, localPath string, opts domain.PushOptions) (*domain.AssetRef, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrRemoteUpload, "upload", "", fmt.Errorf("failed to open file: %w", err))
	}
	defer f.Close()

	if opts.NameHint == "" {
		opts.NameHint = filepath.Base(localPath)
	}
	return c.upload(ctx, f, opts)
}

// PushBuffer загружает данные из памяти
func (c *Client) PushBuffer(ctx context.Context, data []byte, opts domain.PushOptions) (*domain.AssetRef, error) {
	return c.upload(ctx, bytes.NewReader(data), opts)
}

func (c *Client) upload(ctx context.Context, src io.Reader, opts domain.PushOptions) (*domain.AssetRef, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	params := uploader.UploadParams{
		PublicID:     domain.NewAssetID(opts.Prefix, opts.NameHint),
		Folder:       opts.Folder,
		Format:       opts.Format,
		ResourceType: resourceType(opts.ResourceType, "auto"),
	}
	if opts.Quality != "" {
		params.Transformation = "q_" + opts.Quality
	}

	startTime := time.Now()
	res, err := c.sdk.Upload.Upload(ctx, src, params)

	c.logger.Debug("Cloudinary upload completed",
		zap.String("public_id", params.PublicID),
		zap.Duration("duration", time.Since(startTime)),
	)

	if res != nil && res.Error.Message != "" {
		return nil, domain.NewProviderError(domain.ErrRemoteUpload, "upload", res.Error.Message, err)
	}
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrRemoteUpload, "upload", "", err)
	}
	if res == nil || res.PublicID == "" {
		return nil, domain.NewProviderError(domain.ErrRemoteUpload, "upload", "empty upload response", nil)
	}

	return &domain.AssetRef{
		ID:           res.PublicID,
		URL:          res.SecureURL,
		Bytes:        int64(res.Bytes),
		Format:       res.Format,
		ResourceType: res.ResourceType,
	}, nil
}

// Remove удаляет ассет у провайдера
func (c *Client) Remove(ctx context.Context, ref domain.AssetRef) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	res, err := c.sdk.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     ref.ID,
		ResourceType: resourceType(ref.ResourceType, "image"),
	})
	if res != nil && res.Error.Message != "" {
		return fmt.Errorf("destroy failed: %s", res.Error.Message)
	}
	if err != nil {
		return fmt.Errorf("failed to send destroy request: %w", err)
	}

	// "not found" — ассет уже удалён, повторять нечего
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("destroy result: %s", res.Result)
	}
	return nil
}

// DeleteAsset удаляет ассет, ошибка только логируется
func (c *Client) DeleteAsset(ctx context.Context, ref domain.AssetRef) {
	if err := c.Remove(ctx, ref); err != nil {
		c.logger.Warn("Failed to delete asset",
			zap.String("asset_id", ref.ID),
			zap.Error(err),
		)
	}
}

// AssetInfo возвращает метаданные ассета через Admin API
func (c *Client) AssetInfo(ctx context.Context, id string) (*domain.AssetInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	res, err := c.sdk.Admin.Asset(ctx, admin.AssetParams{
		PublicID:     id,
		AssetType:    api.Image,
		DeliveryType: api.Upload,
	})
	if res != nil && res.Error.Message != "" {
		if strings.Contains(strings.ToLower(res.Error.Message), "not found") {
			return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, id)
		}
		return nil, domain.NewProviderError(domain.ErrProcessingFailed, "asset info", res.Error.Message, err)
	}
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrProviderUnavailable, "asset info", "", err)
	}

	return &domain.AssetInfo{
		ID:           res.PublicID,
		URL:          res.SecureURL,
		Bytes:        int64(res.Bytes),
		Format:       res.Format,
		ResourceType: res.ResourceType,
		Width:        res.Width,
		Height:       res.Height,
		CreatedAt:    res.CreatedAt,
	}, nil
}

// FetchTransformed скачивает ассет через delivery URL с цепочкой преобразований
func (c *Client) FetchTransformed(ctx context.Context, ref domain.AssetRef, transform domain.Transform) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	deliveryURL, err := c.TransformURL(ref.ID, transform)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "fetch transformed", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, deliveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "fetch transformed", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Cloudinary пишет причину ошибки преобразования в заголовок
		details := resp.Header.Get("X-Cld-Error")
		if details == "" {
			details = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "fetch transformed", details, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrDownloadFailed, "fetch transformed", "", err)
	}
	return data, nil
}

// TransformURL строит delivery URL ассета с преобразованиями
func (c *Client) TransformURL(id string, transform domain.Transform) (string, error) {
	img, err := c.sdk.Image(id)
	if err != nil {
		return "", fmt.Errorf("failed to build asset: %w", err)
	}
	img.Transformation = transform.String()

	u, err := img.String()
	if err != nil {
		return "", fmt.Errorf("failed to build delivery url: %w", err)
	}
	if c.deliveryURL != "" && strings.HasPrefix(u, sdkDeliveryURL) {
		u = c.deliveryURL + strings.TrimPrefix(u, sdkDeliveryURL)
	}
	return u, nil
}

func resourceType(rt, fallback string) string {
	if rt == "" {
		return fallback
	}
	return rt
}
