package assethost

import (
	"context"
	"fmt"

	"github.com/plastinin/fileconverter/internal/adapter/cloudinary"
	"github.com/plastinin/fileconverter/internal/adapter/storage"
	"github.com/plastinin/fileconverter/internal/config"
	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/plastinin/fileconverter/internal/usecase"
	"go.uber.org/zap"
)

// Host хранилище ассетов, выбранное конфигурацией.
// Remove нужен worker'у: ошибка удаления возвращается для повтора.
type Host interface {
	usecase.AssetHost
	Remove(ctx context.Context, ref domain.AssetRef) error
}

// New создаёт драйвер по ASSET_HOST_DRIVER
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Host, error) {
	callTimeout := cfg.Provider.CallTimeout

	switch cfg.AssetHost.Driver {
	case config.AssetHostCloudinary:
		if !cfg.Cloudinary.Configured() {
			logger.Warn("Cloudinary credentials are not set, asset operations will fail")
		}
		client, err := cloudinary.NewClient(cfg.Cloudinary, callTimeout, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to init cloudinary asset host: %w", err)
		}
		return client, nil
	case config.AssetHostS3:
		host, err := storage.NewS3AssetHost(ctx, cfg.S3, callTimeout, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to init s3 asset host: %w", err)
		}
		return host, nil
	default:
		return nil, fmt.Errorf("unknown asset host driver %q", cfg.AssetHost.Driver)
	}
}

// Configured сообщает, заданы ли учётные данные выбранного драйвера
func Configured(cfg *config.Config) bool {
	switch cfg.AssetHost.Driver {
	case config.AssetHostCloudinary:
		return cfg.Cloudinary.Configured()
	case config.AssetHostS3:
		return cfg.S3.Endpoint != "" && cfg.S3.Bucket != ""
	}
	return false
}
