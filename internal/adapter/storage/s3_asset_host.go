package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/plastinin/fileconverter/internal/config"
	"github.com/plastinin/fileconverter/internal/domain"
	"go.uber.org/zap"
)

// S3AssetHost хранилище ассетов на базе S3/MinIO.
// Преобразований при выдаче нет, ссылки — presigned URL.
type S3AssetHost struct {
	client      *minio.Client
	bucket      string
	urlExpiry   time.Duration
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewS3AssetHost создаёт новый экземпляр S3AssetHost
func NewS3AssetHost(ctx context.Context, cfg config.S3Config, callTimeout time.Duration, logger *zap.Logger) (*S3AssetHost, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	// Проверяем/создаём bucket
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &S3AssetHost{
		client:      client,
		bucket:      cfg.Bucket,
		urlExpiry:   cfg.URLExpiry,
		callTimeout: callTimeout,
		logger:      logger,
	}, nil
}

// PushFile загружает локальный файл
func (s *S3AssetHost) PushFile(ctx context.Context, localPath string, opts domain.PushOptions) (*domain.AssetRef, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrRemoteUpload, "upload", "", fmt.Errorf("failed to open file: %w", err))
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrRemoteUpload, "upload", "", fmt.Errorf("failed to stat file: %w", err))
	}

	if opts.NameHint == "" {
		opts.NameHint = filepath.Base(localPath)
	}
	return s.put(ctx, f, stat.Size(), opts)
}

// PushBuffer загружает данные из памяти
func (s *S3AssetHost) PushBuffer(ctx context.Context, data []byte, opts domain.PushOptions) (*domain.AssetRef, error) {
	return s.put(ctx, bytes.NewReader(data), int64(len(data)), opts)
}

func (s *S3AssetHost) put(ctx context.Context, reader io.Reader, size int64, opts domain.PushOptions) (*domain.AssetRef, error) {
	if err := checkConversion(opts); err != nil {
		return nil, err
	}
	if opts.BestEffort {
		opts.Format, opts.Quality = "", ""
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	key, format := objectKey(opts)

	info, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentTypeFor(format),
	})
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrRemoteUpload, "upload", "", err)
	}

	url, err := s.presign(ctx, key)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrRemoteUpload, "upload", "", err)
	}

	return &domain.AssetRef{
		ID:           key,
		URL:          url,
		Bytes:        info.Size,
		Format:       format,
		ResourceType: "raw",
	}, nil
}

// Remove удаляет объект
func (s *S3AssetHost) Remove(ctx context.Context, ref domain.AssetRef) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	err := s.client.RemoveObject(ctx, s.bucket, ref.ID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// DeleteAsset удаляет объект, ошибка только логируется
func (s *S3AssetHost) DeleteAsset(ctx context.Context, ref domain.AssetRef) {
	if err := s.Remove(ctx, ref); err != nil {
		s.logger.Warn("Failed to delete asset",
			zap.String("asset_id", ref.ID),
			zap.Error(err),
		)
	}
}

// AssetInfo возвращает метаданные объекта
func (s *S3AssetHost) AssetInfo(ctx context.Context, id string) (*domain.AssetInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	stat, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, id)
		}
		return nil, domain.NewProviderError(domain.ErrProviderUnavailable, "asset info", "", err)
	}

	url, err := s.presign(ctx, id)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrProviderUnavailable, "asset info", "", err)
	}

	return &domain.AssetInfo{
		ID:           id,
		URL:          url,
		Bytes:        stat.Size,
		Format:       strings.TrimPrefix(path.Ext(id), "."),
		ResourceType: "raw",
		CreatedAt:    stat.LastModified,
	}, nil
}

// FetchTransformed S3 не умеет преобразовывать изображения
func (s *S3AssetHost) FetchTransformed(ctx context.Context, ref domain.AssetRef, transform domain.Transform) ([]byte, error) {
	return nil, domain.NewProviderError(domain.ErrProviderUnavailable, "fetch transformed",
		"image transformations are not supported by the s3 asset host", nil)
}

// presign возвращает presigned URL для доступа к объекту
func (s *S3AssetHost) presign(ctx context.Context, key string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}

// checkConversion объекты хранятся байт в байт: смена формата и качество
// допустимы только как необязательные параметры
func checkConversion(opts domain.PushOptions) error {
	if opts.BestEffort {
		return nil
	}

	source := sourceFormat(opts.NameHint)
	if opts.Format != "" && source != "" && normalizeFormat(opts.Format) != source {
		return domain.NewProviderError(domain.ErrProviderUnavailable, "upload",
			fmt.Sprintf("conversion from %s to %s is not supported by the s3 asset host", source, opts.Format), nil)
	}
	if opts.Quality != "" {
		return domain.NewProviderError(domain.ErrProviderUnavailable, "upload",
			"quality adjustment is not supported by the s3 asset host", nil)
	}
	return nil
}

// objectKey ключ объекта: [folder/]id.ext и формат файла
func objectKey(opts domain.PushOptions) (string, string) {
	format := normalizeFormat(opts.Format)
	if format == "" {
		format = sourceFormat(opts.NameHint)
	}

	key := domain.NewAssetID(opts.Prefix, opts.NameHint)
	if format != "" {
		key += "." + format
	}
	if opts.Folder != "" {
		key = path.Join(opts.Folder, key)
	}
	return key, format
}

func sourceFormat(name string) string {
	return normalizeFormat(filepath.Ext(name))
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

func contentTypeFor(format string) string {
	if format == "" {
		return "application/octet-stream"
	}
	if ct := mime.TypeByExtension("." + format); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
