package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	AssetHostCloudinary = "cloudinary"
	AssetHostS3         = "s3"
)

type Config struct {
	Server     ServerConfig
	Upload     UploadConfig
	Provider   ProviderConfig
	AssetHost  AssetHostConfig
	Cloudinary CloudinaryConfig
	S3         S3Config
	ILovePDF   ILovePDFConfig
	ImageGen   ImageGenConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cleanup    CleanupConfig
	Worker     WorkerConfig
	Journal    JournalConfig
	CORS       CORSConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"4000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"5m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type UploadConfig struct {
	// Пустое значение — системный каталог временных файлов
	TempDir         string `env:"UPLOAD_TEMP_DIR" envDefault:""`
	MaxFileSize     int64  `env:"UPLOAD_MAX_FILE_SIZE" envDefault:"10485760"`
	MaxFiles        int    `env:"UPLOAD_MAX_FILES" envDefault:"30"`
	PushConcurrency int    `env:"UPLOAD_PUSH_CONCURRENCY" envDefault:"5"`
}

// MaxRequestSize верхняя граница тела multipart запроса
func (u UploadConfig) MaxRequestSize() int64 {
	// Запас на заголовки частей и текстовые поля
	return u.MaxFileSize*int64(u.MaxFiles) + 1<<20
}

type ProviderConfig struct {
	// Таймаут на каждый вызов внешнего сервиса
	CallTimeout time.Duration `env:"PROVIDER_CALL_TIMEOUT" envDefault:"60s"`
}

type AssetHostConfig struct {
	// cloudinary или s3
	Driver string `env:"ASSET_HOST_DRIVER" envDefault:"cloudinary"`
}

type CloudinaryConfig struct {
	CloudName   string `env:"CLOUDINARY_CLOUD_NAME" envDefault:""`
	APIKey      string `env:"CLOUDINARY_API_KEY" envDefault:""`
	APISecret   string `env:"CLOUDINARY_API_SECRET" envDefault:""`
	APIBaseURL  string `env:"CLOUDINARY_API_BASE_URL" envDefault:"https://api.cloudinary.com"`
	DeliveryURL string `env:"CLOUDINARY_DELIVERY_URL" envDefault:"https://res.cloudinary.com"`
}

// Configured проверяет, заданы ли учётные данные
func (c CloudinaryConfig) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type S3Config struct {
	Endpoint  string        `env:"S3_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string        `env:"S3_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string        `env:"S3_SECRET_KEY" envDefault:"minioadmin"`
	Bucket    string        `env:"S3_BUCKET" envDefault:"assets"`
	UseSSL    bool          `env:"S3_USE_SSL" envDefault:"false"`
	URLExpiry time.Duration `env:"S3_URL_EXPIRY" envDefault:"24h"`
}

type ILovePDFConfig struct {
	PublicKey string `env:"ILOVEPDF_PUBLIC_KEY" envDefault:""`
	SecretKey string `env:"ILOVEPDF_SECRET_KEY" envDefault:""`
	BaseURL   string `env:"ILOVEPDF_BASE_URL" envDefault:"https://api.ilovepdf.com"`
	Region    string `env:"ILOVEPDF_REGION" envDefault:"eu"`
}

// Configured проверяет, заданы ли ключи проекта
func (c ILovePDFConfig) Configured() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

type ImageGenConfig struct {
	APIKey        string  `env:"HUGGINGFACE_API_KEY" envDefault:""`
	Endpoint      string  `env:"IMAGEGEN_ENDPOINT" envDefault:"https://router.huggingface.co/fal-ai/fal-ai/qwen-image"`
	RatePerMinute float64 `env:"IMAGEGEN_RATE_PER_MINUTE" envDefault:"10"`
	Burst         int     `env:"IMAGEGEN_BURST" envDefault:"2"`
}

// Configured проверяет, задан ли ключ API
func (c ImageGenConfig) Configured() bool {
	return c.APIKey != ""
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            int           `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"fileconverter"`
	Password        string        `env:"DB_PASSWORD" envDefault:"secret"`
	Name            string        `env:"DB_NAME" envDefault:"fileconverter"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns        int           `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

const (
	CleanupQueue  = "queue"  // Отложенное удаление через asynq worker
	CleanupInline = "inline" // Удаление сразу после операции
	CleanupOff    = "off"    // Ассеты остаются у провайдера
)

// CleanupConfig удаление промежуточных ассетов. По умолчанию inline:
// режим queue требует Redis и запущенный cmd/worker
type CleanupConfig struct {
	Mode string `env:"CLEANUP_MODE" envDefault:"inline"`
	// Через сколько удалять промежуточные ассеты у провайдера
	Delay       time.Duration `env:"CLEANUP_DELAY" envDefault:"10m"`
	MaxRetry    int           `env:"CLEANUP_MAX_RETRY" envDefault:"5"`
	Concurrency int           `env:"CLEANUP_CONCURRENCY" envDefault:"4"`
}

type WorkerConfig struct {
	// Адрес /metrics worker'а
	MetricsAddr string `env:"WORKER_METRICS_ADDR" envDefault:"0.0.0.0:9091"`
}

// JournalConfig журнал операций в PostgreSQL, выключен по умолчанию.
// При включении gateway не стартует без доступной базы
type JournalConfig struct {
	Enabled bool `env:"JOURNAL_ENABLED" envDefault:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// json или console
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	switch c.AssetHost.Driver {
	case AssetHostCloudinary, AssetHostS3:
	default:
		return fmt.Errorf("unknown asset host driver %q", c.AssetHost.Driver)
	}
	switch c.Cleanup.Mode {
	case CleanupQueue, CleanupInline, CleanupOff:
	default:
		return fmt.Errorf("unknown cleanup mode %q", c.Cleanup.Mode)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.MaxFiles <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILES must be positive")
	}
	if c.Upload.PushConcurrency <= 0 {
		return fmt.Errorf("UPLOAD_PUSH_CONCURRENCY must be positive")
	}
	if c.Provider.CallTimeout <= 0 {
		return fmt.Errorf("PROVIDER_CALL_TIMEOUT must be positive")
	}
	return nil
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
