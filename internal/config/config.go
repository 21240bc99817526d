package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL"`
	DBDriver       string        `env:"DB_DRIVER" envDefault:"sqlx"` // sqlx, gorm или memory
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	JWT struct {
		Secret     string        `env:"JWT_SECRET,notEmpty"`
		Expiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
		Issuer     string        `env:"JWT_ISSUER" envDefault:"contactbook"`
	}

	// Администратор, создаваемый при старте, если его ещё нет
	Admin struct {
		Name     string `env:"ADMIN_NAME" envDefault:"Administrator"`
		Email    string `env:"ADMIN_EMAIL"`
		Password string `env:"ADMIN_PASSWORD"`
	}

	Avatar struct {
		Storage       string `env:"AVATAR_STORAGE" envDefault:"local"` // local или s3
		UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
		DefaultAvatar string `env:"DEFAULT_AVATAR" envDefault:"default-avatar.png"`
		MaxBytes      int64  `env:"AVATAR_MAX_BYTES" envDefault:"5242880"`
		Cleanup       string `env:"AVATAR_CLEANUP" envDefault:"inline"` // inline или queue
	}

	// Настройки для MinIO
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME" envDefault:"avatars"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`

	RabbitMQ struct {
		RabbitMQURL       string        `env:"RABBITMQ_URL"`
		RabbitMQQueueName string        `env:"RABBITMQ_QUEUE_NAME" envDefault:"avatar_cleanup_queue"`
		MaxAttempts       int           `env:"RABBITMQ_MAX_ATTEMPTS" envDefault:"5"`
		RetryDelay        time.Duration `env:"RABBITMQ_RETRY_DELAY" envDefault:"2s"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет взаимосвязанные параметры, которые не выразить тегами.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlx", "gorm":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL обязателен для DB_DRIVER=%s", c.DBDriver)
		}
	case "memory":
	default:
		return fmt.Errorf("неизвестный DB_DRIVER: %q (sqlx, gorm или memory)", c.DBDriver)
	}

	switch c.Avatar.Storage {
	case "local":
	case "s3":
		if c.MinioEndpoint == "" || c.MinioAccessKeyID == "" || c.MinioSecretAccessKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID и MINIO_SECRET_ACCESS_KEY обязательны для AVATAR_STORAGE=s3")
		}
	default:
		return fmt.Errorf("неизвестный AVATAR_STORAGE: %q (local или s3)", c.Avatar.Storage)
	}

	switch c.Avatar.Cleanup {
	case "inline":
	case "queue":
		if c.RabbitMQ.RabbitMQURL == "" {
			return fmt.Errorf("RABBITMQ_URL обязателен для AVATAR_CLEANUP=queue")
		}
		if c.RabbitMQ.MaxAttempts < 1 {
			return fmt.Errorf("RABBITMQ_MAX_ATTEMPTS должен быть не меньше 1")
		}
	default:
		return fmt.Errorf("неизвестный AVATAR_CLEANUP: %q (inline или queue)", c.Avatar.Cleanup)
	}

	if c.Avatar.MaxBytes <= 0 {
		return fmt.Errorf("AVATAR_MAX_BYTES должен быть положительным")
	}
	return nil
}
