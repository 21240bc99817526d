package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/contactbook/internal/adapter/storage/local"
	"github.com/GoArmGo/contactbook/internal/adapter/storage/minio"
	"github.com/GoArmGo/contactbook/internal/app"
	"github.com/GoArmGo/contactbook/internal/assets"
	"github.com/GoArmGo/contactbook/internal/auth"
	"github.com/GoArmGo/contactbook/internal/config"
	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/GoArmGo/contactbook/internal/database/client"
	"github.com/GoArmGo/contactbook/internal/database/memory"
	"github.com/GoArmGo/contactbook/internal/database/postgres"
	"github.com/GoArmGo/contactbook/internal/database/storage"
	"github.com/GoArmGo/contactbook/internal/handler"
	"github.com/GoArmGo/contactbook/internal/logger"
	"github.com/GoArmGo/contactbook/internal/rabbitmq"
	"github.com/GoArmGo/contactbook/internal/usecase"
	"github.com/GoArmGo/contactbook/internal/validation"
)

// stores: выбранная реализация хранилища и её ресурсы.
type stores struct {
	users    ports.UserStorage
	contacts ports.ContactStorage
	pinger   ports.Pinger
	close    func() error
}

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []func() error
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	// 2. Хранилище пользователей и контактов
	st, err := buildStores(cfg, slogger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, st.close)

	// 3. Файловое хранилище аватаров
	files, filesPinger, err := buildFileStorage(ctx, cfg, slogger)
	if err != nil {
		return fail(err)
	}
	pingers := []ports.Pinger{st.pinger}
	if filesPinger != nil {
		pingers = append(pingers, filesPinger)
	}

	// 4. Очередь очистки аватаров
	var (
		publisher ports.AvatarCleanupPublisher
		consumer  ports.AvatarCleanupConsumer
	)
	if cfg.Avatar.Cleanup == "queue" {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() error { rabbitMQClient.Close(); return nil })
		publisher, consumer = rabbitMQClient, rabbitMQClient
	}

	// 5. Бизнес-логика
	validator := validation.New()
	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	avatars := usecase.NewAvatarManager(files, publisher, usecase.AvatarConfig{
		DefaultAvatar: cfg.Avatar.DefaultAvatar,
		DefaultImage:  assets.DefaultAvatar,
		MaxBytes:      cfg.Avatar.MaxBytes,
	}, slogger)
	if err := avatars.EnsureDefault(ctx); err != nil {
		slogger.Warn("default avatar is not available", "error", err)
	}

	authUseCase := usecase.NewAuthUseCase(st.users, tokens, validator, avatars, slogger)
	contactUseCase := usecase.NewContactUseCase(st.contacts, avatars, validator, slogger)
	userUseCase := usecase.NewUserUseCase(st.users, st.contacts, avatars, validator, slogger)

	if err := authUseCase.SeedAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fail(err)
	}

	// 6. HTTP
	router := handler.NewRouter(handler.RouterDeps{
		Auth:           authUseCase,
		Contacts:       contactUseCase,
		Users:          userUseCase,
		Validator:      validator,
		Files:          files,
		Pingers:        pingers,
		MaxAvatarBytes: cfg.Avatar.MaxBytes,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         slogger,
	})

	slogger.Info("all dependencies initialized",
		"db_driver", cfg.DBDriver,
		"avatar_storage", cfg.Avatar.Storage,
		"avatar_cleanup", cfg.Avatar.Cleanup,
	)
	return app.NewApp(cfg, slogger, router, avatars, consumer, closers), nil
}

func buildStores(cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.DBDriver {
	case "sqlx":
		dbClient, err := client.NewClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:    storage.NewUserStorage(dbClient.DB, logger),
			contacts: storage.NewContactStorage(dbClient.DB, logger),
			pinger:   dbClient,
			close:    dbClient.Close,
		}, nil

	case "gorm":
		db, err := postgres.Open(cfg, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("ошибка получения *sql.DB из gorm: %w", err)
		}
		return &stores{
			users:    postgres.NewGormUserStorage(db, logger),
			contacts: postgres.NewGormContactStorage(db, logger),
			pinger:   postgres.NewGormPinger(db),
			close:    sqlDB.Close,
		}, nil

	case "memory":
		logger.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &stores{users: store, contacts: store, pinger: store, close: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("неизвестный DB_DRIVER: %q", cfg.DBDriver)
	}
}

// buildFileStorage возвращает хранилище аватаров и, для S3, его проверку доступности для /health.
func buildFileStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.FileStorage, ports.Pinger, error) {
	switch cfg.Avatar.Storage {
	case "s3":
		s3Client, err := minio.NewMinioClient(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return s3Client, s3Client, nil
	case "local":
		disk, err := local.NewDisk(cfg.Avatar.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("local avatar storage ready", "dir", disk.Dir())
		return disk, nil, nil
	default:
		return nil, nil, fmt.Errorf("неизвестный AVATAR_STORAGE: %q", cfg.Avatar.Storage)
	}
}
