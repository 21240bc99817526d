package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/contactbook/internal/config"
	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/GoArmGo/contactbook/internal/usecase"
)

type App struct {
	Config          *config.Config
	logger          *slog.Logger
	router          http.Handler
	avatars         *usecase.AvatarManager
	cleanupConsumer ports.AvatarCleanupConsumer
	closers         []func() error
}

func NewApp(cfg *config.Config,
	logger *slog.Logger,
	router http.Handler,
	avatars *usecase.AvatarManager,
	cleanupConsumer ports.AvatarCleanupConsumer,
	closers []func() error) *App {
	return &App{
		Config:          cfg,
		logger:          logger,
		router:          router,
		avatars:         avatars,
		cleanupConsumer: cleanupConsumer,
		closers:         closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

func (a *App) Run(ctx context.Context, mode string) error {
	// отменяется по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case "server":
		err = runServer(ctx, a.Config, a.router, a.logger)
	case "worker":
		err = runWorker(ctx, a.avatars, a.cleanupConsumer, a.logger)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	// аккуратно закрываем ресурсы
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown finished with errors", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения в обратном порядке
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
