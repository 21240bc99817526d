package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/GoArmGo/contactbook/internal/usecase"
)

// runWorker потребляет задачи очистки аватаров до отмены ctx
func runWorker(ctx context.Context, avatars *usecase.AvatarManager, consumer ports.AvatarCleanupConsumer, logger *slog.Logger) error {
	if consumer == nil {
		return errors.New("режим worker требует AVATAR_CLEANUP=queue")
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := consumer.StartConsumingAvatarCleanup(workerCtx, avatars.HandleCleanup); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}
	logger.Info("worker started, waiting for avatar cleanup jobs")

	<-ctx.Done()

	logger.Info("shutdown signal received, stopping worker")
	return nil
}
