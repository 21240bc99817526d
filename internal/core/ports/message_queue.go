package ports

import (
	"context"

	"github.com/GoArmGo/contactbook/internal/messaging/payloads"
)

// AvatarCleanupPublisher публикует задачи на удаление старых файлов аватаров.
// Используется use case'ами в режиме AVATAR_CLEANUP=queue.
type AvatarCleanupPublisher interface {
	PublishAvatarCleanup(ctx context.Context, payload payloads.AvatarCleanupPayload) error
}

// AvatarCleanupConsumer используется воркером для получения задач из очереди.
type AvatarCleanupConsumer interface {
	// StartConsumingAvatarCleanup начинает прослушивание очереди; ошибка обработчика
	// возвращает сообщение в очередь для повторной попытки.
	StartConsumingAvatarCleanup(ctx context.Context, handler func(context.Context, payloads.AvatarCleanupPayload) error) error
}
