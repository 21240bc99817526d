package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/GoArmGo/contactbook/internal/messaging/payloads"
)

// Допустимые форматы аватаров и расширения, под которыми они сохраняются.
var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarConfig параметры менеджера аватаров
type AvatarConfig struct {
	DefaultAvatar string
	// DefaultImage записывается под именем DefaultAvatar, если файла ещё нет
	DefaultImage []byte
	MaxBytes     int64
}

// AvatarManager сохраняет загруженные аватары и удаляет ставшие ненужными файлы.
// Ошибки удаления только логируются: запись в хранилище к этому моменту уже изменена.
type AvatarManager struct {
	files         ports.FileStorage
	publisher     ports.AvatarCleanupPublisher
	defaultAvatar string
	defaultImage  []byte
	maxBytes      int64
	logger        *slog.Logger
}

// NewAvatarManager создает менеджер. При publisher == nil файлы удаляются сразу,
// иначе задача уходит в очередь, а при ошибке публикации удаление выполняется сразу.
func NewAvatarManager(files ports.FileStorage, publisher ports.AvatarCleanupPublisher, cfg AvatarConfig, logger *slog.Logger) *AvatarManager {
	def := cfg.DefaultAvatar
	if def == "" {
		def = domain.DefaultAvatar
	}
	return &AvatarManager{
		files:         files,
		publisher:     publisher,
		defaultAvatar: def,
		defaultImage:  cfg.DefaultImage,
		maxBytes:      cfg.MaxBytes,
		logger:        logger,
	}
}

// Default возвращает имя общего файла-заглушки.
func (m *AvatarManager) Default() string {
	return m.defaultAvatar
}

// EnsureDefault кладёт заглушку в хранилище, если её там нет. Существующий файл не перезаписывается.
func (m *AvatarManager) EnsureDefault(ctx context.Context) error {
	rc, err := m.files.GetFile(ctx, m.defaultAvatar)
	if err == nil {
		return rc.Close()
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("usecase: ошибка проверки аватара по умолчанию: %w", err)
	}
	if len(m.defaultImage) == 0 {
		m.logger.Warn("default avatar is missing and no image is configured", "file", m.defaultAvatar)
		return nil
	}

	contentType := mimetype.Detect(m.defaultImage).String()
	if err := m.files.UploadFile(ctx, m.defaultAvatar, bytes.NewReader(m.defaultImage), contentType); err != nil {
		return fmt.Errorf("usecase: ошибка записи аватара по умолчанию: %w", err)
	}
	m.logger.Info("default avatar created", "file", m.defaultAvatar)
	return nil
}

// IsProtected сообщает, что файл нельзя удалять: пустое имя или заглушка.
func (m *AvatarManager) IsProtected(name string) bool {
	return name == "" || name == m.defaultAvatar
}

// Store проверяет размер и формат файла и сохраняет его под новым именем avatar-<uuid><ext>.
func (m *AvatarManager) Store(ctx context.Context, upload *AvatarUpload) (string, error) {
	if upload.Size > m.maxBytes {
		return "", m.tooLarge()
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, m.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("usecase: ошибка чтения загруженного файла: %w", err)
	}
	if int64(len(data)) > m.maxBytes {
		return "", m.tooLarge()
	}
	if len(data) == 0 {
		return "", &domain.ValidationError{Messages: []string{"avatar file is empty"}}
	}

	mime := mimetype.Detect(data)
	ext, ok := avatarTypes[mime.String()]
	if !ok {
		return "", &domain.ValidationError{Messages: []string{"avatar must be a jpeg, png, gif or webp image"}}
	}

	name := "avatar-" + uuid.NewString() + ext
	if err := m.files.UploadFile(ctx, name, bytes.NewReader(data), mime.String()); err != nil {
		return "", fmt.Errorf("usecase: ошибка сохранения аватара %s: %w", name, err)
	}

	m.logger.Info("avatar stored", "file", name, "size", len(data), "content_type", mime.String())
	return name, nil
}

func (m *AvatarManager) tooLarge() error {
	return &domain.ValidationError{Messages: []string{fmt.Sprintf("avatar must be at most %d bytes", m.maxBytes)}}
}

// Discard удаляет файл, если он не защищён. Никогда не возвращает ошибку.
func (m *AvatarManager) Discard(ctx context.Context, name, reason string) {
	if m.IsProtected(name) {
		return
	}

	if m.publisher != nil {
		payload := payloads.AvatarCleanupPayload{Key: name, Reason: reason, EnqueuedAt: time.Now().UTC()}
		err := m.publisher.PublishAvatarCleanup(ctx, payload)
		if err == nil {
			return
		}
		m.logger.Warn("failed to enqueue avatar cleanup, deleting inline", "file", name, "error", err)
	}

	if err := m.files.DeleteFile(context.WithoutCancel(ctx), name); err != nil {
		m.logger.Warn("failed to delete avatar file", "file", name, "reason", reason, "error", err)
		return
	}
	m.logger.Info("avatar file deleted", "file", name, "reason", reason)
}

// HandleCleanup обрабатывает задачу из очереди. Ошибка вернёт сообщение в очередь;
// отсутствующий файл ошибкой не считается, поэтому повтор безопасен.
func (m *AvatarManager) HandleCleanup(ctx context.Context, payload payloads.AvatarCleanupPayload) error {
	if m.IsProtected(payload.Key) {
		m.logger.Warn("skipping cleanup of protected avatar", "file", payload.Key)
		return nil
	}
	if err := m.files.DeleteFile(ctx, payload.Key); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			m.logger.Error("dropping cleanup job with invalid key", "file", payload.Key, "error", err)
			return nil
		}
		return fmt.Errorf("usecase: ошибка удаления аватара %s: %w", payload.Key, err)
	}
	m.logger.Info("avatar file deleted by worker",
		"file", payload.Key,
		"reason", payload.Reason,
		"queued_ms", time.Since(payload.EnqueuedAt).Milliseconds(),
	)
	return nil
}
