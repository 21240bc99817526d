package ports

import (
	"context"
	"io"
)

// FileStorage определяет интерфейс для работы с файловым хранилищем аватаров
// (локальный диск, AWS S3, MinIO).
type FileStorage interface {
	// UploadFile сохраняет файл под ключом key.
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) error

	// GetFile открывает файл на чтение. Отсутствующий файл: domain.ErrNotFound.
	GetFile(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteFile удаляет файл. Отсутствующий файл ошибкой не считается.
	DeleteFile(ctx context.Context, key string) error
}
