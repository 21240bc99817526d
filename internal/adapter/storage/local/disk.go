// Package local хранит файлы аватаров в каталоге на диске (AVATAR_STORAGE=local).
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoArmGo/contactbook/internal/domain"
)

// Disk реализует ports.FileStorage поверх каталога UPLOAD_DIR.
type Disk struct {
	dir string
}

// NewDisk создаёт каталог, если его нет.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог загрузок %s: %w", dir, err)
	}
	return &Disk{dir: dir}, nil
}

// Dir возвращает корневой каталог хранилища.
func (d *Disk) Dir() string {
	return d.dir
}

// UploadFile пишет файл атомарно: во временный файл, затем rename.
func (d *Disk) UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи файла %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия файла %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("ошибка сохранения файла %s: %w", key, err)
	}
	return nil
}

func (d *Disk) GetFile(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := d.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: файл %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", key, err)
	}
	return f, nil
}

// DeleteFile удаляет файл; отсутствующий файл не ошибка.
func (d *Disk) DeleteFile(ctx context.Context, key string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ошибка удаления файла %s: %w", key, err)
	}
	return nil
}

// path допускает только плоские имена файлов внутри каталога.
func (d *Disk) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || filepath.Base(key) != key {
		return "", fmt.Errorf("%w: недопустимое имя файла %q", domain.ErrValidation, key)
	}
	return filepath.Join(d.dir, key), nil
}
