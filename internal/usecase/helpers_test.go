package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/GoArmGo/contactbook/internal/adapter/storage/local"
	"github.com/GoArmGo/contactbook/internal/auth"
	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/GoArmGo/contactbook/internal/database/memory"
	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/GoArmGo/contactbook/internal/logger"
	"github.com/GoArmGo/contactbook/internal/messaging/payloads"
	"github.com/GoArmGo/contactbook/internal/validation"
)

// pngBytes: минимальная сигнатура PNG, достаточная для определения типа.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

func pngUpload() *AvatarUpload {
	return &AvatarUpload{Filename: "me.png", ContentType: "image/png", Size: int64(len(pngBytes)), Reader: bytes.NewReader(pngBytes)}
}

type testEnv struct {
	store    *memory.Store
	disk     *local.Disk
	avatars  *AvatarManager
	tokens   *auth.TokenService
	auth     AuthUseCase
	contacts ContactUseCase
	users    UserUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, envOptions{})
}

// envOptions подменяет хранилища и издателя очереди в тестовом окружении.
type envOptions struct {
	contacts  func(ports.ContactStorage) ports.ContactStorage
	users     func(ports.UserStorage) ports.UserStorage
	files     func(ports.FileStorage) ports.FileStorage
	publisher ports.AvatarCleanupPublisher
}

func newTestEnvWith(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	store := memory.NewStore()
	disk, err := local.NewDisk(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	if err := os.WriteFile(filepath.Join(disk.Dir(), domain.DefaultAvatar), pngBytes, 0o644); err != nil {
		t.Fatalf("write default avatar: %v", err)
	}

	log := logger.Discard()
	v := validation.New()
	var files ports.FileStorage = disk
	if opts.files != nil {
		files = opts.files(disk)
	}
	avatars := NewAvatarManager(files, opts.publisher, AvatarConfig{DefaultAvatar: domain.DefaultAvatar, MaxBytes: 1024}, log)
	tokens := auth.NewTokenService(auth.TokenConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "test"})

	var contacts ports.ContactStorage = store
	if opts.contacts != nil {
		contacts = opts.contacts(store)
	}
	var users ports.UserStorage = store
	if opts.users != nil {
		users = opts.users(store)
	}

	return &testEnv{
		store:    store,
		disk:     disk,
		avatars:  avatars,
		tokens:   tokens,
		auth:     NewAuthUseCase(store, tokens, v, avatars, log),
		contacts: NewContactUseCase(contacts, avatars, v, log),
		users:    NewUserUseCase(users, contacts, avatars, v, log),
	}
}

func (e *testEnv) register(t *testing.T, name, email string) domain.Caller {
	t.Helper()
	u, _, err := e.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret1", ConfirmPassword: "secret1"})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return domain.Caller{ID: u.ID, Role: u.Role}
}

func (e *testEnv) admin(t *testing.T) domain.Caller {
	t.Helper()
	if err := e.auth.SeedAdmin(context.Background(), "Admin", "admin@x.com", "adminpass"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	u, err := e.store.GetUserByEmail(context.Background(), "admin@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	return domain.Caller{ID: u.ID, Role: u.Role}
}

func (e *testEnv) fileExists(name string) bool {
	_, err := os.Stat(filepath.Join(e.disk.Dir(), name))
	return err == nil
}

func (e *testEnv) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.disk.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, en := range entries {
		names = append(names, en.Name())
	}
	return names
}

// recordingPublisher запоминает задачи очистки; err имитирует недоступность брокера.
type recordingPublisher struct {
	mu   sync.Mutex
	jobs []payloads.AvatarCleanupPayload
	err  error
}

func (p *recordingPublisher) PublishAvatarCleanup(ctx context.Context, payload payloads.AvatarCleanupPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, payload)
	return nil
}

// failingContacts отказывает при записи контакта, чтобы проверить откат загруженного файла.
type failingContacts struct {
	ports.ContactStorage
}

var errWriteFailed = errors.New("write failed")

func (f failingContacts) CreateContact(ctx context.Context, c *domain.Contact) error {
	return errWriteFailed
}

func (f failingContacts) UpdateContact(ctx context.Context, c *domain.Contact) error {
	return errWriteFailed
}

// failingUsers отказывает при обновлении пользователя.
type failingUsers struct {
	ports.UserStorage
}

func (f failingUsers) UpdateUser(ctx context.Context, u *domain.User) error {
	return errWriteFailed
}

// brokenDeletes: файловое хранилище, в котором удаление всегда завершается ошибкой.
type brokenDeletes struct {
	ports.FileStorage
}

func (b brokenDeletes) DeleteFile(ctx context.Context, key string) error {
	return errors.New("disk gone")
}

// countingUsers считает записи в хранилище пользователей.
type countingUsers struct {
	ports.UserStorage
	writes int
}

func (c *countingUsers) UpdateUser(ctx context.Context, u *domain.User) error {
	c.writes++
	return c.UserStorage.UpdateUser(ctx, u)
}

func ptr[T any](v T) *T {
	return &v
}
