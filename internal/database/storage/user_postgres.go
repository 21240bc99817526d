package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, password_hash, role, avatar, created_at`

// UserStorage реализует интерфейс ports.UserStorage с использованием sqlx
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUser сохраняет нового пользователя.
func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if user.ID == "" {
		user.ID = domain.NewID()
	}

	_, err := s.db.NamedExecContext(ctx, `
	INSERT INTO users (id, name, email, password_hash, role, avatar, created_at)
	VALUES (:id, :name, :email, :password_hash, :role, :avatar, :created_at)
	`, user)
	if err != nil {
		s.logger.Error("failed to insert user", "email", user.Email, "error", err)
		return fmt.Errorf("insert user: %w", classify(err))
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetUserByID получает пользователя по ID
func (s *UserStorage) GetUserByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("select user %s: %w", id, classify(err))
	}
	return &user, nil
}

// GetUserByEmail получает пользователя по email без учёта регистра
func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		return nil, fmt.Errorf("select user by email: %w", classify(err))
	}
	return &user, nil
}

// ListUsers возвращает всех пользователей, новые первыми
func (s *UserStorage) ListUsers(ctx context.Context) ([]domain.User, error) {
	start := time.Now()

	users := []domain.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`); err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("select users: %w", classify(err))
	}

	s.logger.Debug("listed users",
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// UpdateUser перезаписывает изменяемые поля пользователя
func (s *UserStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	res, err := s.db.NamedExecContext(ctx, `
	UPDATE users
	SET name = :name, email = :email, password_hash = :password_hash, role = :role, avatar = :avatar
	WHERE id = :id
	`, user)
	if err != nil {
		s.logger.Error("failed to update user", "user_id", user.ID, "error", err)
		return fmt.Errorf("update user %s: %w", user.ID, classify(err))
	}
	if err := expectOneRow(res, "user", user.ID); err != nil {
		return err
	}

	s.logger.Info("user updated",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// DeleteUser удаляет пользователя; контакты удаляются каскадно (ON DELETE CASCADE)
func (s *UserStorage) DeleteUser(ctx context.Context, id domain.ID) error {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return fmt.Errorf("delete user %s: %w", id, classify(err))
	}
	if err := expectOneRow(res, "user", id); err != nil {
		return err
	}

	s.logger.Info("user deleted",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectOneRow(res rowsAffecter, entity string, id domain.ID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", classify(err))
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, entity, id)
	}
	return nil
}
