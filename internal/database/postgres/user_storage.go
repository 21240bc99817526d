package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/contactbook/internal/domain"
	"gorm.io/gorm"
)

// userModel: GORM-модель таблицы users
type userModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	Avatar       string    `gorm:"column:avatar"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string {
	return "users"
}

func userToModel(u *domain.User) userModel {
	return userModel{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Avatar:       u.Avatar,
		CreatedAt:    u.CreatedAt,
	}
}

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:           domain.ID(m.ID),
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		Avatar:       m.Avatar,
		CreatedAt:    m.CreatedAt,
	}
}

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage
func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

func (s *GormUserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = domain.NewID()
	}
	m := userToModel(user)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		s.logger.Error("failed to create user with GORM", "email", user.Email, "error", err)
		return fmt.Errorf("ошибка при создании пользователя с GORM: %w", classify(err))
	}
	s.logger.Info("user created", "user_id", user.ID)
	return nil
}

func (s *GormUserStorage) GetUserByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	var m userModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователя %s с GORM: %w", id, classify(err))
	}
	u := m.toDomain()
	return &u, nil
}

func (s *GormUserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&m).Error; err != nil {
		return nil, fmt.Errorf("ошибка при поиске пользователя по email с GORM: %w", classify(err))
	}
	u := m.toDomain()
	return &u, nil
}

func (s *GormUserStorage) ListUsers(ctx context.Context) ([]domain.User, error) {
	var models []userModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении списка пользователей с GORM: %w", classify(err))
	}
	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, m.toDomain())
	}
	return users, nil
}

func (s *GormUserStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	m := userToModel(user)
	res := s.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"name":          m.Name,
		"email":         m.Email,
		"password_hash": m.PasswordHash,
		"role":          m.Role,
		"avatar":        m.Avatar,
	})
	if res.Error != nil {
		s.logger.Error("failed to update user with GORM", "user_id", user.ID, "error", res.Error)
		return fmt.Errorf("ошибка при обновлении пользователя %s с GORM: %w", user.ID, classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: пользователь %s", domain.ErrNotFound, user.ID)
	}
	return nil
}

// DeleteUser удаляет пользователя; контакты удаляются каскадно внешним ключом
func (s *GormUserStorage) DeleteUser(ctx context.Context, id domain.ID) error {
	res := s.db.WithContext(ctx).Delete(&userModel{}, "id = ?", id.String())
	if res.Error != nil {
		return fmt.Errorf("ошибка при удалении пользователя %s с GORM: %w", id, classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: пользователь %s", domain.ErrNotFound, id)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
