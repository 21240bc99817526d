package ports

import (
	"context"

	"github.com/GoArmGo/contactbook/internal/domain"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
// Отсутствие записи возвращается как domain.ErrNotFound,
// нарушение уникальности email: как domain.ErrConflict.
type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id domain.ID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	// DeleteUser удаляет пользователя вместе с его контактами.
	DeleteUser(ctx context.Context, id domain.ID) error
}

// ContactStorage определяет методы для взаимодействия с хранилищем контактов
type ContactStorage interface {
	CreateContact(ctx context.Context, contact *domain.Contact) error
	GetContactByID(ctx context.Context, id domain.ID) (*domain.Contact, error)
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	ListContactsByOwner(ctx context.Context, owner domain.ID) ([]domain.Contact, error)
	UpdateContact(ctx context.Context, contact *domain.Contact) error
	DeleteContact(ctx context.Context, id domain.ID) error
}

// Pinger проверяет доступность хранилища (для /health).
type Pinger interface {
	Ping(ctx context.Context) error
}
