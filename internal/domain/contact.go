package domain

import (
	"time"
)

// ContactType: тип контакта.
type ContactType string

const (
	ContactPersonal     ContactType = "personal"
	ContactProfessional ContactType = "professional"
)

// Address: необязательный почтовый адрес контакта.
type Address struct {
	Street  string `json:"street,omitempty" db:"street"`
	City    string `json:"city,omitempty" db:"city"`
	ZipCode string `json:"zipCode,omitempty" db:"zip_code"`
	Country string `json:"country,omitempty" db:"country"`
}

// IsZero сообщает, что ни одно поле адреса не заполнено.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Contact представляет модель контакта, принадлежащего ровно одному пользователю,
// соответствует таблице contacts в бд
type Contact struct {
	ID        ID          `json:"id" db:"id"`
	Owner     ID          `json:"user" db:"user_id"`
	Name      string      `json:"name" db:"name"`
	Email     string      `json:"email" db:"email"`
	Phone     string      `json:"phone" db:"phone"`
	Type      ContactType `json:"type" db:"type"`
	Avatar    *string     `json:"avatar" db:"avatar"`
	Address   *Address    `json:"address,omitempty" db:"-"`
	Notes     string      `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// AvatarName возвращает имя файла аватара или пустую строку.
func (c *Contact) AvatarName() string {
	if c.Avatar == nil {
		return ""
	}
	return *c.Avatar
}
