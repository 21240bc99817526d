package domain

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID: идентификатор записи в формате ObjectID (24 hex-символа в нижнем регистре).
// Используется и как первичный ключ, и как ссылка на владельца контакта.
type ID string

// NewID генерирует новый идентификатор.
func NewID() ID {
	return ID(primitive.NewObjectID().Hex())
}

// ParseID проверяет строку и приводит её к ID.
func ParseID(s string) (ID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.ToLower(s))
	if err != nil {
		return "", fmt.Errorf("%w: некорректный идентификатор %q", ErrValidation, s)
	}
	return ID(oid.Hex()), nil
}

// Equal сравнивает идентификаторы. Пустой ID не равен ничему.
func (id ID) Equal(other ID) bool {
	return id != "" && id == other
}

func (id ID) String() string {
	return string(id)
}
