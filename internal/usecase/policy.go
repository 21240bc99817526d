package usecase

import (
	"fmt"

	"github.com/GoArmGo/contactbook/internal/domain"
)

// CanAccessContact разрешает чтение и изменение контакта владельцу и администратору.
func CanAccessContact(caller domain.Caller, contact *domain.Contact) error {
	if caller.IsAdmin() || caller.ID.Equal(contact.Owner) {
		return nil
	}
	return fmt.Errorf("usecase: пользователь %s не владеет контактом %s: %w", caller.ID, contact.ID,
		domain.NewError(domain.ErrForbidden, "not authorized to access this contact"))
}

// RequireAdmin пропускает только администратора.
func RequireAdmin(caller domain.Caller) error {
	if caller.IsAdmin() {
		return nil
	}
	return domain.NewError(domain.ErrForbidden, fmt.Sprintf("role %s is not authorized to access this route", roleName(caller.Role)))
}

func roleName(r domain.Role) string {
	if r == "" {
		return "anonymous"
	}
	return string(r)
}
