package usecase

import (
	"io"
	"strings"

	"github.com/GoArmGo/contactbook/internal/domain"
)

// RegisterInput: данные регистрации. Роль из запроса не принимается.
type RegisterInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (in *LoginInput) Normalize() {
	in.Email = normalizeEmail(in.Email)
}

// ContactInput: данные нового контакта. Владелец берётся из токена, не из тела.
type ContactInput struct {
	Name    string             `json:"name" validate:"required,max=100"`
	Email   string             `json:"email" validate:"required,email"`
	Phone   string             `json:"phone" validate:"required,max=30"`
	Type    domain.ContactType `json:"type" validate:"omitempty,oneof=personal professional"`
	Address *domain.Address    `json:"address"`
	Notes   string             `json:"notes" validate:"max=1000"`
}

func (in *ContactInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Type = domain.ContactType(strings.ToLower(strings.TrimSpace(string(in.Type))))
	in.Address = normalizeAddress(in.Address)
}

// ContactPatch: частичное обновление контакта; nil означает «не менять».
type ContactPatch struct {
	Name    *string             `json:"name" validate:"omitnil,min=1,max=100"`
	Email   *string             `json:"email" validate:"omitnil,email"`
	Phone   *string             `json:"phone" validate:"omitnil,min=1,max=30"`
	Type    *domain.ContactType `json:"type" validate:"omitnil,oneof=personal professional"`
	Address *domain.Address     `json:"address"`
	Notes   *string             `json:"notes" validate:"omitnil,max=1000"`

	withAvatar bool
}

func (p *ContactPatch) Normalize() {
	trimPtr(p.Name)
	trimPtr(p.Phone)
	if p.Email != nil {
		*p.Email = normalizeEmail(*p.Email)
	}
	if p.Type != nil {
		*p.Type = domain.ContactType(strings.ToLower(strings.TrimSpace(string(*p.Type))))
	}
	if p.Address != nil {
		p.Address = &domain.Address{
			Street:  strings.TrimSpace(p.Address.Street),
			City:    strings.TrimSpace(p.Address.City),
			ZipCode: strings.TrimSpace(p.Address.ZipCode),
			Country: strings.TrimSpace(p.Address.Country),
		}
	}
}

func (p *ContactPatch) IsEmpty() bool {
	return !p.withAvatar && p.Name == nil && p.Email == nil && p.Phone == nil &&
		p.Type == nil && p.Address == nil && p.Notes == nil
}

// UserPatch: изменение пользователя администратором.
type UserPatch struct {
	Name  *string      `json:"name" validate:"omitnil,min=1,max=100"`
	Email *string      `json:"email" validate:"omitnil,email"`
	Role  *domain.Role `json:"role" validate:"omitnil,oneof=user admin"`

	withAvatar bool
}

func (p *UserPatch) Normalize() {
	trimPtr(p.Name)
	if p.Email != nil {
		*p.Email = normalizeEmail(*p.Email)
	}
	if p.Role != nil {
		*p.Role = domain.Role(strings.ToLower(strings.TrimSpace(string(*p.Role))))
	}
}

func (p *UserPatch) IsEmpty() bool {
	return !p.withAvatar && p.Name == nil && p.Email == nil && p.Role == nil
}

// ProfilePatch: изменение собственного профиля.
type ProfilePatch struct {
	Name  *string `json:"name" validate:"omitnil,min=1,max=100"`
	Email *string `json:"email" validate:"omitnil,email"`

	withAvatar bool
}

func (p *ProfilePatch) Normalize() {
	trimPtr(p.Name)
	if p.Email != nil {
		*p.Email = normalizeEmail(*p.Email)
	}
}

func (p *ProfilePatch) IsEmpty() bool {
	return !p.withAvatar && p.Name == nil && p.Email == nil
}

// PasswordInput: смена пароля. Имена полей едины для всех клиентов.
type PasswordInput struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=6"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required,eqfield=NewPassword"`
}

// AvatarUpload: загруженный файл аватара.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func normalizeAddress(a *domain.Address) *domain.Address {
	if a == nil {
		return nil
	}
	out := domain.Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Country: strings.TrimSpace(a.Country),
	}
	if out.IsZero() {
		return nil
	}
	return &out
}
