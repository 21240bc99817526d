package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/GoArmGo/contactbook/internal/domain"
	"gorm.io/gorm"
)

func TestContactModelMapping(t *testing.T) {
	avatar := "avatar-1.png"
	c := &domain.Contact{
		ID:        domain.NewID(),
		Owner:     domain.NewID(),
		Name:      "Bob",
		Email:     "bob@x.com",
		Phone:     "123",
		Type:      domain.ContactProfessional,
		Avatar:    &avatar,
		Address:   &domain.Address{City: "Paris"},
		CreatedAt: time.Now(),
	}

	m := contactToModel(c)
	if m.UserID != c.Owner.String() || m.AddressCity != "Paris" {
		t.Fatalf("unexpected model: %+v", m)
	}

	back := m.toDomain()
	if !back.Owner.Equal(c.Owner) || back.AvatarName() != avatar || back.Address == nil || back.Address.City != "Paris" {
		t.Errorf("unexpected domain contact: %+v", back)
	}

	m.AddressCity = ""
	if m.toDomain().Address != nil {
		t.Error("empty address columns must map to a nil address")
	}
}

func TestUserModelMapping(t *testing.T) {
	u := &domain.User{ID: domain.NewID(), Name: "A", Email: "a@x.com", Role: domain.RoleAdmin, Avatar: domain.DefaultAvatar}
	back := userToModel(u).toDomain()
	if !back.ID.Equal(u.ID) || back.Role != domain.RoleAdmin || back.Avatar != domain.DefaultAvatar {
		t.Errorf("unexpected user: %+v", back)
	}
}

func TestClassifyGormErrors(t *testing.T) {
	cases := map[error]error{
		gorm.ErrRecordNotFound:     domain.ErrNotFound,
		gorm.ErrDuplicatedKey:      domain.ErrConflict,
		gorm.ErrForeignKeyViolated: domain.ErrNotFound,
	}
	for in, want := range cases {
		if got := classify(in); !errors.Is(got, want) {
			t.Errorf("classify(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestModelTableNames(t *testing.T) {
	if got := (userModel{}).TableName(); got != "users" {
		t.Errorf("userModel table = %q, want users", got)
	}
	if got := (contactModel{}).TableName(); got != "contacts" {
		t.Errorf("contactModel table = %q, want contacts", got)
	}
}
