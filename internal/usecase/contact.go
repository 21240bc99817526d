package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/GoArmGo/contactbook/internal/validation"
)

// ContactUseCase определяет операции над контактами от имени вызывающего.
// Для get/update/delete сначала загружается запись (404), затем проверяется доступ (403).
type ContactUseCase interface {
	ListContacts(ctx context.Context, caller domain.Caller) ([]domain.Contact, error)
	GetContact(ctx context.Context, caller domain.Caller, id domain.ID) (*domain.Contact, error)
	CreateContact(ctx context.Context, caller domain.Caller, in ContactInput, avatar *AvatarUpload) (*domain.Contact, error)
	UpdateContact(ctx context.Context, caller domain.Caller, id domain.ID, patch ContactPatch, avatar *AvatarUpload) (*domain.Contact, error)
	DeleteContact(ctx context.Context, caller domain.Caller, id domain.ID) error
}

type contactUseCase struct {
	contacts  ports.ContactStorage
	avatars   *AvatarManager
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

func NewContactUseCase(contacts ports.ContactStorage, avatars *AvatarManager, validator *validation.Validator, logger *slog.Logger) ContactUseCase {
	return &contactUseCase{
		contacts:  contacts,
		avatars:   avatars,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// ListContacts: администратор видит все контакты, остальные только свои.
func (uc *contactUseCase) ListContacts(ctx context.Context, caller domain.Caller) ([]domain.Contact, error) {
	var (
		contacts []domain.Contact
		err      error
	)
	if caller.IsAdmin() {
		contacts, err = uc.contacts.ListContacts(ctx)
	} else {
		contacts, err = uc.contacts.ListContactsByOwner(ctx, caller.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения списка контактов: %w", err)
	}
	return contacts, nil
}

func (uc *contactUseCase) GetContact(ctx context.Context, caller domain.Caller, id domain.ID) (*domain.Contact, error) {
	return uc.loadAuthorized(ctx, caller, id)
}

func (uc *contactUseCase) CreateContact(ctx context.Context, caller domain.Caller, in ContactInput, avatar *AvatarUpload) (*domain.Contact, error) {
	if err := uc.validator.Struct(&in); err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		Owner:     caller.ID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Type:      in.Type,
		Address:   in.Address,
		Notes:     in.Notes,
		CreatedAt: uc.now().UTC(),
	}
	if contact.Type == "" {
		contact.Type = domain.ContactPersonal
	}

	if avatar != nil {
		name, err := uc.avatars.Store(ctx, avatar)
		if err != nil {
			return nil, err
		}
		contact.Avatar = &name
	}

	if err := uc.contacts.CreateContact(ctx, contact); err != nil {
		uc.avatars.Discard(ctx, contact.AvatarName(), "rollback")
		return nil, fmt.Errorf("usecase: ошибка создания контакта: %w", err)
	}

	uc.logger.Info("contact created", "contact_id", contact.ID, "owner", contact.Owner)
	return contact, nil
}

func (uc *contactUseCase) UpdateContact(ctx context.Context, caller domain.Caller, id domain.ID, patch ContactPatch, avatar *AvatarUpload) (*domain.Contact, error) {
	patch.withAvatar = avatar != nil
	if err := uc.validator.Struct(&patch); err != nil {
		return nil, err
	}

	contact, err := uc.loadAuthorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	applyContactPatch(contact, &patch)

	oldAvatar := contact.AvatarName()
	var newAvatar string
	if avatar != nil {
		if newAvatar, err = uc.avatars.Store(ctx, avatar); err != nil {
			return nil, err
		}
		contact.Avatar = &newAvatar
	}

	if err := uc.contacts.UpdateContact(ctx, contact); err != nil {
		uc.avatars.Discard(ctx, newAvatar, "rollback")
		return nil, contactNotFound(fmt.Errorf("usecase: ошибка обновления контакта %s: %w", id, err))
	}

	if newAvatar != "" && newAvatar != oldAvatar {
		uc.avatars.Discard(ctx, oldAvatar, "replaced")
	}

	uc.logger.Info("contact updated", "contact_id", contact.ID, "by", caller.ID)
	return contact, nil
}

func (uc *contactUseCase) DeleteContact(ctx context.Context, caller domain.Caller, id domain.ID) error {
	contact, err := uc.loadAuthorized(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := uc.contacts.DeleteContact(ctx, id); err != nil {
		return contactNotFound(fmt.Errorf("usecase: ошибка удаления контакта %s: %w", id, err))
	}

	uc.avatars.Discard(ctx, contact.AvatarName(), "contact deleted")
	uc.logger.Info("contact deleted", "contact_id", id, "by", caller.ID)
	return nil
}

func (uc *contactUseCase) loadAuthorized(ctx context.Context, caller domain.Caller, id domain.ID) (*domain.Contact, error) {
	contact, err := uc.contacts.GetContactByID(ctx, id)
	if err != nil {
		return nil, contactNotFound(fmt.Errorf("usecase: ошибка получения контакта %s: %w", id, err))
	}
	if err := CanAccessContact(caller, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func applyContactPatch(c *domain.Contact, p *ContactPatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Address != nil {
		if p.Address.IsZero() {
			c.Address = nil
		} else {
			addr := *p.Address
			c.Address = &addr
		}
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
}
