package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/contactbook/internal/auth"
	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/GoArmGo/contactbook/internal/validation"
)

// UserUseCase определяет управление пользователями: администраторские операции
// и изменение собственного профиля и пароля.
type UserUseCase interface {
	ListUsers(ctx context.Context, caller domain.Caller) ([]domain.User, error)
	GetUser(ctx context.Context, caller domain.Caller, id domain.ID) (*domain.User, error)
	UpdateUser(ctx context.Context, caller domain.Caller, id domain.ID, patch UserPatch, avatar *AvatarUpload) (*domain.User, error)
	// DeleteUser удаляет пользователя вместе с его контактами и их аватарами.
	DeleteUser(ctx context.Context, caller domain.Caller, id domain.ID) error

	UpdateProfile(ctx context.Context, caller domain.Caller, patch ProfilePatch, avatar *AvatarUpload) (*domain.User, error)
	// UpdatePassword требует верный текущий пароль; иначе ErrUnauthenticated и хеш не меняется.
	UpdatePassword(ctx context.Context, caller domain.Caller, in PasswordInput) error
}

type userUseCase struct {
	users     ports.UserStorage
	contacts  ports.ContactStorage
	avatars   *AvatarManager
	validator *validation.Validator
	logger    *slog.Logger
}

func NewUserUseCase(users ports.UserStorage, contacts ports.ContactStorage, avatars *AvatarManager, validator *validation.Validator, logger *slog.Logger) UserUseCase {
	return &userUseCase{
		users:     users,
		contacts:  contacts,
		avatars:   avatars,
		validator: validator,
		logger:    logger,
	}
}

func (uc *userUseCase) ListUsers(ctx context.Context, caller domain.Caller) ([]domain.User, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	users, err := uc.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка получения списка пользователей: %w", err)
	}
	return users, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, caller domain.Caller, id domain.ID) (*domain.User, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	return uc.load(ctx, id)
}

func (uc *userUseCase) UpdateUser(ctx context.Context, caller domain.Caller, id domain.ID, patch UserPatch, avatar *AvatarUpload) (*domain.User, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	patch.withAvatar = avatar != nil
	if err := uc.validator.Struct(&patch); err != nil {
		return nil, err
	}

	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if err := uc.save(ctx, user, patch.Name, patch.Email, avatar); err != nil {
		return nil, err
	}

	uc.logger.Info("user updated by admin", "user_id", user.ID, "by", caller.ID)
	return user, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, caller domain.Caller, id domain.ID) error {
	if err := RequireAdmin(caller); err != nil {
		return err
	}

	user, err := uc.load(ctx, id)
	if err != nil {
		return err
	}

	// Аватары контактов собираем до удаления: после каскада записей уже не будет.
	owned, err := uc.contacts.ListContactsByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("usecase: ошибка получения контактов пользователя %s: %w", id, err)
	}

	if err := uc.users.DeleteUser(ctx, id); err != nil {
		return userNotFound(fmt.Errorf("usecase: ошибка удаления пользователя %s: %w", id, err))
	}

	uc.avatars.Discard(ctx, user.Avatar, "user deleted")
	for i := range owned {
		uc.avatars.Discard(ctx, owned[i].AvatarName(), "owner deleted")
	}

	uc.logger.Info("user deleted", "user_id", id, "contacts_removed", len(owned), "by", caller.ID)
	return nil
}

func (uc *userUseCase) UpdateProfile(ctx context.Context, caller domain.Caller, patch ProfilePatch, avatar *AvatarUpload) (*domain.User, error) {
	patch.withAvatar = avatar != nil
	if err := uc.validator.Struct(&patch); err != nil {
		return nil, err
	}

	user, err := uc.load(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.save(ctx, user, patch.Name, patch.Email, avatar); err != nil {
		return nil, err
	}

	uc.logger.Info("profile updated", "user_id", user.ID)
	return user, nil
}

func (uc *userUseCase) UpdatePassword(ctx context.Context, caller domain.Caller, in PasswordInput) error {
	if err := uc.validator.Struct(&in); err != nil {
		return err
	}

	user, err := uc.load(ctx, caller.ID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(in.CurrentPassword, user.PasswordHash) {
		return domain.NewError(domain.ErrUnauthenticated, "current password is incorrect")
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("usecase: %w", err)
	}
	user.PasswordHash = hash
	if err := uc.users.UpdateUser(ctx, user); err != nil {
		return userNotFound(fmt.Errorf("usecase: ошибка смены пароля пользователя %s: %w", user.ID, err))
	}

	uc.logger.Info("password updated", "user_id", user.ID)
	return nil
}

func (uc *userUseCase) load(ctx context.Context, id domain.ID) (*domain.User, error) {
	user, err := uc.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, userNotFound(fmt.Errorf("usecase: ошибка получения пользователя %s: %w", id, err))
	}
	return user, nil
}

// save применяет имя, email и аватар и сохраняет пользователя.
// Email проверяется на занятость только при изменении; совпадение с самим собой не конфликт.
func (uc *userUseCase) save(ctx context.Context, user *domain.User, name, email *string, avatar *AvatarUpload) error {
	if name != nil {
		user.Name = *name
	}
	if email != nil && *email != normalizeEmail(user.Email) {
		if err := uc.ensureEmailAvailable(ctx, *email, user.ID); err != nil {
			return err
		}
		user.Email = *email
	}

	oldAvatar := user.Avatar
	var newAvatar string
	if avatar != nil {
		var err error
		if newAvatar, err = uc.avatars.Store(ctx, avatar); err != nil {
			return err
		}
		user.Avatar = newAvatar
	}

	if err := uc.users.UpdateUser(ctx, user); err != nil {
		uc.avatars.Discard(ctx, newAvatar, "rollback")
		return userNotFound(userConflict(fmt.Errorf("usecase: ошибка обновления пользователя %s: %w", user.ID, err)))
	}

	if newAvatar != "" && newAvatar != oldAvatar {
		uc.avatars.Discard(ctx, oldAvatar, "replaced")
	}
	return nil
}

func (uc *userUseCase) ensureEmailAvailable(ctx context.Context, email string, self domain.ID) error {
	other, err := uc.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("usecase: ошибка проверки email: %w", err)
	case other.ID.Equal(self):
		return nil
	default:
		return domain.NewError(domain.ErrConflict, "email already in use")
	}
}
