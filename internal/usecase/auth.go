package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/contactbook/internal/auth"
	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/GoArmGo/contactbook/internal/validation"
)

// TokenIssuer выпускает и проверяет bearer-токены.
type TokenIssuer interface {
	GenerateToken(user *domain.User) (string, error)
	ValidateToken(token string) (domain.Caller, error)
}

// AuthUseCase определяет регистрацию, вход и определение вызывающего по токену.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, in LoginInput) (*domain.User, string, error)
	// Authenticate проверяет токен и берёт актуальную роль из хранилища.
	Authenticate(ctx context.Context, token string) (domain.Caller, error)
	Me(ctx context.Context, caller domain.Caller) (*domain.User, error)
	// SeedAdmin создаёт администратора, если пользователя с таким email ещё нет.
	SeedAdmin(ctx context.Context, name, email, password string) error
}

type authUseCase struct {
	users     ports.UserStorage
	tokens    TokenIssuer
	validator *validation.Validator
	avatars   *AvatarManager
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthUseCase(users ports.UserStorage, tokens TokenIssuer, validator *validation.Validator, avatars *AvatarManager, logger *slog.Logger) AuthUseCase {
	return &authUseCase{
		users:     users,
		tokens:    tokens,
		validator: validator,
		avatars:   avatars,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *authUseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	if err := uc.validator.Struct(&in); err != nil {
		return nil, "", err
	}

	if err := uc.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("usecase: %w", err)
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Avatar:       uc.avatars.Default(),
		CreatedAt:    uc.now().UTC(),
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, "", userConflict(fmt.Errorf("usecase: ошибка создания пользователя: %w", err))
	}

	token, err := uc.tokens.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("usecase: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

func (uc *authUseCase) Login(ctx context.Context, in LoginInput) (*domain.User, string, error) {
	if err := uc.validator.Struct(&in); err != nil {
		return nil, "", err
	}

	invalid := domain.NewError(domain.ErrUnauthenticated, "invalid credentials")

	user, err := uc.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", invalid
	}
	if err != nil {
		return nil, "", fmt.Errorf("usecase: ошибка поиска пользователя: %w", err)
	}
	if !auth.CheckPassword(in.Password, user.PasswordHash) {
		uc.logger.Info("login failed: password mismatch", "user_id", user.ID)
		return nil, "", invalid
	}

	token, err := uc.tokens.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("usecase: %w", err)
	}
	return user, token, nil
}

func (uc *authUseCase) Authenticate(ctx context.Context, token string) (domain.Caller, error) {
	claims, err := uc.tokens.ValidateToken(token)
	if err != nil {
		uc.logger.Debug("token rejected", "error", err)
		return domain.Caller{}, domain.NewError(domain.ErrUnauthenticated, "not authorized to access this route")
	}

	user, err := uc.users.GetUserByID(ctx, claims.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Caller{}, domain.NewError(domain.ErrUnauthenticated, "user no longer exists")
	}
	if err != nil {
		return domain.Caller{}, fmt.Errorf("usecase: ошибка загрузки пользователя %s: %w", claims.ID, err)
	}
	return domain.Caller{ID: user.ID, Role: user.Role}, nil
}

func (uc *authUseCase) Me(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	user, err := uc.users.GetUserByID(ctx, caller.ID)
	if err != nil {
		return nil, userNotFound(fmt.Errorf("usecase: ошибка загрузки пользователя %s: %w", caller.ID, err))
	}
	return user, nil
}

func (uc *authUseCase) SeedAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	existing, err := uc.users.GetUserByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			uc.logger.Warn("seed admin email belongs to a non-admin account, leaving it unchanged", "user_id", existing.ID)
		}
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("usecase: ошибка поиска администратора: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("usecase: %w", err)
	}
	admin := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Avatar:       uc.avatars.Default(),
		CreatedAt:    uc.now().UTC(),
	}
	if err := uc.users.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("usecase: ошибка создания администратора: %w", err)
	}

	uc.logger.Info("admin account seeded", "user_id", admin.ID, "email", admin.Email)
	return nil
}

func (uc *authUseCase) ensureEmailFree(ctx context.Context, email string) error {
	_, err := uc.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.NewError(domain.ErrConflict, "user already exists")
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("usecase: ошибка проверки email: %w", err)
	}
}

// userConflict подменяет конфликт хранилища понятным клиенту сообщением.
func userConflict(err error) error {
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%w (%v)", domain.NewError(domain.ErrConflict, "email already in use"), err)
	}
	return err
}

func userNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w (%v)", domain.NewError(domain.ErrNotFound, "user not found"), err)
	}
	return err
}

func contactNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w (%v)", domain.NewError(domain.ErrNotFound, "contact not found"), err)
	}
	return err
}
