package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims - структура для JWT токена
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig конфигурация для выпуска токенов
type TokenConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// TokenService выпускает и проверяет bearer-токены (HS256).
type TokenService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewTokenService создает новый экземпляр TokenService
func NewTokenService(cfg TokenConfig) *TokenService {
	exp := cfg.Expiration
	if exp <= 0 {
		exp = 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(cfg.Secret),
		expiration: exp,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// GenerateToken - создание JWT токена для пользователя
func (s *TokenService) GenerateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID.String(),
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// ValidateToken проверяет подпись, срок действия и издателя, возвращает вызывающего.
func (s *TokenService) ValidateToken(tokenString string) (domain.Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("неожиданный метод подписи")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return domain.Caller{}, fmt.Errorf("%w: невалидный токен", domain.ErrUnauthenticated)
	}

	id, err := domain.ParseID(claims.UserID)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("%w: некорректный id в токене", domain.ErrUnauthenticated)
	}
	return domain.Caller{ID: id, Role: domain.Role(claims.Role)}, nil
}

// ExtractTokenFromBearer извлекает токен из заголовка Authorization.
func ExtractTokenFromBearer(r *http.Request) (string, error) {
	const bearerPrefix = "Bearer "

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("%w: отсутствует заголовок Authorization", domain.ErrUnauthenticated)
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", fmt.Errorf("%w: отсутствует Bearer префикс", domain.ErrUnauthenticated)
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", fmt.Errorf("%w: пустой токен", domain.ErrUnauthenticated)
	}
	return token, nil
}
