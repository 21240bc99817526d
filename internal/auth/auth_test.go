package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoArmGo/contactbook/internal/domain"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("password stored in plain text")
	}
	if !CheckPassword("secret1", hash) {
		t.Error("CheckPassword rejected the correct password")
	}
	if CheckPassword("secret2", hash) {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func newTestService() *TokenService {
	return NewTokenService(TokenConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "contactbook"})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	user := &domain.User{ID: domain.NewID(), Role: domain.RoleAdmin}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	caller, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if !caller.ID.Equal(user.ID) || !caller.IsAdmin() {
		t.Errorf("unexpected caller %+v", caller)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	svc := newTestService()
	user := &domain.User{ID: domain.NewID(), Role: domain.RoleUser}

	expired := newTestService()
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _ := expired.GenerateToken(user)

	otherSecret := NewTokenService(TokenConfig{Secret: "other", Expiration: time.Hour, Issuer: "contactbook"})
	forgedToken, _ := otherSecret.GenerateToken(user)

	otherIssuer := NewTokenService(TokenConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "someone-else"})
	issuerToken, _ := otherIssuer.GenerateToken(user)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"expired":      expiredToken,
		"wrong secret": forgedToken,
		"wrong issuer": issuerToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Errorf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestExtractTokenFromBearer(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def", "abc.def", false},
		{"bearer abc", "abc", false},
		{"", "", true},
		{"Basic abc", "", true},
		{"Bearer ", "", true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, err := ExtractTokenFromBearer(r)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("header %q: got (%q, %v), want %q wantErr=%v", tt.header, got, err, tt.want, tt.wantErr)
		}
	}
}
