package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GoArmGo/contactbook/internal/adapter/storage/local"
	"github.com/GoArmGo/contactbook/internal/auth"
	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/GoArmGo/contactbook/internal/database/memory"
	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/GoArmGo/contactbook/internal/logger"
	"github.com/GoArmGo/contactbook/internal/usecase"
	"github.com/GoArmGo/contactbook/internal/validation"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
}

type testServer struct {
	*httptest.Server
	store *memory.Store
	disk  *local.Disk
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.Discard()
	store := memory.NewStore()
	disk, err := local.NewDisk(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	if err := os.WriteFile(filepath.Join(disk.Dir(), domain.DefaultAvatar), pngBytes, 0o644); err != nil {
		t.Fatalf("write default avatar: %v", err)
	}

	v := validation.New()
	tokens := auth.NewTokenService(auth.TokenConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "test"})
	avatars := usecase.NewAvatarManager(disk, nil, usecase.AvatarConfig{DefaultAvatar: domain.DefaultAvatar, MaxBytes: 1 << 16}, log)
	authUC := usecase.NewAuthUseCase(store, tokens, v, avatars, log)

	if err := authUC.SeedAdmin(context.Background(), "Admin", "admin@x.com", "adminpass"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}

	router := NewRouter(RouterDeps{
		Auth:           authUC,
		Contacts:       usecase.NewContactUseCase(store, avatars, v, log),
		Users:          usecase.NewUserUseCase(store, store, avatars, v, log),
		Validator:      v,
		Files:          disk,
		Pingers:        []ports.Pinger{store},
		MaxAvatarBytes: 1 << 16,
		RequestTimeout: 5 * time.Second,
		Logger:         log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: store, disk: disk}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (int, apiResponse) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL.Path, raw, err)
		}
	}
	return resp.StatusCode, out
}

func (s *testServer) register(t *testing.T, name, email string) (string, domain.User) {
	t.Helper()
	code, resp := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1", "confirmPassword": "secret1",
	})
	if code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, code, resp.Message)
	}
	var u domain.User
	decodeData(t, resp, &u)
	return resp.Token, u
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, resp := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	if code != http.StatusOK || resp.Token == "" {
		t.Fatalf("login %s: %d %s", email, code, resp.Message)
	}
	return resp.Token
}

func decodeData(t *testing.T, resp apiResponse, dst any) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", resp.Data, err)
	}
}

func multipartRequest(t *testing.T, method, url string, fields map[string]string, avatar []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if avatar != nil {
		fw, err := mw.CreateFormFile("avatar", "me.png")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(avatar)
	}
	mw.Close()

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
