package handler

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoArmGo/contactbook/internal/domain"
)

func TestEndToEndOwnership(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "secret1", "confirmPassword": "secret1", "role": "admin",
	})
	if code != http.StatusCreated || !resp.Success || resp.Token == "" {
		t.Fatalf("register: %d %+v", code, resp)
	}
	if bytes.Contains(resp.Data, []byte("password")) {
		t.Errorf("response leaks password: %s", resp.Data)
	}
	var alice domain.User
	decodeData(t, resp, &alice)
	if alice.Role != domain.RoleUser {
		t.Errorf("role = %q, registration must not grant admin", alice.Role)
	}

	token := s.login(t, "a@x.com", "secret1")

	code, resp = s.do(t, http.MethodPost, "/api/contacts", token, map[string]string{
		"name": "B", "email": "b@x.com", "phone": "123", "user": domain.NewID().String(),
	})
	if code != http.StatusCreated {
		t.Fatalf("create contact: %d %+v", code, resp)
	}
	var contact domain.Contact
	decodeData(t, resp, &contact)
	if !contact.Owner.Equal(alice.ID) {
		t.Fatalf("data.user = %s, want caller %s", contact.Owner, alice.ID)
	}

	bobToken, _ := s.register(t, "Bob", "bob@x.com")
	path := "/api/contacts/" + contact.ID.String()
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		code, resp := s.do(t, method, path, bobToken, map[string]string{"notes": "x"})
		if code != http.StatusForbidden || resp.Success {
			t.Errorf("%s by other user: %d %+v", method, code, resp)
		}
	}

	adminToken := s.login(t, "admin@x.com", "adminpass")
	if code, resp := s.do(t, http.MethodGet, path, adminToken, nil); code != http.StatusOK {
		t.Errorf("get by admin: %d %+v", code, resp)
	}
	if code, resp := s.do(t, http.MethodGet, path, token, nil); code != http.StatusOK {
		t.Errorf("get by owner: %d %+v", code, resp)
	}
	if code, resp := s.do(t, http.MethodPut, path, token, map[string]string{"notes": "friend"}); code != http.StatusOK {
		t.Errorf("update by owner: %d %+v", code, resp)
	}

	code, resp = s.do(t, http.MethodDelete, path, adminToken, nil)
	if code != http.StatusOK || string(resp.Data) != "{}" {
		t.Errorf("delete by admin: %d data=%s", code, resp.Data)
	}
	if code, _ := s.do(t, http.MethodGet, path, token, nil); code != http.StatusNotFound {
		t.Errorf("get after delete: %d, want 404", code)
	}
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "A", "a@x.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/contacts", "", nil, http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/auth/me", "not-a-jwt", nil, http.StatusUnauthorized},
		{"wrong password", http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "nope!!"}, http.StatusUnauthorized},
		{"duplicate email", http.MethodPost, "/api/auth/register", "", map[string]string{"name": "A", "email": "A@x.com", "password": "secret1", "confirmPassword": "secret1"}, http.StatusBadRequest},
		{"invalid register", http.MethodPost, "/api/auth/register", "", map[string]string{"email": "bad"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := s.do(t, tt.method, tt.path, tt.token, tt.body)
			if code != tt.want || resp.Success {
				t.Errorf("got %d %+v, want %d", code, resp, tt.want)
			}
		})
	}
}

func TestValidationResponse(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "A", "a@x.com")

	code, resp := s.do(t, http.MethodPost, "/api/contacts", token, map[string]string{"name": "B"})
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d", code)
	}
	if len(resp.Errors) != 2 || resp.Message == "" {
		t.Errorf("errors = %v, message = %q", resp.Errors, resp.Message)
	}

	code, _ = s.do(t, http.MethodGet, "/api/contacts/not-an-id", token, nil)
	if code != http.StatusBadRequest {
		t.Errorf("malformed id: %d, want 400", code)
	}

	req, _ := http.NewRequest(http.MethodPost, s.URL+"/api/contacts", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	if code, _ := s.send(t, req, token); code != http.StatusBadRequest {
		t.Errorf("broken JSON: %d, want 400", code)
	}
}

func TestMeAndProfile(t *testing.T) {
	s := newTestServer(t)
	token, alice := s.register(t, "A", "a@x.com")
	s.register(t, "Bob", "bob@x.com")

	code, resp := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	var me domain.User
	decodeData(t, resp, &me)
	if code != http.StatusOK || !me.ID.Equal(alice.ID) {
		t.Fatalf("me: %d %+v", code, me)
	}

	if code, _ := s.do(t, http.MethodPut, "/api/users/profile", token, map[string]string{"email": "a@x.com"}); code != http.StatusOK {
		t.Errorf("profile with own email: %d", code)
	}
	code, resp = s.do(t, http.MethodPut, "/api/users/profile", token, map[string]string{"email": "bob@x.com"})
	if code != http.StatusBadRequest || resp.Message != "email already in use" {
		t.Errorf("profile with taken email: %d %q", code, resp.Message)
	}
	if code, _ := s.do(t, http.MethodPut, "/api/users/profile", token, map[string]string{}); code != http.StatusBadRequest {
		t.Errorf("empty profile update: %d, want 400", code)
	}
}

func TestPasswordEndpoint(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "A", "a@x.com")

	code, _ := s.do(t, http.MethodPut, "/api/users/password", token, map[string]string{
		"currentPassword": "wrong!", "newPassword": "newpass", "confirmNewPassword": "newpass",
	})
	if code != http.StatusUnauthorized {
		t.Errorf("wrong current: %d, want 401", code)
	}

	code, _ = s.do(t, http.MethodPut, "/api/users/password", token, map[string]string{
		"currentPassword": "secret1", "newPassword": "newpass", "confirmNewPassword": "other1",
	})
	if code != http.StatusBadRequest {
		t.Errorf("confirmation mismatch: %d, want 400", code)
	}
	s.login(t, "a@x.com", "secret1")

	code, _ = s.do(t, http.MethodPut, "/api/users/password", token, map[string]string{
		"currentPassword": "secret1", "newPassword": "newpass", "confirmNewPassword": "newpass",
	})
	if code != http.StatusOK {
		t.Fatalf("password update: %d", code)
	}
	s.login(t, "a@x.com", "newpass")
}

func TestAdminUserRoutes(t *testing.T) {
	s := newTestServer(t)
	token, alice := s.register(t, "A", "a@x.com")
	adminToken := s.login(t, "admin@x.com", "adminpass")

	if code, _ := s.do(t, http.MethodGet, "/api/users", token, nil); code != http.StatusForbidden {
		t.Errorf("list by user: %d, want 403", code)
	}

	code, resp := s.do(t, http.MethodGet, "/api/users", adminToken, nil)
	if code != http.StatusOK || resp.Count == nil || *resp.Count != 2 {
		t.Fatalf("list by admin: %d %+v", code, resp)
	}

	path := "/api/users/" + alice.ID.String()
	code, resp = s.do(t, http.MethodPut, path, adminToken, map[string]string{"role": "admin"})
	var updated domain.User
	decodeData(t, resp, &updated)
	if code != http.StatusOK || updated.Role != domain.RoleAdmin {
		t.Errorf("promote: %d %+v", code, updated)
	}

	if code, _ := s.do(t, http.MethodGet, "/api/users", token, nil); code != http.StatusOK {
		t.Errorf("promoted user must pass the admin gate with the old token: %d", code)
	}

	if code, _ := s.do(t, http.MethodDelete, path, adminToken, nil); code != http.StatusOK {
		t.Errorf("delete: %d", code)
	}
	if code, _ := s.do(t, http.MethodGet, path, adminToken, nil); code != http.StatusNotFound {
		t.Errorf("get deleted: %d, want 404", code)
	}
	if code, _ := s.do(t, http.MethodGet, "/api/auth/me", token, nil); code != http.StatusUnauthorized {
		t.Errorf("token of deleted user: %d, want 401", code)
	}
}

func TestMultipartAvatarLifecycle(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "A", "a@x.com")

	req := multipartRequest(t, http.MethodPost, s.URL+"/api/contacts", map[string]string{
		"name": "B", "email": "b@x.com", "phone": "123", "type": "professional",
		"address[city]": "Paris", "address.country": "FR",
	}, pngBytes)
	code, resp := s.send(t, req, token)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, resp)
	}
	var c domain.Contact
	decodeData(t, resp, &c)
	if c.Address == nil || c.Address.City != "Paris" || c.Address.Country != "FR" || c.Type != domain.ContactProfessional {
		t.Errorf("contact = %+v address=%+v", c, c.Address)
	}
	first := c.AvatarName()

	getResp, err := http.Get(s.URL + "/uploads/" + first)
	if err != nil {
		t.Fatalf("GET upload: %v", err)
	}
	body, _ := io.ReadAll(getResp.Body)
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK || !bytes.Equal(body, pngBytes) || getResp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("upload served: %d %q", getResp.StatusCode, getResp.Header.Get("Content-Type"))
	}

	req = multipartRequest(t, http.MethodPut, s.URL+"/api/contacts/"+c.ID.String(), nil, pngBytes)
	code, resp = s.send(t, req, token)
	if code != http.StatusOK {
		t.Fatalf("replace avatar: %d %+v", code, resp)
	}
	decodeData(t, resp, &c)
	if c.AvatarName() == first {
		t.Fatal("avatar not replaced")
	}
	if _, err := os.Stat(filepath.Join(s.disk.Dir(), first)); !os.IsNotExist(err) {
		t.Errorf("old avatar still on disk: %v", err)
	}

	req = multipartRequest(t, http.MethodPost, s.URL+"/api/contacts", map[string]string{
		"name": "C", "email": "c@x.com", "phone": "1",
	}, []byte("plain text, not an image"))
	if code, _ := s.send(t, req, token); code != http.StatusBadRequest {
		t.Errorf("non-image upload: %d, want 400", code)
	}

	if resp, _ := http.Get(s.URL + "/uploads/missing.png"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing upload: %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp, err := http.Get(s.URL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %v %v", resp, err)
	}
	resp.Body.Close()

	s.store.SetUnavailable(true)
	resp, _ = http.Get(s.URL + "/health")
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("health while down: %d, want 503", resp.StatusCode)
	}

	code, _ := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	if code != http.StatusServiceUnavailable {
		t.Errorf("login while store down: %d, want 503", code)
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	code, resp := s.do(t, http.MethodGet, "/api/nope", "", nil)
	if code != http.StatusNotFound || resp.Success {
		t.Errorf("got %d %+v", code, resp)
	}
}
