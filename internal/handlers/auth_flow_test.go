// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/auth"
	"inkwell/internal/models"
)

func TestRegisterSuccess(t *testing.T) {
	env := newTestEnv(t)

	email := "register-ok@handler-test.local"
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE email = $1", email) })

	body := `{"username":"newuser","email":"` + email + `","password":"secret1"}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))

	env.Auth.Register(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", w.Code, w.Body.String())
	}

	var resp tokenResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User == nil || resp.User.Email != email {
		t.Fatalf("user: got %+v, want email %q", resp.User, email)
	}
	if resp.User.Role != models.RoleUser {
		t.Errorf("role: got %q, want %q", resp.User.Role, models.RoleUser)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}

	// The issued token verifies and names the new account.
	claims, err := auth.Parse(testJWTSecret, resp.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("claims user id: %v", err)
	}
	if id != resp.User.ID {
		t.Errorf("token subject: got %s, want %s", id, resp.User.ID)
	}
}

func TestRegisterHidesPasswordHash(t *testing.T) {
	env := newTestEnv(t)

	email := "register-hash@handler-test.local"
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE email = $1", email) })

	body := `{"username":"hashuser","email":"` + email + `","password":"secret1"}`
	w := httptest.NewRecorder()
	env.Auth.Register(w, httptest.NewRequest("POST", "/auth/register", strings.NewReader(body)))

	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", w.Code)
	}
	if strings.Contains(w.Body.String(), "password_hash") || strings.Contains(w.Body.String(), "$2a$") {
		t.Error("response must not expose the password hash")
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	body := `{"username":"ab","email":"not-an-email","password":"123"}`
	w := httptest.NewRecorder()
	env.Auth.Register(w, httptest.NewRequest("POST", "/auth/register", strings.NewReader(body)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", w.Code)
	}

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Errors) != 3 {
		t.Errorf("errors: got %v, want 3 entries", resp.Errors)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	email := "register-dupe@handler-test.local"
	testUser(t, env, email, models.RoleUser)

	body := `{"username":"another","email":"` + email + `","password":"secret1"}`
	w := httptest.NewRecorder()
	env.Auth.Register(w, httptest.NewRequest("POST", "/auth/register", strings.NewReader(body)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already exists") {
		t.Errorf("body: got %s, want duplicate message", w.Body.String())
	}
}

func TestRegisterMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.Auth.Register(w, httptest.NewRequest("POST", "/auth/register", strings.NewReader("{not json")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)

	email := "login-ok@handler-test.local"
	created := testUser(t, env, email, models.RoleUser)

	body := `{"email":"` + email + `","password":"handlerpass"}`
	w := httptest.NewRecorder()
	env.Auth.Login(w, httptest.NewRequest("POST", "/auth/login", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var resp tokenResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User == nil || resp.User.ID != created.ID {
		t.Errorf("user: got %+v, want id %s", resp.User, created.ID)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)

	email := "login-fail@handler-test.local"
	testUser(t, env, email, models.RoleUser)

	// Wrong password for a real account.
	w1 := httptest.NewRecorder()
	env.Auth.Login(w1, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"email":"`+email+`","password":"wrong-password"}`)))

	// Account that does not exist.
	w2 := httptest.NewRecorder()
	env.Auth.Login(w2, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"email":"nobody@handler-test.local","password":"whatever"}`)))

	if w1.Code != http.StatusBadRequest || w2.Code != http.StatusBadRequest {
		t.Fatalf("statuses: got %d and %d, want 400 for both", w1.Code, w2.Code)
	}
	if w1.Body.String() != w2.Body.String() {
		t.Errorf("bodies differ, accounts can be enumerated: %s vs %s", w1.Body.String(), w2.Body.String())
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)

	email := "me@handler-test.local"
	created := testUser(t, env, email, models.RoleUser)

	w := httptest.NewRecorder()
	r := asUser(httptest.NewRequest("GET", "/auth/me", nil), created)
	env.Auth.Me(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	var resp struct {
		User *models.User `json:"user"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User == nil || resp.User.Email != email {
		t.Errorf("user: got %+v, want email %q", resp.User, email)
	}
}

func TestMeAnonymous(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.Auth.Me(w, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
}

func TestMeDeletedAccount(t *testing.T) {
	env := newTestEnv(t)

	// Valid-looking identity whose account no longer exists.
	ghost := &models.User{ID: uuid.New(), Role: models.RoleUser}

	w := httptest.NewRecorder()
	env.Auth.Me(w, asUser(httptest.NewRequest("GET", "/auth/me", nil), ghost))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
}
