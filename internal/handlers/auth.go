// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Auth groups the registration, login, and current-user handlers.
type Auth struct {
	userStore *store.UserStore
	jwtSecret string
	devMode   bool
}

// NewAuth creates a new Auth handler group.
func NewAuth(userStore *store.UserStore, jwtSecret string, devMode bool) *Auth {
	return &Auth{
		userStore: userStore,
		jwtSecret: jwtSecret,
		devMode:   devMode,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse pairs the account with its freshly issued bearer token.
type tokenResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new account with the user role and issues a token.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateRegister(req.Username, req.Email, req.Password); errs != nil {
		respondValidation(w, errs)
		return
	}

	existing, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("register lookup failed", "error", err)
		respondInternal(w, a.devMode, err)
		return
	}
	if existing != nil {
		respondMessage(w, http.StatusBadRequest, "User with this email already exists")
		return
	}

	user, err := a.userStore.Create(req.Username, req.Email, req.Password, models.RoleUser)
	if err != nil {
		// The unique index may still fire under concurrent registration.
		if store.IsUniqueViolation(err) {
			respondMessage(w, http.StatusBadRequest, "User with this email already exists")
			return
		}
		slog.Error("register create failed", "error", err)
		respondInternal(w, a.devMode, err)
		return
	}

	token, err := auth.Issue(a.jwtSecret, user.ID, string(user.Role))
	if err != nil {
		slog.Error("token issue failed", "error", err)
		respondInternal(w, a.devMode, err)
		return
	}

	respondJSON(w, http.StatusCreated, tokenResponse{User: user, Token: token})
}

// Login verifies credentials and issues a token. Invalid email and invalid
// password produce the same response so accounts cannot be enumerated.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateLogin(req.Email, req.Password); errs != nil {
		respondValidation(w, errs)
		return
	}

	user, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondInternal(w, a.devMode, err)
		return
	}
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		respondMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := auth.Issue(a.jwtSecret, user.ID, string(user.Role))
	if err != nil {
		slog.Error("token issue failed", "error", err)
		respondInternal(w, a.devMode, err)
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{User: user, Token: token})
}

// Me returns the authenticated caller's account.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := a.userStore.FindByID(ident.ID)
	if err != nil {
		slog.Error("me lookup failed", "error", err)
		respondInternal(w, a.devMode, err)
		return
	}
	if user == nil {
		// Token outlived the account.
		respondMessage(w, http.StatusUnauthorized, "Account no longer exists")
		return
	}

	respondJSON(w, http.StatusOK, map[string]*models.User{"user": user})
}
