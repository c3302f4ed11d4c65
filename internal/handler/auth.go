// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/gatherly/gatherly/internal/auth"
	"github.com/gatherly/gatherly/internal/middleware"
	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/render"
	"github.com/gatherly/gatherly/internal/store"
)

// UserStore is the persistence surface the auth handlers need.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (model.User, error)
	UpdateUserPassword(ctx context.Context, username, passwordHash string) error
	ListUsers(ctx context.Context) ([]model.User, error)
}

// Auditor records audit-trail entries for auth and event actions.
type Auditor interface {
	LogAuth(ctx context.Context, level, message, username string, r *http.Request, metadata map[string]any)
	LogEvent(ctx context.Context, level, message, username string, r *http.Request, metadata map[string]any)
}

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users          UserStore
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	audit          Auditor
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users UserStore, renderer *render.Renderer, sm *scs.SessionManager, audit Auditor) *AuthHandler {
	return &AuthHandler{
		users:          users,
		renderer:       renderer,
		sessionManager: sm,
		audit:          audit,
	}
}

// RegisterForm renders the registration page.
// Already-authenticated users are sent to their profile.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if username := h.sessionManager.GetString(r.Context(), middleware.SessionKeyUsername); username != "" {
		http.Redirect(w, r, profileURL(username), http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "auth/register", render.TemplateData{Title: "Register"}); err != nil {
		logAndInternalError(w, "rendering register page", "error", err)
	}
}

// Register handles the registration form submission.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectRegister) {
		return
	}

	form := registerForm{
		Username: model.NormalizeUsername(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	if err := validate.Struct(form); err != nil {
		flashError(w, r, h.renderer, redirectRegister, validationMessage(err))
		return
	}

	// Fast-path existence check. The unique index below is what actually
	// closes the race between two concurrent registrations.
	if _, err := h.users.GetUserByUsername(r.Context(), form.Username); err == nil {
		flashError(w, r, h.renderer, redirectRegister, "Username already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		logAndInternalError(w, "checking username availability", "error", err, "username", form.Username)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		logAndInternalError(w, "hashing password", "error", err)
		return
	}

	if _, err := h.users.CreateUser(r.Context(), form.Username, hash); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the race against a concurrent registration.
			flashError(w, r, h.renderer, redirectRegister, "Username already exists")
			return
		}
		logAndInternalError(w, "creating user", "error", err, "username", form.Username)
		return
	}

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "renewing session token", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUsername, form.Username)

	h.audit.LogAuth(r.Context(), model.AuditLevelInfo, "user registered", form.Username, r, nil)
	slog.Info("user registered", "username", form.Username)

	flashSuccess(w, r, h.renderer, profileURL(form.Username), "Registration Successful!")
}

// LoginForm renders the login page.
// Already-authenticated users are sent to their profile.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if username := h.sessionManager.GetString(r.Context(), middleware.SessionKeyUsername); username != "" {
		http.Redirect(w, r, profileURL(username), http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{Title: "Login"}); err != nil {
		logAndInternalError(w, "rendering login page", "error", err)
	}
}

// Login handles the login form submission. Unknown usernames and wrong
// passwords produce the same flash so neither can be probed apart.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	displayName := r.FormValue("username")
	form := loginForm{
		Username: model.NormalizeUsername(displayName),
		Password: r.FormValue("password"),
	}
	if err := validate.Struct(form); err != nil {
		flashError(w, r, h.renderer, redirectLogin, "Incorrect Username and/or Password")
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), form.Username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logAndInternalError(w, "looking up user", "error", err, "username", form.Username)
			return
		}
		h.audit.LogAuth(r.Context(), model.AuditLevelWarning, "login failed: unknown username", form.Username, r, nil)
		flashError(w, r, h.renderer, redirectLogin, "Incorrect Username and/or Password")
		return
	}

	ok, err := auth.CheckPassword(form.Password, user.PasswordHash)
	if err != nil {
		logAndInternalError(w, "verifying password", "error", err, "username", form.Username)
		return
	}
	if !ok {
		h.audit.LogAuth(r.Context(), model.AuditLevelWarning, "login failed: wrong password", form.Username, r, nil)
		flashError(w, r, h.renderer, redirectLogin, "Incorrect Username and/or Password")
		return
	}

	// Transparent upgrade of hashes created with older parameters.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(form.Password); err == nil {
			if err := h.users.UpdateUserPassword(r.Context(), form.Username, newHash); err != nil {
				slog.Warn("password rehash failed", "error", err, "username", form.Username)
			}
		}
	}

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "renewing session token", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUsername, form.Username)

	h.audit.LogAuth(r.Context(), model.AuditLevelInfo, "user logged in", form.Username, r, nil)

	flashSuccess(w, r, h.renderer, profileURL(form.Username), "Welcome, "+displayName)
}

// Logout destroys the session. Safe to call without one.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	username := h.sessionManager.GetString(r.Context(), middleware.SessionKeyUsername)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		logAndInternalError(w, "destroying session", "error", err)
		return
	}

	if username != "" {
		h.audit.LogAuth(r.Context(), model.AuditLevelInfo, "user logged out", username, r, nil)
	}

	flashAndRedirect(w, r, h.renderer, redirectLogin, "You have been logged out", "info")
}
