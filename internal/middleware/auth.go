// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// request context handling, and transport hygiene.
package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/gatherly/gatherly/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for user data.
const (
	ContextKeyUser ContextKey = "user"
)

// SessionKeyUsername is the session key binding the authenticated username.
const SessionKeyUsername = "user"

// UserGetter loads a user by username.
type UserGetter interface {
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

// Auth creates middleware that requires authentication. Requests without a
// bound session identity are redirected to the login page; nothing here can
// hit an unset session value.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := sm.GetString(r.Context(), SessionKeyUsername)
			if username == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoadUser creates middleware that loads the current user into the request
// context. Should be used after Auth. A stale session naming a user that no
// longer exists is destroyed and redirected to login.
func LoadUser(sm *scs.SessionManager, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := sm.GetString(r.Context(), SessionKeyUsername)
			if username == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByUsername(r.Context(), username)
			if err != nil {
				_ = sm.Destroy(r.Context())
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context; callers must branch on that.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUsername returns the current user's username from context, or empty
// string if no user is bound.
func GetUsername(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.Username
	}
	return ""
}
