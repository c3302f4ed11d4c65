// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/render"
)

// UserHandler serves the public user directory.
type UserHandler struct {
	users    UserStore
	renderer *render.Renderer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserStore, renderer *render.Renderer) *UserHandler {
	return &UserHandler{users: users, renderer: renderer}
}

// UserListData is the data for the user directory template.
type UserListData struct {
	Users []model.User
}

// Home lists all registered users. Served at / and /get_user.
func (h *UserHandler) Home(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		logAndInternalError(w, "listing users", "error", err)
		return
	}

	data := render.TemplateData{
		Title: "Users",
		Data:  UserListData{Users: users},
	}
	if err := h.renderer.Render(w, r, "users/user", data); err != nil {
		logAndInternalError(w, "rendering users page", "error", err)
	}
}
