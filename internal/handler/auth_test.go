// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestRegisterCreatesUserAndSignsIn(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	rec := c.register("NewUser1", "secret1")
	wantRedirect(t, rec, "/profile/newuser1")

	if _, ok := app.users.users["newuser1"]; !ok {
		t.Fatal("user was not created with lowercase username")
	}
	if _, ok := app.users.users["NewUser1"]; ok {
		t.Error("username stored with original casing")
	}

	// The redirect target must be reachable, proving the session started.
	rec = c.get("/profile/newuser1")
	if rec.Code != http.StatusOK {
		t.Errorf("profile after registration: status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Registration Successful!") {
		t.Errorf("profile missing flash: %q", rec.Body.String())
	}
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	c.register("hashcheck", "secret1")

	u := app.users.users["hashcheck"]
	if u.PasswordHash == "secret1" {
		t.Error("password stored in plaintext")
	}
	if !strings.HasPrefix(u.PasswordHash, "$argon2id$") {
		t.Errorf("hash = %q, want argon2id encoding", u.PasswordHash)
	}
}

func TestRegisterDuplicateCaseInsensitive(t *testing.T) {
	app := newTestApp(t)
	app.client(t).register("alice", "secret1")

	c := app.client(t)
	rec := c.register("Alice", "other12")
	wantRedirect(t, rec, RouteRegister)

	if len(app.users.users) != 1 {
		t.Errorf("user count = %d, want 1", len(app.users.users))
	}

	rec = c.get(RouteRegister)
	if !strings.Contains(rec.Body.String(), "Username already exists") {
		t.Errorf("register page missing flash: %q", rec.Body.String())
	}
}

func TestRegisterDuplicateViaIndexRace(t *testing.T) {
	app := newTestApp(t)
	app.users.raceOn = true

	c := app.client(t)
	rec := c.register("racer", "secret1")
	wantRedirect(t, rec, RouteRegister)

	rec = c.get(RouteRegister)
	if !strings.Contains(rec.Body.String(), "Username already exists") {
		t.Errorf("register page missing flash: %q", rec.Body.String())
	}
}

func TestRegisterAcceptsShortUsernames(t *testing.T) {
	app := newTestApp(t)

	for _, name := range []string{"dave", "bob"} {
		c := app.client(t)
		rec := c.register(name, "secret1")
		wantRedirect(t, rec, "/profile/"+name)

		if _, ok := app.users.users[name]; !ok {
			t.Errorf("user %q was not created", name)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"missing username", "", "secret1"},
		{"missing password", "gooduser", ""},
		{"short password", "gooduser", "abc"},
		{"overlong username", strings.Repeat("a", 20), "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			rec := app.client(t).register(tt.username, tt.password)
			wantRedirect(t, rec, RouteRegister)
			if len(app.users.users) != 0 {
				t.Errorf("user created despite invalid form")
			}
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	app := newTestApp(t)
	app.client(t).register("dave", "secret1")

	c := app.client(t)
	rec := c.login("dave", "secret1")
	wantRedirect(t, rec, "/profile/dave")

	rec = c.get("/profile/dave")
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Welcome, dave") {
		t.Errorf("profile missing welcome flash: %q", rec.Body.String())
	}
}

func TestLoginUsernameCaseInsensitive(t *testing.T) {
	app := newTestApp(t)
	app.client(t).register("alice", "secret1")

	rec := app.client(t).login("ALICE", "secret1")
	wantRedirect(t, rec, "/profile/alice")
}

func TestLoginPasswordCaseSensitive(t *testing.T) {
	app := newTestApp(t)
	app.client(t).register("alice", "Secret1")

	rec := app.client(t).login("alice", "secret1")
	wantRedirect(t, rec, RouteLogin)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	app.client(t).register("alice", "secret1")

	for _, tt := range []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "secret1"},
		{"wrong password", "alice", "wrong12"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			c := app.client(t)
			rec := c.login(tt.username, tt.password)
			wantRedirect(t, rec, RouteLogin)

			rec = c.get(RouteLogin)
			if !strings.Contains(rec.Body.String(), "Incorrect Username and/or Password") {
				t.Errorf("login page missing flash: %q", rec.Body.String())
			}
		})
	}
}

func TestLoginAuditsFailures(t *testing.T) {
	app := newTestApp(t)
	app.client(t).register("alice", "secret1")

	app.client(t).login("alice", "wrong12")
	if !app.audit.has("warning: login failed: wrong password") {
		t.Errorf("audit entries = %v, want wrong-password warning", app.audit.entries)
	}

	app.client(t).login("nobody", "secret1")
	if !app.audit.has("warning: login failed: unknown username") {
		t.Errorf("audit entries = %v, want unknown-username warning", app.audit.entries)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	c.register("alice", "secret1")

	rec := c.get(RouteLogout)
	wantRedirect(t, rec, RouteLogin)

	// Protected routes now redirect to login.
	rec = c.get("/profile/alice")
	wantRedirect(t, rec, RouteLogin)

	rec = c.get(RouteLogin)
	if !strings.Contains(rec.Body.String(), "You have been logged out") {
		t.Errorf("login page missing flash: %q", rec.Body.String())
	}
}

func TestLogoutAndProfileAcceptPost(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	c.register("alice", "secret1")

	rec := c.postForm("/profile/alice", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("POST profile status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = c.postForm(RouteLogout, nil)
	wantRedirect(t, rec, RouteLogin)

	rec = c.get("/profile/alice")
	wantRedirect(t, rec, RouteLogin)
}

func TestLogoutWithoutSession(t *testing.T) {
	app := newTestApp(t)
	rec := app.client(t).get(RouteLogout)
	wantRedirect(t, rec, RouteLogin)
}

func TestLoginFormRedirectsAuthenticated(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	c.register("alice", "secret1")

	rec := c.get(RouteLogin)
	wantRedirect(t, rec, "/profile/alice")

	rec = c.get(RouteRegister)
	wantRedirect(t, rec, "/profile/alice")
}
