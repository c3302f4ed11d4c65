// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"strings"
	"testing"
)

func TestEventFormValidation(t *testing.T) {
	valid := eventForm{
		Title:       "Morning Run",
		Description: "A relaxed 5k.",
		Location:    "Riverside Park",
		Type:        "Sports",
		Date:        "2026-09-15",
		StartTime:   "08:30",
	}

	if err := validate.Struct(valid); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*eventForm)
		want   string
	}{
		{"empty title", func(f *eventForm) { f.Title = "" }, "Event title is required"},
		{"long title", func(f *eventForm) { f.Title = strings.Repeat("x", 101) }, "Event title must be at most 100 characters"},
		{"bad date", func(f *eventForm) { f.Date = "15/09/2026" }, "Event date must use YYYY-MM-DD format"},
		{"bad time", func(f *eventForm) { f.StartTime = "8.30am" }, "Start time must use HH:MM format"},
		{"empty type", func(f *eventForm) { f.Type = "" }, "Event type is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			err := validate.Struct(form)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := validationMessage(err); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterFormValidationMessages(t *testing.T) {
	tests := []struct {
		name string
		form registerForm
		want string
	}{
		{"missing username", registerForm{Password: "secret1"}, "Username is required"},
		{"overlong username", registerForm{Username: strings.Repeat("a", 16), Password: "secret1"}, "Username must be at most 15 characters"},
		{"missing password", registerForm{Username: "gooduser"}, "Password is required"},
		{"short password", registerForm{Username: "bob", Password: "abc"}, "Password must be at least 5 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.form)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := validationMessage(err); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationMessageNonValidatorError(t *testing.T) {
	if got := validationMessage(errors.New("boom")); got != "Invalid form data" {
		t.Errorf("message = %q, want Invalid form data", got)
	}
}
