// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gatherly/gatherly/internal/store"
)

// validate is the shared form validator. Struct tags are the single
// source of truth for what the boundary accepts.
var validate = validator.New(validator.WithRequiredStructEnabled())

// registerForm is the registration input schema. Usernames carry no
// minimum length or character-class rule server-side; short names like
// "bob" are legitimate identities.
type registerForm struct {
	Username string `validate:"required,max=15"`
	Password string `validate:"required,min=5,max=15"`
}

// loginForm is the login input schema. Only presence is checked here;
// anything else leaks information about stored accounts.
type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// eventForm is the event create/edit input schema. Date and time are
// kept as strings in their stored form.
type eventForm struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"required,max=2000"`
	Location    string `validate:"required,max=100"`
	Type        string `validate:"required,max=50"`
	Date        string `validate:"required,datetime=2006-01-02"`
	StartTime   string `validate:"required,datetime=15:04"`
}

// eventFormFromRequest reads the posted event fields. ParseForm must
// have been called already.
func eventFormFromRequest(r *http.Request) eventForm {
	return eventForm{
		Title:       strings.TrimSpace(r.FormValue("event_title")),
		Description: strings.TrimSpace(r.FormValue("event_description")),
		Location:    strings.TrimSpace(r.FormValue("event_location")),
		Type:        r.FormValue("event_type"),
		Date:        r.FormValue("event_date"),
		StartTime:   r.FormValue("start_time"),
	}
}

// fields converts the validated form into storage fields.
func (f eventForm) fields() store.EventFields {
	return store.EventFields{
		Title:       f.Title,
		Description: f.Description,
		Location:    f.Location,
		Type:        f.Type,
		Date:        f.Date,
		StartTime:   f.StartTime,
	}
}

// fieldLabels maps struct field names to the labels shown in flash messages.
var fieldLabels = map[string]string{
	"Username":    "Username",
	"Password":    "Password",
	"Title":       "Event title",
	"Description": "Event description",
	"Location":    "Event location",
	"Type":        "Event type",
	"Date":        "Event date",
	"StartTime":   "Start time",
}

// validationMessage turns the first validation failure into a short
// user-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid form data"
	}

	fe := verrs[0]
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return label + " must be at least " + fe.Param() + " characters"
	case "max":
		return label + " must be at most " + fe.Param() + " characters"
	case "datetime":
		if fe.Field() == "StartTime" {
			return label + " must use HH:MM format"
		}
		return label + " must use YYYY-MM-DD format"
	default:
		return label + " is invalid"
	}
}
