// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/gatherly/gatherly/internal/middleware"
	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/render"
	"github.com/gatherly/gatherly/internal/store"
)

// EventStore is the persistence surface the event handlers need.
type EventStore interface {
	CreateEvent(ctx context.Context, fields store.EventFields, owner string) (model.Event, error)
	GetEventByID(ctx context.Context, id string) (model.Event, error)
	UpdateEvent(ctx context.Context, id string, fields store.EventFields) error
	DeleteEvent(ctx context.Context, id, owner string) error
	ListEventsByOwner(ctx context.Context, owner string) ([]model.Event, error)
}

// CategoryLister provides event categories, usually through the cache.
type CategoryLister interface {
	List(ctx context.Context) ([]model.Category, error)
}

// EventHandler handles the profile page and event CRUD.
type EventHandler struct {
	events         EventStore
	categories     CategoryLister
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	audit          Auditor
	sanitizer      *bluemonday.Policy
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events EventStore, categories CategoryLister, renderer *render.Renderer, sm *scs.SessionManager, audit Auditor) *EventHandler {
	return &EventHandler{
		events:         events,
		categories:     categories,
		renderer:       renderer,
		sessionManager: sm,
		audit:          audit,
		sanitizer:      bluemonday.UGCPolicy(),
	}
}

// ProfileData is the data for the profile template.
type ProfileData struct {
	Username string
	Events   []model.Event
}

// Profile shows the session user's events. The path parameter is kept
// for linkability but the listing is always the session identity's own.
func (h *EventHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := h.sessionManager.GetString(r.Context(), middleware.SessionKeyUsername)

	events, err := h.events.ListEventsByOwner(r.Context(), username)
	if err != nil {
		logAndInternalError(w, "listing events", "error", err, "username", username)
		return
	}

	data := render.TemplateData{
		Title: "Profile",
		Data:  ProfileData{Username: username, Events: events},
	}
	if err := h.renderer.Render(w, r, "users/profile", data); err != nil {
		logAndInternalError(w, "rendering profile page", "error", err)
	}
}

// EventFormData is the data for the create/edit event templates.
type EventFormData struct {
	Event      model.Event
	Categories []model.Category
}

// CreateEventForm renders the event creation page.
func (h *EventHandler) CreateEventForm(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		logAndInternalError(w, "listing categories", "error", err)
		return
	}

	data := render.TemplateData{
		Title: "Create Event",
		Data:  EventFormData{Categories: categories},
	}
	if err := h.renderer.Render(w, r, "events/create_event", data); err != nil {
		logAndInternalError(w, "rendering create event page", "error", err)
	}
}

// CreateEvent handles the event creation form submission. The owner is
// always the session identity; a created_by form value is ignored.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	username := h.sessionManager.GetString(r.Context(), middleware.SessionKeyUsername)

	if !parseFormOrRedirect(w, r, h.renderer, redirectCreateEvent) {
		return
	}

	form := eventFormFromRequest(r)
	if err := validate.Struct(form); err != nil {
		flashError(w, r, h.renderer, redirectCreateEvent, validationMessage(err))
		return
	}
	form.Description = h.sanitizer.Sanitize(form.Description)

	event, err := h.events.CreateEvent(r.Context(), form.fields(), username)
	if err != nil {
		logAndInternalError(w, "creating event", "error", err, "username", username)
		return
	}

	h.audit.LogEvent(r.Context(), model.AuditLevelInfo, "event created", username, r,
		map[string]any{"event_id": event.ID.Hex(), "event_title": event.Title})

	flashSuccess(w, r, h.renderer, profileURL(username), "Event Successfully Added")
}

// EditEventForm renders the event edit page for an event the session
// user owns.
func (h *EventHandler) EditEventForm(w http.ResponseWriter, r *http.Request) {
	username := h.sessionManager.GetString(r.Context(), middleware.SessionKeyUsername)

	event, ok := h.requireOwnedEvent(w, r, username)
	if !ok {
		return
	}

	categories, err := h.categories.List(r.Context())
	if err != nil {
		logAndInternalError(w, "listing categories", "error", err)
		return
	}

	data := render.TemplateData{
		Title: "Edit Event",
		Data:  EventFormData{Event: event, Categories: categories},
	}
	if err := h.renderer.Render(w, r, "events/edit_event", data); err != nil {
		logAndInternalError(w, "rendering edit event page", "error", err)
	}
}

// EditEvent handles the event edit form submission. Only the six event
// fields are overwritten; the owner never changes on edit.
func (h *EventHandler) EditEvent(w http.ResponseWriter, r *http.Request) {
	username := h.sessionManager.GetString(r.Context(), middleware.SessionKeyUsername)

	event, ok := h.requireOwnedEvent(w, r, username)
	if !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, profileURL(username)) {
		return
	}

	form := eventFormFromRequest(r)
	if err := validate.Struct(form); err != nil {
		flashError(w, r, h.renderer, "/edit_event/"+event.ID.Hex(), validationMessage(err))
		return
	}
	form.Description = h.sanitizer.Sanitize(form.Description)

	if err := h.events.UpdateEvent(r.Context(), event.ID.Hex(), form.fields()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			flashError(w, r, h.renderer, profileURL(username), "Event not found")
			return
		}
		logAndInternalError(w, "updating event", "error", err, "event_id", event.ID.Hex())
		return
	}

	h.audit.LogEvent(r.Context(), model.AuditLevelInfo, "event updated", username, r,
		map[string]any{"event_id": event.ID.Hex(), "event_title": form.Title})

	flashSuccess(w, r, h.renderer, profileURL(username), "Event Successfully Updated")
}

// DeleteEvent removes an event the session user owns. Unknown ids and
// other users' events change nothing.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	username := h.sessionManager.GetString(r.Context(), middleware.SessionKeyUsername)
	eventID := chi.URLParam(r, "eventID")

	if err := h.events.DeleteEvent(r.Context(), eventID, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.audit.LogEvent(r.Context(), model.AuditLevelWarning, "event delete rejected", username, r,
				map[string]any{"event_id": eventID})
			flashError(w, r, h.renderer, profileURL(username), "Event not found")
			return
		}
		logAndInternalError(w, "deleting event", "error", err, "event_id", eventID)
		return
	}

	h.audit.LogEvent(r.Context(), model.AuditLevelInfo, "event deleted", username, r,
		map[string]any{"event_id": eventID})

	flashSuccess(w, r, h.renderer, profileURL(username), "Event Successfully Deleted")
}

// requireOwnedEvent loads the event named in the URL and checks that the
// given user owns it. On failure it flashes and redirects to the profile.
func (h *EventHandler) requireOwnedEvent(w http.ResponseWriter, r *http.Request, username string) (model.Event, bool) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.events.GetEventByID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			flashError(w, r, h.renderer, profileURL(username), "Event not found")
		} else {
			logAndInternalError(w, "loading event", "error", err, "event_id", eventID)
		}
		return model.Event{}, false
	}

	if !event.OwnedBy(username) {
		h.audit.LogEvent(r.Context(), model.AuditLevelWarning, "event access rejected", username, r,
			map[string]any{"event_id": eventID, "owner": event.CreatedBy})
		flashError(w, r, h.renderer, profileURL(username), "You can only manage your own events")
		return model.Event{}, false
	}

	return event, true
}
