// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gatherly/gatherly/internal/middleware"
	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/render"
	"github.com/gatherly/gatherly/internal/store"
)

// fakeUsers is an in-memory UserStore.
type fakeUsers struct {
	mu    sync.Mutex
	users map[string]model.User
	// raceOn makes CreateUser fail with ErrDuplicate even when the
	// existence check passed, mimicking a lost unique-index race.
	raceOn bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]model.User)}
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[model.NormalizeUsername(username)]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, username, passwordHash string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := model.NormalizeUsername(username)
	if f.raceOn {
		return model.User{}, store.ErrDuplicate
	}
	if _, ok := f.users[name]; ok {
		return model.User{}, store.ErrDuplicate
	}
	u := model.User{
		ID:           primitive.NewObjectID(),
		Username:     name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	f.users[name] = u
	return u, nil
}

func (f *fakeUsers) UpdateUserPassword(_ context.Context, username, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := model.NormalizeUsername(username)
	u, ok := f.users[name]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = passwordHash
	f.users[name] = u
	return nil
}

func (f *fakeUsers) ListUsers(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

// fakeEvents is an in-memory EventStore.
type fakeEvents struct {
	mu     sync.Mutex
	events map[string]model.Event
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: make(map[string]model.Event)}
}

func (f *fakeEvents) CreateEvent(_ context.Context, fields store.EventFields, owner string) (model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := model.Event{
		ID:          primitive.NewObjectID(),
		Title:       fields.Title,
		Description: fields.Description,
		Location:    fields.Location,
		Type:        fields.Type,
		Date:        fields.Date,
		StartTime:   fields.StartTime,
		CreatedBy:   owner,
		CreatedAt:   time.Now().UTC(),
	}
	f.events[e.ID.Hex()] = e
	return e, nil
}

func (f *fakeEvents) GetEventByID(_ context.Context, id string) (model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return model.Event{}, store.ErrNotFound
	}
	return e, nil
}

func (f *fakeEvents) UpdateEvent(_ context.Context, id string, fields store.EventFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Title = fields.Title
	e.Description = fields.Description
	e.Location = fields.Location
	e.Type = fields.Type
	e.Date = fields.Date
	e.StartTime = fields.StartTime
	e.UpdatedAt = time.Now().UTC()
	f.events[id] = e
	return nil
}

func (f *fakeEvents) DeleteEvent(_ context.Context, id, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok || !e.OwnedBy(owner) {
		return store.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEvents) ListEventsByOwner(_ context.Context, owner string) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Event
	for _, e := range f.events {
		if e.OwnedBy(owner) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// fakeCategories is an in-memory CategoryLister.
type fakeCategories struct {
	categories []model.Category
}

func (f *fakeCategories) List(_ context.Context) ([]model.Category, error) {
	return f.categories, nil
}

// fakeAudit records audit calls for assertions.
type fakeAudit struct {
	mu      sync.Mutex
	entries []string
}

func (f *fakeAudit) log(level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, level+": "+message)
}

func (f *fakeAudit) LogAuth(_ context.Context, level, message, _ string, _ *http.Request, _ map[string]any) {
	f.log(level, message)
}

func (f *fakeAudit) LogEvent(_ context.Context, level, message, _ string, _ *http.Request, _ map[string]any) {
	f.log(level, message)
}

func (f *fakeAudit) has(entry string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e == entry {
			return true
		}
	}
	return false
}

// testApp wires the handlers into a chi router the way main does,
// backed by in-memory fakes and the scs in-memory session store.
type testApp struct {
	router         *chi.Mux
	sessionManager *scs.SessionManager
	users          *fakeUsers
	events         *fakeEvents
	audit          *fakeAudit
}

func testPageFS() fstest.MapFS {
	base := `{{define "base"}}{{if .Flash}}[{{.FlashType}}] {{.Flash}}{{end}}{{template "content" .}}{{end}}`
	return fstest.MapFS{
		"layouts/base.html":        {Data: []byte(base)},
		"auth/login.html":          {Data: []byte(`{{define "content"}}login page{{end}}`)},
		"auth/register.html":       {Data: []byte(`{{define "content"}}register page{{end}}`)},
		"users/user.html":          {Data: []byte(`{{define "content"}}{{range .Data.Users}}{{.Username}};{{end}}{{end}}`)},
		"users/profile.html":       {Data: []byte(`{{define "content"}}profile of {{.Data.Username}}: {{range .Data.Events}}{{.Title}} by {{.CreatedBy}};{{end}}{{end}}`)},
		"events/create_event.html": {Data: []byte(`{{define "content"}}create event: {{range .Data.Categories}}{{.Name}};{{end}}{{end}}`)},
		"events/edit_event.html":   {Data: []byte(`{{define "content"}}edit {{.Data.Event.Title}}{{end}}`)},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	sm := scs.New()
	sm.Lifetime = time.Hour

	renderer, err := render.New(render.Config{
		TemplatesFS:    testPageFS(),
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	users := newFakeUsers()
	events := newFakeEvents()
	audit := &fakeAudit{}
	categories := &fakeCategories{categories: []model.Category{
		{Name: "Concert"}, {Name: "Meetup"},
	}}

	authHandler := NewAuthHandler(users, renderer, sm, audit)
	eventHandler := NewEventHandler(events, categories, renderer, sm, audit)
	userHandler := NewUserHandler(users, renderer)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)

	r.Get(RouteRoot, userHandler.Home)
	r.Get(RouteGetUser, userHandler.Home)
	r.Get(RouteRegister, authHandler.RegisterForm)
	r.Post(RouteRegister, authHandler.Register)
	r.Get(RouteLogin, authHandler.LoginForm)
	r.Post(RouteLogin, authHandler.Login)
	r.Get(RouteLogout, authHandler.Logout)
	r.Post(RouteLogout, authHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(sm))
		r.Get(RouteProfile, eventHandler.Profile)
		r.Post(RouteProfile, eventHandler.Profile)
		r.Get(RouteCreateEvent, eventHandler.CreateEventForm)
		r.Post(RouteCreateEvent, eventHandler.CreateEvent)
		r.Get(RouteEditEvent, eventHandler.EditEventForm)
		r.Post(RouteEditEvent, eventHandler.EditEvent)
		r.Post(RouteDeleteEvent, eventHandler.DeleteEvent)
	})

	return &testApp{
		router:         r,
		sessionManager: sm,
		users:          users,
		events:         events,
		audit:          audit,
	}
}

// client drives the test app like a browser, carrying the session
// cookie between requests.
type client struct {
	t      *testing.T
	app    *testApp
	cookie *http.Cookie
}

func (a *testApp) client(t *testing.T) *client {
	return &client{t: t, app: a}
}

func (c *client) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	c.app.router.ServeHTTP(rec, req)

	res := rec.Result()
	for _, ck := range res.Cookies() {
		if ck.Name == c.app.sessionManager.Cookie.Name {
			if ck.MaxAge < 0 {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target, nil)
}

func (c *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, target, form)
}

// register signs up a user through the real registration flow.
func (c *client) register(username, password string) *httptest.ResponseRecorder {
	return c.postForm(RouteRegister, url.Values{
		"username": {username},
		"password": {password},
	})
}

// login signs in through the real login flow.
func (c *client) login(username, password string) *httptest.ResponseRecorder {
	return c.postForm(RouteLogin, url.Values{
		"username": {username},
		"password": {password},
	})
}

func wantRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != location {
		t.Fatalf("Location = %q, want %q", loc, location)
	}
}

var validEventForm = url.Values{
	"event_title":       {"Morning Run"},
	"event_description": {"A relaxed 5k along the river."},
	"event_location":    {"Riverside Park"},
	"event_type":        {"Sports"},
	"event_date":        {"2026-09-15"},
	"start_time":        {"08:30"},
}

func cloneForm(form url.Values) url.Values {
	out := make(url.Values, len(form))
	for k, v := range form {
		out[k] = append([]string(nil), v...)
	}
	return out
}
