package session

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/mongodbstore"
	"github.com/alexedwards/scs/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// New creates a new session manager backed by the MongoDB sessions
// collection. A nil database leaves the scs default in-memory store in
// place, which tests rely on.
func New(db *mongo.Database, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if db != nil {
		sm.Store = mongodbstore.New(db)
	}

	// Configure session
	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	if !isDev {
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Path = "/"
	}

	return sm
}
