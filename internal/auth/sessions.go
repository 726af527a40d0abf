package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/Paul-Starodub/fast-library/internal/config"
)

// Session data keys
const (
	SessionKeyUsername = "username"
	SessionKeyLoginAt  = "login_at"
)

// SessionCookieName is the cookie set by the demo cookie login.
const SessionCookieName = "session_token"

func init() {
	gob.Register(time.Time{})
}

// SessionManager wraps scs.SessionManager for the demo cookie login.
type SessionManager struct {
	*scs.SessionManager
}

// NewSQLiteSessionStore creates the sessions table in sqlDB and returns a
// store backed by it.
func NewSQLiteSessionStore(sqlDB *sql.DB) (scs.Store, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}
	return sqlite3store.New(sqlDB), nil
}

// NewSessionManager creates a session manager. A nil store keeps sessions in memory.
func NewSessionManager(store scs.Store, cfg config.Auth) *SessionManager {
	sm := scs.New()
	if store == nil {
		store = memstore.New()
	}
	sm.Store = store

	lifetime := cfg.SessionLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	sm.Lifetime = lifetime

	sm.Cookie.Name = SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}
}

// Login starts a fresh session for username.
func (sm *SessionManager) Login(ctx context.Context, username string) error {
	// New token prevents session fixation
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, SessionKeyUsername, username)
	sm.Put(ctx, SessionKeyLoginAt, time.Now().UTC())
	return nil
}

// Logout destroys the session.
func (sm *SessionManager) Logout(ctx context.Context) error {
	return sm.Destroy(ctx)
}

// Username returns the logged in username, or "" for anonymous sessions.
func (sm *SessionManager) Username(ctx context.Context) string {
	return sm.GetString(ctx, SessionKeyUsername)
}

// LoginAt returns when the session was started.
func (sm *SessionManager) LoginAt(ctx context.Context) time.Time {
	loginAt, _ := sm.Get(ctx, SessionKeyLoginAt).(time.Time)
	return loginAt
}
