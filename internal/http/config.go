package http

import (
	"github.com/Paul-Starodub/fast-library/internal/auth"
	"github.com/Paul-Starodub/fast-library/internal/demoauth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Stores
	Authors  AuthorStore
	Profiles ProfileStore
	Genres   GenreStore
	Books    BookStore
	Tags     TagStore
	Orders   OrderStore

	// Authentication
	Hasher         PasswordHasher
	Authenticator  Authenticator
	AuthMiddleware *auth.Middleware
	LoginLimiter   *auth.KeyedRateLimiter // nil disables login throttling

	// Demo auth (optional)
	DemoAuthEnabled bool
	DemoCredentials CredentialChecker
	DemoTokens      demoauth.Store
	SessionManager  *auth.SessionManager
	CSRFSecret      []byte
	SecureCookies   bool

	// Audit trail (optional)
	Auditor            AuditLogger
	AuditEvents        AuditReader
	TaskQueue          TaskQueue // nil when background tasks are disabled
	AuditRetentionDays int

	// HTTP behaviour
	CORSAllowedOrigins []string
	ReadOnly           bool
	MediaPath          string
	StaticPath         string

	// Application info
	Database Pinger
	Version  string
}
