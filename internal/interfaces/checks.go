package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	auditsvc "github.com/Paul-Starodub/fast-library/internal/audit"
	"github.com/Paul-Starodub/fast-library/internal/auth"
	"github.com/Paul-Starodub/fast-library/internal/database"
	"github.com/Paul-Starodub/fast-library/internal/database/authors"
	"github.com/Paul-Starodub/fast-library/internal/database/books"
	"github.com/Paul-Starodub/fast-library/internal/database/genres"
	"github.com/Paul-Starodub/fast-library/internal/database/orders"
	"github.com/Paul-Starodub/fast-library/internal/database/profiles"
	"github.com/Paul-Starodub/fast-library/internal/database/tags"
	"github.com/Paul-Starodub/fast-library/internal/demoauth"
	"github.com/Paul-Starodub/fast-library/internal/http"
	"github.com/Paul-Starodub/fast-library/internal/scheduler"
	"github.com/Paul-Starodub/fast-library/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.AuthorStore = (*authors.Repository)(nil)
var _ http.ProfileStore = (*profiles.Repository)(nil)
var _ http.GenreStore = (*genres.Repository)(nil)
var _ http.BookStore = (*books.Repository)(nil)
var _ http.TagStore = (*tags.Repository)(nil)
var _ http.OrderStore = (*orders.Repository)(nil)

var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Authentication
// =============================================================================

var _ auth.AuthorFinder = (*authors.Repository)(nil)
var _ http.Authenticator = (*auth.Service)(nil)
var _ http.PasswordHasher = auth.Hasher{}

var _ http.CredentialChecker = (*demoauth.Credentials)(nil)
var _ http.DemoSessions = (*auth.SessionManager)(nil)

// Demo token stores
var _ demoauth.Store = (*demoauth.MemoryStore)(nil)
var _ demoauth.Store = (*demoauth.RedisStore)(nil)

// =============================================================================
// Audit and Background Tasks
// =============================================================================

var _ http.AuditLogger = (*auditsvc.Service)(nil)
var _ http.AuditReader = (*auditsvc.Service)(nil)
var _ tasks.AuditEventCleaner = (*auditsvc.Service)(nil)

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.Client)(nil)
