// Package interfaces holds compile-time checks tying concrete types to the
// interfaces their consumers declare.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - AuthorStore, ProfileStore, GenreStore, BookStore, TagStore, OrderStore:
//     declared by the controllers in internal/http, implemented by the
//     repositories under internal/database.
//   - Pinger: health checks (internal/http/health.go)
//
// ## Authentication Interfaces
//
//   - AuthorFinder: author lookups for login (internal/auth/service.go)
//   - Authenticator, PasswordHasher: author login and password changes
//     (internal/http/authors.go)
//   - CredentialChecker, DemoSessions: demo auth (internal/http/demo_auth.go)
//   - demoauth.Store: header token storage, in memory or Redis
//
// ## Audit and Task Interfaces
//
//   - AuditLogger, AuditReader: writing and reading the audit trail
//   - TaskQueue, AuditCleanupEnqueuer: queueing the retention task
//   - AuditEventCleaner: what the retention task deletes with
//
// # Adding a New Store
//
//  1. Declare the interface next to the controller that consumes it.
//  2. Implement it in a repository under internal/database.
//  3. Add a check to checks.go.
package interfaces
