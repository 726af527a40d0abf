// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── errors.go        # Driver-independent constraint checks, transactions
//	├── dbtest/          # Throwaway databases for package tests
//	├── authors/         # Authors and credentials
//	├── profiles/        # One profile per author
//	├── genres/          # Genres and their books
//	├── books/           # Books and book-tag associations
//	├── tags/            # Tags
//	├── orders/          # Orders and their lines
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	book, err := booksRepo.Get(ctx, 123)
//
// # Errors
//
// Repositories return *apperr.Error values for not-found and conflict
// conditions. Uniqueness is checked before writing; a write that still hits a
// unique index is rolled back by Transaction and reported as the same
// conflict. Any other storage error is wrapped and returned as is.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the entity in Migrate
//  5. Add compile-time interface check in internal/interfaces
package database
