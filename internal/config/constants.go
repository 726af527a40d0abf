package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./fast-library.db"

	// DefaultTasksDatabasePath is the default path for the background task queue
	DefaultTasksDatabasePath = "./fast-library-tasks.db"
)

// Bearer token claims
const (
	TokenIssuer   = "fast-library"
	TokenAudience = "fast-library-api"
)
