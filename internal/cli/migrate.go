package cli

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Paul-Starodub/fast-library/internal/config"
	"github.com/Paul-Starodub/fast-library/internal/database"
)

// MigrateCommand creates or updates the schema without starting the server.
type MigrateCommand struct {
	Config *config.Config
}

func NewMigrateCommand(cfg *config.Config) *MigrateCommand {
	return &MigrateCommand{Config: cfg}
}

func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)

	applyDatabaseFlags(fs, &cmd.Config.Database)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s migrate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create or update every table and index.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *MigrateCommand) Run() error {
	db, err := database.NewSilentDatabase(cmd.Config.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	fmt.Printf("Database schema is up to date (%s)\n", db.Driver)
	return nil
}

// applyDatabaseFlags lets commands override the environment's database settings.
func applyDatabaseFlags(fs *flag.FlagSet, cfg *config.Database) {
	fs.Func("driver", fmt.Sprintf("Database driver: sqlite or postgres (default %q)", cfg.Driver), func(value string) error {
		switch driver := config.DatabaseDriver(value); driver {
		case config.DriverSQLite, config.DriverPostgres:
			cfg.Driver = driver
			return nil
		}
		return fmt.Errorf("unsupported driver %q", value)
	})
	fs.StringVar(&cfg.Path, "db", cfg.Path, "Path to the SQLite database file")
}
