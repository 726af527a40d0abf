package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	auditsvc "github.com/Paul-Starodub/fast-library/internal/audit"
	"github.com/Paul-Starodub/fast-library/internal/config"
	"github.com/Paul-Starodub/fast-library/internal/database"
	"github.com/Paul-Starodub/fast-library/internal/database/audit"
)

// CleanupAuditCommand deletes old audit events in the foreground, bypassing
// the task queue.
type CleanupAuditCommand struct {
	Config        *config.Config
	RetentionDays int
}

func NewCleanupAuditCommand(cfg *config.Config) *CleanupAuditCommand {
	return &CleanupAuditCommand{Config: cfg, RetentionDays: cfg.Audit.RetentionDays}
}

func (cmd *CleanupAuditCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("cleanup-audit", flag.ContinueOnError)

	fs.IntVar(&cmd.RetentionDays, "days", cmd.RetentionDays, "Keep events newer than this many days")
	applyDatabaseFlags(fs, &cmd.Config.Database)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s cleanup-audit [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete audit events older than the retention period.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.RetentionDays < 1 {
		return fmt.Errorf("days must be at least 1, got %d", cmd.RetentionDays)
	}
	return nil
}

func (cmd *CleanupAuditCommand) Run() error {
	db, err := database.NewSilentDatabase(cmd.Config.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	service := auditsvc.NewService(audit.NewRepository(db.DB))
	deleted, err := service.DeleteOldEvents(context.Background(), time.Duration(cmd.RetentionDays)*24*time.Hour)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d audit events older than %d days\n", deleted, cmd.RetentionDays)
	return nil
}
