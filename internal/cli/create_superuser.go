package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Paul-Starodub/fast-library/internal/auth"
	"github.com/Paul-Starodub/fast-library/internal/config"
	"github.com/Paul-Starodub/fast-library/internal/database"
	"github.com/Paul-Starodub/fast-library/internal/database/authors"
	"github.com/Paul-Starodub/fast-library/internal/validation"
)

// CreateSuperuserCommand registers an author allowed to read the audit trail.
type CreateSuperuserCommand struct {
	Config *config.Config

	Username string `binding:"required,min=1,max=50"`
	Email    string `binding:"required,email,max=50"`
	Password string `binding:"required,min=8,max=72"`
}

func NewCreateSuperuserCommand(cfg *config.Config) *CreateSuperuserCommand {
	return &CreateSuperuserCommand{Config: cfg}
}

func (cmd *CreateSuperuserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-superuser", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address used to log in (required)")
	fs.StringVar(&cmd.Password, "password", os.Getenv("SUPERUSER_PASSWORD"), "Password, defaults to $SUPERUSER_PASSWORD")
	applyDatabaseFlags(fs, &cmd.Config.Database)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-superuser [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an author with superuser rights.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  SUPERUSER_PASSWORD=s3cret-pass %s create-superuser -username admin -email admin@example.com\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = strings.TrimSpace(cmd.Email)
	if err := validation.New().Validate(cmd); err != nil {
		fs.Usage()
		return err
	}
	return nil
}

func (cmd *CreateSuperuserCommand) Run() error {
	db, err := database.NewSilentDatabase(cmd.Config.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	return cmd.create(context.Background(), authors.NewRepository(db.DB))
}

func (cmd *CreateSuperuserCommand) create(ctx context.Context, repo *authors.Repository) error {
	hash, err := auth.HashPassword(cmd.Password, cmd.Config.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	author, err := repo.Create(ctx, authors.NewAuthor{
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: hash,
		IsSuperuser:  true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created superuser %q (id %d)\n", author.Username, author.ID)
	return nil
}
