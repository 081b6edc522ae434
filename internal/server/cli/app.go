package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/credstore/internal/cryptox"
	"github.com/dmitrijs2005/credstore/internal/dbx"
	"github.com/dmitrijs2005/credstore/internal/logging"
	"github.com/dmitrijs2005/credstore/internal/server/config"
	"github.com/dmitrijs2005/credstore/internal/server/models"
	"github.com/dmitrijs2005/credstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credstore/internal/server/services"
)

// UserService is the part of services.UserStore the commands use.
type UserService interface {
	GetByUsername(ctx context.Context, username string) (*models.UserRecord, error)
	Authenticate(ctx context.Context, username, password string) (bool, error)
	Insert(ctx context.Context, username string, displayName *string, email, password string) error
	Edit(ctx context.Context, username string, patch models.UserPatch) error
	Delete(ctx context.Context, username string) error
}

type App struct {
	config  *config.Config
	store   UserService
	migrate func(ctx context.Context) error
	close   func() error
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp validates cfg, opens the database pool and wires the store.
// The caller must Close the returned App.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, cfg.Connection())
	if err != nil {
		return nil, err
	}

	rm, err := repomanager.NewRepositoryManager(cfg.DatabaseDriver)
	if err != nil {
		db.Close()
		return nil, err
	}

	hasher, err := cryptox.NewPasswordHasher()
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:  cfg,
		store:   services.NewUserStore(db, rm, hasher, logger),
		migrate: migrator(db, rm),
		close:   db.Close,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func migrator(db *sql.DB, rm repomanager.RepositoryManager) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return rm.RunMigrations(ctx, db)
	}
}

// Run executes the command named by args[0] with the remaining arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd, rest := splitCommand(args)

	switch cmd {
	case "migrate":
		return a.runMigrate(ctx)
	case "add":
		return a.add(ctx, rest)
	case "auth":
		return a.auth(ctx, rest)
	case "show":
		return a.show(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "", "help":
		a.usage()
		if cmd == "" {
			return ErrUsage
		}
		return nil
	default:
		a.usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "usage: credstore <migrate|add|auth|show|edit|delete> [flags]")
}

func (a *App) runMigrate(ctx context.Context) error {
	if err := a.migrate(ctx); err != nil {
		return err
	}
	a.logger.Info(ctx, "migrations applied", "driver", a.config.DatabaseDriver)
	fmt.Fprintln(a.out, "Migrations applied")
	return nil
}
