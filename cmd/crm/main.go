package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pesio-ai/be-crm-cli/internal/config"
	"github.com/pesio-ai/be-crm-cli/internal/database"
	"github.com/pesio-ai/be-crm-cli/internal/handler"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	"github.com/pesio-ai/be-crm-cli/internal/repository"
	"github.com/pesio-ai/be-crm-cli/internal/service"
	"github.com/pesio-ai/be-crm-cli/internal/session"
	jwtpkg "github.com/pesio-ai/be-crm-cli/pkg/jwt"
	"github.com/pesio-ai/be-crm-cli/pkg/password"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	// Load configuration
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "crm",
	})

	// Initialize database connection
	log.Debug().Str("database", cfg.Database.URL).Msg("Connecting to database")
	db, err := database.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.Migrate(); err != nil {
		return err
	}
	log.Debug().Str("dialect", string(db.Dialect())).Msg("Database ready")

	// Initialize JWT manager and password hasher
	tokens, err := jwtpkg.NewManager(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.Lifetime(),
		jwtpkg.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		return fmt.Errorf("invalid token configuration: %w", err)
	}
	hasher := password.NewHasher(cfg.Password)
	sessions := session.NewFileStore(cfg.Session.TokenFile)

	// Initialize services
	store := repository.NewStore(db, log.With("component", "store"))
	authService := service.NewAuthService(store, hasher, tokens, sessions, log.With("component", "auth"))

	// Initialize handler
	cli := handler.NewHandler(handler.Services{
		Auth:      authService,
		Guard:     service.NewGuard(authService, log.With("component", "guard")),
		Users:     service.NewUserService(store, hasher, log.With("component", "users")),
		Roles:     service.NewRoleService(store, log.With("component", "roles")),
		Clients:   service.NewClientService(store, log.With("component", "clients")),
		Contracts: service.NewContractService(store, log.With("component", "contracts")),
		Events:    service.NewEventService(store, log.With("component", "events")),
	}, handler.NewPrompter(os.Stdin, os.Stdout), log.With("component", "cli"))

	root := cli.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
