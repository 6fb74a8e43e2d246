package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/pesio-ai/be-crm-cli/internal/config"
	"github.com/pesio-ai/be-crm-cli/internal/database"
	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	"github.com/pesio-ai/be-crm-cli/internal/repository"
	"github.com/pesio-ai/be-crm-cli/internal/service"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
	"github.com/pesio-ai/be-crm-cli/pkg/password"
)

type demoUser struct {
	name, email, password string
	role                  domain.Role
}

var demoUsers = []demoUser{
	{"John Doe", "john.doe@epic-events.test", "Commercial123!", domain.RoleCommercial},
	{"Jane Smith", "jane.smith@epic-events.test", "Support123!", domain.RoleSupport},
}

// Bootstrap seeds demo data for development: a gestion account, one
// commercial and one support user, and a client with a signed contract and
// an assigned event.
func main() {
	log := logger.New(logger.Config{Level: "info", ServiceName: "crm-bootstrap"})
	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load .env")
	}
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	log.Info().Str("database", cfg.Database.URL).Msg("Connecting to database")
	db, err := database.Open(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	store := repository.NewStore(db, logger.Nop())
	hasher := password.NewHasher(cfg.Password)
	users := service.NewUserService(store, hasher, logger.Nop())
	clients := service.NewClientService(store, logger.Nop())
	contracts := service.NewContractService(store, logger.Nop())
	events := service.NewEventService(store, logger.Nop())

	// Create the gestion account
	_, err = users.Bootstrap(ctx, &service.BootstrapRequest{
		Name:     "Admin Gestion",
		Email:    "admin@epic-events.test",
		Password: "Admin123!",
	})
	switch {
	case errors.Is(err, apperrors.ErrForbidden):
		log.Info().Msg("Users already exist, skipping the gestion account")
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to bootstrap")
	default:
		log.Info().Str("email", "admin@epic-events.test").Msg("✓ Created gestion user")
	}

	// Create demo users
	created := make(map[domain.Role]*repository.User)
	for _, u := range demoUsers {
		user, err := ensureUser(ctx, users, u)
		if err != nil {
			log.Fatal().Err(err).Str("email", u.email).Msg("Failed to create user")
		}
		created[u.role] = user
		log.Info().Str("email", u.email).Str("role", string(u.role)).Msg("✓ User ready")
	}
	commercial := created[domain.RoleCommercial].Identity()
	support := created[domain.RoleSupport]

	// Create a client, a signed contract and an event
	client, err := clients.CreateClient(ctx, commercial, &service.CreateClientRequest{
		Name:    "Acme Corp",
		Email:   "contact@acme.test",
		Phone:   "123-456-7890",
		Company: "Acme Corporation",
	})
	if errors.Is(err, apperrors.ErrDuplicateKey) {
		log.Info().Msg("Demo client already present, nothing else to do")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create client")
	}
	log.Info().Int64("client_id", client.ID).Msg("✓ Created client")

	contract, err := contracts.CreateContract(ctx, &service.CreateContractRequest{
		ClientID:        client.ID,
		AmountTotal:     10000,
		AmountRemaining: 4000,
		Status:          string(domain.StatusSigned),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create contract")
	}
	log.Info().Str("unique_id", contract.UniqueID).Msg("✓ Created contract")

	start := time.Now().AddDate(0, 0, 30).Truncate(time.Hour)
	event, err := events.CreateEvent(ctx, commercial, &service.CreateEventRequest{
		ContractID:       contract.ID,
		Start:            start,
		End:              start.AddDate(0, 0, 1),
		Location:         "Acme HQ - Paris",
		Attendees:        50,
		Notes:            "Projector and Wi-Fi needed.",
		SupportContactID: &support.ID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create event")
	}
	log.Info().Int64("event_id", event.ID).Str("support", support.Name).Msg("✓ Created event")

	os.Stdout.WriteString(`
=== Bootstrap Complete ===
Test Credentials:
  Gestion:    admin@epic-events.test / Admin123!
  Commercial: john.doe@epic-events.test / Commercial123!
  Support:    jane.smith@epic-events.test / Support123!
`)
}

func ensureUser(ctx context.Context, users *service.UserService, u demoUser) (*repository.User, error) {
	user, err := users.CreateUser(ctx, &service.CreateUserRequest{
		Name:     u.name,
		Email:    u.email,
		Password: u.password,
		Role:     u.role,
	})
	if !errors.Is(err, apperrors.ErrDuplicateKey) {
		return user, err
	}

	existing, err := users.ListUsers(ctx, u.role)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.Email == u.email {
			return e, nil
		}
	}
	return nil, apperrors.Newf(apperrors.ErrCodeDuplicateKey, "%s is taken by a user without the %s role", u.email, u.role)
}
