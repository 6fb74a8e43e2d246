package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	"github.com/pesio-ai/be-crm-cli/internal/service"
	"github.com/pesio-ai/be-crm-cli/internal/validation"
)

// Role sets the commands are registered against. A nil set admits any
// authenticated user.
var (
	anyRole          []domain.Role
	gestionOnly      = []domain.Role{domain.RoleGestion}
	commercialOnly   = []domain.Role{domain.RoleCommercial}
	supportOnly      = []domain.Role{domain.RoleSupport}
	contractManagers = []domain.Role{domain.RoleGestion, domain.RoleCommercial}
	eventManagers    = []domain.Role{domain.RoleGestion, domain.RoleSupport}
)

// Services groups what the command handlers call into.
type Services struct {
	Auth      *service.AuthService
	Guard     *service.Guard
	Users     *service.UserService
	Roles     *service.RoleService
	Clients   *service.ClientService
	Contracts *service.ContractService
	Events    *service.EventService
}

// Handler maps CLI commands onto the services
type Handler struct {
	svc    Services
	prompt *Prompter
	log    *logger.Logger
}

// NewHandler creates a new CLI handler
func NewHandler(svc Services, prompt *Prompter, log *logger.Logger) *Handler {
	return &Handler{
		svc:    svc,
		prompt: prompt,
		log:    log,
	}
}

// RootCommand builds the full command tree.
func (h *Handler) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "crm",
		Short:         "Role-gated CRM for clients, contracts and events",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		h.loginCommand(),
		h.logoutCommand(),
		h.whoamiCommand(),
		h.bootstrapCommand(),
		h.listAuthEventsCommand(),

		h.addRoleCommand(),
		h.listRolesCommand(),
		h.addUserCommand(),
		h.updateUserCommand(),
		h.deleteUserCommand(),
		h.listUsersCommand(),

		h.addClientCommand(),
		h.updateClientCommand(),
		h.addContractCommand(),
		h.updateContractCommand(),
		h.listContractsUnsignedUnpaidCommand(),
		h.addEventCommand(),
		h.updateEventCommand(),
		h.listEventsNoSupportCommand(),
		h.listEventsSupportCommand(),
		h.listAllCommand(),
	)
	return root
}

type guardedRun func(cmd *cobra.Command, args []string, actor domain.Identity) error

// protect runs fn behind the guard. Nothing is prompted or written before
// both checks pass.
func (h *Handler) protect(roles []domain.Role, fn guardedRun) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return h.svc.Guard.Run(cmd.Context(), roles, func(ctx context.Context, actor domain.Identity) error {
			cmd.SetContext(ctx)
			return fn(cmd, args, actor)
		})
	}
}

// field returns the flag value, validated once, or asks until a valid value
// is given when the flag is absent.
func (h *Handler) field(cmd *cobra.Command, flag, label string, v validation.Validator) (string, error) {
	if cmd.Flags().Changed(flag) {
		value, _ := cmd.Flags().GetString(flag)
		if err := v(value); err != nil {
			return "", fmt.Errorf("--%s: %w", flag, err)
		}
		return value, nil
	}
	return h.prompt.Ask(label, v)
}

// secretField is field for passwords.
func (h *Handler) secretField(cmd *cobra.Command, flag, label string, v validation.Validator) (string, error) {
	if cmd.Flags().Changed(flag) {
		return h.field(cmd, flag, label, v)
	}
	return h.prompt.Secret(label, v)
}

// optionalField returns nil when the value is left unchanged. Prompts are
// only shown when interactive is set; a blank answer keeps the value.
func (h *Handler) optionalField(cmd *cobra.Command, flag, label string, v validation.Validator, interactive bool) (*string, error) {
	if cmd.Flags().Changed(flag) {
		value, err := h.field(cmd, flag, label, v)
		if err != nil {
			return nil, err
		}
		return &value, nil
	}
	if !interactive {
		return nil, nil
	}

	value, err := h.prompt.Ask(label+" (blank to keep)", validation.Optional(v))
	if err != nil || value == "" {
		return nil, err
	}
	return &value, nil
}

// idArg reads a record id from the first positional argument or asks for it.
func (h *Handler) idArg(args []string, label string) (int64, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
		if err := validation.Number(raw); err != nil {
			return 0, err
		}
	} else {
		var err error
		if raw, err = h.prompt.Ask(label, validation.Number); err != nil {
			return 0, err
		}
	}
	return validation.ParseID(raw)
}

// noneChanged reports whether none of the given flags was set, in which case
// update commands fall back to prompting for every field.
func noneChanged(cmd *cobra.Command, flags ...string) bool {
	for _, f := range flags {
		if cmd.Flags().Changed(f) {
			return false
		}
	}
	return true
}

func parseOptional[T any](raw *string, parse func(string) (T, error)) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := parse(*raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
