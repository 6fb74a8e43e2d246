package handler

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/service"
	"github.com/pesio-ai/be-crm-cli/internal/validation"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

func (h *Handler) loginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := h.field(cmd, "email", "Email", validation.Email)
			if err != nil {
				return err
			}
			password, err := h.secretField(cmd, "password", "Password", validation.NonEmpty)
			if err != nil {
				return err
			}

			resp, err := h.svc.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s), session valid until %s\n",
				resp.User.Name, resp.User.Role, resp.ExpiresAt.Local().Format(validation.DateTimeLayout))
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (prompted without echo when omitted)")
	return cmd
}

func (h *Handler) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			existed, err := h.svc.Auth.Logout(cmd.Context())
			if err != nil {
				return err
			}
			if existed {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Already logged out")
			}
			return nil
		},
	}
}

func (h *Handler) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: h.protect(anyRole, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, role %s)\n", actor.Name, actor.UserID, actor.Role)
			return nil
		}),
	}
}

func (h *Handler) bootstrapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the built-in roles and the first gestion account",
		Long: "Create the built-in roles and the first gestion account. " +
			"Only allowed while the database holds no user.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := h.field(cmd, "name", "Name", validation.Name)
			if err != nil {
				return err
			}
			email, err := h.field(cmd, "email", "Email", validation.Email)
			if err != nil {
				return err
			}
			password, err := h.secretField(cmd, "password", "Password", validation.Password)
			if err != nil {
				return err
			}

			res, err := h.svc.Users.Bootstrap(cmd.Context(), &service.BootstrapRequest{
				Name:     name,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %d role(s) and gestion user %s (%s)\n",
				res.RolesAdded, res.User.Name, res.User.EmployeeNumber)
			return nil
		},
	}
	cmd.Flags().String("name", "", "administrator name")
	cmd.Flags().String("email", "", "administrator email")
	cmd.Flags().String("password", "", "administrator password")
	return cmd
}

func (h *Handler) listAuthEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-auth-events",
		Short: "Show recent logins and logouts",
		Args:  cobra.NoArgs,
		RunE: h.protect(gestionOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				return apperrors.InvalidInput("--limit must be positive")
			}

			events, err := h.svc.Auth.RecentAuthEvents(cmd.Context(), limit)
			if err != nil {
				return err
			}
			writeAuthEvents(cmd.OutOrStdout(), events)
			return nil
		}),
	}
	cmd.Flags().Int("limit", 20, "number of entries to show")
	return cmd
}
