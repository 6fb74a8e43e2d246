package handler

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/service"
	"github.com/pesio-ai/be-crm-cli/internal/validation"
)

func (h *Handler) addRoleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-role",
		Short: "Register a new role",
		Args:  cobra.NoArgs,
		RunE: h.protect(gestionOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			name, err := h.field(cmd, "name", "Role name", validation.RoleName)
			if err != nil {
				return err
			}

			role, err := h.svc.Roles.CreateRole(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Role %s created (id %d)\n", role.Name, role.ID)
			return nil
		}),
	}
	cmd.Flags().String("name", "", "role name")
	return cmd
}

func (h *Handler) listRolesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-roles",
		Short: "List roles",
		Args:  cobra.NoArgs,
		RunE: h.protect(anyRole, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			roles, err := h.svc.Roles.ListRoles(cmd.Context())
			if err != nil {
				return err
			}
			writeRoles(cmd.OutOrStdout(), roles)
			return nil
		}),
	}
}

func (h *Handler) addUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: h.protect(gestionOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
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
			role, err := h.field(cmd, "role", "Role", validation.RoleName)
			if err != nil {
				return err
			}
			number, _ := cmd.Flags().GetString("employee-number")

			user, err := h.svc.Users.CreateUser(cmd.Context(), &service.CreateUserRequest{
				EmployeeNumber: number,
				Name:           name,
				Email:          email,
				Password:       password,
				Role:           domain.Role(role),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s created (id %d, %s, role %s)\n",
				user.Name, user.ID, user.EmployeeNumber, user.Role)
			return nil
		}),
	}
	cmd.Flags().String("name", "", "full name")
	cmd.Flags().String("email", "", "email")
	cmd.Flags().String("password", "", "password, at least 8 characters")
	cmd.Flags().String("role", "", "role name")
	cmd.Flags().String("employee-number", "", "employee number (next EMPnnn when omitted)")
	return cmd
}

func (h *Handler) updateUserCommand() *cobra.Command {
	flags := []string{"name", "email", "password", "role"}
	cmd := &cobra.Command{
		Use:   "update-user [id]",
		Short: "Update a user",
		Args:  cobra.MaximumNArgs(1),
		RunE: h.protect(gestionOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			id, err := h.idArg(args, "User id")
			if err != nil {
				return err
			}
			interactive := noneChanged(cmd, flags...)

			req := &service.UpdateUserRequest{ID: id}
			if req.Name, err = h.optionalField(cmd, "name", "Name", validation.Name, interactive); err != nil {
				return err
			}
			if req.Email, err = h.optionalField(cmd, "email", "Email", validation.Email, interactive); err != nil {
				return err
			}
			if req.Password, err = h.optionalField(cmd, "password", "Password", validation.Password, interactive); err != nil {
				return err
			}
			role, err := h.optionalField(cmd, "role", "Role", validation.RoleName, interactive)
			if err != nil {
				return err
			}
			if role != nil {
				r := domain.Role(*role)
				req.Role = &r
			}

			user, err := h.svc.Users.UpdateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d updated\n", user.ID)
			return nil
		}),
	}
	cmd.Flags().String("name", "", "new full name")
	cmd.Flags().String("email", "", "new email")
	cmd.Flags().String("password", "", "new password")
	cmd.Flags().String("role", "", "new role name")
	return cmd
}

func (h *Handler) deleteUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-user [id]",
		Short: "Delete a user after confirmation",
		Args:  cobra.MaximumNArgs(1),
		RunE: h.protect(gestionOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			id, err := h.idArg(args, "User id")
			if err != nil {
				return err
			}

			user, err := h.svc.Users.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := h.prompt.Confirm(fmt.Sprintf("Delete user %s (%s)?", user.Name, user.Email))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
					return nil
				}
			}

			if _, err := h.svc.Users.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s deleted\n", user.Name)
			return nil
		}),
	}
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (h *Handler) listUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: h.protect(gestionOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			role, _ := cmd.Flags().GetString("role")
			users, err := h.svc.Users.ListUsers(cmd.Context(), domain.Role(role))
			if err != nil {
				return err
			}
			writeUsers(cmd.OutOrStdout(), users)
			return nil
		}),
	}
	cmd.Flags().String("role", "", "only list users with this role")
	return cmd
}
