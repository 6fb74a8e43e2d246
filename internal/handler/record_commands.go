package handler

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/service"
	"github.com/pesio-ai/be-crm-cli/internal/validation"
)

func acceptAny(string) error { return nil }

func (h *Handler) addClientCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-client",
		Short: "Create a client managed by you",
		Args:  cobra.NoArgs,
		RunE: h.protect(commercialOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			req := &service.CreateClientRequest{}
			var err error
			if req.Name, err = h.field(cmd, "name", "Name", validation.Name); err != nil {
				return err
			}
			if req.Email, err = h.field(cmd, "email", "Email", validation.Email); err != nil {
				return err
			}
			if req.Phone, err = h.field(cmd, "phone", "Phone", validation.Phone); err != nil {
				return err
			}
			if req.Company, err = h.field(cmd, "company", "Company", validation.Company); err != nil {
				return err
			}

			client, err := h.svc.Clients.CreateClient(cmd.Context(), actor, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Client %s created (id %d)\n", client.Name, client.ID)
			return nil
		}),
	}
	cmd.Flags().String("name", "", "client full name")
	cmd.Flags().String("email", "", "client email")
	cmd.Flags().String("phone", "", "client phone")
	cmd.Flags().String("company", "", "client company")
	return cmd
}

func (h *Handler) updateClientCommand() *cobra.Command {
	flags := []string{"name", "email", "phone", "company"}
	cmd := &cobra.Command{
		Use:   "update-client [id]",
		Short: "Update one of your clients",
		Args:  cobra.MaximumNArgs(1),
		RunE: h.protect(commercialOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			id, err := h.idArg(args, "Client id")
			if err != nil {
				return err
			}
			interactive := noneChanged(cmd, flags...)

			req := &service.UpdateClientRequest{ID: id}
			if req.Name, err = h.optionalField(cmd, "name", "Name", validation.Name, interactive); err != nil {
				return err
			}
			if req.Email, err = h.optionalField(cmd, "email", "Email", validation.Email, interactive); err != nil {
				return err
			}
			if req.Phone, err = h.optionalField(cmd, "phone", "Phone", validation.Phone, interactive); err != nil {
				return err
			}
			if req.Company, err = h.optionalField(cmd, "company", "Company", validation.Company, interactive); err != nil {
				return err
			}

			client, err := h.svc.Clients.UpdateClient(cmd.Context(), actor, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Client %d updated\n", client.ID)
			return nil
		}),
	}
	cmd.Flags().String("name", "", "new full name")
	cmd.Flags().String("email", "", "new email")
	cmd.Flags().String("phone", "", "new phone")
	cmd.Flags().String("company", "", "new company")
	return cmd
}

func (h *Handler) addContractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-contract",
		Short: "Create a contract for a client",
		Args:  cobra.NoArgs,
		RunE: h.protect(gestionOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			clientID, err := h.field(cmd, "client-id", "Client id", validation.Number)
			if err != nil {
				return err
			}
			total, err := h.field(cmd, "total", "Total amount", validation.Amount)
			if err != nil {
				return err
			}
			remaining, err := h.field(cmd, "remaining", "Remaining amount", validation.Amount)
			if err != nil {
				return err
			}
			status, err := h.field(cmd, "status", "Status (new, pending, signed, cancelled)", validation.Status)
			if err != nil {
				return err
			}

			req := &service.CreateContractRequest{Status: status}
			if req.ClientID, err = validation.ParseID(clientID); err != nil {
				return err
			}
			if req.AmountTotal, err = validation.ParseAmount(total); err != nil {
				return err
			}
			if req.AmountRemaining, err = validation.ParseAmount(remaining); err != nil {
				return err
			}

			contract, err := h.svc.Contracts.CreateContract(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Contract %d created (%s) for %s\n",
				contract.ID, contract.UniqueID, contract.ClientName)
			return nil
		}),
	}
	cmd.Flags().String("client-id", "", "client id")
	cmd.Flags().String("total", "", "total amount")
	cmd.Flags().String("remaining", "", "amount remaining to be paid")
	cmd.Flags().String("status", "", "new, pending, signed or cancelled")
	return cmd
}

func (h *Handler) updateContractCommand() *cobra.Command {
	flags := []string{"total", "remaining", "status"}
	cmd := &cobra.Command{
		Use:   "update-contract [id]",
		Short: "Update a contract",
		Args:  cobra.MaximumNArgs(1),
		RunE: h.protect(contractManagers, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			id, err := h.idArg(args, "Contract id")
			if err != nil {
				return err
			}
			interactive := noneChanged(cmd, flags...)

			req := &service.UpdateContractRequest{ID: id}
			total, err := h.optionalField(cmd, "total", "Total amount", validation.Amount, interactive)
			if err != nil {
				return err
			}
			remaining, err := h.optionalField(cmd, "remaining", "Remaining amount", validation.Amount, interactive)
			if err != nil {
				return err
			}
			if req.Status, err = h.optionalField(cmd, "status", "Status (new, pending, signed, cancelled)", validation.Status, interactive); err != nil {
				return err
			}
			if req.AmountTotal, err = parseOptional(total, validation.ParseAmount); err != nil {
				return err
			}
			if req.AmountRemaining, err = parseOptional(remaining, validation.ParseAmount); err != nil {
				return err
			}

			contract, err := h.svc.Contracts.UpdateContract(cmd.Context(), actor, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Contract %d updated (status %s, remaining %s)\n",
				contract.ID, contract.Status, formatAmount(contract.AmountRemaining))
			return nil
		}),
	}
	cmd.Flags().String("total", "", "new total amount")
	cmd.Flags().String("remaining", "", "new remaining amount")
	cmd.Flags().String("status", "", "new status")
	return cmd
}

func (h *Handler) listContractsUnsignedUnpaidCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-contracts-unsigned-unpaid",
		Short: "List your contracts that are not signed or not fully paid",
		Args:  cobra.NoArgs,
		RunE: h.protect(commercialOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			contracts, err := h.svc.Contracts.ListUnsignedOrUnpaid(cmd.Context(), actor)
			if err != nil {
				return err
			}
			writeContracts(cmd.OutOrStdout(), contracts)
			return nil
		}),
	}
}

func (h *Handler) addEventCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-event",
		Short: "Create an event for one of your signed contracts",
		Long: "Create an event for one of your signed contracts. The support contact is optional " +
			"and is only asked for when the contract id is prompted too.",
		Args:  cobra.NoArgs,
		RunE: h.protect(commercialOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			interactive := !cmd.Flags().Changed("contract-id")
			contractID, err := h.field(cmd, "contract-id", "Contract id", validation.Number)
			if err != nil {
				return err
			}
			start, err := h.field(cmd, "start", "Start (YYYY-MM-DD HH:MM)", validation.DateTime)
			if err != nil {
				return err
			}
			end, err := h.field(cmd, "end", "End (YYYY-MM-DD HH:MM)", validation.DateTime)
			if err != nil {
				return err
			}
			location, err := h.field(cmd, "location", "Location", validation.NonEmpty)
			if err != nil {
				return err
			}
			attendees, err := h.field(cmd, "attendees", "Attendees", validation.Number)
			if err != nil {
				return err
			}
			notes, err := h.field(cmd, "notes", "Notes", acceptAny)
			if err != nil {
				return err
			}
			support, err := h.optionalField(cmd, "support-id", "Support contact id", validation.Number, interactive)
			if err != nil {
				return err
			}

			req := &service.CreateEventRequest{Location: location, Notes: notes}
			if req.SupportContactID, err = parseOptional(support, parseSupportID); err != nil {
				return err
			}
			if req.ContractID, err = validation.ParseID(contractID); err != nil {
				return err
			}
			if req.Start, err = validation.ParseDateTime(start); err != nil {
				return err
			}
			if req.End, err = validation.ParseDateTime(end); err != nil {
				return err
			}
			if req.Attendees, err = validation.ParseCount(attendees); err != nil {
				return err
			}

			event, err := h.svc.Events.CreateEvent(cmd.Context(), actor, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Event %d created for %s\n", event.ID, event.ClientName)
			return nil
		}),
	}
	cmd.Flags().String("contract-id", "", "signed contract id")
	cmd.Flags().String("start", "", "start date, YYYY-MM-DD HH:MM")
	cmd.Flags().String("end", "", "end date, YYYY-MM-DD HH:MM")
	cmd.Flags().String("location", "", "location")
	cmd.Flags().String("attendees", "", "expected attendees")
	cmd.Flags().String("notes", "", "notes")
	cmd.Flags().String("support-id", "", "support user id, blank or 0 for none")
	return cmd
}

func (h *Handler) updateEventCommand() *cobra.Command {
	flags := []string{"start", "end", "location", "attendees", "notes", "support-id"}
	cmd := &cobra.Command{
		Use:   "update-event [id]",
		Short: "Update an event",
		Long:  "Update an event. Only gestion can change the support contact; --support-id 0 removes it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: h.protect(eventManagers, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			id, err := h.idArg(args, "Event id")
			if err != nil {
				return err
			}
			interactive := noneChanged(cmd, flags...)

			start, err := h.optionalField(cmd, "start", "Start (YYYY-MM-DD HH:MM)", validation.DateTime, interactive)
			if err != nil {
				return err
			}
			end, err := h.optionalField(cmd, "end", "End (YYYY-MM-DD HH:MM)", validation.DateTime, interactive)
			if err != nil {
				return err
			}
			attendees, err := h.optionalField(cmd, "attendees", "Attendees", validation.Number, interactive)
			if err != nil {
				return err
			}
			req := &service.UpdateEventRequest{ID: id}
			if req.Location, err = h.optionalField(cmd, "location", "Location", validation.NonEmpty, interactive); err != nil {
				return err
			}
			if req.Notes, err = h.optionalField(cmd, "notes", "Notes", acceptAny, interactive); err != nil {
				return err
			}
			support, err := h.optionalField(cmd, "support-id", "Support user id, 0 to unassign", validation.Number,
				interactive && actor.Is(domain.RoleGestion))
			if err != nil {
				return err
			}

			if req.Start, err = parseOptional(start, validation.ParseDateTime); err != nil {
				return err
			}
			if req.End, err = parseOptional(end, validation.ParseDateTime); err != nil {
				return err
			}
			if req.Attendees, err = parseOptional(attendees, validation.ParseCount); err != nil {
				return err
			}
			if req.SupportContactID, err = parseOptional(support, parseSupportID); err != nil {
				return err
			}

			event, err := h.svc.Events.UpdateEvent(cmd.Context(), actor, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Event %d updated\n", event.ID)
			return nil
		}),
	}
	cmd.Flags().String("start", "", "new start date, YYYY-MM-DD HH:MM")
	cmd.Flags().String("end", "", "new end date, YYYY-MM-DD HH:MM")
	cmd.Flags().String("location", "", "new location")
	cmd.Flags().String("attendees", "", "new attendee count")
	cmd.Flags().String("notes", "", "new notes")
	cmd.Flags().String("support-id", "", "support user id, 0 to unassign")
	return cmd
}

// parseSupportID accepts 0, meaning unassigned, or a user id.
func parseSupportID(s string) (int64, error) {
	if s == "0" {
		return 0, nil
	}
	return validation.ParseID(s)
}

func (h *Handler) listEventsNoSupportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-events-no-support",
		Short: "List events without a support contact",
		Args:  cobra.NoArgs,
		RunE: h.protect(gestionOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			events, err := h.svc.Events.ListWithoutSupport(cmd.Context())
			if err != nil {
				return err
			}
			writeEvents(cmd.OutOrStdout(), events)
			return nil
		}),
	}
}

func (h *Handler) listEventsSupportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-events-support",
		Short: "List the events assigned to you",
		Args:  cobra.NoArgs,
		RunE: h.protect(supportOnly, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			events, err := h.svc.Events.ListForSupport(cmd.Context(), actor)
			if err != nil {
				return err
			}
			writeEvents(cmd.OutOrStdout(), events)
			return nil
		}),
	}
}

func (h *Handler) listAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-all",
		Short: "List clients, contracts and events",
		Args:  cobra.NoArgs,
		RunE: h.protect(anyRole, func(cmd *cobra.Command, args []string, actor domain.Identity) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			clients, err := h.svc.Clients.ListClients(ctx)
			if err != nil {
				return err
			}
			contracts, err := h.svc.Contracts.ListContracts(ctx, actor)
			if err != nil {
				return err
			}
			events, err := h.svc.Events.ListEvents(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "== Clients ==")
			writeClients(out, clients)
			fmt.Fprintln(out, "\n== Contracts ==")
			writeContracts(out, contracts)
			fmt.Fprintln(out, "\n== Events ==")
			writeEvents(out, events)
			return nil
		}),
	}
}
