package handler

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pesio-ai/be-crm-cli/internal/repository"
	"github.com/pesio-ai/be-crm-cli/internal/validation"
)

func newTable(out io.Writer, header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	return tw
}

func formatTime(t time.Time) string {
	return t.Local().Format(validation.DateTimeLayout)
}

func writeRoles(out io.Writer, roles []*repository.Role) {
	tw := newTable(out, "ID\tNAME")
	for _, r := range roles {
		fmt.Fprintf(tw, "%d\t%s\n", r.ID, r.Name)
	}
	tw.Flush()
}

func writeUsers(out io.Writer, users []*repository.User) {
	if len(users) == 0 {
		fmt.Fprintln(out, "No users")
		return
	}
	tw := newTable(out, "ID\tNUMBER\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.EmployeeNumber, u.Name, u.Email, u.Role)
	}
	tw.Flush()
}

func writeClients(out io.Writer, clients []*repository.Client) {
	if len(clients) == 0 {
		fmt.Fprintln(out, "No clients")
		return
	}
	tw := newTable(out, "ID\tNAME\tEMAIL\tPHONE\tCOMPANY\tSALES CONTACT\tUPDATED")
	for _, c := range clients {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Email, c.Phone, c.Company, c.SalesContact, formatTime(c.LastUpdated))
	}
	tw.Flush()
}

func writeContracts(out io.Writer, contracts []*repository.Contract) {
	if len(contracts) == 0 {
		fmt.Fprintln(out, "No contracts")
		return
	}
	tw := newTable(out, "ID\tUNIQUE ID\tCLIENT\tSALES CONTACT\tTOTAL\tREMAINING\tSTATUS")
	for _, ct := range contracts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			ct.ID, ct.UniqueID, ct.ClientName, ct.SalesContact,
			formatAmount(ct.AmountTotal), formatAmount(ct.AmountRemaining), ct.Status)
	}
	tw.Flush()
}

func writeEvents(out io.Writer, events []*repository.Event) {
	if len(events) == 0 {
		fmt.Fprintln(out, "No events")
		return
	}
	tw := newTable(out, "ID\tCONTRACT\tCLIENT\tCONTACT\tSTART\tEND\tSUPPORT\tLOCATION\tATTENDEES\tNOTES")
	for _, e := range events {
		support := "-"
		if e.SupportContact != nil {
			support = *e.SupportContact
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			e.ID, e.ContractID, e.ClientName, e.ClientContact,
			formatTime(e.EventDateStart), formatTime(e.EventDateEnd),
			support, e.Location, e.Attendees, e.Notes)
	}
	tw.Flush()
}

func writeAuthEvents(out io.Writer, events []*repository.AuthEvent) {
	if len(events) == 0 {
		fmt.Fprintln(out, "No authentication events")
		return
	}
	tw := newTable(out, "WHEN\tEVENT\tEMAIL\tUSER\tRESULT")
	for _, e := range events {
		user := "-"
		if e.UserID != nil {
			user = strconv.FormatInt(*e.UserID, 10)
		}
		result := "ok"
		if !e.Success {
			result = "failed"
			if e.FailureReason != nil {
				result += " (" + *e.FailureReason + ")"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", formatTime(e.CreatedAt), e.EventType, e.Email, user, result)
	}
	tw.Flush()
}
