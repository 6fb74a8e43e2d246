package domain

import (
	"math"
	"strings"
	"time"

	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	StatusNew       ContractStatus = "new"
	StatusPending   ContractStatus = "pending"
	StatusSigned    ContractStatus = "signed"
	StatusCancelled ContractStatus = "cancelled"
)

// ContractStatuses is the closed set of accepted statuses.
var ContractStatuses = []ContractStatus{StatusNew, StatusPending, StatusSigned, StatusCancelled}

// ParseContractStatus accepts a status name case-insensitively.
func ParseContractStatus(s string) (ContractStatus, error) {
	candidate := ContractStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range ContractStatuses {
		if candidate == status {
			return status, nil
		}
	}
	return "", apperrors.InvalidInput("invalid contract status %q (expected one of new, pending, signed, cancelled)", s)
}

// ClientRef is what the rules need to know about a client.
type ClientRef struct {
	ID             int64
	SalesContactID int64
}

// ContractRef is what the rules need to know about a contract.
type ContractRef struct {
	ID              int64
	SalesContactID  int64
	Status          ContractStatus
	AmountRemaining float64
}

// EventRef is what the rules need to know about an event.
type EventRef struct {
	ID               int64
	SupportContactID *int64
}

// CanMutateClient allows only the owning commercial.
func CanMutateClient(actor Identity, client ClientRef) error {
	if actor.Is(RoleCommercial) && client.SalesContactID == actor.UserID {
		return nil
	}
	return apperrors.Forbidden("client %d is not managed by %s", client.ID, actor.Name)
}

// CanSeeContract allows gestion on every contract and a commercial on their own.
func CanSeeContract(actor Identity, contract ContractRef) bool {
	switch actor.Role {
	case RoleGestion:
		return true
	case RoleCommercial:
		return contract.SalesContactID == actor.UserID
	default:
		return false
	}
}

// CanMutateContract applies the same ownership rule as CanSeeContract.
func CanMutateContract(actor Identity, contract ContractRef) error {
	if CanSeeContract(actor, contract) {
		return nil
	}
	return apperrors.Forbidden("contract %d cannot be modified by %s (%s)", contract.ID, actor.Name, actor.Role)
}

// CanCreateEvent requires a commercial owning a signed contract.
func CanCreateEvent(actor Identity, contract ContractRef) error {
	if !actor.Is(RoleCommercial) || contract.SalesContactID != actor.UserID {
		return apperrors.Forbidden("contract %d is not managed by %s", contract.ID, actor.Name)
	}
	if contract.Status != StatusSigned {
		return apperrors.Forbidden("contract %d is %s, events can only be created for signed contracts", contract.ID, contract.Status)
	}
	return nil
}

// CanMutateEvent allows gestion on every event and support on the events assigned to them.
func CanMutateEvent(actor Identity, event EventRef) error {
	switch actor.Role {
	case RoleGestion:
		return nil
	case RoleSupport:
		if event.SupportContactID != nil && *event.SupportContactID == actor.UserID {
			return nil
		}
	}
	return apperrors.Forbidden("event %d cannot be modified by %s (%s)", event.ID, actor.Name, actor.Role)
}

// CanAssignSupport restricts support (re)assignment to gestion.
func CanAssignSupport(actor Identity) error {
	if actor.Is(RoleGestion) {
		return nil
	}
	return apperrors.Forbidden("only gestion can assign support contacts")
}

// ValidateSupportAssignee checks that the chosen support contact holds the support role.
// A nil role means no assignment, which is always valid.
func ValidateSupportAssignee(role *Role) error {
	if role == nil || *role == RoleSupport {
		return nil
	}
	return apperrors.InvalidInput("support contact must have the support role, got %q", *role)
}

// ValidateEventWindow requires end >= start.
func ValidateEventWindow(start, end time.Time) error {
	if end.Before(start) {
		return apperrors.InvalidInput("event end %s is before start %s",
			end.Format(time.DateTime), start.Format(time.DateTime))
	}
	return nil
}

// ValidateAmounts requires finite, non-negative amounts with remaining <= total.
func ValidateAmounts(total, remaining float64) error {
	if !isFinite(total) || !isFinite(remaining) {
		return apperrors.InvalidInput("amounts must be finite numbers")
	}
	if total < 0 {
		return apperrors.InvalidInput("total amount must not be negative")
	}
	if remaining < 0 {
		return apperrors.InvalidInput("remaining amount must not be negative")
	}
	if remaining > total {
		return apperrors.InvalidInput("remaining amount %.2f exceeds total amount %.2f", remaining, total)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NeedsFollowUp reports whether a contract is not fully closed out:
// it is not signed, or it is signed but not fully paid.
func NeedsFollowUp(contract ContractRef) bool {
	return contract.Status != StatusSigned || contract.AmountRemaining > 0
}
