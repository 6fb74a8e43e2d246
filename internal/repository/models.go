package repository

import (
	"time"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
)

// Role represents a permission level users can be granted
type Role struct {
	ID   int64
	Name domain.Role
}

// User represents a CRM employee
type User struct {
	ID             int64
	EmployeeNumber string
	Name           string
	Email          string
	PasswordHash   string
	RoleID         int64
	Role           domain.Role
	CreatedAt      time.Time
	LastUpdated    time.Time
}

// Identity returns the actor view of the user.
func (u *User) Identity() domain.Identity {
	return domain.Identity{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// Client represents a customer owned by one commercial
type Client struct {
	ID             int64
	Name           string
	Email          string
	Phone          string
	Company        string
	SalesContactID int64
	SalesContact   string
	CreatedAt      time.Time
	LastUpdated    time.Time
}

// Ref returns the fields the ownership rules need.
func (c *Client) Ref() domain.ClientRef {
	return domain.ClientRef{ID: c.ID, SalesContactID: c.SalesContactID}
}

// Contact returns the "phone | email" snapshot copied onto events.
func (c *Client) Contact() string {
	return c.Phone + " | " + c.Email
}

// Contract represents an agreement with a client
type Contract struct {
	ID              int64
	UniqueID        string
	ClientID        int64
	ClientName      string
	SalesContactID  int64
	SalesContact    string
	AmountTotal     float64
	AmountRemaining float64
	Status          domain.ContractStatus
	CreatedAt       time.Time
	LastUpdated     time.Time
}

// Ref returns the fields the ownership and status rules need.
func (c *Contract) Ref() domain.ContractRef {
	return domain.ContractRef{
		ID:              c.ID,
		SalesContactID:  c.SalesContactID,
		Status:          c.Status,
		AmountRemaining: c.AmountRemaining,
	}
}

// Event represents an event organised for a signed contract
type Event struct {
	ID               int64
	ContractID       int64
	ClientName       string
	ClientContact    string
	EventDateStart   time.Time
	EventDateEnd     time.Time
	SupportContactID *int64 // NULL when unassigned
	SupportContact   *string
	Location         string
	Attendees        int
	Notes            string
	CreatedAt        time.Time
	LastUpdated      time.Time
}

// Ref returns the fields the assignment rules need.
func (e *Event) Ref() domain.EventRef {
	return domain.EventRef{ID: e.ID, SupportContactID: e.SupportContactID}
}

// AuthEvent represents one entry of the authentication audit log
type AuthEvent struct {
	ID            int64
	UserID        *int64
	Email         string
	EventType     string
	Success       bool
	FailureReason *string
	CreatedAt     time.Time
}
