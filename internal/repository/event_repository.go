package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

const eventColumns = `
	id, contract_id, client_name, client_contact, event_date_start, event_date_end,
	support_contact_id, support_contact, location, attendees, notes, created_at, last_updated`

// EventFilter narrows an event listing. Zero values match everything.
type EventFilter struct {
	SupportContactID int64
	Unassigned       bool
}

// EventRepository handles event data operations
type EventRepository struct {
	q   querier
	now func() time.Time
}

func scanEvent(row interface{ Scan(...any) error }, e *Event) error {
	return row.Scan(
		&e.ID,
		&e.ContractID,
		&e.ClientName,
		&e.ClientContact,
		&e.EventDateStart,
		&e.EventDateEnd,
		&e.SupportContactID,
		&e.SupportContact,
		&e.Location,
		&e.Attendees,
		&e.Notes,
		&e.CreatedAt,
		&e.LastUpdated,
	)
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, e *Event) error {
	now := r.now()
	query := `
		INSERT INTO events (
			contract_id, client_name, client_contact, event_date_start, event_date_end,
			support_contact_id, support_contact, location, attendees, notes, created_at, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := r.q.queryRow(ctx, query,
		e.ContractID,
		e.ClientName,
		e.ClientContact,
		e.EventDateStart,
		e.EventDateEnd,
		e.SupportContactID,
		e.SupportContact,
		e.Location,
		e.Attendees,
		e.Notes,
		now,
		now,
	).Scan(&e.ID)
	if err != nil {
		return mapWriteError(err, "event", "id", "create")
	}

	e.CreatedAt = now
	e.LastUpdated = now
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*Event, error) {
	e := &Event{}
	err := scanEvent(r.q.queryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id), e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("event", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to get event")
	}
	return e, nil
}

// Update writes every mutable field of the event
func (r *EventRepository) Update(ctx context.Context, e *Event) error {
	now := r.now()
	query := `
		UPDATE events
		SET event_date_start = ?, event_date_end = ?, support_contact_id = ?, support_contact = ?,
		    location = ?, attendees = ?, notes = ?, last_updated = ?
		WHERE id = ?
	`

	res, err := r.q.exec(ctx, query,
		e.EventDateStart,
		e.EventDateEnd,
		e.SupportContactID,
		e.SupportContact,
		e.Location,
		e.Attendees,
		e.Notes,
		now,
		e.ID,
	)
	if err != nil {
		return mapWriteError(err, "event", "id", "update")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("event", e.ID)
	}

	e.LastUpdated = now
	return nil
}

// List retrieves events ordered by start date
func (r *EventRepository) List(ctx context.Context, filter EventFilter) ([]*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1 = 1`
	args := []any{}
	if filter.SupportContactID != 0 {
		query += ` AND support_contact_id = ?`
		args = append(args, filter.SupportContactID)
	}
	if filter.Unassigned {
		query += ` AND support_contact_id IS NULL`
	}
	query += ` ORDER BY event_date_start, id`

	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list events")
	}
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		e := &Event{}
		if err := scanEvent(rows, e); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to scan event")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list events")
	}

	return events, nil
}

// UnassignSupport clears the support contact of every event assigned to the user
func (r *EventRepository) UnassignSupport(ctx context.Context, userID int64) (int64, error) {
	res, err := r.q.exec(ctx,
		`UPDATE events SET support_contact_id = NULL, support_contact = NULL WHERE support_contact_id = ?`,
		userID,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to unassign events")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
