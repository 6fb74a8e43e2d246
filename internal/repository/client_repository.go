package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

const clientColumns = `
	id, name, email, phone, company, sales_contact_id, sales_contact, created_at, last_updated`

// ClientRepository handles client data operations
type ClientRepository struct {
	q   querier
	now func() time.Time
}

func scanClient(row interface{ Scan(...any) error }, c *Client) error {
	return row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Company,
		&c.SalesContactID,
		&c.SalesContact,
		&c.CreatedAt,
		&c.LastUpdated,
	)
}

// Create creates a new client
func (r *ClientRepository) Create(ctx context.Context, c *Client) error {
	now := r.now()
	query := `
		INSERT INTO clients (name, email, phone, company, sales_contact_id, sales_contact, created_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := r.q.queryRow(ctx, query,
		c.Name, c.Email, c.Phone, c.Company, c.SalesContactID, c.SalesContact, now, now,
	).Scan(&c.ID)
	if err != nil {
		return mapWriteError(err, "client", "email", "create")
	}

	c.CreatedAt = now
	c.LastUpdated = now
	return nil
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*Client, error) {
	c := &Client{}
	err := scanClient(r.q.queryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("client", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to get client")
	}
	return c, nil
}

// Update updates a client's contact details
func (r *ClientRepository) Update(ctx context.Context, c *Client) error {
	now := r.now()
	query := `
		UPDATE clients
		SET name = ?, email = ?, phone = ?, company = ?, last_updated = ?
		WHERE id = ?
	`

	res, err := r.q.exec(ctx, query, c.Name, c.Email, c.Phone, c.Company, now, c.ID)
	if err != nil {
		return mapWriteError(err, "client", "email", "update")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("client", c.ID)
	}

	c.LastUpdated = now
	return nil
}

// List retrieves clients ordered by ID. A non-zero salesContactID restricts
// the list to that commercial's clients.
func (r *ClientRepository) List(ctx context.Context, salesContactID int64) ([]*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	args := []any{}
	if salesContactID != 0 {
		query += ` WHERE sales_contact_id = ?`
		args = append(args, salesContactID)
	}
	query += ` ORDER BY id`

	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list clients")
	}
	defer rows.Close()

	clients := make([]*Client, 0)
	for rows.Next() {
		c := &Client{}
		if err := scanClient(rows, c); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to scan client")
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list clients")
	}

	return clients, nil
}
