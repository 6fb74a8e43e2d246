package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

const contractColumns = `
	ct.id, ct.unique_id, ct.client_id, c.name, ct.sales_contact_id, ct.sales_contact,
	ct.amount_total, ct.amount_remaining, ct.status, ct.created_at, ct.last_updated`

const contractFrom = ` FROM contracts ct JOIN clients c ON c.id = ct.client_id`

// ContractFilter narrows a contract listing. Zero values match everything.
type ContractFilter struct {
	SalesContactID int64
	// UnsignedOrUnpaid keeps contracts with status != signed OR amount_remaining > 0.
	UnsignedOrUnpaid bool
}

// ContractRepository handles contract data operations
type ContractRepository struct {
	q   querier
	now func() time.Time
}

func scanContract(row interface{ Scan(...any) error }, ct *Contract) error {
	return row.Scan(
		&ct.ID,
		&ct.UniqueID,
		&ct.ClientID,
		&ct.ClientName,
		&ct.SalesContactID,
		&ct.SalesContact,
		&ct.AmountTotal,
		&ct.AmountRemaining,
		&ct.Status,
		&ct.CreatedAt,
		&ct.LastUpdated,
	)
}

// Create creates a new contract with a fresh unique_id
func (r *ContractRepository) Create(ctx context.Context, ct *Contract) error {
	now := r.now()
	ct.UniqueID = uuid.New().String()
	query := `
		INSERT INTO contracts (
			unique_id, client_id, sales_contact_id, sales_contact,
			amount_total, amount_remaining, status, created_at, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := r.q.queryRow(ctx, query,
		ct.UniqueID,
		ct.ClientID,
		ct.SalesContactID,
		ct.SalesContact,
		ct.AmountTotal,
		ct.AmountRemaining,
		string(ct.Status),
		now,
		now,
	).Scan(&ct.ID)
	if err != nil {
		return mapWriteError(err, "contract", "unique id", "create")
	}

	ct.CreatedAt = now
	ct.LastUpdated = now
	return nil
}

// GetByID retrieves a contract by ID
func (r *ContractRepository) GetByID(ctx context.Context, id int64) (*Contract, error) {
	ct := &Contract{}
	err := scanContract(r.q.queryRow(ctx, `SELECT `+contractColumns+contractFrom+` WHERE ct.id = ?`, id), ct)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("contract", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to get contract")
	}
	return ct, nil
}

// Update updates a contract's amounts and status
func (r *ContractRepository) Update(ctx context.Context, ct *Contract) error {
	now := r.now()
	query := `
		UPDATE contracts
		SET amount_total = ?, amount_remaining = ?, status = ?, last_updated = ?
		WHERE id = ?
	`

	res, err := r.q.exec(ctx, query, ct.AmountTotal, ct.AmountRemaining, string(ct.Status), now, ct.ID)
	if err != nil {
		return mapWriteError(err, "contract", "unique id", "update")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("contract", ct.ID)
	}

	ct.LastUpdated = now
	return nil
}

// List retrieves contracts ordered by ID
func (r *ContractRepository) List(ctx context.Context, filter ContractFilter) ([]*Contract, error) {
	query := `SELECT ` + contractColumns + contractFrom + ` WHERE 1 = 1`
	args := []any{}
	if filter.SalesContactID != 0 {
		query += ` AND ct.sales_contact_id = ?`
		args = append(args, filter.SalesContactID)
	}
	if filter.UnsignedOrUnpaid {
		query += ` AND (ct.status <> ? OR ct.amount_remaining > 0)`
		args = append(args, string(domain.StatusSigned))
	}
	query += ` ORDER BY ct.id`

	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list contracts")
	}
	defer rows.Close()

	contracts := make([]*Contract, 0)
	for rows.Next() {
		ct := &Contract{}
		if err := scanContract(rows, ct); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to scan contract")
		}
		contracts = append(contracts, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list contracts")
	}

	return contracts, nil
}
