package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pesio-ai/be-crm-cli/internal/database"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querier runs ? placeholder queries against a DBTX in the backend's dialect.
type querier struct {
	db      DBTX
	dialect database.Dialect
}

func (q querier) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, database.Rebind(q.dialect, query), args...)
}

func (q querier) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, database.Rebind(q.dialect, query), args...)
}

func (q querier) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, database.Rebind(q.dialect, query), args...)
}

// Repositories groups the repositories bound to one unit of work.
type Repositories struct {
	Roles     *RoleRepository
	Users     *UserRepository
	Clients   *ClientRepository
	Contracts *ContractRepository
	Events    *EventRepository
	Audit     *AuditRepository
}

// Store opens units of work against the database.
type Store struct {
	db  *database.DB
	log *logger.Logger
	now func() time.Time
}

// NewStore creates a store.
func NewStore(db *database.DB, log *logger.Logger) *Store {
	return &Store{db: db, log: log, now: time.Now}
}

// SetClock replaces the clock used to stamp created_at/last_updated.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) repositories(db DBTX) *Repositories {
	q := querier{db: db, dialect: s.db.Dialect()}
	return &Repositories{
		Roles:     &RoleRepository{q: q},
		Users:     &UserRepository{q: q, now: s.now},
		Clients:   &ClientRepository{q: q, now: s.now},
		Contracts: &ContractRepository{q: q, now: s.now},
		Events:    &EventRepository{q: q, now: s.now},
		Audit:     &AuditRepository{q: q, now: s.now},
	}
}

// UnitOfWork runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise; fn's error is returned unchanged so
// callers can still match it.
func (s *Store) UnitOfWork(ctx context.Context, fn func(r *Repositories) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(s.repositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error().Err(rbErr).Msg("Failed to roll back transaction")
		}
		s.log.Debug().Err(err).Msg("Transaction rolled back")
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to commit transaction")
	}
	return nil
}

// mapWriteError converts constraint violations into coded errors.
func mapWriteError(err error, resource, uniqueField, action string) error {
	switch database.ClassifyError(err) {
	case database.UniqueViolation:
		return apperrors.Duplicate(resource, uniqueField)
	case database.ForeignKeyViolation:
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, fmt.Sprintf("%s references a missing record", resource))
	case database.CheckViolation:
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, fmt.Sprintf("%s violates a data constraint", resource))
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, fmt.Sprintf("failed to %s %s", action, resource))
}
