package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Violation classifies a constraint failure reported by either backend.
type Violation int

const (
	NoViolation Violation = iota
	UniqueViolation
	ForeignKeyViolation
	CheckViolation
)

// PostgreSQL SQLSTATE codes, class 23 (integrity constraint violation).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// ClassifyError reports which constraint, if any, err violated.
func ClassifyError(err error) Violation {
	if err == nil {
		return NoViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return UniqueViolation
		case pgForeignKeyViolation:
			return ForeignKeyViolation
		case pgCheckViolation:
			return CheckViolation
		}
		return NoViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return UniqueViolation
		case sqlite3.ErrConstraintForeignKey:
			return ForeignKeyViolation
		case sqlite3.ErrConstraintCheck:
			return CheckViolation
		}
	}
	return NoViolation
}
