package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

// EmployeeNumberPrefix starts every generated employee number.
const EmployeeNumberPrefix = "EMP"

const userColumns = `
	u.id, u.employee_number, u.name, u.email, u.password_hash,
	u.role_id, r.name, u.created_at, u.last_updated`

// UserRepository handles user data operations
type UserRepository struct {
	q   querier
	now func() time.Time
}

func scanUser(row interface{ Scan(...any) error }, user *User) error {
	return row.Scan(
		&user.ID,
		&user.EmployeeNumber,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.RoleID,
		&user.Role,
		&user.CreatedAt,
		&user.LastUpdated,
	)
}

// Create creates a new user. RoleID must reference an existing role.
func (r *UserRepository) Create(ctx context.Context, user *User) error {
	now := r.now()
	query := `
		INSERT INTO users (employee_number, name, email, password_hash, role_id, created_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := r.q.queryRow(ctx, query,
		user.EmployeeNumber,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.RoleID,
		now,
		now,
	).Scan(&user.ID)
	if err != nil {
		return mapWriteError(err, "user", "email or employee number", "create")
	}

	user.CreatedAt = now
	user.LastUpdated = now
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id = ?`

	user := &User{}
	err := scanUser(r.q.queryRow(ctx, query, id), user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to get user")
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id WHERE u.email = ?`

	user := &User{}
	err := scanUser(r.q.queryRow(ctx, query, email), user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user", email)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to get user by email")
	}

	return user, nil
}

// Update updates a user's name, email, password hash and role
func (r *UserRepository) Update(ctx context.Context, user *User) error {
	now := r.now()
	query := `
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, role_id = ?, last_updated = ?
		WHERE id = ?
	`

	res, err := r.q.exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.RoleID,
		now,
		user.ID,
	)
	if err != nil {
		return mapWriteError(err, "user", "email", "update")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("user", user.ID)
	}

	user.LastUpdated = now
	return nil
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapWriteError(err, "user", "id", "delete")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("user", id)
	}

	return nil
}

// List retrieves users ordered by employee number, optionally filtered by role
func (r *UserRepository) List(ctx context.Context, role domain.Role) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id`
	args := []any{}
	if role != "" {
		query += ` WHERE r.name = ?`
		args = append(args, string(role))
	}
	query += ` ORDER BY u.employee_number`

	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list users")
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user := &User{}
		if err := scanUser(rows, user); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list users")
	}

	return users, nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.queryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to count users")
	}
	return n, nil
}

// CountOwned returns how many clients and contracts the user owns
func (r *UserRepository) CountOwned(ctx context.Context, id int64) (clients, contracts int64, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM clients WHERE sales_contact_id = ?),
			(SELECT COUNT(*) FROM contracts WHERE sales_contact_id = ?)
	`
	if err := r.q.queryRow(ctx, query, id, id).Scan(&clients, &contracts); err != nil {
		return 0, 0, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to count owned records")
	}
	return clients, contracts, nil
}

// NextEmployeeNumber returns the number following the highest EMPnnn in use
func (r *UserRepository) NextEmployeeNumber(ctx context.Context) (string, error) {
	rows, err := r.q.query(ctx, `SELECT employee_number FROM users WHERE employee_number LIKE ?`, EmployeeNumberPrefix+"%")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to read employee numbers")
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to scan employee number")
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to read employee numbers")
	}

	return NextEmployeeNumber(numbers), nil
}

// NextEmployeeNumber computes EMP + (max numeric suffix + 1) padded to three
// digits. Values that are not EMP followed by digits only are ignored.
func NextEmployeeNumber(existing []string) string {
	var highest uint64
	for _, number := range existing {
		suffix, ok := strings.CutPrefix(number, EmployeeNumberPrefix)
		if !ok || suffix == "" {
			continue
		}
		n, err := strconv.ParseUint(suffix, 10, 64)
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return fmt.Sprintf("%s%03d", EmployeeNumberPrefix, highest+1)
}

// RefreshContactNames rewrites the cached display name of the user on every
// client, contract and event that references them.
func (r *UserRepository) RefreshContactNames(ctx context.Context, id int64, name string) error {
	statements := []string{
		`UPDATE clients SET sales_contact = ? WHERE sales_contact_id = ?`,
		`UPDATE contracts SET sales_contact = ? WHERE sales_contact_id = ?`,
		`UPDATE events SET support_contact = ? WHERE support_contact_id = ?`,
	}
	for _, stmt := range statements {
		if _, err := r.q.exec(ctx, stmt, name, id); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to refresh contact names")
		}
	}
	return nil
}
