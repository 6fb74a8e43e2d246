package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

// RoleRepository handles role data operations
type RoleRepository struct {
	q querier
}

// Create creates a new role
func (r *RoleRepository) Create(ctx context.Context, role *Role) error {
	query := `INSERT INTO roles (name) VALUES (?) RETURNING id`

	err := r.q.queryRow(ctx, query, string(role.Name)).Scan(&role.ID)
	if err != nil {
		return mapWriteError(err, "role", "name", "create")
	}

	return nil
}

// GetByName retrieves a role by its exact name
func (r *RoleRepository) GetByName(ctx context.Context, name domain.Role) (*Role, error) {
	role := &Role{}

	query := `SELECT id, name FROM roles WHERE name = ?`

	err := r.q.queryRow(ctx, query, string(name)).Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("role", name)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to get role")
	}

	return role, nil
}

// List retrieves all roles ordered by name
func (r *RoleRepository) List(ctx context.Context) ([]*Role, error) {
	rows, err := r.q.query(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list roles")
	}
	defer rows.Close()

	roles := make([]*Role, 0)
	for rows.Next() {
		role := &Role{}
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to scan role")
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list roles")
	}

	return roles, nil
}

// EnsureBuiltin creates any missing built-in role and reports how many were added
func (r *RoleRepository) EnsureBuiltin(ctx context.Context) (int, error) {
	added := 0
	for _, name := range domain.BuiltinRoles {
		_, err := r.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return added, err
		}
		if err := r.Create(ctx, &Role{Name: name}); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
