package service

import (
	"context"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	"github.com/pesio-ai/be-crm-cli/internal/repository"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

type RoleService struct {
	store *repository.Store
	log   *logger.Logger
}

func NewRoleService(store *repository.Store, log *logger.Logger) *RoleService {
	return &RoleService{
		store: store,
		log:   log,
	}
}

// CreateRole registers a new role name. Built-in names already exist and
// fail with DuplicateKey like any other taken name.
func (s *RoleService) CreateRole(ctx context.Context, name string) (*repository.Role, error) {
	if !domain.IsValidRoleName(name) {
		return nil, apperrors.InvalidInput("invalid role name %q (lowercase letters, digits, '-' or '_', 2 to 32 characters)", name)
	}

	s.log.Info().Str("role", name).Msg("Creating role")

	role := &repository.Role{Name: domain.Role(name)}
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		return r.Roles.Create(ctx, role)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create role")
		return nil, err
	}

	s.log.Info().Int64("role_id", role.ID).Msg("Role created successfully")
	return role, nil
}

// ListRoles lists every role
func (s *RoleService) ListRoles(ctx context.Context) ([]*repository.Role, error) {
	var roles []*repository.Role
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		roles, err = r.Roles.List(ctx)
		return err
	})
	return roles, err
}
