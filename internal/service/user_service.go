package service

import (
	"context"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	"github.com/pesio-ai/be-crm-cli/internal/repository"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
	"github.com/pesio-ai/be-crm-cli/pkg/password"
)

type UserService struct {
	store  *repository.Store
	hasher *password.Hasher
	log    *logger.Logger
}

func NewUserService(store *repository.Store, hasher *password.Hasher, log *logger.Logger) *UserService {
	return &UserService{
		store:  store,
		hasher: hasher,
		log:    log,
	}
}

type CreateUserRequest struct {
	EmployeeNumber string // generated when empty
	Name           string
	Email          string
	Password       string
	Role           domain.Role
}

// CreateUser creates a new user
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*repository.User, error) {
	s.log.Info().
		Str("email", req.Email).
		Str("role", string(req.Role)).
		Msg("Creating user")

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to hash password")
	}

	user := &repository.User{
		EmployeeNumber: req.EmployeeNumber,
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   passwordHash,
	}

	err = s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		return createUser(ctx, r, user, req.Role)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create user")
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("employee_number", user.EmployeeNumber).Msg("User created successfully")
	return user, nil
}

func createUser(ctx context.Context, r *repository.Repositories, user *repository.User, roleName domain.Role) error {
	role, err := r.Roles.GetByName(ctx, roleName)
	if err != nil {
		return err
	}
	user.RoleID = role.ID
	user.Role = role.Name

	if user.EmployeeNumber == "" {
		user.EmployeeNumber, err = r.Users.NextEmployeeNumber(ctx)
		if err != nil {
			return err
		}
	}

	return r.Users.Create(ctx, user)
}

// UpdateUserRequest carries the fields to change. Nil fields keep their value.
type UpdateUserRequest struct {
	ID       int64
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
}

// UpdateUser updates user information. A rename refreshes the cached contact
// names on the user's clients, contracts and events.
func (s *UserService) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*repository.User, error) {
	s.log.Info().Int64("user_id", req.ID).Msg("Updating user")

	var newHash string
	if req.Password != nil {
		var err error
		newHash, err = s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to hash password")
		}
	}

	var user *repository.User
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		user, err = r.Users.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		renamed := req.Name != nil && *req.Name != user.Name
		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if newHash != "" {
			user.PasswordHash = newHash
		}
		if req.Role != nil {
			role, err := r.Roles.GetByName(ctx, *req.Role)
			if err != nil {
				return err
			}
			user.RoleID = role.ID
			user.Role = role.Name
		}

		if err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		if renamed {
			return r.Users.RefreshContactNames(ctx, user.ID, user.Name)
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to update user")
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("User updated successfully")
	return user, nil
}

// DeleteUser removes a user. Users that still own clients or contracts cannot
// be deleted; events assigned to the user become unassigned.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (*repository.User, error) {
	s.log.Info().Int64("user_id", id).Msg("Deleting user")

	var user *repository.User
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		user, err = r.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}

		clients, contracts, err := r.Users.CountOwned(ctx, id)
		if err != nil {
			return err
		}
		if clients > 0 || contracts > 0 {
			return apperrors.InvalidInput("user %d still owns %d client(s) and %d contract(s), reassign them first",
				id, clients, contracts)
		}

		unassigned, err := r.Events.UnassignSupport(ctx, id)
		if err != nil {
			return err
		}
		if unassigned > 0 {
			s.log.Info().Int64("user_id", id).Int64("events", unassigned).Msg("Events unassigned")
		}

		return r.Users.Delete(ctx, id)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to delete user")
		return nil, err
	}

	s.log.Info().Int64("user_id", id).Msg("User deleted successfully")
	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id int64) (*repository.User, error) {
	var user *repository.User
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		user, err = r.Users.GetByID(ctx, id)
		return err
	})
	return user, err
}

// ListUsers lists users, optionally restricted to one role
func (s *UserService) ListUsers(ctx context.Context, role domain.Role) ([]*repository.User, error) {
	var users []*repository.User
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		users, err = r.Users.List(ctx, role)
		return err
	})
	return users, err
}

type BootstrapRequest struct {
	Name     string
	Email    string
	Password string
}

type BootstrapResult struct {
	RolesAdded int
	User       *repository.User
}

// Bootstrap creates the built-in roles and the first gestion account. It is
// refused once any user exists.
func (s *UserService) Bootstrap(ctx context.Context, req *BootstrapRequest) (*BootstrapResult, error) {
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to hash password")
	}

	result := &BootstrapResult{}
	err = s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		n, err := r.Users.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.Forbidden("already bootstrapped, log in as a gestion user instead")
		}

		result.RolesAdded, err = r.Roles.EnsureBuiltin(ctx)
		if err != nil {
			return err
		}

		result.User = &repository.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: passwordHash,
		}
		return createUser(ctx, r, result.User, domain.RoleGestion)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Bootstrap failed")
		return nil, err
	}

	s.log.Info().
		Int("roles_added", result.RolesAdded).
		Int64("user_id", result.User.ID).
		Msg("Bootstrap complete")
	return result, nil
}
