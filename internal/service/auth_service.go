package service

import (
	"context"
	"errors"
	"time"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	"github.com/pesio-ai/be-crm-cli/internal/repository"
	"github.com/pesio-ai/be-crm-cli/internal/session"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
	jwtpkg "github.com/pesio-ai/be-crm-cli/pkg/jwt"
	"github.com/pesio-ai/be-crm-cli/pkg/password"
)

// AuthService verifies credentials and manages the local session token.
type AuthService struct {
	store    *repository.Store
	hasher   *password.Hasher
	tokens   *jwtpkg.Manager
	sessions *session.FileStore
	log      *logger.Logger
}

func NewAuthService(
	store *repository.Store,
	hasher *password.Hasher,
	tokens *jwtpkg.Manager,
	sessions *session.FileStore,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		log:      log,
	}
}

type LoginResponse struct {
	User      *repository.User
	ExpiresAt time.Time
}

// Verify checks an email/password pair against the credential store.
// It fails with NotFound for an unknown email and InvalidCredentials on a
// password mismatch.
func (s *AuthService) Verify(ctx context.Context, r *repository.Repositories, email, rawPassword string) (*repository.User, error) {
	user, err := r.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	err = s.hasher.Verify(rawPassword, user.PasswordHash)
	if errors.Is(err, password.ErrMismatch) {
		return user, apperrors.New(apperrors.ErrCodeInvalidCredentials, "incorrect password")
	}
	if err != nil {
		return user, apperrors.Wrap(err, apperrors.ErrCodeInternal, "password verification error")
	}

	return user, nil
}

// Login verifies the credentials, issues a token and stores it as the
// current session, replacing any previous one.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*LoginResponse, error) {
	s.log.Info().Str("email", email).Msg("Login attempt")

	var user *repository.User
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		user, err = s.Verify(ctx, r, email, rawPassword)
		return err
	})
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("Login failed")
		s.recordAuthEvent(ctx, userIDOf(user), email, repository.AuthEventLogin, err)
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Name, string(user.Role))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to issue token")
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "token generation failed")
	}

	if err := s.sessions.Save(token.Value); err != nil {
		s.log.Error().Err(err).Msg("Failed to store session")
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to store session")
	}

	s.recordAuthEvent(ctx, &user.ID, email, repository.AuthEventLogin, nil)
	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("Login successful")

	return &LoginResponse{User: user, ExpiresAt: token.ExpiresAt}, nil
}

// CurrentIdentity loads and validates the stored token. It fails with
// NoSession, Expired, InvalidSignature or Malformed.
func (s *AuthService) CurrentIdentity(ctx context.Context) (domain.Identity, *jwtpkg.Claims, error) {
	raw, err := s.sessions.Load()
	if err != nil {
		return domain.Identity{}, nil, err
	}

	claims, err := s.tokens.ValidateToken(raw)
	if err != nil {
		return domain.Identity{}, nil, tokenError(err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return domain.Identity{}, nil, apperrors.Wrap(err, apperrors.ErrCodeMalformed, "token subject is not a user id")
	}

	return domain.Identity{UserID: userID, Name: claims.Name, Role: domain.Role(claims.Role)}, claims, nil
}

// Logout removes the stored token. It reports whether a session existed.
func (s *AuthService) Logout(ctx context.Context) (bool, error) {
	identity, _, idErr := s.CurrentIdentity(ctx)

	existed, err := s.sessions.Delete()
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to logout")
	}

	if existed && idErr == nil {
		s.recordAuthEvent(ctx, &identity.UserID, "", repository.AuthEventLogout, nil)
	}
	s.log.Info().Bool("existed", existed).Msg("Logout")
	return existed, nil
}

// RecentAuthEvents returns the latest entries of the authentication audit log.
func (s *AuthService) RecentAuthEvents(ctx context.Context, limit int) ([]*repository.AuthEvent, error) {
	var events []*repository.AuthEvent
	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		var err error
		events, err = r.Audit.ListRecent(ctx, limit)
		return err
	})
	return events, err
}

// recordAuthEvent writes the audit entry in its own unit of work so that a
// failed login is still recorded. Audit failures are logged, never returned.
func (s *AuthService) recordAuthEvent(ctx context.Context, userID *int64, email, eventType string, cause error) {
	reason := ""
	if cause != nil {
		reason = string(apperrors.CodeOf(cause))
	}

	err := s.store.UnitOfWork(ctx, func(r *repository.Repositories) error {
		if userID != nil {
			user, err := r.Users.GetByID(ctx, *userID)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				userID = nil
			case err != nil:
				return err
			case email == "":
				email = user.Email
			}
		}
		return r.Audit.LogAuthEvent(ctx, userID, email, eventType, cause == nil, reason)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record auth event")
	}
}

func userIDOf(user *repository.User) *int64 {
	if user == nil {
		return nil
	}
	return &user.ID
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, jwtpkg.ErrTokenExpired):
		return apperrors.Wrap(err, apperrors.ErrCodeExpired, "session expired, log in again")
	case errors.Is(err, jwtpkg.ErrInvalidSignature):
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidSignature, "session token signature is invalid, log in again")
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeMalformed, "session token is invalid, log in again")
	}
}
