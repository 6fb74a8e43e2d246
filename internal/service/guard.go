package service

import (
	"context"
	"slices"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

// Operation is a protected command body. It receives the identity resolved by
// the guard and must not look the session up again.
type Operation func(ctx context.Context, actor domain.Identity) error

// Guard runs operations behind the authentication and role checks.
type Guard struct {
	auth *AuthService
	log  *logger.Logger
}

func NewGuard(auth *AuthService, log *logger.Logger) *Guard {
	return &Guard{auth: auth, log: log}
}

// Run authenticates the current session, then checks the role against roles,
// and only then calls op. An empty role set admits any authenticated user.
func (g *Guard) Run(ctx context.Context, roles []domain.Role, op Operation) error {
	actor, err := g.Authenticate(ctx)
	if err != nil {
		return err
	}

	if err := Authorize(actor, roles); err != nil {
		g.log.Warn().
			Int64("user_id", actor.UserID).
			Str("role", string(actor.Role)).
			Msg("Access denied")
		return err
	}

	return op(ctx, actor)
}

// Authenticate resolves the identity of the current session.
func (g *Guard) Authenticate(ctx context.Context) (domain.Identity, error) {
	actor, _, err := g.auth.CurrentIdentity(ctx)
	if err != nil {
		g.log.Debug().Err(err).Msg("Authentication failed")
		return domain.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "authentication required")
	}
	return actor, nil
}

// Authorize checks exact membership of the actor's role in roles.
func Authorize(actor domain.Identity, roles []domain.Role) error {
	if len(roles) == 0 || slices.Contains(roles, actor.Role) {
		return nil
	}
	return apperrors.Forbidden("access denied for role %s", actor.Role)
}
