package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrUnsupportedMethod  = errors.New("unsupported signing method")
	ErrEmptySecret        = errors.New("signing secret is empty")
	ErrNonPositiveTimeout = errors.New("token lifetime must be positive")
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "HS256"

// DefaultIssuer is the iss claim used unless WithIssuer overrides it.
const DefaultIssuer = "epic-crm"

// Claims represents the JWT claims of a CRM session.
// Subject carries the user ID; Department mirrors Role for older readers.
type Claims struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, c.Subject)
	}
	return id, nil
}

// Token is a signed session token and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Manager handles JWT token operations
type Manager struct {
	secret   []byte
	method   *jwt.SigningMethodHMAC
	lifetime time.Duration
	issuer   string
	now      func() time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock replaces the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIssuer sets the iss claim written on issue and required on validation.
func WithIssuer(issuer string) Option {
	return func(m *Manager) { m.issuer = issuer }
}

// NewManager creates a new JWT manager signing with an HMAC algorithm
// (HS256, HS384 or HS512).
func NewManager(secret, algorithm string, lifetime time.Duration, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if lifetime <= 0 {
		return nil, ErrNonPositiveTimeout
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, algorithm)
	}

	m := &Manager{
		secret:   []byte(secret),
		method:   method,
		lifetime: lifetime,
		issuer:   DefaultIssuer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Lifetime returns the configured token lifetime.
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

// Issue signs a session token for the given user.
func (m *Manager) Issue(userID int64, name, role string) (*Token, error) {
	now := m.now()
	expiresAt := now.Add(m.lifetime)

	claims := &Claims{
		Name:       name,
		Role:       role,
		Department: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken validates a JWT token and returns the claims.
// It returns ErrTokenExpired, ErrInvalidSignature or ErrInvalidToken.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.Role == "" {
		return nil, fmt.Errorf("%w: missing role", ErrInvalidToken)
	}

	return claims, nil
}
