package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-for-jwt-signing"

func TestNewManager(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		algorithm string
		lifetime  time.Duration
		wantErr   error
	}{
		{name: "default algorithm", secret: testSecret, algorithm: "", lifetime: time.Hour},
		{name: "HS384", secret: testSecret, algorithm: "HS384", lifetime: time.Hour},
		{name: "HS512", secret: testSecret, algorithm: "HS512", lifetime: time.Hour},
		{name: "empty secret", secret: "", algorithm: "HS256", lifetime: time.Hour, wantErr: ErrEmptySecret},
		{name: "RSA rejected", secret: testSecret, algorithm: "RS256", lifetime: time.Hour, wantErr: ErrUnsupportedMethod},
		{name: "unknown algorithm", secret: testSecret, algorithm: "none", lifetime: time.Hour, wantErr: ErrUnsupportedMethod},
		{name: "zero lifetime", secret: testSecret, algorithm: "HS256", lifetime: 0, wantErr: ErrNonPositiveTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager(tt.secret, tt.algorithm, tt.lifetime)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewManager() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && m == nil {
				t.Error("NewManager() returned nil manager")
			}
		})
	}
}

func TestIssueAndValidate(t *testing.T) {
	manager := setupTestManager(t, time.Now)

	token, err := manager.Issue(7, "Alice Martin", "commercial")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token.Value == "" {
		t.Fatal("Issue() returned empty token")
	}

	claims, err := manager.ValidateToken(token.Value)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if claims.Subject != "7" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "7")
	}
	if claims.Name != "Alice Martin" {
		t.Errorf("Name = %q, want %q", claims.Name, "Alice Martin")
	}
	if claims.Role != "commercial" {
		t.Errorf("Role = %q, want commercial", claims.Role)
	}
	if claims.Department != "commercial" {
		t.Errorf("Department = %q, want commercial", claims.Department)
	}
	if claims.ID == "" {
		t.Error("Claims.ID (JTI) is empty")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Error("IssuedAt and ExpiresAt must be set")
	}

	id, err := claims.UserID()
	if err != nil || id != 7 {
		t.Errorf("UserID() = %d, %v, want 7, nil", id, err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	manager := setupTestManager(t, clock)

	token, err := manager.Issue(1, "Bob", "support")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Still valid one second before the lifetime elapses.
	now = now.Add(manager.Lifetime() - time.Second)
	if _, err := manager.ValidateToken(token.Value); err != nil {
		t.Fatalf("ValidateToken() before expiry error = %v", err)
	}

	now = now.Add(2 * time.Second)
	if _, err := manager.ValidateToken(token.Value); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ValidateToken() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := setupTestManager(t, time.Now)
	token, err := issuer.Issue(1, "Bob", "support")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other, err := NewManager("another-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if _, err := other.ValidateToken(token.Value); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidSignature", err)
	}
}

func TestValidateIssuer(t *testing.T) {
	crm, err := NewManager("test-secret-key", "HS256", time.Hour, WithIssuer("crm-paris"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	token, err := crm.Issue(1, "Bob", "support")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := crm.ValidateToken(token.Value)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Issuer != "crm-paris" {
		t.Errorf("Issuer = %q, want crm-paris", claims.Issuer)
	}

	other, err := NewManager("test-secret-key", "HS256", time.Hour, WithIssuer("crm-lyon"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if _, err := other.ValidateToken(token.Value); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken() with another issuer error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTamperedPayload(t *testing.T) {
	manager := setupTestManager(t, time.Now)
	token, err := manager.Issue(1, "Bob", "support")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	forged, err := manager.Issue(1, "Bob", "gestion")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Splice the gestion payload onto the support signature.
	parts := strings.Split(token.Value, ".")
	forgedParts := strings.Split(forged.Value, ".")
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

	if _, err := manager.ValidateToken(spliced); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidSignature", err)
	}
}

func TestValidateMalformedToken(t *testing.T) {
	manager := setupTestManager(t, time.Now)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "not.a.valid.token"},
		{name: "random string", token: "random-string-not-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.ValidateToken(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokensUniqueness(t *testing.T) {
	manager := setupTestManager(t, time.Now)

	token1, _ := manager.Issue(1, "Bob", "support")
	token2, _ := manager.Issue(1, "Bob", "support")

	// Tokens should be different due to unique JTI (JWT ID)
	if token1.Value == token2.Value {
		t.Error("Issued identical tokens (should be unique)")
	}
}

func BenchmarkIssue(b *testing.B) {
	manager, _ := NewManager(testSecret, "HS256", time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = manager.Issue(1, "Bench", "gestion")
	}
}

// Helper function to set up test manager
func setupTestManager(t *testing.T, clock func() time.Time) *Manager {
	t.Helper()

	manager, err := NewManager(testSecret, "HS256", 60*time.Minute, WithClock(clock))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	return manager
}
