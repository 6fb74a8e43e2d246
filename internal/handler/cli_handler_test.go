package handler

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pesio-ai/be-crm-cli/internal/database"
	"github.com/pesio-ai/be-crm-cli/internal/logger"
	"github.com/pesio-ai/be-crm-cli/internal/repository"
	"github.com/pesio-ai/be-crm-cli/internal/service"
	"github.com/pesio-ai/be-crm-cli/internal/session"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
	jwtpkg "github.com/pesio-ai/be-crm-cli/pkg/jwt"
	"github.com/pesio-ai/be-crm-cli/pkg/password"
)

type cliEnv struct {
	svc Services
}

func setupTestEnv(t *testing.T) *cliEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "crm.db"))
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	log := logger.Nop()
	store := repository.NewStore(db, log)
	tokens, err := jwtpkg.NewManager("test-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("jwt.NewManager() error = %v", err)
	}
	hasher := password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1})
	auth := service.NewAuthService(store, hasher, tokens, session.NewFileStore(filepath.Join(t.TempDir(), ".token")), log)

	env := &cliEnv{svc: Services{
		Auth:      auth,
		Guard:     service.NewGuard(auth, log),
		Users:     service.NewUserService(store, hasher, log),
		Roles:     service.NewRoleService(store, log),
		Clients:   service.NewClientService(store, log),
		Contracts: service.NewContractService(store, log),
		Events:    service.NewEventService(store, log),
	}}

	env.mustRun(t, "", "bootstrap", "--name", "Admin", "--email", "admin@crm.test", "--password", "secret-password")
	return env
}

// run executes one command line with input as the interactive answers.
func (e *cliEnv) run(input string, args ...string) (string, error) {
	out := &bytes.Buffer{}
	h := NewHandler(e.svc, NewPrompter(strings.NewReader(input), out), logger.Nop())

	root := h.RootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, input string, args ...string) string {
	t.Helper()
	out, err := e.run(input, args...)
	if err != nil {
		t.Fatalf("%s: error = %v\noutput:\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (e *cliEnv) loginAs(t *testing.T, email string) {
	t.Helper()
	e.mustRun(t, "", "login", "--email", email, "--password", "secret-password")
}

func (e *cliEnv) addUser(t *testing.T, name, email, role string) {
	t.Helper()
	e.loginAs(t, "admin@crm.test")
	e.mustRun(t, "", "add-user", "--name", name, "--email", email, "--password", "secret-password", "--role", role)
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := setupTestEnv(t)

	if _, err := env.run("", "whoami"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("whoami without session error = %v, want Unauthorized", err)
	}

	out := env.mustRun(t, "admin@crm.test\nsecret-password\n", "login")
	if !strings.Contains(out, "Logged in as Admin (gestion)") {
		t.Errorf("login output = %q", out)
	}

	out = env.mustRun(t, "", "whoami")
	if !strings.Contains(out, "Admin (id 1, role gestion)") {
		t.Errorf("whoami output = %q", out)
	}

	if out := env.mustRun(t, "", "logout"); !strings.Contains(out, "Logged out") {
		t.Errorf("logout output = %q", out)
	}
	if out := env.mustRun(t, "", "logout"); !strings.Contains(out, "Already logged out") {
		t.Errorf("second logout output = %q", out)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.run("", "login", "--email", "admin@crm.test", "--password", "wrong-password")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("login error = %v, want InvalidCredentials", err)
	}
}

func TestAddUser_PromptsUntilValid(t *testing.T) {
	env := setupTestEnv(t)
	env.loginAs(t, "admin@crm.test")

	input := strings.Join([]string{
		"Alice 42", // digits in a name
		"Alice",
		"not-an-email",
		"alice@crm.test",
		"short", // under 8 characters
		"secret-password",
		"Commercial", // uppercase
		"commercial",
	}, "\n") + "\n"

	out := env.mustRun(t, input, "add-user")
	if got := strings.Count(out, "Invalid input"); got != 4 {
		t.Errorf("retries = %d, want 4\n%s", got, out)
	}
	if !strings.Contains(out, "User Alice created") || !strings.Contains(out, "EMP002") {
		t.Errorf("add-user output = %q", out)
	}
}

func TestAddUser_InvalidFlagIsRejected(t *testing.T) {
	env := setupTestEnv(t)
	env.loginAs(t, "admin@crm.test")

	out, err := env.run("", "add-user", "--name", "Alice", "--email", "nope", "--password", "secret-password", "--role", "commercial")
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("add-user error = %v, want InvalidInput", err)
	}
	if strings.Contains(out, "Email:") {
		t.Errorf("invalid flag must not fall back to a prompt, output = %q", out)
	}
}

func TestRoleGating(t *testing.T) {
	env := setupTestEnv(t)
	env.addUser(t, "Sam", "sam@crm.test", "support")
	env.addUser(t, "Alice", "alice@crm.test", "commercial")

	tests := []struct {
		name  string
		login string
		args  []string
	}{
		{"support lists users", "sam@crm.test", []string{"list-users"}},
		{"support adds a role", "sam@crm.test", []string{"add-role", "--name", "marketing"}},
		{"commercial adds a contract", "alice@crm.test", []string{"add-contract"}},
		{"gestion adds a client", "admin@crm.test", []string{"add-client"}},
		{"commercial lists support events", "alice@crm.test", []string{"list-events-support"}},
		{"support updates a contract", "sam@crm.test", []string{"update-contract", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.loginAs(t, tt.login)
			// no input: a prompt reached by mistake fails with InvalidInput instead
			out, err := env.run("", tt.args...)
			if !errors.Is(err, apperrors.ErrForbidden) {
				t.Errorf("error = %v, want Forbidden", err)
			}
			if out != "" {
				t.Errorf("rejected command wrote %q", out)
			}
		})
	}

	env.loginAs(t, "admin@crm.test")
	if out := env.mustRun(t, "", "list-roles"); strings.Contains(out, "marketing") {
		t.Errorf("rejected add-role created a role:\n%s", out)
	}
}

func TestDeleteUser_Confirmation(t *testing.T) {
	env := setupTestEnv(t)
	env.addUser(t, "Sam", "sam@crm.test", "support")

	out := env.mustRun(t, "n\n", "delete-user", "2")
	if !strings.Contains(out, "Deletion cancelled") {
		t.Errorf("delete-user output = %q", out)
	}
	if out := env.mustRun(t, "", "list-users"); !strings.Contains(out, "sam@crm.test") {
		t.Fatalf("cancelled deletion removed the user:\n%s", out)
	}

	out = env.mustRun(t, "y\n", "delete-user", "2")
	if !strings.Contains(out, "User Sam deleted") {
		t.Errorf("delete-user output = %q", out)
	}
	if out := env.mustRun(t, "", "list-users"); strings.Contains(out, "sam@crm.test") {
		t.Errorf("user still listed after deletion:\n%s", out)
	}
}

func TestContractAndEventFlow(t *testing.T) {
	env := setupTestEnv(t)
	env.addUser(t, "Alice", "alice@crm.test", "commercial")
	env.addUser(t, "Sam", "sam@crm.test", "support")

	env.loginAs(t, "alice@crm.test")
	env.mustRun(t, "", "add-client", "--name", "Kevin Casey", "--email", "kevin@startup.io",
		"--phone", "0678-123-456", "--company", "Cool Startup LLC")

	env.loginAs(t, "admin@crm.test")
	env.mustRun(t, "", "add-contract", "--client-id", "1", "--total", "5000", "--remaining", "5000", "--status", "pending")

	env.loginAs(t, "alice@crm.test")
	eventArgs := []string{"add-event", "--contract-id", "1", "--start", "2026-06-04 13:00", "--end", "2026-06-05 02:00",
		"--location", "Candé-sur-Beuvron", "--attendees", "75", "--notes", "Wedding"}
	if _, err := env.run("", eventArgs...); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("add-event on a pending contract error = %v, want Forbidden", err)
	}

	if _, err := env.run("", "update-contract", "1", "--status", "archived"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("update-contract with a bad status error = %v, want InvalidInput", err)
	}
	out := env.mustRun(t, "", "list-contracts-unsigned-unpaid")
	if !strings.Contains(out, "pending") {
		t.Errorf("pending contract missing from report:\n%s", out)
	}

	env.mustRun(t, "", "update-contract", "1", "--status", "signed", "--remaining", "0")
	if out := env.mustRun(t, "", "list-contracts-unsigned-unpaid"); !strings.Contains(out, "No contracts") {
		t.Errorf("signed and paid contract still reported:\n%s", out)
	}

	env.mustRun(t, "", eventArgs...)

	env.loginAs(t, "admin@crm.test")
	if out := env.mustRun(t, "", "list-events-no-support"); !strings.Contains(out, "Kevin Casey") {
		t.Errorf("new event not listed as unassigned:\n%s", out)
	}
	env.mustRun(t, "", "update-event", "1", "--support-id", "3")

	env.loginAs(t, "sam@crm.test")
	env.mustRun(t, "", "update-event", "1", "--notes", "Bring chairs")
	out = env.mustRun(t, "", "list-events-support")
	if !strings.Contains(out, "Bring chairs") || !strings.Contains(out, "Candé-sur-Beuvron") {
		t.Errorf("list-events-support output:\n%s", out)
	}

	out = env.mustRun(t, "", "list-all")
	for _, section := range []string{"== Clients ==", "== Contracts ==", "== Events ==", "No contracts"} {
		if !strings.Contains(out, section) {
			t.Errorf("list-all output lacks %q:\n%s", section, out)
		}
	}
}

func TestAddEvent_SupportContact(t *testing.T) {
	env := setupTestEnv(t)
	env.addUser(t, "Alice", "alice@crm.test", "commercial")
	env.addUser(t, "Sam", "sam@crm.test", "support")

	env.loginAs(t, "alice@crm.test")
	env.mustRun(t, "", "add-client", "--name", "Kevin Casey", "--email", "kevin@startup.io",
		"--phone", "0678-123-456", "--company", "Cool Startup LLC")
	env.loginAs(t, "admin@crm.test")
	env.mustRun(t, "", "add-contract", "--client-id", "1", "--total", "5000", "--remaining", "0", "--status", "signed")

	env.loginAs(t, "alice@crm.test")
	eventArgs := []string{"add-event", "--contract-id", "1", "--start", "2026-06-04 13:00", "--end", "2026-06-05 02:00",
		"--location", "Paris", "--attendees", "75", "--notes", "Gala"}

	if _, err := env.run("", append(eventArgs, "--support-id", "2")...); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("add-event with a commercial as support error = %v, want InvalidInput", err)
	}
	env.mustRun(t, "", append(eventArgs, "--support-id", "3")...)

	// contract, start, end, location, attendees, notes, blank support
	env.mustRun(t, "1\n2026-07-01 09:00\n2026-07-01 18:00\nLyon\n20\n\n\n", "add-event")

	env.loginAs(t, "sam@crm.test")
	out := env.mustRun(t, "", "list-events-support")
	if !strings.Contains(out, "Paris") || strings.Contains(out, "Lyon") {
		t.Errorf("list-events-support output:\n%s", out)
	}

	env.loginAs(t, "admin@crm.test")
	out = env.mustRun(t, "", "list-events-no-support")
	if !strings.Contains(out, "Lyon") || strings.Contains(out, "Paris") {
		t.Errorf("list-events-no-support output:\n%s", out)
	}
}

func TestUpdateClient_InteractiveKeepsBlankFields(t *testing.T) {
	env := setupTestEnv(t)
	env.addUser(t, "Alice", "alice@crm.test", "commercial")
	env.loginAs(t, "alice@crm.test")
	env.mustRun(t, "", "add-client", "--name", "Kevin Casey", "--email", "kevin@startup.io",
		"--phone", "0678-123-456", "--company", "Cool Startup LLC")

	// name, email, phone kept; company changed
	env.mustRun(t, "\n\n\nHot Startup LLC\n", "update-client", "1")

	out := env.mustRun(t, "", "list-all")
	if !strings.Contains(out, "Hot Startup LLC") || !strings.Contains(out, "kevin@startup.io") {
		t.Errorf("list-all after update:\n%s", out)
	}
}

func TestListAuthEvents(t *testing.T) {
	env := setupTestEnv(t)
	if _, err := env.run("", "login", "--email", "admin@crm.test", "--password", "bad-password"); err == nil {
		t.Fatal("login with a bad password succeeded")
	}
	env.loginAs(t, "admin@crm.test")

	out := env.mustRun(t, "", "list-auth-events", "--limit", "5")
	if !strings.Contains(out, "failed (INVALID_CREDENTIALS)") || !strings.Contains(out, "ok") {
		t.Errorf("list-auth-events output:\n%s", out)
	}
}
