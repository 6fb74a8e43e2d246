package validation

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		check Validator
		input string
		valid bool
	}{
		{"email ok", Email, "test@example.com", true},
		{"email plus", Email, "alice+crm@example.co.uk", true},
		{"email missing at", Email, "invalid-email", false},
		{"email missing tld", Email, "alice@example", false},

		{"phone digits", Phone, "0612345678", true},
		{"phone dashes", Phone, "06-12-34-56-78", true},
		{"phone letters", Phone, "abcd123", false},
		{"phone empty", Phone, "", false},

		{"name simple", Name, "Alice Martin", true},
		{"name accented", Name, "Hélène Lefèvre-Dupré", true},
		{"name digits", Name, "R2D2", false},
		{"name blank", Name, "   ", false},

		{"company ok", Company, "ACME", true},
		{"company empty", Company, "", false},

		{"amount integer", Amount, "1000", true},
		{"amount decimal", Amount, "99.50", true},
		{"amount words", Amount, "one hundred", false},
		{"amount negative", Amount, "-5", false},
		{"amount nan", Amount, "NaN", false},
		{"amount inf", Amount, "Inf", false},
		{"amount plus inf", Amount, "+Inf", false},
		{"amount minus inf", Amount, "-Inf", false},

		{"number ok", Number, "42", true},
		{"number letters", Number, "abc", false},
		{"number negative", Number, "-1", false},

		{"role builtin", RoleName, "gestion", true},
		{"role custom", RoleName, "marketing", true},
		{"role uppercase", RoleName, "Admin", false},
		{"role too short", RoleName, "a", false},

		{"status signed", Status, "signed", true},
		{"status uppercase", Status, "PENDING", true},
		{"status closed", Status, "closed", false},

		{"date ok", DateTime, "2026-06-01 14:30", true},
		{"date without time", DateTime, "2026-06-01", false},

		{"password ok", Password, "s3cret-pass", true},
		{"password short", Password, "short", false},

		{"optional empty", Optional(Email), "", true},
		{"optional invalid", Optional(Email), "nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.input)
			if (err == nil) != tt.valid {
				t.Fatalf("validator(%q) error = %v, valid %v", tt.input, err, tt.valid)
			}
			if err != nil && !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("validator(%q) error = %v, want InvalidInput", tt.input, err)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"7", 7, false},
		{" 12 ", 12, false},
		{"0", 0, true},
		{"x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("2026-06-01 14:30")
	if err != nil {
		t.Fatalf("ParseDateTime() error = %v", err)
	}
	want := time.Date(2026, 6, 1, 14, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("ParseDateTime() = %v, want %v", got, want)
	}
}
