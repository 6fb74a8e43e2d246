// Package validation holds the input predicates applied to command flags and
// interactive answers before anything reaches the services.
package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pesio-ai/be-crm-cli/internal/domain"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

// DateTimeLayout is the format of event dates on the command line.
const DateTimeLayout = "2006-01-02 15:04"

// Validator checks one raw input value. A nil error means the value is accepted.
type Validator func(string) error

var (
	emailPattern  = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.\w+$`)
	phonePattern  = regexp.MustCompile(`^[\d-]+$`)
	namePattern   = regexp.MustCompile(`^[\p{L}\s-]+$`)
	numberPattern = regexp.MustCompile(`^\d+$`)
)

// Email accepts local@domain.tld addresses.
func Email(s string) error {
	if !emailPattern.MatchString(s) {
		return apperrors.InvalidInput("invalid email %q", s)
	}
	return nil
}

// Phone accepts digits and dashes only.
func Phone(s string) error {
	if !phonePattern.MatchString(s) {
		return apperrors.InvalidInput("invalid phone %q (digits and dashes only)", s)
	}
	return nil
}

// Name accepts letters, including accented ones, spaces and hyphens.
func Name(s string) error {
	if strings.TrimSpace(s) == "" || !namePattern.MatchString(s) {
		return apperrors.InvalidInput("invalid name %q (letters, spaces and hyphens only)", s)
	}
	return nil
}

// Company accepts any non-blank value.
func Company(s string) error {
	if strings.TrimSpace(s) == "" {
		return apperrors.InvalidInput("company must not be empty")
	}
	return nil
}

// NonEmpty accepts any non-blank value.
func NonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return apperrors.InvalidInput("value must not be empty")
	}
	return nil
}

// Amount accepts a non-negative decimal number.
func Amount(s string) error {
	_, err := ParseAmount(s)
	return err
}

// ParseAmount parses a non-negative decimal number.
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid amount %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.InvalidInput("amount must be a finite number, got %q", s)
	}
	if v < 0 {
		return 0, apperrors.InvalidInput("amount must not be negative, got %q", s)
	}
	return v, nil
}

// Number accepts digits only.
func Number(s string) error {
	if !numberPattern.MatchString(strings.TrimSpace(s)) {
		return apperrors.InvalidInput("invalid number %q (digits only)", s)
	}
	return nil
}

// ParseID parses a positive record identifier.
func ParseID(s string) (int64, error) {
	if err := Number(s); err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid id %q", s)
	}
	return id, nil
}

// ParseCount parses a non-negative integer such as an attendee count.
func ParseCount(s string) (int, error) {
	if err := Number(s); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, apperrors.InvalidInput("invalid number %q", s)
	}
	return n, nil
}

// RoleName accepts a well-formed role identifier.
func RoleName(s string) error {
	if !domain.IsValidRoleName(s) {
		return apperrors.InvalidInput("invalid role name %q (lowercase letters, digits, '-' or '_', 2-32 characters)", s)
	}
	return nil
}

// Status accepts one of the contract statuses, case-insensitively.
func Status(s string) error {
	_, err := domain.ParseContractStatus(s)
	return err
}

// DateTime accepts a date in DateTimeLayout.
func DateTime(s string) error {
	_, err := ParseDateTime(s)
	return err
}

// ParseDateTime parses a date in DateTimeLayout as local time.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid date %q (expected YYYY-MM-DD HH:MM)", s)
	}
	return t, nil
}

// Password accepts passwords of at least eight characters.
func Password(s string) error {
	if len(s) < 8 {
		return apperrors.InvalidInput("password must be at least 8 characters")
	}
	return nil
}

// Optional wraps v so that an empty answer is accepted, meaning "keep the
// current value" or "no value".
func Optional(v Validator) Validator {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return v(s)
	}
}
