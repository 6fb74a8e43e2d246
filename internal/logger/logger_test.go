package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.WarnLevel},
		{"verbose", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", ServiceName: "crm", Output: &buf})

	log.Info().Str("email", "alice@example.com").Msg("Login attempt")
	log.Debug().Msg("filtered out")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not a single JSON line: %v (%q)", err, buf.String())
	}
	if entry["service"] != "crm" {
		t.Errorf("service = %v, want crm", entry["service"])
	}
	if entry["email"] != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", entry["email"])
	}
	if entry["message"] != "Login attempt" {
		t.Errorf("message = %v, want Login attempt", entry["message"])
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf}).With("component", "guard")

	log.Info().Msg("checked")

	if !bytes.Contains(buf.Bytes(), []byte(`"component":"guard"`)) {
		t.Errorf("output %q missing component field", buf.String())
	}
}
