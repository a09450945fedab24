package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	content := `
server:
  port: "9090"
  public_url: https://events.example.com
database:
  path: /var/lib/events/events.db
auth:
  session_ttl: 2h
events:
  timezone: Europe/Lisbon
  rsvp_max_attempts: 5
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("Server.Port = %q, want env override 7070", cfg.Server.Port)
	}
	if cfg.Server.PublicURL != "https://events.example.com" {
		t.Errorf("Server.PublicURL = %q", cfg.Server.PublicURL)
	}
	if cfg.Database.Path != "/var/lib/events/events.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 2h", cfg.Auth.SessionTTL)
	}
	if cfg.Events.RSVPMaxAttempts != 5 || cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Events/Log = %+v %+v", cfg.Events, cfg.Log)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("unset ReadTimeout = %v, want default", cfg.Server.ReadTimeout)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Lisbon" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	env := map[string]string{"SESSION_TTL": "forever", "RSVP_MAX_ATTEMPTS": "many"}
	err := Default().ApplyEnv(func(k string) string { return env[k] })
	if err == nil {
		t.Fatal("ApplyEnv() error = nil")
	}
	for _, name := range []string{"SESSION_TTL", "RSVP_MAX_ATTEMPTS"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("ApplyEnv() error %q does not mention %s", err, name)
		}
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = "http"
	cfg.Database.Path = ""
	cfg.Events.TimeZone = "Mars/Olympus"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, want := range []string{"server.port", "database.path", "events.timezone", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}
}
