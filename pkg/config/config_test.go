package config

import (
	"errors"
	"strings"
	"testing"
)

func setAll(t *testing.T) {
	t.Helper()
	t.Setenv(EnvBaseURL, "https://crm.example.com")
	t.Setenv(EnvUsername, "admin")
	t.Setenv(EnvPassword, "s3cret")
}

func TestLoad_AllSet(t *testing.T) {
	setAll(t)

	cred, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cred.BaseURL != "https://crm.example.com" {
		t.Errorf("BaseURL = %q, want %q", cred.BaseURL, "https://crm.example.com")
	}
	if cred.Username != "admin" {
		t.Errorf("Username = %q, want %q", cred.Username, "admin")
	}
	if cred.Password != "s3cret" {
		t.Errorf("Password = %q, want %q", cred.Password, "s3cret")
	}
}

func TestLoad_MissingVariables(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		missing string
	}{
		{"missing base url", EnvBaseURL, EnvBaseURL},
		{"missing username", EnvUsername, EnvUsername},
		{"missing password", EnvPassword, EnvPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setAll(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			if err == nil {
				t.Fatal("Expected error but got nil")
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected *ConfigError, got %T", err)
			}
			if len(cfgErr.Missing) != 1 || cfgErr.Missing[0] != tt.missing {
				t.Errorf("Missing = %v, want [%s]", cfgErr.Missing, tt.missing)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("Error message %q does not name %s", err.Error(), tt.missing)
			}
		})
	}
}

func TestLoad_AllMissing(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")

	_, err := Load()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *ConfigError, got %v", err)
	}
	if len(cfgErr.Missing) != 3 {
		t.Errorf("Missing = %v, want all three variables", cfgErr.Missing)
	}
}
