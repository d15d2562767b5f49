// Package config loads FluentCRM credentials from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables holding the API credentials.
const (
	EnvBaseURL  = "FLUENT_URL"
	EnvUsername = "FLUENT_USER"
	EnvPassword = "FLUENT_PASSWORD"
)

// Credential carries the API endpoint and basic-auth identity for one
// process run. It is constructed once at startup and passed explicitly
// to the client; nothing else reads the environment.
type Credential struct {
	// BaseURL is the WordPress site root, e.g. "https://crm.example.com".
	BaseURL string

	// Username is the WordPress user the API requests authenticate as.
	Username string

	// Password is the application password for Username.
	Password string
}

// ConfigError reports missing required environment variables. It is
// fatal before any network call is made.
type ConfigError struct {
	Missing []string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s (set %s, %s and %s)",
		strings.Join(e.Missing, ", "), EnvBaseURL, EnvUsername, EnvPassword)
}

// Load reads credentials from the environment. A .env file in the
// working directory is honored when present; real environment variables
// take precedence.
func Load() (*Credential, error) {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	cred := &Credential{
		BaseURL:  os.Getenv(EnvBaseURL),
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvPassword),
	}

	var missing []string
	if cred.BaseURL == "" {
		missing = append(missing, EnvBaseURL)
	}
	if cred.Username == "" {
		missing = append(missing, EnvUsername)
	}
	if cred.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	return cred, nil
}
