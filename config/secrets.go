package config

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// SecretStore resolves secrets such as API keys and DSN passwords.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	GetWithDefault(ctx context.Context, key, fallback string) string
}

// EnvironmentSecretStore reads secrets from process environment variables.
type EnvironmentSecretStore struct{}

func NewEnvironmentSecretStore() *EnvironmentSecretStore {
	return &EnvironmentSecretStore{}
}

func (s *EnvironmentSecretStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("secret %q not set", key)
	}
	return value, nil
}

func (s *EnvironmentSecretStore) GetWithDefault(ctx context.Context, key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// LoadSecretsFromEnv overrides sensitive settings from the environment
// secret store. Production profiles call this after the regular load so
// credentials never live in config files.
func (c *Config) LoadSecretsFromEnv(ctx context.Context) error {
	store := NewEnvironmentSecretStore()

	if v := store.GetWithDefault(ctx, "CREWKIT_SECRET_REDIS_PASSWORD", ""); v != "" {
		c.Storage.Redis.Password = v
	}
	if v := store.GetWithDefault(ctx, "CREWKIT_SECRET_SQL_DSN", ""); v != "" {
		c.Storage.SQL.DSN = v
	}
	if v := store.GetWithDefault(ctx, "CREWKIT_SECRET_API_KEYS", ""); v != "" {
		keys := strings.Split(v, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		c.Security.APIKeys = keys
	}

	return nil
}
