package provision

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecret returns n random bytes from the platform's secure source,
// hex-encoded. An unreadable random source is fatal; there is no fallback
// to weaker randomness.
func GenerateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("secure random source unavailable: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// EnsureSecrets mints any credential that is not yet present. Secrets that
// already exist are left untouched: the datastore volumes were initialized
// with them, and rotating one side breaks the stack.
func EnsureSecrets(cfg *DeploymentConfig) error {
	if cfg.Secrets == nil {
		cfg.Secrets = make(map[string]string, len(secretKeys))
	}
	for _, key := range secretKeys {
		if cfg.Secrets[key] != "" {
			continue
		}
		s, err := GenerateSecret(24)
		if err != nil {
			return err
		}
		cfg.Secrets[key] = s
	}
	return nil
}
