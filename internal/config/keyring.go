package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain
	KeyringService = "devpairs"

	// KeyringGitHubTokenItem is the key for GitHub token
	KeyringGitHubTokenItem = "github-token"
)

// KeyringManager handles secure credential storage in OS keychain
type KeyringManager struct {
	logger *logrus.Logger
}

// NewKeyringManager creates a new keyring manager
func NewKeyringManager(logger *logrus.Logger) *KeyringManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &KeyringManager{logger: logger}
}

// GetGitHubToken retrieves GitHub token from OS keychain
func (km *KeyringManager) GetGitHubToken() (string, error) {
	token, err := keyring.Get(KeyringService, KeyringGitHubTokenItem)
	if err == keyring.ErrNotFound {
		// Not an error - just not set yet
		return "", nil
	}
	if err != nil {
		km.logger.WithError(err).Debug("failed to get GitHub token from keychain")
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}

	km.logger.Debug("github token retrieved from keychain")
	return token, nil
}

// SetGitHubToken stores GitHub token securely in OS keychain
// - macOS: Keychain Access.app → "devpairs" → "github-token"
// - Windows: Credential Manager → "devpairs"
// - Linux: Secret Service (requires libsecret)
func (km *KeyringManager) SetGitHubToken(token string) error {
	if token == "" {
		return fmt.Errorf("github token cannot be empty")
	}

	if err := keyring.Set(KeyringService, KeyringGitHubTokenItem, token); err != nil {
		km.logger.WithError(err).Error("failed to save GitHub token to keychain")
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}

	km.logger.WithField("service", KeyringService).Info("github token saved to keychain")
	return nil
}

// DeleteGitHubToken removes GitHub token from OS keychain
func (km *KeyringManager) DeleteGitHubToken() error {
	err := keyring.Delete(KeyringService, KeyringGitHubTokenItem)
	if err == keyring.ErrNotFound {
		// Already deleted, not an error
		return nil
	}
	if err != nil {
		km.logger.WithError(err).Error("failed to delete GitHub token from keychain")
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}

	km.logger.Info("github token deleted from keychain")
	return nil
}

// IsAvailable checks if OS keychain is available.
// Returns false on headless systems (CI/CD) where keychain isn't available
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "test-availability")
	if err == nil || err == keyring.ErrNotFound {
		return true
	}

	km.logger.WithError(err).Debug("keychain not available")
	return false
}

// TokenSource describes where the effective GitHub token came from
type TokenSource string

const (
	TokenSourceFlag     TokenSource = "flag"
	TokenSourceEnv      TokenSource = "env"
	TokenSourceKeychain TokenSource = "keychain"
	TokenSourceConfig   TokenSource = "config"
	TokenSourceNone     TokenSource = "none"
)

// ResolveToken picks the GitHub token by precedence:
// 1. --token flag 2. GITHUB_TOKEN 3. OS keychain 4. config file.
// An empty token is valid; unauthenticated requests are simply rate limited harder.
func (km *KeyringManager) ResolveToken(flagToken string, cfg *Config) (string, TokenSource) {
	if flagToken != "" {
		return flagToken, TokenSourceFlag
	}
	if env := os.Getenv("GITHUB_TOKEN"); env != "" {
		return env, TokenSourceEnv
	}
	if km.IsAvailable() {
		if token, err := km.GetGitHubToken(); err == nil && token != "" {
			return token, TokenSourceKeychain
		}
	}
	if cfg != nil && cfg.GitHub.Token != "" {
		return cfg.GitHub.Token, TokenSourceConfig
	}
	return "", TokenSourceNone
}

// MaskToken masks a token for display
// Shows first 4 chars and last 4 chars: "ghp_...abcd"
func MaskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", token[:4], token[len(token)-4:])
}
