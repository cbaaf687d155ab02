// Package secrets resolves API keys and passwords from the OS keychain,
// falling back to environment variables for containerized deployments.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "empregozap"

// Accounts known to the engine. Each doubles as the env var fallback name.
const (
	AccountEvolutionAPIKey = "EVOLUTION_API_KEY"
	AccountWebhookAPIKey   = "WEBHOOK_API_KEY"
)

// Get looks the secret up in the keychain first, then the environment.
func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("secret account name is empty")
	}

	if pw, err := keyring.Get(KeyringService, account); err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}

	if v := strings.TrimSpace(os.Getenv(account)); v != "" {
		return v, nil
	}

	return "", fmt.Errorf("secret %s not found (set it in keychain or via env)", account)
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("secret account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("secret account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// IMAPAccount names the keychain entry for the LinkedIn alert mailbox.
func IMAPAccount(username, host string) string {
	return fmt.Sprintf("imap:%s@%s", username, host)
}

// GetIMAPPassword also honors the ENGINE_IMAP_PASSWORD env var so the
// mailbox credential can be injected without a keychain.
func GetIMAPPassword(username, host string) (string, error) {
	if pw, err := keyring.Get(KeyringService, IMAPAccount(username, host)); err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_IMAP_PASSWORD")); v != "" {
		return v, nil
	}
	return "", errors.New("imap password not found (set it in keychain or via ENGINE_IMAP_PASSWORD)")
}
