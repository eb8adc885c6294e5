// internal/vault/vault.go
//
// Minimal Vault KV-v2 reader for configuration secrets.
//
// Context
// -------
// The config loader resolves `vault:<path>#<key>` references (the session
// signing key) through this client at boot.  It reads once per reference
// and does not cache or renew — boot-time resolution does not need a
// long-lived client.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR  – scheme and host of the Vault server.
// • VAULT_TOKEN – token (falls back to the SDK's usual discovery).
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"
)

// Client is a thin wrapper over the Vault SDK.
type Client struct {
	api *vaultapi.Client
}

// New constructs a client from the environment.
func New(ctx context.Context) (*Client, error) {
	cfg := vaultapi.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	api, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}
	return &Client{api: api}, nil
}

// GetKV fetches a single key from a KV-v2 secret, e.g.
// GetKV(ctx, "secret/conduct", "session_key").
func (c *Client) GetKV(ctx context.Context, secretPath, key string) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("vault: secret path and key must be non-empty")
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("vault: key %q not found in secret %q", key, secretPath)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: value at %s#%s is not a string", secretPath, key)
	}
	return val, nil
}

// splitMount separates "secret/app/web" into mount "secret" and relative
// path "app/web".
func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(strings.Trim(p, "/"), "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
