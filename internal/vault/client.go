package vault

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/vault/api"
)

// ErrInvalidResponse is returned when Vault answers without the expected fields
var ErrInvalidResponse = errors.New("invalid vault response")

// Client wraps the HashiCorp Vault transit engine
type Client struct {
	client       *api.Client
	transitMount string
}

// Config holds Vault configuration
type Config struct {
	Address      string
	Token        string
	TransitMount string
}

// NewClient creates a new Vault client and mounts the transit engine when missing
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	config := api.DefaultConfig()
	config.Address = cfg.Address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(cfg.Token)

	vaultClient := &Client{
		client:       client,
		transitMount: cfg.TransitMount,
	}

	if err := vaultClient.initTransitEngine(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize transit engine: %w", err)
	}

	return vaultClient, nil
}

// Mount returns the transit mount path
func (c *Client) Mount() string {
	return c.transitMount
}

func (c *Client) initTransitEngine(ctx context.Context) error {
	mounts, err := c.client.Sys().ListMountsWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to list mounts: %w", err)
	}

	if _, exists := mounts[c.transitMount+"/"]; exists {
		return nil
	}

	err = c.client.Sys().MountWithContext(ctx, c.transitMount, &api.MountInput{
		Type:        "transit",
		Description: "Transit signing for decision records",
		Config: api.MountConfigInput{
			DefaultLeaseTTL: "768h",
			MaxLeaseTTL:     "8760h",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mount transit engine: %w", err)
	}

	return nil
}

// EnsureSigningKey creates a derived ed25519 transit key unless it already exists.
// Derived keys give each signer context its own key pair under one key name.
func (c *Client) EnsureSigningKey(ctx context.Context, keyName string) error {
	path := fmt.Sprintf("%s/keys/%s", c.transitMount, keyName)

	existing, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read key %s: %w", keyName, err)
	}
	if existing != nil {
		return nil
	}

	data := map[string]interface{}{
		"type":       "ed25519",
		"derived":    true,
		"exportable": false,
	}
	if _, err := c.client.Logical().WriteWithContext(ctx, path, data); err != nil {
		return fmt.Errorf("failed to create key %s: %w", keyName, err)
	}

	return nil
}

// Sign signs input with a transit key under the given derivation context
func (c *Client) Sign(ctx context.Context, keyName string, input []byte, derivation string) (string, error) {
	path := fmt.Sprintf("%s/sign/%s", c.transitMount, keyName)

	data := map[string]interface{}{
		"input":   base64.StdEncoding.EncodeToString(input),
		"context": base64.StdEncoding.EncodeToString([]byte(derivation)),
	}

	secret, err := c.client.Logical().WriteWithContext(ctx, path, data)
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}
	if secret == nil {
		return "", ErrInvalidResponse
	}

	signature, ok := secret.Data["signature"].(string)
	if !ok {
		return "", fmt.Errorf("%w: missing signature", ErrInvalidResponse)
	}

	return signature, nil
}

// Verify checks a transit signature over input under the given derivation context
func (c *Client) Verify(ctx context.Context, keyName string, input []byte, derivation, signature string) (bool, error) {
	path := fmt.Sprintf("%s/verify/%s", c.transitMount, keyName)

	data := map[string]interface{}{
		"input":     base64.StdEncoding.EncodeToString(input),
		"context":   base64.StdEncoding.EncodeToString([]byte(derivation)),
		"signature": signature,
	}

	secret, err := c.client.Logical().WriteWithContext(ctx, path, data)
	if err != nil {
		return false, fmt.Errorf("failed to verify: %w", err)
	}
	if secret == nil {
		return false, ErrInvalidResponse
	}

	valid, ok := secret.Data["valid"].(bool)
	if !ok {
		return false, fmt.Errorf("%w: missing valid flag", ErrInvalidResponse)
	}

	return valid, nil
}

// Health checks Vault health status
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}

	if !health.Initialized {
		return fmt.Errorf("vault is not initialized")
	}

	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}

	return nil
}
