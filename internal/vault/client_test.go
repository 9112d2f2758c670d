package vault

import (
	"context"
	"testing"

	"medidocs/internal/testutil"
)

func TestTransitSigningIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tc := testutil.SetupVaultContainer(t)
	defer tc.Cleanup(t)

	ctx := context.Background()
	client, err := NewClient(ctx, &Config{Address: tc.VaultAddr, Token: tc.VaultToken, TransitMount: "transit"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if err := client.Health(ctx); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if err := client.EnsureSigningKey(ctx, "decisions"); err != nil {
		t.Fatalf("EnsureSigningKey() error = %v", err)
	}
	// second call must be a no-op
	if err := client.EnsureSigningKey(ctx, "decisions"); err != nil {
		t.Fatalf("EnsureSigningKey() repeated error = %v", err)
	}

	payload := []byte("sub-1|approved|u-cmd|cmd|2026-03-01T10:00:00Z")
	signature, err := client.Sign(ctx, "decisions", payload, "u-cmd")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	valid, err := client.Verify(ctx, "decisions", payload, "u-cmd", signature)
	if err != nil || !valid {
		t.Errorf("Verify() = %v, %v; expected valid", valid, err)
	}

	valid, err = client.Verify(ctx, "decisions", payload, "u-hod", signature)
	if err != nil {
		t.Fatalf("Verify() other context error = %v", err)
	}
	if valid {
		t.Error("signature must not verify under another signer context")
	}
}
