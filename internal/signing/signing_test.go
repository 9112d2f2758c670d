package signing

import (
	"context"
	"errors"
	"strings"
	"testing"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestLocalSignerRoundTrip(t *testing.T) {
	ctx := context.Background()
	signer, err := NewLocalSigner(testSecret)
	if err != nil {
		t.Fatalf("NewLocalSigner() error = %v", err)
	}

	payload := []byte("sub-1|approved|u-cmd|cmd|2026-03-01T10:00:00Z")
	digest, keyRef, err := signer.Sign(ctx, "u-cmd", payload)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if !strings.HasPrefix(digest, "hmac-sha256:") {
		t.Errorf("digest = %q, expected hmac-sha256 prefix", digest)
	}
	if keyRef != localKeyRef {
		t.Errorf("keyRef = %q, expected %q", keyRef, localKeyRef)
	}

	ok, err := signer.Verify(ctx, "u-cmd", payload, digest)
	if err != nil || !ok {
		t.Errorf("Verify() = %v, %v; expected true", ok, err)
	}
}

func TestLocalSignerRejectsTampering(t *testing.T) {
	ctx := context.Background()
	signer, _ := NewLocalSigner(testSecret)
	payload := []byte("sub-1|approved|u-cmd|cmd|2026-03-01T10:00:00Z")
	digest, _, _ := signer.Sign(ctx, "u-cmd", payload)

	tests := []struct {
		name     string
		signerID string
		payload  []byte
		digest   string
	}{
		{"changed payload", "u-cmd", []byte("sub-1|rejected|u-cmd|cmd|2026-03-01T10:00:00Z"), digest},
		{"other signer", "u-hod", payload, digest},
		{"garbage digest", "u-cmd", payload, "hmac-sha256:zz"},
		{"foreign digest", "u-cmd", payload, "vault:v1:abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := signer.Verify(ctx, tt.signerID, tt.payload, tt.digest)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if ok {
				t.Error("Verify() = true, expected false")
			}
		})
	}
}

func TestLocalSignerKeysDifferPerSecret(t *testing.T) {
	ctx := context.Background()
	a, _ := NewLocalSigner(testSecret)
	b, _ := NewLocalSigner([]byte("fedcba9876543210fedcba9876543210"))

	payload := []byte("payload")
	digest, _, _ := a.Sign(ctx, "u-1", payload)
	if ok, _ := b.Verify(ctx, "u-1", payload, digest); ok {
		t.Error("a digest must not verify under another secret")
	}
}

func TestNewLocalSignerRejectsWeakSecret(t *testing.T) {
	if _, err := NewLocalSigner([]byte("short")); !errors.Is(err, ErrWeakSecret) {
		t.Errorf("expected ErrWeakSecret, got %v", err)
	}
}

type fakeTransit struct {
	signed map[string]string
	err    error
}

func (f *fakeTransit) Mount() string { return "transit" }

func (f *fakeTransit) Sign(_ context.Context, keyName string, input []byte, derivation string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	sig := "vault:v1:" + keyName + ":" + derivation
	f.signed[sig] = string(input)
	return sig, nil
}

func (f *fakeTransit) Verify(_ context.Context, _ string, input []byte, _ string, signature string) (bool, error) {
	return f.signed[signature] == string(input), nil
}

func TestVaultSigner(t *testing.T) {
	ctx := context.Background()
	transit := &fakeTransit{signed: map[string]string{}}
	signer := NewVaultSigner(transit, "decisions")

	digest, keyRef, err := signer.Sign(ctx, "u-dir", []byte("payload"))
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if keyRef != "vault:transit/keys/decisions" {
		t.Errorf("keyRef = %q", keyRef)
	}

	if ok, _ := signer.Verify(ctx, "u-dir", []byte("payload"), digest); !ok {
		t.Error("expected signature to verify")
	}
	if ok, _ := signer.Verify(ctx, "u-dir", []byte("other"), digest); ok {
		t.Error("expected changed payload to fail")
	}
	if ok, _ := signer.Verify(ctx, "u-dir", []byte("payload"), "hmac-sha256:00"); ok {
		t.Error("expected a local digest to be rejected")
	}
}

func TestVaultSignerPropagatesErrors(t *testing.T) {
	signer := NewVaultSigner(&fakeTransit{err: errors.New("sealed")}, "decisions")
	if _, _, err := signer.Sign(context.Background(), "u-1", []byte("p")); err == nil {
		t.Error("expected error from transit")
	}
}
