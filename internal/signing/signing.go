// Package signing produces and checks digests over decision payloads.
package signing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	localKeyRef     = "local:hkdf-sha256:v1"
	localPrefix     = "hmac-sha256:"
	minSecretLength = 16
)

// HKDF info prefix; changing it invalidates every stored local signature
var hkdfInfoSigner = []byte("medidocs.decision.signer.v1:")

// ErrWeakSecret is returned for signing secrets shorter than 16 bytes
var ErrWeakSecret = errors.New("signing secret must be at least 16 bytes")

// LocalSigner signs with HMAC-SHA256 under a per-signer key derived from one secret
type LocalSigner struct {
	secret []byte
}

// NewLocalSigner creates a signer from a shared secret
func NewLocalSigner(secret []byte) (*LocalSigner, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &LocalSigner{secret: s}, nil
}

// Sign returns the hex digest of payload and the key reference
func (s *LocalSigner) Sign(_ context.Context, signerID string, payload []byte) (string, string, error) {
	mac, err := s.mac(signerID, payload)
	if err != nil {
		return "", "", err
	}
	return localPrefix + hex.EncodeToString(mac), localKeyRef, nil
}

// Verify checks a digest produced by Sign
func (s *LocalSigner) Verify(_ context.Context, signerID string, payload []byte, digest string) (bool, error) {
	if !strings.HasPrefix(digest, localPrefix) {
		return false, nil
	}
	given, err := hex.DecodeString(strings.TrimPrefix(digest, localPrefix))
	if err != nil {
		return false, nil
	}
	expected, err := s.mac(signerID, payload)
	if err != nil {
		return false, err
	}
	return hmac.Equal(given, expected), nil
}

func (s *LocalSigner) mac(signerID string, payload []byte) ([]byte, error) {
	key, err := deriveSignerKey(s.secret, signerID)
	if err != nil {
		return nil, err
	}
	h := hmac.New(sha256.New, key)
	h.Write(payload)
	return h.Sum(nil), nil
}

func deriveSignerKey(secret []byte, signerID string) ([]byte, error) {
	info := make([]byte, 0, len(hkdfInfoSigner)+len(signerID))
	info = append(info, hkdfInfoSigner...)
	info = append(info, signerID...)

	reader := hkdf.New(sha256.New, secret, nil, info)
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("HKDF key derivation failed: %w", err)
	}
	return key, nil
}

// TransitClient is the part of the Vault client the VaultSigner needs
type TransitClient interface {
	Mount() string
	Sign(ctx context.Context, keyName string, input []byte, derivation string) (string, error)
	Verify(ctx context.Context, keyName string, input []byte, derivation, signature string) (bool, error)
}

// VaultSigner signs through a Vault transit key derived per signer
type VaultSigner struct {
	client  TransitClient
	keyName string
}

// NewVaultSigner creates a signer using the named transit key
func NewVaultSigner(client TransitClient, keyName string) *VaultSigner {
	return &VaultSigner{client: client, keyName: keyName}
}

// Sign returns the Vault signature and the transit key reference
func (s *VaultSigner) Sign(ctx context.Context, signerID string, payload []byte) (string, string, error) {
	signature, err := s.client.Sign(ctx, s.keyName, payload, signerID)
	if err != nil {
		return "", "", err
	}
	return signature, fmt.Sprintf("vault:%s/keys/%s", s.client.Mount(), s.keyName), nil
}

// Verify checks a signature produced by Sign
func (s *VaultSigner) Verify(ctx context.Context, signerID string, payload []byte, digest string) (bool, error) {
	if !strings.HasPrefix(digest, "vault:") {
		return false, nil
	}
	return s.client.Verify(ctx, s.keyName, payload, signerID, digest)
}
