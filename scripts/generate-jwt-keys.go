package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"medidocs/internal/auth"
	"medidocs/internal/config"
	"medidocs/internal/models"
)

// Generates the ES256 key used for JWT_SECRET. With -user it instead mints a
// development token for that actor, signed with the key in -key.
func main() {
	keyFile := flag.String("key", "jwt-private-key.pem", "private key file to write, or to sign with when -user is set")
	userID := flag.String("user", "", "mint a token for this user id")
	role := flag.String("role", string(models.RoleStaff), "actor role")
	dept := flag.String("dept", "", "actor department")
	name := flag.String("name", "", "actor display name")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if *userID != "" {
		if err := mintToken(*keyFile, models.Actor{
			ID:          *userID,
			DisplayName: *name,
			Role:        models.Role(*role),
			Department:  *dept,
		}, *ttl); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to mint token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
		os.Exit(1)
	}

	privateKeyBytes, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal private key: %v\n", err)
		os.Exit(1)
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "EC PRIVATE KEY",
		Bytes: privateKeyBytes,
	})

	fmt.Println("Generated ECDSA P-256 key pair for JWT signing.")
	fmt.Println("\nAdd this to your .env file as JWT_SECRET (single line, quoted):")
	fmt.Println("----------------------------------------")
	fmt.Printf("JWT_SECRET=\"%s\"\n", strings.ReplaceAll(string(privateKeyPEM), "\n", `\n`))

	if err := os.WriteFile(*keyFile, privateKeyPEM, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write private key file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n✓ Private key saved to: %s\n", *keyFile)
	fmt.Printf("\nMint a development token with:\n  go run ./scripts -key %s -user u-1 -role hod -dept Radiology -name \"Dr. Example\"\n", *keyFile)
}

func mintToken(keyFile string, actor models.Actor, ttl time.Duration) error {
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	if block, _ := pem.Decode(keyPEM); block == nil {
		return fmt.Errorf("%s is not a PEM file", keyFile)
	}

	svc := auth.NewService(&config.JWTConfig{Secret: string(keyPEM), Expiration: ttl})
	token, _, err := svc.GenerateToken(actor)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
