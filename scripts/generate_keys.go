//go:build ignore

// This script generates secrets for the edge control plane and mints a
// bearer token carrying the edge:control scope.
// Run with: go run scripts/generate_keys.go [subject]
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/service"
)

func generateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", what, err)
	os.Exit(1)
}

func main() {
	subject := "portal-backend"
	if len(os.Args) > 1 {
		subject = os.Args[1]
	}

	fmt.Println("=== HR Portal Edge Key Generator ===")
	fmt.Println()

	// 32 bytes = 256 bits for HS256
	jwtSecret, err := generateSecureKey(32)
	if err != nil {
		fail("JWT secret", err)
	}

	apiKey, err := generateSecureKey(24)
	if err != nil {
		fail("API key", err)
	}

	tokens, err := service.NewTokenService(jwtSecret, 24*time.Hour)
	if err != nil {
		fail("token service", err)
	}
	token, expiresAt, err := tokens.Issue(subject, []string{dto.ScopeControl})
	if err != nil {
		fail("control token", err)
	}

	fmt.Println("Add these to your .env file:")
	fmt.Println()
	fmt.Println("# Control plane authentication")
	fmt.Println("AUTH_ENABLED=true")
	fmt.Printf("JWT_SECRET_KEY=%s\n", jwtSecret)
	fmt.Printf("API_KEYS=%s\n", apiKey)
	fmt.Println()
	fmt.Printf("# Bearer token for %q (edge:control, expires %s)\n", subject, expiresAt.Format(time.RFC3339))
	fmt.Printf("Authorization: Bearer %s\n", token)
	fmt.Println()
	fmt.Println("=== IMPORTANT ===")
	fmt.Println("- Never commit these keys to version control")
	fmt.Println("- Use different keys for each environment (dev, staging, prod)")
	fmt.Println("- Store production keys in a secure secret manager")
}
