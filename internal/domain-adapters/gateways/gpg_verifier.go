package gateways

import (
	"context"
	"fmt"

	"github.com/ochairo/tinsrecipe/internal/external-adapters/gpg"
)

// GPGVerifier wraps the external GPG adapter to implement the domain
// SignatureVerifier contract for the verification harness.
type GPGVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a verifier trusting the keys found at each keyring
// location (file path or http(s) URL).
func NewGPGVerifier(ctx context.Context, keyrings ...string) (*GPGVerifier, error) {
	g := &GPGVerifier{verifier: gpg.NewVerifier()}
	for _, location := range keyrings {
		if err := g.verifier.ImportKeyring(ctx, location); err != nil {
			return nil, fmt.Errorf("failed to import keyring %s: %w", location, err)
		}
	}
	return g, nil
}

// VerifySignatureFromFile verifies a detached signature from a local file
func (g *GPGVerifier) VerifySignatureFromFile(filePath, sigPath string) error {
	if err := g.verifier.VerifySignatureFromFile(filePath, sigPath); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}

// KeyringSize returns the number of trusted keys
func (g *GPGVerifier) KeyringSize() int {
	return g.verifier.GetKeyringSize()
}
