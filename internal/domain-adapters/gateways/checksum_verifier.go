package gateways

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"
)

// ChecksumVerifier computes and checks SHA-256 digests of package archives
type ChecksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
func NewChecksumVerifier() *ChecksumVerifier {
	return &ChecksumVerifier{}
}

// Digest returns the hex-encoded SHA-256 digest of a file
func (v *ChecksumVerifier) Digest(filePath string) (string, error) {
	d, err := v.fileDigest(filePath)
	if err != nil {
		return "", err
	}
	return d.Encoded(), nil
}

// VerifyDigest checks a file against an expected digest. The expected value
// may be bare hex or carry the "sha256:" algorithm prefix.
func (v *ChecksumVerifier) VerifyDigest(_ context.Context, filePath, expected string) error {
	if !strings.Contains(expected, ":") {
		expected = digest.SHA256.String() + ":" + expected
	}
	want, err := digest.Parse(expected)
	if err != nil {
		return fmt.Errorf("invalid expected digest: %w", err)
	}

	//nolint:gosec // G304: File path is user-provided for checksum verification
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	verifier := want.Verifier()
	if _, err := io.Copy(verifier, f); err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}

	if !verifier.Verified() {
		actual, _ := v.Digest(filePath)
		return fmt.Errorf("checksum mismatch: expected %s, got %s", want.Encoded(), actual)
	}

	return nil
}

func (v *ChecksumVerifier) fileDigest(filePath string) (digest.Digest, error) {
	//nolint:gosec // G304: File path is user-provided for checksum calculation
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	d, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return d, nil
}
