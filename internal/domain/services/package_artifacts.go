package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces/gateways"
)

// PackageArtifactsService writes the sidecar files published next to a package archive
type PackageArtifactsService struct {
	digester gateways.Digester
	signer   gateways.Signer
	logger   interfaces.Logger
}

// NewPackageArtifactsService creates a new service. signer may be nil, in
// which case no signature is produced.
func NewPackageArtifactsService(digester gateways.Digester, signer gateways.Signer, logger interfaces.Logger) *PackageArtifactsService {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &PackageArtifactsService{
		digester: digester,
		signer:   signer,
		logger:   logger,
	}
}

// PackageArtifacts lists the sidecar files for an archive
type PackageArtifacts struct {
	DigestPath    string
	Digest        string
	SignaturePath string
	LockPath      string
}

// GenerateAllArtifacts writes the digest, the lock manifest and, when a
// signer is configured, a detached signature for tarballPath.
func (s *PackageArtifactsService) GenerateAllArtifacts(_ context.Context, tarballPath string, resolution entities.Resolution) (*PackageArtifacts, error) {
	artifacts := &PackageArtifacts{}

	digestPath, sum, err := s.GenerateDigest(tarballPath)
	if err != nil {
		return nil, fmt.Errorf("failed to generate digest: %w", err)
	}
	artifacts.DigestPath = digestPath
	artifacts.Digest = sum
	s.logger.Debug("digest written", interfaces.F("path", digestPath), interfaces.F("sha256", sum))

	lockPath, err := s.GenerateLock(tarballPath, resolution)
	if err != nil {
		return nil, fmt.Errorf("failed to generate lock manifest: %w", err)
	}
	artifacts.LockPath = lockPath

	if s.signer != nil {
		sigPath := tarballPath + ".asc"
		if err := s.signer.SignFile(tarballPath, sigPath); err != nil {
			return nil, fmt.Errorf("failed to sign package: %w", err)
		}
		artifacts.SignaturePath = sigPath
		s.logger.Debug("signature written", interfaces.F("path", sigPath))
	}

	return artifacts, nil
}

// GenerateDigest writes a sha256sum-compatible sidecar and returns its path and the hex digest
func (s *PackageArtifactsService) GenerateDigest(filePath string) (string, string, error) {
	sum, err := s.digester.Digest(filePath)
	if err != nil {
		return "", "", err
	}

	digestPath := filePath + ".sha256"
	content := fmt.Sprintf("%s  %s\n", sum, filepath.Base(filePath))

	if err := os.WriteFile(digestPath, []byte(content), 0600); err != nil {
		return "", "", fmt.Errorf("failed to write digest file: %w", err)
	}

	return digestPath, sum, nil
}

// GenerateLock writes the resolution the archive was built from
func (s *PackageArtifactsService) GenerateLock(filePath string, resolution entities.Resolution) (string, error) {
	lockPath := filePath + ".lock.json"

	data, err := json.MarshalIndent(resolution, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal lock: %w", err)
	}

	if err := os.WriteFile(lockPath, append(data, '\n'), 0600); err != nil {
		return "", fmt.Errorf("failed to write lock file: %w", err)
	}

	return lockPath, nil
}

// ReadDigestFile returns the hex digest recorded in a .sha256 sidecar
func ReadDigestFile(digestPath string) (string, error) {
	//nolint:gosec // G304: digestPath is the sidecar of a package the caller selected
	data, err := os.ReadFile(digestPath)
	if err != nil {
		return "", fmt.Errorf("failed to read digest file: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("digest file %s is empty", digestPath)
	}

	return fields[0], nil
}
