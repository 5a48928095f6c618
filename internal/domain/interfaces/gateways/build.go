// Package gateways defines contracts for the collaborators that consume a resolution.
package gateways

import (
	"context"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
)

// BuildTool drives the external build system
type BuildTool interface {
	Configure(ctx context.Context, sourceDir, buildDir string, config entities.BuildConfig, extra map[string]string) error
	Build(ctx context.Context, buildDir string) error
	Test(ctx context.Context, buildDir string) error
}

// Packager places build outputs selected by an ArtifactSpec into a distributable archive
type Packager interface {
	PackageArtifacts(ctx context.Context, spec entities.ArtifactSpec, roots []string, ref entities.PackageReference, platform, outputDir string) (*entities.Artifact, error)
}

// Digester computes and checks archive digests
type Digester interface {
	Digest(filePath string) (string, error)
	VerifyDigest(ctx context.Context, filePath, expected string) error
}

// Signer produces detached signatures
type Signer interface {
	SignFile(filePath, sigPath string) error
}

// SignatureVerifier checks detached signatures
type SignatureVerifier interface {
	VerifySignatureFromFile(filePath, sigPath string) error
}
