package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces/gateways"
	"github.com/ochairo/tinsrecipe/internal/domain/services"
)

// Extractor unpacks a package archive
type Extractor interface {
	ExtractPackage(tarPath, destDir string) error
}

// Fetcher downloads a published package and its sidecars
type Fetcher interface {
	FetchPackage(ctx context.Context, baseURL string, ref entities.PackageReference, platform, destDir string) (string, error)
}

// Importer copies files selected by rules from roots into destRoot
type Importer interface {
	CopyMatches(roots []string, rules []entities.ArtifactRule, destRoot string) ([]string, error)
}

// Harness step names, in execution order
const (
	StepFetch     = "fetch"
	StepDigest    = "digest"
	StepSignature = "signature"
	StepReference = "reference"
	StepExtract   = "extract"
	StepImport    = "import"
	StepConfigure = "configure"
	StepBuild     = "build"
	StepTest      = "test"
)

// StepStatus is the outcome of one harness step
type StepStatus string

// Step outcomes
const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// HarnessConfig is everything the verification harness needs. Identity
// defaults are filled in by the caller; the harness never reads the
// environment.
type HarnessConfig struct {
	Reference      entities.PackageReference
	Platform       entities.Platform
	ArchivePath    string // defaults to PackageDir/<archive name>
	PackageDir     string
	Remote         string // package store URL; when set the archive is downloaded first
	TestPackageDir string // consumer project built against the package
	WorkDir        string
}

// StepResult records one harness step
type StepResult struct {
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration"`
}

// HarnessReport is the pass/fail outcome of a verification run
type HarnessReport struct {
	Reference string       `json:"reference"`
	Archive   string       `json:"archive"`
	Passed    bool         `json:"passed"`
	Steps     []StepResult `json:"steps"`
}

// FailedStep returns the first failed step, if any
func (r *HarnessReport) FailedStep() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return s, true
		}
	}
	return StepResult{}, false
}

// VerifyOrchestrator consumes a published package the way a downstream
// project would and reports whether it builds and runs.
type VerifyOrchestrator struct {
	digester  gateways.Digester
	verifier  gateways.SignatureVerifier
	fetcher   Fetcher
	extractor Extractor
	importer  Importer
	buildTool gateways.BuildTool
	logger    interfaces.Logger
}

// NewVerifyOrchestrator creates a verification harness. verifier may be nil,
// in which case the signature step is skipped.
func NewVerifyOrchestrator(
	digester gateways.Digester,
	verifier gateways.SignatureVerifier,
	extractor Extractor,
	importer Importer,
	buildTool gateways.BuildTool,
	logger interfaces.Logger,
) *VerifyOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &VerifyOrchestrator{
		digester:  digester,
		verifier:  verifier,
		extractor: extractor,
		importer:  importer,
		buildTool: buildTool,
		logger:    logger,
	}
}

// WithFetcher enables downloading packages from a remote store
func (o *VerifyOrchestrator) WithFetcher(fetcher Fetcher) *VerifyOrchestrator {
	o.fetcher = fetcher
	return o
}

// Verify runs every harness step in order and stops at the first failure.
// The report is always returned; the error is the failing step's error.
func (o *VerifyOrchestrator) Verify(ctx context.Context, cfg HarnessConfig) (*HarnessReport, error) {
	if cfg.WorkDir == "" {
		return nil, fmt.Errorf("harness work directory is required")
	}
	if cfg.TestPackageDir == "" {
		return nil, fmt.Errorf("test package directory is required")
	}

	archive := cfg.ArchivePath
	if archive == "" {
		dir := cfg.PackageDir
		if cfg.Remote != "" {
			dir = filepath.Join(cfg.WorkDir, "download")
		}
		archive = filepath.Join(dir, cfg.Reference.ArchiveName(cfg.Platform.String()))
	}

	report := &HarnessReport{Reference: cfg.Reference.String(), Archive: archive}
	packageRoot := filepath.Join(cfg.WorkDir, "package")
	buildDir := filepath.Join(cfg.WorkDir, "build")

	steps := []struct {
		name string
		run  func() (string, error)
	}{
		{StepFetch, func() (string, error) { return o.fetch(ctx, cfg, filepath.Dir(archive)) }},
		{StepDigest, func() (string, error) { return o.checkDigest(ctx, archive) }},
		{StepSignature, func() (string, error) { return o.checkSignature(archive) }},
		{StepReference, func() (string, error) { return checkLock(archive, cfg.Reference) }},
		{StepExtract, func() (string, error) {
			// A reused work dir starts every run from an empty package and build tree
			for _, dir := range []string{packageRoot, buildDir} {
				if err := os.RemoveAll(dir); err != nil {
					return "", fmt.Errorf("failed to clean %s: %w", dir, err)
				}
			}
			return packageRoot, o.extractor.ExtractPackage(archive, packageRoot)
		}},
		{StepImport, func() (string, error) {
			copied, err := o.importer.CopyMatches([]string{packageRoot}, services.ImportRules(), buildDir)
			return fmt.Sprintf("%d shared libraries", len(copied)), err
		}},
		{StepConfigure, func() (string, error) {
			extra := map[string]string{"LIBTINS_ROOT": packageRoot}
			return "", o.buildTool.Configure(ctx, cfg.TestPackageDir, buildDir, nil, extra)
		}},
		{StepBuild, func() (string, error) { return "", o.buildTool.Build(ctx, buildDir) }},
		{StepTest, func() (string, error) { return "", o.buildTool.Test(ctx, buildDir) }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		start := time.Now()
		detail, err := step.run()
		result := StepResult{Name: step.name, Status: StepPassed, Detail: detail, Duration: time.Since(start)}

		switch {
		case errors.Is(err, errStepSkipped):
			result.Status = StepSkipped
		case err != nil:
			result.Status = StepFailed
			result.Detail = err.Error()
			report.Steps = append(report.Steps, result)
			o.logger.Error("harness step failed", interfaces.F("step", step.name), interfaces.F("error", err))
			return report, fmt.Errorf("%s: %w", step.name, err)
		}

		report.Steps = append(report.Steps, result)
		o.logger.Info("harness step", interfaces.F("step", step.name), interfaces.F("status", string(result.Status)))
	}

	report.Passed = true
	return report, nil
}

var errStepSkipped = errors.New("step skipped")

func (o *VerifyOrchestrator) fetch(ctx context.Context, cfg HarnessConfig, destDir string) (string, error) {
	if cfg.Remote == "" {
		return "local package", errStepSkipped
	}
	if o.fetcher == nil {
		return "", fmt.Errorf("no fetcher configured for remote %s", cfg.Remote)
	}
	return o.fetcher.FetchPackage(ctx, cfg.Remote, cfg.Reference, cfg.Platform.String(), destDir)
}

func (o *VerifyOrchestrator) checkDigest(ctx context.Context, archive string) (string, error) {
	expected, err := services.ReadDigestFile(archive + ".sha256")
	if err != nil {
		return "", err
	}
	if err := o.digester.VerifyDigest(ctx, archive, expected); err != nil {
		return "", err
	}
	return expected, nil
}

func (o *VerifyOrchestrator) checkSignature(archive string) (string, error) {
	if o.verifier == nil {
		return "no keyring configured", errStepSkipped
	}
	sigPath := archive + ".asc"
	if err := o.verifier.VerifySignatureFromFile(archive, sigPath); err != nil {
		return "", err
	}
	return sigPath, nil
}

// checkLock compares the reference recorded in the archive's lock manifest
// with the requested one. Archives without a manifest skip the check.
func checkLock(archive string, want entities.PackageReference) (string, error) {
	lockPath := archive + ".lock.json"

	//nolint:gosec // G304: lockPath is the sidecar of the package under verification
	data, err := os.ReadFile(lockPath)
	if os.IsNotExist(err) {
		return "no lock manifest", errStepSkipped
	}
	if err != nil {
		return "", fmt.Errorf("failed to read lock manifest: %w", err)
	}

	var lock entities.Resolution
	if err := json.Unmarshal(data, &lock); err != nil {
		return "", fmt.Errorf("failed to parse lock manifest: %w", err)
	}
	if lock.Reference != want {
		return "", fmt.Errorf("package is %s, expected %s", lock.Reference, want)
	}
	return lock.Reference.String(), nil
}
