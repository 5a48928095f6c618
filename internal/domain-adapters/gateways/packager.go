package gateways

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
)

// Packager stages build outputs selected by an ArtifactSpec and archives them
type Packager struct {
	finder *ArtifactFinder
	logger interfaces.Logger
}

// NewPackager creates a new packager
func NewPackager(logger interfaces.Logger) *Packager {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Packager{
		finder: NewArtifactFinder(),
		logger: logger,
	}
}

// PackageArtifacts copies the files selected by spec from roots into a
// staging directory and archives it under the reference's archive name.
// Returns the archive artifact.
func (p *Packager) PackageArtifacts(
	ctx context.Context,
	spec entities.ArtifactSpec,
	roots []string,
	ref entities.PackageReference,
	platform, outputDir string,
) (*entities.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if outputDir == "" {
		outputDir = "dist"
	}

	archiveName := ref.ArchiveName(platform)
	stageDir := filepath.Join(outputDir, strings.TrimSuffix(archiveName, ".tar.gz"))

	// Start from a clean stage so stale outputs never leak into the package
	if err := os.RemoveAll(stageDir); err != nil {
		return nil, fmt.Errorf("failed to clean staging directory: %w", err)
	}
	if err := os.MkdirAll(stageDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	// Earlier stages and archives under outputDir never feed a new package
	copied, err := p.finder.CopyMatchesExcluding(roots, spec, stageDir, []string{outputDir})
	if err != nil {
		return nil, fmt.Errorf("failed to stage artifacts: %w", err)
	}
	p.logger.Info("staged package contents", interfaces.F("files", len(copied)), interfaces.F("stage", stageDir))
	if len(copied) == 0 {
		p.logger.Warn("no build outputs matched the artifact rules", interfaces.F("roots", roots))
	}

	tarballPath := filepath.Join(outputDir, archiveName)
	if err := p.createTarball(stageDir, tarballPath); err != nil {
		return nil, fmt.Errorf("failed to create tarball: %w", err)
	}

	return &entities.Artifact{
		Name:     ref.Name,
		Version:  ref.Version,
		Platform: platform,
		Path:     tarballPath,
		Type:     "archive",
	}, nil
}

// createTarball creates a gzipped tar archive from a source directory
func (p *Packager) createTarball(sourceDir, tarballPath string) (err error) {
	if err := os.MkdirAll(filepath.Dir(tarballPath), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	//nolint:gosec // G304: File path tarballPath is constructed for package output
	file, err := os.Create(tarballPath)
	if err != nil {
		return fmt.Errorf("failed to create tarball file: %w", err)
	}
	gzipWriter := gzip.NewWriter(file)
	tarWriter := tar.NewWriter(gzipWriter)

	defer func() {
		err = errors.Join(err, tarWriter.Close(), gzipWriter.Close(), file.Close())
	}()

	return filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		var linkTarget string
		if info.Mode()&os.ModeSymlink != 0 {
			linkTarget, err = os.Readlink(path)
			if err != nil {
				p.logger.Warn("skipping unreadable symlink", interfaces.F("path", path), interfaces.F("error", err))
				return nil
			}
		}

		header, err := tar.FileInfoHeader(info, linkTarget)
		if err != nil {
			return fmt.Errorf("failed to create tar header: %w", err)
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		// Skip the root directory itself
		if relPath == "." {
			return nil
		}

		header.Name = filepath.ToSlash(relPath)

		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header: %w", err)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		//nolint:gosec // G304: File path from filepath.Walk for packaging
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		//nolint:errcheck // Defer close on read-only file
		defer f.Close()

		if _, err := io.Copy(tarWriter, f); err != nil {
			return fmt.Errorf("failed to write file to tar: %w", err)
		}
		return nil
	})
}

// maxEntrySize bounds a single extracted file
const maxEntrySize = 1 << 30

// ExtractPackage unpacks a package archive into destDir
func (p *Packager) ExtractPackage(tarPath, destDir string) error {
	//nolint:gosec // G304: File path tarPath is the package under verification
	file, err := os.Open(tarPath)
	if err != nil {
		return fmt.Errorf("failed to open tar.gz: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	//nolint:errcheck // Defer close on gzip reader
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	cleanDest, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to resolve destination directory: %w", err)
	}

	// Symlinks are created after regular files so their targets exist
	type symlinkInfo struct {
		target   string
		linkname string
	}
	var symlinks []symlinkInfo

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read error: %w", err)
		}

		//nolint:gosec // G305: Path traversal validated below
		target := filepath.Join(cleanDest, header.Name)
		if !within(target, cleanDest) {
			return fmt.Errorf("invalid file path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}

			if header.Size > maxEntrySize {
				return fmt.Errorf("archive entry %s is %d bytes, limit is %d", header.Name, header.Size, maxEntrySize)
			}

			//nolint:gosec // G115: Integer overflow from tar header mode is acceptable
			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}

			if _, err := io.CopyN(outFile, tr, header.Size); err != nil {
				_ = outFile.Close()
				return fmt.Errorf("failed to write file: %w", err)
			}
			if err := outFile.Close(); err != nil {
				return fmt.Errorf("failed to close file: %w", err)
			}

		case tar.TypeSymlink:
			symlinks = append(symlinks, symlinkInfo{target: target, linkname: header.Linkname})

		default:
			p.logger.Warn("ignoring unsupported tar entry", interfaces.F("name", header.Name), interfaces.F("type", string(header.Typeflag)))
		}
	}

	for _, link := range symlinks {
		if filepath.IsAbs(link.linkname) {
			return fmt.Errorf("absolute symlink in archive: %s -> %s", link.target, link.linkname)
		}
		if !within(filepath.Join(filepath.Dir(link.target), link.linkname), cleanDest) {
			return fmt.Errorf("symlink escapes destination: %s -> %s", link.target, link.linkname)
		}
		if err := os.MkdirAll(filepath.Dir(link.target), 0750); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
		if info, err := os.Lstat(link.target); err == nil && !info.IsDir() {
			if err := os.Remove(link.target); err != nil {
				return fmt.Errorf("failed to replace %s: %w", link.target, err)
			}
		}
		if err := os.Symlink(link.linkname, link.target); err != nil {
			return fmt.Errorf("failed to create symlink: %w", err)
		}
	}

	return nil
}
