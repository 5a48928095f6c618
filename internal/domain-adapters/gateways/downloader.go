package gateways

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
	"github.com/ochairo/tinsrecipe/internal/domain/interfaces"
)

// errNotFound marks a remote file that does not exist
var errNotFound = errors.New("not found")

// Downloader fetches published packages from a remote package store laid
// out as <base>/<name>/<version>/<user>/<channel>/<archive>.
type Downloader struct {
	httpClient *http.Client
	logger     interfaces.Logger
}

// NewDownloader creates a new downloader
func NewDownloader(logger interfaces.Logger) *Downloader {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Downloader{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // Long timeout for large downloads
		},
		logger: logger,
	}
}

// PackageURL returns where a package archive lives under baseURL
func (d *Downloader) PackageURL(baseURL string, ref entities.PackageReference, platform string) (string, error) {
	return url.JoinPath(baseURL, ref.Name, ref.Version, ref.User, ref.Channel, ref.ArchiveName(platform))
}

// FetchPackage downloads a package archive and its sidecars into destDir and
// returns the local archive path. The archive and its digest are required;
// the lock manifest and signature are fetched when published.
func (d *Downloader) FetchPackage(ctx context.Context, baseURL string, ref entities.PackageReference, platform, destDir string) (string, error) {
	archiveURL, err := d.PackageURL(baseURL, ref, platform)
	if err != nil {
		return "", fmt.Errorf("invalid package store URL: %w", err)
	}

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	archivePath := filepath.Join(destDir, ref.ArchiveName(platform))

	for _, suffix := range []string{"", ".sha256"} {
		if err := d.downloadFile(ctx, archiveURL+suffix, archivePath+suffix); err != nil {
			return "", fmt.Errorf("download of %s failed: %w", ref.ArchiveName(platform)+suffix, err)
		}
	}

	for _, suffix := range []string{".lock.json", ".asc"} {
		err := d.downloadFile(ctx, archiveURL+suffix, archivePath+suffix)
		switch {
		case errors.Is(err, errNotFound):
			d.logger.Debug("optional sidecar not published", interfaces.F("file", archiveURL+suffix))
		case err != nil:
			return "", fmt.Errorf("download of %s failed: %w", ref.ArchiveName(platform)+suffix, err)
		}
	}

	return archivePath, nil
}

// downloadFile downloads a file from URL to destination
func (d *Downloader) downloadFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "tinsrecipe/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	//nolint:gosec // G304: File path dest is function parameter for download destination
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	d.logger.Info("downloaded", interfaces.F("file", filepath.Base(dest)), interfaces.F("bytes", written))
	return nil
}
