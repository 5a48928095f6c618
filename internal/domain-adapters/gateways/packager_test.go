package gateways

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
)

var testReference = entities.PackageReference{Name: "libtins", Version: "3.5", User: "appanywhere", Channel: "testing"}

func testSpec() entities.ArtifactSpec {
	return entities.ArtifactSpec{
		{Class: entities.ClassLicense, Pattern: "LICENSE", Dst: "."},
		{Class: entities.ClassHeader, Pattern: "*.h", Src: "include", Dst: "include", KeepPath: true},
		{Class: entities.ClassSharedLibrary, Pattern: "*.so*", Dst: "lib"},
		{Class: entities.ClassStaticLibrary, Pattern: "*.a", Dst: "lib"},
	}
}

// tarEntries lists the entry names of a .tar.gz archive
func tarEntries(t *testing.T, path string) []string {
	t.Helper()

	//nolint:gosec // G304: Test file path
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open tarball: %v", err)
	}
	//nolint:errcheck // Test cleanup
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("Failed to create gzip reader: %v", err)
	}
	//nolint:errcheck // Test cleanup
	defer gzr.Close()

	var names []string
	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read tar: %v", err)
		}
		names = append(names, header.Name)
	}
	sort.Strings(names)
	return names
}

func TestPackager_PackageArtifacts(t *testing.T) {
	source := t.TempDir()
	build := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "dist")

	writeTree(t, source, map[string]string{
		"LICENSE":             "BSD-2-Clause",
		"include/tins/tins.h": "#pragma once",
		"src/tcp.cpp":         "source",
	})
	writeTree(t, build, map[string]string{
		"lib/libtins.a":  "archive",
		"CMakeCache.txt": "cache",
	})

	packager := NewPackager(nil)
	artifact, err := packager.PackageArtifacts(context.Background(), testSpec(), []string{source, build}, testReference, "linux", outputDir)
	if err != nil {
		t.Fatalf("PackageArtifacts() error = %v", err)
	}

	wantPath := filepath.Join(outputDir, "libtins-3.5-linux.tar.gz")
	if artifact.Path != wantPath {
		t.Errorf("Path = %s, want %s", artifact.Path, wantPath)
	}
	if artifact.Type != "archive" {
		t.Errorf("Type = %s, want archive", artifact.Type)
	}

	want := []string{"LICENSE", "include", "include/tins", "include/tins/tins.h", "lib", "lib/libtins.a"}
	if diff := cmp.Diff(want, tarEntries(t, artifact.Path)); diff != "" {
		t.Errorf("archive entries mismatch (-want +got):\n%s", diff)
	}
}

func TestPackager_PackageArtifacts_CleansStage(t *testing.T) {
	build := t.TempDir()
	outputDir := t.TempDir()

	stale := filepath.Join(outputDir, "libtins-3.5-linux", "lib", "stale.a")
	writeTree(t, outputDir, map[string]string{"libtins-3.5-linux/lib/stale.a": "old"})
	writeTree(t, build, map[string]string{"lib/libtins.a": "new"})

	packager := NewPackager(nil)
	artifact, err := packager.PackageArtifacts(context.Background(), testSpec(), []string{build}, testReference, "linux", outputDir)
	if err != nil {
		t.Fatalf("PackageArtifacts() error = %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale file survived packaging: %v", err)
	}
	for _, name := range tarEntries(t, artifact.Path) {
		if name == "lib/stale.a" {
			t.Error("stale file was archived")
		}
	}
}

func TestPackager_PackageArtifacts_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPackager(nil).PackageArtifacts(ctx, testSpec(), nil, testReference, "linux", t.TempDir())
	if err == nil {
		t.Error("PackageArtifacts() should fail on a canceled context")
	}
}

func TestPackager_ExtractPackage(t *testing.T) {
	build := t.TempDir()
	writeTree(t, build, map[string]string{
		"lib/libtins.so.4":    "so",
		"include/tins/tins.h": "h",
	})
	if err := os.Symlink("libtins.so.4", filepath.Join(build, "lib", "libtins.so")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	packager := NewPackager(nil)
	artifact, err := packager.PackageArtifacts(context.Background(), testSpec(), []string{build}, testReference, "linux", t.TempDir())
	if err != nil {
		t.Fatalf("PackageArtifacts() error = %v", err)
	}

	dest := t.TempDir()
	if err := packager.ExtractPackage(artifact.Path, dest); err != nil {
		t.Fatalf("ExtractPackage() error = %v", err)
	}

	//nolint:gosec // G304: Test file path
	data, err := os.ReadFile(filepath.Join(dest, "include", "tins", "tins.h"))
	if err != nil || string(data) != "h" {
		t.Errorf("header not extracted: %v", err)
	}

	target, err := os.Readlink(filepath.Join(dest, "lib", "libtins.so"))
	if err != nil {
		t.Fatalf("symlink not extracted: %v", err)
	}
	if target != "libtins.so.4" {
		t.Errorf("symlink target = %s, want libtins.so.4", target)
	}
}

func TestPackager_ExtractPackage_PathTraversal(t *testing.T) {
	tarPath := filepath.Join(t.TempDir(), "evil.tar.gz")

	//nolint:gosec // G304: Test file path
	f, err := os.Create(tarPath)
	if err != nil {
		t.Fatalf("Failed to create tarball: %v", err)
	}
	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)
	body := []byte("pwned")
	if err := tw.WriteHeader(&tar.Header{Name: "../escape.txt", Mode: 0600, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if _, err := tw.Write(body); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	_ = tw.Close()
	_ = gzw.Close()
	_ = f.Close()

	if err := NewPackager(nil).ExtractPackage(tarPath, filepath.Join(t.TempDir(), "out")); err == nil {
		t.Error("ExtractPackage() should reject entries outside the destination")
	}
}

func TestPackager_PackageArtifacts_OutputInsideSource(t *testing.T) {
	source := t.TempDir()
	writeTree(t, source, map[string]string{
		"LICENSE":                               "BSD-2-Clause",
		"build/lib/libtins.a":                   "archive",
		"dist/libtins-3.5-windows/bin/tins.dll": "stale",
	})

	spec := append(testSpec(), entities.ArtifactRule{Class: entities.ClassSharedLibrary, Pattern: "*.dll", Dst: "bin"})
	roots := []string{source, filepath.Join(source, "build")}

	artifact, err := NewPackager(nil).PackageArtifacts(context.Background(), spec, roots, testReference, "Linux", filepath.Join(source, "dist"))
	if err != nil {
		t.Fatalf("PackageArtifacts() error = %v", err)
	}

	want := []string{"LICENSE", "lib", "lib/libtins.a"}
	if diff := cmp.Diff(want, tarEntries(t, artifact.Path)); diff != "" {
		t.Errorf("archive entries mismatch (-want +got):\n%s", diff)
	}
}

// writeHeaders writes a .tar.gz holding only the given headers; entries
// with a size get no body, which is enough for the reader to reject them.
func writeHeaders(t *testing.T, headers ...*tar.Header) string {
	t.Helper()
	tarPath := filepath.Join(t.TempDir(), "crafted.tar.gz")

	//nolint:gosec // G304: Test file path
	f, err := os.Create(tarPath)
	if err != nil {
		t.Fatalf("Failed to create tarball: %v", err)
	}
	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)
	for _, h := range headers {
		if err := tw.WriteHeader(h); err != nil {
			t.Fatalf("WriteHeader() error = %v", err)
		}
	}
	_ = tw.Close()
	_ = gzw.Close()
	_ = f.Close()
	return tarPath
}

func TestPackager_ExtractPackage_Twice(t *testing.T) {
	build := t.TempDir()
	writeTree(t, build, map[string]string{"lib/libtins.so.3.5": "so"})
	if err := os.Symlink("libtins.so.3.5", filepath.Join(build, "lib", "libtins.so")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	packager := NewPackager(nil)
	artifact, err := packager.PackageArtifacts(context.Background(), testSpec(), []string{build}, testReference, "linux", t.TempDir())
	if err != nil {
		t.Fatalf("PackageArtifacts() error = %v", err)
	}

	dest := t.TempDir()
	for i := 0; i < 2; i++ {
		if err := packager.ExtractPackage(artifact.Path, dest); err != nil {
			t.Fatalf("ExtractPackage() run %d error = %v", i+1, err)
		}
	}

	target, err := os.Readlink(filepath.Join(dest, "lib", "libtins.so"))
	if err != nil || target != "libtins.so.3.5" {
		t.Errorf("symlink after second extract = %q, %v", target, err)
	}
}

func TestPackager_ExtractPackage_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header *tar.Header
	}{
		{
			name:   "oversized entry",
			header: &tar.Header{Name: "lib/huge.a", Mode: 0600, Size: maxEntrySize + 1, Typeflag: tar.TypeReg},
		},
		{
			name:   "relative symlink escaping destination",
			header: &tar.Header{Name: "lib/libtins.so", Linkname: "../../outside", Typeflag: tar.TypeSymlink},
		},
		{
			name:   "absolute symlink",
			header: &tar.Header{Name: "lib/libtins.so", Linkname: "/etc/passwd", Typeflag: tar.TypeSymlink},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tarPath := writeHeaders(t, tt.header)
			dest := filepath.Join(t.TempDir(), "out")
			if err := NewPackager(nil).ExtractPackage(tarPath, dest); err == nil {
				t.Error("ExtractPackage() should reject the archive")
			}
			if _, err := os.Lstat(filepath.Join(dest, "lib", "libtins.so")); !os.IsNotExist(err) {
				t.Errorf("rejected entry was written: %v", err)
			}
		})
	}
}

func TestPackager_ExtractPackage_SymlinkWithinDestination(t *testing.T) {
	tarPath := writeHeaders(t,
		&tar.Header{Name: "lib/", Mode: 0750, Typeflag: tar.TypeDir},
		&tar.Header{Name: "lib/libtins.so", Linkname: "../lib/libtins.so.3.5", Typeflag: tar.TypeSymlink},
	)

	dest := t.TempDir()
	if err := NewPackager(nil).ExtractPackage(tarPath, dest); err != nil {
		t.Fatalf("ExtractPackage() error = %v", err)
	}
	if target, err := os.Readlink(filepath.Join(dest, "lib", "libtins.so")); err != nil || target != "../lib/libtins.so.3.5" {
		t.Errorf("symlink = %q, %v", target, err)
	}
}
