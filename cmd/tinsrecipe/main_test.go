package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
)

// runCLI executes the root command with a config rooted in dir
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := "recipes_dir: " + filepath.Join(dir, "recipes") + "\n" +
			"output_dir: " + filepath.Join(dir, "dist") + "\n" +
			"log_level: error\n" +
			"cmake:\n  command: \"true\"\n  ctest: \"true\"\n"
		if err := os.WriteFile(cfgPath, []byte(cfg), 0600); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
	}

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestResolveCommand_JSON(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "resolve", "--os", "Windows", "-o", "enable_wpa2=False", "-o", "libtins:enable_ack_tracker=no", "-o", "enable_tcp_stream_custom_data=0")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	var res entities.Resolution
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	if diff := cmp.Diff([]string{"WinPcap/4.1.2@RoliSoft/stable"}, res.Dependencies.References()); diff != "" {
		t.Errorf("requires mismatch (-want +got):\n%s", diff)
	}
	if res.Reference.String() != "libtins/3.5@appanywhere/testing" {
		t.Errorf("reference = %s", res.Reference)
	}
	if v, _ := res.BuildConfig.Get("LIBTINS_ENABLE_WPA2"); v {
		t.Error("LIBTINS_ENABLE_WPA2 should be false")
	}
}

func TestResolveCommand_ProfileAndFormats(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "linux.toml")
	if err := os.WriteFile(profile, []byte("os = \"Linux\"\n\n[options]\nenable_pcap = false\nshared = true\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, dir, "resolve", "--profile", profile, "-o", "shared=False", "--format", "yaml")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !strings.Contains(out, "os: Linux") || strings.Contains(out, "libpcap") {
		t.Errorf("unexpected YAML output:\n%s", out)
	}
	if !strings.Contains(out, "shared: false") {
		t.Errorf("command-line option should override profile:\n%s", out)
	}

	lock := filepath.Join(dir, "libtins.lock.toml")
	if _, err := runCLI(t, dir, "resolve", "--os", "Macos", "--format", "toml", "--output", lock); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	//nolint:gosec // G304: Test file path
	data, err := os.ReadFile(lock)
	if err != nil {
		t.Fatalf("lock not written: %v", err)
	}
	if !strings.Contains(string(data), "Macos") {
		t.Errorf("TOML lock missing os:\n%s", data)
	}
}

func TestResolveCommand_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "resolve", "--os", "Linux", "-o", "enable_ipv6=True")
	if !errors.Is(err, entities.ErrInvalidOption) {
		t.Errorf("unknown option error = %v", err)
	}

	_, err = runCLI(t, dir, "resolve", "--os", "Linux", "-o", "shared=maybe")
	if !errors.Is(err, entities.ErrInvalidOption) {
		t.Errorf("bad value error = %v", err)
	}

	_, err = runCLI(t, dir, "resolve", "--os", "Linux", "-o", "Boost:shared=False")
	if !errors.Is(err, entities.ErrInvalidOption) {
		t.Errorf("foreign scope error = %v", err)
	}

	_, err = runCLI(t, dir, "resolve", "--os", "Plan9")
	if !errors.Is(err, entities.ErrUnknownPlatform) {
		t.Errorf("unknown OS error = %v", err)
	}

	if _, err := runCLI(t, dir, "resolve", "--os", "Linux", "--format", "xml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestOptionsAndListCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "options")
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	for _, want := range []string{"enable_tcp_stream_custom_data", "LIBTINS_ENABLE_ACK_TRACKER", "LIBTINS_BUILD_EXAMPLES=OFF"} {
		if !strings.Contains(out, want) {
			t.Errorf("options output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, dir, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "libtins/3.5@appanywhere/testing") {
		t.Errorf("list output missing built-in recipe:\n%s", out)
	}
}

func TestPackageThenVerify(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "libtins")
	files := map[string]string{
		"LICENSE":                  "BSD-2-Clause",
		"include/tins/tins.h":      "#pragma once",
		"build/lib/libtins.so.3.5": "elf",
	}
	for rel, content := range files {
		path := filepath.Join(source, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	testPackage := filepath.Join(dir, "test_package")
	if err := os.MkdirAll(testPackage, 0750); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, dir, "package", "--source", source, "--os", "Linux")
	if err != nil {
		t.Fatalf("package failed: %v", err)
	}
	archive := filepath.Join(dir, "dist", "libtins-3.5-linux.tar.gz")
	if !strings.Contains(out, archive) {
		t.Errorf("summary missing archive path:\n%s", out)
	}
	for _, sidecar := range []string{".sha256", ".lock.json"} {
		if _, err := os.Stat(archive + sidecar); err != nil {
			t.Errorf("missing %s sidecar: %v", sidecar, err)
		}
	}

	workDir := filepath.Join(dir, "work")
	out, err = runCLI(t, dir, "verify", "--os", "Linux", "--test-package", testPackage, "--work-dir", workDir, "--json")
	if err != nil {
		t.Fatalf("verify failed: %v\n%s", err, out)
	}

	var report struct {
		Passed bool `json:"passed"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out)
	}
	if !report.Passed {
		t.Errorf("verification should pass:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(workDir, "build", "bin", "libtins.so.3.5")); err != nil {
		t.Errorf("shared library was not imported: %v", err)
	}

	// A consumer expecting another channel must be refused
	_, err = runCLI(t, dir, "verify", "libtins/3.5@appanywhere/stable", "--os", "Linux", "--test-package", testPackage, "--work-dir", filepath.Join(dir, "work2"))
	if err == nil {
		t.Error("verify should fail for a different channel")
	}
}
