package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
)

var (
	linux   = entities.Platform{OS: "Linux", Family: entities.FamilyPOSIX}
	macos   = entities.Platform{OS: "Macos", Family: entities.FamilyPOSIX}
	windows = entities.Platform{OS: "Windows", Family: entities.FamilyWindows}
)

func newTestResolver() *Resolver {
	return NewResolver(entities.PackageReference{Name: "libtins", Version: "3.5", User: "appanywhere", Channel: "testing"})
}

// allOptionSets enumerates every combination of the eight options
func allOptionSets() []entities.OptionSet {
	sets := make([]entities.OptionSet, 0, 1<<len(entities.OptionNames))
	for mask := 0; mask < 1<<len(entities.OptionNames); mask++ {
		var opts entities.OptionSet
		for i, name := range entities.OptionNames {
			opts = opts.With(name, mask&(1<<i) != 0)
		}
		sets = append(sets, opts)
	}
	return sets
}

func TestResolve_DefaultOptionsPOSIX(t *testing.T) {
	res, err := newTestResolver().Resolve(entities.DefaultOptionSet(), linux)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := entities.DependencySet{LibpcapDependency, OpenSSLDependency, BoostDependency}
	if diff := cmp.Diff(want, res.Dependencies); diff != "" {
		t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
	}

	wantRefs := []string{
		"libpcap/1.8.1@uilianries/stable",
		"OpenSSL/1.0.2l@conan/stable",
		"Boost/1.64.0@inexorgame/stable",
	}
	if diff := cmp.Diff(wantRefs, res.Dependencies.References()); diff != "" {
		t.Errorf("References mismatch (-want +got):\n%s", diff)
	}

	if len(res.BuildConfig) != len(entities.OptionNames)+2 {
		t.Fatalf("BuildConfig has %d entries, want %d", len(res.BuildConfig), len(entities.OptionNames)+2)
	}
	for _, v := range res.BuildConfig {
		want := v.Name != BuildTestsVariable && v.Name != BuildExamplesVariable
		if v.Value != want {
			t.Errorf("%s = %v, want %v", v.Name, v.Value, want)
		}
	}
}

func TestResolve_MinimalOptions(t *testing.T) {
	res, err := newTestResolver().Resolve(entities.OptionSet{}, linux)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(res.Dependencies) != 0 {
		t.Errorf("Dependencies = %v, want none", res.Dependencies.References())
	}

	if len(res.BuildConfig) != len(entities.OptionNames)+2 {
		t.Fatalf("BuildConfig has %d entries, want %d", len(res.BuildConfig), len(entities.OptionNames)+2)
	}
	for _, v := range res.BuildConfig {
		if v.Value {
			t.Errorf("%s = true, want false", v.Name)
		}
	}
}

func TestResolve_WindowsPcap(t *testing.T) {
	opts := entities.OptionSet{EnablePcap: true}

	res, err := newTestResolver().Resolve(opts, windows)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if diff := cmp.Diff(entities.DependencySet{WinPcapDependency}, res.Dependencies); diff != "" {
		t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
	}
	if res.Dependencies.Contains(LibpcapDependency.Name) {
		t.Error("Windows resolution must not request libpcap")
	}
}

func TestResolve_PcapIsExclusivePerPlatform(t *testing.T) {
	platforms := []entities.Platform{linux, macos, windows}

	for _, platform := range platforms {
		for _, opts := range allOptionSets() {
			deps, err := ResolveDependencies(opts, platform)
			if err != nil {
				t.Fatalf("ResolveDependencies(%+v, %s) error = %v", opts, platform, err)
			}

			hasWin := deps.Contains(WinPcapDependency.Name)
			hasPosix := deps.Contains(LibpcapDependency.Name)

			if !opts.EnablePcap {
				if hasWin || hasPosix {
					t.Errorf("%s: pcap disabled but got %v", platform, deps.Names())
				}
				continue
			}
			if hasWin == hasPosix {
				t.Errorf("%s: want exactly one pcap variant, got %v", platform, deps.Names())
			}
			if hasWin != platform.IsWindows() {
				t.Errorf("%s: wrong pcap variant %v", platform, deps.Names())
			}
		}
	}
}

func TestResolve_UtilityLibraryDeduplicated(t *testing.T) {
	for _, opts := range allOptionSets() {
		deps, err := ResolveDependencies(opts, linux)
		if err != nil {
			t.Fatalf("ResolveDependencies() error = %v", err)
		}

		count := 0
		for _, d := range deps {
			if d.Name == BoostDependency.Name {
				count++
			}
		}

		want := 0
		if opts.EnableAckTracker || opts.EnableTCPStreamCustomData {
			want = 1
		}
		if count != want {
			t.Errorf("options %+v: Boost entries = %d, want %d", opts, count, want)
		}
	}
}

func TestResolve_DependencyOrder(t *testing.T) {
	opts := entities.OptionSet{EnablePcap: true, EnableWPA2: true, EnableTCPStreamCustomData: true}

	deps, err := ResolveDependencies(opts, windows)
	if err != nil {
		t.Fatalf("ResolveDependencies() error = %v", err)
	}

	want := []string{"WinPcap", "OpenSSL", "Boost"}
	if diff := cmp.Diff(want, deps.Names()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_TestsAndExamplesAlwaysOff(t *testing.T) {
	for _, opts := range allOptionSets() {
		cfg := ResolveBuildConfig(opts)

		for _, name := range []string{BuildTestsVariable, BuildExamplesVariable} {
			value, ok := cfg.Get(name)
			if !ok {
				t.Fatalf("%s missing from build config", name)
			}
			if value {
				t.Errorf("options %+v: %s = true, want false", opts, name)
			}
		}
	}
}

func TestResolveBuildConfig_CopiesOptions(t *testing.T) {
	opts := entities.OptionSet{Shared: true, EnableDot11: true, EnableAckTracker: true}
	cfg := ResolveBuildConfig(opts).Map()

	tests := []struct {
		variable string
		want     bool
	}{
		{"LIBTINS_BUILD_SHARED", true},
		{"LIBTINS_ENABLE_PCAP", false},
		{"LIBTINS_ENABLE_CXX11", false},
		{"LIBTINS_ENABLE_DOT11", true},
		{"LIBTINS_ENABLE_WPA2", false},
		{"LIBTINS_ENABLE_TCPIP", false},
		{"LIBTINS_ENABLE_ACK_TRACKER", true},
		{"LIBTINS_ENABLE_TCP_STREAM_CUSTOM_DATA", false},
	}

	for _, tt := range tests {
		got, ok := cfg[tt.variable]
		if !ok {
			t.Errorf("%s missing", tt.variable)
			continue
		}
		if got != tt.want {
			t.Errorf("%s = %v, want %v", tt.variable, got, tt.want)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := newTestResolver()
	for _, platform := range []entities.Platform{linux, windows} {
		for _, opts := range allOptionSets() {
			first, err := r.Resolve(opts, platform)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			second, err := r.Resolve(opts, platform)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if diff := cmp.Diff(first, second); diff != "" {
				t.Fatalf("Resolve() not idempotent (-first +second):\n%s", diff)
			}
		}
	}
}

func TestResolve_UnknownPlatform(t *testing.T) {
	_, err := newTestResolver().Resolve(entities.DefaultOptionSet(), entities.Platform{OS: "Plan9"})
	if err == nil {
		t.Fatal("Resolve() should fail for an unclassified platform")
	}
	if !errors.Is(err, entities.ErrUnknownPlatform) {
		t.Errorf("error = %v, want ErrUnknownPlatform", err)
	}

	var perr *entities.UnknownPlatformError
	if !errors.As(err, &perr) || perr.Name != "Plan9" {
		t.Errorf("error should echo the platform name, got %v", err)
	}
}

func TestResolve_UnknownPlatformWithoutPcap(t *testing.T) {
	// Classification is required even when no rule consults the platform
	_, err := newTestResolver().Resolve(entities.OptionSet{}, entities.Platform{})
	if !errors.Is(err, entities.ErrUnknownPlatform) {
		t.Errorf("error = %v, want ErrUnknownPlatform", err)
	}
}

func TestResolve_ArtifactSpecIsStatic(t *testing.T) {
	r := newTestResolver()
	a, err := r.Resolve(entities.DefaultOptionSet(), linux)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Resolve(entities.OptionSet{}, windows)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(a.Artifacts, b.Artifacts); diff != "" {
		t.Errorf("artifact spec depends on input (-a +b):\n%s", diff)
	}

	headers := a.Artifacts.ByClass(entities.ClassHeader)
	if len(headers) != 1 || !headers[0].KeepPath || headers[0].Dst != "include" || headers[0].Src != "include" {
		t.Errorf("unexpected header rule: %+v", headers)
	}

	for _, rule := range a.Artifacts.ByClass(entities.ClassSharedLibrary) {
		if rule.KeepPath {
			t.Errorf("shared library rule %s must flatten", rule.Pattern)
		}
	}
	if got := len(a.Artifacts.ByClass(entities.ClassStaticLibrary)); got != 1 {
		t.Errorf("static library rules = %d, want 1", got)
	}
	if got := a.Artifacts.ByClass(entities.ClassLicense); len(got) != 1 || got[0].Dst != "." {
		t.Errorf("unexpected license rule: %+v", got)
	}
}

func TestResolve_Concurrent(t *testing.T) {
	r := newTestResolver()
	want, err := r.Resolve(entities.DefaultOptionSet(), windows)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]entities.Resolution, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.Resolve(entities.DefaultOptionSet(), windows)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("result %d differs (-want +got):\n%s", i, diff)
		}
	}
}

func TestBuildVariableName(t *testing.T) {
	for _, name := range entities.OptionNames {
		if _, ok := BuildVariableName(name); !ok {
			t.Errorf("option %s has no build variable", name)
		}
	}
	if _, ok := BuildVariableName("nope"); ok {
		t.Error("unknown option should have no build variable")
	}
}

func TestImportRules(t *testing.T) {
	rules := ImportRules()
	if len(rules) != 3 {
		t.Fatalf("ImportRules() = %d rules, want 3", len(rules))
	}
	for _, r := range rules {
		if r.Dst != "bin" {
			t.Errorf("rule %s copies to %s, want bin", r.Pattern, r.Dst)
		}
		if r.KeepPath {
			t.Errorf("rule %s should flatten", r.Pattern)
		}
	}
}
