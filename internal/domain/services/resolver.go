// Package services implements the recipe resolution logic.
package services

import (
	"github.com/ochairo/tinsrecipe/internal/domain/entities"
)

// Dependencies requested by the libtins recipe
var (
	WinPcapDependency = entities.Dependency{Name: "WinPcap", Version: "4.1.2", User: "RoliSoft", Channel: "stable"}
	LibpcapDependency = entities.Dependency{Name: "libpcap", Version: "1.8.1", User: "uilianries", Channel: "stable"}
	OpenSSLDependency = entities.Dependency{Name: "OpenSSL", Version: "1.0.2l", User: "conan", Channel: "stable"}
	BoostDependency   = entities.Dependency{Name: "Boost", Version: "1.64.0", User: "inexorgame", Channel: "stable"}
)

// Build variables that are always forced off
const (
	BuildTestsVariable    = "LIBTINS_BUILD_TESTS"
	BuildExamplesVariable = "LIBTINS_BUILD_EXAMPLES"
)

// buildVariables maps each option to its build-system definition
var buildVariables = []struct {
	option   entities.OptionName
	variable string
}{
	{entities.OptionShared, "LIBTINS_BUILD_SHARED"},
	{entities.OptionEnablePcap, "LIBTINS_ENABLE_PCAP"},
	{entities.OptionEnableCXX11, "LIBTINS_ENABLE_CXX11"},
	{entities.OptionEnableDot11, "LIBTINS_ENABLE_DOT11"},
	{entities.OptionEnableWPA2, "LIBTINS_ENABLE_WPA2"},
	{entities.OptionEnableTCPIP, "LIBTINS_ENABLE_TCPIP"},
	{entities.OptionEnableAckTracker, "LIBTINS_ENABLE_ACK_TRACKER"},
	{entities.OptionEnableTCPStreamCustomData, "LIBTINS_ENABLE_TCP_STREAM_CUSTOM_DATA"},
}

// BuildVariableName returns the build-system definition for an option
func BuildVariableName(option entities.OptionName) (string, bool) {
	for _, bv := range buildVariables {
		if bv.option == option {
			return bv.variable, true
		}
	}
	return "", false
}

// Resolver turns an option set and a platform into dependencies, build
// definitions and packaging rules. It holds no state between calls and is
// safe for concurrent use.
type Resolver struct {
	reference entities.PackageReference
}

// NewResolver creates a resolver for the given recipe reference.
// The reference is copied into every Resolution; it does not affect the rules.
func NewResolver(reference entities.PackageReference) *Resolver {
	return &Resolver{reference: reference}
}

// Resolve computes the Resolution for opts on platform.
// It fails only when the platform family is unknown.
func (r *Resolver) Resolve(opts entities.OptionSet, platform entities.Platform) (entities.Resolution, error) {
	deps, err := ResolveDependencies(opts, platform)
	if err != nil {
		return entities.Resolution{}, err
	}

	return entities.Resolution{
		Reference:    r.reference,
		OS:           platform.String(),
		Options:      opts,
		Dependencies: deps,
		BuildConfig:  ResolveBuildConfig(opts),
		Artifacts:    ArtifactRules(),
	}, nil
}

// ResolveDependencies evaluates the dependency rules in fixed order:
// packet capture, crypto, utility library.
func ResolveDependencies(opts entities.OptionSet, platform entities.Platform) (entities.DependencySet, error) {
	if platform.Family != entities.FamilyWindows && platform.Family != entities.FamilyPOSIX {
		return nil, &entities.UnknownPlatformError{Name: platform.OS}
	}

	deps := entities.DependencySet{}

	if opts.EnablePcap {
		if platform.IsWindows() {
			deps = append(deps, WinPcapDependency)
		} else {
			deps = append(deps, LibpcapDependency)
		}
	}

	if opts.EnableWPA2 {
		deps = append(deps, OpenSSLDependency)
	}

	if opts.EnableAckTracker || opts.EnableTCPStreamCustomData {
		deps = append(deps, BoostDependency)
	}

	return deps, nil
}

// ResolveBuildConfig copies every option into its build variable and
// appends the test and example switches, which are always off.
func ResolveBuildConfig(opts entities.OptionSet) entities.BuildConfig {
	cfg := make(entities.BuildConfig, 0, len(buildVariables)+2)
	for _, bv := range buildVariables {
		value, _ := opts.Get(bv.option)
		cfg = append(cfg, entities.BuildVariable{Name: bv.variable, Value: value})
	}

	return append(cfg,
		entities.BuildVariable{Name: BuildTestsVariable, Value: false},
		entities.BuildVariable{Name: BuildExamplesVariable, Value: false},
	)
}

// ArtifactRules returns the packaging table. It does not depend on options.
func ArtifactRules() entities.ArtifactSpec {
	return entities.ArtifactSpec{
		{Class: entities.ClassLicense, Pattern: "LICENSE", Dst: "."},
		{Class: entities.ClassHeader, Pattern: "*.h", Src: "include", Dst: "include", KeepPath: true},
		{Class: entities.ClassSharedLibrary, Pattern: "*.dll", Dst: "bin"},
		{Class: entities.ClassSharedLibrary, Pattern: "*.so*", Dst: "lib"},
		{Class: entities.ClassSharedLibrary, Pattern: "*.dylib", Dst: "lib"},
		{Class: entities.ClassStaticLibrary, Pattern: "*.a", Dst: "lib"},
	}
}

// ImportRules selects the shared libraries a consumer copies next to its
// executables. The rules apply on every platform.
func ImportRules() entities.ArtifactSpec {
	return entities.ArtifactSpec{
		{Class: entities.ClassSharedLibrary, Pattern: "*.dll", Src: "bin", Dst: "bin"},
		{Class: entities.ClassSharedLibrary, Pattern: "*.dylib*", Src: "lib", Dst: "bin"},
		{Class: entities.ClassSharedLibrary, Pattern: "*.so*", Src: "lib", Dst: "bin"},
	}
}
