// Package entities defines core domain models and data structures.
package entities

// ArtifactClass groups packaging rules by the kind of file they select
type ArtifactClass string

// Artifact classes
const (
	ClassLicense       ArtifactClass = "license"
	ClassHeader        ArtifactClass = "header"
	ClassSharedLibrary ArtifactClass = "shared_library"
	ClassStaticLibrary ArtifactClass = "static_library"
)

// ArtifactRule selects build outputs by file name pattern and places them in the package
type ArtifactRule struct {
	Class    ArtifactClass `json:"class" yaml:"class" toml:"class"`
	Pattern  string        `json:"pattern" yaml:"pattern" toml:"pattern"`
	Src      string        `json:"src,omitempty" yaml:"src,omitempty" toml:"src,omitempty"` // Directory searched, relative to each root
	Dst      string        `json:"dst" yaml:"dst" toml:"dst"`
	KeepPath bool          `json:"keep_path" yaml:"keep_path" toml:"keep_path"`
}

// ArtifactSpec is the packaging table emitted with every resolution
type ArtifactSpec []ArtifactRule

// ByClass returns the rules of a single class
func (s ArtifactSpec) ByClass(class ArtifactClass) []ArtifactRule {
	var rules []ArtifactRule
	for _, r := range s {
		if r.Class == class {
			rules = append(rules, r)
		}
	}
	return rules
}

// Artifact represents a file produced or consumed by a build
type Artifact struct {
	Name     string
	Version  string
	Platform string
	Path     string
	Type     string // "archive", "digest", "signature"
}
