package entities

// Resolution is the output of a single resolver pass
type Resolution struct {
	Reference    PackageReference `json:"reference" yaml:"reference" toml:"reference"`
	OS           string           `json:"os" yaml:"os" toml:"os"`
	Options      OptionSet        `json:"options" yaml:"options" toml:"options"`
	Dependencies DependencySet    `json:"requires" yaml:"requires" toml:"requires"`
	BuildConfig  BuildConfig      `json:"definitions" yaml:"definitions" toml:"definitions"`
	Artifacts    ArtifactSpec     `json:"artifacts" yaml:"artifacts" toml:"artifacts"`
}
