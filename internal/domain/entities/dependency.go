package entities

import "fmt"

// Dependency is an external library requirement
type Dependency struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Version string `json:"version" yaml:"version" toml:"version"`
	User    string `json:"user" yaml:"user" toml:"user"`
	Channel string `json:"channel" yaml:"channel" toml:"channel"`
}

// Reference renders the dependency as name/version@user/channel
func (d Dependency) Reference() string {
	return PackageReference(d).String()
}

// Origin returns the user/channel pair the dependency is requested from
func (d Dependency) Origin() string {
	return fmt.Sprintf("%s/%s", d.User, d.Channel)
}

// DependencySet is an ordered list of dependencies
type DependencySet []Dependency

// Names returns the dependency names in order
func (s DependencySet) Names() []string {
	names := make([]string, 0, len(s))
	for _, d := range s {
		names = append(names, d.Name)
	}
	return names
}

// Contains reports whether a dependency with the given name is present
func (s DependencySet) Contains(name string) bool {
	for _, d := range s {
		if d.Name == name {
			return true
		}
	}
	return false
}

// References renders every dependency as a package reference string
func (s DependencySet) References() []string {
	refs := make([]string, 0, len(s))
	for _, d := range s {
		refs = append(refs, d.Reference())
	}
	return refs
}
