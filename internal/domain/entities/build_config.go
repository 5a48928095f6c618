package entities

// BuildVariable is a named definition handed to the build system
type BuildVariable struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Value bool   `json:"value" yaml:"value" toml:"value"`
}

// BuildConfig is an ordered set of build variables
type BuildConfig []BuildVariable

// Get returns the value of the named variable
func (c BuildConfig) Get(name string) (bool, bool) {
	for _, v := range c {
		if v.Name == name {
			return v.Value, true
		}
	}
	return false, false
}

// Map returns the variables as a name to value map
func (c BuildConfig) Map() map[string]bool {
	m := make(map[string]bool, len(c))
	for _, v := range c {
		m[v.Name] = v.Value
	}
	return m
}
