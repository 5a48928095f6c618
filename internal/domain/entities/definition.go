package entities

// Recipe represents the package recipe metadata loaded from YAML
type Recipe struct {
	Name           string
	Version        string
	Author         string
	Description    string
	License        string
	URL            string
	ExportsSources []string
	// DefaultOptions overrides the built-in option defaults for this recipe.
	// Options missing here default to true.
	DefaultOptions map[string]string
}

// Reference returns the recipe reference published under user/channel
func (r *Recipe) Reference(user, channel string) PackageReference {
	return PackageReference{
		Name:    r.Name,
		Version: r.Version,
		User:    user,
		Channel: channel,
	}
}
